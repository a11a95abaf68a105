package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/incontrol-io/incontrol/core"
	"github.com/incontrol-io/incontrol/server"
	"github.com/incontrol-io/incontrol/util"
	"github.com/incontrol-io/incontrol/vehicle/jlr"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// config is the root configuration
type config struct {
	URI            string
	Log            string
	Levels         map[string]string
	Interval       time.Duration
	HealthInterval time.Duration
	Credentials    credentialsConfig
	Vehicles       []vehicleConfig
	Mqtt           server.MQTTConfig
	Database       databaseConfig
	Push           bool
	UomsCache      string
}

type credentialsConfig struct {
	User     string
	Password string
	DeviceID string
	China    bool
}

// vehicleConfig filters and configures a single vehicle of the account
type vehicleConfig struct {
	Vin string
	Pin string
}

type databaseConfig struct {
	Path string
}

// defaultConfig provides the fallback settings applied before unmarshalling
func defaultConfig() config {
	return config{
		URI:      "0.0.0.0:7070",
		Interval: 5 * time.Minute,
	}
}

// loadConfigFile parses the config file into the typed configuration
func loadConfigFile(cfgFile string) (config, error) {
	conf := defaultConfig()

	if cfgFile == "" {
		return conf, errors.New("missing config file")
	}

	log.INFO.Println("using config file", cfgFile)

	err := viper.UnmarshalExact(&conf, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return conf, fmt.Errorf("failed parsing config file %s: %w", cfgFile, err)
	}

	if conf.Credentials.User == "" || conf.Credentials.Password == "" {
		return conf, errors.New("missing credentials")
	}

	if err := (core.Config{Interval: conf.Interval}).Validate(); err != nil {
		return conf, err
	}

	return conf, nil
}

// vehiclePin returns the configured pin for the given vin
func (conf config) vehiclePin(vin string) string {
	for _, vc := range conf.Vehicles {
		if vc.Vin == vin {
			return vc.Pin
		}
	}
	return ""
}

// vins returns the configured vehicle filter
func (conf config) vins() []string {
	var vins []string
	for _, vc := range conf.Vehicles {
		vins = append(vins, vc.Vin)
	}
	return vins
}

// configureVehicles logs in and resolves the account's vehicles
func configureVehicles(conf config) (*jlr.Connection, []*jlr.Vehicle, error) {
	identity := jlr.NewIdentity(util.NewLogger("jlr"),
		conf.Credentials.User, conf.Credentials.Password,
		conf.Credentials.DeviceID, conf.Credentials.China,
	)

	if err := identity.Login(); err != nil {
		return nil, nil, fmt.Errorf("login failed: %w", err)
	}

	conn := jlr.NewConnection(util.NewLogger("jlr"), identity)

	vehicles, err := conn.Vehicles()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot list vehicles: %w", err)
	}

	vehicles, err = jlr.EnsureVehicles(vehicles, conf.vins())
	if err != nil {
		return nil, nil, err
	}

	return conn, vehicles, nil
}
