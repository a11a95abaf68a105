package cmd

import (
	"fmt"

	"github.com/incontrol-io/incontrol/server"
	"github.com/incontrol-io/incontrol/util"
	"github.com/incontrol-io/incontrol/vehicle/jlr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thoas/go-funk"
)

// vehicleCmd represents the vehicle command
var vehicleCmd = &cobra.Command{
	Use:               "vehicle [vin]",
	Short:             "Query the account's vehicles and dump their state",
	PersistentPreRunE: vehicleConfigure,
	Run:               vehicleRun,
}

var vehicleList []*jlr.Vehicle

func init() {
	rootCmd.AddCommand(vehicleCmd)
}

func vehicleConfigure(cmd *cobra.Command, args []string) error {
	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))
	log.INFO.Printf("incontrol %s (%s)", server.Version, server.Commit)

	conf, err := loadConfigFile(cfgFile)
	if err != nil {
		return err
	}

	_, vehicleList, err = configureVehicles(conf)
	return err
}

func vehicleRun(cmd *cobra.Command, args []string) {
	vehicles := vehicleList
	if len(args) == 1 {
		vehicles = funk.Filter(vehicles, func(v *jlr.Vehicle) bool {
			return v.VIN() == args[0]
		}).([]*jlr.Vehicle)

		if len(vehicles) == 0 {
			log.FATAL.Fatalf("no vehicle with vin %s", util.Redact(args[0]))
		}
	}

	d := dumper{len: len(vehicles)}
	for _, v := range vehicles {
		d.DumpWithHeader(fmt.Sprintf("vehicle %s", util.Redact(v.VIN())), v)
	}
}
