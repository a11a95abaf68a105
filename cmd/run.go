package cmd

import (
	"fmt"
	"net/http"
	_ "net/http/pprof" // pprof handler
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/incontrol-io/incontrol/core"
	"github.com/incontrol-io/incontrol/core/storage"
	"github.com/incontrol-io/incontrol/server"
	"github.com/incontrol-io/incontrol/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:              "run",
	Short:            "Run the update coordinator and api server",
	Version:          fmt.Sprintf("%s (%s)", server.Version, server.Commit),
	PersistentPreRun: persistentConfig,
	PreRun:           runConfig,
	Run:              runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	cmd.PersistentFlags().StringP(
		"uri", "u",
		"0.0.0.0:7070",
		"Listen address",
	)
	bind(cmd, "uri")

	cmd.PersistentFlags().DurationP(
		"interval", "i",
		5*time.Minute,
		"Update interval",
	)
	bind(cmd, "interval")

	cmd.PersistentFlags().Bool(
		"profile",
		false,
		"Expose pprof profiles",
	)
	bind(cmd, "profile")
}

func runRun(cmd *cobra.Command, args []string) {
	util.LogLevel(viper.GetString("log"), viper.GetStringMapString("levels"))
	log.INFO.Printf("incontrol %s (%s)", server.Version, server.Commit)

	conf, err := loadConfigFile(cfgFile)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	// re-configure logging after reading config file
	util.LogLevel(viper.GetString("log"), conf.Levels)

	uri := viper.GetString("uri")
	log.INFO.Println("listening at", uri)

	conn, jlrVehicles, err := configureVehicles(conf)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	// account profile and unit preferences
	user := core.NewUser(util.NewLogger("user"), conn, conf.UomsCache)
	if err := user.Update(); err != nil {
		log.ERROR.Printf("cannot resolve user profile: %v", err)
	}

	exec := core.NewExecutor(util.NewLogger("service"), user.TempUnit)
	coord := core.NewCoordinator(util.NewLogger("coord"), exec, core.Config{
		Interval:       conf.Interval,
		HealthInterval: conf.HealthInterval,
	})

	for _, jv := range jlrVehicles {
		v := core.NewVehicle(util.NewLogger("vehicle"), jv, conn, conf.vehiclePin(jv.VIN()))
		if err := v.UpdateAttributes(); err != nil {
			log.FATAL.Fatal(err)
		}
		log.INFO.Printf("configured vehicle %s (%s)", v.Name(), util.Redact(v.VIN()))
		coord.AddVehicle(v)
	}

	// trip database
	if conf.Database.Path != "" {
		if err := storage.Open(conf.Database.Path); err != nil {
			log.FATAL.Fatal(err)
		}
	}

	// start broadcasting values
	tee := &util.Tee{}

	// value cache
	cache := util.NewCache()
	go cache.Run(tee.Attach())

	// setup mqtt publisher
	if conf.Mqtt.Broker != "" {
		publisher, err := server.NewMQTT(conf.Mqtt)
		if err != nil {
			log.FATAL.Fatal(err)
		}
		go publisher.Run(tee.Attach())
	}

	// setup values channel
	valueChan := make(chan util.Param)
	go tee.Run(valueChan)
	coord.Pipe(valueChan)

	// create webserver
	httpd := server.NewHTTPd(uri, coord, cache)

	// pprof
	if viper.GetBool("profile") {
		httpd.Router().PathPrefix("/debug/").Handler(http.DefaultServeMux)
	}

	stopC := make(chan struct{})
	exitC := make(chan struct{})

	go func() {
		coord.Run(stopC)
		close(exitC)
	}()

	// push notifications
	if conf.Push {
		listener := conn.NewPushListener(util.NewLogger("push"), coord.HandlePush)
		go listener.Listen(stopC)
	}

	// catch signals
	go func() {
		signalC := make(chan os.Signal, 1)
		signal.Notify(signalC, os.Interrupt, syscall.SIGTERM)

		<-signalC    // wait for signal
		close(stopC) // signal loop to end

		select {
		case <-exitC: // wait for loop to end
		case <-time.NewTimer(conf.Interval).C: // wait max 1 period
		}

		os.Exit(1)
	}()

	log.FATAL.Println(httpd.ListenAndServe())
}
