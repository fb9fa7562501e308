package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"myo_monitor/internal/config"
	"myo_monitor/internal/handlers"
	"myo_monitor/internal/logger"
	"myo_monitor/internal/repository"
	"myo_monitor/internal/repository/db"
	"myo_monitor/internal/serial"
	"myo_monitor/internal/server"
	"myo_monitor/internal/service"
)

const shutdownTimeout = 10 * time.Second

var configFile string

var rootCmd = &cobra.Command{
	Use:   "myo_monitor",
	Short: "Acquire, filter and serve a serial muscle-sensor signal",
	Long: `myo_monitor reads integer samples from a serial-connected sensor, keeps a
bounded history, runs Butterworth bandpass/bandstop filters over it and serves
the filtered series over HTTP and WebSocket.

Use --serial-port sim to run against the built-in simulated device.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper(), configFile)
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default configs/config.yml)")
	flags.String("serial-port", "", "serial device path, or \"sim\" for the simulator")
	flags.String("port", "", "HTTP listen port")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	mustBind("serial.port", "serial-port")
	mustBind("port", "port")
	mustBind("log.level", "log-level")
}

func mustBind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// @title                       myo_monitor API
// @version                     1.0
// @description                 Control and monitoring API for a serial muscle sensor.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer closeDB(sqlDB, log)

	dev, err := openDevice(cfg)
	if err != nil {
		return err
	}
	log.Infow("device_opened", "port", dev.Name(), "simulated", cfg.Serial.UseSimulator())

	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, dev, service.Options{
		DataWidth:   cfg.Pipeline.DataWidth,
		TimeWidth:   cfg.Pipeline.TimeWidth,
		QueueSize:   cfg.Pipeline.QueueSize,
		Filter:      cfg.Filter.Model(),
		Yield:       cfg.Acquisition.Yield,
		ReadSize:    cfg.Acquisition.ReadSize,
		StopTimeout: cfg.Acquisition.StopTimeout,
		Auth: service.AuthOptions{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
		Log: log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		if err := services.Runner.Run(ctx); err != nil {
			log.Errorw("pipeline_stopped", "err", err)
		}
	}()

	if err := services.Acquisition.Start(ctx); err != nil {
		log.Errorw("acquisition_start_failed", "err", err)
	}

	apiHandler := handlers.NewHandler(services, log)
	srv := server.New(server.Options{})
	serverErr := make(chan error, 1)
	go func() {
		log.Infow("http_listening", "port", cfg.Port)
		serverErr <- srv.Run(cfg.Port, apiHandler.InitRoutes())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Infow("shutting_down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			log.Errorw("http_server_failed", "err", err)
		}
	}

	shutdown(services, cancel, pipelineDone, dev, srv, log)
	return nil
}

// openDevice opens the physical port or wraps the simulator in a Channel.
func openDevice(cfg config.Config) (*serial.Channel, error) {
	if cfg.Serial.UseSimulator() {
		sim := serial.NewSimulator(serial.SimulatorConfig{
			SampleInterval: cfg.Simulator.Tick,
			ReadTimeout:    cfg.Serial.ReadTimeout,
			Amplitude:      cfg.Simulator.Amplitude,
			HumHz:          cfg.Simulator.HumHz,
			Seed:           cfg.Simulator.Seed,
		})
		return serial.NewChannel(serial.SimulatorPort, sim), nil
	}
	return serial.Open(serial.Config{
		Port:        cfg.Serial.Port,
		BaudRate:    cfg.Serial.BaudRate,
		ReadTimeout: cfg.Serial.ReadTimeout,
	})
}

// shutdown stops the reader before the channel is closed, then drains HTTP.
func shutdown(services *service.Service, cancel context.CancelFunc, pipelineDone <-chan struct{}, dev *serial.Channel, srv *server.Server, log *logger.Logger) {
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := services.Acquisition.Stop(ctx); err != nil {
		log.Errorw("acquisition_stop_failed", "err", err)
	}

	cancel()
	select {
	case <-pipelineDone:
	case <-ctx.Done():
		log.Errorw("pipeline_stop_timeout")
	}

	if err := dev.Close(); err != nil {
		log.Errorw("device_close_failed", "err", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server_forced_to_shutdown", "err", err)
	}
}

func closeDB(sqlDB *sql.DB, log *logger.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Errorw("sqlite_close_failed", "err", err)
	}
}
