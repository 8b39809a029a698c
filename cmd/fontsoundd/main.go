// fontsoundd hosts a fontsound device behind an HTTP API.
//
// It owns one device, keeps banks of captured fontsounds in SQLite,
// exposes Prometheus metrics, and optionally publishes device events to
// MQTT and periodic statistics to InfluxDB.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/fontsound-core/internal/api"
	"github.com/nerrad567/fontsound-core/internal/bank"
	"github.com/nerrad567/fontsound-core/internal/fontsound"
	"github.com/nerrad567/fontsound-core/internal/infrastructure/config"
	"github.com/nerrad567/fontsound-core/internal/infrastructure/database"
	"github.com/nerrad567/fontsound-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/fontsound-core/internal/infrastructure/logging"
	"github.com/nerrad567/fontsound-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fontsound-core/internal/observability/metrics"
	"github.com/nerrad567/fontsound-core/internal/telemetry"
	_ "github.com/nerrad567/fontsound-core/migrations"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// defaultConfigPath is used when neither --config nor FONTSOUND_CONFIG is set.
const defaultConfigPath = "configs/config.yaml"

// configEnvVar overrides the default config path.
const configEnvVar = "FONTSOUND_CONFIG"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line flags.
type options struct {
	configPath  string
	showVersion bool
}

// parseFlags reads args. It returns pflag.ErrHelp for --help.
func parseFlags(args []string, out io.Writer) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("fontsoundd", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml (default $"+configEnvVar+" or "+defaultConfigPath+")")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if flagSet.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}
	opts.configPath = resolveConfigPath(opts.configPath)
	return opts, nil
}

// resolveConfigPath applies flag, then environment, then default.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv(configEnvVar); path != "" {
		return path
	}
	return defaultConfigPath
}

// run starts every component and blocks until ctx is cancelled or a
// background component fails.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "fontsoundd %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	log := logging.Default()
	log.Info("starting fontsoundd", "version", version, "commit", commit, "build_date", date)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", opts.configPath, "level", cfg.Logging.Level)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	dev, err := fontsound.NewDevice(fontsound.Options{
		Name:          cfg.Device.Name,
		SampleRate:    int32(cfg.Device.SampleRate), //nolint:gosec // bounded by Validate
		MaxFontsounds: cfg.Device.MaxFontsounds,
	})
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}
	dev.SetLogger(log.Component("fontsound"))
	closeDevice := sync.OnceFunc(dev.Close)
	defer closeDevice()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deviceMetrics, err := metrics.NewFontsoundMetrics(registry, dev)
	if err != nil {
		return err
	}
	observers := fontsound.Observers{deviceMetrics}

	g, gctx := errgroup.WithContext(ctx)

	// Event sinks outlive gctx so the teardown event of the device is
	// still delivered during shutdown.
	sinkCtx, stopSinks := context.WithCancel(context.WithoutCancel(ctx))
	defer stopSinks()

	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))
	observers = append(observers, hub)
	g.Go(func() error {
		hub.Run(sinkCtx)
		return nil
	})

	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log.Component("mqtt"))
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected", "broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port))

		publisher := mqtt.NewEventPublisher(mqttClient, mqttClient.Topics(), byte(cfg.MQTT.QoS), mqtt.DefaultEventBuffer) //nolint:gosec // QoS validated by config
		publisher.SetLogger(log.Component("mqtt"))
		observers = append(observers, publisher)
		g.Go(func() error { return publisher.Run(sinkCtx) })
	} else {
		log.Info("MQTT disabled")
	}
	dev.SetObserver(observers)

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)

		if cfg.Telemetry.Enabled {
			reporter, err := telemetry.NewReporter(dev, influxClient, cfg.GetTelemetryInterval())
			if err != nil {
				return err
			}
			reporter.SetLogger(log.Component("telemetry"))
			g.Go(func() error { return reporter.Run(gctx) })
		}
	} else {
		log.Info("InfluxDB disabled")
	}

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		Device:    dev,
		Banks:     bank.NewSQLiteRepository(db.DB),
		Metrics:   deviceMetrics,
		Gatherer:  registry,
		WebSocket: cfg.WebSocket,
		Hub:       hub,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(gctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}

	log.Info("fontsoundd started", "device", dev.Name(), "api_port", cfg.API.Port)
	<-gctx.Done()

	log.Info("shutdown signal received, stopping")
	if err := server.Close(); err != nil {
		log.Error("error closing API server", "error", err)
	}
	released := dev.Stats().Live
	closeDevice()
	stopSinks()
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("fontsoundd stopped", "fontsounds", released)
	return nil
}
