package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	httpapi "github.com/i474232898/weatherlink-poller/internal/api/http"
	"github.com/i474232898/weatherlink-poller/internal/config"
	"github.com/i474232898/weatherlink-poller/internal/observability"
	"github.com/i474232898/weatherlink-poller/internal/scheduler"
	"github.com/i474232898/weatherlink-poller/internal/sink"
	"github.com/i474232898/weatherlink-poller/internal/store"
	"github.com/i474232898/weatherlink-poller/internal/weather"
	"github.com/i474232898/weatherlink-poller/internal/weather/providers"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file to load before reading the environment")
	once := flag.Bool("once", false, "run a single poll cycle, print the record as JSON and exit")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("INFO: No %s file found or error loading it: %v", *envFile, err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for device calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Air quality is listed first; the service orders by kind regardless.
	var sources []weather.Source
	if cfg.AQIHost != "" {
		sources = append(sources, providers.NewWeatherLinkProvider(httpClient, weather.SourceAirQuality, cfg.AQIHost))
	}
	if cfg.WeatherHost != "" {
		sources = append(sources, providers.NewWeatherLinkProvider(httpClient, weather.SourceWeather, cfg.WeatherHost))
	}

	engine := weather.NewEngine(cfg.EngineConfig())
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sinks, closers := buildSinks(ctx, cfg)
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Printf("error closing sink: %v", err)
			}
		}
	}()

	service := weather.NewService(engine, memStore, sources, metrics, weather.WithSinks(sinks...))

	if *once {
		pollCtx, cancel := context.WithTimeout(ctx, cfg.PollInterval)
		defer cancel()
		rec, err := service.Poll(pollCtx)
		if err != nil {
			log.Fatalf("poll failed: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			log.Fatalf("encode record: %v", err)
		}
		return
	}

	// Scheduler that periodically polls the devices.
	sched := scheduler.New(cfg.PollInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// buildSinks creates the record sinks enabled by configuration. A sink that
// cannot be set up is logged and left out.
func buildSinks(ctx context.Context, cfg *config.AppConfig) ([]weather.Sink, []io.Closer) {
	var (
		sinks   []weather.Sink
		closers []io.Closer
	)

	if len(cfg.KafkaBrokers) > 0 {
		k := sink.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, k)
		closers = append(closers, k)
		log.Printf("INFO: publishing records to kafka topic %s", cfg.KafkaTopic)
	}

	if cfg.DatabaseURL != "" {
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pg, err := sink.NewPostgresSink(pgCtx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Printf("ERROR: postgres sink disabled: %v", err)
		} else {
			sinks = append(sinks, pg)
			closers = append(closers, pg)
			log.Printf("INFO: storing records in postgres")
		}
	}

	if cfg.InfluxAddr != "" {
		in, err := sink.NewInfluxSink(cfg.InfluxAddr, cfg.InfluxUser, cfg.InfluxPassword, cfg.InfluxDB, cfg.InfluxMeasurement)
		if err != nil {
			log.Printf("ERROR: influx sink disabled: %v", err)
		} else {
			sinks = append(sinks, in)
			closers = append(closers, in)
			log.Printf("INFO: writing records to influx database %s", cfg.InfluxDB)
		}
	}

	return sinks, closers
}
