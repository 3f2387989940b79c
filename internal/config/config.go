package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weatherlink-poller/internal/weather"
)

const (
	defaultPollInterval = 60 * time.Second
	minPollInterval     = 5 * time.Second
	maxPollInterval     = 600 * time.Second
)

var validate = validator.New()

type AppConfig struct {
	// Device hosts; at least one should be set.
	WeatherHost string `validate:"omitempty,hostname_port|hostname|ip"`
	AQIHost     string `validate:"omitempty,hostname_port|hostname|ip"`

	// PollInterval controls how often the devices are polled.
	PollInterval time.Duration
	HTTPTimeout  time.Duration

	WeatherTransmitterID string
	SoilTransmitterID    string
	WindMeasurement      weather.WindMeasurement
	RainCollector        weather.RainCollector
	Mappings             string
	TransmitterOrder     string
	Hardware             string

	// In-memory store retention.
	StoreMaxHistory int           // max number of records (0 = unlimited)
	StoreMaxAge     time.Duration // max age of records (0 = unlimited)

	Port string

	// Optional sinks; each is enabled when its address is set.
	KafkaBrokers      []string
	KafkaTopic        string
	DatabaseURL       string
	InfluxAddr        string
	InfluxUser        string
	InfluxPassword    string
	InfluxDB          string
	InfluxMeasurement string
}

// Load reads configuration from the environment with sensible defaults.
// Invalid device options are logged and replaced by their defaults; only
// unparseable durations are returned as errors.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.WeatherHost = strings.TrimSpace(os.Getenv("WEATHER_HOST"))
	cfg.AQIHost = strings.TrimSpace(os.Getenv("AQI_HOST"))

	cfg.PollInterval = loadPollInterval()

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "4s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %q", os.Getenv("HTTP_TIMEOUT"))
	}
	cfg.HTTPTimeout = timeout

	cfg.WeatherTransmitterID = getenvDefault("WEATHER_TRANSMITTER_ID", "1")
	cfg.SoilTransmitterID = getenvDefault("SOIL_TRANSMITTER_ID", "2")

	cfg.WindMeasurement = weather.WindMeasurement(getenvInt("WIND_MEASUREMENT", int(weather.WindAvg1Min)))
	if !cfg.WindMeasurement.Valid() {
		log.Printf("ERROR: invalid WIND_MEASUREMENT %d (0, 1 or 2) - using default of 1", cfg.WindMeasurement)
		cfg.WindMeasurement = weather.WindAvg1Min
	}

	cfg.RainCollector = weather.RainCollector(getenvInt("RAIN_COLLECTOR", int(weather.RainCollector001In)))
	if !cfg.RainCollector.Valid() {
		log.Printf("ERROR: invalid RAIN_COLLECTOR %d - defaulting to 1", cfg.RainCollector)
		cfg.RainCollector = weather.RainCollector001In
	}

	cfg.Mappings = os.Getenv("MAPPINGS")
	cfg.TransmitterOrder = getenvDefault("TRANSMITTERS_ORDERED", weather.DefaultTransmitterOrder)
	cfg.Hardware = getenvDefault("HARDWARE", "DavisWWW")

	// Roughly 24h at the default poll interval.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 1440)
	maxAge, err := time.ParseDuration(getenvDefault("STORE_MAX_AGE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge
	cfg.Port = getenvDefault("PORT", "8080")

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	cfg.KafkaTopic = getenvDefault("KAFKA_TOPIC", "weatherlink-records")
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.InfluxAddr = strings.TrimSpace(os.Getenv("INFLUX_ADDR"))
	cfg.InfluxUser = os.Getenv("INFLUX_USER")
	cfg.InfluxPassword = os.Getenv("INFLUX_PASSWORD")
	cfg.InfluxDB = getenvDefault("INFLUX_DB", "weather")
	cfg.InfluxMeasurement = getenvDefault("INFLUX_MEASUREMENT", "weather")

	cfg.checkHosts()
	return cfg, nil
}

func loadPollInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("POLL_INTERVAL"))
	if v == "" {
		return defaultPollInterval
	}
	secs, err := strconv.ParseFloat(v, 64)
	d := time.Duration(secs * float64(time.Second))
	if err != nil || d < minPollInterval || d > maxPollInterval {
		log.Printf("ERROR: invalid POLL_INTERVAL %q (5 <= poll_interval <= 600) - using default of 60", v)
		return defaultPollInterval
	}
	return d
}

// checkHosts drops host values that are not a hostname or address and logs
// when no device is left to poll.
func (c *AppConfig) checkHosts() {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "WeatherHost":
					log.Printf("ERROR: invalid WEATHER_HOST %q", c.WeatherHost)
					c.WeatherHost = ""
				case "AQIHost":
					log.Printf("ERROR: invalid AQI_HOST %q", c.AQIHost)
					c.AQIHost = ""
				}
			}
		}
	}
	if c.WeatherHost == "" && c.AQIHost == "" {
		log.Printf("ERROR: must specify WEATHER_HOST and/or AQI_HOST")
	}
}

// EngineConfig returns the options for the normalization engine.
func (c *AppConfig) EngineConfig() weather.EngineConfig {
	return weather.EngineConfig{
		Wind: c.WindMeasurement,
		Defaults: weather.GroupDefaults{
			Weather: c.WeatherTransmitterID,
			Soil:    c.SoilTransmitterID,
		},
		Mappings:         c.Mappings,
		TransmitterOrder: c.TransmitterOrder,
		RainCollector:    c.RainCollector,
		Hardware:         c.Hardware,
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Printf("ERROR: invalid %s %q - using default of %d", key, v, def)
	}
	return def
}
