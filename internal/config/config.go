package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Terrain and weather providers.
	OpenTopoURL     string
	OpenMeteoURL    string
	ProviderTimeout time.Duration
	MeteoTimezone   string
	DEMConcurrency  int

	// Optional Kafka request pipeline.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	providerTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("PROVIDER_TIMEOUT", "20s"))
	if err != nil || providerTimeout <= 0 {
		return nil, errors.New("invalid PROVIDER_TIMEOUT")
	}

	demConcurrency, err := strconv.Atoi(sharedcfg.EnvOrDefault("DEM_CONCURRENCY", "4"))
	if err != nil || demConcurrency <= 0 {
		return nil, errors.New("invalid DEM_CONCURRENCY")
	}

	tz := sharedcfg.EnvOrDefault("METEO_TIMEZONE", "Europe/Paris")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid METEO_TIMEZONE: %w", err)
	}

	kafkaEnabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("KAFKA_ENABLED", "false"))
	if err != nil {
		return nil, errors.New("invalid KAFKA_ENABLED")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenTopoURL:     sharedcfg.EnvOrDefault("OPENTOPO_URL", "https://api.opentopodata.org/v1/eudem25m"),
		OpenMeteoURL:    sharedcfg.EnvOrDefault("OPENMETEO_URL", "https://api.open-meteo.com/v1/forecast"),
		ProviderTimeout: providerTimeout,
		MeteoTimezone:   tz,
		DEMConcurrency:  demConcurrency,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "simulation-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "fire-fronts"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "firefront"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}

	return cfg, nil
}
