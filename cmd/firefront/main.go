package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/firefront/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/firefront/internal/adapter/kafka"
	"github.com/couchcryptid/firefront/internal/adapter/openmeteo"
	"github.com/couchcryptid/firefront/internal/adapter/opentopo"
	"github.com/couchcryptid/firefront/internal/config"
	"github.com/couchcryptid/firefront/internal/observability"
	"github.com/couchcryptid/firefront/internal/pipeline"
	"github.com/couchcryptid/firefront/internal/simulation"
	"github.com/couchcryptid/firefront/internal/slope"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

// alwaysReady serves /readyz when no request pipeline is running.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	dem := opentopo.NewClient(cfg.OpenTopoURL, cfg.ProviderTimeout, metrics, logger)
	slopeOpts := slope.DefaultOptions()
	slopeOpts.Concurrency = cfg.DEMConcurrency
	estimator := slope.NewEstimator(dem, slopeOpts, logger)

	meteo := openmeteo.NewClient(cfg.OpenMeteoURL, cfg.ProviderTimeout, nil, metrics, logger)

	simOpts := simulation.DefaultOptions()
	simOpts.Timezone = cfg.MeteoTimezone
	sim := simulation.New(estimator, meteo, simOpts, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ready sharedobs.ReadinessChecker = alwaysReady{}
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(sim, logger), writer, logger, metrics, cfg.BatchSize)
		ready = p

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
		logger.Info("kafka request pipeline enabled",
			"source_topic", cfg.KafkaSourceTopic, "sink_topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka request pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, sim, ready, logger)

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
