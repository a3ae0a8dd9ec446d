package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crop-production-dashboard/internal/adapter/agroapi"
	httpadapter "github.com/couchcryptid/crop-production-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/crop-production-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/crop-production-dashboard/internal/adapter/nominatim"
	"github.com/couchcryptid/crop-production-dashboard/internal/config"
	"github.com/couchcryptid/crop-production-dashboard/internal/dashboard"
	"github.com/couchcryptid/crop-production-dashboard/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := agroapi.NewClient(cfg.APIBaseURL, cfg.APITimeout, metrics, logger)
	geocoder := nominatim.NewClient(cfg.GeocoderURL, cfg.GeocoderCountryCode, cfg.GeocoderUserAgent,
		cfg.GeocoderTimeout, metrics, logger)
	cache := nominatim.NewCache(geocoder, cfg.GeocoderCountry, metrics, logger)

	// Snapshot publishing is optional (enabled via KAFKA_BROKERS).
	var publisher dashboard.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	app := dashboard.New(source, cache, publisher, logger, metrics, dashboard.Settings{
		LatestYear:     cfg.LatestYear,
		DefaultCulture: cfg.DefaultCulture,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, app, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server; /readyz reports 503 until the first render.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go app.Bootstrap(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
