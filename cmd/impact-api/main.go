package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/bharatparmar35036-ship-it/asteroid-sim/internal/adapter/http"
	kafkaadapter "github.com/bharatparmar35036-ship-it/asteroid-sim/internal/adapter/kafka"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/adapter/neows"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/config"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/observability"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	calc, err := catalog.Calculator()
	if err != nil {
		logger.Error("invalid damage policy", "error", err)
		os.Exit(1)
	}
	densities := catalog.DensityTable()

	gallery := newGallery(cfg, catalog, logger, metrics)

	svc := httpadapter.Services{
		Calculator:     calc,
		Densities:      densities,
		Gallery:        gallery,
		Ready:          httpadapter.AlwaysReady,
		Metrics:        metrics,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}

	// Start scenario stream (feature-flagged via KAFKA_ENABLED).
	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(calc, densities, metrics, logger)
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		svc.Ready = p

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("scenario stream error", "error", err)
			}
		}()
		logger.Info("scenario stream enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		logger.Info("scenario stream disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	go func() {
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
	observability.ShutdownTracing(shutdownCtx, shutdownTracing, logger)

	logger.Info("shutdown complete")
}

// newGallery returns the live NeoWs gallery when an API key is configured,
// falling back to the curated presets otherwise.
func newGallery(cfg *config.Config, catalog *config.Catalog, logger *slog.Logger, metrics *observability.Metrics) domain.Gallery {
	static := domain.StaticGallery(catalog.Presets)
	if !cfg.NeoWsEnabled {
		metrics.NeoWsEnabled.Set(0)
		logger.Info("neows gallery disabled, serving curated presets", "presets", len(static))
		return static
	}

	client := neows.NewClient(neows.Options{
		BaseURL:   cfg.NeoWsBaseURL,
		APIKey:    cfg.NASAAPIKey,
		Timeout:   cfg.NeoWsTimeout,
		RateLimit: cfg.NeoWsRateLimit,
		RateBurst: cfg.NeoWsRateBurst,
	}, logger, metrics)
	source := neows.NewCachedSource(client, cfg.NeoWsCacheSize, cfg.NeoWsCacheTTL, clockwork.NewRealClock(), metrics)

	metrics.NeoWsEnabled.Set(1)
	logger.Info("neows gallery enabled",
		"cache_size", cfg.NeoWsCacheSize,
		"cache_ttl", cfg.NeoWsCacheTTL,
		"timeout", cfg.NeoWsTimeout,
		"rate_limit", cfg.NeoWsRateLimit,
	)
	return neows.NewGallery(source, catalog.Presets, static, cfg.NeoWsGalleryMax, logger, metrics)
}
