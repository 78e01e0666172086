package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/logwardstack/logward-detect/internal/api"
	"github.com/logwardstack/logward-detect/internal/cache"
	"github.com/logwardstack/logward-detect/internal/config"
	"github.com/logwardstack/logward-detect/internal/engine"
	"github.com/logwardstack/logward-detect/internal/metrics"
	"github.com/logwardstack/logward-detect/internal/services"
	"github.com/logwardstack/logward-detect/internal/utils"
	pkgcache "github.com/logwardstack/logward-detect/pkg/cache"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting logward-detect", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewValkeyProvider(cache.ValkeyConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			MaxRetries:   cfg.Cache.MaxRetries,
			TLS:          cfg.Cache.TLS,
		})
		if err != nil {
			logger.Warn("valkey cache unavailable, running without shared report cache", slog.Any("error", err))
		} else {
			cacheProvider = provider
			defer provider.Close()
		}
	}

	scorer := engine.NewRiskScorer(cfg.Risk.Weights, logger)
	pipeline := engine.NewPipeline(logger, scorer)
	reports := pkgcache.NewResultStore(cfg.Results.TTL, cfg.Results.MaxEntries)

	analysisService := services.NewAnalysisService(logger, pipeline, reports, cacheProvider, cfg.Cache.ReportTTL)
	handlers := api.NewHandlers(analysisService, logger, cfg.Server.MaxUploadBytes)

	server, err := api.NewServer(cfg.Server, handlers, logger)
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("logward-detect stopped")
}
