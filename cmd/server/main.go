// Package main runs the ERP desk HTTP service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/desk"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/cache"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/config"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/logger"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/telemetry"
)

// Set at build time with -ldflags.
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ERP desk",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("erp", cfg.ERP.BaseURL),
		zap.String("version", version),
	)

	// Tracing and profiling
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		Environment:       cfg.App.Env,
		Upstream:          cfg.ERP.BaseURL,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tp.IsEnabled() {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace})
	}

	// Options cache
	store, err := cache.NewStoreFactory(cfg.Redis, cfg.Cache,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create options cache", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing options cache", zap.Error(err))
		}
	}()

	// ERP client
	client, err := erp.NewClient(erp.Config{
		BaseURL:   cfg.ERP.BaseURL,
		APIKey:    cfg.ERP.APIKey,
		APISecret: cfg.ERP.APISecret,
		Timeout:   cfg.ERP.Timeout,
		UserAgent: cfg.App.Name + "/" + version,
		RateLimit: cfg.ERP.RateLimit,
		RateBurst: cfg.ERP.RateBurst,
	},
		erp.WithRetryConfig(erp.RetryConfig{
			MaxRetries: cfg.ERP.MaxRetries,
			RetryDelay: cfg.ERP.RetryBackoff,
			MaxDelay:   cfg.ERP.MaxBackoff,
			Multiplier: erp.DefaultRetryConfig().Multiplier,
		}),
		erp.WithMetrics(collector),
		erp.WithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to create ERP client", zap.Error(err))
	}

	registry, err := views.NewRegistry(cfg.Views.MaxEntries, collector)
	if err != nil {
		log.Fatal("Failed to create view registry", zap.Error(err))
	}

	optionsService := records.NewOptionsService(client, store, cfg.Cache.OptionsTTL, collector, log)
	d := desk.New(records.Deps{
		Client:   client,
		Registry: registry,
		Metrics:  collector,
		Logger:   log,
		Validate: records.NewValidator(),
		MaxAge:   cfg.Views.MaxAge,
	}, optionsService)

	engine := setupEngine(cfg, log, d, registry, collector)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.Int("pages", len(d.Pages())))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
