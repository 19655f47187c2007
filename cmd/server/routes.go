package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	accountingapp "github.com/kidusabdula/versaforge-erp-sub001/internal/application/accounting"
	assetsapp "github.com/kidusabdula/versaforge-erp-sub001/internal/application/assets"
	crmapp "github.com/kidusabdula/versaforge-erp-sub001/internal/application/crm"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/desk"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/config"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/logger"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/handler"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/middleware"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/router"
)

// setupEngine builds the gin engine with the middleware stack and every route
// of the desk. collector may be nil when metrics are disabled.
func setupEngine(cfg *config.Config, log *zap.Logger, d *desk.Desk, registry *views.Registry, collector *metrics.Collector) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// RequestID first: logging and tracing read it. Preflights end in CORS
	// before reaching the rate limiter.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAttributes(), middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(collector))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{middleware.RequestIDHeader, "Content-Disposition", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	if cfg.HTTP.RateLimit > 0 {
		engine.Use(middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst).Middleware())
		log.Info("Rate limiting enabled",
			zap.Float64("per_second", cfg.HTTP.RateLimit),
			zap.Int("burst", cfg.HTTP.RateBurst),
		)
	}

	engine.GET("/health", handler.NewHealthHandler(cfg.App.Name, registry).Health)
	if collector != nil {
		engine.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
	}

	var pages []handler.Describer
	mount := func(group *router.DomainGroup, resources ...describedRegistrar) *router.DomainGroup {
		for _, r := range resources {
			group.Mount(r)
			pages = append(pages, r)
		}
		return group
	}

	accounting := mount(
		router.NewDomainGroup(accountingapp.Module, "/"+accountingapp.Module).
			Mount(handler.NewOptionsHandler(accountingapp.Module, d.Options)),
		handler.NewResourceHandler(d.Accounting.Payments),
	)
	assets := mount(
		router.NewDomainGroup(assetsapp.Module, "/"+assetsapp.Module).
			Mount(handler.NewOptionsHandler(assetsapp.Module, d.Options)),
		handler.NewResourceHandler(d.Assets.Assets),
		handler.NewResourceHandler(d.Assets.Maintenance),
		handler.NewResourceHandler(d.Assets.Movements),
		handler.NewResourceHandler(d.Assets.Repairs),
		handler.NewResourceHandler(d.Assets.Adjustments),
	)
	crm := mount(
		router.NewDomainGroup(crmapp.Module, "/"+crmapp.Module).
			Mount(handler.NewOptionsHandler(crmapp.Module, d.Options)),
		handler.NewResourceHandler(d.CRM.Leads),
		handler.NewResourceHandler(d.CRM.Opportunities),
		handler.NewResourceHandler(d.CRM.Quotations),
		handler.NewResourceHandler(d.CRM.SalesOrders),
		handler.NewResourceHandler(d.CRM.Activities),
		handler.NewResourceHandler(d.CRM.Communications),
	)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(accounting).
		Register(assets).
		Register(crm).
		Register(handler.NewCatalogHandler(pages...)).
		Setup()

	return engine
}

type describedRegistrar interface {
	router.RouteRegistrar
	handler.Describer
}
