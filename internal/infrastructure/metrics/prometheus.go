// Package metrics exposes desk and upstream ERP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for upstream calls.
const (
	OutcomeSuccess   = "success"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport_error"
)

// Config holds configuration for the collector.
type Config struct {
	// Namespace prefixes every metric name. Default: "erp_desk".
	Namespace string

	// HistogramBuckets are the buckets for duration histograms.
	// Default: prometheus.DefBuckets
	HistogramBuckets []float64
}

// Collector owns a private registry with every desk metric.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Collector struct {
	registry *prometheus.Registry

	erpRequestsTotal   *prometheus.CounterVec
	erpRequestDuration *prometheus.HistogramVec
	erpRetriesTotal    *prometheus.CounterVec
	listRequestsTotal  *prometheus.CounterVec
	listRows           *prometheus.GaugeVec
	staleServedTotal   *prometheus.CounterVec
	optionsCacheTotal  *prometheus.CounterVec
	viewsActive        prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec
	httpActiveRequests  prometheus.Gauge
}

// New creates a Collector. Go runtime and process collectors are registered too.
func New(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = "erp_desk"
	}
	if len(cfg.HistogramBuckets) == 0 {
		cfg.HistogramBuckets = prometheus.DefBuckets
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.erpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "erp",
		Name:      "requests_total",
		Help:      "Total number of requests sent to the ERP server.",
	}, []string{"resource", "method", "outcome", "status"})

	c.erpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "erp",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests sent to the ERP server, retries included.",
		Buckets:   cfg.HistogramBuckets,
	}, []string{"resource", "method"})

	c.erpRetriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "erp",
		Name:      "retries_total",
		Help:      "Total number of retried ERP requests.",
	}, []string{"resource"})

	c.listRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "list",
		Name:      "loads_total",
		Help:      "Total number of list view loads by page and mode.",
	}, []string{"page", "mode", "outcome"})

	c.listRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: "list",
		Name:      "rows",
		Help:      "Rows held by the most recently loaded view of a page.",
	}, []string{"page"})

	c.staleServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "list",
		Name:      "stale_served_total",
		Help:      "Total number of list responses served from a previous load after a failed refresh.",
	}, []string{"page"})

	c.optionsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "options",
		Name:      "cache_lookups_total",
		Help:      "Options bundle cache lookups by result.",
	}, []string{"module", "result"})

	c.viewsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: "list",
		Name:      "views_active",
		Help:      "Number of list views held in the registry.",
	})

	c.httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests served.",
	}, []string{"method", "route", "status"})

	c.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency distribution in seconds.",
		Buckets:   cfg.HistogramBuckets,
	}, []string{"method", "route"})

	c.httpResponseSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response body size distribution in bytes.",
		Buckets:   []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000},
	}, []string{"method", "route"})

	c.httpActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "active_requests",
		Help:      "Number of HTTP requests being served.",
	})

	c.registry.MustRegister(
		c.erpRequestsTotal,
		c.erpRequestDuration,
		c.erpRetriesTotal,
		c.listRequestsTotal,
		c.listRows,
		c.staleServedTotal,
		c.optionsCacheTotal,
		c.viewsActive,
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.httpResponseSize,
		c.httpActiveRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveERPRequest records one upstream call. status is 0 for transport errors.
func (c *Collector) ObserveERPRequest(resource, method string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	outcome := OutcomeSuccess
	switch {
	case status == 0:
		outcome = OutcomeTransport
	case status < 200 || status >= 300:
		outcome = OutcomeHTTPError
	}
	c.erpRequestsTotal.WithLabelValues(resource, method, outcome, strconv.Itoa(status)).Inc()
	c.erpRequestDuration.WithLabelValues(resource, method).Observe(duration.Seconds())
}

// IncERPRetry counts a retried upstream call.
func (c *Collector) IncERPRetry(resource string) {
	if c == nil {
		return
	}
	c.erpRetriesTotal.WithLabelValues(resource).Inc()
}

// ObserveListLoad records a list view load and the resulting row count.
func (c *Collector) ObserveListLoad(page, mode string, err error, rows int) {
	if c == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = "error"
	}
	c.listRequestsTotal.WithLabelValues(page, mode, outcome).Inc()
	c.listRows.WithLabelValues(page).Set(float64(rows))
}

// IncStaleServed counts a response served from a previous load.
func (c *Collector) IncStaleServed(page string) {
	if c == nil {
		return
	}
	c.staleServedTotal.WithLabelValues(page).Inc()
}

// ObserveOptionsCache records an options cache hit or miss.
func (c *Collector) ObserveOptionsCache(module string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.optionsCacheTotal.WithLabelValues(module, result).Inc()
}

// SetViewsActive sets the registry size gauge.
func (c *Collector) SetViewsActive(n int) {
	if c == nil {
		return
	}
	c.viewsActive.Set(float64(n))
}

// HTTPStarted counts a request entering the server.
func (c *Collector) HTTPStarted() {
	if c == nil {
		return
	}
	c.httpActiveRequests.Inc()
}

// ObserveHTTPRequest records a finished request. route is the matched
// pattern, never the raw path.
func (c *Collector) ObserveHTTPRequest(method, route string, status int, duration time.Duration, size int) {
	if c == nil {
		return
	}
	c.httpActiveRequests.Dec()
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	if size > 0 {
		c.httpResponseSize.WithLabelValues(method, route).Observe(float64(size))
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
