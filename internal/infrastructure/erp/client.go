// Package erp is the HTTP client for the upstream ERP REST API.
// It handles token authentication, retries, rate limiting and the
// { "data": { <key>: ... } } response envelope.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/logger"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config configures the client.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
	UserAgent string

	// RateLimit is the sustained requests per second; 0 disables limiting.
	RateLimit float64
	RateBurst int
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelay: 200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
	}
}

// Client talks to the ERP server.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	headers    map[string]string
	retry      RetryConfig
	limiter    *rate.Limiter
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// WithMetrics records every call on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the fallback logger used when the request context has none.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for cfg.BaseURL.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ERP-Desk/1.0"
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"User-Agent":   cfg.UserAgent,
		},
		retry:  DefaultRetryConfig(),
		logger: zap.NewNop(),
	}
	if cfg.APIKey != "" {
		c.headers["Authorization"] = fmt.Sprintf("token %s:%s", cfg.APIKey, cfg.APISecret)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.retry.Multiplier <= 0 {
		c.retry.Multiplier = 2.0
	}
	return c, nil
}

// Request is one call to the ERP API.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a completed call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Attempts   int
}

// Do executes req. GET requests are retried on transport errors, 5xx and 429;
// writes are sent exactly once. A non-2xx answer returns *APIError, a
// transport failure returns *TransportError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := c.buildURL(req.Path, req.Query)
	resource := resourceOf(req.Path)

	var payload []byte
	if req.Body != nil {
		var err error
		if payload, err = json.Marshal(req.Body); err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	ctx, span := telemetry.StartSpan(ctx, "erp."+strings.ToLower(req.Method),
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("http.request.method", req.Method),
		telemetry.WithAttribute("url.path", u.Path),
		telemetry.WithAttribute(telemetry.SpanAttrDoctype, resource),
	)
	defer span.End()

	maxRetries := 0
	if req.Method == http.MethodGet {
		maxRetries = c.retry.MaxRetries
	}

	start := time.Now()
	resp, err := c.attempt(ctx, req.Method, u, payload, maxRetries, resource)
	status := 0
	if resp != nil {
		status = resp.StatusCode
		resp.Duration = time.Since(start)
		telemetry.SetAttributes(span, "http.response.status_code", status, telemetry.SpanAttrHTTPRetry, resp.Attempts-1)
	}
	c.metrics.ObserveERPRequest(resource, req.Method, status, time.Since(start))

	if err != nil {
		telemetry.RecordError(span, err)
		c.log(ctx).Warn("ERP request failed",
			zap.String("method", req.Method),
			zap.String("path", u.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
		return resp, err
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, method string, u *url.URL, payload []byte, maxRetries int, resource string) (*Response, error) {
	var (
		resp *Response
		err  error
	)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.IncERPRetry(resource)
			select {
			case <-ctx.Done():
				return resp, &TransportError{Method: method, Path: u.Path, Err: ctx.Err()}
			case <-time.After(c.backoff(attempt)):
			}
		}
		if c.limiter != nil {
			if werr := c.limiter.Wait(ctx); werr != nil {
				return resp, &TransportError{Method: method, Path: u.Path, Err: werr}
			}
		}

		resp, err = c.send(ctx, method, u, payload)
		if resp != nil {
			resp.Attempts = attempt + 1
		}
		if !retryable(resp, err) || ctx.Err() != nil {
			break
		}
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, method string, u *url.URL, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	if id := logger.GetRequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &Response{}, &TransportError{Method: method, Path: u.Path, Err: err}
	}
	defer httpResp.Body.Close()

	resp := &Response{StatusCode: httpResp.StatusCode, Headers: httpResp.Header}
	resp.Body, err = io.ReadAll(httpResp.Body)
	if err != nil {
		return resp, &TransportError{Method: method, Path: u.Path, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return resp, newAPIError(method, u.Path, httpResp.StatusCode, resp.Body)
	}
	return resp, nil
}

func retryable(resp *Response, err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(*TransportError); ok {
		return true
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Query: query, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// BaseURL returns the ERP base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) buildURL(path string, query url.Values) *url.URL {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

// backoff returns the delay before the given retry attempt, with ±25% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.retry.RetryDelay) * math.Pow(c.retry.Multiplier, float64(attempt-1))
	if ceiling := float64(c.retry.MaxDelay); ceiling > 0 && delay > ceiling {
		delay = ceiling
	}
	jitter := delay * 0.25
	return time.Duration(delay + (rand.Float64()*2-1)*jitter)
}

func (c *Client) log(ctx context.Context) *logger.ContextLogger {
	if l := logger.FromContext(ctx); l != nil && l.Core().Enabled(zap.WarnLevel) {
		return logger.L(ctx)
	}
	return logger.WithLogger(ctx, c.logger)
}

// resourceOf derives a low-cardinality metric label from an API path:
// "/api/crm/leads/CRM-LEAD-0001" -> "crm/leads".
func resourceOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && parts[0] == "api" {
		parts = parts[1:]
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "/")
}
