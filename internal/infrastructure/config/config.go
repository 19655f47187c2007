package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	ERP       ERPConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Views     ViewsConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// ERPConfig describes the upstream ERP server
type ERPConfig struct {
	BaseURL      string
	APIKey       string
	APISecret    string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	MaxBackoff   time.Duration
	RateLimit    float64 // requests per second, 0 disables the limiter
	RateBurst    int
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig controls the options bundle cache
type CacheConfig struct {
	Backend    string // redis or memory
	OptionsTTL time.Duration
	KeyPrefix  string
}

// ViewsConfig bounds the per-query list view registry
type ViewsConfig struct {
	MaxEntries      int
	RefreshInterval time.Duration // deskctl -watch default
	// MaxAge lets list requests reuse a load younger than this. 0 fetches every time.
	MaxAge time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodyBytes     int64
	RequestTimeout   time.Duration
	RateLimit        float64 // requests per second per client, 0 disables
	RateBurst        int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// TelemetryConfig holds OpenTelemetry and Pyroscope configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool

	ProfilingEnabled       bool
	ProfilingServerAddress string
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with DESK_ prefix (e.g., DESK_ERP_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/erp-desk")
	v.SetDefault("metrics.enabled", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := fromViper(v)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		ERP: ERPConfig{
			BaseURL:      v.GetString("erp.base_url"),
			APIKey:       v.GetString("erp.api_key"),
			APISecret:    v.GetString("erp.api_secret"),
			Timeout:      v.GetDuration("erp.timeout"),
			MaxRetries:   v.GetInt("erp.max_retries"),
			RetryBackoff: v.GetDuration("erp.retry_backoff"),
			MaxBackoff:   v.GetDuration("erp.max_backoff"),
			RateLimit:    v.GetFloat64("erp.rate_limit"),
			RateBurst:    v.GetInt("erp.rate_burst"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Backend:    v.GetString("cache.backend"),
			OptionsTTL: v.GetDuration("cache.options_ttl"),
			KeyPrefix:  v.GetString("cache.key_prefix"),
		},
		Views: ViewsConfig{
			MaxEntries:      v.GetInt("views.max_entries"),
			RefreshInterval: v.GetDuration("views.refresh_interval"),
			MaxAge:          v.GetDuration("views.max_age"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodyBytes:     v.GetInt64("http.max_body_bytes"),
			RequestTimeout:   v.GetDuration("http.request_timeout"),
			RateLimit:        v.GetFloat64("http.rate_limit"),
			RateBurst:        v.GetInt("http.rate_burst"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:                v.GetBool("telemetry.enabled"),
			CollectorEndpoint:      v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:          v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:            v.GetString("telemetry.service_name"),
			Insecure:               v.GetBool("telemetry.insecure"),
			ProfilingEnabled:       v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddress: v.GetString("telemetry.profiling_server_address"),
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("metrics.enabled"),
			Path:      v.GetString("metrics.path"),
			Namespace: v.GetString("metrics.namespace"),
		},
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "erp-desk"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.ERP.BaseURL == "" {
		cfg.ERP.BaseURL = "http://localhost:8000"
	}
	cfg.ERP.BaseURL = strings.TrimRight(cfg.ERP.BaseURL, "/")
	if cfg.ERP.Timeout == 0 {
		cfg.ERP.Timeout = 15 * time.Second
	}
	if cfg.ERP.MaxRetries == 0 {
		cfg.ERP.MaxRetries = 3
	}
	if cfg.ERP.RetryBackoff == 0 {
		cfg.ERP.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.ERP.MaxBackoff == 0 {
		cfg.ERP.MaxBackoff = 5 * time.Second
	}
	if cfg.ERP.RateBurst == 0 {
		cfg.ERP.RateBurst = 10
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.OptionsTTL == 0 {
		cfg.Cache.OptionsTTL = 10 * time.Minute
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "desk:options:"
	}

	if cfg.Views.MaxEntries == 0 {
		cfg.Views.MaxEntries = 256
	}
	if cfg.Views.RefreshInterval == 0 {
		cfg.Views.RefreshInterval = 30 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodyBytes == 0 {
		cfg.HTTP.MaxBodyBytes = 1 << 20
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTP.RateBurst == 0 {
		cfg.HTTP.RateBurst = 20
	}
	// No default origins: cross-origin requests stay blocked until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "erp_desk"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.ERP.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("erp.base_url must be an absolute URL, got %q", c.ERP.BaseURL)
	}
	if (c.ERP.APIKey == "") != (c.ERP.APISecret == "") {
		return fmt.Errorf("erp.api_key and erp.api_secret must be set together")
	}
	if c.ERP.MaxRetries < 0 {
		return fmt.Errorf("erp.max_retries cannot be negative")
	}
	if c.ERP.RateLimit < 0 {
		return fmt.Errorf("erp.rate_limit cannot be negative")
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}

	if c.Views.MaxAge < 0 {
		return fmt.Errorf("views.max_age cannot be negative")
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit cannot be negative")
	}

	if c.Views.MaxEntries < 1 {
		return fmt.Errorf("views.max_entries must be positive")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServerAddress == "" {
		return fmt.Errorf("telemetry.profiling_server_address is required when profiling is enabled")
	}

	if c.App.Env == "production" {
		if u.Scheme != "https" {
			return fmt.Errorf("erp.base_url must use https in production")
		}
		if c.ERP.APIKey == "" {
			return fmt.Errorf("erp.api_key is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}
	return nil
}
