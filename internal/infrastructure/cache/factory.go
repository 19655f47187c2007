package cache

import (
	"fmt"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory creates the options store based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisStore creates a Redis-backed store
func (f *StoreFactory) CreateRedisStore() (*RedisStore, error) {
	store, err := NewRedisStore(RedisConfig{
		Addr:      f.redisConfig.Addr(),
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: f.cacheConfig.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis options store: %w", err)
	}
	return store, nil
}

// CreateStore returns the configured backend. With the redis backend an
// unreachable server falls back to memory unless fallback is disabled.
func (f *StoreFactory) CreateStore() (Store, error) {
	if f.cacheConfig.Backend != "redis" {
		f.logger.Info("using in-memory options cache")
		return NewInMemoryStore(), nil
	}

	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis options cache", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for options cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory options cache", zap.Error(err))
	return NewInMemoryStore(), nil
}
