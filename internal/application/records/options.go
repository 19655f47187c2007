package records

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/options"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/cache"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/logger"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
)

// DefaultOptionsTTL is how long an options bundle is served from cache.
const DefaultOptionsTTL = 10 * time.Minute

// OptionsService serves the lookup lists of a module. Bundles are cached in
// the store for the TTL and concurrent misses for the same bundle share one
// upstream call. A cache that fails is bypassed, never fatal.
type OptionsService struct {
	client  *erp.Client
	store   cache.Store
	ttl     time.Duration
	metrics *metrics.Collector
	logger  *zap.Logger
	group   singleflight.Group
}

// NewOptionsService creates the service. store may be nil to disable caching.
func NewOptionsService(client *erp.Client, store cache.Store, ttl time.Duration, m *metrics.Collector, l *zap.Logger) *OptionsService {
	if ttl <= 0 {
		ttl = DefaultOptionsTTL
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &OptionsService{client: client, store: store, ttl: ttl, metrics: m, logger: l}
}

func optionsKey(module, narrow string) string {
	if narrow == "" {
		return module
	}
	return module + "?module=" + narrow
}

// Bundle returns the options of module, narrowed to one sub-module when
// narrow is set.
func (s *OptionsService) Bundle(ctx context.Context, module, narrow string) (options.Bundle, error) {
	module = strings.TrimSpace(module)
	narrow = strings.TrimSpace(narrow)
	key := optionsKey(module, narrow)
	log := logger.WithLogger(ctx, s.logger).With(zap.String("options", key))

	if s.store != nil {
		var cached options.Bundle
		hit, err := cache.GetJSON(ctx, s.store, key, &cached)
		if err != nil {
			log.Warn("options cache read failed", zap.Error(err))
		}
		s.metrics.ObserveOptionsCache(module, hit)
		if hit {
			return cached, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		bundle, err := erp.FetchOptions(ctx, s.client, module, narrow)
		if err != nil {
			return nil, err
		}
		if s.store != nil {
			if err := cache.SetJSON(ctx, s.store, key, bundle, s.ttl); err != nil {
				log.Warn("options cache write failed", zap.Error(err))
			}
		}
		return bundle, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(options.Bundle), nil
}

// Invalidate drops the cached bundle so the next call refetches it.
func (s *OptionsService) Invalidate(ctx context.Context, module, narrow string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, optionsKey(strings.TrimSpace(module), strings.TrimSpace(narrow)))
}
