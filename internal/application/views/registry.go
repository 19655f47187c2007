package views

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
)

// DefaultMaxEntries bounds the registry when no size is configured.
const DefaultMaxEntries = 256

// Registry keeps one view per (page, composed query), evicting the least
// recently used view once full.
type Registry struct {
	mu      sync.Mutex
	views   *lru.Cache[string, any]
	metrics *metrics.Collector
}

// NewRegistry creates a registry holding at most size views.
func NewRegistry(size int, m *metrics.Collector) (*Registry, error) {
	if size <= 0 {
		size = DefaultMaxEntries
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create view registry: %w", err)
	}
	return &Registry{views: cache, metrics: m}, nil
}

// Len returns the number of views held.
func (r *Registry) Len() int {
	return r.views.Len()
}

// ViewFor returns the view registered under page and query, creating it with
// create when absent. The boolean reports whether it was created.
func ViewFor[T any](r *Registry, page, query string, create func() *View[T]) (*View[T], bool) {
	key := page + "?" + query

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.views.Get(key); ok {
		if v, ok := existing.(*View[T]); ok {
			return v, false
		}
	}
	v := create()
	r.views.Add(key, v)
	r.metrics.SetViewsActive(r.views.Len())
	return v, true
}
