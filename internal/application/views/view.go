// Package views holds the list view controller shared by every listing page:
// it fetches a filtered collection, keeps the last good copy when a refresh
// fails, and discards responses that a newer load has superseded.
package views

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/logger"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/telemetry"
)

// ErrSuperseded is returned by Load when a newer load was issued while this
// one was in flight. Its result was discarded.
var ErrSuperseded = errors.New("views: load superseded by a newer request")

// Mode distinguishes the first load of a page from a refresh.
type Mode int

const (
	// Initial sets Loading for the duration of the request.
	Initial Mode = iota
	// Background only sets Refreshing.
	Background
)

func (m Mode) String() string {
	if m == Initial {
		return "initial"
	}
	return "background"
}

// Source fetches a collection for a server-side filter.
type Source[T any] interface {
	Fetch(ctx context.Context, filter listview.Filter) ([]T, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, filter listview.Filter) ([]T, error)

func (f SourceFunc[T]) Fetch(ctx context.Context, filter listview.Filter) ([]T, error) {
	return f(ctx, filter)
}

// Notifier tells the user that a load failed.
type Notifier interface {
	Notify(ctx context.Context, page string, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, page string, err error)

func (f NotifierFunc) Notify(ctx context.Context, page string, err error) { f(ctx, page, err) }

// LogNotifier reports failures as warnings.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(ctx context.Context, page string, err error) {
	l := n.Logger
	if l == nil {
		l = zap.NewNop()
	}
	logger.WithLogger(ctx, l).Warn("list load failed", zap.String("page", page), zap.Error(err))
}

// Snapshot is a consistent copy of a view's state. Items shares its backing
// array with the view; callers must not modify it.
type Snapshot[T any] struct {
	Items      []T
	Loading    bool
	Refreshing bool
	Loaded     bool
	LastError  error
	FetchedAt  time.Time
	Query      string
}

type viewConfig struct {
	notifier Notifier
	metrics  *metrics.Collector
	clock    func() time.Time
}

// Option configures a View.
type Option func(*viewConfig)

// WithNotifier sets the failure notifier. Default: LogNotifier with a no-op logger.
func WithNotifier(n Notifier) Option {
	return func(c *viewConfig) { c.notifier = n }
}

// WithMetrics records loads on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *viewConfig) { c.metrics = m }
}

// WithClock replaces time.Now for FetchedAt.
func WithClock(clock func() time.Time) Option {
	return func(c *viewConfig) { c.clock = clock }
}

// View is the list view controller of one page.
type View[T any] struct {
	page   string
	source Source[T]
	cfg    viewConfig

	mu         sync.Mutex
	items      []T
	loaded     bool
	loading    bool
	loadingSeq uint64
	inflight   int
	lastErr    error
	fetchedAt  time.Time
	query      string
	issued     uint64
	// latestDone is closed when the latest issued load returns.
	latestDone chan struct{}
}

// NewView creates a view for page backed by source.
func NewView[T any](page string, source Source[T], opts ...Option) *View[T] {
	cfg := viewConfig{
		notifier: LogNotifier{},
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &View[T]{page: page, source: source, cfg: cfg}
}

// Page returns the page identifier, e.g. "crm/leads".
func (v *View[T]) Page() string { return v.page }

// Load fetches the collection for filter. Refreshing is set for the duration
// of the request in both modes and always cleared on return. On failure the
// previously loaded items are kept, LastError is set and the notifier is
// called. A response belonging to a load that is no longer the latest issued
// is discarded and ErrSuperseded is returned.
func (v *View[T]) Load(ctx context.Context, filter listview.Filter, mode Mode) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	done := make(chan struct{})
	v.latestDone = done
	v.inflight++
	if mode == Initial {
		v.loading = true
		v.loadingSeq = seq
	}
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.inflight--
		if mode == Initial && v.loadingSeq == seq {
			v.loading = false
		}
		v.mu.Unlock()
		close(done)
	}()

	ctx, span := telemetry.StartSpan(ctx, "listview.load",
		telemetry.WithAttribute(telemetry.SpanAttrPage, v.page),
		telemetry.WithAttribute(telemetry.SpanAttrQuery, filter.Encode()),
		telemetry.WithAttribute(telemetry.SpanAttrLoadMode, mode.String()),
	)
	defer span.End()

	var (
		items []T
		err   error
	)
	telemetry.WithProfilingLabels(ctx, map[string]string{
		telemetry.ProfilingLabelPage:      v.page,
		telemetry.ProfilingLabelOperation: "load",
	}, func(ctx context.Context) {
		items, err = v.source.Fetch(ctx, filter)
	})

	v.mu.Lock()
	if seq != v.issued {
		latest := v.issued
		v.mu.Unlock()
		telemetry.AddEvent(span, "discarded", "sequence", int64(seq), "latest", int64(latest))
		return ErrSuperseded
	}

	if err != nil {
		v.lastErr = err
		kept := len(v.items)
		v.mu.Unlock()

		telemetry.RecordError(span, err)
		v.cfg.metrics.ObserveListLoad(v.page, mode.String(), err, kept)
		v.cfg.notifier.Notify(ctx, v.page, err)
		return err
	}

	if items == nil {
		items = []T{}
	}
	v.items = items
	v.loaded = true
	v.lastErr = nil
	v.fetchedAt = v.cfg.clock()
	v.query = filter.Encode()
	v.mu.Unlock()

	telemetry.SetAttributes(span, telemetry.SpanAttrRows, len(items))
	v.cfg.metrics.ObserveListLoad(v.page, mode.String(), nil, len(items))
	return nil
}

// Settled blocks until the latest issued load has returned, following any
// load issued while waiting. It returns ctx.Err() if ctx ends first.
func (v *View[T]) Settled(ctx context.Context) error {
	for {
		v.mu.Lock()
		done := v.latestDone
		v.mu.Unlock()
		if done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		v.mu.Lock()
		latest := v.latestDone == done
		v.mu.Unlock()
		if latest {
			return nil
		}
	}
}

// Snapshot returns the current state.
func (v *View[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot[T]{
		Items:      v.items,
		Loading:    v.loading,
		Refreshing: v.inflight > 0,
		Loaded:     v.loaded,
		LastError:  v.lastErr,
		FetchedAt:  v.fetchedAt,
		Query:      v.query,
	}
}
