package views

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/export"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
)

// Page describes one listing page.
type Page[T listview.Record] struct {
	// Name identifies the page, e.g. "crm/sales-orders".
	Name string
	// Title names the exported sheet, e.g. "Sales Orders".
	Title string
	// FilterKeys are the server-side filters the page forwards upstream.
	FilterKeys []string
	Source     Source[T]
	// Summarize computes the summary cards from the fetched collection.
	Summarize func(items []T, now time.Time) any
	Columns   []export.Column[T]
}

// ListRequest is one request for a page.
type ListRequest struct {
	Filter listview.Filter
	Search string
	// Refresh forces an upstream fetch even when the cached load is fresh.
	Refresh bool
}

// Row is a record with its presentation classes.
type Row[T any] struct {
	Record T `json:"record"`
	listview.Decoration
}

// ListResult is the payload of a list response.
type ListResult[T any] struct {
	Items     []Row[T]  `json:"items"`
	Summary   any       `json:"summary"`
	Total     int       `json:"total"`
	Shown     int       `json:"shown"`
	Stale     bool      `json:"stale"`
	Notice    string    `json:"notice,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	Query     string    `json:"query"`
}

// Lister serves a Page through the shared registry.
type Lister[T listview.Record] struct {
	page     Page[T]
	registry *Registry
	metrics  *metrics.Collector
	viewOpts []Option
	maxAge   time.Duration
	clock    func() time.Time
}

// ListerOption configures a Lister.
type ListerOption func(*listerConfig)

type listerConfig struct {
	metrics  *metrics.Collector
	viewOpts []Option
	maxAge   time.Duration
	clock    func() time.Time
}

// WithListerMetrics records stale responses on m and passes m to every view.
func WithListerMetrics(m *metrics.Collector) ListerOption {
	return func(c *listerConfig) {
		c.metrics = m
		c.viewOpts = append(c.viewOpts, WithMetrics(m))
	}
}

// WithViewOptions passes opts to every view the lister creates.
func WithViewOptions(opts ...Option) ListerOption {
	return func(c *listerConfig) { c.viewOpts = append(c.viewOpts, opts...) }
}

// WithMaxAge lets requests without Refresh reuse a load younger than d.
// Zero means every request fetches.
func WithMaxAge(d time.Duration) ListerOption {
	return func(c *listerConfig) { c.maxAge = d }
}

// WithListerClock replaces time.Now for thresholds and freshness.
func WithListerClock(clock func() time.Time) ListerOption {
	return func(c *listerConfig) {
		c.clock = clock
		c.viewOpts = append(c.viewOpts, WithClock(clock))
	}
}

// NewLister creates a Lister for page.
func NewLister[T listview.Record](page Page[T], registry *Registry, opts ...ListerOption) *Lister[T] {
	cfg := listerConfig{clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Lister[T]{
		page:     page,
		registry: registry,
		metrics:  cfg.metrics,
		viewOpts: cfg.viewOpts,
		maxAge:   cfg.maxAge,
		clock:    cfg.clock,
	}
}

// Page returns the page definition.
func (l *Lister[T]) Page() Page[T] { return l.page }

// View returns the registered view for filter, creating it if needed.
func (l *Lister[T]) View(filter listview.Filter) *View[T] {
	filter = filter.Only(l.page.FilterKeys...)
	v, _ := ViewFor(l.registry, l.page.Name, filter.Encode(), func() *View[T] {
		return NewView(l.page.Name, l.page.Source, l.viewOpts...)
	})
	return v
}

// List loads the page for req and builds the response. When the upstream
// call fails but an earlier load exists, that load is served with Stale set
// and the failure message in Notice. Without an earlier load the error is
// returned.
func (l *Lister[T]) List(ctx context.Context, req ListRequest) (ListResult[T], error) {
	snap, err := l.load(ctx, req)
	if err != nil {
		return ListResult[T]{}, err
	}
	return l.build(snap.snapshot, snap.err, req.Search), nil
}

// Rows loads the page and returns only the displayed records.
func (l *Lister[T]) Rows(ctx context.Context, req ListRequest) ([]T, error) {
	snap, err := l.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return listview.SearchRecords(snap.snapshot.Items, req.Search), nil
}

// Export loads the page and renders the displayed rows as a table.
func (l *Lister[T]) Export(ctx context.Context, req ListRequest) (export.Table, error) {
	rows, err := l.Rows(ctx, req)
	if err != nil {
		return export.Table{}, err
	}
	return export.Build(l.page.Title, l.page.Columns, rows), nil
}

type loaded[T any] struct {
	snapshot Snapshot[T]
	err      error
}

func (l *Lister[T]) load(ctx context.Context, req ListRequest) (loaded[T], error) {
	filter := req.Filter.Only(l.page.FilterKeys...)
	view := l.View(filter)
	before := view.Snapshot()

	if !req.Refresh && before.Loaded && l.maxAge > 0 && l.clock().Sub(before.FetchedAt) < l.maxAge {
		return loaded[T]{snapshot: before}, nil
	}

	mode := Background
	if !before.Loaded {
		mode = Initial
	}
	err := view.Load(ctx, filter, mode)
	superseded := errors.Is(err, ErrSuperseded)
	if superseded {
		// Serve whatever the newer load ends with, not the state mid-flight.
		err = view.Settled(ctx)
	}
	snap := view.Snapshot()
	if superseded && err == nil {
		err = snap.LastError
	}
	if err != nil && !snap.Loaded {
		return loaded[T]{}, err
	}
	return loaded[T]{snapshot: snap, err: err}, nil
}

func (l *Lister[T]) build(snap Snapshot[T], loadErr error, search string) ListResult[T] {
	shown := listview.SearchRecords(snap.Items, search)
	rows := make([]Row[T], len(shown))
	for i, item := range shown {
		rows[i] = Row[T]{Record: item, Decoration: listview.Decorate(item)}
	}

	res := ListResult[T]{
		Items:     rows,
		Total:     len(snap.Items),
		Shown:     len(shown),
		FetchedAt: snap.FetchedAt,
		Query:     snap.Query,
	}
	if l.page.Summarize != nil {
		res.Summary = l.page.Summarize(snap.Items, l.clock())
	}
	if loadErr != nil {
		res.Stale = true
		res.Notice = erp.UserMessage(loadErr)
		l.metrics.IncStaleServed(l.page.Name)
	}
	return res
}

// Module returns the first path element of the page name.
func (p Page[T]) Module() string {
	module, _, _ := strings.Cut(p.Name, "/")
	return module
}
