package records

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/export"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
)

// Deps are the collaborators shared by every resource of the desk.
type Deps struct {
	Client   *erp.Client
	Registry *views.Registry
	Metrics  *metrics.Collector
	Logger   *zap.Logger
	Validate *validator.Validate
	Notifier views.Notifier
	// MaxAge lets list requests reuse a recent load. Zero fetches every time.
	MaxAge time.Duration
	Clock  func() time.Time
}

// Definition declares one document type of a module.
type Definition[T listview.Record] struct {
	Endpoint   Endpoint
	Title      string
	FilterKeys []string
	Summarize  func(items []T, now time.Time) any
	Columns    []export.Column[T]
	// NewInput returns an empty create/edit form, nil for read-only resources.
	NewInput func() Input
	// ByReference resources are created attached to a parent document.
	ByReference bool
	Flow        *listview.StatusFlow
	// StatusField defaults to "status".
	StatusField string
}

// Resource is a document type with its listing page and record operations.
type Resource[T listview.Record] struct {
	*Store[T]
	Lister      *views.Lister[T]
	NewInput    func() Input
	ByReference bool
}

// NewResource wires def to deps.
func NewResource[T listview.Record](deps Deps, def Definition[T]) *Resource[T] {
	storeOpts := []StoreOption{WithValidator(deps.Validate), WithLogger(deps.Logger)}
	if def.Flow != nil {
		field := def.StatusField
		if field == "" {
			field = "status"
		}
		storeOpts = append(storeOpts, WithStatusFlow(def.Flow, field))
	}
	store := NewStore[T](deps.Client, def.Endpoint, storeOpts...)

	listerOpts := []views.ListerOption{views.WithListerMetrics(deps.Metrics), views.WithMaxAge(deps.MaxAge)}
	if deps.Notifier != nil {
		listerOpts = append(listerOpts, views.WithViewOptions(views.WithNotifier(deps.Notifier)))
	} else if deps.Logger != nil {
		listerOpts = append(listerOpts, views.WithViewOptions(views.WithNotifier(views.LogNotifier{Logger: deps.Logger})))
	}
	if deps.Clock != nil {
		listerOpts = append(listerOpts, views.WithListerClock(deps.Clock))
	}

	page := views.Page[T]{
		Name:       def.Endpoint.Page(),
		Title:      def.Title,
		FilterKeys: def.FilterKeys,
		Source:     store.Collection(),
		Summarize:  def.Summarize,
		Columns:    def.Columns,
	}
	return &Resource[T]{
		Store:       store,
		Lister:      views.NewLister(page, deps.Registry, listerOpts...),
		NewInput:    def.NewInput,
		ByReference: def.ByReference,
	}
}

// Writable reports whether the resource accepts creates and updates.
func (r *Resource[T]) Writable() bool { return r.NewInput != nil }
