// Package records implements the read and write operations shared by every
// ERP document type: fetch one, create, update, attach by reference and
// status changes checked against the document's transition table.
package records

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/logger"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/telemetry"
)

// Input is a create or edit form payload.
type Input interface {
	Normalize()
}

// checker is implemented by inputs with rules the validator tags cannot express.
type checker interface {
	Check() error
}

// statusInput is implemented by inputs that may carry a new status.
type statusInput interface {
	StatusValue() string
}

// Endpoint locates a document type on the ERP API.
type Endpoint struct {
	Module   string // e.g. "crm"
	Resource string // e.g. "sales-orders"
	// ListKey is the envelope key of the collection, e.g. "sales_orders".
	ListKey string
	// RecordKey is the envelope key of a single record, e.g. "sales_order".
	RecordKey string
}

// CollectionPath returns /api/<module>/<resource>.
func (e Endpoint) CollectionPath() string { return erp.Path(e.Module, e.Resource) }

// RecordPath returns /api/<module>/<resource>/<name>.
func (e Endpoint) RecordPath(name string) string { return erp.Path(e.Module, e.Resource, name) }

// Page returns the page name, "<module>/<resource>".
func (e Endpoint) Page() string { return e.Module + "/" + e.Resource }

// Store performs record operations for one document type.
type Store[T listview.Record] struct {
	client      *erp.Client
	endpoint    Endpoint
	validate    *validator.Validate
	flow        *listview.StatusFlow
	statusField string
	logger      *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	validate    *validator.Validate
	flow        *listview.StatusFlow
	statusField string
	logger      *zap.Logger
}

// WithValidator shares a validator instance. Default: validator.New with
// required struct validation enabled.
func WithValidator(v *validator.Validate) StoreOption {
	return func(c *storeConfig) { c.validate = v }
}

// WithStatusFlow guards status changes with flow. field is the JSON field
// holding the status on the upstream record, e.g. "repair_status".
func WithStatusFlow(flow *listview.StatusFlow, field string) StoreOption {
	return func(c *storeConfig) {
		c.flow = flow
		c.statusField = field
	}
}

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) StoreOption {
	return func(c *storeConfig) { c.logger = l }
}

// NewValidator returns the validator used for form inputs.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

// jsonFieldName reports validation failures under the JSON field name.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// NewStore creates a Store for endpoint.
func NewStore[T listview.Record](client *erp.Client, endpoint Endpoint, opts ...StoreOption) *Store[T] {
	cfg := storeConfig{statusField: "status"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.validate == nil {
		cfg.validate = NewValidator()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return &Store[T]{
		client:      client,
		endpoint:    endpoint,
		validate:    cfg.validate,
		flow:        cfg.flow,
		statusField: cfg.statusField,
		logger:      cfg.logger,
	}
}

// Endpoint returns the endpoint the store is bound to.
func (s *Store[T]) Endpoint() Endpoint { return s.endpoint }

// Flow returns the status flow, or nil when status changes are unguarded.
func (s *Store[T]) Flow() *listview.StatusFlow { return s.flow }

// Collection returns the list endpoint as a view source.
func (s *Store[T]) Collection() *erp.Collection[T] {
	return erp.NewCollection[T](s.client, s.endpoint.CollectionPath(), s.endpoint.ListKey)
}

// Get fetches one record by name. An unknown name matches shared.ErrNotFound.
func (s *Store[T]) Get(ctx context.Context, name string) (T, error) {
	var zero T
	name, err := recordName(name)
	if err != nil {
		return zero, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "records", "get",
		telemetry.WithAttribute(telemetry.SpanAttrPage, s.endpoint.Page()),
		telemetry.WithAttribute(telemetry.SpanAttrRecord, name),
	)
	defer span.End()

	rec, err := erp.FetchRecord[T](ctx, s.client, s.endpoint.RecordPath(name), s.endpoint.RecordKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return zero, err
	}
	return rec, nil
}

// Create validates in and posts it. Invalid input never reaches the ERP.
func (s *Store[T]) Create(ctx context.Context, in Input) (T, error) {
	var zero T
	if err := s.prepare(ctx, in); err != nil {
		return zero, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "records", "create",
		telemetry.WithAttribute(telemetry.SpanAttrPage, s.endpoint.Page()))
	defer span.End()

	rec, err := erp.CreateRecord[T](ctx, s.client, s.endpoint.CollectionPath(), s.endpoint.RecordKey, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return zero, err
	}
	logger.WithLogger(ctx, s.logger).Info("record created",
		zap.String("page", s.endpoint.Page()), zap.String("name", rec.RecordName()))
	return rec, nil
}

// CreateByReference validates in and posts it attached to the document
// doctype/name.
func (s *Store[T]) CreateByReference(ctx context.Context, doctype, name string, in Input) (T, error) {
	var zero T
	if err := s.prepare(ctx, in); err != nil {
		return zero, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "records", "create_by_reference",
		telemetry.WithAttribute(telemetry.SpanAttrPage, s.endpoint.Page()),
		telemetry.WithAttribute(telemetry.SpanAttrRecord, doctype+"/"+name),
	)
	defer span.End()

	path := erp.Path(s.endpoint.Module, s.endpoint.Resource, "by-reference")
	rec, err := erp.CreateByReference[T](ctx, s.client, path, s.endpoint.RecordKey, doctype, name, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return zero, err
	}
	return rec, nil
}

// Update validates in and puts it over the record name. When the store has a
// status flow and in requests a status, the move from the current status must
// be allowed.
func (s *Store[T]) Update(ctx context.Context, name string, in Input) (T, error) {
	var zero T
	name, err := recordName(name)
	if err != nil {
		return zero, err
	}
	if err := s.prepare(ctx, in); err != nil {
		return zero, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "records", "update",
		telemetry.WithAttribute(telemetry.SpanAttrPage, s.endpoint.Page()),
		telemetry.WithAttribute(telemetry.SpanAttrRecord, name),
	)
	defer span.End()

	if si, ok := in.(statusInput); ok && s.flow != nil && si.StatusValue() != "" {
		current, err := s.Get(ctx, name)
		if err != nil {
			telemetry.RecordError(span, err)
			return zero, err
		}
		if err := s.flow.Validate(current.StatusValue(), si.StatusValue()); err != nil {
			return zero, err
		}
	}

	rec, err := erp.UpdateRecord[T](ctx, s.client, s.endpoint.RecordPath(name), s.endpoint.RecordKey, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return zero, err
	}
	return rec, nil
}

// SetStatus moves the record to target. The whole record is fetched, its
// status replaced and put back.
func (s *Store[T]) SetStatus(ctx context.Context, name, target string) (T, error) {
	return s.transition(ctx, name, func(current string) (string, error) {
		if err := s.flow.Validate(current, target); err != nil {
			return "", err
		}
		canonical, _ := s.flow.Canonical(target)
		return canonical, nil
	})
}

// Advance moves the record one step forward along its flow, e.g. an
// opportunity from Open to Quoted.
func (s *Store[T]) Advance(ctx context.Context, name string) (T, error) {
	return s.transition(ctx, name, func(current string) (string, error) {
		next, ok := s.flow.Next(current)
		if !ok {
			return "", shared.Errorf(shared.ErrInvalidTransition, "%s in status %q cannot be advanced", s.flow.Name(), current)
		}
		return next, nil
	})
}

func (s *Store[T]) transition(ctx context.Context, name string, pick func(current string) (string, error)) (T, error) {
	var zero T
	if s.flow == nil {
		return zero, shared.Errorf(shared.ErrInvalidTransition, "%s records have no status flow", s.endpoint.Resource)
	}
	name, err := recordName(name)
	if err != nil {
		return zero, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "records", "transition",
		telemetry.WithAttribute(telemetry.SpanAttrPage, s.endpoint.Page()),
		telemetry.WithAttribute(telemetry.SpanAttrRecord, name),
	)
	defer span.End()

	path := s.endpoint.RecordPath(name)
	raw, err := erp.FetchRecord[map[string]any](ctx, s.client, path, s.endpoint.RecordKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return zero, err
	}
	current, _ := raw[s.statusField].(string)

	target, err := pick(current)
	if err != nil {
		return zero, err
	}
	raw[s.statusField] = target
	telemetry.SetAttributes(span, telemetry.SpanAttrStatus, target)

	rec, err := erp.UpdateRecord[T](ctx, s.client, path, s.endpoint.RecordKey, raw)
	if err != nil {
		telemetry.RecordError(span, err)
		return zero, err
	}
	logger.WithLogger(ctx, s.logger).Info("status changed",
		zap.String("page", s.endpoint.Page()),
		zap.String("name", name),
		zap.String("from", current),
		zap.String("to", target),
	)
	return rec, nil
}

// prepare normalizes sentinels away, then runs tag and domain validation.
func (s *Store[T]) prepare(ctx context.Context, in Input) error {
	if in == nil {
		return shared.Errorf(shared.ErrInvalidInput, "request body is required")
	}
	in.Normalize()
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return validationError(err)
	}
	if c, ok := in.(checker); ok {
		if err := c.Check(); err != nil {
			return err
		}
	}
	return nil
}

func recordName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.Errorf(shared.ErrInvalidInput, "record name is required")
	}
	return name, nil
}

// validationError turns validator output into a single ErrValidation listing
// each failing field.
func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return shared.Errorf(shared.ErrValidation, "%v", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, describeField(fe))
	}
	return shared.Errorf(shared.ErrValidation, "%s", strings.Join(parts, "; "))
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte", "gt", "lte", "lt", "min":
		return fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
