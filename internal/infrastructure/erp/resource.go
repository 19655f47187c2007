package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/options"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
)

type envelope struct {
	Data map[string]json.RawMessage `json:"data"`
}

// Decode extracts data.<key> from an envelope body into T.
func Decode[T any](body []byte, key string) (T, error) {
	var zero T
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	raw, ok := env.Data[key]
	if !ok || isNull(raw) {
		return zero, fmt.Errorf("%w: missing data.%s", ErrMalformedResponse, key)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("%w: data.%s: %v", ErrMalformedResponse, key, err)
	}
	return out, nil
}

// DecodeList extracts data.<key> as a slice. A missing or null key is an
// empty collection, not an error.
func DecodeList[T any](body []byte, key string) ([]T, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	raw, ok := env.Data[key]
	if !ok || isNull(raw) {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: data.%s: %v", ErrMalformedResponse, key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || strings.TrimSpace(string(raw)) == "null"
}

// Path joins API path segments, escaping each one:
// Path("crm", "leads", "CRM/LEAD 1") = "/api/crm/leads/CRM%2FLEAD%201".
func Path(segments ...string) string {
	var b strings.Builder
	b.WriteString("/api")
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Collection is a list endpoint whose envelope key holds []T.
type Collection[T any] struct {
	client *Client
	path   string
	key    string
}

// NewCollection binds a list endpoint, e.g. NewCollection[crm.Lead](c, Path("crm", "leads"), "leads").
func NewCollection[T any](client *Client, path, key string) *Collection[T] {
	return &Collection[T]{client: client, path: path, key: key}
}

// Fetch GETs the collection with the filter as query string.
func (c *Collection[T]) Fetch(ctx context.Context, filter listview.Filter) ([]T, error) {
	resp, err := c.client.Get(ctx, c.path, filter.Values())
	if err != nil {
		return nil, err
	}
	return DecodeList[T](resp.Body, c.key)
}

// Path returns the endpoint path.
func (c *Collection[T]) Path() string { return c.path }

// FetchRecord GETs one record. A 404 matches shared.ErrNotFound.
func FetchRecord[T any](ctx context.Context, c *Client, path, key string) (T, error) {
	var zero T
	resp, err := c.Get(ctx, path, nil)
	if err != nil {
		return zero, err
	}
	rec, err := Decode[T](resp.Body, key)
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// CreateRecord POSTs body and decodes data.<key> from the answer.
func CreateRecord[T any](ctx context.Context, c *Client, path, key string, body any) (T, error) {
	return write[T](ctx, c.Post, path, nil, key, body)
}

// CreateByReference POSTs body attached to the parent document doctype/name.
func CreateByReference[T any](ctx context.Context, c *Client, path, key, doctype, name string, body any) (T, error) {
	var zero T
	if strings.TrimSpace(doctype) == "" || strings.TrimSpace(name) == "" {
		return zero, shared.Errorf(shared.ErrInvalidInput, "reference doctype and name are required")
	}
	q := url.Values{}
	q.Set("doctype", doctype)
	q.Set("name", name)
	return write[T](ctx, c.Post, path, q, key, body)
}

// UpdateRecord PUTs body and decodes data.<key> from the answer.
func UpdateRecord[T any](ctx context.Context, c *Client, path, key string, body any) (T, error) {
	put := func(ctx context.Context, path string, _ url.Values, body any) (*Response, error) {
		return c.Put(ctx, path, body)
	}
	return write[T](ctx, put, path, nil, key, body)
}

type sendFunc func(ctx context.Context, path string, query url.Values, body any) (*Response, error)

func write[T any](ctx context.Context, send sendFunc, path string, query url.Values, key string, body any) (T, error) {
	var zero T
	resp, err := send(ctx, path, query, body)
	if err != nil {
		return zero, err
	}
	// Some endpoints answer writes with an empty body or envelope; the caller
	// then gets the zero value rather than an error.
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return zero, nil
	}
	var env envelope
	if json.Unmarshal(resp.Body, &env) == nil {
		if raw, ok := env.Data[key]; !ok || isNull(raw) {
			return zero, nil
		}
	}
	return Decode[T](resp.Body, key)
}

// FetchOptions GETs /api/<module>/options, optionally narrowed with ?module=.
// The options bundle is the whole data object.
func FetchOptions(ctx context.Context, c *Client, module, narrow string) (options.Bundle, error) {
	var q url.Values
	if narrow != "" {
		q = url.Values{"module": []string{narrow}}
	}
	resp, err := c.Get(ctx, Path(module, "options"), q)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data options.Bundle `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Data == nil {
		env.Data = options.Bundle{}
	}
	return env.Data, nil
}
