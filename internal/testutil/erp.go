// Package testutil provides common test utilities for the desk.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
)

// Call is one request received by an ERPStub.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

type reply struct {
	status int
	body   []byte
}

// ERPStub is an httptest server answering like the ERP server. Unknown paths
// get a 404 with an ERP style error body.
type ERPStub struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]reply
	fail   *reply
	calls  []Call
}

// NewERPStub starts a stub that is closed when the test ends.
func NewERPStub(t *testing.T) *ERPStub {
	t.Helper()
	s := &ERPStub{routes: make(map[string]reply)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *ERPStub) serve(w http.ResponseWriter, r *http.Request) {
	call := Call{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	rep, ok := s.routes[r.Method+" "+call.Path]
	if s.fail != nil {
		rep, ok = *s.fail, true
	}
	s.mu.Unlock()

	if !ok {
		rep = reply{status: http.StatusNotFound, body: []byte(`{"details":"Not found"}`)}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = w.Write(rep.body)
}

// Reply answers method path with status and v encoded as JSON.
func (s *ERPStub) Reply(method, path string, status int, v any) *ERPStub {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	s.routes[method+" "+path] = reply{status: status, body: body}
	s.mu.Unlock()
	return s
}

// List answers GET path with {"data": {key: items}}.
func (s *ERPStub) List(path, key string, items any) *ERPStub {
	return s.Reply(http.MethodGet, path, http.StatusOK, map[string]any{"data": map[string]any{key: items}})
}

// Fail makes every request answer status with details as the error message.
// A zero status restores the routes.
func (s *ERPStub) Fail(status int, details string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		s.fail = nil
		return
	}
	body, _ := json.Marshal(map[string]string{"details": details})
	s.fail = &reply{status: status, body: body}
}

// Calls returns a copy of the requests received so far.
func (s *ERPStub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Client returns an ERP client for the stub that never retries.
func (s *ERPStub) Client(t *testing.T, opts ...erp.Option) *erp.Client {
	t.Helper()
	opts = append([]erp.Option{erp.WithRetryConfig(erp.RetryConfig{MaxRetries: 0})}, opts...)
	client, err := erp.NewClient(erp.Config{BaseURL: s.URL}, opts...)
	require.NoError(t, err)
	return client
}
