package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	crmapp "github.com/kidusabdula/versaforge-erp-sub001/internal/application/crm"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/cache"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/export"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/dto"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/middleware"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/interfaces/http/router"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type upstreamCall struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// fakeDesk is an ERP server stub plus the desk engine in front of it
type fakeDesk struct {
	engine *gin.Engine
	mu     sync.Mutex
	calls  []upstreamCall
}

func (d *fakeDesk) seen() []upstreamCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]upstreamCall(nil), d.calls...)
}

func newFakeDesk(t *testing.T, upstream func(w http.ResponseWriter, call upstreamCall)) *fakeDesk {
	t.Helper()
	d := &fakeDesk{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := upstreamCall{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery}
		_ = json.NewDecoder(r.Body).Decode(&call.Body)
		d.mu.Lock()
		d.calls = append(d.calls, call)
		d.mu.Unlock()
		upstream(w, call)
	}))
	t.Cleanup(srv.Close)

	client, err := erp.NewClient(erp.Config{BaseURL: srv.URL}, erp.WithRetryConfig(erp.RetryConfig{MaxRetries: 0}))
	require.NoError(t, err)
	d.engine = newEngine(t, client)
	return d
}

func newEngine(t *testing.T, client *erp.Client) *gin.Engine {
	t.Helper()
	registry, err := views.NewRegistry(16, nil)
	require.NoError(t, err)
	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	deps := records.Deps{Client: client, Registry: registry, Clock: func() time.Time { return testNow }}
	optionsService := records.NewOptionsService(client, store, time.Minute, nil, nil)
	crm := crmapp.NewService(deps, optionsService)

	opportunities := NewResourceHandler(crm.Opportunities)
	activities := NewResourceHandler(crm.Activities)
	leads := NewResourceHandler(crm.Leads)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).
		Register(router.NewDomainGroup("crm", "/crm").
			Mount(NewOptionsHandler(crmapp.Module, optionsService), opportunities, activities, leads)).
		Register(NewCatalogHandler(opportunities, activities, leads)).
		Setup()
	return engine
}

func (d *fakeDesk) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	d.engine.ServeHTTP(w, req)
	return w
}

func answer(w http.ResponseWriter, status int, key string, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if key == "" {
		_ = json.NewEncoder(w).Encode(v)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{key: v}})
}

var pipeline = []map[string]any{
	{"name": "OPP-1", "party_name": "Abay Trading", "status": "Open", "opportunity_amount": 1000, "expected_closing": "2026-03-20"},
	{"name": "OPP-2", "party_name": "Sheba Foods", "status": "Quoted", "opportunity_amount": "250.5"},
}

type listPayload struct {
	Items []struct {
		Record      map[string]any `json:"record"`
		StatusClass string         `json:"status_class"`
	} `json:"items"`
	Summary map[string]any `json:"summary"`
	Total   int            `json:"total"`
	Shown   int            `json:"shown"`
	Stale   bool           `json:"stale"`
	Notice  string         `json:"notice"`
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listPayload {
	t.Helper()
	var resp struct {
		Success bool        `json:"success"`
		Data    listPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success)
	return resp.Data
}

func TestResourceHandler_List(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, _ upstreamCall) {
		answer(w, http.StatusOK, "opportunities", pipeline)
	})

	w := d.do(http.MethodGet, "/api/v1/crm/opportunities?status=Open&territory=all&q=sheba&color=red", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list := decodeList(t, w)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.Shown)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "OPP-2", list.Items[0].Record["name"])
	assert.NotEmpty(t, list.Items[0].StatusClass)
	assert.EqualValues(t, 2, list.Summary["count"])
	assert.False(t, list.Stale)

	calls := d.seen()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/crm/opportunities", calls[0].Path)
	assert.Equal(t, "status=Open", calls[0].Query, "only page filter keys go upstream")
}

func TestResourceHandler_ListRejectsBadRefresh(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, _ upstreamCall) {
		answer(w, http.StatusOK, "opportunities", pipeline)
	})

	w := d.do(http.MethodGet, "/api/v1/crm/opportunities?refresh=sometimes", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, d.seen())
}

func TestResourceHandler_ListServesStaleAfterFailedRefresh(t *testing.T) {
	var fail atomic.Bool
	d := newFakeDesk(t, func(w http.ResponseWriter, _ upstreamCall) {
		if fail.Load() {
			answer(w, http.StatusServiceUnavailable, "", map[string]any{"details": "ERP is restarting"})
			return
		}
		answer(w, http.StatusOK, "opportunities", pipeline)
	})

	require.Equal(t, http.StatusOK, d.do(http.MethodGet, "/api/v1/crm/opportunities", nil).Code)
	fail.Store(true)

	w := d.do(http.MethodGet, "/api/v1/crm/opportunities?refresh=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	assert.True(t, list.Stale)
	assert.Equal(t, "ERP is restarting", list.Notice)
	assert.Equal(t, 2, list.Total)
}

func TestResourceHandler_ListFirstLoadFailure(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, _ upstreamCall) {
		answer(w, http.StatusInternalServerError, "", map[string]any{"details": "Database locked"})
	})

	w := d.do(http.MethodGet, "/api/v1/crm/opportunities", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeUpstream, resp.Error.Code)
	assert.Equal(t, "Database locked", resp.Error.Message)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestResourceHandler_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client, err := erp.NewClient(erp.Config{BaseURL: srv.URL}, erp.WithRetryConfig(erp.RetryConfig{MaxRetries: 0}))
	require.NoError(t, err)
	engine := newEngine(t, client)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/crm/leads", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Unable to reach the ERP server", decodeResponse(t, w).Error.Message)
}

func TestResourceHandler_Export(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, _ upstreamCall) {
		answer(w, http.StatusOK, "opportunities", pipeline)
	})

	w := d.do(http.MethodGet, "/api/v1/crm/opportunities/export?q=abay", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="opportunities.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Opportunities")
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus the one displayed row")
	assert.Equal(t, "Opportunity ID", rows[0][0])
	assert.Equal(t, "OPP-1", rows[1][0])
}

func TestResourceHandler_Get(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, call upstreamCall) {
		if strings.HasSuffix(call.Path, "OPP-404") {
			answer(w, http.StatusNotFound, "", map[string]any{"details": "Opportunity OPP-404 not found"})
			return
		}
		answer(w, http.StatusOK, "opportunity", pipeline[0])
	})

	w := d.do(http.MethodGet, "/api/v1/crm/opportunities/OPP-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "OPP-1", resp.Data.(map[string]any)["name"])

	w = d.do(http.MethodGet, "/api/v1/crm/opportunities/OPP-404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Opportunity OPP-404 not found", decodeResponse(t, w).Error.Message)
}

func TestResourceHandler_Create(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, call upstreamCall) {
		body := call.Body
		body["name"] = "OPP-9"
		answer(w, http.StatusOK, "opportunity", body)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := d.do(http.MethodPost, "/api/v1/crm/opportunities", `{"party_name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})

	t.Run("validation happens before any upstream call", func(t *testing.T) {
		w := d.do(http.MethodPost, "/api/v1/crm/opportunities", map[string]any{"opportunity_from": "Lead"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "party_name is required")
		assert.Empty(t, d.seen())
	})

	t.Run("created", func(t *testing.T) {
		w := d.do(http.MethodPost, "/api/v1/crm/opportunities", map[string]any{
			"opportunity_from": "Customer", "party_name": " Sheba Foods ", "opportunity_amount": 900,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "OPP-9", decodeResponse(t, w).Data.(map[string]any)["name"])

		calls := d.seen()
		require.Len(t, calls, 1)
		assert.Equal(t, http.MethodPost, calls[0].Method)
		assert.Equal(t, "Sheba Foods", calls[0].Body["party_name"])
	})
}

func TestResourceHandler_StatusRoutes(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, call upstreamCall) {
		if call.Method == http.MethodGet {
			answer(w, http.StatusOK, "opportunity", map[string]any{"name": "OPP-2", "status": "Quoted", "party_name": "Sheba Foods"})
			return
		}
		answer(w, http.StatusOK, "opportunity", call.Body)
	})

	w := d.do(http.MethodPost, "/api/v1/crm/opportunities/OPP-2/advance", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Closed", decodeResponse(t, w).Data.(map[string]any)["status"])

	w = d.do(http.MethodPost, "/api/v1/crm/opportunities/OPP-2/status", map[string]any{"status": "Replied"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decodeResponse(t, w).Error.Code)

	w = d.do(http.MethodPost, "/api/v1/crm/opportunities/OPP-2/status", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status is required", decodeResponse(t, w).Error.Message)

	w = d.do(http.MethodPost, "/api/v1/crm/opportunities/OPP-2/status", map[string]any{"status": "lost"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lost", decodeResponse(t, w).Data.(map[string]any)["status"])
}

func TestResourceHandler_ByReference(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, call upstreamCall) {
		answer(w, http.StatusOK, "activity", map[string]any{"name": "ACT-1", "subject": call.Body["subject"], "status": "Open"})
	})

	body := map[string]any{"subject": "Site visit", "activity_type": "Meeting", "priority": "High", "date": "2026-03-11"}

	w := d.do(http.MethodPost, "/api/v1/crm/activities/by-reference?name=OPP-1", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "doctype is required", decodeResponse(t, w).Error.Message)

	w = d.do(http.MethodPost, "/api/v1/crm/activities", body)
	assert.Equal(t, http.StatusNotFound, w.Code, "activities are only created by reference")

	w = d.do(http.MethodPost, "/api/v1/crm/activities/by-reference?doctype=Opportunity&name=OPP-1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	calls := d.seen()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/crm/activities/by-reference", calls[0].Path)
	assert.Equal(t, "doctype=Opportunity&name=OPP-1", calls[0].Query)
}

func TestOptionsHandler(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, call upstreamCall) {
		answer(w, http.StatusOK, "", map[string]any{"data": map[string]any{
			"territories": []map[string]string{{"name": "AA", "label": "Addis Ababa"}},
		}})
	})

	for range 2 {
		w := d.do(http.MethodGet, "/api/v1/crm/options", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Len(t, d.seen(), 1, "second call is served from cache")

	w := d.do(http.MethodPost, "/api/v1/crm/options/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, d.seen(), 2)

	w = d.do(http.MethodGet, "/api/v1/crm/options?module=leads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	calls := d.seen()
	assert.Equal(t, "module=leads", calls[len(calls)-1].Query)
}

func TestCatalogHandler(t *testing.T) {
	d := newFakeDesk(t, func(w http.ResponseWriter, _ upstreamCall) {})

	w := d.do(http.MethodGet, "/api/v1/pages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []dto.PageInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)

	opp := resp.Data[0]
	assert.Equal(t, "crm/opportunities", opp.Page)
	assert.True(t, opp.Writable)
	assert.False(t, opp.ByReference)
	assert.Equal(t, "Opportunity", opp.StatusFlow)
	assert.Contains(t, opp.Statuses, "Quoted")

	assert.True(t, resp.Data[1].ByReference)
}

func TestHealthHandler(t *testing.T) {
	registry, err := views.NewRegistry(4, nil)
	require.NoError(t, err)
	h := NewHealthHandler("erp-desk", registry)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.Health(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data dto.HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data.Status)
	assert.Equal(t, "erp-desk", resp.Data.Service)
	assert.Zero(t, resp.Data.Views)
}
