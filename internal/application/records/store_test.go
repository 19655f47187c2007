package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/crm"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/cache"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
)

var opportunities = Endpoint{Module: "crm", Resource: "opportunities", ListKey: "opportunities", RecordKey: "opportunity"}

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

type fakeERP struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(w http.ResponseWriter, r recorded)
}

func (f *fakeERP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.RawQuery}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	f.handler(w, rec)
}

func (f *fakeERP) seen() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func newERP(t *testing.T, handler func(w http.ResponseWriter, r recorded)) (*erp.Client, *fakeERP) {
	t.Helper()
	fake := &fakeERP{handler: handler}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := erp.NewClient(erp.Config{BaseURL: srv.URL},
		erp.WithRetryConfig(erp.RetryConfig{MaxRetries: 0, RetryDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}))
	require.NoError(t, err)
	return client, fake
}

func reply(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func opportunityStore(client *erp.Client) *Store[crm.Opportunity] {
	return NewStore[crm.Opportunity](client, opportunities, WithStatusFlow(crm.OpportunityFlow, "status"))
}

func TestStore_CreateRejectsInvalidInputWithoutRequest(t *testing.T) {
	client, fake := newERP(t, func(w http.ResponseWriter, _ recorded) {
		reply(w, http.StatusOK, map[string]any{})
	})
	store := opportunityStore(client)

	_, err := store.Create(context.Background(), &crm.OpportunityInput{OpportunityFrom: "none", Probability: 150})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Contains(t, err.Error(), "opportunity_from is required")
	assert.Contains(t, err.Error(), "party_name is required")
	assert.Contains(t, err.Error(), "probability must be lte 100")
	assert.Empty(t, fake.seen())
}

func TestStore_CreateNormalizesAndPosts(t *testing.T) {
	client, fake := newERP(t, func(w http.ResponseWriter, r recorded) {
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{"opportunity": map[string]any{
			"name": "CRM-OPP-0001", "party_name": r.Body["party_name"], "status": "Open",
		}}})
	})
	store := opportunityStore(client)

	got, err := store.Create(context.Background(), &crm.OpportunityInput{
		OpportunityFrom: "Lead",
		PartyName:       "  CRM-LEAD-0001 ",
		SalesStage:      "none",
		Currency:        "etb",
	})
	require.NoError(t, err)
	assert.Equal(t, "CRM-OPP-0001", got.Name)

	reqs := fake.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/crm/opportunities", reqs[0].Path)
	assert.Equal(t, "CRM-LEAD-0001", reqs[0].Body["party_name"])
	assert.Equal(t, "", reqs[0].Body["sales_stage"])
	assert.Equal(t, "ETB", reqs[0].Body["currency"])
}

func TestStore_GetNotFound(t *testing.T) {
	client, _ := newERP(t, func(w http.ResponseWriter, _ recorded) {
		reply(w, http.StatusNotFound, map[string]any{"details": "Opportunity CRM-OPP-9 not found"})
	})
	store := opportunityStore(client)

	_, err := store.Get(context.Background(), "CRM-OPP-9")
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Opportunity CRM-OPP-9 not found", erp.UserMessage(err))

	_, err = store.Get(context.Background(), "  ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestStore_GetEscapesName(t *testing.T) {
	client, fake := newERP(t, func(w http.ResponseWriter, _ recorded) {
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{"opportunity": map[string]any{"name": "OPP/1"}}})
	})

	got, err := opportunityStore(client).Get(context.Background(), "OPP/1")
	require.NoError(t, err)
	assert.Equal(t, "OPP/1", got.Name)
	assert.Equal(t, "/api/crm/opportunities/OPP%2F1", fake.seen()[0].Path)
}

func TestStore_Advance(t *testing.T) {
	tests := []struct {
		name    string
		current string
		want    string
		wantErr error
	}{
		{name: "open to quoted", current: "Open", want: "Quoted"},
		{name: "quoted to closed", current: "Quoted", want: "Closed"},
		{name: "case-insensitive current", current: "open", want: "Quoted"},
		{name: "closed has no next step", current: "Closed", wantErr: shared.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newERP(t, func(w http.ResponseWriter, r recorded) {
				if r.Method == http.MethodGet {
					reply(w, http.StatusOK, map[string]any{"data": map[string]any{"opportunity": map[string]any{
						"name": "CRM-OPP-0001", "party_name": "Abebe", "opportunity_amount": 1200, "status": tt.current,
					}}})
					return
				}
				reply(w, http.StatusOK, map[string]any{"data": map[string]any{"opportunity": r.Body}})
			})

			got, err := opportunityStore(client).Advance(context.Background(), "CRM-OPP-0001")
			reqs := fake.seen()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, reqs, 1, "no write after a rejected transition")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)

			require.Len(t, reqs, 2)
			put := reqs[1]
			assert.Equal(t, http.MethodPut, put.Method)
			assert.Equal(t, tt.want, put.Body["status"])
			assert.Equal(t, "Abebe", put.Body["party_name"], "the whole record is written back")
			assert.EqualValues(t, 1200, put.Body["opportunity_amount"])
		})
	}
}

func TestStore_SetStatus(t *testing.T) {
	client, fake := newERP(t, func(w http.ResponseWriter, r recorded) {
		if r.Method == http.MethodGet {
			reply(w, http.StatusOK, map[string]any{"data": map[string]any{"opportunity": map[string]any{"name": "CRM-OPP-1", "status": "Closed"}}})
			return
		}
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{"opportunity": r.Body}})
	})
	store := opportunityStore(client)

	_, err := store.SetStatus(context.Background(), "CRM-OPP-1", "Quoted")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	_, err = store.SetStatus(context.Background(), "CRM-OPP-1", "Archived")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "not recognised")

	got, err := store.SetStatus(context.Background(), "CRM-OPP-1", "open")
	require.NoError(t, err)
	assert.Equal(t, "Open", got.Status, "target is stored in its declared spelling")

	puts := 0
	for _, r := range fake.seen() {
		if r.Method == http.MethodPut {
			puts++
		}
	}
	assert.Equal(t, 1, puts)
}

func TestStore_TransitionWithoutFlow(t *testing.T) {
	client, fake := newERP(t, func(w http.ResponseWriter, _ recorded) {})
	store := NewStore[crm.Communication](client, Endpoint{Module: "crm", Resource: "communications"})

	_, err := store.Advance(context.Background(), "COMM-1")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
	assert.Empty(t, fake.seen())
}

func TestStore_UpdateChecksStatusMove(t *testing.T) {
	client, fake := newERP(t, func(w http.ResponseWriter, r recorded) {
		if r.Method == http.MethodGet {
			reply(w, http.StatusOK, map[string]any{"data": map[string]any{"opportunity": map[string]any{"name": "CRM-OPP-1", "status": "Lost"}}})
			return
		}
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{"opportunity": r.Body}})
	})
	store := opportunityStore(client)

	in := &crm.OpportunityInput{OpportunityFrom: "Customer", PartyName: "CUST-1", Status: "Closed"}
	_, err := store.Update(context.Background(), "CRM-OPP-1", in)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	in.Status = "Open"
	_, err = store.Update(context.Background(), "CRM-OPP-1", in)
	require.NoError(t, err)

	reqs := fake.seen()
	require.Len(t, reqs, 3)
	assert.Equal(t, http.MethodPut, reqs[2].Method)
	assert.Equal(t, "/api/crm/opportunities/CRM-OPP-1", reqs[2].Path)
}

func TestStore_CreateByReference(t *testing.T) {
	client, fake := newERP(t, func(w http.ResponseWriter, r recorded) {
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{"activity": map[string]any{"name": "ACT-1", "subject": r.Body["subject"], "status": "Open"}}})
	})
	store := NewStore[crm.Activity](client, Endpoint{Module: "crm", Resource: "activities", ListKey: "activities", RecordKey: "activity"})

	in := &crm.ActivityInput{Subject: "Call back", ActivityType: "Call", Priority: "High", Date: "2026-03-02"}
	got, err := store.CreateByReference(context.Background(), "Lead", "CRM-LEAD-0001", in)
	require.NoError(t, err)
	assert.Equal(t, "ACT-1", got.Name)

	reqs := fake.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/crm/activities/by-reference", reqs[0].Path)
	assert.Equal(t, "doctype=Lead&name=CRM-LEAD-0001", reqs[0].Query)

	_, err = store.CreateByReference(context.Background(), "", "CRM-LEAD-0001", in)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Len(t, fake.seen(), 1)
}

func TestOptionsService_CachesBundles(t *testing.T) {
	var calls atomic.Int32
	client, _ := newERP(t, func(w http.ResponseWriter, r recorded) {
		calls.Add(1)
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{
			"territories": []map[string]string{{"name": "AA", "label": "Addis Ababa"}},
		}})
	})
	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	m := metrics.New(metrics.Config{Namespace: "test"})
	svc := NewOptionsService(client, store, time.Minute, m, nil)

	first, err := svc.Bundle(context.Background(), "crm", "")
	require.NoError(t, err)
	assert.Equal(t, "Addis Ababa", first.Resolve("territories", "AA"))

	second, err := svc.Bundle(context.Background(), "crm", "")
	require.NoError(t, err)
	assert.Equal(t, first.Keys(), second.Keys())
	assert.Equal(t, int32(1), calls.Load())

	_, err = svc.Bundle(context.Background(), "crm", "leads")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "narrowed bundles are cached separately")

	require.NoError(t, svc.Invalidate(context.Background(), "crm", ""))
	_, err = svc.Bundle(context.Background(), "crm", "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOptionsService_WithoutStore(t *testing.T) {
	var calls atomic.Int32
	client, _ := newERP(t, func(w http.ResponseWriter, r recorded) {
		calls.Add(1)
		assert.Equal(t, "module=payments", r.Query)
		reply(w, http.StatusOK, map[string]any{"data": map[string]any{}})
	})
	svc := NewOptionsService(client, nil, 0, nil, nil)

	for i := 0; i < 2; i++ {
		bundle, err := svc.Bundle(context.Background(), "accounting", "payments")
		require.NoError(t, err)
		assert.Empty(t, bundle.Keys())
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestOptionsService_UpstreamError(t *testing.T) {
	client, _ := newERP(t, func(w http.ResponseWriter, _ recorded) {
		reply(w, http.StatusInternalServerError, map[string]any{"details": "options unavailable"})
	})
	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	svc := NewOptionsService(client, store, time.Minute, nil, nil)

	_, err := svc.Bundle(context.Background(), "assets", "")
	require.Error(t, err)
	assert.Equal(t, "options unavailable", erp.UserMessage(err))

	_, err = store.Get(context.Background(), "assets")
	assert.ErrorIs(t, err, cache.ErrMiss, "failures are not cached")
}
