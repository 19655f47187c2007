package accounting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/records"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/application/views"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/accounting"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/listview"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/domain/shared"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/cache"
	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/erp"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := erp.NewClient(erp.Config{BaseURL: srv.URL}, erp.WithRetryConfig(erp.RetryConfig{MaxRetries: 0}))
	require.NoError(t, err)
	registry, err := views.NewRegistry(4, nil)
	require.NoError(t, err)

	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	deps := records.Deps{Client: client, Registry: registry}
	return NewService(deps, records.NewOptionsService(client, store, 0, nil, nil))
}

func writeData(w http.ResponseWriter, key string, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{key: v}})
}

func TestService_ListPayments(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/accounting/payments", r.URL.Path)
		assert.Equal(t, "payment_type=Receive", r.URL.RawQuery)
		writeData(w, "payments", []map[string]any{
			{"name": "PE-1", "payment_type": "Receive", "party": "CUST-1", "received_amount": 300, "status": "Submitted"},
			{"name": "PE-2", "payment_type": "Receive", "party": "CUST-2", "received_amount": "NaN", "status": "Draft"},
		})
	})

	res, err := svc.Payments.Lister.List(context.Background(), views.ListRequest{
		Filter: listview.NewFilter().With("payment_type", "Receive"),
	})
	require.NoError(t, err)

	summary, ok := res.Summary.(accounting.PaymentSummary)
	require.True(t, ok)
	assert.Equal(t, "ETB 300.00", summary.TotalReceived.Format())
	assert.Equal(t, 1, summary.DraftCount)
	require.Len(t, res.Items, 2)
	assert.NotEmpty(t, res.Items[1].StatusClass)
}

func TestService_CreatePaymentCheck(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	_, err := svc.Payments.Create(context.Background(), &accounting.PaymentInput{
		PaymentType: accounting.PaymentTypeReceive,
		PostingDate: "2026-02-01",
		Party:       "CUST-1",
		Company:     "Versa Forge",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Contains(t, err.Error(), "paid amount or received amount")
}

func TestService_SubmitPayment(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeData(w, "payment", map[string]any{"name": "PE-1", "status": "Draft", "paid_amount": 10})
			return
		}
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeData(w, "payment", body)
	})

	got, err := svc.Payments.Advance(context.Background(), "PE-1")
	require.NoError(t, err)
	assert.Equal(t, accounting.PaymentStatusSubmitted, got.Status)
}

func TestService_OptionsAreCached(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/accounting/options", r.URL.Path)
		writeData(w, "modes_of_payment", []map[string]string{{"name": "Cash", "label": "Cash"}, {"name": "Bank"}})
	})

	for i := 0; i < 3; i++ {
		bundle, err := svc.Options(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "Bank", bundle.Resolve("modes_of_payment", "Bank"))
	}
	assert.Equal(t, int32(1), calls.Load())
}
