package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/testutil"
)

var pipeline = []map[string]any{
	{"name": "OPP-1", "party_name": "Abay Trading", "status": "Open", "opportunity_amount": 1000},
	{"name": "OPP-2", "party_name": "Sheba Foods", "status": "Quoted", "opportunity_amount": 250.5},
}

func newERPStub(t *testing.T) *testutil.ERPStub {
	t.Helper()
	return testutil.NewERPStub(t).
		List("/api/crm/opportunities", "opportunities", pipeline).
		Reply(http.MethodGet, "/api/crm/options", http.StatusOK, map[string]any{"data": map[string]any{
			"statuses": []string{"Open", "Replied"},
			"sources":  []map[string]string{{"name": "Web", "label": "Website"}},
		}})
}

// syncBuffer is a bytes.Buffer safe for a writer and a reader goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runCLI(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(ctx, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestFilterFlags_Set(t *testing.T) {
	f := filterFlags{}
	require.NoError(t, f.Set("status=Open"))
	require.NoError(t, f.Set(" territory = Addis "))
	assert.Equal(t, filterFlags{"status": "Open", "territory": "Addis"}, f)

	assert.Error(t, f.Set("status"))
	assert.Error(t, f.Set("=Open"))
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Open", "Open"},
		{"float", 250.5, "250.5"},
		{"whole float", 1000.0, "1000"},
		{"zero time", time.Time{}, ""},
		{"time", time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), "2026-03-20"},
		{"int", 7, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}

func TestRun_Version(t *testing.T) {
	out, _, err := runCLI(t, context.Background(), "-version")
	require.NoError(t, err)
	assert.Contains(t, out, "deskctl dev")
}

func TestRun_NoPageIsUsageError(t *testing.T) {
	_, stderr, err := runCLI(t, context.Background(), "-erp", "http://127.0.0.1:1")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "USAGE:")
}

func TestRun_Pages(t *testing.T) {
	out, _, err := runCLI(t, context.Background(), "-pages")
	require.NoError(t, err)
	assert.Contains(t, out, "PAGE")
	assert.Contains(t, out, "crm/opportunities")
	assert.Contains(t, out, "assets/value-adjustments")
}

func TestRun_ListPage(t *testing.T) {
	stub := newERPStub(t)

	out, _, err := runCLI(t, context.Background(),
		"-erp", stub.URL, "-page", "crm/opportunities", "-f", "status=Open", "-f", "territory=all", "-q", "abay")
	require.NoError(t, err)

	assert.Equal(t, "status=Open", stub.Calls()[0].Query)
	assert.Contains(t, out, "OPPORTUNITY ID")
	assert.Contains(t, out, "OPP-1")
	assert.NotContains(t, out, "OPP-2")
	assert.Contains(t, out, "1 of 2 shown")
	assert.Contains(t, out, "summary: ")
	assert.NotContains(t, out, "stale:")
}

func TestRun_ListPageJSON(t *testing.T) {
	stub := newERPStub(t)

	out, _, err := runCLI(t, context.Background(), "-erp", stub.URL, "-page", "crm/opportunities", "-json")
	require.NoError(t, err)

	var got listingJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Total)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "OPP-2", got.Rows[1]["Opportunity ID"])
	assert.False(t, got.Stale)
}

func TestRun_UnknownPage(t *testing.T) {
	stub := newERPStub(t)

	_, _, err := runCLI(t, context.Background(), "-erp", stub.URL, "-page", "crm/deals")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown page "crm/deals"`)
	assert.Contains(t, err.Error(), "crm/opportunities")
	assert.Empty(t, stub.Calls())
}

func TestRun_BadFilter(t *testing.T) {
	_, _, err := runCLI(t, context.Background(), "-page", "crm/leads", "-filter", "status")
	assert.Error(t, err)
}

func TestRun_FirstLoadFailure(t *testing.T) {
	stub := newERPStub(t)
	stub.Fail(http.StatusConflict, "Document is locked")

	_, _, err := runCLI(t, context.Background(), "-erp", stub.URL, "-page", "crm/opportunities")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Document is locked")
}

func TestRun_ExportIntoDirectory(t *testing.T) {
	stub := newERPStub(t)
	dir := t.TempDir()

	out, _, err := runCLI(t, context.Background(), "-erp", stub.URL, "-page", "crm/opportunities", "-q", "sheba", "-export", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "opportunities.xlsx")
	assert.Contains(t, out, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Opportunities")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Opportunity ID", rows[0][0])
	assert.Equal(t, "OPP-2", rows[1][0])
}

func TestRun_ExportToFile(t *testing.T) {
	stub := newERPStub(t)
	path := filepath.Join(t.TempDir(), "pipeline.xlsx")

	_, _, err := runCLI(t, context.Background(), "-erp", stub.URL, "-page", "crm/opportunities", "-export", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_Options(t *testing.T) {
	stub := newERPStub(t)

	out, _, err := runCLI(t, context.Background(), "-erp", stub.URL, "-options", "crm", "-narrow", "leads")
	require.NoError(t, err)

	assert.Equal(t, "module=leads", stub.Calls()[0].Query)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "sources"))
	assert.Contains(t, lines[0], "Website")
	assert.Contains(t, lines[1], "Open, Replied")
}

func TestRun_WatchKeepsRowsWhenRefreshFails(t *testing.T) {
	stub := newERPStub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout, stderr syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, []string{"-erp", stub.URL, "-page", "crm/opportunities", "-watch", "-interval", "10ms"}, &stdout, &stderr)
	}()

	require.Eventually(t, func() bool { return len(stub.Calls()) >= 2 }, 2*time.Second, 5*time.Millisecond)
	stub.Fail(http.StatusConflict, "Document is locked")
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "stale: Document is locked")
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	assert.GreaterOrEqual(t, strings.Count(stdout.String(), "Opportunities\n"), 2)
	assert.Contains(t, stderr.String(), "warning: crm/opportunities: Document is locked")
}
