package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidusabdula/versaforge-erp-sub001/internal/infrastructure/metrics"
)

func TestHTTPMetrics(t *testing.T) {
	collector := metrics.New(metrics.Config{Namespace: "mw"})

	router := gin.New()
	router.Use(HTTPMetrics(collector))
	router.GET("/api/v1/assets/assets/:name", func(c *gin.Context) {
		c.String(http.StatusOK, "asset")
	})

	for _, name := range []string{"AST-1", "AST-2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/assets/assets/"+name, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	families, err := collector.Registry().Gather()
	require.NoError(t, err)

	routes := map[string]float64{}
	for _, f := range families {
		if !strings.HasSuffix(f.GetName(), "http_requests_total") {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" {
					routes[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 2.0, routes["/api/v1/assets/assets/:name"])
	assert.Equal(t, 1.0, routes["unmatched"])
}

func TestHTTPMetrics_NilCollector(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
