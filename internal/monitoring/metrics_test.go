package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEvaluatorMetrics(t *testing.T) {
	m := NewMetrics()

	m.RecordScan(3, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PendingRepairs))

	m.RecordRepair("repaired")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PendingRepairs))
	m.RecordRepair("rejected")
	m.RecordFix(true, 15*time.Millisecond)
	m.RecordFix(false, time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SheetsScanned))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InaccessibleSheets))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Repairs.WithLabelValues("repaired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Repairs.WithLabelValues("rejected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PendingRepairs))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FixBatches.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FixBatches.WithLabelValues("complete")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordScan(1, 1)
		m.RecordRepair("repaired")
		m.RecordFix(false, time.Second)
		m.RecordHTTPRequest("GET", "/", "200", time.Second)
	})
}

func TestSeparateRegistries(t *testing.T) {
	// two collectors must not collide on registration
	a := NewMetrics()
	b := NewMetrics()
	a.RecordScan(1, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SheetsScanned))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/sheets/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/sheets/1", "/sheets/2", "/nope"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/sheets/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sheetguard_http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
