package observability

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveRequest("/api/table", 200, 10*time.Millisecond)
	m.ObserveRequest("/api/table", 200, 20*time.Millisecond)
	m.ObserveQuery("memory", "get_table", time.Millisecond, errors.New("boom"))
	m.CacheResult("get_table", true)
	m.CacheResult("get_table", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/table", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreQueryErrors.WithLabelValues("memory", "get_table")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("get_table", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("get_table", "miss")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", 200, time.Second)
		m.ObserveQuery("memory", "get_latest", time.Second, nil)
		m.CacheResult("get_latest", true)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("test")
	m.DroppedMatches.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_scoreboard_dropped_matches_total 1")
}
