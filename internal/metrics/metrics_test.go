package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordOperation("cart.add", "ok", 3*time.Millisecond)
	m.RecordOperation("cart.add", "STOCK_INSUFFICIENT", time.Millisecond)
	m.RecordOperation("cart.add", "ok", time.Millisecond)
	m.RecordLogin(true)
	m.RecordLogin(false)
	m.RecordOrderCreated()
	m.RecordOrderCancelled()
	m.RecordStockRejection()
	m.RecordSweep(4, 9)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Operations.WithLabelValues("cart.add", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Operations.WithLabelValues("cart.add", "STOCK_INSUFFICIENT")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Logins.WithLabelValues("failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OrdersCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OrdersCancelled))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StockRejections))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.SessionsSwept))
	assert.Equal(t, float64(9), testutil.ToFloat64(m.ActiveSessions))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOperation("order.create", "ok", time.Millisecond)
		m.RecordLogin(true)
		m.RecordOrderCreated()
		m.RecordSweep(1, 1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordOrderCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "homemeal_orders_created_total 1"))
}
