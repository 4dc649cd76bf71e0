package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "homemeal"

// Metrics holds the core's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Logins            *prometheus.CounterVec
	OrdersCreated     prometheus.Counter
	OrdersCancelled   prometheus.Counter
	StockRejections   prometheus.Counter
	SessionsSwept     prometheus.Counter
	ActiveSessions    prometheus.Gauge
}

// New registers every collector on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "core",
				Name:      "operations_total",
				Help:      "Total number of core operations by outcome code.",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "core",
				Name:      "operation_duration_seconds",
				Help:      "Duration of core operations.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"operation"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "logins_total",
				Help:      "Login attempts by result.",
			},
			[]string{"result"},
		),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders created from carts.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "cancelled_total",
			Help:      "Orders cancelled with stock restored.",
		}),
		StockRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "stock_rejections_total",
			Help:      "Stock adjustments refused because stock would go negative.",
		}),
		SessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "swept_total",
			Help:      "Expired sessions removed by the sweeper.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Sessions present after the last sweep.",
		}),
	}

	registry.MustRegister(
		m.Operations,
		m.OperationDuration,
		m.Logins,
		m.OrdersCreated,
		m.OrdersCancelled,
		m.StockRejections,
		m.SessionsSwept,
		m.ActiveSessions,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordLogin(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
}

func (m *Metrics) RecordOrderCancelled() {
	if m == nil {
		return
	}
	m.OrdersCancelled.Inc()
}

func (m *Metrics) RecordStockRejection() {
	if m == nil {
		return
	}
	m.StockRejections.Inc()
}

func (m *Metrics) RecordSweep(removed, active int) {
	if m == nil {
		return
	}
	m.SessionsSwept.Add(float64(removed))
	m.ActiveSessions.Set(float64(active))
}
