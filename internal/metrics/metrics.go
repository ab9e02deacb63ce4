package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
	OrderOps  *prometheus.CounterVec
	Events    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass a fresh registry in tests.
func New(service string, reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketplace",
			Subsystem: service,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		OrderOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: service,
			Name:      "order_operations_total",
			Help:      "Order engine operations by outcome.",
		}, []string{"op", "result"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Subsystem: service,
			Name:      "events_processed_total",
			Help:      "Consumed order events by type and outcome.",
		}, []string{"event_type", "result"}),
		gatherer: reg,
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.OrderOps, m.Events)
	return m
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}

// RecordOrderOp counts one engine operation; result is "ok" or the error kind.
func (m *Metrics) RecordOrderOp(op string, err error) {
	m.OrderOps.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) RecordEvent(eventType string, err error) {
	m.Events.WithLabelValues(eventType, result(err)).Inc()
}

func (m *Metrics) ObserveRequest(handler, method string, status int, d time.Duration) {
	m.Requests.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(d.Microseconds()) / 1000)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
