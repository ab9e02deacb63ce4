package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOrderOp(t *testing.T) {
	m := New("api", prometheus.NewRegistry())

	m.RecordOrderOp("cancel_order", nil)
	m.RecordOrderOp("cancel_order", apperr.New(apperr.KindConflict, "Order already cancelled"))
	m.RecordOrderOp("cancel_order", errors.New("conn reset"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderOps.WithLabelValues("cancel_order", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderOps.WithLabelValues("cancel_order", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderOps.WithLabelValues("cancel_order", "internal")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New("api", prometheus.NewRegistry())
	m.ObserveRequest("/orders/{order_id}", http.MethodGet, http.StatusOK, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_api_http_requests_total")
	assert.Contains(t, rec.Body.String(), `handler="/orders/{order_id}"`)
}
