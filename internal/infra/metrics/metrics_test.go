package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "rejected", Result(fmt.Errorf("%w: sand", ledger.ErrInsufficientStock)))
	assert.Equal(t, "error", Result(&ledger.StorageError{Op: "x", Err: errors.New("reset")}))
}

func TestObserveTx(t *testing.T) {
	m := New()
	m.ObserveTx("create_batch", nil, time.Millisecond)
	m.ObserveTx("create_batch", ledger.ErrInvalidQuantity, time.Millisecond)
	m.ObserveTx("create_batch", nil, time.Millisecond)
	m.SetLowStock(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TxTotal.WithLabelValues("create_batch", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TxTotal.WithLabelValues("create_batch", "rejected")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LowStock))
}

func TestInstrument(t *testing.T) {
	m := New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Instrument(mux)

	for _, id := range []string{"1", "2"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/"+id, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/orders/{id}", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "plant_http_requests_total")
}
