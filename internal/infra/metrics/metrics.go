package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plant"

// Metrics is a private registry with the ledger and HTTP series.
type Metrics struct {
	registry *prometheus.Registry

	TxTotal    *prometheus.CounterVec
	TxDuration *prometheus.HistogramVec
	LowStock   prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var _ ledger.Recorder = (*Metrics)(nil)

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.TxTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_tx_total",
			Help:      "Ledger transactions by operation and result",
		},
		[]string{"op", "result"},
	)
	m.TxDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_tx_duration_seconds",
			Help:      "Ledger transaction duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"op"},
	)
	m.LowStock = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "raw_materials_low_stock",
		Help:      "Raw materials at or below their alert threshold",
	})
	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	reg.MustRegister(m.TxTotal, m.TxDuration, m.LowStock, m.HTTPRequestsTotal, m.HTTPRequestDuration)
	return m
}

// Result buckets a ledger error into ok, rejected (business rule) or error (storage).
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrStorage):
		return "error"
	default:
		return "rejected"
	}
}

func (m *Metrics) ObserveTx(op string, err error, d time.Duration) {
	m.TxTotal.WithLabelValues(op, Result(err)).Inc()
	m.TxDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) SetLowStock(n int) { m.LowStock.Set(float64(n)) }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument counts requests by their mux pattern, so ids in paths do not explode cardinality.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
