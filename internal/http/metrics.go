package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"liquiplanner/internal/ledger"
)

// metrics are registered per server so tests can build many servers.
type metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	mutationsTotal  *prometheus.CounterVec
	rateLimited     prometheus.Counter
	entries         prometheus.Gauge
	balanceCents    prometheus.Gauge

	mu      sync.Mutex
	lastSeq uint64
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "liquiplanner",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "liquiplanner",
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
		mutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "liquiplanner",
				Name:      "ledger_mutations_total",
				Help:      "Completed ledger mutations by operation",
			},
			[]string{"operation"},
		),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "liquiplanner",
			Name:      "http_rate_limited_total",
			Help:      "Mutation requests rejected by the rate limiter",
		}),
		entries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "liquiplanner",
			Name:      "ledger_entries",
			Help:      "Number of entries in the ledger",
		}),
		balanceCents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "liquiplanner",
			Name:      "ledger_balance_cents",
			Help:      "Overall balance in cents",
		}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		m.requestsTotal.WithLabelValues(r.Method, code).Inc()
		m.requestDuration.WithLabelValues(r.Method, code).Observe(time.Since(start).Seconds())
	})
}

// observe keeps the ledger gauges current; it is subscribed to the ledger.
func (m *metrics) observe(_ context.Context, s ledger.Snapshot) {
	m.mutationsTotal.WithLabelValues(string(s.Change.Op)).Inc()
	m.set(s)
}

// set updates the gauges unless a newer snapshot got there first.
func (m *metrics) set(s ledger.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Seq < m.lastSeq {
		return
	}
	m.lastSeq = s.Seq
	m.entries.Set(float64(len(s.Entries)))
	m.balanceCents.Set(float64(s.Totals.Balance.Cents))
}
