package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/quantikbook/internal/quantik"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

// Metrics holds the server's collectors. Each server owns its registry so
// several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	// lookups counts answered positions.
	// Labels: source (book, solver), status (ok, error)
	lookups *prometheus.CounterVec

	// solveLatency measures how long solver requests take.
	solveLatency prometheus.Histogram

	// wsClients tracks connected websocket clients.
	wsClients prometheus.Gauge
}

// NewMetrics creates the collectors. The solver cache hit rate is exported
// when sv has a cache.
func NewMetrics(sv *quantik.Solver) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quantikbook",
			Subsystem: "api",
			Name:      "lookups_total",
			Help:      "Positions answered, by source and status",
		}, []string{"source", "status"}),
		solveLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quantikbook",
			Subsystem: "api",
			Name:      "solve_duration_seconds",
			Help:      "Time spent resolving positions beyond the book",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "quantikbook",
			Subsystem: "api",
			Name:      "websocket_clients",
			Help:      "Connected websocket clients",
		}),
	}

	if sv != nil && sv.Cache() != nil {
		cache := sv.Cache()
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "quantikbook",
			Subsystem: "solver",
			Name:      "cache_hit_ratio",
			Help:      "Solver cache hit rate in percent",
		}, cache.HitRate)
		f.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "quantikbook",
			Subsystem: "solver",
			Name:      "nodes_total",
			Help:      "Positions visited by the solver",
		}, func() float64 { return float64(sv.Nodes()) })
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeLookup(source string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.lookups.WithLabelValues(source, status).Inc()
}

func (m *Metrics) observeSolve(d time.Duration) {
	if m == nil {
		return
	}
	m.solveLatency.Observe(d.Seconds())
}

func (m *Metrics) clientConnected(delta float64) {
	if m == nil {
		return
	}
	m.wsClients.Add(delta)
}
