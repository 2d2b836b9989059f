package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the server exports. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	reg *prometheus.Registry

	RPCTotal    *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec
	HTTPTotal   *prometheus.CounterVec
	RateLimited *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		RPCTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_rpc_requests_total",
				Help: "Total number of unary RPCs by method and status code",
			},
			[]string{"method", "code"},
		),
		RPCDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clinic_rpc_duration_seconds",
				Help:    "Duration of unary RPCs",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
			},
			[]string{"method"},
		),
		HTTPTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_http_requests_total",
				Help: "Total number of HTTP requests served by the gateway",
			},
			[]string{"method", "path", "status"},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"method"},
		),
	}
	m.reg.MustRegister(
		m.RPCTotal,
		m.RPCDuration,
		m.HTTPTotal,
		m.RateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// PoolStats is the subset of connection pool statistics exported as gauges.
type PoolStats struct {
	TotalConns    int32
	IdleConns     int32
	AcquiredConns int32
	MaxConns      int32
}

// RegisterPool exports the database pool through gauges read at scrape time.
func (m *Metrics) RegisterPool(stats func() PoolStats) {
	gauge := func(name, help string, pick func(PoolStats) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
			return float64(pick(stats()))
		})
	}
	m.reg.MustRegister(
		gauge("clinic_db_pool_total_conns", "Open connections in the pool", func(s PoolStats) int32 { return s.TotalConns }),
		gauge("clinic_db_pool_idle_conns", "Idle connections in the pool", func(s PoolStats) int32 { return s.IdleConns }),
		gauge("clinic_db_pool_acquired_conns", "Connections currently checked out", func(s PoolStats) int32 { return s.AcquiredConns }),
		gauge("clinic_db_pool_max_conns", "Configured pool size", func(s PoolStats) int32 { return s.MaxConns }),
	)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
