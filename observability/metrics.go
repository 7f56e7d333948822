package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bate_papo"

// Metrics groups the collectors exposed on /metrics.
// Each instance owns its registry so tests never share global state.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	evictions prometheus.Counter
	sweeps    prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "REST requests served, by route and status code.",
		}, []string{"method", "route", "status"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Participants removed by the expiry sweep.",
		}),
		sweeps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent in one expiry sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 6),
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.evictions,
		m.sweeps,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveSweep(evicted int, seconds float64) {
	m.evictions.Add(float64(evicted))
	m.sweeps.Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
