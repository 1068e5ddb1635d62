package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the lifecycle counters exported on /metrics.
type Metrics struct {
	registry    *prometheus.Registry
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "khadamati",
			Name:      "requests_created_total",
			Help:      "Service requests created.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "khadamati",
			Name:      "request_transitions_total",
			Help:      "Applied service request status transitions.",
		}, []string{"from", "to"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "khadamati",
			Name:      "request_operations_rejected_total",
			Help:      "Lifecycle operations refused, by error kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		m.created,
		m.transitions,
		m.rejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) IncCreated() {
	m.created.Inc()
}

func (m *Metrics) IncTransition(from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncRejected(kind string) {
	m.rejected.WithLabelValues(kind).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
