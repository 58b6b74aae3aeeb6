package metricsx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// prometheusRecorder is additive instrumentation for operational
// dashboards; the append-only Store remains the source of truth for
// feedback and usage history per spec §4.9. It registers against its own
// registry rather than prometheus.DefaultRegisterer so that constructing
// more than one Metrics instance (as tests do) never panics on a
// duplicate registration.
type prometheusRecorder struct {
	registry    *prometheus.Registry
	totalUses   *prometheus.CounterVec
	helpfulUses *prometheus.CounterVec
}

func newPrometheusRecorder(namespace string) *prometheusRecorder {
	if namespace == "" {
		namespace = "cag"
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &prometheusRecorder{
		registry: registry,
		totalUses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metrics_total_uses",
			Help:      "Total recorded uses per entity type.",
		}, []string{"entity_type"}),
		helpfulUses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metrics_helpful_uses",
			Help:      "Uses marked helpful per entity type.",
		}, []string{"entity_type"}),
	}
}

func (r *prometheusRecorder) observe(entityType string, helpful bool) {
	r.totalUses.WithLabelValues(entityType).Inc()
	if helpful {
		r.helpfulUses.WithLabelValues(entityType).Inc()
	}
}

// Registry exposes the recorder's private registry so a caller (the CLI's
// /metrics endpoint, if wired) can serve it.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.prometheus.registry
}
