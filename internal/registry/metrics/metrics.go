package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
type Metrics struct {
	ProjectsAdded  prometheus.Counter
	WritesRejected *prometheus.CounterVec
}

// New creates and registers registry metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProjectsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "chainpass_registry_projects_added_total",
			Help: "Total projects appended to the registry",
		}),
		WritesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainpass_registry_writes_rejected_total",
			Help: "Registry writes rejected before any state change, by reason",
		}, []string{"reason"}),
	}
}

// IncrementAdded records a successful append.
func (m *Metrics) IncrementAdded() {
	if m != nil {
		m.ProjectsAdded.Inc()
	}
}

// IncrementRejected records a rejected write by reason.
func (m *Metrics) IncrementRejected(reason string) {
	if m != nil {
		m.WritesRejected.WithLabelValues(reason).Inc()
	}
}
