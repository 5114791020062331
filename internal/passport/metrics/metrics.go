package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the credential ledger.
type Metrics struct {
	CredentialsIssued *prometheus.CounterVec
	WritesRejected    *prometheus.CounterVec
}

// New creates and registers passport metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CredentialsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainpass_passport_credentials_issued_total",
			Help: "Total credentials issued, by tier",
		}, []string{"tier"}),
		WritesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainpass_passport_writes_rejected_total",
			Help: "Credential mutations rejected, by reason (already_issued, transfer, burn)",
		}, []string{"reason"}),
	}
}

// IncrementIssued records a successful issuance by tier.
func (m *Metrics) IncrementIssued(tier string) {
	if m != nil {
		m.CredentialsIssued.WithLabelValues(tier).Inc()
	}
}

// IncrementRejected records a rejected mutation by reason.
func (m *Metrics) IncrementRejected(reason string) {
	if m != nil {
		m.WritesRejected.WithLabelValues(reason).Inc()
	}
}
