package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registry- and directory-level Prometheus counters.
// The verification engine keeps its own richer metrics in its package.
type Metrics struct {
	OrganizationsRegistered prometheus.Counter
	DegreesSubmitted        prometheus.Counter
	DegreesRevoked          prometheus.Counter
	AuditEventsAppended     prometheus.Counter
}

// New creates and registers all core metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		OrganizationsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_organizations_registered_total",
			Help: "Total number of organizations enrolled in the directory",
		}),
		DegreesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_degrees_submitted_total",
			Help: "Total number of degree records accepted by the registry",
		}),
		DegreesRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_degrees_revoked_total",
			Help: "Total number of degree records revoked",
		}),
		AuditEventsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_audit_events_appended_total",
			Help: "Total number of events appended to the audit trail",
		}),
	}
}

func (m *Metrics) IncrementOrganizationsRegistered() {
	m.OrganizationsRegistered.Inc()
}

func (m *Metrics) IncrementDegreesSubmitted() {
	m.DegreesSubmitted.Inc()
}

func (m *Metrics) IncrementDegreesRevoked() {
	m.DegreesRevoked.Inc()
}

func (m *Metrics) IncrementAuditEventsAppended() {
	m.AuditEventsAppended.Inc()
}
