package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the workspace store. All methods are
// nil-safe so the store works without metrics wired in.
type Metrics struct {
	PeriodsCreated    prometheus.Counter
	DataPointsCreated prometheus.Counter
	RuleFailures      *prometheus.CounterVec
	AuditEntries      prometheus.Counter
	RemindersRecorded prometheus.Counter
	NotificationsSent prometheus.Counter
}

// New creates and registers all workspace metrics.
func New() *Metrics {
	return &Metrics{
		PeriodsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_periods_created_total",
			Help: "Total reporting periods created",
		}),
		DataPointsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_data_points_created_total",
			Help: "Total data points created",
		}),
		RuleFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_rule_failures_total",
			Help: "Validation-rule failures by rule type",
		}, []string{"rule_type"}),
		AuditEntries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_audit_entries_total",
			Help: "Total audit trail entries appended",
		}),
		RemindersRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_reminders_recorded_total",
			Help: "Total reminder send records written",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canopy_notifications_sent_total",
			Help: "Total notifications appended to inboxes",
		}),
	}
}

func (m *Metrics) IncPeriodsCreated() {
	if m != nil {
		m.PeriodsCreated.Inc()
	}
}

func (m *Metrics) IncDataPointsCreated() {
	if m != nil {
		m.DataPointsCreated.Inc()
	}
}

func (m *Metrics) IncRuleFailure(ruleType string) {
	if m != nil {
		m.RuleFailures.WithLabelValues(ruleType).Inc()
	}
}

func (m *Metrics) IncAuditEntries() {
	if m != nil {
		m.AuditEntries.Inc()
	}
}

func (m *Metrics) IncRemindersRecorded() {
	if m != nil {
		m.RemindersRecorded.Inc()
	}
}

func (m *Metrics) IncNotificationsSent() {
	if m != nil {
		m.NotificationsSent.Inc()
	}
}
