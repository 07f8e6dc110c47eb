package session

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts reconciliation passes and forced terminations.
type Metrics struct {
	passes       *prometheus.CounterVec
	terminations prometheus.Counter
}

// NewMetrics registers the session collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogdesk_session_reconcile_total",
			Help: "Session reconciliation attempts by outcome.",
		}, []string{"outcome"}),
		terminations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalogdesk_session_forced_logout_total",
			Help: "Sessions terminated because the account was disabled.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.passes, m.terminations)
	}
	return m
}

func (m *Metrics) observe(outcome Outcome) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) terminated() {
	if m == nil {
		return
	}
	m.terminations.Inc()
}
