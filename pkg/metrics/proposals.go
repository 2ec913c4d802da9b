package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProposalMetrics records lifecycle activity on proposals.
type ProposalMetrics struct {
	transitions  *prometheus.CounterVec
	signAttempts *prometheus.CounterVec
	expired      *prometheus.GaugeVec
}

// NewProposalMetrics registers the proposal metrics on the provided registerer.
func NewProposalMetrics(reg prometheus.Registerer) *ProposalMetrics {
	if reg == nil {
		return &ProposalMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proposal_transitions_total",
		Help: "Proposal status transitions by from/to status.",
	}, []string{"from", "to"})
	signAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proposal_sign_attempts_total",
		Help: "Public signing attempts by outcome.",
	}, []string{"outcome"})
	expired := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "proposals_past_validity",
		Help: "Open proposals currently past their valid_until date.",
	}, []string{"status"})
	reg.MustRegister(transitions, signAttempts, expired)
	return &ProposalMetrics{
		transitions:  transitions,
		signAttempts: signAttempts,
		expired:      expired,
	}
}

// ObserveTransition counts one status transition.
func (p *ProposalMetrics) ObserveTransition(from, to string) {
	if p == nil || p.transitions == nil {
		return
	}
	p.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveSignAttempt counts one signing attempt by outcome.
func (p *ProposalMetrics) ObserveSignAttempt(outcome string) {
	if p == nil || p.signAttempts == nil {
		return
	}
	p.signAttempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// SetPastValidity records how many proposals in the given status are past
// valid_until.
func (p *ProposalMetrics) SetPastValidity(status string, count int) {
	if p == nil || p.expired == nil {
		return
	}
	p.expired.WithLabelValues(normalizeLabel(status)).Set(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
