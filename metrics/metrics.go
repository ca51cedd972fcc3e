// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded for engine actions.
const (
	ResultCommitted  = "committed"
	ResultRolledBack = "rolled_back"
	ResultNoop       = "noop"
	ResultDropped    = "dropped"
)

// Metrics holds the collectors of one side of the system. NewServer fills
// the server's, NewEngine the engine's; recording into a collector the value
// was not built with does nothing.
type Metrics struct {
	// reconciliations counts ballot reconciliations by result
	reconciliations *prometheus.CounterVec

	// reconcileDuration observes how long a committed or rolled back
	// reconciliation took
	reconcileDuration prometheus.Histogram

	// nominations counts nomination lifecycle runs by action and result
	nominations *prometheus.CounterVec

	// votes counts vote mutations accepted by the server by action
	votes *prometheus.CounterVec

	// candidates counts candidate mutations accepted by the server by action
	candidates *prometheus.CounterVec
}

// NewServer creates the API server's collectors under namespace and
// registers them with reg. A nil reg leaves them unregistered.
func NewServer(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		votes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "votes_total",
				Help:      "Vote mutations accepted by the server",
			},
			[]string{"action"},
		),
		candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "candidates_total",
				Help:      "Candidate mutations accepted by the server",
			},
			[]string{"action"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.votes)
		reg.MustRegister(m.candidates)
	}
	return m
}

// NewEngine creates the election engine's collectors under namespace and
// registers them with reg. A nil reg leaves them unregistered.
func NewEngine(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reconciliations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ballot",
				Name:      "reconciliations_total",
				Help:      "Ballot reconciliations by result",
			},
			[]string{"result"},
		),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ballot",
			Name:      "reconcile_duration_seconds",
			Help:      "Indicates how much time a ballot reconciliation took",
			Buckets:   prometheus.DefBuckets,
		}),
		nominations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "nomination",
				Name:      "lifecycle_total",
				Help:      "Nomination lifecycle runs by action and result",
			},
			[]string{"action", "result"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.reconciliations)
		reg.MustRegister(m.reconcileDuration)
		reg.MustRegister(m.nominations)
	}
	return m
}

// Reconciliation records a finished ballot reconciliation. The duration is
// only observed when remote calls were made.
func (m *Metrics) Reconciliation(result string, start time.Time) {
	if m == nil || m.reconciliations == nil {
		return
	}
	m.reconciliations.With(prometheus.Labels{"result": result}).Inc()
	if result == ResultCommitted || result == ResultRolledBack {
		m.reconcileDuration.Observe(time.Since(start).Seconds())
	}
}

// Nomination records a finished nominate or withdraw run.
func (m *Metrics) Nomination(action, result string) {
	if m == nil || m.nominations == nil {
		return
	}
	m.nominations.With(prometheus.Labels{"action": action, "result": result}).Inc()
}

// VoteAccepted records a server-side set or clear of a vote.
func (m *Metrics) VoteAccepted(action string) {
	if m == nil || m.votes == nil {
		return
	}
	m.votes.With(prometheus.Labels{"action": action}).Inc()
}

// CandidateAccepted records a server-side nomination or withdrawal.
func (m *Metrics) CandidateAccepted(action string) {
	if m == nil || m.candidates == nil {
		return
	}
	m.candidates.With(prometheus.Labels{"action": action}).Inc()
}
