// Package metrics exposes Prometheus metrics for the compliance
// engine: evaluation counts and latency, violations raised and
// overridden, judge assignments, rule reloads, and reminder scans.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lexhaven/gavel/pkg/docket"
)

// Metrics holds the engine's Prometheus collectors. It implements
// compliance.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	// Evaluations by trigger and outcome (allowed, blocked,
	// overridden, error).
	evaluationsTotal *prometheus.CounterVec

	// Evaluation latency by trigger.
	evaluationDuration *prometheus.HistogramVec

	// Violations by citation and whether an override resolved them.
	violationsTotal *prometheus.CounterVec

	// Judge assignments by court and outcome (assigned, queued).
	assignmentsTotal *prometheus.CounterVec

	// Local-rule snapshot reloads.
	ruleReloadsTotal prometheus.Counter

	// Deadlines flagged by the reminder scanner.
	remindersTotal prometheus.Counter
}

// New creates and registers the engine metrics on the given registry.
// A nil registry gets a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gavel",
				Name:      "evaluations_total",
				Help:      "Total compliance evaluations by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gavel",
				Name:      "evaluation_duration_seconds",
				Help:      "Compliance evaluation duration in seconds",
				// Evaluations are in-memory rule walks; sub-millisecond
				// is the norm.
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14),
			},
			[]string{"trigger"},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gavel",
				Name:      "violations_total",
				Help:      "Total violations raised by citation and override outcome",
			},
			[]string{"citation", "overridden"},
		),
		assignmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gavel",
				Name:      "judge_assignments_total",
				Help:      "Total judge assignment draws by court and outcome",
			},
			[]string{"court", "outcome"},
		),
		ruleReloadsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gavel",
				Name:      "rule_reloads_total",
				Help:      "Total local-rule snapshot reloads",
			},
		),
		remindersTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gavel",
				Name:      "deadline_reminders_total",
				Help:      "Total deadlines flagged by the reminder scanner",
			},
		),
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.violationsTotal,
		m.assignmentsTotal,
		m.ruleReloadsTotal,
		m.remindersTotal,
	)
	return m
}

// EvaluationCompleted implements compliance.Recorder.
func (m *Metrics) EvaluationCompleted(trigger docket.Trigger, outcome string, elapsed time.Duration) {
	m.evaluationsTotal.WithLabelValues(string(trigger), outcome).Inc()
	m.evaluationDuration.WithLabelValues(string(trigger)).Observe(elapsed.Seconds())
}

// ViolationRaised implements compliance.Recorder.
func (m *Metrics) ViolationRaised(citation string, overridden bool) {
	m.violationsTotal.WithLabelValues(citation, strconv.FormatBool(overridden)).Inc()
}

// AssignmentDrawn records a wheel outcome ("assigned" or "queued").
func (m *Metrics) AssignmentDrawn(court, outcome string) {
	m.assignmentsTotal.WithLabelValues(court, outcome).Inc()
}

// RulesReloaded records one snapshot rebuild.
func (m *Metrics) RulesReloaded() {
	m.ruleReloadsTotal.Inc()
}

// RemindersFlagged records deadlines flagged in one scanner pass.
func (m *Metrics) RemindersFlagged(n int) {
	m.remindersTotal.Add(float64(n))
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
