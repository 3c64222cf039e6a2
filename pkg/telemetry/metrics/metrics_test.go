package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"lexhaven/gavel/pkg/docket"
)

func TestRecorder(t *testing.T) {
	m := New(nil)

	m.EvaluationCompleted(docket.TriggerCaseFiled, "allowed", 50*time.Microsecond)
	m.EvaluationCompleted(docket.TriggerCaseFiled, "allowed", 80*time.Microsecond)
	m.EvaluationCompleted(docket.TriggerStatusChanged, "blocked", 20*time.Microsecond)

	if got := testutil.ToFloat64(m.evaluationsTotal.WithLabelValues("case_filed", "allowed")); got != 2 {
		t.Errorf("case_filed/allowed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.evaluationsTotal.WithLabelValues("status_changed", "blocked")); got != 1 {
		t.Errorf("status_changed/blocked = %v, want 1", got)
	}

	m.ViolationRaised("18 U.S.C. §3162(a)", false)
	m.ViolationRaised("Admin. R. 5.2 (case status transitions)", true)
	if got := testutil.ToFloat64(m.violationsTotal.WithLabelValues("18 U.S.C. §3162(a)", "false")); got != 1 {
		t.Errorf("expiry violations = %v, want 1", got)
	}

	m.AssignmentDrawn("nd-cal", "assigned")
	m.RulesReloaded()
	m.RemindersFlagged(3)
	if got := testutil.ToFloat64(m.remindersTotal); got != 3 {
		t.Errorf("reminders = %v, want 3", got)
	}
}

func TestRegistersOnProvidedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	if m.Registry() != reg {
		t.Error("metrics should keep the provided registry")
	}
	if m.Handler() == nil {
		t.Error("handler should not be nil")
	}
}
