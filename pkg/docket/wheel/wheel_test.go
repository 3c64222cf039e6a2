package wheel

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"lexhaven/gavel/pkg/docket"
)

func civilCase() *docket.CaseContext {
	return &docket.CaseContext{
		Court:    "nd-cal",
		CaseID:   uuid.New(),
		CaseType: docket.CaseTypeCivil,
		Status:   "filed",
	}
}

func pool(weights map[string]int) []Config {
	var configs []Config
	for judge, weight := range weights {
		configs = append(configs, Config{
			Court:    "nd-cal",
			Judge:    judge,
			CaseType: docket.CaseTypeCivil,
			Weight:   weight,
			Active:   true,
		})
	}
	return configs
}

func assignedJudge(t *testing.T, effects []docket.Effect) string {
	t.Helper()
	for _, e := range effects {
		if a, ok := e.(docket.AssignJudge); ok {
			return a.Judge
		}
	}
	return ""
}

// TestAssign_DistributionTracksWeights runs many trials and checks
// each judge's selection frequency converges to weight/total.
func TestAssign_DistributionTracksWeights(t *testing.T) {
	weights := map[string]int{"howell": 10, "chen": 30, "alsup": 60}
	configs := pool(weights)
	w := New(slog.Default())

	const trials = 20000
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		effects, err := w.Assign(civilCase(), configs, nil)
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		judge := assignedJudge(t, effects)
		if judge == "" {
			t.Fatal("expected an AssignJudge effect")
		}
		counts[judge]++
	}

	for judge, weight := range weights {
		got := float64(counts[judge]) / trials
		want := float64(weight) / 100
		if got < want-0.02 || got > want+0.02 {
			t.Errorf("judge %s selected %.3f of trials, want %.2f ± 0.02", judge, got, want)
		}
	}
}

// TestAssign_CaseloadCapExcludes checks a judge at max caseload is
// never selected across any number of trials.
func TestAssign_CaseloadCapExcludes(t *testing.T) {
	configs := []Config{
		{Court: "nd-cal", Judge: "capped", CaseType: docket.CaseTypeCivil, Weight: 90, Active: true, MaxCaseload: 50, CurrentCaseload: 50},
		{Court: "nd-cal", Judge: "open", CaseType: docket.CaseTypeCivil, Weight: 10, Active: true, MaxCaseload: 50, CurrentCaseload: 10},
	}
	w := New(slog.Default())

	for i := 0; i < 500; i++ {
		effects, err := w.Assign(civilCase(), configs, nil)
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if assignedJudge(t, effects) == "capped" {
			t.Fatal("judge at caseload cap was selected")
		}
	}
}

// TestAssign_EmptyPoolQueuesManualAssignment checks the manual-queue
// fallback and that it is not treated as an error.
func TestAssign_EmptyPoolQueuesManualAssignment(t *testing.T) {
	w := New(slog.Default())

	effects, err := w.Assign(civilCase(), nil, nil)
	if err != nil {
		t.Fatalf("empty pool should not error: %v", err)
	}

	var queued *docket.CreateQueueItem
	var audited bool
	for _, e := range effects {
		switch e := e.(type) {
		case docket.CreateQueueItem:
			queued = &e
		case docket.AssignJudge:
			t.Fatal("empty pool must never produce AssignJudge")
		case docket.LogAuditEvent:
			audited = true
		}
	}
	if queued == nil {
		t.Fatal("expected CreateQueueItem for manual assignment")
	}
	if queued.Type != "manual_assignment" {
		t.Errorf("queue type = %q, want manual_assignment", queued.Type)
	}
	if !audited {
		t.Error("every wheel outcome must emit an audit event")
	}
}

func TestAssign_ConflictExcludes(t *testing.T) {
	caseCtx := civilCase()
	caseCtx.Parties = []docket.Party{
		{Name: "Acme Corp", Role: "defendant"},
		{Name: "Jane Roe", Role: "plaintiff"},
	}

	configs := pool(map[string]int{"recused": 50, "clear": 50})
	conflicts := []Conflict{
		{Judge: "recused", Party: "Acme Corp", Active: true},
		{Judge: "clear", Party: "Acme Corp", Active: false}, // inactive, ignored
		{Judge: "clear", Party: "Acme Holdings", Active: true}, // equality match only
	}

	w := New(slog.Default())
	for i := 0; i < 200; i++ {
		effects, err := w.Assign(caseCtx, configs, conflicts)
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if got := assignedJudge(t, effects); got != "clear" {
			t.Fatalf("selected %q, want conflict-free judge", got)
		}
	}
}

// TestAssign_CumulativeSelection pins the cumulative-array boundary
// behavior with a deterministic draw.
func TestAssign_CumulativeSelection(t *testing.T) {
	configs := []Config{
		{Court: "nd-cal", Judge: "a", CaseType: docket.CaseTypeCivil, Weight: 10, Active: true},
		{Court: "nd-cal", Judge: "b", CaseType: docket.CaseTypeCivil, Weight: 20, Active: true},
	}

	tests := []struct {
		draw int
		want string
	}{
		{0, "a"},
		{9, "a"},
		{10, "b"},
		{29, "b"},
	}
	for _, tt := range tests {
		w := New(slog.Default(), WithDraw(func(n int) int { return tt.draw }))
		effects, err := w.Assign(civilCase(), configs, nil)
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if got := assignedJudge(t, effects); got != tt.want {
			t.Errorf("draw %d selected %q, want %q", tt.draw, got, tt.want)
		}
	}
}

func TestAssign_FiltersCourtAndType(t *testing.T) {
	configs := []Config{
		{Court: "sd-ny", Judge: "wrong-court", CaseType: docket.CaseTypeCivil, Weight: 100, Active: true},
		{Court: "nd-cal", Judge: "wrong-type", CaseType: docket.CaseTypeCriminal, Weight: 100, Active: true},
		{Court: "nd-cal", Judge: "inactive", CaseType: docket.CaseTypeCivil, Weight: 100, Active: false},
	}
	w := New(slog.Default())

	effects, err := w.Assign(civilCase(), configs, nil)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assignedJudge(t, effects) != "" {
		t.Error("no config should have matched court, type, and active flags")
	}
}
