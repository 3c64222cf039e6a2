package status

import (
	"testing"

	"lexhaven/gavel/pkg/docket"
)

// TestValidate_Exhaustive walks every (current, requested) pair for
// both case types and checks the answer against the adjacency lists.
func TestValidate_Exhaustive(t *testing.T) {
	graphs := map[docket.CaseType]map[string][]string{
		docket.CaseTypeCriminal: criminalGraph,
		docket.CaseTypeCivil:    civilGraph,
	}

	for caseType, graph := range graphs {
		for current, allowed := range graph {
			allowedSet := make(map[string]bool, len(allowed))
			for _, s := range allowed {
				allowedSet[s] = true
			}

			for requested := range graph {
				v, err := Validate(caseType, current, requested)
				if err != nil {
					t.Fatalf("Validate(%s, %s, %s) error: %v", caseType, current, requested, err)
				}
				if allowedSet[requested] && v != nil {
					t.Errorf("%s %s→%s should be allowed, got violation %v", caseType, current, requested, v)
				}
				if !allowedSet[requested] && v == nil {
					t.Errorf("%s %s→%s should be rejected", caseType, current, requested)
				}
			}
		}
	}
}

func TestValidate_ViolationCarriesCitation(t *testing.T) {
	v, err := Validate(docket.CaseTypeCriminal, "filed", "sentenced")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil {
		t.Fatal("expected violation for filed→sentenced")
	}
	if v.Citation == "" {
		t.Error("violation missing citation")
	}
	if !v.OverrideAllowed {
		t.Error("status violations should be judge-overridable")
	}
}

func TestValidate_UnknownStatusIsInputError(t *testing.T) {
	if _, err := Validate(docket.CaseTypeCivil, "filed", "abolished"); err == nil {
		t.Error("expected error for unknown requested status")
	}
	if _, err := Validate(docket.CaseTypeCivil, "abolished", "closed"); err == nil {
		t.Error("expected error for unknown current status")
	}
	if _, err := Validate(docket.CaseType("maritime"), "filed", "closed"); err == nil {
		t.Error("expected error for unknown case type")
	}
}

// TestOnAppealReachability confirms on_appeal is only reachable from
// the documented terminal set.
func TestOnAppealReachability(t *testing.T) {
	sources := map[docket.CaseType][]string{
		docket.CaseTypeCriminal: {"sentenced", "dismissed"},
		docket.CaseTypeCivil:    {"judgment_entered", "dismissed"},
	}
	graphs := map[docket.CaseType]map[string][]string{
		docket.CaseTypeCriminal: criminalGraph,
		docket.CaseTypeCivil:    civilGraph,
	}

	for caseType, graph := range graphs {
		want := make(map[string]bool)
		for _, s := range sources[caseType] {
			want[s] = true
		}
		for current, allowed := range graph {
			reaches := false
			for _, s := range allowed {
				if s == "on_appeal" {
					reaches = true
				}
			}
			if reaches != want[current] {
				t.Errorf("%s: on_appeal reachable from %q = %v, want %v", caseType, current, reaches, want[current])
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(docket.CaseTypeCriminal, "on_appeal") {
		t.Error("criminal on_appeal should be terminal")
	}
	if Terminal(docket.CaseTypeCivil, "on_appeal") {
		t.Error("civil on_appeal may still close")
	}
	if !Terminal(docket.CaseTypeCivil, "closed") {
		t.Error("civil closed should be terminal")
	}
}
