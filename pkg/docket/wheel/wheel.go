// Package wheel implements constrained weighted-random judge
// assignment: filter the configured pool by caseload and conflicts,
// then draw proportionally to configured weights. An empty eligible
// pool is a valid terminal outcome that routes the case to the manual
// assignment queue, never a failure.
//
// The wheel performs no locking. Two concurrent filings could both see
// a judge just under the caseload cap; serializing caseload increments
// around the read-then-assign sequence is the caller's transaction
// problem, not the wheel's.
package wheel

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"

	"lexhaven/gavel/pkg/docket"
)

// Config is one judge's entry on the assignment wheel for a
// (court, case type) pair. Rows are administratively mutable outside
// the engine's write path; the wheel only reads them.
type Config struct {
	Court    string
	Judge    string
	CaseType docket.CaseType
	// Weight is the relative draw weight, 1–100.
	Weight int
	Active bool
	// MaxCaseload caps assignments; 0 means uncapped.
	MaxCaseload int
	// CurrentCaseload is the judge's open-case count at read time.
	CurrentCaseload int
}

// Conflict is an active conflict or recusal between a judge and a
// named party. Matching is an equality match on the party name set of
// the case being assigned, including flagged co-conspirators; it is
// never fuzzy.
type Conflict struct {
	Judge  string
	Party  string
	Active bool
}

// Wheel selects judges. The zero value is not usable; construct with New.
type Wheel struct {
	logger *slog.Logger
	// draw returns a uniform value in [0, n). Injectable for tests;
	// defaults to math/rand/v2, which is unpredictable enough across
	// calls without being cryptographic.
	draw func(n int) int
}

// Option configures a Wheel.
type Option func(*Wheel)

// WithDraw replaces the randomness source. Tests use this to make
// selection deterministic.
func WithDraw(draw func(n int) int) Option {
	return func(w *Wheel) { w.draw = draw }
}

// New creates an assignment wheel.
func New(logger *slog.Logger, opts ...Option) *Wheel {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Wheel{
		logger: logger.With("component", "wheel"),
		draw:   rand.IntN,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Assign picks a judge for the case, or routes it to the manual queue
// when nobody is eligible. The returned effects always include a
// LogAuditEvent recording the input pool and, on selection, the weight
// used.
func (w *Wheel) Assign(caseCtx *docket.CaseContext, configs []Config, conflicts []Conflict) ([]docket.Effect, error) {
	eligible, excluded := w.eligiblePool(caseCtx, configs, conflicts)

	if len(eligible) == 0 {
		w.logger.Info("no eligible judges, routing to manual queue",
			"court", caseCtx.Court,
			"case_type", caseCtx.CaseType,
			"case_id", caseCtx.CaseID,
			"excluded", len(excluded),
		)
		return []docket.Effect{
			docket.CreateQueueItem{
				Type:     "manual_assignment",
				Title:    fmt.Sprintf("Manual judge assignment required for case %s", caseCtx.CaseID),
				Priority: "high",
			},
			docket.LogAuditEvent{
				Type:   "judge_assignment_queued",
				Detail: fmt.Sprintf("eligible pool empty; excluded: %s", strings.Join(excluded, ", ")),
			},
		}, nil
	}

	total := 0
	cumulative := make([]int, len(eligible))
	for i, c := range eligible {
		total += c.Weight
		cumulative[i] = total
	}

	// Uniform draw in [0, total); pick the first judge whose
	// cumulative weight exceeds the draw.
	drawn := w.draw(total)
	idx := sort.SearchInts(cumulative, drawn+1)
	selected := eligible[idx]

	w.logger.Info("judge selected",
		"court", caseCtx.Court,
		"case_type", caseCtx.CaseType,
		"case_id", caseCtx.CaseID,
		"judge", selected.Judge,
		"weight", selected.Weight,
		"pool_size", len(eligible),
	)

	pool := make([]string, len(eligible))
	for i, c := range eligible {
		pool[i] = fmt.Sprintf("%s(w=%d)", c.Judge, c.Weight)
	}

	return []docket.Effect{
		docket.AssignJudge{
			Judge:  selected.Judge,
			Reason: fmt.Sprintf("weighted random draw, weight %d of %d", selected.Weight, total),
		},
		docket.LogAuditEvent{
			Type:   "judge_assigned",
			Detail: fmt.Sprintf("pool [%s]; selected %s", strings.Join(pool, " "), selected.Judge),
		},
	}, nil
}

// eligiblePool filters the configured wheel down to judges who are
// active for this court and case type, under their caseload cap, and
// free of conflicts with the case's parties. It also returns the names
// of excluded judges for the audit trail.
func (w *Wheel) eligiblePool(caseCtx *docket.CaseContext, configs []Config, conflicts []Conflict) ([]Config, []string) {
	conflicted := make(map[string]bool)
	names := caseCtx.PartyNames()
	for _, c := range conflicts {
		if !c.Active {
			continue
		}
		for _, name := range names {
			if c.Party == name {
				conflicted[c.Judge] = true
			}
		}
	}

	var eligible []Config
	var excluded []string
	for _, c := range configs {
		switch {
		case !c.Active,
			c.Court != caseCtx.Court,
			c.CaseType != caseCtx.CaseType:
			continue
		case c.Weight <= 0:
			excluded = append(excluded, c.Judge+" (zero weight)")
		case c.MaxCaseload > 0 && c.CurrentCaseload >= c.MaxCaseload:
			excluded = append(excluded, c.Judge+" (at caseload cap)")
		case conflicted[c.Judge]:
			excluded = append(excluded, c.Judge+" (conflict)")
		default:
			eligible = append(eligible, c)
		}
	}
	return eligible, excluded
}
