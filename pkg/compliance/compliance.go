// Package compliance orchestrates one evaluation: status validation,
// the two-tier rule pass, the speedy-trial clock step, judge
// assignment, and override resolution, in that fixed order. The
// orchestrator mutates nothing; it returns a Decision whose effect
// list the caller applies atomically (pkg/storage) or discards.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lexhaven/gavel/pkg/docket"
	"lexhaven/gavel/pkg/docket/speedytrial"
	"lexhaven/gavel/pkg/docket/status"
	"lexhaven/gavel/pkg/docket/wheel"
	"lexhaven/gavel/pkg/rules/engine"
)

// Recorder receives evaluation outcomes for metrics. The zero
// dependency is a no-op; pkg/telemetry/metrics provides the Prometheus
// implementation.
type Recorder interface {
	EvaluationCompleted(trigger docket.Trigger, outcome string, elapsed time.Duration)
	ViolationRaised(citation string, overridden bool)
	AssignmentDrawn(court, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) EvaluationCompleted(docket.Trigger, string, time.Duration) {}
func (nopRecorder) ViolationRaised(string, bool)                              {}
func (nopRecorder) AssignmentDrawn(string, string)                            {}

// Request is one evaluation's complete input. The orchestrator reads
// everything it needs from here; it never reaches back into storage,
// which is what keeps a decision reproducible from its audit record.
type Request struct {
	Event *docket.CaseEvent
	Case  *docket.CaseContext

	// Override, when non-nil, is an authorization to bypass blocking
	// violations this evaluation raises. It applies to all of them or
	// none: a partial override still blocks.
	Override *docket.Override

	// Snapshot is the rule set to evaluate against, built by the caller
	// from pkg/rules/source at or before the event time.
	Snapshot *engine.Snapshot

	// WheelConfigs and Conflicts feed judge assignment on case_filed
	// events; ignored for all other triggers.
	WheelConfigs []wheel.Config
	Conflicts    []wheel.Conflict

	// Now is the evaluation instant; zero means Event.OccurredAt.
	Now time.Time
}

// Decision is a successful evaluation outcome. Violations lists every
// violation raised, including ones an override resolved; Overridden is
// true when an override resolved them. Effects are in application
// order.
type Decision struct {
	Effects    []docket.Effect
	Violations []docket.Violation
	Overridden bool
	Trail      []engine.TrailEntry

	// Clock is the updated speedy-trial clock after this evaluation,
	// nil for civil cases. NewDelay carries a delay interval opened by
	// this evaluation; ClosedDelay the interval this evaluation closed,
	// with its end date and excluded days finalized.
	Clock       *docket.Clock
	NewDelay    *docket.ExcludableDelay
	ClosedDelay *docket.ExcludableDelay
}

// Engine is the compliance orchestrator.
type Engine struct {
	logger   *slog.Logger
	wheel    *wheel.Wheel
	recorder Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder installs a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithWheel replaces the assignment wheel, used by tests to inject a
// deterministic draw.
func WithWheel(w *wheel.Wheel) Option {
	return func(e *Engine) { e.wheel = w }
}

// New creates an Engine.
func New(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		logger:   logger.With("component", "compliance"),
		wheel:    wheel.New(logger),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the full pipeline for one event. It returns a Decision
// on success, a *docket.ViolationError when a blocking violation is
// not overridden, a *docket.InputError for malformed input, and a
// *docket.InvariantError for an inconsistent case snapshot. On any
// error no effects are returned: a blocked action produces no partial
// state.
func (e *Engine) Evaluate(ctx context.Context, req *Request) (*Decision, error) {
	started := time.Now()
	decision, err := e.evaluate(ctx, req)

	outcome := "allowed"
	switch {
	case err != nil:
		outcome = "error"
		if _, ok := err.(*docket.ViolationError); ok {
			outcome = "blocked"
		}
	case decision.Overridden:
		outcome = "overridden"
	}
	trigger := docket.Trigger("unknown")
	if req.Event != nil {
		trigger = req.Event.Trigger
	}
	e.recorder.EvaluationCompleted(trigger, outcome, time.Since(started))
	return decision, err
}

func (e *Engine) evaluate(ctx context.Context, req *Request) (*Decision, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	event, caseCtx := req.Event, req.Case
	now := req.Now
	if now.IsZero() {
		now = event.OccurredAt
	}

	decision := &Decision{}

	// Status transitions are validated before anything else: a rejected
	// transition produces no effects from the rule pass at all.
	if event.Trigger == docket.TriggerStatusChanged {
		requested := event.PayloadString("new_status")
		if requested == "" {
			return nil, &docket.InputError{Field: "new_status", Message: "status_changed event requires a new_status payload"}
		}
		violation, err := status.Validate(event.CaseType, caseCtx.Status, requested)
		if err != nil {
			return nil, &docket.InputError{Field: "new_status", Message: err.Error()}
		}
		if violation != nil {
			decision.Violations = append(decision.Violations, *violation)
			return e.resolveOverrides(decision, req)
		}
	}

	// Two-tier rule pass: federal first, then local under the
	// federal-precedence guard.
	res, err := engine.Evaluate(req.Snapshot, event, caseCtx)
	if err != nil {
		return nil, err
	}
	decision.Effects = append(decision.Effects, res.Effects...)
	decision.Violations = append(decision.Violations, res.Violations...)
	decision.Trail = res.Trail

	// Clock step for criminal cases.
	if event.CaseType == docket.CaseTypeCriminal {
		if err := e.stepClock(decision, event, caseCtx, now); err != nil {
			return nil, err
		}
	}

	// Judge assignment runs last on filing so its audit rows follow the
	// filing deadlines in the effect order.
	if event.Trigger == docket.TriggerCaseFiled && caseCtx.AssignedJudge == "" {
		effects, err := e.wheel.Assign(caseCtx, req.WheelConfigs, req.Conflicts)
		if err != nil {
			return nil, err
		}
		decision.Effects = append(decision.Effects, effects...)

		outcome := "queued"
		for _, effect := range effects {
			if _, ok := effect.(docket.AssignJudge); ok {
				outcome = "assigned"
				break
			}
		}
		e.recorder.AssignmentDrawn(event.Court, outcome)
	}

	return e.resolveOverrides(decision, req)
}

// stepClock advances the speedy-trial clock for clock-relevant
// triggers and checks expiry. The clock in the decision is a copy; the
// caller persists it with the effects.
func (e *Engine) stepClock(decision *Decision, event *docket.CaseEvent, caseCtx *docket.CaseContext, now time.Time) error {
	clock := caseCtx.Clock
	if clock == nil {
		if event.Trigger != docket.TriggerCaseFiled {
			// Only filing creates the clock; any other criminal event
			// without one means the snapshot is incomplete.
			return &docket.InvariantError{
				Message: fmt.Sprintf("criminal case %s has no speedy trial clock", event.CaseID),
			}
		}
		clock = speedytrial.New(event.CaseID, event.Court)
		if arrest, ok := event.PayloadTime("arrest_date"); ok {
			a := arrest
			clock.ArrestDate = &a
		}
	} else {
		copied := *clock
		clock = &copied
	}
	delays := append([]docket.ExcludableDelay(nil), caseCtx.Delays...)

	switch event.Trigger {
	case docket.TriggerCaseFiled:
		// Filing starts the countdown immediately, anchored at the
		// arrest when one is recorded and at the filing itself
		// otherwise. Indictment re-anchors later.
		anchor := event.OccurredAt
		if a, ok := clock.Anchor(); ok {
			anchor = a
		}
		if err := speedytrial.Start(clock, anchor); err != nil {
			return err
		}
		decision.Effects = append(decision.Effects, docket.StartClock{TriggerDate: anchor})

	case docket.TriggerIndictmentReturned:
		at := event.OccurredAt
		clock.IndictmentDate = &at
		if err := speedytrial.Start(clock, at); err != nil {
			return err
		}
		decision.Effects = append(decision.Effects, docket.StartClock{TriggerDate: at})

	case docket.TriggerArraignmentHeld:
		at := event.OccurredAt
		clock.ArraignmentDate = &at
		// Arraignment re-anchors only until an indictment is recorded;
		// the indictment anchor takes precedence.
		if clock.IndictmentDate == nil {
			if err := speedytrial.Start(clock, at); err != nil {
				return err
			}
			decision.Effects = append(decision.Effects, docket.StartClock{TriggerDate: at})
		}

	case docket.TriggerMotionFiled:
		// A pretrial motion tolls a running clock (18 U.S.C.
		// §3161(h)(1)(D)). A motion filed while a delay is already open
		// is absorbed by that interval; exclusions never stack.
		if clock.State == docket.ClockRunning {
			reason := event.PayloadString("motion_kind")
			if reason == "" {
				reason = "pretrial motion pending"
			}
			delay, err := speedytrial.Toll(clock, delays, reason, "18 U.S.C. §3161(h)(1)(D)", now)
			if err != nil {
				return err
			}
			delays = append(delays, delay)
			decision.NewDelay = &delay
			decision.Effects = append(decision.Effects, docket.TollClock{
				Reason:       delay.Reason,
				StatutoryRef: delay.StatutoryRef,
			})
		}

	case docket.TriggerMotionResolved:
		if clock.State == docket.ClockTolled {
			openIdx := -1
			for i := range delays {
				if delays[i].Open() {
					openIdx = i
				}
			}
			if err := speedytrial.Resume(clock, delays, now); err != nil {
				return err
			}
			if openIdx >= 0 {
				closed := delays[openIdx]
				decision.ClosedDelay = &closed
			}
			decision.Effects = append(decision.Effects, docket.ResumeClock{})
		}

	case docket.TriggerTrialStarted, docket.TriggerCaseDismissed:
		speedytrial.Close(clock, false)
		decision.Effects = append(decision.Effects, docket.LogAuditEvent{
			Type:   "clock_closed",
			Detail: fmt.Sprintf("speedy trial clock closed on %s", event.Trigger),
		})

	case docket.TriggerWaiverFiled:
		speedytrial.Close(clock, true)
		decision.Effects = append(decision.Effects, docket.LogAuditEvent{
			Type:   "clock_closed",
			Detail: "speedy trial clock closed: defendant waiver filed",
		})
	}

	if err := speedytrial.Recompute(clock, delays, now); err != nil {
		return err
	}
	if speedytrial.Expired(clock) {
		decision.Violations = append(decision.Violations, speedytrial.ExpiryViolation(clock))
	}

	decision.Clock = clock
	return nil
}

// resolveOverrides settles the raised violations against the request's
// override. All violations must be satisfiable or the decision blocks
// on the first unresolved one.
func (e *Engine) resolveOverrides(decision *Decision, req *Request) (*Decision, error) {
	if len(decision.Violations) == 0 {
		return decision, nil
	}

	if req.Override == nil {
		e.recordViolations(decision.Violations, false)
		return nil, &docket.ViolationError{Violation: decision.Violations[0]}
	}
	if req.Override.Reason == "" {
		return nil, &docket.InputError{Field: "override.reason", Message: "override requires a reason"}
	}

	for _, v := range decision.Violations {
		if !req.Override.Satisfies(v) {
			e.logger.Warn("override rejected",
				"citation", v.Citation,
				"actor", req.Override.Actor,
				"role", req.Override.Role,
				"override_allowed", v.OverrideAllowed,
			)
			e.recordViolations(decision.Violations, false)
			return nil, &docket.ViolationError{Violation: v}
		}
	}

	// Every violation is covered: record each override as an audit
	// effect so the bypass is visible even if nothing else changed.
	e.recordViolations(decision.Violations, true)
	for _, v := range decision.Violations {
		decision.Effects = append(decision.Effects, docket.LogAuditEvent{
			Type: "violation_overridden",
			Detail: fmt.Sprintf("%s overridden by %s (%s): %s",
				v.String(), req.Override.Actor, req.Override.Role, req.Override.Reason),
		})
	}
	decision.Overridden = true
	e.logger.Info("violations overridden",
		"count", len(decision.Violations),
		"actor", req.Override.Actor,
		"role", req.Override.Role,
	)
	return decision, nil
}

func (e *Engine) recordViolations(violations []docket.Violation, overridden bool) {
	for _, v := range violations {
		e.recorder.ViolationRaised(v.Citation, overridden)
	}
}

func validateRequest(req *Request) error {
	switch {
	case req == nil, req.Event == nil:
		return &docket.InputError{Field: "event", Message: "missing event"}
	case req.Case == nil:
		return &docket.InputError{Field: "case", Message: "missing case snapshot"}
	case req.Snapshot == nil:
		return &docket.InputError{Field: "snapshot", Message: "missing rule snapshot"}
	case !req.Event.CaseType.Valid():
		return &docket.InputError{Field: "case_type", Message: fmt.Sprintf("unknown case type %q", req.Event.CaseType)}
	case !docket.KnownTrigger(req.Event.Trigger):
		return &docket.InputError{Field: "trigger", Message: fmt.Sprintf("unknown trigger %q", req.Event.Trigger)}
	}
	return nil
}
