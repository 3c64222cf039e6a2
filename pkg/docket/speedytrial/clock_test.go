package speedytrial

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"lexhaven/gavel/pkg/docket"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func runningClock(t *testing.T, anchor time.Time) *docket.Clock {
	t.Helper()
	clock := New(uuid.New(), "nd-cal")
	if err := Start(clock, anchor); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return clock
}

func TestStart_SetsSeventyDayDeadline(t *testing.T) {
	anchor := date(2026, time.March, 2)
	clock := runningClock(t, anchor)

	want := anchor.AddDate(0, 0, 70)
	if !clock.TrialDeadline.Equal(want) {
		t.Errorf("deadline = %s, want %s", clock.TrialDeadline, want)
	}
	if clock.State != docket.ClockRunning {
		t.Errorf("state = %s, want running", clock.State)
	}
}

// Starting with no charging milestone anchors at the trigger (the
// filing date); the clock counts and tolls in that window.
func TestStart_FilingFallbackAnchor(t *testing.T) {
	filed := date(2026, time.March, 2)
	clock := New(uuid.New(), "nd-cal")
	if err := Start(clock, filed); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if !clock.FilingDate.Equal(filed) {
		t.Errorf("filing date = %s, want %s", clock.FilingDate, filed)
	}
	anchor, ok := clock.Anchor()
	if !ok || !anchor.Equal(filed) {
		t.Errorf("anchor = %s/%v, want filing date", anchor, ok)
	}
	if _, err := Toll(clock, nil, "motion to dismiss complaint", "18 U.S.C. §3161(h)(1)(D)", filed.AddDate(0, 0, 5)); err != nil {
		t.Errorf("toll before indictment should succeed: %v", err)
	}
}

// A later charging milestone re-anchors the deadline; the filing
// fallback loses to it.
func TestStart_ReanchorsOnIndictment(t *testing.T) {
	filed := date(2026, time.March, 2)
	clock := New(uuid.New(), "nd-cal")
	if err := Start(clock, filed); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if want := filed.AddDate(0, 0, DeadlineDays); !clock.TrialDeadline.Equal(want) {
		t.Fatalf("deadline = %s, want %s", clock.TrialDeadline, want)
	}

	indicted := filed.AddDate(0, 0, 10)
	clock.IndictmentDate = &indicted
	if err := Start(clock, indicted); err != nil {
		t.Fatalf("re-anchor: %v", err)
	}
	if want := indicted.AddDate(0, 0, DeadlineDays); !clock.TrialDeadline.Equal(want) {
		t.Errorf("re-anchored deadline = %s, want %s", clock.TrialDeadline, want)
	}
	if anchor, _ := clock.Anchor(); !anchor.Equal(indicted) {
		t.Errorf("anchor = %s, want indictment date", anchor)
	}

	// Elapsed counts from the new anchor.
	if err := Recompute(clock, nil, indicted.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if clock.ElapsedDays != 7 {
		t.Errorf("elapsed = %d, want 7", clock.ElapsedDays)
	}
}

// TestRecompute_CountdownDecreasesDaily checks remaining drops one per
// elapsed calendar day while untolled.
func TestRecompute_CountdownDecreasesDaily(t *testing.T) {
	anchor := date(2026, time.March, 2)
	clock := runningClock(t, anchor)

	prev := DeadlineDays + 1
	for day := 0; day <= 10; day++ {
		now := anchor.AddDate(0, 0, day)
		if err := Recompute(clock, nil, now); err != nil {
			t.Fatalf("Recompute day %d: %v", day, err)
		}
		if clock.RemainingDays != DeadlineDays-day {
			t.Fatalf("day %d: remaining = %d, want %d", day, clock.RemainingDays, DeadlineDays-day)
		}
		if clock.RemainingDays != prev-1 {
			t.Fatalf("day %d: remaining did not decrease by exactly 1", day)
		}
		prev = clock.RemainingDays
	}
}

// TestTollFreezesCountdown verifies remaining is frozen at its
// pre-toll value for the whole tolled interval.
func TestTollFreezesCountdown(t *testing.T) {
	anchor := date(2026, time.March, 2)
	clock := runningClock(t, anchor)

	tollAt := anchor.AddDate(0, 0, 10)
	delay, err := Toll(clock, nil, "pretrial motion pending", "18 U.S.C. §3161(h)(1)(D)", tollAt)
	if err != nil {
		t.Fatalf("Toll: %v", err)
	}
	delays := []docket.ExcludableDelay{delay}

	if err := Recompute(clock, delays, tollAt); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	frozen := clock.RemainingDays
	if frozen != DeadlineDays-10 {
		t.Fatalf("pre-toll remaining = %d, want %d", frozen, DeadlineDays-10)
	}

	for _, days := range []int{1, 7, 30} {
		if err := Recompute(clock, delays, tollAt.AddDate(0, 0, days)); err != nil {
			t.Fatalf("Recompute +%d: %v", days, err)
		}
		if !clock.IsTolled {
			t.Fatalf("+%d days: clock should report tolled", days)
		}
		if clock.RemainingDays != frozen {
			t.Errorf("+%d days: remaining = %d, want frozen %d", days, clock.RemainingDays, frozen)
		}
	}
}

func TestResume_ClosesOpenDelay(t *testing.T) {
	anchor := date(2026, time.March, 2)
	clock := runningClock(t, anchor)

	tollAt := anchor.AddDate(0, 0, 10)
	delay, err := Toll(clock, nil, "competency evaluation", "18 U.S.C. §3161(h)(1)(A)", tollAt)
	if err != nil {
		t.Fatalf("Toll: %v", err)
	}
	delays := []docket.ExcludableDelay{delay}

	resumeAt := tollAt.AddDate(0, 0, 14)
	if err := Resume(clock, delays, resumeAt); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	open := 0
	for _, d := range delays {
		if d.Open() {
			open++
		}
	}
	if open != 0 {
		t.Fatalf("open delays after resume = %d, want 0", open)
	}
	if delays[0].DaysExcluded != 14 {
		t.Errorf("days excluded = %d, want 14", delays[0].DaysExcluded)
	}

	// The 14 tolled days stay excluded after resuming.
	if err := Recompute(clock, delays, resumeAt.AddDate(0, 0, 5)); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if clock.RemainingDays != DeadlineDays-15 {
		t.Errorf("remaining = %d, want %d", clock.RemainingDays, DeadlineDays-15)
	}
	if clock.IsTolled {
		t.Error("clock should no longer be tolled")
	}
}

func TestResume_NeverNegativeExclusion(t *testing.T) {
	anchor := date(2026, time.March, 2)
	clock := runningClock(t, anchor)

	delay, err := Toll(clock, nil, "continuance", "18 U.S.C. §3161(h)(7)", anchor.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("Toll: %v", err)
	}
	delays := []docket.ExcludableDelay{delay}

	// Resume timestamped before the toll start still yields zero days.
	if err := Resume(clock, delays, anchor.AddDate(0, 0, 3)); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if delays[0].DaysExcluded != 0 {
		t.Errorf("days excluded = %d, want 0", delays[0].DaysExcluded)
	}
}

func TestInvariantFailures(t *testing.T) {
	anchor := date(2026, time.March, 2)

	t.Run("toll on closed clock", func(t *testing.T) {
		clock := runningClock(t, anchor)
		Close(clock, false)
		_, err := Toll(clock, nil, "x", "y", anchor)
		var inv *docket.InvariantError
		if !errors.As(err, &inv) {
			t.Fatalf("expected InvariantError, got %v", err)
		}
	})

	t.Run("toll before start", func(t *testing.T) {
		clock := New(uuid.New(), "nd-cal")
		if _, err := Toll(clock, nil, "x", "y", anchor); err == nil {
			t.Fatal("expected error tolling an unstarted clock")
		}
	})

	t.Run("double toll", func(t *testing.T) {
		clock := runningClock(t, anchor)
		d, err := Toll(clock, nil, "x", "y", anchor)
		if err != nil {
			t.Fatalf("first toll: %v", err)
		}
		if _, err := Toll(clock, []docket.ExcludableDelay{d}, "x", "y", anchor); err == nil {
			t.Fatal("expected error opening a second delay")
		}
	})

	t.Run("resume with no open delay", func(t *testing.T) {
		clock := runningClock(t, anchor)
		if err := Resume(clock, nil, anchor); err == nil {
			t.Fatal("expected error resuming with no open delay")
		}
	})

	t.Run("start closed clock", func(t *testing.T) {
		clock := runningClock(t, anchor)
		Close(clock, true)
		if err := Start(clock, anchor); err == nil {
			t.Fatal("expected error restarting a closed clock")
		}
	})
}

func TestExpired(t *testing.T) {
	anchor := date(2026, time.January, 5)
	clock := runningClock(t, anchor)

	if err := Recompute(clock, nil, anchor.AddDate(0, 0, 69)); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if Expired(clock) {
		t.Error("clock with 1 day remaining should not be expired")
	}

	if err := Recompute(clock, nil, anchor.AddDate(0, 0, 70)); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if !Expired(clock) {
		t.Error("clock at day 70 should be expired")
	}

	v := ExpiryViolation(clock)
	if v.OverrideAllowed {
		t.Error("speedy trial expiry must not be overridable")
	}
	if v.Citation != ExpiryCitation {
		t.Errorf("citation = %q, want %q", v.Citation, ExpiryCitation)
	}

	// Waiver neutralizes expiry.
	clock.Waived = true
	if Expired(clock) {
		t.Error("waived clock should not report expiry")
	}
}

func TestRecompute_FloorsAtZero(t *testing.T) {
	anchor := date(2026, time.January, 5)
	clock := runningClock(t, anchor)

	if err := Recompute(clock, nil, anchor.AddDate(0, 0, 200)); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if clock.RemainingDays != 0 {
		t.Errorf("remaining = %d, want floor at 0", clock.RemainingDays)
	}
}
