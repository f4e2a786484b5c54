package orchestrator

import (
	"errors"
	"testing"
	"time"
)

// Step exercises the real device queue and isn't covered here; these tests
// target the orchestrator's own bookkeeping, which runs identically with or
// without a backing device.

func TestNewDefaultsToNotHidden(t *testing.T) {
	o := New(nil, 2, 1000, nil)
	if o.Hidden() {
		t.Fatal("new orchestrator should not start hidden")
	}
}

func TestSetVisibility(t *testing.T) {
	o := New(nil, 2, 1000, nil)
	o.SetVisibility(true)
	if !o.Hidden() {
		t.Fatal("expected Hidden() true after SetVisibility(true)")
	}
	o.SetVisibility(false)
	if o.Hidden() {
		t.Fatal("expected Hidden() false after SetVisibility(false)")
	}
}

func TestSetInputStagesPendingInput(t *testing.T) {
	o := New(nil, 2, 1000, nil)
	in := Input{Force: [2]float32{1, 2}, CursorPos: [2]float32{3, 4}, CursorActive: true}
	o.SetInput(in)
	if o.pendingInput != in {
		t.Fatalf("pendingInput = %+v, want %+v", o.pendingInput, in)
	}
}

func TestSetCounts(t *testing.T) {
	o := New(nil, 2, 1000, nil)
	o.SetCounts(42, 7)
	if o.particleCount != 42 || o.beamCount != 7 {
		t.Fatalf("got (%d, %d), want (42, 7)", o.particleCount, o.beamCount)
	}
}

func TestFrameFailureLockedEscalatesToDeviceLost(t *testing.T) {
	o := New(nil, 2, 1000, nil)

	for i := 0; i < transientFailureLimit-1; i++ {
		err := o.frameFailureLocked(errTestCause)
		if !isTransient(err) {
			t.Fatalf("attempt %d: expected ErrTransient, got %v", i, err)
		}
	}

	err := o.frameFailureLocked(errTestCause)
	if !isDeviceLost(err) {
		t.Fatalf("expected ErrDeviceLost at failure %d, got %v", transientFailureLimit, err)
	}
}

func TestFrameFailureLockedResetsAfterSuccess(t *testing.T) {
	o := New(nil, 2, 1000, nil)
	o.frameFailureLocked(errTestCause)
	o.consecutiveFailures = 0 // mirrors what a successful Step does

	err := o.frameFailureLocked(errTestCause)
	if !isTransient(err) {
		t.Fatalf("expected ErrTransient on first failure after reset, got %v", err)
	}
}

func TestPruneOlderThanOneSecond(t *testing.T) {
	now := time.Now()
	times := []time.Time{
		now.Add(-2 * time.Second),
		now.Add(-1500 * time.Millisecond),
		now.Add(-500 * time.Millisecond),
		now.Add(-100 * time.Millisecond),
	}

	pruned := pruneOlderThanOneSecond(times, now)

	if len(pruned) != 2 {
		t.Fatalf("len(pruned) = %d, want 2", len(pruned))
	}
	for _, tm := range pruned {
		if now.Sub(tm) > time.Second {
			t.Fatalf("entry %v is older than one second before %v", tm, now)
		}
	}
}

func TestPruneOlderThanOneSecondKeepsAllWhenNoneExpired(t *testing.T) {
	now := time.Now()
	times := []time.Time{now.Add(-100 * time.Millisecond), now}

	pruned := pruneOlderThanOneSecond(times, now)

	if len(pruned) != 2 {
		t.Fatalf("len(pruned) = %d, want 2", len(pruned))
	}
}

var errTestCause = errors.New("submission failed")

func isTransient(err error) bool { return errors.Is(err, ErrTransient) }

func isDeviceLost(err error) bool { return errors.Is(err, ErrDeviceLost) }
