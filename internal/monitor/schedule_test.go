package monitor

import (
	"testing"
	"time"
)

func TestBackoffDelay_Sequence(t *testing.T) {
	base := 60 * time.Second
	cap := 900 * time.Second
	want := []time.Duration{
		60 * time.Second,
		120 * time.Second,
		240 * time.Second,
		480 * time.Second,
		900 * time.Second,
		900 * time.Second,
	}
	for i, expected := range want {
		if got := BackoffDelay(base, cap, i+1); got != expected {
			t.Errorf("errors=%d: expected %s, got %s", i+1, expected, got)
		}
	}
}

func TestBackoffDelay_FloorsAtOne(t *testing.T) {
	if got := BackoffDelay(60*time.Second, 900*time.Second, 0); got != 60*time.Second {
		t.Errorf("expected base delay for zero errors, got %s", got)
	}
}

func TestAlignedWait_MidInterval(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 7, 30, 0, time.UTC)
	got := AlignedWait(now, 15*time.Minute, time.UTC)
	if want := 7*time.Minute + 30*time.Second; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestAlignedWait_OnBoundarySchedulesNext(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 15, 0, 0, time.UTC)
	got := AlignedWait(now, 15*time.Minute, time.UTC)
	if want := 15 * time.Minute; got != want {
		t.Errorf("expected a full interval, got %s", got)
	}
}

func TestAlignedWait_ConvergesAcrossStarts(t *testing.T) {
	// Two monitors started at different moments inside the same interval
	// must wake at the same boundary.
	a := time.Date(2025, 6, 2, 10, 2, 11, 0, time.UTC)
	b := time.Date(2025, 6, 2, 10, 9, 48, 0, time.UTC)
	interval := 15 * time.Minute

	wakeA := a.Add(AlignedWait(a, interval, time.UTC))
	wakeB := b.Add(AlignedWait(b, interval, time.UTC))
	if !wakeA.Equal(wakeB) {
		t.Errorf("wakes diverge: %s vs %s", wakeA, wakeB)
	}
}
