package multiplayer

import (
	"sync"
	"testing"
	"time"
)

// runCountdown drives a countdown at a fast tick and returns the alert
// messages and how many times completion fired.
func runCountdown(t *testing.T, totalSeconds int) ([]string, int) {
	t.Helper()

	var (
		mu       sync.Mutex
		alerts   []string
		finishes int
	)
	done := make(chan struct{})

	timer := newCountdownTimer(totalSeconds, "starts in %d", func(msg string) {
		mu.Lock()
		alerts = append(alerts, msg)
		mu.Unlock()
	}, func() {
		mu.Lock()
		finishes++
		mu.Unlock()
		close(done)
	}, time.Millisecond)
	defer timer.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("countdown did not complete")
	}

	mu.Lock()
	defer mu.Unlock()
	return alerts, finishes
}

func TestCountdownAlertThresholds(t *testing.T) {
	alerts, finishes := runCountdown(t, 90)

	want := []string{
		"starts in 60",
		"starts in 30",
		"starts in 10",
		"starts in 5",
		"starts in 4",
		"starts in 3",
		"starts in 2",
		"starts in 1",
	}
	if len(alerts) != len(want) {
		t.Fatalf("alerts = %v, want %v", alerts, want)
	}
	for i := range want {
		if alerts[i] != want[i] {
			t.Fatalf("alert %d = %q, want %q", i, alerts[i], want[i])
		}
	}
	if finishes != 1 {
		t.Fatalf("completion fired %d times, want 1", finishes)
	}
}

func TestCountdownShort(t *testing.T) {
	alerts, finishes := runCountdown(t, 3)

	want := []string{"starts in 2", "starts in 1"}
	if len(alerts) != len(want) {
		t.Fatalf("alerts = %v, want %v", alerts, want)
	}
	if finishes != 1 {
		t.Fatalf("completion fired %d times, want 1", finishes)
	}
}

func TestCountdownStopSilencesCallbacks(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}

	timer := newCountdownTimer(10_000, "starts in %d", func(string) {
		mu.Lock()
		calls++
		mu.Unlock()
	}, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	}, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	timer.Stop()

	after := count()
	time.Sleep(50 * time.Millisecond)
	if got := count(); got != after {
		t.Fatalf("callbacks fired after Stop: %d -> %d", after, got)
	}

	// stopping twice is fine
	timer.Stop()
}

func TestMatchStartTimerReplacesPrevious(t *testing.T) {
	m, _ := newTestMatch(1)
	e := &fakeEndpoint{userID: 1}
	m.AddPlayer(e, "")

	started := make(chan struct{}, 2)
	m.StartTimer(300, "starts in %d", func() { started <- struct{}{} })
	m.StartTimer(300, "starts in %d", func() { started <- struct{}{} })
	m.StopTimer()

	select {
	case <-started:
		t.Fatalf("stopped countdown still completed")
	case <-time.After(50 * time.Millisecond):
	}

	// stop with no active timer is a no-op
	m.StopTimer()
}
