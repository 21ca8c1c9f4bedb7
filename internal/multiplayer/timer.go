package multiplayer

import (
	"fmt"
	"sync"
	"time"
)

// fixedAlertSeconds are announced for every countdown regardless of length.
var fixedAlertSeconds = []int{30, 10, 5, 4, 3, 2, 1}

// CountdownTimer ticks once per second toward zero, announcing the remaining
// time at a fixed set of thresholds plus every full minute. One match owns at
// most one; starting a new countdown stops the previous instance first.
type CountdownTimer struct {
	template  string
	remaining int
	alerts    map[int]struct{}
	onAlert   func(message string)
	onFinish  func()
	interval  time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewCountdownTimer starts a countdown of totalSeconds. The template must
// contain one %d verb for the remaining seconds. Callbacks fire on the
// timer's own goroutine and re-enter whatever they close over (the owning
// match, typically) through its public methods.
func NewCountdownTimer(totalSeconds int, template string, onAlert func(message string), onFinish func()) *CountdownTimer {
	return newCountdownTimer(totalSeconds, template, onAlert, onFinish, time.Second)
}

func newCountdownTimer(totalSeconds int, template string, onAlert func(message string), onFinish func(), interval time.Duration) *CountdownTimer {
	alerts := make(map[int]struct{}, len(fixedAlertSeconds)+totalSeconds/60)
	for _, s := range fixedAlertSeconds {
		alerts[s] = struct{}{}
	}
	for minute := 1; minute*60 <= totalSeconds; minute++ {
		alerts[minute*60] = struct{}{}
	}

	t := &CountdownTimer{
		template:  template,
		remaining: totalSeconds,
		alerts:    alerts,
		onAlert:   onAlert,
		onFinish:  onFinish,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *CountdownTimer) run() {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.remaining--
			if t.remaining <= 0 {
				if t.onFinish != nil {
					t.onFinish()
				}
				return
			}
			if _, ok := t.alerts[t.remaining]; ok && t.onAlert != nil {
				t.onAlert(fmt.Sprintf(t.template, t.remaining))
			}
		}
	}
}

// Stop cancels the countdown and waits for the tick goroutine to exit, so no
// callback can fire after it returns. Safe to call more than once. Must not
// be called while holding a lock the callbacks acquire.
func (t *CountdownTimer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}
