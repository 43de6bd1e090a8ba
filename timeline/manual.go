package timeline

import (
	"slices"
	"time"
)

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a ManualClock set to start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Add moves the clock forward by d.
func (c *ManualClock) Add(d time.Duration) { c.now = c.now.Add(d) }

// Manual is a Scheduler for hosts that deliver ticks themselves, and for
// tests. Ticks and timeouts are only delivered by Step.
type Manual struct {
	Clock *ManualClock

	tickers []*manualTicker
	timers  []*manualTimer
}

type manualTicker struct {
	fn   func() bool
	dead bool
}

type manualTimer struct {
	deadline time.Time
	fn       func()
	dead     bool
}

// NewManual returns a Manual scheduler with its own clock.
func NewManual() *Manual {
	return &Manual{Clock: NewManualClock(time.Unix(0, 0))}
}

// Every implements Scheduler. The interval is ignored; each call to Step
// delivers one tick.
func (m *Manual) Every(_ time.Duration, fn func() bool) (cancel func()) {
	tk := &manualTicker{fn: fn}
	m.tickers = append(m.tickers, tk)
	return func() { tk.dead = true }
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) (cancel func()) {
	tm := &manualTimer{deadline: m.Clock.Now().Add(d), fn: fn}
	m.timers = append(m.timers, tm)
	return func() { tm.dead = true }
}

// Step moves the clock forward by d, fires due timeouts and then delivers
// one tick to each ticker that was registered before the step began.
func (m *Manual) Step(d time.Duration) {
	m.Clock.Add(d)
	tickers := slices.Clone(m.tickers)
	now := m.Clock.Now()
	for _, tm := range slices.Clone(m.timers) {
		if !tm.dead && !tm.deadline.After(now) {
			tm.dead = true
			tm.fn()
		}
	}
	for _, tk := range tickers {
		if tk.dead {
			continue
		}
		if !tk.fn() {
			tk.dead = true
		}
	}
	m.tickers = slices.DeleteFunc(m.tickers, func(tk *manualTicker) bool { return tk.dead })
	m.timers = slices.DeleteFunc(m.timers, func(tm *manualTimer) bool { return tm.dead })
}

// Tickers returns the number of live tickers.
func (m *Manual) Tickers() int {
	n := 0
	for _, tk := range m.tickers {
		if !tk.dead {
			n++
		}
	}
	return n
}
