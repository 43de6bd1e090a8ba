package timeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// A Scheduler delivers ticks and timeouts to a Timeline. Callbacks must
// be run serially on the goroutine that owns the timelines using it.
type Scheduler interface {
	// Every calls fn every interval until fn returns false or cancel
	// is called. An interval of zero requests delivery whenever the
	// scheduler is idle.
	Every(interval time.Duration, fn func() bool) (cancel func())

	// After calls fn once after d unless cancel is called first.
	After(d time.Duration, fn func()) (cancel func())
}

// A Clock is the monotonic time source used for progress deltas.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Loop is a single-goroutine event loop implementing Scheduler. All
// scheduled callbacks and all work posted with Do run on the goroutine
// calling Run, so timelines driven by a Loop are only touched from there.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}

	// done is closed when Run returns, stopping all tick sources.
	done     chan struct{}
	doneOnce sync.Once
}

// NewLoop returns a new Loop. Work may be scheduled before Run is called.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1), done: make(chan struct{})}
}

// Do posts fn to be run on the loop goroutine. It is safe to call Do
// from any goroutine.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes posted work until ctx is cancelled. When Run returns, the
// tickers of all tick sources are stopped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.doneOnce.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
		l.mu.Lock()
		work := l.pending
		l.pending = nil
		l.mu.Unlock()
		for _, fn := range work {
			fn()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// Every implements Scheduler.
func (l *Loop) Every(interval time.Duration, fn func() bool) (cancel func()) {
	var (
		stopped atomic.Bool
		done    = make(chan struct{})
		once    sync.Once
	)
	cancel = func() {
		stopped.Store(true)
		once.Do(func() { close(done) })
	}
	if interval <= 0 {
		var idle func()
		idle = func() {
			if stopped.Load() {
				return
			}
			if !fn() {
				cancel()
				return
			}
			l.Do(idle)
		}
		l.Do(idle)
		return cancel
	}

	ticker := time.NewTicker(interval)
	// busy prevents ticks from piling up behind a slow frame.
	var busy atomic.Bool
	tick := func() {
		defer busy.Store(false)
		if stopped.Load() {
			return
		}
		if !fn() {
			cancel()
		}
	}
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-l.done:
				return
			case <-ticker.C:
				if busy.CompareAndSwap(false, true) {
					l.Do(tick)
				}
			}
		}
	}()
	return cancel
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) (cancel func()) {
	var stopped atomic.Bool
	timer := time.AfterFunc(d, func() {
		l.Do(func() {
			if stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	return func() {
		stopped.Store(true)
		timer.Stop()
	}
}
