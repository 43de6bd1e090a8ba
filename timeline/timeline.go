// Package timeline provides a frame-clocked progress driver with easing,
// looping, delays and named markers.
//
// A Timeline is not safe for concurrent use. All methods must be called
// from the goroutine that runs its Scheduler's callbacks; when the
// Scheduler is a Loop, other goroutines post calls with Loop.Do.
package timeline

import (
	"errors"
	"log/slog"
	"math"
	"time"
)

// Direction is the direction of travel of a timeline's progress.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}

// DefaultFPS is the tick rate requested by a new Timeline.
const DefaultFPS = 30

var (
	ErrOutOfRange      = errors.New("progress out of range")
	ErrDuplicateMarker = errors.New("duplicate marker name")
	ErrInvalidFPS      = errors.New("fps must be positive")
)

// Timeline drives a normalised progress value from 0 to 1, or 1 to 0 when
// running backward, over its duration.
type Timeline struct {
	duration  time.Duration
	fps       int
	direction Direction
	loop      bool
	enabled   bool

	delay        time.Duration
	delayElapsed bool

	easing     Easing
	easingFunc func(float64) float64

	// progress is the linear progress. It may transiently
	// lie outside [0, 1] so that loop overshoot is kept.
	progress float64

	sched       Scheduler
	clock       Clock
	log         *slog.Logger
	cancelTicks func()
	cancelDelay func()
	last        time.Time
	elapsed     time.Duration

	markers []Marker
	next    int

	onStarted  []func()
	onPaused   []func()
	onFinished []func()
	onLoop     []func()
	onFrame    []func(progress float64)
	onMarker   []func(name string, progress float64)
}

// New returns a stopped Timeline of the given duration delivering ticks
// through s.
func New(duration time.Duration, s Scheduler) *Timeline {
	t := new(Timeline)
	t.duration = max(duration, 0)
	t.fps = DefaultFPS
	t.enabled = true
	t.sched = s
	t.clock = SystemClock{}
	t.log = slog.Default()
	t.last = t.clock.Now()
	return t
}

// SetClock sets the time source used to measure elapsed time.
func (t *Timeline) SetClock(c Clock) {
	t.clock = c
	t.last = c.Now()
}

// SetLogger sets the timeline's logger.
func (t *Timeline) SetLogger(log *slog.Logger) {
	t.log = log
}

// OnStarted registers fn to be called when the timeline is started.
func (t *Timeline) OnStarted(fn func()) { t.onStarted = append(t.onStarted, fn) }

// OnPaused registers fn to be called when the timeline is paused.
func (t *Timeline) OnPaused(fn func()) { t.onPaused = append(t.onPaused, fn) }

// OnFinished registers fn to be called when a non-looping timeline
// reaches its end.
func (t *Timeline) OnFinished(fn func()) { t.onFinished = append(t.onFinished, fn) }

// OnLoop registers fn to be called when a looping timeline wraps to the
// start of a new pass.
func (t *Timeline) OnLoop(fn func()) { t.onLoop = append(t.onLoop, fn) }

// OnFrame registers fn to be called on each tick with the eased progress.
func (t *Timeline) OnFrame(fn func(progress float64)) { t.onFrame = append(t.onFrame, fn) }

// OnMarker registers fn to be called when playback crosses a marker.
func (t *Timeline) OnMarker(fn func(name string, progress float64)) {
	t.onMarker = append(t.onMarker, fn)
}

// Start starts or resumes tick delivery. If a delay is set and has not
// yet elapsed, ticks begin once it has. Starting a running timeline has
// no effect.
func (t *Timeline) Start() {
	if t.IsRunning() {
		return
	}
	if t.delay > 0 && !t.delayElapsed {
		t.cancelDelay = t.sched.After(t.delay, func() {
			t.cancelDelay = nil
			t.delayElapsed = true
			t.schedule()
		})
	} else {
		t.schedule()
	}
	t.log.Debug("timeline started", "progress", t.Progress(), "direction", t.direction, "delay", t.delay)
	emit(t.onStarted)
}

func (t *Timeline) schedule() {
	interval := time.Second / time.Duration(t.fps)
	if !t.enabled {
		interval = 0
	}
	t.last = t.clock.Now()
	t.cancelTicks = t.sched.Every(interval, t.RunFrame)
}

// Pause stops tick delivery, keeping the current progress so that a
// later Start resumes from the same point.
func (t *Timeline) Pause() {
	switch {
	case t.cancelTicks != nil:
		t.stopTicks()
		t.elapsed += t.clock.Now().Sub(t.last)
	case t.cancelDelay != nil:
		t.cancelDelay()
		t.cancelDelay = nil
	default:
		return
	}
	t.log.Debug("timeline paused", "progress", t.Progress())
	emit(t.onPaused)
}

// Stop pauses the timeline and returns it to the start point for its
// direction. Any delay is applied again on the next Start.
func (t *Timeline) Stop() {
	t.Pause()
	t.delayElapsed = false
	t.Rewind()
}

// Rewind returns the timeline to 0, or to 1 when running backward,
// without stopping it.
func (t *Timeline) Rewind() {
	if t.direction == Backward {
		t.progress = 1
	} else {
		t.progress = 0
	}
	t.resetCursor()
	t.elapsed = 0
	t.last = t.clock.Now()
}

// Advance moves progress to p without reporting markers between the
// current position and p. It has no effect unless p is ahead of the
// current progress in the direction of travel.
func (t *Timeline) Advance(p float64) {
	p = clamp(p)
	cur := t.Progress()
	if t.direction == Forward && p <= cur || t.direction == Backward && p >= cur {
		return
	}
	t.progress = p
	t.seekCursor(p)
}

// Skip advances progress by delta in the direction of travel.
func (t *Timeline) Skip(delta float64) {
	if !(delta > 0) {
		return
	}
	if t.direction == Backward {
		t.Advance(t.Progress() - delta)
	} else {
		t.Advance(t.Progress() + delta)
	}
}

// SetProgress moves progress to p in either direction without
// reporting markers.
func (t *Timeline) SetProgress(p float64) {
	t.progress = clamp(p)
	t.seekCursor(t.progress)
}

// Progress returns the current linear progress.
func (t *Timeline) Progress() float64 {
	return clamp(t.progress)
}

// RunFrame advances the timeline by the time elapsed since the last tick
// and notifies listeners. It returns false when the timeline has finished
// and no further ticks should be delivered.
func (t *Timeline) RunFrame() bool {
	now := t.clock.Now()
	elapsed := t.elapsed + now.Sub(t.last)
	t.elapsed = 0
	t.last = now

	if !t.enabled || t.duration <= 0 {
		t.progress = t.end()
	} else {
		delta := float64(elapsed) / float64(t.duration)
		if t.direction == Backward {
			t.progress -= delta
		} else {
			t.progress += delta
		}
	}
	linear := clamp(t.progress)
	progress := clamp(t.ease(linear))
	for _, fn := range t.onFrame {
		fn(progress)
	}
	t.fireMarkers(linear)

	if !t.atEnd() {
		return true
	}
	if !t.loop {
		t.stopTicks()
		t.log.Debug("timeline finished", "direction", t.direction)
		emit(t.onFinished)
		return false
	}
	t.progress -= math.Floor(t.progress)
	if t.direction == Backward && t.progress == 0 {
		t.progress = 1
	}
	t.resetCursor()
	emit(t.onLoop)
	return true
}

func (t *Timeline) stopTicks() {
	if t.cancelTicks != nil {
		t.cancelTicks()
		t.cancelTicks = nil
	}
}

// end returns the terminal progress for the current direction.
func (t *Timeline) end() float64 {
	if t.direction == Backward {
		return 0
	}
	return 1
}

func (t *Timeline) atEnd() bool {
	if t.direction == Backward {
		return t.progress <= 0
	}
	return t.progress >= 1
}

func (t *Timeline) ease(p float64) float64 {
	if t.easingFunc != nil {
		return t.easingFunc(p)
	}
	return t.easing.Apply(p)
}

// IsRunning returns whether ticks are being delivered or a start delay
// is pending.
func (t *Timeline) IsRunning() bool {
	return t.cancelTicks != nil || t.cancelDelay != nil
}

// FPS returns the requested tick rate.
func (t *Timeline) FPS() int { return t.fps }

// SetFPS sets the requested tick rate, rescheduling ticks if the timeline
// is running.
func (t *Timeline) SetFPS(fps int) error {
	if fps <= 0 {
		return ErrInvalidFPS
	}
	t.fps = fps
	t.reschedule()
	return nil
}

func (t *Timeline) reschedule() {
	if t.cancelTicks == nil {
		return
	}
	t.stopTicks()
	t.elapsed += t.clock.Now().Sub(t.last)
	t.schedule()
}

// Duration returns the length of one pass.
func (t *Timeline) Duration() time.Duration { return t.duration }

// SetDuration sets the length of one pass.
func (t *Timeline) SetDuration(d time.Duration) { t.duration = max(d, 0) }

// Delay returns the wait before ticks first advance progress.
func (t *Timeline) Delay() time.Duration { return t.delay }

// SetDelay sets the wait applied when the timeline is next started
// from rest.
func (t *Timeline) SetDelay(d time.Duration) {
	t.delay = max(d, 0)
	t.delayElapsed = false
}

// Loop returns whether the timeline loops.
func (t *Timeline) Loop() bool { return t.loop }

// SetLoop sets whether the timeline restarts when it reaches its end.
func (t *Timeline) SetLoop(loop bool) { t.loop = loop }

// Direction returns the direction of travel.
func (t *Timeline) Direction() Direction { return t.direction }

// SetDirection sets the direction of travel. Markers already behind the
// current progress in the new direction are not reported.
func (t *Timeline) SetDirection(d Direction) {
	if d == t.direction {
		return
	}
	t.direction = d
	t.seekCursor(t.Progress())
}

// Easing returns the easing kind. The kind is not applied while an
// easing function set with SetEasingFunc is in place.
func (t *Timeline) Easing() Easing { return t.easing }

// EasingFunc returns the custom easing function, or nil if the easing
// kind is in effect.
func (t *Timeline) EasingFunc() func(float64) float64 { return t.easingFunc }

// SetEasing sets the easing kind applied to emitted progress.
func (t *Timeline) SetEasing(e Easing) { t.easing = e }

// SetEasingFunc sets a custom easing function overriding the easing
// kind. A nil fn removes the override.
func (t *Timeline) SetEasingFunc(fn func(float64) float64) { t.easingFunc = fn }

// AnimationsEnabled returns whether ticks advance progress over time.
func (t *Timeline) AnimationsEnabled() bool { return t.enabled }

// SetAnimationsEnabled sets whether ticks advance progress over time.
// When disabled, each tick jumps to the end and ticks are requested at
// idle priority.
func (t *Timeline) SetAnimationsEnabled(enabled bool) {
	if enabled == t.enabled {
		return
	}
	t.enabled = enabled
	t.reschedule()
}

func emit(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
