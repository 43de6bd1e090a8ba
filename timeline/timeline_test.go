package timeline

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// recorder records the events emitted by a timeline.
type recorder struct {
	frames   []float64
	markers  []string
	events   []string
	started  int
	finished int
}

func newTestTimeline(d time.Duration) (*Timeline, *Manual, *recorder) {
	m := NewManual()
	tl := New(d, m)
	tl.SetClock(m.Clock)
	r := &recorder{}
	tl.OnFrame(func(p float64) { r.frames = append(r.frames, p) })
	tl.OnMarker(func(name string, _ float64) { r.markers = append(r.markers, name) })
	tl.OnStarted(func() { r.started++; r.events = append(r.events, "started") })
	tl.OnPaused(func() { r.events = append(r.events, "paused") })
	tl.OnFinished(func() { r.finished++; r.events = append(r.events, "finished") })
	tl.OnLoop(func() { r.events = append(r.events, "loop") })
	return tl, m, r
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestRunFrame(t *testing.T) {
	tl, m, r := newTestTimeline(time.Second)
	tl.Start()
	for i := 0; i < 4; i++ {
		m.Step(250 * time.Millisecond)
	}
	want := []float64{0.25, 0.5, 0.75, 1}
	if !cmp.Equal(want, r.frames, approx) {
		t.Errorf("unexpected frames:\n--- want:\n+++ got:\n%s", cmp.Diff(want, r.frames, approx))
	}
	if r.finished != 1 {
		t.Errorf("unexpected finished count: got:%d want:1", r.finished)
	}
	if tl.IsRunning() {
		t.Error("timeline still running after finishing")
	}
	if m.Tickers() != 0 {
		t.Errorf("tick source not removed: %d tickers", m.Tickers())
	}
	m.Step(250 * time.Millisecond)
	if len(r.frames) != 4 {
		t.Errorf("frame delivered after finish: %v", r.frames)
	}
}

func TestHalfway(t *testing.T) {
	tl, m, r := newTestTimeline(time.Second)
	tl.Start()
	m.Step(500 * time.Millisecond)
	if len(r.frames) != 1 || math.Abs(r.frames[0]-0.5) > 1e-9 {
		t.Errorf("unexpected frames after 500ms: %v", r.frames)
	}
}

func TestMonotonic(t *testing.T) {
	steps := []time.Duration{
		10 * time.Millisecond,
		125 * time.Millisecond,
		33 * time.Millisecond,
		200 * time.Millisecond,
		17 * time.Millisecond,
		90 * time.Millisecond,
	}
	for _, dir := range []Direction{Forward, Backward} {
		t.Run(dir.String(), func(t *testing.T) {
			tl, m, r := newTestTimeline(time.Second)
			tl.SetDirection(dir)
			tl.Rewind()
			tl.Start()
			for i := 0; tl.IsRunning() && i < 100; i++ {
				m.Step(steps[i%len(steps)])
			}
			if r.finished != 1 {
				t.Fatalf("timeline did not finish")
			}
			for i := 1; i < len(r.frames); i++ {
				prev, cur := r.frames[i-1], r.frames[i]
				if dir == Forward && !(cur > prev) || dir == Backward && !(cur < prev) {
					t.Errorf("progress not monotonic at frame %d: %v -> %v", i, prev, cur)
				}
				if cur < 0 || cur > 1 {
					t.Errorf("progress out of range at frame %d: %v", i, cur)
				}
			}
		})
	}
}

func TestMarkerOrder(t *testing.T) {
	for _, test := range []struct {
		dir  Direction
		want []string
	}{
		{dir: Forward, want: []string{"a", "b", "c"}},
		{dir: Backward, want: []string{"c", "b", "a"}},
	} {
		t.Run(test.dir.String(), func(t *testing.T) {
			tl, m, r := newTestTimeline(time.Second)
			for _, mk := range []Marker{{"b", 0.5}, {"c", 0.9}, {"a", 0.1}} {
				if err := tl.AddMarker(mk.Name, mk.Progress); err != nil {
					t.Fatalf("unexpected error adding marker: %v", err)
				}
			}
			tl.SetDirection(test.dir)
			tl.Rewind()
			tl.Start()
			for tl.IsRunning() {
				m.Step(250 * time.Millisecond)
			}
			if !cmp.Equal(test.want, r.markers) {
				t.Errorf("unexpected marker order:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, r.markers))
			}
		})
	}
}

func TestAdvanceSkipsMarkers(t *testing.T) {
	tl, m, r := newTestTimeline(time.Second)
	tl.AddMarker("middle", 0.5)
	tl.AddMarker("late", 0.95)
	tl.Start()
	m.Step(100 * time.Millisecond)
	tl.Advance(0.9)
	if got := tl.Progress(); got != 0.9 {
		t.Errorf("unexpected progress after advance: got:%v want:0.9", got)
	}
	for tl.IsRunning() {
		m.Step(50 * time.Millisecond)
	}
	want := []string{"late"}
	if !cmp.Equal(want, r.markers) {
		t.Errorf("unexpected markers:\n--- want:\n+++ got:\n%s", cmp.Diff(want, r.markers))
	}
}

func TestAdvanceNotAhead(t *testing.T) {
	tl, _, _ := newTestTimeline(time.Second)
	tl.SetProgress(0.5)
	tl.Advance(0.25)
	if got := tl.Progress(); got != 0.5 {
		t.Errorf("advance backward changed progress: got:%v want:0.5", got)
	}
	tl.SetDirection(Backward)
	tl.Advance(0.75)
	if got := tl.Progress(); got != 0.5 {
		t.Errorf("advance against direction changed progress: got:%v want:0.5", got)
	}
	tl.Advance(0.25)
	if got := tl.Progress(); got != 0.25 {
		t.Errorf("unexpected backward advance: got:%v want:0.25", got)
	}
}

func TestSkip(t *testing.T) {
	tl, _, _ := newTestTimeline(time.Second)
	tl.SetProgress(0.25)
	tl.Skip(0.5)
	if got := tl.Progress(); got != 0.75 {
		t.Errorf("unexpected progress after forward skip: got:%v want:0.75", got)
	}
	tl.SetDirection(Backward)
	tl.Skip(0.5)
	if got := tl.Progress(); got != 0.25 {
		t.Errorf("unexpected progress after backward skip: got:%v want:0.25", got)
	}
	tl.Skip(-0.1)
	if got := tl.Progress(); got != 0.25 {
		t.Errorf("negative skip changed progress: got:%v want:0.25", got)
	}
}

func TestLoop(t *testing.T) {
	tl, m, r := newTestTimeline(time.Second)
	tl.SetLoop(true)
	tl.AddMarker("m", 0.5)
	tl.Start()
	for i := 0; i < 4; i++ {
		m.Step(300 * time.Millisecond)
	}
	if got := tl.Progress(); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("overshoot not kept on wrap: got:%v want:0.2", got)
	}
	m.Step(300 * time.Millisecond)
	m.Step(300 * time.Millisecond)
	wantMarkers := []string{"m", "m"}
	if !cmp.Equal(wantMarkers, r.markers) {
		t.Errorf("unexpected markers:\n--- want:\n+++ got:\n%s", cmp.Diff(wantMarkers, r.markers))
	}
	wantEvents := []string{"started", "loop"}
	if !cmp.Equal(wantEvents, r.events) {
		t.Errorf("unexpected events:\n--- want:\n+++ got:\n%s", cmp.Diff(wantEvents, r.events))
	}
	if r.finished != 0 || !tl.IsRunning() {
		t.Error("looping timeline finished")
	}
}

func TestBackwardLoopWrap(t *testing.T) {
	tl, m, _ := newTestTimeline(time.Second)
	tl.SetLoop(true)
	tl.SetDirection(Backward)
	tl.Rewind()
	tl.Start()
	m.Step(500 * time.Millisecond)
	m.Step(500 * time.Millisecond)
	if got := tl.Progress(); got != 1 {
		t.Errorf("unexpected progress after backward wrap: got:%v want:1", got)
	}
}

func TestDelay(t *testing.T) {
	tl, m, r := newTestTimeline(time.Second)
	tl.SetDelay(200 * time.Millisecond)
	tl.Start()
	if !tl.IsRunning() {
		t.Error("timeline waiting on delay not reported running")
	}
	m.Step(100 * time.Millisecond)
	m.Step(100 * time.Millisecond)
	if len(r.frames) != 0 {
		t.Errorf("frames delivered during delay: %v", r.frames)
	}
	m.Step(500 * time.Millisecond)
	want := []float64{0.5}
	if !cmp.Equal(want, r.frames, approx) {
		t.Errorf("unexpected frames:\n--- want:\n+++ got:\n%s", cmp.Diff(want, r.frames, approx))
	}
	if r.started != 1 {
		t.Errorf("unexpected started count: got:%d want:1", r.started)
	}
}

func TestPauseDuringDelay(t *testing.T) {
	tl, m, r := newTestTimeline(time.Second)
	tl.SetDelay(200 * time.Millisecond)
	tl.Start()
	m.Step(100 * time.Millisecond)
	tl.Pause()
	m.Step(time.Second)
	if len(r.frames) != 0 || tl.IsRunning() {
		t.Errorf("paused delay still fired: frames=%v running=%t", r.frames, tl.IsRunning())
	}
	want := []string{"started", "paused"}
	if !cmp.Equal(want, r.events) {
		t.Errorf("unexpected events:\n--- want:\n+++ got:\n%s", cmp.Diff(want, r.events))
	}
}

func TestPauseResume(t *testing.T) {
	tl, m, r := newTestTimeline(time.Second)
	tl.Start()
	tl.Start()
	m.Step(250 * time.Millisecond)
	m.Clock.Add(125 * time.Millisecond)
	tl.Pause()
	tl.Pause()
	m.Clock.Add(10 * time.Second)
	m.Step(time.Second)
	tl.Start()
	m.Step(125 * time.Millisecond)

	want := []float64{0.25, 0.5}
	if !cmp.Equal(want, r.frames, approx) {
		t.Errorf("unexpected frames:\n--- want:\n+++ got:\n%s", cmp.Diff(want, r.frames, approx))
	}
	wantEvents := []string{"started", "paused", "started"}
	if !cmp.Equal(wantEvents, r.events) {
		t.Errorf("unexpected events:\n--- want:\n+++ got:\n%s", cmp.Diff(wantEvents, r.events))
	}
}

func TestStop(t *testing.T) {
	tl, m, _ := newTestTimeline(time.Second)
	tl.AddMarker("m", 0.5)
	tl.Start()
	m.Step(750 * time.Millisecond)
	tl.Stop()
	if tl.IsRunning() {
		t.Error("stopped timeline still running")
	}
	if got := tl.Progress(); got != 0 {
		t.Errorf("unexpected progress after stop: got:%v want:0", got)
	}
	var fired []string
	tl.OnMarker(func(name string, _ float64) { fired = append(fired, name) })
	tl.Start()
	m.Step(500 * time.Millisecond)
	if !cmp.Equal([]string{"m"}, fired) {
		t.Errorf("marker cursor not reset by stop: fired %v", fired)
	}
}

func TestZeroDuration(t *testing.T) {
	for _, dir := range []Direction{Forward, Backward} {
		t.Run(dir.String(), func(t *testing.T) {
			tl, m, r := newTestTimeline(0)
			tl.SetDirection(dir)
			tl.Rewind()
			tl.Start()
			m.Step(0)
			want := []float64{1}
			if dir == Backward {
				want = []float64{0}
			}
			if !cmp.Equal(want, r.frames) {
				t.Errorf("unexpected frames:\n--- want:\n+++ got:\n%s", cmp.Diff(want, r.frames))
			}
			if r.finished != 1 {
				t.Errorf("zero duration timeline did not finish")
			}
		})
	}
}

func TestAnimationsDisabled(t *testing.T) {
	tl, m, r := newTestTimeline(time.Hour)
	tl.SetAnimationsEnabled(false)
	tl.Start()
	m.Step(time.Millisecond)
	if !cmp.Equal([]float64{1}, r.frames) || r.finished != 1 {
		t.Errorf("disabled animation did not jump to end: frames=%v finished=%d", r.frames, r.finished)
	}
}

func TestEasingFunc(t *testing.T) {
	tl, m, r := newTestTimeline(time.Second)
	tl.SetEasing(Exponential)
	tl.Start()
	m.Step(500 * time.Millisecond)
	tl.SetEasingFunc(func(p float64) float64 { return 1 - p })
	if tl.Easing() != Exponential {
		t.Errorf("unexpected easing kind with custom func: got:%v want:%v", tl.Easing(), Exponential)
	}
	if tl.EasingFunc() == nil {
		t.Error("custom easing func not reported")
	}
	m.Step(250 * time.Millisecond)
	tl.SetEasingFunc(nil)
	if tl.EasingFunc() != nil {
		t.Error("custom easing func still reported after removal")
	}
	m.Step(125 * time.Millisecond)
	want := []float64{0.25, 0.25, 0.765625}
	if !cmp.Equal(want, r.frames, approx) {
		t.Errorf("unexpected frames:\n--- want:\n+++ got:\n%s", cmp.Diff(want, r.frames, approx))
	}
}

func TestSetFPS(t *testing.T) {
	tl, m, _ := newTestTimeline(time.Second)
	if err := tl.SetFPS(0); !errors.Is(err, ErrInvalidFPS) {
		t.Errorf("unexpected error for zero fps: got:%v want:%v", err, ErrInvalidFPS)
	}
	tl.Start()
	m.Step(250 * time.Millisecond)
	m.Clock.Add(250 * time.Millisecond)
	if err := tl.SetFPS(60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Tickers() != 1 {
		t.Errorf("unexpected ticker count after reschedule: got:%d want:1", m.Tickers())
	}
	m.Step(0)
	if got := tl.Progress(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("elapsed time lost on reschedule: got:%v want:0.5", got)
	}
}
