// Package animator interpolates properties of host objects over the
// progress of a timeline.
//
// A Host owns a set of animators, each driving one or more transitions.
// A transition binds a window of its animator's timeline progress to a
// list of property bindings on a target; on each frame the bindings are
// interpolated and written through the Host's Accessor.
//
// A Host is not safe for concurrent use. It must only be used from the
// goroutine running its Scheduler's callbacks.
package animator

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"time"

	"github.com/matt-g-everett/ledtween/timeline"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidRange = errors.New("invalid transition range")
	ErrTypeMismatch = errors.New("value type does not match property type")
	ErrStarted      = errors.New("animator already started")
	ErrNotStarted   = errors.New("animator not started")
)

// ID is a handle to an animator held by a Host. The zero ID is never
// valid and the IDs of removed animators are not reused.
type ID struct {
	index uint32
	gen   uint32
}

// IsZero returns whether id is the zero ID.
func (id ID) IsZero() bool { return id.gen == 0 }

func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.index, id.gen)
}

// Host is the registry of animators sharing a scheduler, clock, property
// accessor and interpolator registry.
type Host struct {
	sched    timeline.Scheduler
	clock    timeline.Clock
	access   Accessor
	registry *Registry
	log      *slog.Logger
	fps      int

	slots []slot
	free  []uint32
	live  int
}

type slot struct {
	gen uint32
	a   *Animator
}

// Option is a Host configuration option.
type Option func(*Host)

// WithClock sets the clock used by animator timelines.
func WithClock(c timeline.Clock) Option {
	return func(h *Host) { h.clock = c }
}

// WithLogger sets the Host's logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Host) { h.log = log }
}

// WithRegistry sets the interpolator registry consulted for values that
// are not numbers.
func WithRegistry(r *Registry) Option {
	return func(h *Host) { h.registry = r }
}

// WithFPS sets the tick rate requested by animator timelines.
func WithFPS(fps int) Option {
	return func(h *Host) { h.fps = fps }
}

// NewHost returns a Host delivering ticks through s and accessing
// properties with acc. If acc is nil, ObjectAccessor is used.
func NewHost(s timeline.Scheduler, acc Accessor, opts ...Option) *Host {
	if acc == nil {
		acc = ObjectAccessor{}
	}
	h := &Host{
		sched:    s,
		clock:    timeline.SystemClock{},
		access:   acc,
		registry: DefaultRegistry(),
		log:      slog.Default(),
		fps:      timeline.DefaultFPS,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Registry returns the Host's interpolator registry.
func (h *Host) Registry() *Registry { return h.registry }

// New returns the ID of a new empty animator.
func (h *Host) New() ID {
	var idx uint32
	if n := len(h.free); n != 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		idx = uint32(len(h.slots))
		h.slots = append(h.slots, slot{})
	}
	s := &h.slots[idx]
	s.gen++
	id := ID{index: idx, gen: s.gen}
	s.a = &Animator{id: id, host: h, log: h.log.With("animator", id.String())}
	h.live++
	return id
}

// Len returns the number of live animators.
func (h *Host) Len() int { return h.live }

// Animator returns the animator with the given ID.
func (h *Host) Animator(id ID) (*Animator, error) {
	if id.IsZero() || int(id.index) >= len(h.slots) {
		return nil, fmt.Errorf("animator %v: %w", id, ErrNotFound)
	}
	s := h.slots[id.index]
	if s.gen != id.gen || s.a == nil {
		return nil, fmt.Errorf("animator %v: %w", id, ErrNotFound)
	}
	return s.a, nil
}

func (h *Host) started(id ID) (*Animator, error) {
	a, err := h.Animator(id)
	if err != nil {
		return nil, err
	}
	if a.timeline == nil {
		return nil, fmt.Errorf("animator %v: %w", id, ErrNotStarted)
	}
	return a, nil
}

// AddTransition adds a transition animating the bindings on target over
// the [from, to] window of the animator's progress. Each binding's
// property must exist on target and hold a value of the same type as
// the binding's To value. The starting value of a binding is read when
// the binding is first applied.
func (h *Host) AddTransition(id ID, from, to float64, easing timeline.Easing, target Target, bindings ...Binding) (*Transition, error) {
	a, err := h.Animator(id)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(from) || math.IsNaN(to) || from < 0 || to > 1 || from > to {
		return nil, fmt.Errorf("[%v, %v]: %w", from, to, ErrInvalidRange)
	}
	for _, b := range bindings {
		v, err := h.access.Get(target, b.Property)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Property, err)
		}
		if reflect.TypeOf(v) != reflect.TypeOf(b.To) {
			return nil, fmt.Errorf("binding %q: %T to %T: %w", b.Property, v, b.To, ErrTypeMismatch)
		}
	}
	tr := &Transition{
		from:     from,
		to:       to,
		easing:   easing,
		target:   target,
		bindings: append([]Binding(nil), bindings...),
	}
	a.add(tr)
	return tr, nil
}

// RemoveTransition removes tr from the animator.
func (h *Host) RemoveTransition(id ID, tr *Transition) error {
	a, err := h.Animator(id)
	if err != nil {
		return err
	}
	if tr == nil || !a.remove(tr) {
		return fmt.Errorf("transition in animator %v: %w", id, ErrNotFound)
	}
	return nil
}

// Start creates the animator's timeline with the given duration and
// starts it. An animator can only be started once; use Resume to
// continue after Pause.
func (h *Host) Start(id ID, duration time.Duration) error {
	a, err := h.Animator(id)
	if err != nil {
		return err
	}
	if a.timeline != nil {
		return fmt.Errorf("animator %v: %w", id, ErrStarted)
	}
	tl := timeline.New(duration, h.sched)
	tl.SetClock(h.clock)
	tl.SetLogger(a.log)
	if err := tl.SetFPS(h.fps); err != nil {
		return err
	}
	tl.SetLoop(a.loop)
	tl.OnFrame(a.frame)
	tl.OnLoop(a.rewind)
	tl.OnFinished(func() { h.finish(a) })
	a.timeline = tl
	a.log.Debug("start animator", "duration", duration, "transitions", len(a.active)+len(a.finished))
	tl.Start()
	return nil
}

// Pause pauses the animator and returns its current progress.
func (h *Host) Pause(id ID) (float64, error) {
	a, err := h.started(id)
	if err != nil {
		return 0, err
	}
	a.timeline.Pause()
	return a.timeline.Progress(), nil
}

// Resume resumes a paused animator.
func (h *Host) Resume(id ID) error {
	a, err := h.started(id)
	if err != nil {
		return err
	}
	a.timeline.Start()
	return nil
}

// ResumeWithProgress moves a paused animator to progress and resumes
// it.
func (h *Host) ResumeWithProgress(id ID, progress float64) error {
	a, err := h.started(id)
	if err != nil {
		return err
	}
	a.timeline.SetProgress(progress)
	a.repartition(a.timeline.Progress())
	a.timeline.Start()
	return nil
}

// Reverse reverses the animator's direction of travel.
func (h *Host) Reverse(id ID) error {
	a, err := h.started(id)
	if err != nil {
		return err
	}
	if a.timeline.Direction() == timeline.Forward {
		a.timeline.SetDirection(timeline.Backward)
	} else {
		a.timeline.SetDirection(timeline.Forward)
	}
	a.repartition(a.timeline.Progress())
	return nil
}

// Advance moves the animator's timeline ahead to progress.
func (h *Host) Advance(id ID, progress float64) error {
	a, err := h.started(id)
	if err != nil {
		return err
	}
	a.timeline.Advance(progress)
	return nil
}

// SetLoop sets whether the animator replays its transitions when it
// reaches the end of its timeline.
func (h *Host) SetLoop(id ID, loop bool) error {
	a, err := h.Animator(id)
	if err != nil {
		return err
	}
	a.loop = loop
	if a.timeline != nil {
		a.timeline.SetLoop(loop)
	}
	return nil
}

// SetFinishedNotify sets fn to be called with the animator's ID and user
// data when it finishes, before it is removed from the Host.
func (h *Host) SetFinishedNotify(id ID, fn func(id ID, userData any)) error {
	a, err := h.Animator(id)
	if err != nil {
		return err
	}
	a.notify = fn
	return nil
}

// SetUserData attaches data to the animator. If release is not nil it
// is called with data when the data is replaced or the animator is
// removed.
func (h *Host) SetUserData(id ID, data any, release func(any)) error {
	a, err := h.Animator(id)
	if err != nil {
		return err
	}
	a.releaseUserData()
	a.userData = data
	a.release = release
	return nil
}

func (a *Animator) releaseUserData() {
	if a.release != nil {
		a.release(a.userData)
	}
	a.userData = nil
	a.release = nil
}

// Remove stops the animator and removes it from the Host without
// calling its finished notify function.
func (h *Host) Remove(id ID) error {
	a, err := h.Animator(id)
	if err != nil {
		return err
	}
	if a.timeline != nil {
		a.timeline.Pause()
	}
	h.teardown(a)
	return nil
}

func (h *Host) finish(a *Animator) {
	if !h.holds(a) {
		return
	}
	a.log.Debug("animator finished")
	if a.notify != nil {
		a.notify(a.id, a.userData)
	}
	// The notify function may have removed the animator.
	if h.holds(a) {
		h.teardown(a)
	}
}

func (h *Host) holds(a *Animator) bool {
	cur, err := h.Animator(a.id)
	return err == nil && cur == a
}

func (h *Host) teardown(a *Animator) {
	a.active = nil
	a.finished = nil
	a.releaseUserData()
	s := &h.slots[a.id.index]
	s.a = nil
	h.free = append(h.free, a.id.index)
	h.live--
}

// TweenOptions holds the optional parameters of Host.Tween.
type TweenOptions struct {
	Easing   timeline.Easing
	Loop     bool
	UserData any
	Release  func(any)
	Finished func(id ID, userData any)
}

// Tween creates an animator with a single transition over the whole
// timeline animating bindings on target, and starts it.
func (h *Host) Tween(target Target, duration time.Duration, opts TweenOptions, bindings ...Binding) (ID, error) {
	id := h.New()
	_, err := h.AddTransition(id, 0, 1, opts.Easing, target, bindings...)
	if err != nil {
		h.Remove(id)
		return ID{}, err
	}
	h.SetUserData(id, opts.UserData, opts.Release)
	h.SetFinishedNotify(id, opts.Finished)
	h.SetLoop(id, opts.Loop)
	err = h.Start(id, duration)
	if err != nil {
		h.Remove(id)
		return ID{}, err
	}
	return id, nil
}
