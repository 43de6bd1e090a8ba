package animator

import (
	"log/slog"
	"slices"

	"github.com/matt-g-everett/ledtween/timeline"
)

// Animator owns a timeline and the transitions it drives.
type Animator struct {
	id   ID
	host *Host
	log  *slog.Logger

	active   []*Transition
	finished []*Transition
	seq      int

	timeline *timeline.Timeline
	loop     bool

	userData any
	release  func(any)
	notify   func(ID, any)
}

// ID returns the animator's handle in its Host.
func (a *Animator) ID() ID { return a.id }

// Timeline returns the animator's timeline, or nil if it has not been
// started.
func (a *Animator) Timeline() *timeline.Timeline { return a.timeline }

// UserData returns the data attached with Host.SetUserData.
func (a *Animator) UserData() any { return a.userData }

// Active returns the transitions still to be completed in the current
// pass, in the order they were added.
func (a *Animator) Active() []*Transition { return slices.Clone(a.active) }

// Finished returns the transitions completed in the current pass.
func (a *Animator) Finished() []*Transition { return slices.Clone(a.finished) }

func (a *Animator) add(tr *Transition) {
	a.seq++
	tr.seq = a.seq
	a.active = append(a.active, tr)
}

func (a *Animator) remove(tr *Transition) bool {
	for _, bucket := range []*[]*Transition{&a.active, &a.finished} {
		if i := slices.Index(*bucket, tr); i >= 0 {
			*bucket = slices.Delete(*bucket, i, i+1)
			return true
		}
	}
	return false
}

// frame is the timeline frame listener.
func (a *Animator) frame(progress float64) {
	dir := a.timeline.Direction()
	// Later windows are applied first when running backward so that the
	// window being entered writes last.
	order := slices.Clone(a.active)
	if dir == timeline.Backward {
		slices.Reverse(order)
	}
	var done []*Transition
	for _, tr := range order {
		if !tr.entered(progress, dir) {
			continue
		}
		tr.apply(progress, a.host.access, a.host.registry, a.log)
		if tr.passed(progress, dir) {
			done = append(done, tr)
		}
	}
	for _, tr := range done {
		if i := slices.Index(a.active, tr); i >= 0 {
			a.active = slices.Delete(a.active, i, i+1)
			a.finished = append(a.finished, tr)
		}
	}
}

// rewind makes every transition active for a new pass.
func (a *Animator) rewind() {
	a.active = append(a.active, a.finished...)
	a.finished = a.finished[:0]
	sortBySeq(a.active)
}

// repartition sorts transitions into active and finished for playback
// continuing from progress in the timeline's current direction.
func (a *Animator) repartition(progress float64) {
	dir := a.timeline.Direction()
	all := append(a.active, a.finished...)
	sortBySeq(all)
	a.active, a.finished = nil, nil
	for _, tr := range all {
		if tr.behind(progress, dir) {
			a.finished = append(a.finished, tr)
		} else {
			a.active = append(a.active, tr)
		}
	}
}

func sortBySeq(trs []*Transition) {
	slices.SortFunc(trs, func(a, b *Transition) int { return a.seq - b.seq })
}
