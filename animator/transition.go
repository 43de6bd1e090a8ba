package animator

import (
	"log/slog"
	"reflect"

	"github.com/matt-g-everett/ledtween/timeline"
)

// Binding animates one property from its value when the binding is
// first evaluated to To.
type Binding struct {
	Property string
	To       any

	// Interpolate, if not nil, is used in place of the registered
	// interpolation for values that are not numbers.
	Interpolate Interpolator

	from     any
	captured bool
	warned   bool
}

// Bind returns a Binding of property to the value to.
func Bind(property string, to any) Binding {
	return Binding{Property: property, To: to}
}

// BindFunc returns a Binding of property to the value to that is
// interpolated with fn.
func BindFunc(property string, to any, fn Interpolator) Binding {
	return Binding{Property: property, To: to, Interpolate: fn}
}

// Transition applies a set of bindings over a sub-range of its
// animator's timeline.
type Transition struct {
	from, to float64
	easing   timeline.Easing
	target   Target
	bindings []Binding
	seq      int
}

// Range returns the window of timeline progress covered by t.
func (t *Transition) Range() (from, to float64) {
	return t.from, t.to
}

// Target returns the animated target.
func (t *Transition) Target() Target {
	return t.target
}

// local maps timeline progress into the transition's window.
func (t *Transition) local(p float64) float64 {
	if t.to == t.from {
		if p >= t.to {
			return 1
		}
		return 0
	}
	return clamp((p - t.from) / (t.to - t.from))
}

// entered returns whether playback in dir has reached the transition.
// An empty window is entered on reaching its position.
func (t *Transition) entered(p float64, dir timeline.Direction) bool {
	if t.from == t.to {
		if dir == timeline.Backward {
			return p <= t.from
		}
		return p >= t.to
	}
	if dir == timeline.Backward {
		return p < t.to
	}
	return p > t.from
}

// passed returns whether playback in dir has reached the end of the
// transition.
func (t *Transition) passed(p float64, dir timeline.Direction) bool {
	if dir == timeline.Backward {
		return p <= t.from
	}
	return p >= t.to
}

// behind returns whether the whole transition lies behind p in dir.
func (t *Transition) behind(p float64, dir timeline.Direction) bool {
	if dir == timeline.Backward {
		return t.from > p
	}
	return t.to < p
}

// apply writes the interpolated value of each binding at timeline
// progress p. Failures are logged and only affect the failing binding.
func (t *Transition) apply(p float64, acc Accessor, reg *Registry, log *slog.Logger) {
	progress := t.easing.Apply(t.local(p))
	for i := range t.bindings {
		b := &t.bindings[i]
		if !b.captured {
			v, err := acc.Get(t.target, b.Property)
			if err != nil {
				log.Warn("failed to read property", "property", b.Property, "error", err)
				continue
			}
			if reflect.TypeOf(v) != reflect.TypeOf(b.To) {
				log.Warn("property type changed", "property", b.Property,
					"type", reflect.TypeOf(v), "want", reflect.TypeOf(b.To))
				continue
			}
			b.from = v
			b.captured = true
		}
		v, ok := reg.interpolate(b, progress)
		if !ok {
			if !b.warned {
				log.Warn("property type not handled", "property", b.Property, "type", reflect.TypeOf(b.To))
				b.warned = true
			}
			continue
		}
		err := acc.Set(t.target, b.Property, v)
		if err != nil {
			log.Warn("failed to set property", "property", b.Property, "error", err)
		}
	}
}

func clamp(p float64) float64 {
	return min(max(p, 0), 1)
}
