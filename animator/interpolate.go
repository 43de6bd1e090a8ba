package animator

import (
	"image/color"
	"reflect"

	"github.com/lucasb-eyer/go-colorful"
)

// An Interpolator returns the value between from and to at the given
// eased progress. from and to always have the same dynamic type.
type Interpolator func(from, to any, progress float64) any

// Number is the set of types interpolated without a registered
// Interpolator.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Lerp returns from + (to-from)*progress. Integer results are truncated
// toward zero.
func Lerp[T Number](from, to T, progress float64) T {
	return T(float64(from) + (float64(to)-float64(from))*progress)
}

// lerpValue interpolates values of any integer or floating point kind,
// including named types. It reports false for other kinds.
func lerpValue(from, to any, progress float64) (any, bool) {
	fv := reflect.ValueOf(from)
	tv := reflect.ValueOf(to)
	if !fv.IsValid() || !tv.IsValid() || fv.Type() != tv.Type() {
		return nil, false
	}
	out := reflect.New(fv.Type()).Elem()
	switch fv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.SetInt(Lerp(fv.Int(), tv.Int(), progress))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v := float64(fv.Uint()) + (float64(tv.Uint())-float64(fv.Uint()))*progress
		out.SetUint(uint64(max(v, 0)))
	case reflect.Float32, reflect.Float64:
		out.SetFloat(Lerp(fv.Float(), tv.Float(), progress))
	default:
		return nil, false
	}
	return out.Interface(), true
}

// Registry maps value types to the Interpolator used for them.
type Registry struct {
	funcs map[reflect.Type]Interpolator
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[reflect.Type]Interpolator)}
}

// DefaultRegistry returns a Registry holding interpolators for
// colorful.Color, blended in HCL space, and color.RGBA.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterFunc(r, func(from, to colorful.Color, p float64) colorful.Color {
		return from.BlendHcl(to, p)
	})
	RegisterFunc(r, func(from, to color.RGBA, p float64) color.RGBA {
		return color.RGBA{
			R: Lerp(from.R, to.R, p),
			G: Lerp(from.G, to.G, p),
			B: Lerp(from.B, to.B, p),
			A: Lerp(from.A, to.A, p),
		}
	})
	return r
}

// Register sets the Interpolator for values of type typ. A nil fn
// removes any registration.
func (r *Registry) Register(typ reflect.Type, fn Interpolator) {
	if fn == nil {
		delete(r.funcs, typ)
		return
	}
	r.funcs[typ] = fn
}

// Lookup returns the Interpolator registered for typ.
func (r *Registry) Lookup(typ reflect.Type) (Interpolator, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.funcs[typ]
	return fn, ok
}

// RegisterFunc registers a typed interpolation function for T.
func RegisterFunc[T any](r *Registry, fn func(from, to T, progress float64) T) {
	r.Register(reflect.TypeOf((*T)(nil)).Elem(), func(from, to any, p float64) any {
		return fn(from.(T), to.(T), p)
	})
}

// interpolate resolves the value of b at progress using numeric
// interpolation, then the binding's own Interpolator, then the registry.
func (r *Registry) interpolate(b *Binding, progress float64) (any, bool) {
	if v, ok := lerpValue(b.from, b.To, progress); ok {
		return v, true
	}
	if b.Interpolate != nil {
		return b.Interpolate(b.from, b.To, progress), true
	}
	if fn, ok := r.Lookup(reflect.TypeOf(b.To)); ok {
		return fn(b.from, b.To, progress), true
	}
	return nil, false
}
