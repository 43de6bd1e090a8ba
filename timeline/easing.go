package timeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/fogleman/ease"
)

// An Easing shapes linear progress before it is emitted.
type Easing int

const (
	Linear Easing = iota
	Sinusoidal
	Exponential
	EaseInEaseOut

	InQuad
	OutQuad
	InOutQuad
	InCubic
	OutCubic
	InSine
	InOutSine
	OutBounce
	OutElastic
	OutBack
)

var easingNames = [...]string{
	Linear:        "linear",
	Sinusoidal:    "sinusoidal",
	Exponential:   "exponential",
	EaseInEaseOut: "ease-in-ease-out",
	InQuad:        "in-quad",
	OutQuad:       "out-quad",
	InOutQuad:     "in-out-quad",
	InCubic:       "in-cubic",
	OutCubic:      "out-cubic",
	InSine:        "in-sine",
	InOutSine:     "in-out-sine",
	OutBounce:     "out-bounce",
	OutElastic:    "out-elastic",
	OutBack:       "out-back",
}

func (e Easing) String() string {
	if e < 0 || int(e) >= len(easingNames) {
		return fmt.Sprintf("Easing(%d)", int(e))
	}
	return easingNames[e]
}

// ParseEasing returns the Easing with the given name. The empty
// string is linear.
func ParseEasing(name string) (Easing, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Linear, nil
	}
	for e, n := range easingNames {
		if n == name {
			return Easing(e), nil
		}
	}
	return Linear, fmt.Errorf("unknown easing: %q", name)
}

// Func returns the progress function for e. Unknown kinds are linear.
func (e Easing) Func() func(float64) float64 {
	switch e {
	case Sinusoidal:
		return sinusoidal
	case Exponential:
		return exponential
	case EaseInEaseOut:
		return easeInEaseOut
	case InQuad:
		return ease.InQuad
	case OutQuad:
		return ease.OutQuad
	case InOutQuad:
		return ease.InOutQuad
	case InCubic:
		return ease.InCubic
	case OutCubic:
		return ease.OutCubic
	case InSine:
		return ease.InSine
	case InOutSine:
		return ease.InOutSine
	case OutBounce:
		return ease.OutBounce
	case OutElastic:
		return ease.OutElastic
	case OutBack:
		return ease.OutBack
	default:
		return ease.Linear
	}
}

// Apply returns the eased value of the linear progress p.
func (e Easing) Apply(p float64) float64 {
	return e.Func()(p)
}

func sinusoidal(p float64) float64 {
	return math.Sin(p * math.Pi / 2)
}

func exponential(p float64) float64 {
	return p * p
}

func easeInEaseOut(p float64) float64 {
	p *= 2
	if p < 1 {
		return p * p * p / 2
	}
	p -= 2
	return (p*p*p + 2) / 2
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
