package timeline

import (
	"math"
	"testing"
)

func TestEasingEndpoints(t *testing.T) {
	for _, e := range []Easing{Linear, Sinusoidal, Exponential, EaseInEaseOut} {
		if got := e.Apply(0); got != 0 {
			t.Errorf("%v(0) = %v, want 0", e, got)
		}
		if got := e.Apply(1); got != 1 {
			t.Errorf("%v(1) = %v, want 1", e, got)
		}
	}
	for _, e := range []Easing{InQuad, OutQuad, InOutQuad, InCubic, OutCubic, InSine, InOutSine, OutBack} {
		if got := e.Apply(0); math.Abs(got) > 1e-12 {
			t.Errorf("%v(0) = %v, want 0", e, got)
		}
		if got := e.Apply(1); math.Abs(got-1) > 1e-12 {
			t.Errorf("%v(1) = %v, want 1", e, got)
		}
	}
}

func TestEasingValues(t *testing.T) {
	for _, test := range []struct {
		easing Easing
		in     float64
		want   float64
	}{
		{easing: Linear, in: 0.3, want: 0.3},
		{easing: Sinusoidal, in: 0.5, want: math.Sin(math.Pi / 4)},
		{easing: Exponential, in: 0.5, want: 0.25},
		{easing: EaseInEaseOut, in: 0.25, want: 0.0625},
		{easing: EaseInEaseOut, in: 0.5, want: 0.5},
		{easing: EaseInEaseOut, in: 0.75, want: 0.9375},
	} {
		if got := test.easing.Apply(test.in); math.Abs(got-test.want) > 1e-12 {
			t.Errorf("%v(%v) = %v, want %v", test.easing, test.in, got, test.want)
		}
	}
}

func TestEaseInEaseOutContinuous(t *testing.T) {
	const eps = 1e-9
	left := EaseInEaseOut.Apply(0.5 - eps)
	right := EaseInEaseOut.Apply(0.5)
	if math.Abs(left-right) > 1e-6 {
		t.Errorf("discontinuity at 0.5: left=%v right=%v", left, right)
	}
}

func TestParseEasing(t *testing.T) {
	for e := Linear; e <= OutBack; e++ {
		got, err := ParseEasing(e.String())
		if err != nil {
			t.Errorf("unexpected error parsing %q: %v", e, err)
			continue
		}
		if got != e {
			t.Errorf("unexpected easing for %q: got:%v want:%v", e, got, e)
		}
	}
	if got, err := ParseEasing(""); err != nil || got != Linear {
		t.Errorf("unexpected result for empty name: got:%v err:%v", got, err)
	}
	if _, err := ParseEasing("wobble"); err == nil {
		t.Error("expected error for unknown easing")
	}
}
