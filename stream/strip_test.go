package stream

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledtween/animator"
)

var (
	black = colorful.Color{}
	white = colorful.Color{R: 1, G: 1, B: 1}
	grey  = colorful.Color{R: 0.5, G: 0.5, B: 0.5}
)

func TestStripProperties(t *testing.T) {
	s := NewStrip(10)
	red := colorful.Color{R: 1}
	sets := []struct {
		name string
		v    any
	}{
		{Background, red},
		{Foreground, grey},
		{Brightness, 0.25},
		{Head, 4},
		{Width, 3},
	}
	for _, set := range sets {
		if err := s.SetProperty(set.name, set.v); err != nil {
			t.Fatalf("unexpected error setting %s: %v", set.name, err)
		}
		got, err := s.Property(set.name)
		if err != nil {
			t.Fatalf("unexpected error getting %s: %v", set.name, err)
		}
		if !cmp.Equal(set.v, got) {
			t.Errorf("unexpected %s: got:%v want:%v", set.name, got, set.v)
		}
	}

	if err := s.SetProperty(Head, 1.5); !errors.Is(err, animator.ErrTypeMismatch) {
		t.Errorf("unexpected error for wrong type: got:%v want:%v", err, animator.ErrTypeMismatch)
	}
	if _, err := s.Property("speed"); !errors.Is(err, animator.ErrNoProperty) {
		t.Errorf("unexpected error for unknown property: got:%v want:%v", err, animator.ErrNoProperty)
	}
	if err := s.SetProperty("speed", 1); !errors.Is(err, animator.ErrNoProperty) {
		t.Errorf("unexpected error for unknown property: got:%v want:%v", err, animator.ErrNoProperty)
	}

	s.SetProperty(Brightness, 3.0)
	if s.brightness != 1 {
		t.Errorf("brightness not clamped: %v", s.brightness)
	}
}

func TestParseValue(t *testing.T) {
	s := NewStrip(10)
	tests := []struct {
		name    string
		prop    string
		v       any
		want    any
		wantErr bool
	}{
		{name: "hex colour", prop: Foreground, v: "#ff0000", want: colorful.Color{R: 1}},
		{name: "bad hex", prop: Background, v: "red", wantErr: true},
		{name: "colour not string", prop: Background, v: 12, wantErr: true},
		{name: "float", prop: Brightness, v: 0.5, want: 0.5},
		{name: "int as float", prop: Brightness, v: 1, want: 1.0},
		{name: "toml int", prop: Brightness, v: int64(0), want: 0.0},
		{name: "string float", prop: Brightness, v: "0.75", want: 0.75},
		{name: "int", prop: Head, v: 12, want: 12},
		{name: "whole float", prop: Width, v: 3.0, want: 3},
		{name: "fractional int", prop: Width, v: 3.5, wantErr: true},
		{name: "unknown", prop: "speed", v: 1, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := s.ParseValue(test.prop, test.v)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if !cmp.Equal(test.want, got) {
				t.Errorf("got:%#v want:%#v", got, test.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	s := NewStrip(5)
	s.SetProperty(Head, 2)
	s.SetProperty(Width, 3)

	want := []colorful.Color{black, black, white, black, black}
	got := s.Render().Pixels
	if !cmp.Equal(want, got, cmpopts.EquateApprox(0, 1e-9)) {
		t.Errorf("unexpected frame:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}

	s.SetProperty(Brightness, 0.5)
	want = []colorful.Color{black, black, grey, black, black}
	got = s.Render().Pixels
	if !cmp.Equal(want, got, cmpopts.EquateApprox(0, 1e-9)) {
		t.Errorf("unexpected dimmed frame:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got))
	}

	// The band is clipped at the ends of the strip.
	s.SetProperty(Brightness, 1.0)
	s.SetProperty(Head, 0)
	s.SetProperty(Width, 5)
	got = s.Render().Pixels
	if len(got) != 5 {
		t.Fatalf("unexpected pixel count: %d", len(got))
	}
	if !got[0].AlmostEqualRgb(white) {
		t.Errorf("unexpected head pixel: %v", got[0].Hex())
	}
	if !got[4].AlmostEqualRgb(black) {
		t.Errorf("unexpected tail pixel: %v", got[4].Hex())
	}
}
