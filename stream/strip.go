package stream

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledtween/animator"
	"github.com/matt-g-everett/ledtween/util"
)

// Strip properties.
const (
	Background = "background"
	Foreground = "foreground"
	Brightness = "brightness"
	Head       = "head"
	Width      = "width"
)

// Strip is an LED strip whose appearance is described by a few animatable
// properties: a background colour and a glowing band of the foreground
// colour, width pixels wide and centred on head.
type Strip struct {
	pixels     int
	background colorful.Color
	foreground colorful.Color
	brightness float64
	head       int
	width      int

	lut []float64
}

// NewStrip creates a dark strip of n pixels at full brightness.
func NewStrip(n int) *Strip {
	return &Strip{
		pixels:     n,
		foreground: colorful.Color{R: 1, G: 1, B: 1},
		brightness: 1,
	}
}

// Pixels returns the number of pixels on the strip.
func (s *Strip) Pixels() int { return s.pixels }

// Property implements animator.Object.
func (s *Strip) Property(name string) (any, error) {
	switch name {
	case Background:
		return s.background, nil
	case Foreground:
		return s.foreground, nil
	case Brightness:
		return s.brightness, nil
	case Head:
		return s.head, nil
	case Width:
		return s.width, nil
	}
	return nil, fmt.Errorf("strip %q: %w", name, animator.ErrNoProperty)
}

// SetProperty implements animator.Object.
func (s *Strip) SetProperty(name string, v any) error {
	var ok bool
	switch name {
	case Background:
		s.background, ok = v.(colorful.Color)
	case Foreground:
		s.foreground, ok = v.(colorful.Color)
	case Brightness:
		var b float64
		if b, ok = v.(float64); ok {
			s.brightness = min(max(b, 0), 1)
		}
	case Head:
		s.head, ok = v.(int)
	case Width:
		var w int
		if w, ok = v.(int); ok {
			s.width = max(w, 0)
		}
	default:
		return fmt.Errorf("strip %q: %w", name, animator.ErrNoProperty)
	}
	if !ok {
		return fmt.Errorf("strip %q: %T: %w", name, v, animator.ErrTypeMismatch)
	}
	return nil
}

// ParseValue converts a configuration value into the type of the named
// property. Colours are given as hex strings.
func (s *Strip) ParseValue(name string, v any) (any, error) {
	switch name {
	case Background, Foreground:
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("strip %q: colour must be a hex string, got %T", name, v)
		}
		c, err := colorful.Hex(str)
		if err != nil {
			return nil, fmt.Errorf("strip %q: %w", name, err)
		}
		return c, nil
	case Brightness:
		return toFloat(name, v)
	case Head, Width:
		f, err := toFloat(name, v)
		if err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("strip %q: %v is not a whole number", name, v)
		}
		return int(f), nil
	}
	return nil, fmt.Errorf("strip %q: %w", name, animator.ErrNoProperty)
}

func toFloat(name string, v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("strip %q: %w", name, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("strip %q: unexpected value type %T", name, v)
}

// Render paints the strip into a new Frame.
func (s *Strip) Render() *Frame {
	f := NewFrame(s.pixels)
	f.Fill(s.background)
	if len(s.lut) != s.width {
		s.lut = util.GenerateLut(s.width, nil)
	}
	start := s.head - s.width/2
	for i, v := range s.lut {
		p := start + i
		if p < 0 || p >= s.pixels {
			continue
		}
		f.Pixels[p] = s.background.BlendRgb(s.foreground, v)
	}
	if s.brightness < 1 {
		for i, c := range f.Pixels {
			f.Pixels[i] = colorful.Color{R: c.R * s.brightness, G: c.G * s.brightness, B: c.B * s.brightness}
		}
	}
	return f
}
