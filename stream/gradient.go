package stream

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledtween/animator"
)

// GradientStop is a hue at a position on a GradientTable.
type GradientStop struct {
	Hue float64 `yaml:"hue" toml:"hue"`
	Pos float64 `yaml:"pos" toml:"pos"`
}

// GradientTable stores a look-up table of colours interpolated by hue.
// Stops are ordered by ascending position.
type GradientTable []GradientStop

// Rainbow is a full hue cycle.
var Rainbow = GradientTable{
	{0.0, 0.0},
	{6.0, 0.04},   // Pink
	{87.0, 0.14},  // Red
	{88.0, 0.28},  // Orange
	{98.0, 0.42},  // Yellow
	{180.0, 0.56}, // Green
	{190.0, 0.70}, // Turquoise
	{320.0, 0.84}, // Blue
	{328.0, 0.91}, // Violet
	{360.0, 1.0},  // Pink wrap
}

// GetColor gets a colour at the specified point on the look-up table.
func (g GradientTable) GetColor(t, s, l float64) colorful.Color {
	if len(g) == 0 {
		return colorful.Hcl(0, s, l)
	}
	if t <= g[0].Pos {
		return colorful.Hcl(g[0].Hue, s, l)
	}
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			if c2.Pos == c1.Pos {
				return colorful.Hcl(c2.Hue, s, l)
			}
			h := (((t - c1.Pos) / (c2.Pos - c1.Pos)) * (c2.Hue - c1.Hue)) + c1.Hue
			return colorful.Hcl(math.Mod(h, 360), s, l)
		}
	}
	return colorful.Hcl(math.Mod(g[len(g)-1].Hue, 360), s, l)
}

// Interpolator returns a binding interpolator that walks the gradient
// from the start of the table to its end, ignoring the endpoint colours.
// It is used to sweep a colour property through every hue of the table.
func (g GradientTable) Interpolator(s, l float64) animator.Interpolator {
	return func(_, _ any, progress float64) any {
		return g.GetColor(progress, s, l)
	}
}
