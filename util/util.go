// Package util holds small helpers shared by the LED host.
package util

import (
	"github.com/fogleman/ease"
)

// GenerateLut returns a symmetric look-up table of length entries that
// rises from fn(0) at both ends to fn(1) at the centre. A nil fn uses
// ease.InOutQuad.
func GenerateLut(length int, fn func(float64) float64) []float64 {
	if length <= 0 {
		return nil
	}
	if fn == nil {
		fn = ease.InOutQuad
	}
	lut := make([]float64, length)
	if length == 1 {
		lut[0] = fn(1)
		return lut
	}
	half := float64(length-1) / 2
	for i, j := 0, length-1; i <= j; i, j = i+1, j-1 {
		v := fn(float64(i) / half)
		lut[i] = v
		lut[j] = v
	}
	return lut
}
