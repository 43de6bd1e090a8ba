package stream

import (
	"encoding/binary"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxPixels is the largest pixel count a Frame can encode.
const MaxPixels = 1<<16 - 1

// Frame represents a frame of RGB pixels to display on an ledrx device.
type Frame struct {
	Pixels []colorful.Color
}

// NewFrame creates a new Frame of n black pixels.
func NewFrame(n int) *Frame {
	return &Frame{Pixels: make([]colorful.Color, n)}
}

// Fill sets every pixel to c.
func (f *Frame) Fill(c colorful.Color) {
	for i := range f.Pixels {
		f.Pixels[i] = c
	}
}

// InterpolateFrame blends f towards f2 by transitionPoint. Pixels missing
// from the shorter frame are treated as black.
func (f *Frame) InterpolateFrame(f2 *Frame, transitionPoint float64) *Frame {
	out := NewFrame(max(len(f.Pixels), len(f2.Pixels)))
	for i := range out.Pixels {
		out.Pixels[i] = pixel(f, i).BlendHcl(pixel(f2, i), transitionPoint)
	}
	return out
}

func pixel(f *Frame, i int) colorful.Color {
	if i < len(f.Pixels) {
		return f.Pixels[i]
	}
	return colorful.Color{}
}

// MarshalBinary converts a Frame into binary data: a little-endian uint16
// pixel count followed by one RGB triple per pixel.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	if len(f.Pixels) > MaxPixels {
		return nil, fmt.Errorf("frame of %d pixels exceeds %d", len(f.Pixels), MaxPixels)
	}
	data = make([]byte, 2, len(f.Pixels)*3+2)
	binary.LittleEndian.PutUint16(data, uint16(len(f.Pixels)))
	for _, p := range f.Pixels {
		r, g, b := p.Clamped().RGB255()
		data = append(data, r, g, b)
	}
	return data, nil
}
