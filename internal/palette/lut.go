// SPDX-License-Identifier: MIT
package palette

import (
	"fmt"
	"image"

	"spectro/pkg/argb"
)

// DefaultLUTSize is the number of entries used when none is configured.
const DefaultLUTSize = 1024

// LUT is a gradient sampled at evenly spaced intensities. Lookup is a clamp
// and an index, so the renderer never walks gradient stops per pixel.
type LUT struct {
	colors []argb.Color
	scale  float32
}

// NewLUT samples g at size points from 0 to 1 inclusive.
func NewLUT(g Gradient, size int) (*LUT, error) {
	if size < 2 {
		return nil, fmt.Errorf("lut size must be at least 2, got %d", size)
	}
	colors := make([]argb.Color, size)
	last := float32(size - 1)
	for i := range colors {
		colors[i] = g.At(float32(i) / last)
	}
	return &LUT{colors: colors, scale: last}, nil
}

// Lookup returns the entry nearest to v. v is clamped to [0,1] and NaN
// reads as 0.
func (l *LUT) Lookup(v float32) argb.Color {
	if !(v > 0) {
		return l.colors[0]
	}
	if v >= 1 {
		return l.colors[len(l.colors)-1]
	}
	return l.colors[int(v*l.scale+0.5)]
}

// Len returns the number of entries.
func (l *LUT) Len() int { return len(l.colors) }

// At returns entry i.
func (l *LUT) At(i int) argb.Color { return l.colors[i] }

// Strip renders g left to right as a width x height image, for previews.
func Strip(g Gradient, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	den := float32(max(width-1, 1))
	for x := range width {
		c := g.At(float32(x) / den).NRGBA()
		for y := range height {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
