// SPDX-License-Identifier: MIT
//
// Package argb packs normalized channel intensities into 32-bit ARGB pixels
// and blends between two colors. It is the per-pixel kernel of the heat-map
// palette, so every function here is pure, allocation free and safe to call
// from any number of goroutines.
//
// Packed layout, most significant byte first:
//
//	 31      24 23      16 15       8 7        0
//	+----------+----------+----------+----------+
//	|  alpha   |   red    |  green   |   blue   |
//	+----------+----------+----------+----------+
//
// Interpolation is linear in un-premultiplied ARGB space. It is not gamma
// correct and is not meant to be.
package argb

import (
	"fmt"
	"image/color"
)

// Color is a packed 0xAARRGGBB pixel.
type Color uint32

// Common colors.
const (
	Transparent Color = 0x00000000
	Black       Color = 0xFF000000
	White       Color = 0xFFFFFFFF
	Red         Color = 0xFFFF0000
	Green       Color = 0xFF00FF00
	Blue        Color = 0xFF0000FF
)

// lane scales an intensity by 255, truncates toward zero and keeps the low
// byte. Values outside [0,1] wrap inside their own lane. NaN and Inf yield
// whatever the platform's float to int conversion produces, masked to a byte.
func lane(v float32) uint32 {
	return uint32(int32(v*255)) & 0xFF
}

// laneClamped is lane with the scaled value clamped to [0,255] before
// truncation.
func laneClamped(v float32) uint32 {
	s := v * 255
	if s <= 0 || s != s {
		return 0
	}
	if s >= 255 {
		return 255
	}
	return uint32(s)
}

// Pack builds a Color from four intensities nominally in [0,1]. Each
// channel is scaled by 255 and truncated, so 0.5 becomes 0x7F.
func Pack(a, r, g, b float32) Color {
	return Color(lane(a)<<24 | lane(r)<<16 | lane(g)<<8 | lane(b))
}

// PackClamped is Pack with saturation instead of lane wrap-around for
// intensities outside [0,1].
func PackClamped(a, r, g, b float32) Color {
	return Color(laneClamped(a)<<24 | laneClamped(r)<<16 | laneClamped(g)<<8 | laneClamped(b))
}

// PackBytes builds a Color from 8-bit channels.
func PackBytes(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Interpolate blends from the start color (t = 0) to the end color (t = 1)
// per channel as start + (end-start)*t and packs the result. t is not
// clamped, values outside [0,1] extrapolate.
func Interpolate(a1, r1, g1, b1, a2, r2, g2, b2, t float32) Color {
	return Pack(
		a1+(a2-a1)*t,
		r1+(r2-r1)*t,
		g1+(g2-g1)*t,
		b1+(b2-b1)*t,
	)
}

// A returns the alpha byte.
func (c Color) A() uint8 { return uint8(c >> 24) }

// R returns the red byte.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green byte.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue byte.
func (c Color) B() uint8 { return uint8(c) }

// NRGBA converts to the non-premultiplied image/color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// Channels unpacks c into normalized intensities.
func (c Color) Channels() Channels {
	return Channels{
		A: float32(c.A()) / 255,
		R: float32(c.R()) / 255,
		G: float32(c.G()) / 255,
		B: float32(c.B()) / 255,
	}
}

// String formats c as #AARRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// Channels holds four normalized intensities in ARGB order.
type Channels struct {
	A, R, G, B float32
}

// Opaque returns fully opaque channels for r, g, b.
func Opaque(r, g, b float32) Channels {
	return Channels{A: 1, R: r, G: g, B: b}
}

// Pack packs c with Pack.
func (c Channels) Pack() Color {
	return Pack(c.A, c.R, c.G, c.B)
}

// Lerp interpolates between start and end with Interpolate.
func Lerp(start, end Channels, t float32) Color {
	return Interpolate(start.A, start.R, start.G, start.B, end.A, end.R, end.G, end.B, t)
}
