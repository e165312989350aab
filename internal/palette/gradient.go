// SPDX-License-Identifier: MIT
//
// Package palette maps normalized intensities to packed ARGB colors through
// multi-stop gradients. Gradients are built and validated once on the cold
// path; the renderer only touches the precomputed LUT.
package palette

import (
	"errors"
	"fmt"
	"slices"

	"spectro/pkg/argb"
)

var (
	ErrTooFewStops    = errors.New("gradient needs at least two stops")
	ErrStopOutOfRange = errors.New("stop offset out of range [0,1]")
	ErrStopOutOfOrder = errors.New("stop offsets must be strictly increasing")
	ErrUnknownFormat  = errors.New("unknown gradient format")
)

// Stop pins a color to an offset along the gradient.
type Stop struct {
	Offset float32
	Color  argb.Channels
}

// Gradient maps an intensity to a color.
type Gradient interface {
	// At returns the color for intensity v, nominally in [0,1].
	At(v float32) argb.Color
	// Stops returns a copy of the gradient's stops in offset order.
	Stops() []Stop
	// String returns the serialized form accepted by Parse.
	String() string
}

// StartEnd is the two-stop gradient from Start at 0 to End at 1. It skips
// the stop search entirely, and v is passed to the kernel unclamped.
type StartEnd struct {
	Start, End argb.Channels
}

func (g StartEnd) At(v float32) argb.Color {
	return argb.Lerp(g.Start, g.End, v)
}

func (g StartEnd) Stops() []Stop {
	return []Stop{{Offset: 0, Color: g.Start}, {Offset: 1, Color: g.End}}
}

func (g StartEnd) String() string { return Format(g) }

// Linear interpolates between any number of stops.
type Linear struct {
	stops []Stop
}

// NewLinear validates stops and returns a Linear gradient over a copy of
// them. There must be at least two, every offset must lie in [0,1] and the
// offsets must be strictly increasing.
func NewLinear(stops []Stop) (*Linear, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewStops, len(stops))
	}
	for i, s := range stops {
		if !(s.Offset >= 0 && s.Offset <= 1) {
			return nil, fmt.Errorf("%w: stop %d at %g", ErrStopOutOfRange, i, s.Offset)
		}
		if i > 0 && s.Offset <= stops[i-1].Offset {
			return nil, fmt.Errorf("%w: stop %d at %g follows %g", ErrStopOutOfOrder, i, s.Offset, stops[i-1].Offset)
		}
	}
	return &Linear{stops: slices.Clone(stops)}, nil
}

// At clamps v to [0,1], finds the stops either side of it and blends
// between them. Below the first stop it returns the first color, above the
// last stop the last color.
func (g *Linear) At(v float32) argb.Color {
	if !(v > 0) {
		v = 0
	} else if v > 1 {
		v = 1
	}

	first, last := g.stops[0], g.stops[len(g.stops)-1]
	if v <= first.Offset {
		return first.Color.Pack()
	}
	if v >= last.Offset {
		return last.Color.Pack()
	}

	i := 1
	for g.stops[i].Offset < v {
		i++
	}
	start, end := g.stops[i-1], g.stops[i]
	t := (v - start.Offset) / (end.Offset - start.Offset)
	return argb.Lerp(start.Color, end.Color, t)
}

func (g *Linear) Stops() []Stop { return slices.Clone(g.stops) }

func (g *Linear) String() string { return Format(g) }

// FromStops picks the cheapest Gradient for stops: StartEnd for exactly two
// stops at 0 and 1, Linear otherwise.
func FromStops(stops []Stop) (Gradient, error) {
	if len(stops) == 2 && stops[0].Offset == 0 && stops[1].Offset == 1 {
		return StartEnd{Start: stops[0].Color, End: stops[1].Color}, nil
	}
	return NewLinear(stops)
}

// Equal reports whether a and b have the same stops.
func Equal(a, b Gradient) bool {
	return slices.Equal(a.Stops(), b.Stops())
}
