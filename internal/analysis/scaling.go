// SPDX-License-Identifier: MIT
//
// Package analysis maps FFT magnitudes onto the [0,1] intensity range that
// the palette consumes.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidScaler is returned for unknown scaler names or unusable
// parameters.
var ErrInvalidScaler = errors.New("invalid scaler")

// Defaults.
const (
	DefaultDBMin   float32 = -90
	DefaultDBMax   float32 = 5
	DefaultScaling float32 = 20
)

// AxisScale describes the value range a scaler's Raw output covers, for
// drawing a legend.
type AxisScale struct {
	Min, Max, Step float64
}

// Scaler maps a linear magnitude to an intensity.
type Scaler interface {
	// Scale returns an intensity in [0,1].
	Scale(v float32) float32
	// Raw returns the unclamped value in the scaler's own unit.
	Raw(v float32) float32
	Axis() AxisScale
}

// Kind selects a Scaler implementation.
type Kind int

const (
	KindLinear Kind = iota
	KindDecibel
	KindExaggerated
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindDecibel:
		return "decibel"
	case KindExaggerated:
		return "exaggerated"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a case-insensitive name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return KindLinear, nil
	case "decibel", "db":
		return KindDecibel, nil
	case "exaggerated":
		return KindExaggerated, nil
	default:
		return KindDecibel, fmt.Errorf("%w: unknown name %q", ErrInvalidScaler, name)
	}
}

// Params carries the tunables of every scaler kind. Each kind reads only
// the fields it needs.
type Params struct {
	Scaling float32 // linear and exaggerated
	DBMin   float32 // decibel
	DBMax   float32 // decibel
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{Scaling: DefaultScaling, DBMin: DefaultDBMin, DBMax: DefaultDBMax}
}

// NewScaler builds the Scaler for kind.
func NewScaler(kind Kind, p Params) (Scaler, error) {
	switch kind {
	case KindLinear:
		return Linear{Scaling: p.Scaling}, nil
	case KindDecibel:
		d, err := NewDecibel(p.DBMin, p.DBMax)
		if err != nil {
			return nil, err
		}
		return d, nil
	case KindExaggerated:
		return Exaggerated{Scaling: p.Scaling}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidScaler, kind)
	}
}

// ParseScaler is NewScaler keyed by name.
func ParseScaler(name string, p Params) (Scaler, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return NewScaler(kind, p)
}

// clamp limits v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float32) float32 {
	if !(v > lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Linear multiplies by a constant factor.
type Linear struct {
	Scaling float32
}

func (l Linear) Scale(v float32) float32 { return clamp(v*l.Scaling, 0, 1) }
func (l Linear) Raw(v float32) float32   { return v * l.Scaling }
func (l Linear) Axis() AxisScale         { return AxisScale{Min: 0, Max: 1, Step: 0.1} }

// Decibel maps power in decibels between Min and Max onto [0,1].
type Decibel struct {
	Min, Max float32
	span     float32
}

// NewDecibel returns a Decibel scaler for the range [lo, hi] dB.
func NewDecibel(lo, hi float32) (Decibel, error) {
	if !(hi > lo) {
		return Decibel{}, fmt.Errorf("%w: decibel range [%g, %g] is empty", ErrInvalidScaler, lo, hi)
	}
	return Decibel{Min: lo, Max: hi, span: hi - lo}, nil
}

func (d Decibel) Scale(v float32) float32 {
	return clamp(d.Raw(v)-d.Min, 0, d.span) / d.span
}

func (d Decibel) Raw(v float32) float32 {
	return float32(10 * math.Log10(float64(v)))
}

func (d Decibel) Axis() AxisScale {
	return AxisScale{Min: float64(d.Min), Max: float64(d.Max), Step: 10}
}

// Exaggerated boosts quiet magnitudes with a logarithmic knee so faint
// partials stay visible.
type Exaggerated struct {
	Scaling float32
}

func (e Exaggerated) Scale(v float32) float32 {
	knee := float32(1 - math.Log(float64(v)+0.2) - 0.813)
	return min(v*(e.Scaling*knee+1), 1)
}

func (e Exaggerated) Raw(v float32) float32 { return e.Scale(v) }
func (e Exaggerated) Axis() AxisScale       { return AxisScale{Min: 0, Max: 1, Step: 0.1} }
