// SPDX-License-Identifier: MIT
//
// Package axis converts between values (frequencies, bin indices) and pixel
// positions along a display axis.
package axis

import (
	"fmt"
	"math"

	"spectro/pkg/bitint"
)

// Log is a base-10 logarithmic axis over [Lower, Upper]. Position 0 is
// Lower; for a vertical axis position 0 is the top edge and so maps to
// Upper.
type Log struct {
	Lower, Upper float64
	Vertical     bool

	logLower, logUpper float64
}

// NewLog validates the bounds and returns a horizontal axis.
func NewLog(lower, upper float64) (*Log, error) {
	if lower < 0 || upper < 0 || !(lower < upper) {
		return nil, fmt.Errorf("log axis bounds [%g, %g]: need 0 <= lower < upper", lower, upper)
	}
	a := &Log{
		Lower:    lower,
		Upper:    upper,
		logLower: log10(lower),
		logUpper: log10(upper),
	}
	// A zero lower bound maps to 10^0, so upper must then exceed 1.
	if a.logUpper <= a.logLower {
		return nil, fmt.Errorf("log axis bounds [%g, %g]: upper must be above 1 when lower is 0", lower, upper)
	}
	return a, nil
}

// log10 treats log(0) as 0 so an axis may start at zero.
func log10(v float64) float64 {
	if v == 0 {
		return 0
	}
	return math.Log10(v)
}

// DisplayPosition returns where value falls on an axis length pixels long.
func (a *Log) DisplayPosition(value, length float64) float64 {
	delta := a.logUpper - a.logLower
	frac := (log10(value) - a.logLower) / delta
	if a.Vertical {
		return (1 - frac) * length
	}
	return frac * length
}

// ValueForDisplay is the inverse of DisplayPosition.
func (a *Log) ValueForDisplay(pos, length float64) float64 {
	delta := a.logUpper - a.logLower
	frac := pos / length
	if a.Vertical {
		frac = (length - pos) / length
	}
	return math.Pow(10, frac*delta+a.logLower)
}

// Ticks returns the 1..9 x 10^k decade marks that fall within the bounds.
func (a *Log) Ticks() []float64 {
	var ticks []float64
	for k := 0.0; k <= math.Ceil(a.logUpper); k++ {
		for j := 1; j <= 9; j++ {
			v := float64(j) * math.Pow(10, k)
			if v >= a.Lower && v <= a.Upper {
				ticks = append(ticks, v)
			}
		}
	}
	return ticks
}

// OctaveOf returns the octave band of an FFT bin, floor(log2(bin)). Bin 0
// (DC) has no octave and returns bitint.Log2Zero.
func OctaveOf(bin uint32) int {
	return bitint.Log2(bin)
}

// Octaves returns how many octave bands cover bins 1..bins-1.
func Octaves(bins int) int {
	if bins < 2 {
		return 0
	}
	return OctaveOf(uint32(bins-1)) + 1
}

// OctaveRange returns the first and last bin of octave k, clamped to bins.
func OctaveRange(k, bins int) (first, last int) {
	first = 1 << k
	last = min(first<<1-1, bins-1)
	return first, last
}

// RangeMapper maps indices between two inclusive integer ranges of
// different sizes.
type RangeMapper struct {
	FromFirst, FromLast int
	ToFirst, ToLast     int
}

func span(first, last int) float64 { return float64(last - first) }

// Forwards maps an index in the from range to the to range.
func (m RangeMapper) Forwards(i int) int {
	pos := float64(i-m.FromFirst) / span(m.FromFirst, m.FromLast)
	return int(pos*span(m.ToFirst, m.ToLast)) + m.ToFirst
}

// Backwards maps an index in the to range back to the from range.
func (m RangeMapper) Backwards(i int) int {
	pos := float64(i-m.ToFirst) / span(m.ToFirst, m.ToLast)
	return int(pos*span(m.FromFirst, m.FromLast)) + m.FromFirst
}
