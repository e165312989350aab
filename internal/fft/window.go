// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc defines the type for selecting an FFT window function.
type WindowFunc int

// Enum for available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
	Rectangular
)

var windowNames = [...]string{
	BartlettHann:    "bartletthann",
	Blackman:        "blackman",
	BlackmanNuttall: "blackmannuttall",
	Hann:            "hann",
	Hamming:         "hamming",
	Lanczos:         "lanczos",
	Nuttall:         "nuttall",
	Rectangular:     "rectangular",
}

func (w WindowFunc) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
	return windowNames[w]
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Hann) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	case "rectangular", "rect", "none":
		return Rectangular, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// windowCoefficients fills coeffs with the selected window. The gonum window
// functions scale their argument in place, so the slice starts out as ones.
func windowCoefficients(coeffs []float64, windowType WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Rectangular:
		// Ones.
	default:
		logger.Warnf("unknown window function type %d, defaulting to Hann", windowType)
		window.Hann(coeffs)
	}
}
