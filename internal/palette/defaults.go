// SPDX-License-Identifier: MIT
package palette

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"spectro/pkg/argb"
)

// Spectrogram is the default heat map: black through deep blue, purple, red
// and yellow to white.
var Spectrogram = mustLinear(
	"0 #000000",
	"0.17 #010035",
	"0.33 #800080",
	"0.66 #FF0000",
	"0.87 #FFFF00",
	"1 #FFFFFF",
)

// Grayscale runs from black to white.
var Grayscale Gradient = StartEnd{Start: mustHex("#000000"), End: mustHex("#FFFFFF")}

var presets = map[string]Gradient{
	"spectrogram": Spectrogram,
	"grayscale":   Grayscale,
}

// Preset returns a named built-in gradient.
func Preset(name string) (Gradient, bool) {
	g, ok := presets[strings.ToLower(name)]
	return g, ok
}

// PresetNames lists the built-in gradient names in sorted order.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(presets))
}

// Resolve accepts either a preset name or a serialized gradient.
func Resolve(s string) (Gradient, error) {
	if g, ok := Preset(strings.TrimSpace(s)); ok {
		return g, nil
	}
	return Parse(s)
}

func mustHex(s string) argb.Channels {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func mustLinear(stops ...string) *Linear {
	parsed := make([]Stop, len(stops))
	for i, s := range stops {
		stop, err := parseStop(s)
		if err != nil {
			panic(err)
		}
		parsed[i] = stop
	}
	g, err := NewLinear(parsed)
	if err != nil {
		panic(fmt.Sprintf("built-in gradient: %v", err))
	}
	return g
}
