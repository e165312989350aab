// SPDX-License-Identifier: MIT
package palette

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"spectro/pkg/argb"
)

// Serialized forms:
//
//	2,#RRGGBB,#RRGGBB                    start/end gradient
//	L,<offset> #RRGGBB,<offset> #RRGGBB  linear gradient, two or more stops
//
// Alpha is not serialized; parsed colors are opaque.
const (
	tagStartEnd = "2"
	tagLinear   = "L"
)

var (
	startEndPattern = regexp.MustCompile(`^2,#[0-9A-Fa-f]{6},#[0-9A-Fa-f]{6}$`)
	linearPattern   = regexp.MustCompile(`^L,-?\d+(\.\d+)? #[0-9A-Fa-f]{6}(,-?\d+(\.\d+)? #[0-9A-Fa-f]{6})+$`)
)

// Parse decodes a serialized gradient.
func Parse(s string) (Gradient, error) {
	s = strings.TrimSpace(s)
	switch {
	case startEndPattern.MatchString(s):
		parts := strings.Split(s, ",")
		start, err := ParseHex(parts[1])
		if err != nil {
			return nil, err
		}
		end, err := ParseHex(parts[2])
		if err != nil {
			return nil, err
		}
		return StartEnd{Start: start, End: end}, nil

	case linearPattern.MatchString(s):
		parts := strings.Split(s, ",")[1:]
		stops := make([]Stop, 0, len(parts))
		for _, p := range parts {
			stop, err := parseStop(p)
			if err != nil {
				return nil, err
			}
			stops = append(stops, stop)
		}
		return NewLinear(stops)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Format serializes g. Two-stop gradients spanning [0,1] that are not a
// StartEnd are still written in the linear form so Parse returns the same
// concrete type.
func Format(g Gradient) string {
	var b strings.Builder
	if se, ok := g.(StartEnd); ok {
		b.WriteString(tagStartEnd)
		b.WriteByte(',')
		b.WriteString(Hex(se.Start))
		b.WriteByte(',')
		b.WriteString(Hex(se.End))
		return b.String()
	}

	b.WriteString(tagLinear)
	for _, s := range g.Stops() {
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(float64(s.Offset), 'f', -1, 32))
		b.WriteByte(' ')
		b.WriteString(Hex(s.Color))
	}
	return b.String()
}

// Hex formats the color channels of c as uppercase #RRGGBB.
func Hex(c argb.Channels) string {
	cc := colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
	return strings.ToUpper(cc.Clamped().Hex())
}

// ParseHex parses #RRGGBB (or #RGB) into opaque channels.
func ParseHex(s string) (argb.Channels, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return argb.Channels{}, fmt.Errorf("color %q: %w", s, err)
	}
	return argb.Opaque(float32(c.R), float32(c.G), float32(c.B)), nil
}

func parseStop(s string) (Stop, error) {
	offset, color, ok := strings.Cut(s, " ")
	if !ok {
		return Stop{}, fmt.Errorf("%w: stop %q", ErrUnknownFormat, s)
	}
	off, err := strconv.ParseFloat(offset, 32)
	if err != nil {
		return Stop{}, fmt.Errorf("stop offset %q: %w", offset, err)
	}
	c, err := ParseHex(color)
	if err != nil {
		return Stop{}, err
	}
	return Stop{Offset: float32(off), Color: c}, nil
}
