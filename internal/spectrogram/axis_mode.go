// SPDX-License-Identifier: MIT
package spectrogram

import (
	"fmt"
	"strings"
)

// AxisMode selects how image rows are spread over the frequency range.
type AxisMode int

const (
	AxisLinear AxisMode = iota
	AxisLog
	AxisOctave
)

func (m AxisMode) String() string {
	switch m {
	case AxisLinear:
		return "linear"
	case AxisLog:
		return "log"
	case AxisOctave:
		return "octave"
	default:
		return fmt.Sprintf("AxisMode(%d)", int(m))
	}
}

// ParseAxisMode converts a case-insensitive name to an AxisMode. Unknown
// names return AxisLog and an error.
func ParseAxisMode(name string) (AxisMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear", "lin":
		return AxisLinear, nil
	case "log", "logarithmic":
		return AxisLog, nil
	case "octave", "octaves":
		return AxisOctave, nil
	default:
		return AxisLog, fmt.Errorf("unknown axis mode: '%s'", name)
	}
}
