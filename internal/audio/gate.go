// SPDX-License-Identifier: MIT
package audio

import "math"

// EnableGate drops buffers whose peak does not exceed the threshold.
func (e *Engine) EnableGate() {
	e.gateEnabled = true
}

func (e *Engine) DisableGate() {
	e.gateEnabled = false
}

// GateEnabled reports whether the noise gate is active.
func (e *Engine) GateEnabled() bool {
	return e.gateEnabled
}

// SetGateThreshold adjusts the noise gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (e *Engine) SetGateThreshold(threshold float64) {
	threshold = max(0, min(threshold, 1))
	e.gateThreshold = int32(threshold * float64(math.MaxInt32))
}

// GetGateThreshold returns the current noise gate threshold as a float64.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (e *Engine) GetGateThreshold() float64 {
	return float64(e.gateThreshold) / float64(math.MaxInt32)
}
