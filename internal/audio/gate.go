// SPDX-License-Identifier: MIT
package audio

import "math"

// EnableGate turns on the noise gate at the current threshold.
func (e *Engine) EnableGate() {
	e.gateEnabled = true
}

// DisableGate keeps every buffer and skips silence trimming.
func (e *Engine) DisableGate() {
	e.gateEnabled = false
}

// configureGate applies a capture.gate_threshold value: zero disables the
// gate, anything above it sets the threshold and enables it.
func (e *Engine) configureGate(threshold float64) {
	e.SetGateThreshold(threshold)
	if e.gateThreshold > 0 {
		e.EnableGate()
	} else {
		e.DisableGate()
	}
}

// SetGateThreshold adjusts the silence trimming threshold.
// The value is in the range of 0.0-1.0 where 0=keep everything, 1=trim everything.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}

	e.gateThreshold = int32(threshold * float64(math.MaxInt32))
}

// GetGateThreshold returns the current gate threshold as a float64.
// The value is in the range of 0.0-1.0 where 0=keep everything, 1=trim everything.
func (e *Engine) GetGateThreshold() float64 {
	return float64(e.gateThreshold) / float64(math.MaxInt32)
}

// PeakAmplitude returns the largest absolute sample in buffer without
// branching. math.MinInt32 saturates to math.MaxInt32.
func PeakAmplitude(buffer []int32) int32 {
	var maxAmplitude int32
	for i := range buffer {
		sample := buffer[i]
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		amplitude -= int32(uint32(amplitude) >> 31)
		diff := amplitude - maxAmplitude
		maxAmplitude += (diff & (diff >> 31)) ^ diff
	}
	return maxAmplitude
}

// TrimSilence drops leading and trailing samples whose magnitude is below
// threshold. The result aliases samples and is empty when nothing reaches
// the threshold.
func TrimSilence(samples []float64, threshold float64) []float64 {
	start := 0
	for start < len(samples) && math.Abs(samples[start]) < threshold {
		start++
	}
	end := len(samples)
	for end > start && math.Abs(samples[end-1]) < threshold {
		end--
	}
	return samples[start:end]
}
