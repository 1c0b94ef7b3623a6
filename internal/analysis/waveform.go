// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
)

// Waveform is a decoded mono signal. Samples are nominally in [-1, 1].
// A Waveform is never modified after construction.
type Waveform struct {
	Samples    []float64
	SampleRate float64
}

// NewWaveform validates samples and sampleRate and wraps them. The slice is
// retained, not copied.
func NewWaveform(samples []float64, sampleRate float64) (Waveform, error) {
	w := Waveform{Samples: samples, SampleRate: sampleRate}
	if err := w.Validate(); err != nil {
		return Waveform{}, err
	}
	return w, nil
}

// Validate reports ErrInvalidInput for an empty signal, a non-positive or
// non-finite sample rate, or a non-finite sample.
func (w Waveform) Validate() error {
	if len(w.Samples) == 0 {
		return fmt.Errorf("%w: waveform has no samples", ErrInvalidInput)
	}
	if w.SampleRate <= 0 || math.IsNaN(w.SampleRate) || math.IsInf(w.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidInput, w.SampleRate)
	}
	for i, s := range w.Samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: sample %d is not finite", ErrInvalidInput, i)
		}
	}
	return nil
}

// Duration returns the signal length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / w.SampleRate
}
