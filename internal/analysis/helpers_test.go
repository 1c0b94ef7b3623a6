// SPDX-License-Identifier: MIT
package analysis

import (
	"testing"

	"earshot/pkg/utils"

	"github.com/stretchr/testify/require"
)

const testSampleRate = 22050.0

func mustWaveform(t testing.TB, samples []float64) Waveform {
	t.Helper()
	w, err := NewWaveform(samples, testSampleRate)
	require.NoError(t, err)
	return w
}

func mustTransform(t testing.TB, samples []float64) (*FrameSeries, Waveform) {
	t.Helper()
	w := mustWaveform(t, samples)
	fs, err := Transform(w, DefaultConfig().Frame)
	require.NoError(t, err)
	return fs, w
}

// steadyTone is ten seconds of a 0.5 amplitude 440 Hz sine.
func steadyTone() []float64 {
	return utils.GenerateSineWave(int(10*testSampleRate), testSampleRate, 440, 0.5)
}

// steppedTone holds 0.1, 0.5 and 0.9 amplitude for a third of ten seconds each.
func steppedTone() []float64 {
	return utils.GenerateSteppedEnvelope([]float64{0.1, 0.5, 0.9}, int(10*testSampleRate)/3, testSampleRate, 440)
}
