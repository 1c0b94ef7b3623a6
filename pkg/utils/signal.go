// SPDX-License-Identifier: MIT

// Package utils holds synthetic signal generators and test doubles shared by
// the analysis, pipeline and transport tests.
package utils

import (
	"math"
	"math/rand/v2"
	"sync"
)

// MockTransport records every payload it is asked to send.
type MockTransport struct {
	mu     sync.Mutex
	Sent   []any
	Closed bool
}

// Send stores the payload for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, data)
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Last returns the most recent payload, or nil when nothing was sent.
func (m *MockTransport) Last() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}

// GenerateSineWave returns size samples of a sine at frequency with the given
// peak amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buffer
}

// GenerateComplexWave returns a 440 Hz fundamental with its second and third
// harmonics.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
	}
	return buffer
}

// GenerateSteppedEnvelope returns a carrier sine whose amplitude holds each
// value of levels for segmentLen samples in turn.
func GenerateSteppedEnvelope(levels []float64, segmentLen int, sampleRate, carrier float64) []float64 {
	buffer := make([]float64, len(levels)*segmentLen)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = levels[i/segmentLen] * math.Sin(2*math.Pi*carrier*t)
	}
	return buffer
}

// GenerateRamp returns a carrier sine whose amplitude moves linearly from
// `from` to `to` across size samples.
func GenerateRamp(size int, sampleRate, carrier, from, to float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		frac := float64(i) / float64(max(1, size-1))
		buffer[i] = (from + (to-from)*frac) * math.Sin(2*math.Pi*carrier*t)
	}
	return buffer
}

// GenerateNoise returns uniform white noise in [-amplitude, amplitude]. The
// same seed always yields the same samples.
func GenerateNoise(size int, amplitude float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	buffer := make([]float64, size)
	for i := range buffer {
		buffer[i] = amplitude * (2*rng.Float64() - 1)
	}
	return buffer
}

// GenerateClicks returns silence with a short decaying noise burst every
// interval samples, starting at offset.
func GenerateClicks(size, offset, interval, burstLen int, seed uint64) []float64 {
	noise := GenerateNoise(burstLen, 1, seed)
	buffer := make([]float64, size)
	for start := offset; start < size; start += interval {
		for j := 0; j < burstLen && start+j < size; j++ {
			decay := 1 - float64(j)/float64(burstLen)
			buffer[start+j] = noise[j] * decay
		}
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude within
// [startBin, endBin]. Out-of-range bounds are clamped.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
