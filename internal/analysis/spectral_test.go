// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"math"
	"testing"

	"earshot/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectralShapeDescriptors(t *testing.T) {
	const binHz = 5.0

	single := make([]float64, 32)
	single[10] = 1

	flat := []float64{1, 1, 1, 1}

	tests := []struct {
		name      string
		mag       []float64
		centroid  float64
		rolloff   float64
		bandwidth float64
	}{
		{"Single Bin", single, 50, 50, 0},
		{"Flat", flat, 7.5, 15, math.Sqrt(31.25)},
		{"Silent", make([]float64, 8), 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.centroid, Centroid(tt.mag, binHz), 1e-9)
			assert.InDelta(t, tt.rolloff, Rolloff(tt.mag, binHz, DefaultRolloffThreshold), 1e-9)
			assert.InDelta(t, tt.bandwidth, Bandwidth(tt.mag, binHz), 1e-9)
		})
	}
}

func TestZeroCrossingRate(t *testing.T) {
	assert.Zero(t, ZeroCrossingRate(nil))
	assert.Zero(t, ZeroCrossingRate([]float64{1}))
	assert.InDelta(t, 1.0, ZeroCrossingRate([]float64{1, -1, 1, -1}), 1e-12)
	assert.InDelta(t, 1.0/3, ZeroCrossingRate([]float64{1, 2, -1, -2}), 1e-12)
}

func TestPitchTrack(t *testing.T) {
	cfg := DefaultConfig().Spectral
	const binHz = 10.0

	t.Run("Symmetric Peak", func(t *testing.T) {
		mag := make([]float64, 512)
		mag[99], mag[100], mag[101] = 0.5, 1, 0.5
		assert.InDelta(t, 1000.0, PitchTrack(mag, binHz, cfg), 1e-9)
	})

	t.Run("Below Range", func(t *testing.T) {
		mag := make([]float64, 512)
		mag[4], mag[5], mag[6] = 0.5, 1, 0.5
		assert.Zero(t, PitchTrack(mag, binHz, cfg))
	})

	t.Run("Weak Peak", func(t *testing.T) {
		mag := make([]float64, 512)
		mag[5] = 1
		mag[99], mag[100], mag[101] = 0.01, 0.05, 0.01
		assert.Zero(t, PitchTrack(mag, binHz, cfg))
	})

	t.Run("Silent", func(t *testing.T) {
		assert.Zero(t, PitchTrack(make([]float64, 512), binHz, cfg))
	})
}

func TestConsonanceScore(t *testing.T) {
	stable := make([][12]float64, 50)
	for i := range stable {
		stable[i][9] = 1
	}

	drifting := make([][12]float64, 50)
	for i := range drifting {
		drifting[i][i%12] = 1
	}

	assert.Zero(t, ConsonanceScore(nil, DefaultConsonanceEpsilon))
	assert.Zero(t, ConsonanceScore(stable[:1], DefaultConsonanceEpsilon), "a single frame has no variance")
	assert.InDelta(t, 100.0, ConsonanceScore(stable, DefaultConsonanceEpsilon), 1e-9)
	assert.Greater(t, ConsonanceScore(stable, DefaultConsonanceEpsilon), ConsonanceScore(drifting, DefaultConsonanceEpsilon))
}

func TestConsonanceScoreDecreasesWithVariance(t *testing.T) {
	score := func(jitter float64) float64 {
		chroma := make([][12]float64, 40)
		for i := range chroma {
			chroma[i][0] = 1
			if i%2 == 0 {
				chroma[i][7] = jitter
			}
		}
		return ConsonanceScore(chroma, DefaultConsonanceEpsilon)
	}

	prev := score(0)
	for _, j := range []float64{0.1, 0.3, 0.6, 0.9} {
		cur := score(j)
		assert.Less(t, cur, prev, "jitter %v", j)
		prev = cur
	}
}

func TestConsonanceScoreRisesWithPeak(t *testing.T) {
	// Pitch class 0 holds a constant peak; class 3 toggles between 0 and 0.4
	// so every class keeps the same variance across frames.
	score := func(peak float64) float64 {
		chroma := make([][12]float64, 40)
		for i := range chroma {
			chroma[i][0] = peak
			chroma[i][7] = 0.2
			if i%2 == 0 {
				chroma[i][3] = 0.4
			}
		}
		return ConsonanceScore(chroma, DefaultConsonanceEpsilon)
	}

	tests := []float64{0.4, 0.5, 0.7, 0.9, 1.0}
	prev := 0.0
	for _, peak := range tests {
		cur := score(peak)
		assert.GreaterOrEqual(t, cur, prev, "peak %v", peak)
		prev = cur
	}
	assert.InDelta(t, 1.0/(0.04/12+DefaultConsonanceEpsilon), score(1), 1e-9)
}

func TestTempoFromClicks(t *testing.T) {
	// One click every 22 hops of 512 samples. The first click sits late in
	// its period so the partial period at the end of the autocorrelation
	// window holds no click and does not favour the doubled lag.
	const interval = 22 * DefaultTempoHopSize
	samples := utils.GenerateClicks(int(10*testSampleRate), 18*DefaultTempoHopSize, interval, 64, 3)
	w := mustWaveform(t, samples)
	cfg := DefaultConfig().Spectral

	env, rate, err := OnsetEnvelope(w, cfg.TempoHopSize, cfg.TempoFrameSize)
	require.NoError(t, err)
	assert.InDelta(t, testSampleRate/DefaultTempoHopSize, rate, 1e-9)

	bpm, beats := TempoAndBeats(env, rate, cfg)
	expected := 60 * testSampleRate / interval
	assert.InDelta(t, expected, bpm, 3)

	require.GreaterOrEqual(t, len(beats), 15)
	period := float64(interval) / testSampleRate
	for i := 1; i < len(beats); i++ {
		assert.InDelta(t, period, beats[i]-beats[i-1], 1e-9)
	}
}

// pulseEnvelope returns n frames with a pulse of 1 every period frames and a
// pulse of offbeat halfway between them.
func pulseEnvelope(n, period int, offbeat float64) []float64 {
	env := make([]float64, n)
	for i := 0; i < n; i += period {
		env[i] = 1
		if i+period/2 < n {
			env[i+period/2] = offbeat
		}
	}
	return env
}

func TestTempoLargestMarginWins(t *testing.T) {
	const rate = testSampleRate / DefaultTempoHopSize
	cfg := DefaultConfig().Spectral

	// A weaker offbeat makes lag 40 score a little higher than lag 20.
	for _, offbeat := range []float64{0.8, 0.85, 0.9, 0.95} {
		bpm, beats := TempoAndBeats(pulseEnvelope(400, 40, offbeat), rate, cfg)
		assert.InDelta(t, 60*rate/40, bpm, 0.5, "offbeat %v", offbeat)
		require.NotEmpty(t, beats)
		assert.Zero(t, beats[0], "offbeat %v", offbeat)
	}

	t.Run("Tolerance", func(t *testing.T) {
		loose := cfg
		loose.TempoTolerance = 0.1
		bpm, _ := TempoAndBeats(pulseEnvelope(400, 40, 0.9), rate, loose)
		assert.InDelta(t, 60*rate/20, bpm, 0.5)
	})
}

func TestTempoEqualMarginsPickShortestLag(t *testing.T) {
	const rate = testSampleRate / DefaultTempoHopSize

	// Lags 20, 40 and 60 match every pulse and differ only by round-off.
	bpm, _ := TempoAndBeats(pulseEnvelope(800, 20, 0), rate, DefaultConfig().Spectral)
	assert.InDelta(t, 60*rate/20, bpm, 0.5)
}

func TestTempoAndBeatsDegenerate(t *testing.T) {
	cfg := DefaultConfig().Spectral

	bpm, beats := TempoAndBeats(nil, 43, cfg)
	assert.Zero(t, bpm)
	assert.Nil(t, beats)

	bpm, beats = TempoAndBeats(make([]float64, 10), 43, cfg)
	assert.Zero(t, bpm)
	assert.Nil(t, beats)

	bpm, beats = TempoAndBeats(make([]float64, 500), 43, cfg)
	assert.Zero(t, bpm, "flat envelope")
	assert.Nil(t, beats)
}

func TestParabolicOffset(t *testing.T) {
	assert.Zero(t, parabolicOffset(1, 2, 1))
	assert.Zero(t, parabolicOffset(1, 1, 1))
	assert.Greater(t, parabolicOffset(1, 2, 1.5), 0.0)
	assert.Less(t, parabolicOffset(1.5, 2, 1), 0.0)
}

func TestAnalyzeSpectralSteadyTone(t *testing.T) {
	fs, w := mustTransform(t, steadyTone())

	report, err := AnalyzeSpectral(context.Background(), fs, w, DefaultConfig().Spectral)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, report.Duration, 1e-9)
	assert.Equal(t, testSampleRate, report.SampleRate)
	assert.Equal(t, len(report.BeatTimes), report.NumBeats)
	assert.InDelta(t, 440.0, report.Harmonic.MeanPitch, 5)
	assert.Equal(t, fs.Len(), report.Harmonic.VoicedFrames)
	assert.Greater(t, report.Harmonic.ConsonanceScore, 25.0)
	assert.InDelta(t, 440.0, report.SpectralRolloff, 15)
	assert.Greater(t, report.SpectralCentroid, 400.0)
	assert.Less(t, report.SpectralCentroid, 600.0)
	assert.InDelta(t, 0.5/math.Sqrt2, report.Energy.Mean, 0.02)
	assert.InDelta(t, report.Energy.Max-report.Energy.Min, report.Energy.DynamicRange, 1e-12)

	for _, tl := range []Timeline{report.Centroid, report.Pitch, report.RMS} {
		assert.Equal(t, fs.Times(), tl.Times, tl.Name)
		assert.Len(t, tl.Values, fs.Len(), tl.Name)
	}
}

func TestAnalyzeSpectralSilence(t *testing.T) {
	fs, w := mustTransform(t, make([]float64, int(testSampleRate)))

	report, err := AnalyzeSpectral(context.Background(), fs, w, DefaultConfig().Spectral)
	require.NoError(t, err)
	assert.Zero(t, report.Tempo)
	assert.Empty(t, report.BeatTimes)
	assert.Zero(t, report.Harmonic.VoicedFrames)
	assert.Zero(t, report.Harmonic.MeanPitch)
	assert.Zero(t, report.SpectralCentroid)
	assert.Zero(t, report.Harmonic.ConsonanceScore)
}

func TestAnalyzeSpectralShortClip(t *testing.T) {
	fs, w := mustTransform(t, utils.GenerateSineWave(1000, testSampleRate, 440, 0.5))

	report, err := AnalyzeSpectral(context.Background(), fs, w, DefaultConfig().Spectral)
	require.NoError(t, err)
	assert.Zero(t, report.Tempo)
	assert.Zero(t, report.NumBeats)

	// 400 samples fit in a single frame, which leaves nothing to rate.
	fs, w = mustTransform(t, utils.GenerateSineWave(400, testSampleRate, 440, 0.5))
	require.Equal(t, 1, fs.Len())
	report, err = AnalyzeSpectral(context.Background(), fs, w, DefaultConfig().Spectral)
	require.NoError(t, err)
	assert.Zero(t, report.Harmonic.ConsonanceScore)
}

func TestAnalyzeSpectralCancelled(t *testing.T) {
	fs, w := mustTransform(t, steadyTone())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AnalyzeSpectral(ctx, fs, w, DefaultConfig().Spectral)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareSpectral(t *testing.T) {
	a := &SpectralReport{Tempo: 120, SpectralCentroid: 1000, Energy: EnergyStats{Mean: 0.2}}
	a.Harmonic.ConsonanceScore = 40
	b := &SpectralReport{Tempo: 100, SpectralCentroid: 1500, Energy: EnergyStats{Mean: 0.5}}
	b.Harmonic.ConsonanceScore = 30

	cmp := CompareSpectral(a, b)
	assert.InDelta(t, 20.0, cmp.TempoDifference, 1e-12)
	assert.InDelta(t, 500.0, cmp.CentroidDifference, 1e-12)
	assert.InDelta(t, 0.3, cmp.EnergyDifference, 1e-12)
	assert.InDelta(t, 10.0, cmp.ConsonanceDifference, 1e-12)
	assert.Equal(t, "first", cmp.MoreConsonant)
	assert.Equal(t, "second", CompareSpectral(b, a).MoreConsonant)
	assert.Equal(t, "equal", CompareSpectral(a, a).MoreConsonant)
}
