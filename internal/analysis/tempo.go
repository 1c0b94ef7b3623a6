// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// onsetFloor bounds the dB spectrum from below so digital silence does not
// produce spurious flux.
const onsetFloor = 1e-5

// marginTieEpsilon is the relative slack under which two autocorrelation
// margins are treated as equal.
const marginTieEpsilon = 1e-9

// OnsetEnvelope computes a fine-grained onset strength curve directly from
// the waveform, independent of the analysis frame layout. It returns the
// envelope and its frame rate.
func OnsetEnvelope(w Waveform, hop, size int) ([]float64, float64, error) {
	if err := w.Validate(); err != nil {
		return nil, 0, err
	}
	s, err := newSTFT(size, Hann)
	if err != nil {
		return nil, 0, err
	}
	if hop <= 0 {
		hop = DefaultTempoHopSize
	}

	count := (len(w.Samples) + hop - 1) / hop
	env := make([]float64, count)
	bins := size/2 + 1
	mag := make([]float64, bins)
	prev := make([]float64, bins)
	cur := make([]float64, bins)

	for i := range count {
		s.analyze(w.Samples, i*hop, mag)
		for k, m := range mag {
			cur[k] = 20 * math.Log10(math.Max(m, onsetFloor))
		}
		if i > 0 {
			flux := 0.0
			for k := range cur {
				if d := cur[k] - prev[k]; d > 0 {
					flux += d
				}
			}
			env[i] = flux / float64(bins)
		}
		prev, cur = cur, prev
	}
	return env, w.SampleRate / float64(hop), nil
}

// TempoAndBeats estimates one dominant tempo and the beat times from an
// onset envelope sampled at frameRate.
//
// The mean-removed envelope is autocorrelated over the lags spanning
// [MinTempoBPM, MaxTempoBPM]. Among lags that are local maxima, the one
// whose autocorrelation exceeds the range mean by the largest margin wins,
// and equal margins go to the shortest lag. A non-zero TempoTolerance widens
// what counts as equal to that fraction of the best margin. Beats are placed every lag frames from the phase offset with
// the most onset energy. Too-short or flat input yields (0, nil).
func TempoAndBeats(onset []float64, frameRate float64, cfg SpectralConfig) (float64, []float64) {
	n := len(onset)
	if n < 3 || frameRate <= 0 {
		return 0, nil
	}

	minLag := max(1, int(math.Ceil(frameRate*60/cfg.MaxTempoBPM)))
	maxLag := min(int(math.Floor(frameRate*60/cfg.MinTempoBPM)), n/2)
	if n < 2*minLag+1 || maxLag < minLag {
		return 0, nil
	}

	mean := stat.Mean(onset, nil)
	x := make([]float64, n)
	energy := 0.0
	for i, v := range onset {
		x[i] = v - mean
		energy += x[i] * x[i]
	}
	if energy == 0 {
		return 0, nil
	}

	// One lag of headroom on both sides for the local-maximum test.
	ac := make([]float64, maxLag+2)
	for lag := max(0, minLag-1); lag <= min(maxLag+1, n-1); lag++ {
		sum := 0.0
		for i := 0; i+lag < n; i++ {
			sum += x[i] * x[i+lag]
		}
		ac[lag] = sum / float64(n-lag)
	}
	rangeMean := stat.Mean(ac[minLag:maxLag+1], nil)

	type candidate struct {
		lag    int
		margin float64
	}
	var candidates []candidate
	best := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		if lag == 0 || !(ac[lag] > ac[lag-1] && ac[lag] >= ac[lag+1]) {
			continue
		}
		margin := ac[lag] - rangeMean
		if margin <= 0 {
			continue
		}
		candidates = append(candidates, candidate{lag, margin})
		best = math.Max(best, margin)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	lag := 0
	for _, c := range candidates {
		if c.margin >= best*(1-cfg.TempoTolerance-marginTieEpsilon) {
			lag = c.lag
			break
		}
	}

	period := float64(lag) + parabolicOffset(ac[lag-1], ac[lag], ac[lag+1])
	bpm := 60 * frameRate / period

	return bpm, beatTimes(onset, lag, frameRate)
}

// beatTimes picks the phase in [0, lag) with the largest summed onset and
// returns the timestamps of every lag-th frame from it.
func beatTimes(onset []float64, lag int, frameRate float64) []float64 {
	bestPhase, bestSum := 0, math.Inf(-1)
	for phase := range lag {
		sum := 0.0
		for i := phase; i < len(onset); i += lag {
			sum += onset[i]
		}
		if sum > bestSum {
			bestPhase, bestSum = phase, sum
		}
	}

	var beats []float64
	for i := bestPhase; i < len(onset); i += lag {
		beats = append(beats, float64(i)/frameRate)
	}
	return beats
}

// parabolicOffset returns the vertex offset in (-0.5, 0.5) of the parabola
// through three equally spaced samples centred on b.
func parabolicOffset(a, b, c float64) float64 {
	den := a - 2*b + c
	if den == 0 {
		return 0
	}
	off := 0.5 * (a - c) / den
	return math.Max(-0.5, math.Min(0.5, off))
}
