// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EnergyStats summarizes the RMS timeline.
type EnergyStats struct {
	Mean         float64 `json:"mean_rms"`
	Max          float64 `json:"max_rms"`
	Min          float64 `json:"min_rms"`
	DynamicRange float64 `json:"dynamic_range"`
}

// HarmonicStats carries the pitch-class and pitch summaries.
type HarmonicStats struct {
	ConsonanceScore float64 `json:"consonance_score"`
	MeanPitch       float64 `json:"mean_pitch_hz"`
	VoicedFrames    int     `json:"voiced_frames"`
}

// SpectralReport is the output of the spectral descriptor extractor.
type SpectralReport struct {
	Duration          float64       `json:"duration"`
	SampleRate        float64       `json:"sample_rate"`
	Tempo             float64       `json:"tempo"`
	NumBeats          int           `json:"num_beats"`
	BeatTimes         []float64     `json:"beat_times"`
	SpectralCentroid  float64       `json:"spectral_centroid_mean"`
	SpectralRolloff   float64       `json:"spectral_rolloff_mean"`
	SpectralBandwidth float64       `json:"spectral_bandwidth_mean"`
	ZeroCrossingRate  float64       `json:"zero_crossing_rate_mean"`
	Energy            EnergyStats   `json:"energy"`
	Harmonic          HarmonicStats `json:"harmonic"`
	Centroid          Timeline      `json:"centroid_timeline"`
	Pitch             Timeline      `json:"pitch_timeline"`
	RMS               Timeline      `json:"rms_timeline"`
}

// Centroid returns the magnitude-weighted mean frequency of a spectrum.
func Centroid(mag []float64, binHz float64) float64 {
	var num, den float64
	for k, m := range mag {
		num += float64(k) * binHz * m
		den += m
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Rolloff returns the frequency of the first bin at which the cumulative
// power reaches threshold of the total.
func Rolloff(mag []float64, binHz, threshold float64) float64 {
	total := 0.0
	for _, m := range mag {
		total += m * m
	}
	if total == 0 {
		return 0
	}
	target := threshold * total
	cum := 0.0
	for k, m := range mag {
		cum += m * m
		if cum >= target {
			return float64(k) * binHz
		}
	}
	return float64(len(mag)-1) * binHz
}

// Bandwidth returns the magnitude-weighted standard deviation of frequency
// around the centroid.
func Bandwidth(mag []float64, binHz float64) float64 {
	c := Centroid(mag, binHz)
	var num, den float64
	for k, m := range mag {
		d := float64(k)*binHz - c
		num += m * d * d
		den += m
	}
	if den == 0 {
		return 0
	}
	return math.Sqrt(num / den)
}

// ZeroCrossingRate returns the fraction of adjacent sample pairs that change
// sign.
func ZeroCrossingRate(segment []float64) float64 {
	if len(segment) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(segment); i++ {
		if (segment[i-1] < 0) != (segment[i] < 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(segment)-1)
}

// PitchTrack returns the dominant pitch of one spectrum: the strongest local
// maximum inside [PitchMinHz, PitchMaxHz] that exceeds PitchThreshold of the
// spectrum peak, refined by parabolic interpolation. Unvoiced spectra
// return 0.
func PitchTrack(mag []float64, binHz float64, cfg SpectralConfig) float64 {
	if len(mag) < 3 || binHz <= 0 {
		return 0
	}
	peak := floats.Max(mag)
	if peak <= 0 {
		return 0
	}

	lo := max(1, int(math.Ceil(cfg.PitchMinHz/binHz)))
	hi := min(len(mag)-2, int(math.Floor(cfg.PitchMaxHz/binHz)))
	best, bestMag := -1, cfg.PitchThreshold*peak
	for k := lo; k <= hi; k++ {
		m := mag[k]
		if m > bestMag && m > mag[k-1] && m >= mag[k+1] {
			best, bestMag = k, m
		}
	}
	if best < 0 {
		return 0
	}
	return (float64(best) + parabolicOffset(mag[best-1], mag[best], mag[best+1])) * binHz
}

// ConsonanceScore rates harmonic stability from a chroma timeline: the mean
// per-frame chroma peak divided by the mean, over pitch classes, of each
// class's variance across frames, plus eps. Fewer than two frames carry no
// variance to measure and score 0.
func ConsonanceScore(chroma [][12]float64, eps float64) float64 {
	if len(chroma) < 2 {
		return 0
	}

	peaks := make([]float64, len(chroma))
	for i, c := range chroma {
		peaks[i] = floats.Max(c[:])
	}

	column := make([]float64, len(chroma))
	variance := 0.0
	for pc := range 12 {
		for i, c := range chroma {
			column[i] = c[pc]
		}
		variance += stat.PopVariance(column, nil)
	}
	variance /= 12

	return stat.Mean(peaks, nil) / (variance + eps)
}

// AnalyzeSpectral derives the spectral descriptors, tempo, beats, pitch and
// consonance for one clip. Short clips fall back to a zero tempo rather than
// failing.
func AnalyzeSpectral(ctx context.Context, fs *FrameSeries, w Waveform, cfg SpectralConfig) (*SpectralReport, error) {
	if fs.Len() == 0 {
		return nil, ErrInsufficientData
	}

	binHz := fs.BinWidth()
	n := fs.Len()
	centroid := make([]float64, n)
	rolloff := make([]float64, n)
	bandwidth := make([]float64, n)
	pitch := make([]float64, n)

	var voiced []float64
	for i, f := range fs.Frames {
		centroid[i] = Centroid(f.Magnitude, binHz)
		rolloff[i] = Rolloff(f.Magnitude, binHz, cfg.RolloffThreshold)
		bandwidth[i] = Bandwidth(f.Magnitude, binHz)
		pitch[i] = PitchTrack(f.Magnitude, binHz, cfg)
		if pitch[i] > 0 {
			voiced = append(voiced, pitch[i])
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env, envRate, err := OnsetEnvelope(w, cfg.TempoHopSize, cfg.TempoFrameSize)
	if err != nil {
		return nil, err
	}
	tempo, beats := TempoAndBeats(env, envRate, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rms := fs.RMS()
	report := &SpectralReport{
		Duration:          fs.Duration,
		SampleRate:        fs.SampleRate,
		Tempo:             tempo,
		NumBeats:          len(beats),
		BeatTimes:         beats,
		SpectralCentroid:  stat.Mean(centroid, nil),
		SpectralRolloff:   stat.Mean(rolloff, nil),
		SpectralBandwidth: stat.Mean(bandwidth, nil),
		ZeroCrossingRate:  stat.Mean(fs.ZCR(), nil),
		Energy: EnergyStats{
			Mean:         stat.Mean(rms, nil),
			Max:          floats.Max(rms),
			Min:          floats.Min(rms),
			DynamicRange: floats.Max(rms) - floats.Min(rms),
		},
		Harmonic: HarmonicStats{
			ConsonanceScore: ConsonanceScore(fs.Chroma(), cfg.ConsonanceEpsilon),
			VoicedFrames:    len(voiced),
		},
		Centroid: fs.Timeline("spectral_centroid", centroid),
		Pitch:    fs.Timeline("pitch", pitch),
		RMS:      fs.Timeline("rms", rms),
	}
	if len(voiced) > 0 {
		report.Harmonic.MeanPitch = stat.Mean(voiced, nil)
	}
	return report, nil
}
