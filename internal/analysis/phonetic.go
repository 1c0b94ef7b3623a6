// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"fmt"

	"earshot/internal/dsp"

	"gonum.org/v1/gonum/stat"
)

const (
	highSibilanceLevel = 0.7
	sibilantPeakLevel  = 0.6
)

// PhoneticSummary holds the headline phonetic metrics.
type PhoneticSummary struct {
	PlosiveCount          int     `json:"plosive_count"`
	PlosivesPerSecond     float64 `json:"plosives_per_second"`
	MeanSibilance         float64 `json:"mean_sibilance"`
	MeanFricativeEnergy   float64 `json:"mean_fricative_energy"`
	MeanNasalLiquidEnergy float64 `json:"mean_nasal_liquid_energy"`
	PhonemeDensity        float64 `json:"phoneme_density"`
}

// AggressiveIndicators point at emphatic, forceful delivery.
type AggressiveIndicators struct {
	PlosiveCount        int     `json:"plosive_count"`
	MeanPlosiveStrength float64 `json:"mean_plosive_strength"`
	HighSibilance       float64 `json:"high_sibilance"`
}

// TenseIndicators track sibilant energy.
type TenseIndicators struct {
	MeanSibilance float64 `json:"mean_sibilance"`
	SibilantPeaks int     `json:"sibilant_peaks"`
}

// SmoothIndicators point at sustained, melodic delivery.
type SmoothIndicators struct {
	MeanNasalLiquid float64 `json:"mean_nasal_liquid"`
	LowPlosiveRate  float64 `json:"low_plosive_rate"`
}

// DynamicIndicators measure articulation rate and loudness movement.
type DynamicIndicators struct {
	PhonemeDensity     float64 `json:"phoneme_density"`
	IntensityVariation float64 `json:"intensity_variation"`
}

// EmotionalIndicators buckets the phonetic metrics by the delivery quality
// they point at.
type EmotionalIndicators struct {
	Aggressive AggressiveIndicators `json:"aggressive"`
	Tense      TenseIndicators      `json:"tense"`
	Smooth     SmoothIndicators     `json:"smooth"`
	Dynamic    DynamicIndicators    `json:"dynamic"`
}

// PhoneticFrame is one time-aligned row of the band and onset timelines.
type PhoneticFrame struct {
	Time        float64 `json:"time"`
	Sibilance   float64 `json:"sibilance"`
	Fricative   float64 `json:"fricative"`
	NasalLiquid float64 `json:"nasal_liquid"`
	Onset       float64 `json:"onset_strength"`
}

// PhoneticTimelines carries the normalized band energies and onset strength.
type PhoneticTimelines struct {
	Sibilant    Timeline `json:"sibilant"`
	Fricative   Timeline `json:"fricative"`
	NasalLiquid Timeline `json:"nasal_liquid"`
	Onset       Timeline `json:"onset_strength"`
}

// PhoneticReport is the output of the phonetic pattern analyzer.
type PhoneticReport struct {
	Duration        float64             `json:"duration"`
	Summary         PhoneticSummary     `json:"summary"`
	Indicators      EmotionalIndicators `json:"emotional_indicators"`
	Interpretations []string            `json:"interpretations"`
	Timelines       PhoneticTimelines   `json:"timelines"`
	Frames          []PhoneticFrame     `json:"phonetic_timeline"`
	Plosives        []Event             `json:"plosive_events"`
	NotablePlosives []Event             `json:"notable_plosives"`
}

// BandTimeline returns the band's per-frame mean magnitude, min-max
// normalized to [0, 1].
func BandTimeline(fs *FrameSeries, band FrequencyBand) Timeline {
	return fs.Timeline(band.Name, dsp.MinMaxNormalize(bandEnergy(fs, band), dsp.NormEpsilon))
}

// DetectPlosives returns the frames where onset strength peaks at or above
// the pct percentile, at least distance frames apart.
func DetectPlosives(onset []float64, pct float64, distance int) []int {
	return dsp.FindPeaks(onset, dsp.PeakOptions{
		MinHeight: dsp.Percentile(onset, pct),
		Distance:  distance,
	})
}

// AnalyzePhonetic approximates articulation classes from band energies and
// onset bursts, then tags the delivery with rule-based interpretations.
func AnalyzePhonetic(ctx context.Context, fs *FrameSeries, cfg PhoneticConfig) (*PhoneticReport, error) {
	if fs.Len() < 2 {
		return nil, fmt.Errorf("%w: phonetic analysis needs 2 frames, got %d", ErrInsufficientData, fs.Len())
	}

	sibilant := BandTimeline(fs, cfg.Bands.Sibilant)
	fricative := BandTimeline(fs, cfg.Bands.Fricative)
	nasal := BandTimeline(fs, cfg.Bands.NasalLiquid)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	onset := fs.Onsets()
	times := fs.Times()
	plosiveIdx := DetectPlosives(onset, cfg.PlosivePercentile, spacingFrames(cfg.PlosiveSpacing, fs.FrameRate()))
	plosives := eventsAt(plosiveIdx, times, onset)

	strengths := make([]float64, len(plosives))
	for i, p := range plosives {
		strengths[i] = p.Magnitude
	}
	meanStrength := 0.0
	if len(strengths) > 0 {
		meanStrength = stat.Mean(strengths, nil)
	}

	rate := 0.0
	if fs.Duration > 0 {
		rate = float64(len(plosives)) / fs.Duration
	}

	summary := PhoneticSummary{
		PlosiveCount:          len(plosives),
		PlosivesPerSecond:     rate,
		MeanSibilance:         sibilant.Mean(),
		MeanFricativeEnergy:   fricative.Mean(),
		MeanNasalLiquidEnergy: nasal.Mean(),
		PhonemeDensity:        stat.Mean(onset, nil),
	}

	indicators := EmotionalIndicators{
		Aggressive: AggressiveIndicators{
			PlosiveCount:        len(plosives),
			MeanPlosiveStrength: meanStrength,
			HighSibilance:       dsp.MeanAbove(sibilant.Values, highSibilanceLevel),
		},
		Tense: TenseIndicators{
			MeanSibilance: summary.MeanSibilance,
			SibilantPeaks: dsp.CountAbove(sibilant.Values, sibilantPeakLevel),
		},
		Smooth: SmoothIndicators{
			MeanNasalLiquid: summary.MeanNasalLiquidEnergy,
			LowPlosiveRate:  rate,
		},
		Dynamic: DynamicIndicators{
			PhonemeDensity:     summary.PhonemeDensity,
			IntensityVariation: stat.PopStdDev(fs.RMS(), nil),
		},
	}

	frames := make([]PhoneticFrame, fs.Len())
	for i := range frames {
		frames[i] = PhoneticFrame{
			Time:        times[i],
			Sibilance:   sibilant.Values[i],
			Fricative:   fricative.Values[i],
			NasalLiquid: nasal.Values[i],
			Onset:       onset[i],
		}
	}

	return &PhoneticReport{
		Duration:        fs.Duration,
		Summary:         summary,
		Indicators:      indicators,
		Interpretations: Interpret(indicators),
		Timelines: PhoneticTimelines{
			Sibilant:    sibilant,
			Fricative:   fricative,
			NasalLiquid: nasal,
			Onset:       newTimeline("onset_strength", times, onset),
		},
		Frames:          frames,
		Plosives:        plosives,
		NotablePlosives: firstN(plosives, cfg.MaxNotablePlosives),
	}, nil
}
