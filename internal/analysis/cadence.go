// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"fmt"

	"earshot/internal/dsp"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// IntensityMetrics summarizes the smoothed intensity timeline.
type IntensityMetrics struct {
	Mean         float64 `json:"mean"`
	Max          float64 `json:"max"`
	Min          float64 `json:"min"`
	DynamicRange float64 `json:"dynamic_range"`
	Variance     float64 `json:"variance"`
}

// TensionMetrics summarizes the normalized tension and consonance timelines.
type TensionMetrics struct {
	MeanTension    float64 `json:"mean_tension"`
	MaxTension     float64 `json:"max_tension"`
	MeanConsonance float64 `json:"mean_consonance"`
}

// CadenceMoments are the detected events, each list in time order.
type CadenceMoments struct {
	Peaks           []Event `json:"peaks"`
	Valleys         []Event `json:"valleys"`
	TensionReleases []Event `json:"tension_releases"`
	TensionBuildups []Event `json:"tension_buildups"`
}

// CadenceTimelines are time-aligned with the source FrameSeries.
type CadenceTimelines struct {
	Intensity         Timeline `json:"intensity"`
	SmoothedIntensity Timeline `json:"smoothed_intensity"`
	Gradient          Timeline `json:"gradient"`
	Tension           Timeline `json:"tension"`
	Consonance        Timeline `json:"consonance"`
	Onset             Timeline `json:"onset"`
}

// CadenceReport is the output of the emotional cadence analyzer.
type CadenceReport struct {
	Arc       ArcClassification `json:"emotional_arc"`
	Intensity IntensityMetrics  `json:"intensity_metrics"`
	Tension   TensionMetrics    `json:"tension_metrics"`
	Moments   CadenceMoments    `json:"key_moments"`
	Timelines CadenceTimelines  `json:"timelines"`
}

// SmoothIntensity applies an order-2 Savitzky-Golay filter whose window is
// max(3, n/100) rounded up to odd.
func SmoothIntensity(rms []float64) ([]float64, error) {
	return dsp.SavitzkyGolay(rms, max(3, len(rms)/100), 2)
}

// TensionTimeline returns var(chroma)*std(chroma) per frame, min-max
// normalized to [0, 1].
func TensionTimeline(chroma [][12]float64) []float64 {
	raw := make([]float64, len(chroma))
	for i, c := range chroma {
		v := stat.PopVariance(c[:], nil)
		raw[i] = v * stat.PopStdDev(c[:], nil)
	}
	return dsp.MinMaxNormalize(raw, dsp.NormEpsilon)
}

// ConsonanceTimeline returns 1 - tension pointwise.
func ConsonanceTimeline(tension []float64) []float64 {
	out := make([]float64, len(tension))
	for i, t := range tension {
		out[i] = 1 - t
	}
	return out
}

// DetectPeaksAndValleys finds local maxima at or above the peakPct
// percentile and local minima at or below the valleyPct percentile, each at
// least distance frames apart. A constant series yields neither.
func DetectPeaksAndValleys(x []float64, distance int, peakPct, valleyPct float64) (peaks, valleys []int) {
	peaks = dsp.FindPeaks(x, dsp.PeakOptions{
		MinHeight: dsp.Percentile(x, peakPct),
		Distance:  distance,
	})
	valleys = dsp.FindPeaks(dsp.Negate(x), dsp.PeakOptions{
		MinHeight: -dsp.Percentile(x, valleyPct),
		Distance:  distance,
	})
	return peaks, valleys
}

// DetectTransitions scans consecutive frames of a normalized tension series.
// A fall greater than threshold is a release and a rise greater than
// threshold is a buildup; both are reported at the later frame with the size
// of the change.
func DetectTransitions(tension []float64, threshold float64) (releases, buildups []int, deltas []float64) {
	deltas = make([]float64, len(tension))
	for i := 1; i < len(tension); i++ {
		d := tension[i] - tension[i-1]
		switch {
		case -d > threshold:
			releases = append(releases, i)
			deltas[i] = -d
		case d > threshold:
			buildups = append(buildups, i)
			deltas[i] = d
		}
	}
	return releases, buildups, deltas
}

// AnalyzeCadence derives the intensity, tension and consonance timelines of
// a clip, its key moments and its emotional arc.
func AnalyzeCadence(ctx context.Context, fs *FrameSeries, cfg CadenceConfig) (*CadenceReport, error) {
	if fs.Len() < 3 {
		return nil, fmt.Errorf("%w: cadence needs 3 frames, got %d", ErrInsufficientData, fs.Len())
	}

	rms := fs.RMS()
	smooth, err := SmoothIntensity(rms)
	if err != nil {
		return nil, err
	}
	gradient := dsp.Gradient(smooth)
	tension := TensionTimeline(fs.Chroma())
	consonance := ConsonanceTimeline(tension)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	times := fs.Times()
	distance := spacingFrames(cfg.PeakSpacing, fs.FrameRate())
	peaks, valleys := DetectPeaksAndValleys(smooth, distance, cfg.PeakPercentile, cfg.ValleyPercentile)
	releases, buildups, deltas := DetectTransitions(tension, cfg.TransitionThreshold)

	arc, err := ClassifyArc(smooth, cfg.ArcThreshold)
	if err != nil {
		return nil, err
	}

	return &CadenceReport{
		Arc: arc,
		Intensity: IntensityMetrics{
			Mean:         stat.Mean(smooth, nil),
			Max:          floats.Max(smooth),
			Min:          floats.Min(smooth),
			DynamicRange: floats.Max(smooth) - floats.Min(smooth),
			Variance:     stat.PopVariance(smooth, nil),
		},
		Tension: TensionMetrics{
			MeanTension:    stat.Mean(tension, nil),
			MaxTension:     floats.Max(tension),
			MeanConsonance: stat.Mean(consonance, nil),
		},
		Moments: CadenceMoments{
			Peaks:           eventsAt(peaks, times, smooth),
			Valleys:         eventsAt(valleys, times, smooth),
			TensionReleases: firstN(eventsAt(releases, times, deltas), cfg.MaxTransitions),
			TensionBuildups: firstN(eventsAt(buildups, times, deltas), cfg.MaxTransitions),
		},
		Timelines: CadenceTimelines{
			Intensity:         newTimeline("intensity", times, rms),
			SmoothedIntensity: newTimeline("smoothed_intensity", times, smooth),
			Gradient:          newTimeline("intensity_gradient", times, gradient),
			Tension:           newTimeline("tension", times, tension),
			Consonance:        newTimeline("consonance", times, consonance),
			Onset:             newTimeline("onset_strength", times, fs.Onsets()),
		},
	}, nil
}
