// SPDX-License-Identifier: MIT

// Package synthesis merges the per-analyzer reports into one qualitative
// summary. It never fails: sections whose source report is unavailable are
// omitted and their cause recorded.
package synthesis

import (
	"earshot/internal/analysis"
)

// Section names as they appear in the summary.
const (
	SectionHarmonic  = "harmonic_quality"
	SectionEmotional = "emotional_journey"
	SectionVocal     = "vocal_character"
)

// Status says whether a section was built.
type Status string

const (
	StatusComputed Status = "computed"
	StatusOmitted  Status = "omitted"
)

// SectionStatus records the outcome of one section.
type SectionStatus struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Cause  string `json:"cause,omitempty"`
}

// HarmonicQuality pairs the consonance score with its tier sentence.
type HarmonicQuality struct {
	ConsonanceScore float64 `json:"consonance_score"`
	Interpretation  string  `json:"interpretation"`
}

// IntensityProgression holds the mean intensity of each arc segment.
type IntensityProgression struct {
	Beginning float64 `json:"beginning"`
	Middle    float64 `json:"middle"`
	End       float64 `json:"end"`
}

// MomentCounts counts the cadence events.
type MomentCounts struct {
	Peaks         int `json:"peaks"`
	Valleys       int `json:"valleys"`
	MajorReleases int `json:"major_releases"`
}

// EmotionalJourney describes the intensity arc.
type EmotionalJourney struct {
	ArcType     analysis.ArcType     `json:"arc_type"`
	Description string               `json:"description"`
	Progression IntensityProgression `json:"intensity_progression"`
	KeyMoments  MomentCounts         `json:"key_moments"`
}

// PhoneticMetrics are the phonetic figures quoted in the summary.
type PhoneticMetrics struct {
	PlosiveRate    float64 `json:"plosive_rate"`
	SibilanceLevel float64 `json:"sibilance_level"`
	PhonemeDensity float64 `json:"phoneme_density"`
}

// VocalCharacter is the delivery style and the phonetic interpretations.
type VocalCharacter struct {
	DeliveryStyle string          `json:"delivery_style"`
	EmotionalTone []string        `json:"emotional_tone"`
	Metrics       PhoneticMetrics `json:"phonetic_metrics"`
}

// Summary is the integrated interpretation of one clip. A nil section was
// omitted; Sections says why.
type Summary struct {
	Harmonic          *HarmonicQuality  `json:"harmonic_quality,omitempty"`
	Emotional         *EmotionalJourney `json:"emotional_journey,omitempty"`
	Vocal             *VocalCharacter   `json:"vocal_character,omitempty"`
	OverallImpression []string          `json:"overall_impression"`
	Sections          []SectionStatus   `json:"sections"`
}

// Synthesize builds a Summary from whichever reports are available.
func Synthesize(
	spectral analysis.Result[analysis.SpectralReport],
	cadence analysis.Result[analysis.CadenceReport],
	phonetic analysis.Result[analysis.PhoneticReport],
) *Summary {
	s := &Summary{}
	var ev evidence

	if r := spectral.Value(); spectral.Available() {
		score := r.Harmonic.ConsonanceScore
		s.Harmonic = &HarmonicQuality{
			ConsonanceScore: score,
			Interpretation:  InterpretConsonance(score),
		}
		ev.hasConsonance, ev.consonance = true, score
	}
	s.record(SectionHarmonic, spectral.Available(), spectral.Cause())

	if r := cadence.Value(); cadence.Available() {
		s.Emotional = &EmotionalJourney{
			ArcType:     r.Arc.Type,
			Description: r.Arc.Description,
			Progression: IntensityProgression{
				Beginning: r.Arc.Early,
				Middle:    r.Arc.Mid,
				End:       r.Arc.Late,
			},
			KeyMoments: MomentCounts{
				Peaks:         len(r.Moments.Peaks),
				Valleys:       len(r.Moments.Valleys),
				MajorReleases: len(r.Moments.TensionReleases),
			},
		}
		ev.hasArc, ev.arc = true, r.Arc.Type
	}
	s.record(SectionEmotional, cadence.Available(), cadence.Cause())

	if r := phonetic.Value(); phonetic.Available() {
		s.Vocal = &VocalCharacter{
			DeliveryStyle: DeliveryStyle(r.Summary),
			EmotionalTone: r.Interpretations,
			Metrics: PhoneticMetrics{
				PlosiveRate:    r.Summary.PlosivesPerSecond,
				SibilanceLevel: r.Summary.MeanSibilance,
				PhonemeDensity: r.Summary.PhonemeDensity,
			},
		}
		ev.interpretations = r.Interpretations
	}
	s.record(SectionVocal, phonetic.Available(), phonetic.Cause())

	s.OverallImpression = overallImpression(ev)
	return s
}

func (s *Summary) record(name string, ok bool, cause string) {
	st := SectionStatus{Name: name, Status: StatusComputed}
	if !ok {
		st.Status, st.Cause = StatusOmitted, cause
	}
	s.Sections = append(s.Sections, st)
}

// Section returns the status of the named section.
func (s *Summary) Section(name string) (SectionStatus, bool) {
	for _, st := range s.Sections {
		if st.Name == name {
			return st, true
		}
	}
	return SectionStatus{}, false
}

// Omitted lists the sections that could not be built.
func (s *Summary) Omitted() []SectionStatus {
	var out []SectionStatus
	for _, st := range s.Sections {
		if st.Status == StatusOmitted {
			out = append(out, st)
		}
	}
	return out
}
