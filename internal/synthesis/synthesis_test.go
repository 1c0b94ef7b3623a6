// SPDX-License-Identifier: MIT
package synthesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"earshot/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spectralWith(consonance float64) analysis.Result[analysis.SpectralReport] {
	r := &analysis.SpectralReport{}
	r.Harmonic.ConsonanceScore = consonance
	return analysis.Ok(r)
}

func cadenceWith(arc analysis.ArcType) analysis.Result[analysis.CadenceReport] {
	return analysis.Ok(&analysis.CadenceReport{
		Arc: analysis.ArcClassification{
			Type:        arc,
			Description: arc.Description(),
			Early:       0.1,
			Mid:         0.5,
			Late:        0.9,
		},
		Moments: analysis.CadenceMoments{
			Peaks:           make([]analysis.Event, 2),
			Valleys:         make([]analysis.Event, 1),
			TensionReleases: make([]analysis.Event, 3),
		},
	})
}

func phoneticWith(summary analysis.PhoneticSummary, interpretations ...string) analysis.Result[analysis.PhoneticReport] {
	return analysis.Ok(&analysis.PhoneticReport{
		Summary:         summary,
		Interpretations: interpretations,
	})
}

func TestInterpretConsonance(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{100, "Highly consonant - mathematically stable, harmonically pure"},
		{40.01, "Highly consonant - mathematically stable, harmonically pure"},
		{40, "Moderately consonant - balanced harmonic relationships"},
		{25.5, "Moderately consonant - balanced harmonic relationships"},
		{25, "Mixed consonance/dissonance - dynamic tension"},
		{15, "Dissonant - complex, tense harmonic relationships"},
		{0, "Dissonant - complex, tense harmonic relationships"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			assert.Equal(t, tt.expected, InterpretConsonance(tt.score))
		})
	}
}

func TestDeliveryStyle(t *testing.T) {
	tests := []struct {
		name     string
		summary  analysis.PhoneticSummary
		expected string
	}{
		{"Aggressive", analysis.PhoneticSummary{PlosivesPerSecond: 3.5, PhonemeDensity: 20}, "Aggressive, rapid delivery with percussive emphasis"},
		{"Emphatic", analysis.PhoneticSummary{PlosivesPerSecond: 3.5, PhonemeDensity: 10}, "Emphatic delivery with strong articulation"},
		{"Dense", analysis.PhoneticSummary{PlosivesPerSecond: 1, PhonemeDensity: 16}, "Fast-paced, dense vocal delivery"},
		{"Smooth", analysis.PhoneticSummary{PlosivesPerSecond: 1, MeanNasalLiquidEnergy: 0.6}, "Smooth, melodic vocal style"},
		{"Moderate Rate", analysis.PhoneticSummary{PlosivesPerSecond: 1.8, MeanNasalLiquidEnergy: 0.6}, "Balanced, moderate delivery"},
		{"Zero", analysis.PhoneticSummary{}, "Balanced, moderate delivery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeliveryStyle(tt.summary))
		})
	}
}

func TestOverallImpression(t *testing.T) {
	tests := []struct {
		name     string
		ev       evidence
		expected []string
	}{
		{"Nothing", evidence{}, []string{DefaultImpression}},
		{"Middling Consonance", evidence{hasConsonance: true, consonance: 20}, []string{DefaultImpression}},
		{"Zero Consonance Without Report", evidence{consonance: 0}, []string{DefaultImpression}},
		{"Elegant", evidence{hasConsonance: true, consonance: 35}, []string{"Harmonically elegant with clear mathematical relationships"}},
		{"Complex", evidence{hasConsonance: true, consonance: 10}, []string{"Harmonically complex with sophisticated tension patterns"}},
		{"Building", evidence{hasArc: true, arc: analysis.ArcBuilding}, []string{"Progressive emotional buildup toward climax"}},
		{"Peak", evidence{hasArc: true, arc: analysis.ArcPeak}, []string{"Dramatic mid-point climax with surrounding dynamics"}},
		{"Cyclical", evidence{hasArc: true, arc: analysis.ArcCyclical}, []string{DefaultImpression}},
		{
			"Case Insensitive Phonetics",
			evidence{interpretations: []string{"AGGRESSIVE bursts", "High nasal/liquid content suggests smoother, more melodic vocals"}},
			[]string{"Forceful, intense vocal delivery", "Flowing, sustained vocal approach"},
		},
		{
			"Everything In Order",
			evidence{
				hasConsonance:   true,
				consonance:      50,
				hasArc:          true,
				arc:             analysis.ArcBuilding,
				interpretations: []string{"High plosive density suggests aggressive or emphatic delivery", "Melodic"},
			},
			[]string{
				"Harmonically elegant with clear mathematical relationships",
				"Progressive emotional buildup toward climax",
				"Forceful, intense vocal delivery",
				"Flowing, sustained vocal approach",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, overallImpression(tt.ev))
		})
	}
}

func TestSynthesizeAllAvailable(t *testing.T) {
	s := Synthesize(
		spectralWith(45),
		cadenceWith(analysis.ArcBuilding),
		phoneticWith(analysis.PhoneticSummary{PlosivesPerSecond: 2.5, MeanSibilance: 0.3, PhonemeDensity: 4},
			"High plosive density suggests aggressive or emphatic delivery"),
	)

	require.NotNil(t, s.Harmonic)
	assert.InDelta(t, 45.0, s.Harmonic.ConsonanceScore, 1e-12)
	assert.Equal(t, "Highly consonant - mathematically stable, harmonically pure", s.Harmonic.Interpretation)

	require.NotNil(t, s.Emotional)
	assert.Equal(t, analysis.ArcBuilding, s.Emotional.ArcType)
	assert.Equal(t, IntensityProgression{Beginning: 0.1, Middle: 0.5, End: 0.9}, s.Emotional.Progression)
	assert.Equal(t, MomentCounts{Peaks: 2, Valleys: 1, MajorReleases: 3}, s.Emotional.KeyMoments)

	require.NotNil(t, s.Vocal)
	assert.Equal(t, "Emphatic delivery with strong articulation", s.Vocal.DeliveryStyle)
	assert.Equal(t, PhoneticMetrics{PlosiveRate: 2.5, SibilanceLevel: 0.3, PhonemeDensity: 4}, s.Vocal.Metrics)
	assert.Len(t, s.Vocal.EmotionalTone, 1)

	assert.Equal(t, []string{
		"Harmonically elegant with clear mathematical relationships",
		"Progressive emotional buildup toward climax",
		"Forceful, intense vocal delivery",
	}, s.OverallImpression)
	assert.Empty(t, s.Omitted())
	assert.Len(t, s.Sections, 3)
}

func TestSynthesizeWithoutPhonetics(t *testing.T) {
	cause := fmt.Errorf("%w: phonetic analysis needs 2 frames, got 1", analysis.ErrInsufficientData)

	s := Synthesize(
		spectralWith(30),
		cadenceWith(analysis.ArcPeak),
		analysis.Fail[analysis.PhoneticReport](cause),
	)

	assert.NotNil(t, s.Harmonic)
	assert.NotNil(t, s.Emotional)
	assert.Nil(t, s.Vocal)
	assert.NotEmpty(t, s.OverallImpression)

	st, ok := s.Section(SectionVocal)
	require.True(t, ok)
	assert.Equal(t, StatusOmitted, st.Status)
	assert.Equal(t, cause.Error(), st.Cause)

	st, ok = s.Section(SectionHarmonic)
	require.True(t, ok)
	assert.Equal(t, StatusComputed, st.Status)
	assert.Empty(t, st.Cause)

	assert.Equal(t, []SectionStatus{{Name: SectionVocal, Status: StatusOmitted, Cause: cause.Error()}}, s.Omitted())

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "harmonic_quality")
	assert.Contains(t, decoded, "emotional_journey")
	assert.NotContains(t, decoded, "vocal_character")
}

func TestSynthesizeNothingAvailable(t *testing.T) {
	s := Synthesize(
		analysis.Fail[analysis.SpectralReport](errors.New("decoder gave up")),
		analysis.Fail[analysis.CadenceReport](nil),
		analysis.Result[analysis.PhoneticReport]{},
	)

	assert.Nil(t, s.Harmonic)
	assert.Nil(t, s.Emotional)
	assert.Nil(t, s.Vocal)
	assert.Equal(t, []string{DefaultImpression}, s.OverallImpression)
	require.Len(t, s.Omitted(), 3)
	assert.Equal(t, "decoder gave up", s.Omitted()[0].Cause)
	assert.Equal(t, analysis.ErrInsufficientData.Error(), s.Omitted()[1].Cause)

	_, ok := s.Section("nope")
	assert.False(t, ok)
}
