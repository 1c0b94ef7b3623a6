// SPDX-License-Identifier: MIT
package analysis

import "math"

// SpectralComparison holds absolute differences between two tracks'
// spectral reports.
type SpectralComparison struct {
	TempoDifference      float64 `json:"tempo_difference"`
	CentroidDifference   float64 `json:"centroid_difference"`
	BandwidthDifference  float64 `json:"bandwidth_difference"`
	RolloffDifference    float64 `json:"rolloff_difference"`
	EnergyDifference     float64 `json:"energy_difference"`
	ConsonanceDifference float64 `json:"consonance_difference"`
	MoreConsonant        string  `json:"more_consonant"`
}

// CompareSpectral contrasts two reports. MoreConsonant names "first",
// "second" or "equal".
func CompareSpectral(a, b *SpectralReport) SpectralComparison {
	cmp := SpectralComparison{
		TempoDifference:      math.Abs(a.Tempo - b.Tempo),
		CentroidDifference:   math.Abs(a.SpectralCentroid - b.SpectralCentroid),
		BandwidthDifference:  math.Abs(a.SpectralBandwidth - b.SpectralBandwidth),
		RolloffDifference:    math.Abs(a.SpectralRolloff - b.SpectralRolloff),
		EnergyDifference:     math.Abs(a.Energy.Mean - b.Energy.Mean),
		ConsonanceDifference: math.Abs(a.Harmonic.ConsonanceScore - b.Harmonic.ConsonanceScore),
	}
	switch {
	case a.Harmonic.ConsonanceScore > b.Harmonic.ConsonanceScore:
		cmp.MoreConsonant = "first"
	case a.Harmonic.ConsonanceScore < b.Harmonic.ConsonanceScore:
		cmp.MoreConsonant = "second"
	default:
		cmp.MoreConsonant = "equal"
	}
	return cmp
}
