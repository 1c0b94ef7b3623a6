// SPDX-License-Identifier: MIT
package analysis

// FrequencyBand defines the name and frequency range for an energy band.
// Both edges are inclusive.
type FrequencyBand struct {
	Name   string  `yaml:"name" json:"name"`
	LowHz  float64 `yaml:"low_hz" json:"low_hz"`
	HighHz float64 `yaml:"high_hz" json:"high_hz"`
}

// PhoneticBands are the spectral regions used as articulation proxies.
type PhoneticBands struct {
	Sibilant    FrequencyBand `yaml:"sibilant"`
	Fricative   FrequencyBand `yaml:"fricative"`
	NasalLiquid FrequencyBand `yaml:"nasal_liquid"`
}

// DefaultPhoneticBands returns the s/sh, f/th and m/n/l/r regions.
func DefaultPhoneticBands() PhoneticBands {
	return PhoneticBands{
		Sibilant:    FrequencyBand{Name: "sibilant", LowHz: 4000, HighHz: 10000},
		Fricative:   FrequencyBand{Name: "fricative", LowHz: 2000, HighHz: 6000},
		NasalLiquid: FrequencyBand{Name: "nasal_liquid", LowHz: 200, HighHz: 1500},
	}
}

// All returns the bands in report order.
func (b PhoneticBands) All() []FrequencyBand {
	return []FrequencyBand{b.Sibilant, b.Fricative, b.NasalLiquid}
}

// binRange returns the half-open bin interval [lo, hi) whose centre
// frequencies fall inside the band. An empty interval means the band lies
// beyond the spectrum.
func (band FrequencyBand) binRange(fs *FrameSeries) (lo, hi int) {
	bins := fs.Bins()
	lo, hi = bins, bins
	for k := range bins {
		f := fs.FrequencyForBin(k)
		if f >= band.LowHz && lo == bins {
			lo = k
		}
		if f > band.HighHz {
			hi = k
			break
		}
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// bandEnergy returns the per-frame mean magnitude inside the band. Frames
// with no bins in range report 0.
func bandEnergy(fs *FrameSeries, band FrequencyBand) []float64 {
	lo, hi := band.binRange(fs)
	out := make([]float64, fs.Len())
	if hi <= lo {
		return out
	}
	for i, frame := range fs.Frames {
		sum := 0.0
		for _, m := range frame.Magnitude[lo:hi] {
			sum += m
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
