// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"

	"earshot/pkg/bitint"
)

// Default tuning values.
const (
	DefaultMinHopSize   = 512
	DefaultTargetFrames = 100
	DefaultMinFrameSize = 2048
	DefaultMaxFrameSize = 8192

	DefaultRolloffThreshold  = 0.85
	DefaultMinTempoBPM       = 40.0
	DefaultMaxTempoBPM       = 240.0
	DefaultTempoTolerance    = 0.0
	DefaultTempoHopSize      = 512
	DefaultTempoFrameSize    = 2048
	DefaultPitchMinHz        = 150.0
	DefaultPitchMaxHz        = 4000.0
	DefaultPitchThreshold    = 0.1
	DefaultConsonanceEpsilon = 0.01

	DefaultPeakPercentile      = 75.0
	DefaultValleyPercentile    = 25.0
	DefaultPeakSpacing         = 1.0
	DefaultTransitionThreshold = 0.15
	DefaultMaxTransitions      = 10
	DefaultArcThreshold        = 0.10

	DefaultPlosivePercentile  = 85.0
	DefaultPlosiveSpacing     = 0.5
	DefaultMaxNotablePlosives = 20
)

// FrameConfig controls how a waveform is cut into frames. A zero HopSize
// derives the hop from TargetFrames; a zero FrameSize derives the FFT size
// from the hop, clamped to [MinFrameSize, MaxFrameSize].
type FrameConfig struct {
	HopSize      int        `yaml:"hop_size"`
	MinHopSize   int        `yaml:"min_hop_size"`
	TargetFrames int        `yaml:"target_frames"`
	FrameSize    int        `yaml:"frame_size"`
	MinFrameSize int        `yaml:"min_frame_size"`
	MaxFrameSize int        `yaml:"max_frame_size"`
	Window       WindowFunc `yaml:"window"`
}

// SpectralConfig tunes the spectral descriptor extractor.
type SpectralConfig struct {
	RolloffThreshold  float64 `yaml:"rolloff_threshold"`
	MinTempoBPM       float64 `yaml:"min_tempo_bpm"`
	MaxTempoBPM       float64 `yaml:"max_tempo_bpm"`
	TempoTolerance    float64 `yaml:"tempo_tolerance"`
	TempoHopSize      int     `yaml:"tempo_hop_size"`
	TempoFrameSize    int     `yaml:"tempo_frame_size"`
	PitchMinHz        float64 `yaml:"pitch_min_hz"`
	PitchMaxHz        float64 `yaml:"pitch_max_hz"`
	PitchThreshold    float64 `yaml:"pitch_threshold"`
	ConsonanceEpsilon float64 `yaml:"consonance_epsilon"`
}

// CadenceConfig tunes the emotional cadence analyzer. Spacing is in seconds.
type CadenceConfig struct {
	PeakPercentile      float64 `yaml:"peak_percentile"`
	ValleyPercentile    float64 `yaml:"valley_percentile"`
	PeakSpacing         float64 `yaml:"peak_spacing_seconds"`
	TransitionThreshold float64 `yaml:"transition_threshold"`
	MaxTransitions      int     `yaml:"max_transitions"`
	ArcThreshold        float64 `yaml:"arc_threshold"`
}

// PhoneticConfig tunes the phonetic pattern analyzer. Spacing is in seconds.
type PhoneticConfig struct {
	PlosivePercentile  float64       `yaml:"plosive_percentile"`
	PlosiveSpacing     float64       `yaml:"plosive_spacing_seconds"`
	MaxNotablePlosives int           `yaml:"max_notable_plosives"`
	Bands              PhoneticBands `yaml:"bands"`
}

// Config groups the per-analyzer settings.
type Config struct {
	Frame    FrameConfig    `yaml:"frame"`
	Spectral SpectralConfig `yaml:"spectral"`
	Cadence  CadenceConfig  `yaml:"cadence"`
	Phonetic PhoneticConfig `yaml:"phonetic"`
}

// DefaultConfig returns the documented defaults for every analyzer.
func DefaultConfig() Config {
	return Config{
		Frame: FrameConfig{
			MinHopSize:   DefaultMinHopSize,
			TargetFrames: DefaultTargetFrames,
			MinFrameSize: DefaultMinFrameSize,
			MaxFrameSize: DefaultMaxFrameSize,
			Window:       Hann,
		},
		Spectral: SpectralConfig{
			RolloffThreshold:  DefaultRolloffThreshold,
			MinTempoBPM:       DefaultMinTempoBPM,
			MaxTempoBPM:       DefaultMaxTempoBPM,
			TempoTolerance:    DefaultTempoTolerance,
			TempoHopSize:      DefaultTempoHopSize,
			TempoFrameSize:    DefaultTempoFrameSize,
			PitchMinHz:        DefaultPitchMinHz,
			PitchMaxHz:        DefaultPitchMaxHz,
			PitchThreshold:    DefaultPitchThreshold,
			ConsonanceEpsilon: DefaultConsonanceEpsilon,
		},
		Cadence: CadenceConfig{
			PeakPercentile:      DefaultPeakPercentile,
			ValleyPercentile:    DefaultValleyPercentile,
			PeakSpacing:         DefaultPeakSpacing,
			TransitionThreshold: DefaultTransitionThreshold,
			MaxTransitions:      DefaultMaxTransitions,
			ArcThreshold:        DefaultArcThreshold,
		},
		Phonetic: PhoneticConfig{
			PlosivePercentile:  DefaultPlosivePercentile,
			PlosiveSpacing:     DefaultPlosiveSpacing,
			MaxNotablePlosives: DefaultMaxNotablePlosives,
			Bands:              DefaultPhoneticBands(),
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Frame.Validate(); err != nil {
		return err
	}
	if err := c.Spectral.Validate(); err != nil {
		return err
	}
	if err := c.Cadence.Validate(); err != nil {
		return err
	}
	return c.Phonetic.Validate()
}

func (c FrameConfig) Validate() error {
	if c.HopSize < 0 || c.MinHopSize < 0 || c.TargetFrames < 0 {
		return fmt.Errorf("%w: frame sizes must not be negative", ErrInvalidInput)
	}
	if c.HopSize == 0 && c.TargetFrames == 0 {
		return fmt.Errorf("%w: frame.target_frames must be set when frame.hop_size is 0", ErrInvalidInput)
	}
	if c.FrameSize != 0 && !bitint.IsPowerOfTwo(c.FrameSize) {
		return fmt.Errorf("%w: frame.frame_size must be a power of 2, got %d", ErrInvalidInput, c.FrameSize)
	}
	if c.FrameSize == 0 {
		if !bitint.IsPowerOfTwo(c.MinFrameSize) || !bitint.IsPowerOfTwo(c.MaxFrameSize) {
			return fmt.Errorf("%w: frame.min_frame_size and frame.max_frame_size must be powers of 2", ErrInvalidInput)
		}
		if c.MinFrameSize > c.MaxFrameSize {
			return fmt.Errorf("%w: frame.min_frame_size %d exceeds frame.max_frame_size %d", ErrInvalidInput, c.MinFrameSize, c.MaxFrameSize)
		}
	}
	return nil
}

// layout resolves the hop and FFT size for a signal of n samples.
func (c FrameConfig) layout(n int) (hop, size int) {
	hop = c.HopSize
	if hop <= 0 {
		hop = max(c.MinHopSize, (n+c.TargetFrames-1)/c.TargetFrames, 1)
	}
	size = c.FrameSize
	if size <= 0 {
		size = bitint.Clamp(bitint.NextPowerOfTwo(hop), c.MinFrameSize, c.MaxFrameSize)
	}
	return hop, size
}

func (c SpectralConfig) Validate() error {
	if c.RolloffThreshold <= 0 || c.RolloffThreshold > 1 {
		return fmt.Errorf("%w: spectral.rolloff_threshold must be in (0, 1], got %v", ErrInvalidInput, c.RolloffThreshold)
	}
	if c.MinTempoBPM <= 0 || c.MaxTempoBPM <= c.MinTempoBPM {
		return fmt.Errorf("%w: spectral tempo range [%v, %v] is empty", ErrInvalidInput, c.MinTempoBPM, c.MaxTempoBPM)
	}
	if c.TempoTolerance < 0 || c.TempoTolerance >= 1 {
		return fmt.Errorf("%w: spectral.tempo_tolerance must be in [0, 1), got %v", ErrInvalidInput, c.TempoTolerance)
	}
	if c.TempoHopSize <= 0 || !bitint.IsPowerOfTwo(c.TempoFrameSize) {
		return fmt.Errorf("%w: spectral tempo hop must be positive and frame size a power of 2", ErrInvalidInput)
	}
	if c.PitchMinHz <= 0 || c.PitchMaxHz <= c.PitchMinHz {
		return fmt.Errorf("%w: spectral pitch range [%v, %v] is empty", ErrInvalidInput, c.PitchMinHz, c.PitchMaxHz)
	}
	if c.ConsonanceEpsilon <= 0 {
		return fmt.Errorf("%w: spectral.consonance_epsilon must be positive", ErrInvalidInput)
	}
	return nil
}

func (c CadenceConfig) Validate() error {
	if !validPercentile(c.PeakPercentile) || !validPercentile(c.ValleyPercentile) {
		return fmt.Errorf("%w: cadence percentiles must be in [0, 100]", ErrInvalidInput)
	}
	if c.PeakSpacing < 0 || c.TransitionThreshold < 0 || c.ArcThreshold < 0 {
		return fmt.Errorf("%w: cadence spacing and thresholds must not be negative", ErrInvalidInput)
	}
	if c.MaxTransitions < 0 {
		return fmt.Errorf("%w: cadence.max_transitions must not be negative", ErrInvalidInput)
	}
	return nil
}

func (c PhoneticConfig) Validate() error {
	if !validPercentile(c.PlosivePercentile) {
		return fmt.Errorf("%w: phonetic.plosive_percentile must be in [0, 100]", ErrInvalidInput)
	}
	if c.PlosiveSpacing < 0 || c.MaxNotablePlosives < 0 {
		return fmt.Errorf("%w: phonetic spacing and limits must not be negative", ErrInvalidInput)
	}
	for _, b := range c.Bands.All() {
		if b.LowHz < 0 || b.HighHz <= b.LowHz {
			return fmt.Errorf("%w: phonetic band %q has an empty range", ErrInvalidInput, b.Name)
		}
	}
	return nil
}

func validPercentile(p float64) bool {
	return p >= 0 && p <= 100
}

// spacingFrames converts a spacing in seconds to a whole number of frames,
// never less than one.
func spacingFrames(seconds, frameRate float64) int {
	return max(1, int(seconds*frameRate))
}
