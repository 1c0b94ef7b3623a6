// SPDX-License-Identifier: MIT
package analysis

import "context"

// Analyzer is the standard interface for the per-clip analyzers that read a
// shared FrameSeries. Implementations must not mutate fs or w, so several
// analyzers can run over the same input concurrently.
type Analyzer[T any] interface {
	// Name identifies the analyzer in logs and summaries.
	Name() string
	// Analyze produces the analyzer's report for one clip.
	Analyze(ctx context.Context, fs *FrameSeries, w Waveform) (*T, error)
}

// SpectralAnalyzer adapts AnalyzeSpectral to Analyzer.
type SpectralAnalyzer struct{ Config SpectralConfig }

// CadenceAnalyzer adapts AnalyzeCadence to Analyzer.
type CadenceAnalyzer struct{ Config CadenceConfig }

// PhoneticAnalyzer adapts AnalyzePhonetic to Analyzer.
type PhoneticAnalyzer struct{ Config PhoneticConfig }

// Compile-time checks for interface implementations.
var _ Analyzer[SpectralReport] = SpectralAnalyzer{}
var _ Analyzer[CadenceReport] = CadenceAnalyzer{}
var _ Analyzer[PhoneticReport] = PhoneticAnalyzer{}

func (SpectralAnalyzer) Name() string { return "spectral" }

func (a SpectralAnalyzer) Analyze(ctx context.Context, fs *FrameSeries, w Waveform) (*SpectralReport, error) {
	return AnalyzeSpectral(ctx, fs, w, a.Config)
}

func (CadenceAnalyzer) Name() string { return "cadence" }

func (a CadenceAnalyzer) Analyze(ctx context.Context, fs *FrameSeries, _ Waveform) (*CadenceReport, error) {
	return AnalyzeCadence(ctx, fs, a.Config)
}

func (PhoneticAnalyzer) Name() string { return "phonetic" }

func (a PhoneticAnalyzer) Analyze(ctx context.Context, fs *FrameSeries, _ Waveform) (*PhoneticReport, error) {
	return AnalyzePhonetic(ctx, fs, a.Config)
}
