// SPDX-License-Identifier: MIT

// Package pipeline runs the full analysis of one waveform: frame transform,
// the three analyzers in parallel, then synthesis.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"earshot/internal/analysis"
	"earshot/internal/log"
	"earshot/internal/synthesis"

	"golang.org/x/sync/errgroup"
)

var logger = log.New("pipeline")

// Layout describes the frame grid the analyzers shared.
type Layout struct {
	Duration   float64 `json:"duration"`
	SampleRate float64 `json:"sample_rate"`
	Frames     int     `json:"frames"`
	HopSize    int     `json:"hop_size"`
	FrameSize  int     `json:"frame_size"`
}

// Analysis is everything one run produces. Each report is either computed or
// carries the error that prevented it.
type Analysis struct {
	Source   string                                   `json:"source,omitempty"`
	Layout   Layout                                   `json:"layout"`
	Spectral analysis.Result[analysis.SpectralReport] `json:"spectral"`
	Cadence  analysis.Result[analysis.CadenceReport]  `json:"cadence"`
	Phonetic analysis.Result[analysis.PhoneticReport] `json:"phonetic"`
	Summary  *synthesis.Summary                       `json:"integrated_summary"`
}

// Run analyzes w. Invalid input and cancellation fail the whole run; an
// analyzer that cannot produce its report only loses its own section.
func Run(ctx context.Context, w analysis.Waveform, cfg analysis.Config) (*Analysis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	fs, err := analysis.Transform(w, cfg.Frame)
	if err != nil {
		return nil, fmt.Errorf("frame transform: %w", err)
	}
	logger.Debugf("%s built in %s", fs, time.Since(start))

	a := &Analysis{
		Layout: Layout{
			Duration:   fs.Duration,
			SampleRate: fs.SampleRate,
			Frames:     fs.Len(),
			HopSize:    fs.HopSize,
			FrameSize:  fs.FrameSize,
		},
	}

	// Analyzer failures are captured in their Result, so the group never
	// cancels siblings. Only the caller's ctx stops the run.
	var g errgroup.Group
	g.Go(func() error {
		a.Spectral = runAnalyzer(ctx, analysis.SpectralAnalyzer{Config: cfg.Spectral}, fs, w)
		return nil
	})
	g.Go(func() error {
		a.Cadence = runAnalyzer(ctx, analysis.CadenceAnalyzer{Config: cfg.Cadence}, fs, w)
		return nil
	})
	g.Go(func() error {
		a.Phonetic = runAnalyzer(ctx, analysis.PhoneticAnalyzer{Config: cfg.Phonetic}, fs, w)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warnf("run cancelled after %s: %v", time.Since(start), err)
		return nil, err
	}

	a.Summary = synthesis.Synthesize(a.Spectral, a.Cadence, a.Phonetic)
	logger.Infof("analyzed %.2fs of audio in %s (%d sections omitted)",
		fs.Duration, time.Since(start).Round(time.Millisecond), len(a.Summary.Omitted()))
	return a, nil
}

func runAnalyzer[T any](ctx context.Context, an analysis.Analyzer[T], fs *analysis.FrameSeries, w analysis.Waveform) analysis.Result[T] {
	start := time.Now()
	v, err := an.Analyze(ctx, fs, w)
	if err != nil {
		logger.Warnf("%s analyzer unavailable: %v", an.Name(), err)
	} else {
		logger.Debugf("%s analyzer finished in %s", an.Name(), time.Since(start))
	}
	return analysis.From(v, err)
}

// Comparison pairs two runs. Spectral is nil unless both spectral reports
// were computed.
type Comparison struct {
	First    *Analysis                    `json:"first"`
	Second   *Analysis                    `json:"second"`
	Spectral *analysis.SpectralComparison `json:"spectral_comparison,omitempty"`
}

// Compare analyzes two waveforms concurrently and contrasts their spectral
// reports. Either run failing fails the comparison.
func Compare(ctx context.Context, first, second analysis.Waveform, cfg analysis.Config) (*Comparison, error) {
	g, gctx := errgroup.WithContext(ctx)
	var c Comparison
	g.Go(func() (err error) {
		c.First, err = Run(gctx, first, cfg)
		if err != nil {
			err = fmt.Errorf("first track: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		c.Second, err = Run(gctx, second, cfg)
		if err != nil {
			err = fmt.Errorf("second track: %w", err)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if c.First.Spectral.Available() && c.Second.Spectral.Available() {
		cmp := analysis.CompareSpectral(c.First.Spectral.Value(), c.Second.Spectral.Value())
		c.Spectral = &cmp
	}
	return &c, nil
}

// Timelines returns the frame-aligned timelines of every computed report, in
// a fixed order: spectral, cadence, then phonetic.
func (a *Analysis) Timelines() []analysis.Timeline {
	var out []analysis.Timeline
	if r := a.Spectral.Value(); a.Spectral.Available() {
		out = append(out, r.Centroid, r.Pitch, r.RMS)
	}
	if r := a.Cadence.Value(); a.Cadence.Available() {
		t := r.Timelines
		out = append(out, t.SmoothedIntensity, t.Tension, t.Consonance)
	}
	if r := a.Phonetic.Value(); a.Phonetic.Available() {
		t := r.Timelines
		out = append(out, t.Sibilant, t.Fricative, t.NasalLiquid, t.Onset)
	}
	return out
}
