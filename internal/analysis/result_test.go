// SPDX-License-Identifier: MIT
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	report := &CadenceReport{Arc: ArcClassification{Type: ArcPeak}}

	ok := Ok(report)
	assert.True(t, ok.Available())
	assert.Same(t, report, ok.Value())
	assert.NoError(t, ok.Err())
	assert.Empty(t, ok.Cause())

	cause := errors.New("boom")
	failed := Fail[CadenceReport](cause)
	assert.False(t, failed.Available())
	assert.Nil(t, failed.Value())
	assert.ErrorIs(t, failed.Err(), cause)
	assert.Equal(t, "boom", failed.Cause())
	assert.True(t, failed.Is(cause))

	assert.True(t, Fail[CadenceReport](nil).Is(ErrInsufficientData))
	assert.True(t, From[CadenceReport](nil, nil).Is(ErrInsufficientData))
	assert.True(t, From(report, nil).Available())
	assert.False(t, From(report, cause).Available())

	var zero Result[CadenceReport]
	assert.False(t, zero.Available())
	assert.ErrorIs(t, zero.Err(), ErrInsufficientData)
}

func TestResultMarshalJSON(t *testing.T) {
	ok, err := json.Marshal(Ok(&ArcClassification{Type: ArcPeak, Description: ArcPeak.Description()}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "Peak",
		"description": "Peak/Climax (peaks in middle)",
		"early_intensity": 0,
		"mid_intensity": 0,
		"late_intensity": 0
	}`, string(ok))

	failed, err := json.Marshal(Fail[ArcClassification](ErrInsufficientData))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": "insufficient data"}`, string(failed))
}

func TestAnalyzers(t *testing.T) {
	fs, w := mustTransform(t, steppedTone())
	cfg := DefaultConfig()
	ctx := context.Background()

	spectral := SpectralAnalyzer{cfg.Spectral}
	cadence := CadenceAnalyzer{cfg.Cadence}
	phonetic := PhoneticAnalyzer{cfg.Phonetic}

	assert.Equal(t, "spectral", spectral.Name())
	assert.Equal(t, "cadence", cadence.Name())
	assert.Equal(t, "phonetic", phonetic.Name())

	s, err := spectral.Analyze(ctx, fs, w)
	require.NoError(t, err)
	direct, err := AnalyzeSpectral(ctx, fs, w, cfg.Spectral)
	require.NoError(t, err)
	assert.Equal(t, direct, s)

	c, err := cadence.Analyze(ctx, fs, w)
	require.NoError(t, err)
	assert.Equal(t, ArcBuilding, c.Arc.Type)

	p, err := phonetic.Analyze(ctx, fs, w)
	require.NoError(t, err)
	assert.Len(t, p.Frames, fs.Len())
}
