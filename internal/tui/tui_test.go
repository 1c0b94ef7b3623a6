// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"earshot/internal/analysis"
	"earshot/internal/audio"
	"earshot/internal/pipeline"
	"earshot/internal/synthesis"
	"earshot/pkg/utils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 22050.0

func toneAnalysis(t *testing.T) *pipeline.Analysis {
	t.Helper()
	w, err := analysis.NewWaveform(utils.GenerateSineWave(int(3*testRate), testRate, 440, 0.5), testRate)
	require.NoError(t, err)
	a, err := pipeline.Run(context.Background(), w, analysis.DefaultConfig())
	require.NoError(t, err)
	a.Source = "tone.wav"
	return a
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"empty", nil, 10, ""},
		{"zero width", []float64{1}, 0, ""},
		{"flat", []float64{2, 2, 2}, 3, "▁▁▁"},
		{"ramp", []float64{0, 1, 2, 3, 4, 5, 6, 7}, 8, "▁▂▃▄▅▆▇█"},
		{"bucketed", []float64{0, 0, 1, 1}, 2, "▁█"},
		{"width capped at length", []float64{0, 1}, 10, "▁█"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sparkline(tc.values, tc.width))
		})
	}

	long := make([]float64, 1000)
	assert.Equal(t, 60, utf8.RuneCountInString(Sparkline(long, 60)))
}

func TestRenderSummary(t *testing.T) {
	a := toneAnalysis(t)
	out := RenderSummary(a)

	for _, want := range []string{
		"tone.wav",
		"Harmonic quality",
		a.Summary.Harmonic.Interpretation,
		"Emotional journey",
		a.Summary.Emotional.ArcType.String(),
		"Vocal character",
		a.Summary.Vocal.DeliveryStyle,
		"Overall impression",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "unavailable")
}

func TestRenderSummaryOmittedSection(t *testing.T) {
	a := toneAnalysis(t)
	a.Phonetic = analysis.Fail[analysis.PhoneticReport](analysis.ErrInsufficientData)
	a.Summary = synthesis.Synthesize(a.Spectral, a.Cadence, a.Phonetic)

	out := RenderSummary(a)
	assert.Contains(t, out, "unavailable: insufficient data")
	assert.Contains(t, out, "Harmonic quality")
}

func TestRenderComparison(t *testing.T) {
	a := toneAnalysis(t)
	cmp := analysis.CompareSpectral(a.Spectral.Value(), a.Spectral.Value())

	out := RenderComparison(&pipeline.Comparison{First: a, Second: a, Spectral: &cmp})
	assert.Contains(t, out, "Spectral differences")
	assert.Contains(t, out, "equal")

	out = RenderComparison(&pipeline.Comparison{First: a, Second: a})
	assert.Contains(t, out, "spectral comparison unavailable")
}

func TestEventList(t *testing.T) {
	assert.Contains(t, eventList(nil, 3), "none")

	events := []analysis.Event{{Time: 0.5, Magnitude: 1}, {Time: 1, Magnitude: 2}, {Time: 2, Magnitude: 3}}
	assert.Equal(t, "0.50s (1.000), 1.00s (2.000), … 1 more", eventList(events, 2))
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReportModelTabs(t *testing.T) {
	a := toneAnalysis(t)
	var m tea.Model = NewReportModel(a)
	assert.Equal(t, "Initializing...", m.View())

	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 200})
	assert.Contains(t, m.View(), "Harmonic quality")

	m, _ = m.Update(keyMsg("right"))
	assert.Equal(t, SpectralTab, m.(ReportModel).ActiveTab())
	assert.Contains(t, m.View(), "Tempo")

	m, _ = m.Update(keyMsg("l"))
	assert.Equal(t, CadenceTab, m.(ReportModel).ActiveTab())
	assert.Contains(t, m.View(), "Emotional arc")

	m, _ = m.Update(keyMsg("right"))
	m, _ = m.Update(keyMsg("right"))
	assert.Equal(t, SummaryTab, m.(ReportModel).ActiveTab(), "tabs wrap around")

	m, _ = m.Update(keyMsg("left"))
	assert.Equal(t, PhoneticTab, m.(ReportModel).ActiveTab())
	assert.Contains(t, m.View(), "Interpretations")

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestReportModelUnavailableTab(t *testing.T) {
	a := toneAnalysis(t)
	a.Spectral = analysis.Fail[analysis.SpectralReport](errors.New("boom"))

	var m tea.Model = NewReportModel(a)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	m, _ = m.Update(keyMsg("right"))
	assert.Contains(t, m.View(), "Unavailable: boom")
}

func testDevices() []audio.Device {
	return []audio.Device{
		{ID: 0, Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000},
		{ID: 1, Name: "USB Mic", MaxInputChannels: 1, DefaultSampleRate: 32000},
	}
}

func TestDeviceListModelPick(t *testing.T) {
	var m tea.Model = NewDeviceListModel(func() ([]audio.Device, error) { return testDevices(), nil })

	msg := m.Init()()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m, _ = m.Update(msg)
	assert.Contains(t, m.View(), "USB Mic")

	m, _ = m.Update(keyMsg("enter"))
	assert.Contains(t, m.View(), "Speakers has no input channels")
	assert.Equal(t, ListScreen, m.(DeviceListModel).activeScreen)

	m, _ = m.Update(keyMsg("j"))
	m, _ = m.Update(keyMsg("enter"))
	assert.Equal(t, ConfigScreen, m.(DeviceListModel).activeScreen)
	assert.Contains(t, m.View(), "32000 Hz", "the device default is offered")

	m, _ = m.Update(keyMsg("down"))
	_, ok := m.(DeviceListModel).Selection()
	assert.False(t, ok)

	m, cmd := m.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	sel, ok := m.(DeviceListModel).Selection()
	require.True(t, ok)
	assert.Equal(t, Selection{DeviceID: 1, SampleRate: 44100}, sel)
}

func TestDeviceListModelBackAndErrors(t *testing.T) {
	var m tea.Model = NewDeviceListModel(func() ([]audio.Device, error) { return testDevices(), nil })
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m, _ = m.Update(devicesMsg{testDevices()})
	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("enter"))
	m, _ = m.Update(keyMsg("esc"))
	assert.Equal(t, ListScreen, m.(DeviceListModel).activeScreen)

	failing := NewDeviceListModel(func() ([]audio.Device, error) { return nil, errors.New("no portaudio") })
	m, _ = failing.Update(failing.Init()())
	assert.True(t, strings.HasPrefix(m.View(), "Error: no portaudio"))

	empty := NewDeviceListModel(nil)
	m, _ = empty.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m, _ = m.Update(devicesMsg{})
	assert.Contains(t, m.View(), "No audio devices found.")
	m, _ = m.Update(keyMsg("enter"))
	assert.Equal(t, ListScreen, m.(DeviceListModel).activeScreen)
}
