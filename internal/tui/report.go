// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"earshot/internal/analysis"
	"earshot/internal/pipeline"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab is one page of the report browser.
type Tab int

const (
	SummaryTab Tab = iota
	SpectralTab
	CadenceTab
	PhoneticTab
)

var tabNames = [...]string{"Summary", "Spectral", "Cadence", "Phonetic"}

func (t Tab) String() string { return tabNames[t] }

const (
	sparkWidth   = 60
	eventPreview = 8
)

type reportKeyMap struct {
	Next key.Binding
	Prev key.Binding
	Quit key.Binding
}

var reportKeys = reportKeyMap{
	Next: key.NewBinding(key.WithKeys("right", "l", "tab")),
	Prev: key.NewBinding(key.WithKeys("left", "h", "shift+tab")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
}

// ReportModel is a tabbed Bubble Tea browser over one analysis.
type ReportModel struct {
	analysis *pipeline.Analysis
	tab      Tab
	viewport viewport.Model
	ready    bool
}

// NewReportModel creates a browser opened on the summary tab.
func NewReportModel(a *pipeline.Analysis) ReportModel {
	return ReportModel{analysis: a}
}

// ActiveTab returns the tab being shown.
func (m ReportModel) ActiveTab() Tab { return m.tab }

func (m ReportModel) Init() tea.Cmd { return nil }

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.viewport.SetContent(m.renderTab())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, reportKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, reportKeys.Next):
			m.tab = (m.tab + 1) % Tab(len(tabNames))
			m.viewport.SetContent(m.renderTab())
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, reportKeys.Prev):
			m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
			m.viewport.SetContent(m.renderTab())
			m.viewport.GotoTop()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ReportModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	help := infoStyle.Render("←/→: Switch tab • ↑/↓: Scroll • q: Quit")
	return fmt.Sprintf("%s\n\n%s\n%s", lipgloss.JoinHorizontal(lipgloss.Top, tabs...), m.viewport.View(), help)
}

func (m ReportModel) renderTab() string {
	a := m.analysis
	switch m.tab {
	case SpectralTab:
		return renderResult(a.Spectral, renderSpectral)
	case CadenceTab:
		return renderResult(a.Cadence, renderCadence)
	case PhoneticTab:
		return renderResult(a.Phonetic, renderPhonetic)
	}
	return RenderSummary(a)
}

func renderResult[T any](r analysis.Result[T], render func(*T) string) string {
	if !r.Available() {
		return errorStyle.Render("Unavailable: " + r.Cause())
	}
	return render(r.Value())
}

func timelineRow(t analysis.Timeline) string {
	return row(t.Name, Sparkline(t.Values, sparkWidth))
}

func renderSpectral(r *analysis.SpectralReport) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render("Rhythm"),
		row("Tempo", fmt.Sprintf("%.1f BPM", r.Tempo)),
		row("Beats", fmt.Sprintf("%d", r.NumBeats)),
		"",
		headingStyle.Render("Spectrum"),
		row("Centroid", fmt.Sprintf("%.1f Hz", r.SpectralCentroid)),
		row("Rolloff", fmt.Sprintf("%.1f Hz", r.SpectralRolloff)),
		row("Bandwidth", fmt.Sprintf("%.1f Hz", r.SpectralBandwidth)),
		row("Zero crossing rate", fmt.Sprintf("%.4f", r.ZeroCrossingRate)),
		"",
		headingStyle.Render("Energy"),
		row("Mean RMS", fmt.Sprintf("%.4f", r.Energy.Mean)),
		row("Range", fmt.Sprintf("%.4f – %.4f", r.Energy.Min, r.Energy.Max)),
		"",
		headingStyle.Render("Harmony"),
		row("Consonance", fmt.Sprintf("%.1f", r.Harmonic.ConsonanceScore)),
		row("Mean pitch", fmt.Sprintf("%.1f Hz (%d voiced frames)", r.Harmonic.MeanPitch, r.Harmonic.VoicedFrames)),
		"",
		headingStyle.Render("Timelines"),
		timelineRow(r.Centroid),
		timelineRow(r.Pitch),
		timelineRow(r.RMS),
	)
}

func renderCadence(r *analysis.CadenceReport) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render("Emotional arc"),
		row("Arc", highlightStyle.Render(r.Arc.Type.String())+" "+r.Arc.Description),
		row("Segments", fmt.Sprintf("%.4f / %.4f / %.4f", r.Arc.Early, r.Arc.Mid, r.Arc.Late)),
		"",
		headingStyle.Render("Intensity"),
		row("Mean", fmt.Sprintf("%.4f", r.Intensity.Mean)),
		row("Dynamic range", fmt.Sprintf("%.4f", r.Intensity.DynamicRange)),
		row("Variance", fmt.Sprintf("%.6f", r.Intensity.Variance)),
		"",
		headingStyle.Render("Tension"),
		row("Mean tension", fmt.Sprintf("%.3f", r.Tension.MeanTension)),
		row("Max tension", fmt.Sprintf("%.3f", r.Tension.MaxTension)),
		row("Mean consonance", fmt.Sprintf("%.3f", r.Tension.MeanConsonance)),
		"",
		headingStyle.Render("Key moments"),
		row("Peaks", eventList(r.Moments.Peaks, eventPreview)),
		row("Valleys", eventList(r.Moments.Valleys, eventPreview)),
		row("Releases", eventList(r.Moments.TensionReleases, eventPreview)),
		row("Buildups", eventList(r.Moments.TensionBuildups, eventPreview)),
		"",
		headingStyle.Render("Timelines"),
		timelineRow(r.Timelines.SmoothedIntensity),
		timelineRow(r.Timelines.Tension),
		timelineRow(r.Timelines.Onset),
	)
}

func renderPhonetic(r *analysis.PhoneticReport) string {
	s := r.Summary
	lines := []string{
		headingStyle.Render("Articulation"),
		row("Plosives", fmt.Sprintf("%d (%.2f/s)", s.PlosiveCount, s.PlosivesPerSecond)),
		row("Sibilance", fmt.Sprintf("%.3f", s.MeanSibilance)),
		row("Fricative energy", fmt.Sprintf("%.3f", s.MeanFricativeEnergy)),
		row("Nasal/liquid energy", fmt.Sprintf("%.3f", s.MeanNasalLiquidEnergy)),
		row("Phoneme density", fmt.Sprintf("%.3f", s.PhonemeDensity)),
		row("Notable plosives", eventList(r.NotablePlosives, eventPreview)),
		"",
		headingStyle.Render("Interpretations"),
	}
	for _, in := range r.Interpretations {
		lines = append(lines, "• "+in)
	}
	lines = append(lines, "",
		headingStyle.Render("Timelines"),
		timelineRow(r.Timelines.Sibilant),
		timelineRow(r.Timelines.Fricative),
		timelineRow(r.Timelines.NasalLiquid),
		timelineRow(r.Timelines.Onset),
	)
	return strings.Join(lines, "\n")
}

// StartReportUI launches the report browser for a.
func StartReportUI(a *pipeline.Analysis) error {
	p := tea.NewProgram(NewReportModel(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
