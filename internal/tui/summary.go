// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"math"
	"strings"

	"earshot/internal/analysis"
	"earshot/internal/pipeline"
	"earshot/internal/synthesis"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as a row of block characters, averaging them into
// width buckets. A flat or empty series renders as the lowest block.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	width = min(width, len(values))

	buckets := make([]float64, width)
	for b := range buckets {
		lo := b * len(values) / width
		hi := max((b+1)*len(values)/width, lo+1)
		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		buckets[b] = sum / float64(hi-lo)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range buckets {
		lo, hi = min(lo, v), max(hi, v)
	}

	var sb strings.Builder
	top := float64(len(sparkBlocks) - 1)
	for _, v := range buckets {
		idx := 0
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * top))
		}
		sb.WriteRune(sparkBlocks[idx])
	}
	return sb.String()
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func omitted(s *synthesis.Summary, section string) string {
	st, _ := s.Section(section)
	return mutedStyle.Render("unavailable: " + st.Cause)
}

// RenderSummary renders the integrated summary of an analysis as a boxed
// block.
func RenderSummary(a *pipeline.Analysis) string {
	s := a.Summary
	var blocks []string

	header := titleStyle.Render("earshot")
	if a.Source != "" {
		header += " " + infoStyle.Render(a.Source)
	}
	blocks = append(blocks, header,
		mutedStyle.Render(fmt.Sprintf("%.2fs at %.0f Hz, %d frames (hop %d, window %d)",
			a.Layout.Duration, a.Layout.SampleRate, a.Layout.Frames, a.Layout.HopSize, a.Layout.FrameSize)),
		"")

	blocks = append(blocks, headingStyle.Render("Harmonic quality"))
	if h := s.Harmonic; h != nil {
		blocks = append(blocks,
			row("Consonance", fmt.Sprintf("%.1f", h.ConsonanceScore)),
			row("Interpretation", h.Interpretation))
	} else {
		blocks = append(blocks, omitted(s, synthesis.SectionHarmonic))
	}
	blocks = append(blocks, "")

	blocks = append(blocks, headingStyle.Render("Emotional journey"))
	if e := s.Emotional; e != nil {
		p := e.Progression
		blocks = append(blocks,
			row("Arc", highlightStyle.Render(e.ArcType.String())+" "+e.Description),
			row("Intensity", fmt.Sprintf("%.3f → %.3f → %.3f", p.Beginning, p.Middle, p.End)),
			row("Key moments", fmt.Sprintf("%d peaks, %d valleys, %d releases",
				e.KeyMoments.Peaks, e.KeyMoments.Valleys, e.KeyMoments.MajorReleases)))
		if c := a.Cadence.Value(); c != nil {
			blocks = append(blocks, row("", Sparkline(c.Timelines.SmoothedIntensity.Values, 48)))
		}
	} else {
		blocks = append(blocks, omitted(s, synthesis.SectionEmotional))
	}
	blocks = append(blocks, "")

	blocks = append(blocks, headingStyle.Render("Vocal character"))
	if v := s.Vocal; v != nil {
		blocks = append(blocks,
			row("Delivery", v.DeliveryStyle),
			row("Plosive rate", fmt.Sprintf("%.2f/s", v.Metrics.PlosiveRate)),
			row("Sibilance", fmt.Sprintf("%.3f", v.Metrics.SibilanceLevel)),
			row("Phoneme density", fmt.Sprintf("%.3f", v.Metrics.PhonemeDensity)))
		for _, tone := range v.EmotionalTone {
			blocks = append(blocks, row("", "• "+tone))
		}
	} else {
		blocks = append(blocks, omitted(s, synthesis.SectionVocal))
	}
	blocks = append(blocks, "")

	blocks = append(blocks, headingStyle.Render("Overall impression"))
	for _, line := range s.OverallImpression {
		blocks = append(blocks, "• "+line)
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

// RenderComparison renders two summaries side by side with the spectral
// differences underneath.
func RenderComparison(c *pipeline.Comparison) string {
	sides := lipgloss.JoinHorizontal(lipgloss.Top, RenderSummary(c.First), " ", RenderSummary(c.Second))
	if c.Spectral == nil {
		return lipgloss.JoinVertical(lipgloss.Left, sides,
			errorStyle.Render("spectral comparison unavailable for at least one track"))
	}

	d := c.Spectral
	diff := lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render("Spectral differences"),
		row("Tempo", fmt.Sprintf("%.1f BPM", d.TempoDifference)),
		row("Centroid", fmt.Sprintf("%.1f Hz", d.CentroidDifference)),
		row("Bandwidth", fmt.Sprintf("%.1f Hz", d.BandwidthDifference)),
		row("Rolloff", fmt.Sprintf("%.1f Hz", d.RolloffDifference)),
		row("Energy", fmt.Sprintf("%.4f", d.EnergyDifference)),
		row("Consonance", fmt.Sprintf("%.1f", d.ConsonanceDifference)),
		row("More consonant", highlightStyle.Render(d.MoreConsonant)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sides, boxStyle.Render(diff))
}

// eventList formats up to limit events as "time (magnitude)" pairs.
func eventList(events []analysis.Event, limit int) string {
	if len(events) == 0 {
		return mutedStyle.Render("none")
	}
	parts := make([]string, 0, min(limit, len(events)))
	for _, e := range events[:min(limit, len(events))] {
		parts = append(parts, fmt.Sprintf("%.2fs (%.3f)", e.Time, e.Magnitude))
	}
	if len(events) > limit {
		parts = append(parts, fmt.Sprintf("… %d more", len(events)-limit))
	}
	return strings.Join(parts, ", ")
}
