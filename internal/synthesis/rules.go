// SPDX-License-Identifier: MIT
package synthesis

import (
	"strings"

	"earshot/internal/analysis"
)

// DefaultImpression is the overall impression when no other rule fires.
const DefaultImpression = "Balanced composition across multiple dimensions"

type harmonicTier struct {
	above float64
	text  string
}

// harmonicTiers are checked from the top; the first threshold the score
// exceeds wins and the final tier catches everything else.
var harmonicTiers = []harmonicTier{
	{40, "Highly consonant - mathematically stable, harmonically pure"},
	{25, "Moderately consonant - balanced harmonic relationships"},
	{15, "Mixed consonance/dissonance - dynamic tension"},
}

const dissonantTier = "Dissonant - complex, tense harmonic relationships"

// InterpretConsonance maps a consonance score to its tier sentence.
func InterpretConsonance(score float64) string {
	for _, t := range harmonicTiers {
		if score > t.above {
			return t.text
		}
	}
	return dissonantTier
}

type deliveryRule struct {
	match func(analysis.PhoneticSummary) bool
	label string
}

// deliveryRules are evaluated in order; the first match wins.
var deliveryRules = []deliveryRule{
	{
		func(s analysis.PhoneticSummary) bool { return s.PlosivesPerSecond > 3 && s.PhonemeDensity > 15 },
		"Aggressive, rapid delivery with percussive emphasis",
	},
	{
		func(s analysis.PhoneticSummary) bool { return s.PlosivesPerSecond > 2 },
		"Emphatic delivery with strong articulation",
	},
	{
		func(s analysis.PhoneticSummary) bool { return s.PhonemeDensity > 15 },
		"Fast-paced, dense vocal delivery",
	},
	{
		func(s analysis.PhoneticSummary) bool { return s.PlosivesPerSecond < 1.5 && s.MeanNasalLiquidEnergy > 0.5 },
		"Smooth, melodic vocal style",
	},
}

const balancedDelivery = "Balanced, moderate delivery"

// DeliveryStyle classifies vocal delivery from plosive rate, phoneme density
// and nasal/liquid energy.
func DeliveryStyle(s analysis.PhoneticSummary) string {
	for _, r := range deliveryRules {
		if r.match(s) {
			return r.label
		}
	}
	return balancedDelivery
}

// evidence is what the impression rules may look at. Each field is only
// meaningful when the matching has* flag is set.
type evidence struct {
	hasConsonance   bool
	consonance      float64
	hasArc          bool
	arc             analysis.ArcType
	interpretations []string
}

type impressionRule struct {
	match func(evidence) bool
	text  string
}

// impressionRules are all evaluated, in order.
var impressionRules = []impressionRule{
	{
		func(e evidence) bool { return e.hasConsonance && e.consonance > 30 },
		"Harmonically elegant with clear mathematical relationships",
	},
	{
		func(e evidence) bool { return e.hasConsonance && e.consonance < 15 },
		"Harmonically complex with sophisticated tension patterns",
	},
	{
		func(e evidence) bool { return e.hasArc && e.arc == analysis.ArcBuilding },
		"Progressive emotional buildup toward climax",
	},
	{
		func(e evidence) bool { return e.hasArc && e.arc == analysis.ArcPeak },
		"Dramatic mid-point climax with surrounding dynamics",
	},
	{
		func(e evidence) bool { return anyContains(e.interpretations, "aggressive") },
		"Forceful, intense vocal delivery",
	},
	{
		func(e evidence) bool { return anyContains(e.interpretations, "smooth", "melodic") },
		"Flowing, sustained vocal approach",
	},
}

func overallImpression(e evidence) []string {
	var out []string
	for _, r := range impressionRules {
		if r.match(e) {
			out = append(out, r.text)
		}
	}
	if len(out) == 0 {
		out = append(out, DefaultImpression)
	}
	return out
}

// anyContains reports whether any of lines contains any of words,
// ignoring case.
func anyContains(lines []string, words ...string) bool {
	for _, l := range lines {
		l = strings.ToLower(l)
		for _, w := range words {
			if strings.Contains(l, w) {
				return true
			}
		}
	}
	return false
}
