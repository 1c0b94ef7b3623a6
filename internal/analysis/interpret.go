// SPDX-License-Identifier: MIT
package analysis

// BalancedInterpretation is emitted when no interpretation rule fires.
const BalancedInterpretation = "Balanced phonetic characteristics across all categories"

type interpretationRule struct {
	match func(EmotionalIndicators) bool
	label string
}

// interpretationRules are all evaluated, in order.
var interpretationRules = []interpretationRule{
	{
		func(i EmotionalIndicators) bool { return i.Aggressive.PlosiveCount > 20 },
		"High plosive density suggests aggressive or emphatic delivery",
	},
	{
		func(i EmotionalIndicators) bool { return i.Aggressive.MeanPlosiveStrength > 5.0 },
		"Strong plosive bursts indicate forceful articulation",
	},
	{
		func(i EmotionalIndicators) bool { return i.Tense.MeanSibilance > 0.5 },
		"Elevated sibilance may indicate tension or intensity",
	},
	{
		func(i EmotionalIndicators) bool { return i.Smooth.MeanNasalLiquid > 0.6 },
		"High nasal/liquid content suggests smoother, more melodic vocals",
	},
	{
		func(i EmotionalIndicators) bool { return i.Smooth.LowPlosiveRate < 2.0 },
		"Low plosive rate indicates sustained, flowing vocal style",
	},
	{
		func(i EmotionalIndicators) bool { return i.Dynamic.PhonemeDensity > 15.0 },
		"High phoneme density suggests rapid, complex vocal delivery",
	},
	{
		func(i EmotionalIndicators) bool { return i.Dynamic.IntensityVariation > 0.02 },
		"High intensity variation indicates expressive, dynamic performance",
	},
}

// Interpret returns every matching interpretation in rule order, or the
// balanced default when none match.
func Interpret(ind EmotionalIndicators) []string {
	var out []string
	for _, r := range interpretationRules {
		if r.match(ind) {
			out = append(out, r.label)
		}
	}
	if len(out) == 0 {
		out = append(out, BalancedInterpretation)
	}
	return out
}
