// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ArcType is the overall shape of a clip's intensity over time.
type ArcType int

const (
	ArcBuilding ArcType = iota
	ArcDeclining
	ArcPeak
	ArcValley
	ArcCyclical
	ArcComplex
)

var arcLabels = [...]struct{ name, description string }{
	ArcBuilding:  {"Building", "Building/Crescendo (rises throughout)"},
	ArcDeclining: {"Declining", "Declining/Decrescendo (falls throughout)"},
	ArcPeak:      {"Peak", "Peak/Climax (peaks in middle)"},
	ArcValley:    {"Valley", "Valley/Dip (drops in middle)"},
	ArcCyclical:  {"Cyclical", "Cyclical/Stable (consistent intensity)"},
	ArcComplex:   {"Complex", "Complex/Variable (mixed patterns)"},
}

func (a ArcType) String() string {
	if a < 0 || int(a) >= len(arcLabels) {
		return fmt.Sprintf("ArcType(%d)", int(a))
	}
	return arcLabels[a].name
}

// Description returns the long human-readable label.
func (a ArcType) Description() string {
	if a < 0 || int(a) >= len(arcLabels) {
		return a.String()
	}
	return arcLabels[a].description
}

// MarshalText encodes the short label.
func (a ArcType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts a short label, case-insensitively.
func (a *ArcType) UnmarshalText(text []byte) error {
	for i, l := range arcLabels {
		if strings.EqualFold(l.name, string(text)) {
			*a = ArcType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown arc type %q", text)
}

// ArcClassification is the arc plus the three segment means it was derived
// from.
type ArcClassification struct {
	Type        ArcType `json:"type"`
	Description string  `json:"description"`
	Early       float64 `json:"early_intensity"`
	Mid         float64 `json:"mid_intensity"`
	Late        float64 `json:"late_intensity"`
}

type arcRule struct {
	arc   ArcType
	match func(early, mid, late, delta float64) bool
}

// arcRules are evaluated in order; the first match wins.
var arcRules = []arcRule{
	{ArcBuilding, func(e, m, l, d float64) bool { return l > m*(1+d) && m > e*(1+d) }},
	{ArcDeclining, func(e, m, l, d float64) bool { return l < m*(1-d) && m < e*(1-d) }},
	{ArcPeak, func(e, m, l, d float64) bool { return m > e*(1+d) && m > l*(1+d) }},
	{ArcValley, func(e, m, l, d float64) bool { return e > m*(1+d) && l > m*(1+d) }},
	{ArcCyclical, func(e, m, l, d float64) bool { return math.Abs(e-l) < d*e }},
}

// ClassifySegments maps three segment means to an arc.
func ClassifySegments(early, mid, late, delta float64) ArcType {
	for _, r := range arcRules {
		if r.match(early, mid, late, delta) {
			return r.arc
		}
	}
	return ArcComplex
}

// ClassifyArc splits intensity into early, middle and late segments and
// classifies their means. Each outer segment holds floor(n/3) values; the
// middle one takes the remainder.
func ClassifyArc(intensity []float64, delta float64) (ArcClassification, error) {
	n := len(intensity)
	if n < 3 {
		return ArcClassification{}, fmt.Errorf("%w: arc classification needs 3 frames, got %d", ErrInsufficientData, n)
	}

	third := n / 3
	early := stat.Mean(intensity[:third], nil)
	mid := stat.Mean(intensity[third:n-third], nil)
	late := stat.Mean(intensity[n-third:], nil)

	arc := ClassifySegments(early, mid, late, delta)
	return ArcClassification{
		Type:        arc,
		Description: arc.Description(),
		Early:       early,
		Mid:         mid,
		Late:        late,
	}, nil
}
