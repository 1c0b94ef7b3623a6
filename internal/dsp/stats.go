// SPDX-License-Identifier: MIT

// Package dsp holds the one-dimensional signal helpers shared by the
// analyzers: percentiles, min-max normalization, peak picking, polynomial
// smoothing and discrete gradients. Every function treats its input as
// read-only and returns freshly allocated results.
package dsp

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// NormEpsilon guards min-max normalization against a zero range.
const NormEpsilon = 1e-10

// Percentile returns the p-th percentile (0..100) of x, linearly
// interpolating between the two closest ranks at position p/100*(n-1).
// Empty input returns 0.
func Percentile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)

	p = math.Max(0, math.Min(100, p))
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// MinMaxNormalize rescales x to [0, 1] by (x-min)/(max-min+eps). A constant
// series maps to all zeros.
func MinMaxNormalize(x []float64, eps float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	lo, hi := floats.Min(x), floats.Max(x)
	span := hi - lo + eps
	for i, v := range x {
		out[i] = (v - lo) / span
	}
	return out
}

// Negate returns -x.
func Negate(x []float64) []float64 {
	out := slices.Clone(x)
	floats.Scale(-1, out)
	return out
}

// CountAbove returns how many values exceed threshold.
func CountAbove(x []float64, threshold float64) int {
	n := 0
	for _, v := range x {
		if v > threshold {
			n++
		}
	}
	return n
}

// MeanAbove returns the mean of the values exceeding threshold, or 0 when
// none do.
func MeanAbove(x []float64, threshold float64) float64 {
	sum, n := 0.0, 0
	for _, v := range x {
		if v > threshold {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
