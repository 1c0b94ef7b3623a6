// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"sort"
)

// PeakOptions constrains FindPeaks. A NaN MinHeight disables the height
// filter; a Distance below 1 is treated as 1.
type PeakOptions struct {
	MinHeight float64
	Distance  int
}

// FindPeaks returns the indices of local maxima of x in ascending order.
//
// A flat run of equal values bordered by lower values on both sides counts as
// one peak at the run's middle index (rounded down). The first and last
// samples are never peaks. Candidates below MinHeight are dropped first; then,
// visiting the remaining candidates from highest to lowest, every weaker
// candidate closer than Distance samples to a kept one is discarded.
func FindPeaks(x []float64, opts PeakOptions) []int {
	peaks := localMaxima(x)

	if !math.IsNaN(opts.MinHeight) {
		kept := peaks[:0]
		for _, p := range peaks {
			if x[p] >= opts.MinHeight {
				kept = append(kept, p)
			}
		}
		peaks = kept
	}

	if opts.Distance > 1 && len(peaks) > 1 {
		peaks = selectByDistance(x, peaks, opts.Distance)
	}
	return peaks
}

func localMaxima(x []float64) []int {
	var peaks []int
	n := len(x)
	i := 1
	for i < n-1 {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < n-1 && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				left, right := i, ahead-1
				peaks = append(peaks, (left+right)/2)
				i = ahead
				continue
			}
		}
		i++
	}
	return peaks
}

func selectByDistance(x []float64, peaks []int, distance int) []int {
	// Ascending by height with ties kept in index order, then walked from the
	// top so the tallest candidates claim their neighbourhood first.
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[peaks[order[a]]] < x[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}

	for i := len(order) - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	out := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}
