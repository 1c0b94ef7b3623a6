// SPDX-License-Identifier: MIT

/*
Package bitint holds the integer sizing helpers used when laying out analysis
frames and smoothing windows.

	// FFT size for a hop of 700 samples.
	n := bitint.NextPowerOfTwo(4 * 700) // 4096

	// Savitzky-Golay windows must be odd.
	w := bitint.RoundUpOdd(30) // 31

NextPowerOfTwo subtracts one before taking the bit length so exact powers of
two map to themselves: Len(8-1) = 3 and 1<<3 = 8, where Len(8) would give 16.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size. Non-positive sizes
// return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. A power of two has
// a single set bit, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// RoundUpOdd returns n when it is odd and n+1 otherwise. Values below 1
// return 1.
func RoundUpOdd(n int) int {
	if n < 1 {
		return 1
	}
	return n | 1
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
