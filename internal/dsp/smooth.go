// SPDX-License-Identifier: MIT
package dsp

import (
	"errors"
	"fmt"
	"slices"

	"earshot/pkg/bitint"

	"gonum.org/v1/gonum/mat"
)

// SavitzkyGolay smooths x with a least-squares polynomial of the given order
// fitted over a sliding window. The window is forced odd. Interior points take
// the fitted value at the window centre; the first and last half-windows are
// evaluated on a single polynomial fitted to the first and last full window.
//
// When x is shorter than the window, the window shrinks to the longest odd
// length that fits; if that cannot hold a polynomial of the requested order,
// x is returned unchanged.
func SavitzkyGolay(x []float64, window, order int) ([]float64, error) {
	if order < 0 {
		return nil, fmt.Errorf("savitzky-golay: negative polynomial order %d", order)
	}
	window = bitint.RoundUpOdd(window)
	if window > len(x) {
		window = len(x)
		if window%2 == 0 {
			window--
		}
	}
	if window <= order || window < 1 {
		return slices.Clone(x), nil
	}

	half := window / 2
	out := make([]float64, len(x))

	centre, err := centreCoefficients(window, order)
	if err != nil {
		return nil, err
	}
	for i := half; i < len(x)-half; i++ {
		sum := 0.0
		for j, c := range centre {
			sum += c * x[i-half+j]
		}
		out[i] = sum
	}

	head, err := fitPolynomial(x[:window], order)
	if err != nil {
		return nil, err
	}
	for i := 0; i < half; i++ {
		out[i] = evalPolynomial(head, float64(i))
	}

	tail, err := fitPolynomial(x[len(x)-window:], order)
	if err != nil {
		return nil, err
	}
	offset := len(x) - window
	for i := len(x) - half; i < len(x); i++ {
		out[i] = evalPolynomial(tail, float64(i-offset))
	}

	return out, nil
}

// vandermonde builds the design matrix with rows [1, t, t^2, ...] for the
// given sample positions.
func vandermonde(positions []float64, order int) *mat.Dense {
	a := mat.NewDense(len(positions), order+1, nil)
	for i, t := range positions {
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= t
		}
	}
	return a
}

// centreCoefficients returns the convolution weights that evaluate the
// least-squares fit at the centre of a window positioned at -half..half.
func centreCoefficients(window, order int) ([]float64, error) {
	half := window / 2
	positions := make([]float64, window)
	for i := range positions {
		positions[i] = float64(i - half)
	}
	a := vandermonde(positions, order)

	var ata mat.Dense
	ata.Mul(a.T(), a)

	// Row 0 of (AᵀA)⁻¹Aᵀ is the fitted constant term, i.e. the value at t=0.
	var proj mat.Dense
	if err := proj.Solve(&ata, a.T()); err != nil && !illConditioned(err) {
		return nil, fmt.Errorf("savitzky-golay: solving normal equations: %w", err)
	}
	return mat.Row(nil, 0, &proj), nil
}

// fitPolynomial returns least-squares coefficients (constant first) for y
// sampled at positions 0..len(y)-1.
func fitPolynomial(y []float64, order int) ([]float64, error) {
	positions := make([]float64, len(y))
	for i := range positions {
		positions[i] = float64(i)
	}
	a := vandermonde(positions, order)

	var beta mat.VecDense
	if err := beta.SolveVec(a, mat.NewVecDense(len(y), slices.Clone(y))); err != nil && !illConditioned(err) {
		return nil, fmt.Errorf("savitzky-golay: fitting edge polynomial: %w", err)
	}
	return mat.Col(nil, 0, &beta), nil
}

// illConditioned reports whether err is only gonum's conditioning warning, in
// which case the solution has still been written.
func illConditioned(err error) bool {
	var cond mat.Condition
	return errors.As(err, &cond)
}

func evalPolynomial(coeffs []float64, t float64) float64 {
	sum := 0.0
	for j := len(coeffs) - 1; j >= 0; j-- {
		sum = sum*t + coeffs[j]
	}
	return sum
}

// Gradient returns the first discrete derivative of x with unit spacing:
// central differences inside, one-sided differences at both ends. Inputs
// shorter than two samples yield zeros.
func Gradient(x []float64) []float64 {
	out := make([]float64, len(x))
	n := len(x)
	if n < 2 {
		return out
	}
	out[0] = x[1] - x[0]
	out[n-1] = x[n-1] - x[n-2]
	for i := 1; i < n-1; i++ {
		out[i] = (x[i+1] - x[i-1]) / 2
	}
	return out
}
