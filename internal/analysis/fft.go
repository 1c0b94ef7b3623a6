// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"earshot/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc defines the type for selecting an FFT window function.
type WindowFunc int

// Enum for available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

var windowNames = map[WindowFunc]string{
	BartlettHann:    "BartlettHann",
	Blackman:        "Blackman",
	BlackmanNuttall: "BlackmanNuttall",
	Hann:            "Hann",
	Hamming:         "Hamming",
	Lanczos:         "Lanczos",
	Nuttall:         "Nuttall",
}

func (w WindowFunc) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WindowFunc(%d)", int(w))
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Hann) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("%w: unknown FFT window function name: '%s'", ErrInvalidInput, name)
	}
}

// MarshalText lets config files carry the window by name.
func (w WindowFunc) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText parses a window name.
func (w *WindowFunc) UnmarshalText(text []byte) error {
	parsed, err := ParseWindowFunc(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// windowCoefficients returns n coefficients of the selected window.
func windowCoefficients(n int, windowType WindowFunc) []float64 {
	// The gonum window functions scale their input in place, so start from ones.
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hann(coeffs)
	}
	return coeffs
}

// stft holds the reusable FFT plan and buffers for one pass over a waveform.
// It is not safe for concurrent use.
type stft struct {
	fft    *fourier.FFT
	size   int
	window []float64
	input  []float64
	coeffs []complex128
}

func newSTFT(size int, windowType WindowFunc) (*stft, error) {
	if !bitint.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("%w: fft size must be a power of 2, got %d", ErrInvalidInput, size)
	}
	return &stft{
		fft:    fourier.NewFFT(size),
		size:   size,
		window: windowCoefficients(size, windowType),
		input:  make([]float64, size),
		coeffs: make([]complex128, size/2+1),
	}, nil
}

// analyze windows the frame centred on sample `center`, zero-padding outside
// the signal, and writes |X[k]| into mag. It also returns the window-energy
// normalized RMS and the zero-crossing rate of the in-range samples.
func (s *stft) analyze(samples []float64, center int, mag []float64) (rms, zcr float64) {
	start := center - s.size/2

	var sumSq, sumW float64
	var crossings, inRange int
	var prev float64

	for j := range s.size {
		idx := start + j
		if idx < 0 || idx >= len(samples) {
			s.input[j] = 0
			continue
		}
		v := samples[idx]
		w := s.window[j]
		s.input[j] = v * w
		sumSq += (v * w) * (v * w)
		sumW += w * w
		if inRange > 0 && (prev < 0) != (v < 0) {
			crossings++
		}
		prev = v
		inRange++
	}

	s.fft.Coefficients(s.coeffs, s.input)
	for k, c := range s.coeffs {
		mag[k] = cmplx.Abs(c)
	}

	if sumW > 0 {
		rms = math.Sqrt(sumSq / sumW)
	}
	if inRange > 1 {
		zcr = float64(crossings) / float64(inRange-1)
	}
	return rms, zcr
}
