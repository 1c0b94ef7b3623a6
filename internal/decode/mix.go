// SPDX-License-Identifier: MIT
package decode

import "fmt"

// MixDown averages interleaved frames into one channel. A trailing partial
// frame is dropped.
func MixDown[S ~float32 | ~float64](interleaved []S, channels int) ([]float64, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrBadLayout, channels)
	}
	frames := len(interleaved) / channels
	out := make([]float64, frames)

	// Stereo is by far the common case.
	if channels == 2 {
		for f := range frames {
			out[f] = (float64(interleaved[2*f]) + float64(interleaved[2*f+1])) * 0.5
		}
		return out, nil
	}

	inv := 1 / float64(channels)
	for f := range frames {
		sum := 0.0
		base := f * channels
		for c := range channels {
			sum += float64(interleaved[base+c])
		}
		out[f] = sum * inv
	}
	return out, nil
}

// MixDownPCM averages interleaved integer PCM frames into one channel
// normalized to [-1, 1) by the bit depth.
func MixDownPCM(interleaved []int, channels, bitDepth int) ([]float64, error) {
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, bitDepth)
	}
	scale := 1 / float64(int64(1)<<(bitDepth-1))

	floats := make([]float64, len(interleaved))
	for i, s := range interleaved {
		floats[i] = float64(s) * scale
	}
	return MixDown(floats, channels)
}
