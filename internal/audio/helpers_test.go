// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"strconv"
	"time"

	"earshot/internal/config"
)

const (
	testSampleRate = 8000.0
	testFrameSize  = 256
)

const (
	lowThreshold  int32 = math.MaxInt32 / 1000
	highThreshold int32 = math.MaxInt32 / 2
)

var (
	quietBuffer = fillBuffer(testFrameSize, 1_000_000)
	testBuffer  = fillBuffer(testFrameSize, 200_000_000)
	loudBuffer  = fillBuffer(testFrameSize, 2_000_000_000)
)

// fillBuffer returns alternating +peak/-peak samples.
func fillBuffer(n int, peak int32) []int32 {
	buf := make([]int32, n)
	for i := range buf {
		if i%2 == 0 {
			buf[i] = peak
		} else {
			buf[i] = -peak
		}
	}
	return buf
}

func testCaptureConfig(channels int, duration time.Duration, gate float64) config.CaptureConfig {
	return config.CaptureConfig{
		InputDevice:     config.DefaultDeviceID,
		SampleRate:      testSampleRate,
		FramesPerBuffer: testFrameSize,
		InputChannels:   channels,
		Duration:        duration,
		GateThreshold:   gate,
		BitDepth:        16,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func absFloat(x float64) float64 {
	return math.Abs(x)
}

// absInt32 returns the absolute value of x.
func absInt32(x int32) int32 {
	mask := x >> 31
	return (x ^ mask) - mask
}
