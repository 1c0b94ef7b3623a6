// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewEngineClipLength(t *testing.T) {
	engine := newEngine(testCaptureConfig(1, 500*time.Millisecond, 0))
	if len(engine.clip) != 4000 {
		t.Errorf("clip length = %d, want 4000", len(engine.clip))
	}
	if engine.gateEnabled {
		t.Error("Gate should be disabled for a zero threshold")
	}

	engine = newEngine(testCaptureConfig(1, 0, 0.2))
	if len(engine.clip) != 1 {
		t.Errorf("clip length = %d, want 1 for a zero duration", len(engine.clip))
	}
	if !engine.gateEnabled {
		t.Error("Gate should be enabled for a positive threshold")
	}
}

func TestAppendFramesDownMix(t *testing.T) {
	engine := newEngine(testCaptureConfig(2, time.Second, 0))

	half := int32(1 << 30)
	engine.appendFrames([]int32{half, half, half, -half, -half, -half})

	if got := engine.written.Load(); got != 3 {
		t.Fatalf("written = %d, want 3", got)
	}
	want := []float64{0.5, 0, -0.5}
	for i, w := range want {
		if math.Abs(engine.clip[i]-w) > 1e-9 {
			t.Errorf("clip[%d] = %v, want %v", i, engine.clip[i], w)
		}
	}
}

func TestAppendFramesSignalsFull(t *testing.T) {
	engine := newEngine(testCaptureConfig(1, 100*time.Millisecond, 0)) // 800 frames

	for range 3 {
		engine.appendFrames(testBuffer)
	}
	select {
	case <-engine.full:
		t.Fatal("clip reported full too early")
	default:
	}

	engine.appendFrames(testBuffer)
	engine.appendFrames(testBuffer) // Overflow is dropped, not re-signalled
	select {
	case <-engine.full:
	default:
		t.Fatal("clip should be full")
	}
	if got := engine.written.Load(); got != 800 {
		t.Errorf("written = %d, want 800", got)
	}
}

func TestAppendFramesGate(t *testing.T) {
	engine := newEngine(testCaptureConfig(1, time.Second, 0.1))

	engine.appendFrames(quietBuffer)
	if engine.written.Load() != 0 {
		t.Fatal("quiet buffer should not open the gate")
	}

	engine.appendFrames(loudBuffer)
	engine.appendFrames(quietBuffer) // Gate stays open once triggered
	if got := engine.written.Load(); got != 2*testFrameSize {
		t.Errorf("written = %d, want %d", got, 2*testFrameSize)
	}
}

func TestAppendFramesNoAllocsHotPath(t *testing.T) {
	engine := newEngine(testCaptureConfig(2, time.Minute, 0))

	allocs := testing.AllocsPerRun(100, func() {
		engine.appendFrames(testBuffer)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in capture callback, got %.1f", allocs)
	}
}

func TestWaveformTrimsSilence(t *testing.T) {
	engine := newEngine(testCaptureConfig(1, time.Second, 0.1))

	engine.appendFrames(loudBuffer)
	engine.appendFrames(make([]int32, testFrameSize)) // Trailing silence

	w, err := engine.Waveform()
	if err != nil {
		t.Fatalf("Waveform error: %v", err)
	}
	if len(w.Samples) != testFrameSize {
		t.Errorf("samples = %d, want %d", len(w.Samples), testFrameSize)
	}
	if w.SampleRate != testSampleRate {
		t.Errorf("sample rate = %v, want %v", w.SampleRate, testSampleRate)
	}
}

func TestWaveformEmpty(t *testing.T) {
	engine := newEngine(testCaptureConfig(1, time.Second, 0))
	if _, err := engine.Waveform(); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
}

func BenchmarkAppendFramesHotPath(b *testing.B) {
	engine := newEngine(testCaptureConfig(2, time.Minute, 0))

	b.ReportAllocs()
	for b.Loop() {
		engine.appendFrames(testBuffer)
	}
}
