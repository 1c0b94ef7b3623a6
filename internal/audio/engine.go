// SPDX-License-Identifier: MIT
/*
Package audio captures finite clips from a PortAudio input device:
- Lock-free capture into a buffer preallocated for the whole clip
- Down-mixing of interleaved channels to mono in the callback
- Silence trimming with a branchless peak detector
- WAV export through go-audio

Thread Safety:
- The callback only touches preallocated buffers and atomics
- Locks OS thread during audio processing
*/
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"earshot/internal/analysis"
	"earshot/internal/config"
	"earshot/internal/log"

	"github.com/gordonklaus/portaudio"
)

// ErrNoInput is returned when a capture ends before any frame arrived.
var ErrNoInput = errors.New("no audio captured")

const int32Scale = 1.0 / 2147483648.0

var logger = log.New("audio")

type Engine struct {
	// Core configuration and state.
	config config.CaptureConfig

	// Audio input handling.
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Clip buffer sized for the whole capture.
	clip    []float64
	written atomic.Int64
	full    chan struct{}
	fullOne sync.Once

	// Noise gate: buffers are dropped until one peaks above the threshold,
	// and trailing silence is trimmed once the clip is complete.
	gateEnabled   bool
	gateThreshold int32 // Absolute amplitude threshold (0-2147483647)
	gateOpen      atomic.Bool
}

// NewEngine prepares a capture from the configured input device. PortAudio
// must already be initialized.
func NewEngine(cfg config.CaptureConfig) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}

	engine := newEngine(cfg)
	engine.inputDevice = inputDevice
	if cfg.LowLatency {
		engine.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = inputDevice.DefaultHighInputLatency
	}
	return engine, nil
}

func newEngine(cfg config.CaptureConfig) *Engine {
	frames := max(int(math.Ceil(cfg.Duration.Seconds()*cfg.SampleRate)), 1)
	e := &Engine{
		config: cfg,
		clip:   make([]float64, frames),
		full:   make(chan struct{}),
	}
	e.configureGate(cfg.GateThreshold)
	return e
}

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.InputChannels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.FramesPerBuffer,
		SampleRate:      e.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return err
	}

	logger.Debugf("capturing %d frames from %q at %.0f Hz", len(e.clip), e.inputDevice.Name, e.config.SampleRate)
	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// Close stops the stream if it is still running.
func (e *Engine) Close() error {
	return e.StopInputStream()
}

// Capture records until the clip is full or ctx is done, then returns the
// (possibly partial) clip with silence trimmed.
func (e *Engine) Capture(ctx context.Context) (analysis.Waveform, error) {
	if err := e.StartInputStream(); err != nil {
		return analysis.Waveform{}, fmt.Errorf("starting input stream: %w", err)
	}

	var cause error
	select {
	case <-e.full:
	case <-ctx.Done():
		cause = ctx.Err()
	}

	if err := e.StopInputStream(); err != nil {
		return analysis.Waveform{}, fmt.Errorf("stopping input stream: %w", err)
	}
	if cause != nil && e.written.Load() == 0 {
		return analysis.Waveform{}, cause
	}
	return e.Waveform()
}

// Waveform returns what has been captured so far, trimmed when the gate is
// enabled.
func (e *Engine) Waveform() (analysis.Waveform, error) {
	samples := e.clip[:e.written.Load()]
	if e.gateEnabled {
		samples = TrimSilence(samples, e.GetGateThreshold())
	}
	if len(samples) == 0 {
		return analysis.Waveform{}, ErrNoInput
	}
	return analysis.NewWaveform(samples, e.config.SampleRate)
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e.appendFrames(in)
}

// appendFrames down-mixes interleaved int32 frames into the clip buffer and
// signals once it is full. Frames beyond the clip length are dropped, as are
// buffers that arrive before the gate first opens.
func (e *Engine) appendFrames(in []int32) {
	if e.gateEnabled && !e.gateOpen.Load() {
		if PeakAmplitude(in) <= e.gateThreshold {
			return
		}
		e.gateOpen.Store(true)
	}

	channels := max(e.config.InputChannels, 1)
	pos := int(e.written.Load())
	if pos >= len(e.clip) {
		return
	}

	frames := min(len(in)/channels, len(e.clip)-pos)
	inv := int32Scale / float64(channels)
	for f := range frames {
		var sum int64
		base := f * channels
		for c := range channels {
			sum += int64(in[base+c])
		}
		e.clip[pos+f] = float64(sum) * inv
	}

	if e.written.Add(int64(frames)) >= int64(len(e.clip)) {
		e.fullOne.Do(func() { close(e.full) })
	}
}

// Capture opens the configured device, records one clip and releases
// PortAudio again.
func Capture(ctx context.Context, cfg config.CaptureConfig) (analysis.Waveform, error) {
	if err := Initialize(); err != nil {
		return analysis.Waveform{}, err
	}
	defer Terminate()

	engine, err := NewEngine(cfg)
	if err != nil {
		return analysis.Waveform{}, err
	}
	defer engine.Close()

	return engine.Capture(ctx)
}
