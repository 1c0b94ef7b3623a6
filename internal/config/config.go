// SPDX-License-Identifier: MIT
package config

import (
	"time"

	"earshot/internal/analysis"
)

// Defaults and hardware limits for the capture and transport sections.
const (
	DefaultLogLevel        = "info"
	DefaultDeviceID        = MinDeviceID // System default device
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultInputChannels   = 1           // Mono audio
	DefaultCaptureDuration = 10 * time.Second
	DefaultGateThreshold   = 0.01 // Linear amplitude below which leading/trailing audio is trimmed
	DefaultBitDepth        = 16
	DefaultOutputDir       = "./recordings"

	DefaultWebSocketAddress = ":8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond // ~30Hz

	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)
)

// Config is the full application configuration. The analysis sections
// (frame, spectral, cadence, phonetic) sit at the top level of the YAML file.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Shorthand for log_level: debug.
	LogLevel  string          `yaml:"log_level"` // debug, info, warn or error.
	Analysis  analysis.Config `yaml:",inline"`
	Capture   CaptureConfig   `yaml:"capture"`
	Transport TransportConfig `yaml:"transport"`
}

// CaptureConfig controls microphone capture for the record command.
type CaptureConfig struct {
	InputDevice     int           `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate      float64       `yaml:"sample_rate"`       // Sample rate in Hz.
	FramesPerBuffer int           `yaml:"frames_per_buffer"` // Frames per PortAudio callback.
	LowLatency      bool          `yaml:"low_latency"`       // Request the device's low input latency.
	InputChannels   int           `yaml:"input_channels"`    // Channels captured before down-mixing to mono.
	Duration        time.Duration `yaml:"duration"`          // Length of the captured clip.
	GateThreshold   float64       `yaml:"gate_threshold"`    // 0 disables silence trimming.
	Save            bool          `yaml:"save"`              // Keep the clip as a WAV file.
	OutputDir       string        `yaml:"output_dir"`        // Where saved clips go.
	BitDepth        int           `yaml:"bit_depth"`         // 16, 24 or 32.
}

// TransportConfig controls how finished analyses are published.
type TransportConfig struct {
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address for the /ws endpoint.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Replay timelines over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // host:port receiving the packets.
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Delay between timeline packets.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Analysis: analysis.DefaultConfig(),
		Capture: CaptureConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			InputChannels:   DefaultInputChannels,
			Duration:        DefaultCaptureDuration,
			GateThreshold:   DefaultGateThreshold,
			OutputDir:       DefaultOutputDir,
			BitDepth:        DefaultBitDepth,
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}
