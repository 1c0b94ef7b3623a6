// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"earshot/internal/analysis"
	"earshot/internal/log"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file searched for when no path is given.
const FileName = "earshot.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EARSHOT_"

var logger = log.New("config")

// LoadConfig loads configuration from the YAML file at path. If path is empty,
// it searches the working directory and then the user config directory for
// earshot.yaml, falling back to built-in defaults. A .env file in the working
// directory is loaded first; EARSHOT_* environment variables then override
// the file, and the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		logger.Debugf("loaded %s", path)
	}

	// Apply environment variable overrides AFTER loading from file.
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "earshot", FileName))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Level resolves the effective log level. Debug wins over LogLevel.
func (c *Config) Level() log.LogLevel {
	if c.Debug {
		return log.LevelDebug
	}
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

// Validate checks the analysis settings and the capture and transport
// sections.
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", analysis.ErrInvalidInput, c.LogLevel)
	}

	cp := c.Capture
	if cp.InputDevice < MinDeviceID {
		return fmt.Errorf("%w: capture.input_device must be >= %d", analysis.ErrInvalidInput, MinDeviceID)
	}
	if cp.SampleRate < MinSampleRate || cp.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: capture.sample_rate %v outside [%d, %d]", analysis.ErrInvalidInput, cp.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if cp.FramesPerBuffer <= 0 || cp.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("%w: capture.frames_per_buffer must be in (0, %d]", analysis.ErrInvalidInput, MaxBufferFrames)
	}
	if cp.InputChannels < 1 {
		return fmt.Errorf("%w: capture.input_channels must be at least 1", analysis.ErrInvalidInput)
	}
	if cp.Duration <= 0 {
		return fmt.Errorf("%w: capture.duration must be positive", analysis.ErrInvalidInput)
	}
	if cp.GateThreshold < 0 || cp.GateThreshold >= 1 {
		return fmt.Errorf("%w: capture.gate_threshold must be in [0, 1)", analysis.ErrInvalidInput)
	}
	switch cp.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: capture.bit_depth must be 16, 24 or 32, got %d", analysis.ErrInvalidInput, cp.BitDepth)
	}

	tr := c.Transport
	if tr.UDPEnabled {
		if _, _, err := net.SplitHostPort(tr.UDPTargetAddress); err != nil {
			return fmt.Errorf("%w: transport.udp_target_address %q: %v", analysis.ErrInvalidInput, tr.UDPTargetAddress, err)
		}
		if tr.UDPSendInterval <= 0 {
			return fmt.Errorf("%w: transport.udp_send_interval must be positive when UDP is enabled", analysis.ErrInvalidInput)
		}
	}
	return nil
}

type envOverride struct {
	name  string
	apply func(cfg *Config, val string) error
}

func boolEnv(set func(*Config, bool)) func(*Config, string) error {
	return func(cfg *Config, val string) error {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		set(cfg, b)
		return nil
	}
}

func durationEnv(set func(*Config, time.Duration)) func(*Config, string) error {
	return func(cfg *Config, val string) error {
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		set(cfg, d)
		return nil
	}
}

var envOverrides = []envOverride{
	{"DEBUG", boolEnv(func(c *Config, b bool) { c.Debug = b })},
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"WINDOW", func(c *Config, v string) error { return c.Analysis.Frame.Window.UnmarshalText([]byte(v)) }},
	{"INPUT_DEVICE", func(c *Config, v string) error {
		id, err := strconv.Atoi(v)
		c.Capture.InputDevice = id
		return err
	}},
	{"SAMPLE_RATE", func(c *Config, v string) error {
		rate, err := strconv.ParseFloat(v, 64)
		c.Capture.SampleRate = rate
		return err
	}},
	{"CAPTURE_DURATION", durationEnv(func(c *Config, d time.Duration) { c.Capture.Duration = d })},
	{"WS_ADDRESS", func(c *Config, v string) error { c.Transport.WebSocketAddress = v; return nil }},
	{"UDP_ENABLED", boolEnv(func(c *Config, b bool) { c.Transport.UDPEnabled = b })},
	{"UDP_TARGET_ADDRESS", func(c *Config, v string) error { c.Transport.UDPTargetAddress = v; return nil }},
	{"UDP_SEND_INTERVAL", durationEnv(func(c *Config, d time.Duration) { c.Transport.UDPSendInterval = d })},
}

// applyEnvOverrides applies every EARSHOT_* variable that is set. A value
// that does not parse is an error rather than being silently ignored.
func (c *Config) applyEnvOverrides() error {
	for _, o := range envOverrides {
		key := EnvPrefix + o.name
		val, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := o.apply(c, val); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", analysis.ErrInvalidInput, key, val, err)
		}
		logger.Debugf("overriding from env: %s=%s", key, val)
	}
	return nil
}
