// Package config handles application configuration.
//
// The configuration file is read on startup and never written back.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"time"
)

const (
	appName        = "loudbuzz"
	configFileName = "config.json"
)

// Actuator names.
const (
	ActuatorWebview = "webview"
	ActuatorTone    = "tone"
)

// Config represents the application configuration.
type Config struct {
	Threshold      float64  `json:"threshold"`       // RMS on the 0..127 analyser scale
	PulseDuration  Duration `json:"pulse_duration"`  // Length of one haptic pulse
	BufferSize     int      `json:"buffer_size"`     // Analyser window, power of two
	SampleRate     int      `json:"sample_rate"`     // Capture rate in Hz
	FrameRate      int      `json:"frame_rate"`      // Loop iterations per second
	CaptureBackend string   `json:"capture_backend"` // "portaudio" or "pulse"
	Actuator       string   `json:"actuator"`        // "webview" or "tone"
	Hotkey         []string `json:"hotkey"`          // Global start/stop toggle, empty disables
	Language       string   `json:"language"`        // Status message language
	AcquireTimeout Duration `json:"acquire_timeout"` // Limit on waiting for microphone access
}

// Duration is a time.Duration encoded as a Go duration string ("200ms").
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler. Bare numbers are milliseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*d = Duration(time.Duration(v) * time.Millisecond)
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse duration: %w", err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Threshold:      20,
		PulseDuration:  Duration(200 * time.Millisecond),
		BufferSize:     2048,
		SampleRate:     48000,
		FrameRate:      60,
		CaptureBackend: "portaudio",
		Actuator:       ActuatorWebview,
		Hotkey:         []string{"ctrl", "shift", "l"},
		Language:       "en",
		AcquireTimeout: Duration(30 * time.Second),
	}
}

// Load loads configuration from the user config directory.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. Fields missing from the file keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// applyDefaults replaces out-of-range values with defaults.
func (c *Config) applyDefaults() {
	d := Default()

	if c.Threshold <= 0 || c.Threshold >= 128 {
		c.Threshold = d.Threshold
	}
	if c.PulseDuration <= 0 {
		c.PulseDuration = d.PulseDuration
	}
	if c.BufferSize < 32 || c.BufferSize > 32768 || bits.OnesCount(uint(c.BufferSize)) != 1 {
		c.BufferSize = d.BufferSize
	}
	if c.SampleRate <= 0 {
		c.SampleRate = d.SampleRate
	}
	if c.FrameRate <= 0 || c.FrameRate > 1000 {
		c.FrameRate = d.FrameRate
	}
	if c.CaptureBackend == "" {
		c.CaptureBackend = d.CaptureBackend
	}
	if c.Actuator != ActuatorWebview && c.Actuator != ActuatorTone {
		c.Actuator = d.Actuator
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = d.AcquireTimeout
	}
}
