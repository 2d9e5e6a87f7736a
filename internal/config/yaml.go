// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"audiofx/internal/analysis"
	applog "audiofx/internal/log"
	"audiofx/pkg/bitint"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is searched for in the working directory when LoadConfig
// is called with an empty path.
const DefaultConfigFile = "config.yaml"

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	applog.Debugf("Config: Loaded %s", path)
	return cfg, nil
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level '%s' is not one of debug, info, warn, error", c.LogLevel)
	}

	// Audio
	if c.Audio.OutputDevice < MinDeviceID {
		return fmt.Errorf("audio.output_device must be >= %d, got %d", MinDeviceID, c.Audio.OutputDevice)
	}
	if !bitint.IsPowerOfTwo(c.Audio.FramesPerBuffer) || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer must be a power of 2 no larger than %d, got %d (nearest: %d)",
			MaxBufferFrames, c.Audio.FramesPerBuffer, min(bitint.NextPowerOfTwo(c.Audio.FramesPerBuffer), MaxBufferFrames))
	}

	// Effects
	fade := c.Effects.Fade
	if math.IsNaN(fade.Duration) || fade.Duration <= 0 {
		return fmt.Errorf("effects.fade.duration_seconds must be positive, got %v", fade.Duration)
	}
	if fade.TrackDuration < 0 {
		return fmt.Errorf("effects.fade.track_duration must not be negative, got %s", fade.TrackDuration)
	}
	gain := c.Effects.Gain.Decibels
	if math.IsNaN(gain) || math.Abs(gain) > MaxGainDecibels {
		return fmt.Errorf("effects.gain.decibels must be within ±%.0f dB, got %v", MaxGainDecibels, gain)
	}

	// Recording
	switch c.Recording.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("recording.bit_depth must be 16, 24 or 32, got %d", c.Recording.BitDepth)
	}

	// Analysis
	if c.Analysis.SpectrumEnabled {
		if !bitint.IsPowerOfTwo(c.Analysis.FFTSize) || c.Analysis.FFTSize > MaxFFTSize {
			return fmt.Errorf("analysis.fft_size must be a power of 2 no larger than %d, got %d",
				MaxFFTSize, c.Analysis.FFTSize)
		}
		if _, err := analysis.ParseWindowFunc(c.Analysis.FFTWindow); err != nil {
			return fmt.Errorf("analysis.fft_window: %w", err)
		}
	}

	// Transport
	if c.Transport.WebSocketEnabled && !strings.Contains(c.Transport.WebSocketAddress, ":") {
		return fmt.Errorf("transport.websocket_address '%s' appears invalid (missing port?)", c.Transport.WebSocketAddress)
	}
	if c.Transport.UDPEnabled {
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
		if c.Transport.UDPSendInterval <= 0 {
			return fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}
	if c.Transport.MeterEveryFrames < 1 {
		return fmt.Errorf("transport.meter_every_frames must be at least 1, got %d", c.Transport.MeterEveryFrames)
	}

	return nil
}

// applyEnvOverrides applies ENV_* variables on top of the file or default
// values. Values that fail to parse are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Infof("Config: Overriding log_level from env: %s", val)
	}

	// ENV_FADE_{...}

	// ENV_FADE_ENABLED
	if val, ok := os.LookupEnv("ENV_FADE_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Effects.Fade.Enabled = bVal
			applog.Infof("Config: Overriding effects.fade.enabled from env: %v", bVal)
		} else {
			applog.Warnf("Config: Ignoring ENV_FADE_ENABLED=%q: %v", val, err)
		}
	}
	// ENV_FADE_DURATION
	if val, ok := os.LookupEnv("ENV_FADE_DURATION"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			c.Effects.Fade.Duration = fVal
			applog.Infof("Config: Overriding effects.fade.duration_seconds from env: %v", fVal)
		} else {
			applog.Warnf("Config: Ignoring ENV_FADE_DURATION=%q: %v", val, err)
		}
	}

	// ENV_GAIN_{...}

	// ENV_GAIN_ENABLED
	if val, ok := os.LookupEnv("ENV_GAIN_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Effects.Gain.Enabled = bVal
			applog.Infof("Config: Overriding effects.gain.enabled from env: %v", bVal)
		} else {
			applog.Warnf("Config: Ignoring ENV_GAIN_ENABLED=%q: %v", val, err)
		}
	}
	// ENV_GAIN_DB
	if val, ok := os.LookupEnv("ENV_GAIN_DB"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			c.Effects.Gain.Decibels = fVal
			applog.Infof("Config: Overriding effects.gain.decibels from env: %v", fVal)
		} else {
			applog.Warnf("Config: Ignoring ENV_GAIN_DB=%q: %v", val, err)
		}
	}

	// ENV_SPECTRUM_ENABLED
	if val, ok := os.LookupEnv("ENV_SPECTRUM_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Analysis.SpectrumEnabled = bVal
			applog.Infof("Config: Overriding analysis.spectrum_enabled from env: %v", bVal)
		}
	}

	// ENV_WS_{...} and ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = bVal
			applog.Infof("Config: Overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		applog.Infof("Config: Overriding transport.websocket_address from env: %s", val)
	}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			applog.Infof("Config: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Infof("Config: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			applog.Infof("Config: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
