package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the effect engine.
const (
	DefaultLogLevel         = "info"
	DefaultOutputDevice     = MinDeviceID // System default output device
	DefaultFramesPerBuffer  = 512         // Balanced latency/performance
	DefaultLowLatency       = false       // Standard latency mode
	DefaultFadeEnabled      = true
	DefaultFadeDuration     = 3.0 // Seconds
	DefaultGainEnabled      = true
	DefaultGainDecibels     = 0.0 // Unity
	DefaultBitDepth         = 16
	DefaultWebSocketAddress = "127.0.0.1:8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond // ~30Hz
	DefaultMeterEveryFrames = 8
	DefaultSpectrumEnabled  = false
	DefaultFFTSize          = 1024
	DefaultFFTWindow        = "Hann"

	// Hardware and processing limits
	MinDeviceID     = -1   // -1 represents system default device
	MaxBufferFrames = 8192 // Maximum frames per buffer (power of 2)
	MaxGainDecibels = 48.0
	MaxFFTSize      = 16384
)

// Config holds all runtime options, loaded from YAML and then overridden by
// environment variables and command line flags.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // debug, info, warn, error.
	Audio     AudioConfig     `yaml:"audio"`
	Effects   EffectsConfig   `yaml:"effects"`
	Recording RecordingConfig `yaml:"recording"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Transport TransportConfig `yaml:"transport"`

	// Set from the command line only.
	Command    string `yaml:"-"` // render, play, devices, formats.
	InputFile  string `yaml:"-"`
	OutputFile string `yaml:"-"` // Render target, or recording target when playing.
	PickDevice bool   `yaml:"-"` // Choose the output device interactively.
}

// AudioConfig holds settings for frame delivery and device output.
type AudioConfig struct {
	OutputDevice    int  `yaml:"output_device"`     // PortAudio device index (-1 for default).
	FramesPerBuffer int  `yaml:"frames_per_buffer"` // Frames per delivered audio frame.
	LowLatency      bool `yaml:"low_latency"`       // Request low latency settings from the device.
}

type EffectsConfig struct {
	Fade FadeConfig `yaml:"fade"`
	Gain GainConfig `yaml:"gain"`
}

// FadeConfig maps onto the AudioFade_* properties.
type FadeConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Duration float64 `yaml:"duration_seconds"`
	// TrackDuration overrides the length detected from the input file.
	TrackDuration time.Duration `yaml:"track_duration,omitempty"`
}

// GainConfig maps onto the AudioGain_* properties.
type GainConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Decibels float64 `yaml:"decibels"`
}

// RecordingConfig holds settings for writing processed audio to WAV.
type RecordingConfig struct {
	BitDepth int `yaml:"bit_depth"` // 16, 24 or 32.
}

// AnalysisConfig holds settings for the spectrum published alongside levels.
type AnalysisConfig struct {
	SpectrumEnabled bool   `yaml:"spectrum_enabled"`
	FFTSize         int    `yaml:"fft_size"`   // Power of 2.
	FFTWindow       string `yaml:"fft_window"` // e.g. "Hann", "Hamming".
}

// TransportConfig holds settings for publishing meter readings.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddress string        `yaml:"websocket_address"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
	MeterEveryFrames int           `yaml:"meter_every_frames"` // Publish one reading per N frames.
}

// NewConfig creates a new Config instance with default values.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			OutputDevice:    DefaultOutputDevice,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
		},
		Effects: EffectsConfig{
			Fade: FadeConfig{
				Enabled:  DefaultFadeEnabled,
				Duration: DefaultFadeDuration,
			},
			Gain: GainConfig{
				Enabled:  DefaultGainEnabled,
				Decibels: DefaultGainDecibels,
			},
		},
		Recording: RecordingConfig{
			BitDepth: DefaultBitDepth,
		},
		Analysis: AnalysisConfig{
			SpectrumEnabled: DefaultSpectrumEnabled,
			FFTSize:         DefaultFFTSize,
			FFTWindow:       DefaultFFTWindow,
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
			MeterEveryFrames: DefaultMeterEveryFrames,
		},
	}
}
