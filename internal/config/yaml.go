// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"spectro/internal/log"

	"gopkg.in/yaml.v3"
)

var logger = log.New("config")

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug       bool              `yaml:"debug"`     // Shorthand for log_level: debug.
	LogLevel    string            `yaml:"log_level"` // "debug", "info", "warn" or "error".
	Audio       AudioConfig       `yaml:"audio"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Spectrogram SpectrogramConfig `yaml:"spectrogram"`
	Recording   RecordingConfig   `yaml:"recording"`
	Transport   TransportConfig   `yaml:"transport"`
}

// AudioConfig holds live capture settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index, -1 for default.
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz (e.g., 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames per capture callback.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	InputChannels   int     `yaml:"input_channels"`    // Channels to capture; only the first is analysed.
	GateThreshold   float64 `yaml:"gate_threshold"`    // Noise gate, 0..1 of full scale; 0 disables it.
}

// AnalysisConfig holds FFT and magnitude scaling settings.
type AnalysisConfig struct {
	FFTSize   int     `yaml:"fft_size"`   // Power of two.
	FFTWindow string  `yaml:"fft_window"` // Window function name (e.g., "hann", "blackman").
	Scaler    string  `yaml:"scaler"`     // linear, decibel or exaggerated.
	DBMin     float64 `yaml:"db_min"`
	DBMax     float64 `yaml:"db_max"`
	Scaling   float64 `yaml:"scaling"` // Gain for the linear and exaggerated scalers.
}

// SpectrogramConfig holds image geometry and colouring.
type SpectrogramConfig struct {
	Width        int     `yaml:"width"`  // Columns kept; file renders use one per frame.
	Height       int     `yaml:"height"` // Frequency rows.
	MinFrequency float64 `yaml:"min_frequency"`
	MaxFrequency float64 `yaml:"max_frequency"`
	Axis         string  `yaml:"axis"`     // linear, log or octave.
	Gradient     string  `yaml:"gradient"` // Preset name or serialized gradient.
	LUTSize      int     `yaml:"lut_size"`
	Hop          int     `yaml:"hop"` // Samples between columns, 0 for half the FFT size.
}

// RecordingConfig holds settings for recording the live input.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
}

// TransportConfig holds settings for streaming rendered columns.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddress string        `yaml:"websocket_address"`  // host:port to serve /ws on.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send column packets over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090".
	SendInterval     time.Duration `yaml:"send_interval"`      // How often new columns are pushed.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			InputChannels:   DefaultChannels,
			GateThreshold:   DefaultGateThreshold,
		},
		Analysis: AnalysisConfig{
			FFTSize:   DefaultFFTSize,
			FFTWindow: DefaultFFTWindow,
			Scaler:    DefaultScaler,
			DBMin:     -90,
			DBMax:     5,
			Scaling:   20,
		},
		Spectrogram: SpectrogramConfig{
			Width:        DefaultWidth,
			Height:       DefaultHeight,
			MinFrequency: DefaultMinFrequency,
			MaxFrequency: DefaultMaxFrequency,
			Axis:         DefaultAxis,
			Gradient:     DefaultGradient,
			LUTSize:      DefaultLUTSize,
		},
		Recording: RecordingConfig{
			OutputDir: "./recordings",
		},
		Transport: TransportConfig{
			WebSocketEnabled: true,
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
			SendInterval:     DefaultSendInterval,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty it looks for DefaultFile in the working directory and falls back
// to built-in defaults. Environment overrides are applied last, then the
// result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		logger.Debugf("loaded %s", path)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// applyEnvOverrides reads ENV_* variables. Values that do not parse are
// ignored with a warning.
func (c *Config) applyEnvOverrides() {
	envBool("ENV_DEBUG", &c.Debug)
	envString("ENV_LOG_LEVEL", &c.LogLevel)
	envInt("ENV_FFT_SIZE", &c.Analysis.FFTSize)
	envString("ENV_GRADIENT", &c.Spectrogram.Gradient)
	envString("ENV_WS_ADDRESS", &c.Transport.WebSocketAddress)
	envBool("ENV_UDP_ENABLED", &c.Transport.UDPEnabled)
	envString("ENV_UDP_TARGET_ADDRESS", &c.Transport.UDPTargetAddress)

	if val, ok := os.LookupEnv("ENV_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.SendInterval = dur
			logger.Debugf("Overriding transport.send_interval from env: %s", dur)
		} else {
			logger.Warnf("ignoring ENV_SEND_INTERVAL=%q: %v", val, err)
		}
	}
}

func envString(name string, dst *string) {
	if val, ok := os.LookupEnv(name); ok {
		*dst = val
		logger.Debugf("Overriding from %s: %s", name, val)
	}
}

func envBool(name string, dst *bool) {
	if val, ok := os.LookupEnv(name); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			logger.Warnf("ignoring %s=%q: %v", name, val, err)
			return
		}
		*dst = b
		logger.Debugf("Overriding from %s: %v", name, b)
	}
}

func envInt(name string, dst *int) {
	if val, ok := os.LookupEnv(name); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			logger.Warnf("ignoring %s=%q: %v", name, val, err)
			return
		}
		*dst = n
		logger.Debugf("Overriding from %s: %d", name, n)
	}
}
