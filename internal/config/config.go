// SPDX-License-Identifier: MIT
//
// Package config loads the spectro configuration: built-in defaults, then an
// optional YAML file, then ENV_* overrides, then validation.
package config

import (
	"errors"
	"time"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultFile is searched for in the working directory when no path is given.
const DefaultFile = "spectro.yaml"

// Core configuration constants that define the boundaries and defaults.
const (
	// Audio capture
	DefaultDeviceID        = MinDeviceID // System default device
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 1024
	DefaultChannels        = 1
	DefaultLowLatency      = true
	DefaultGateThreshold   = 0.001

	// Analysis
	DefaultFFTSize   = 2048
	DefaultFFTWindow = "hann"
	DefaultScaler    = "decibel"

	// Spectrogram
	DefaultWidth        = 800
	DefaultHeight       = 256
	DefaultMinFrequency = 20.0
	DefaultMaxFrequency = 20000.0
	DefaultAxis         = "log"
	DefaultGradient     = "spectrogram"
	DefaultLUTSize      = 1024

	// Transport
	DefaultWebSocketAddress = "127.0.0.1:8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultSendInterval     = 33 * time.Millisecond // ~30Hz

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192
	MaxChannels     = 32
	MinFFTSize      = 16
	MaxFFTSize      = 65536
	MaxImageSize    = 1 << 15
	MinLUTSize      = 2
	MaxLUTSize      = 1 << 16
)
