// SPDX-License-Identifier: MIT
package config

import (
	"spectro/internal/analysis"
	"spectro/internal/audio"
	"spectro/internal/fft"
	"spectro/internal/log"
	"spectro/internal/palette"
	"spectro/internal/spectrogram"
)

// Level returns the effective log level; Debug forces LevelDebug.
func (c *Config) Level() log.LogLevel {
	if c.Debug {
		return log.LevelDebug
	}
	level, ok := log.ParseLevel(c.LogLevel)
	if !ok {
		return log.LevelInfo
	}
	return level
}

// AudioOptions maps the audio section onto capture engine options.
func (c *Config) AudioOptions() audio.Options {
	return audio.Options{
		DeviceID:        c.Audio.InputDevice,
		SampleRate:      c.Audio.SampleRate,
		FramesPerBuffer: c.Audio.FramesPerBuffer,
		Channels:        c.Audio.InputChannels,
		LowLatency:      c.Audio.LowLatency,
		GateThreshold:   c.Audio.GateThreshold,
	}
}

// Window returns the configured FFT window.
func (c *Config) Window() (fft.WindowFunc, error) {
	return fft.ParseWindowFunc(c.Analysis.FFTWindow)
}

// Scaler builds the configured magnitude scaler.
func (c *Config) Scaler() (analysis.Scaler, error) {
	return analysis.ParseScaler(c.Analysis.Scaler, analysis.Params{
		Scaling: float32(c.Analysis.Scaling),
		DBMin:   float32(c.Analysis.DBMin),
		DBMax:   float32(c.Analysis.DBMax),
	})
}

// Axis returns the configured row layout.
func (c *Config) Axis() (spectrogram.AxisMode, error) {
	return spectrogram.ParseAxisMode(c.Spectrogram.Axis)
}

// Gradient resolves the configured preset name or serialized gradient.
func (c *Config) Gradient() (palette.Gradient, error) {
	return palette.Resolve(c.Spectrogram.Gradient)
}

// LUT builds the color lookup table for the configured gradient.
func (c *Config) LUT() (*palette.LUT, error) {
	g, err := c.Gradient()
	if err != nil {
		return nil, err
	}
	return palette.NewLUT(g, c.Spectrogram.LUTSize)
}

// RendererOptions maps the analysis and spectrogram sections onto renderer
// options for live capture.
func (c *Config) RendererOptions() (spectrogram.Options, error) {
	axis, err := c.Axis()
	if err != nil {
		return spectrogram.Options{}, err
	}
	return spectrogram.Options{
		Width:        c.Spectrogram.Width,
		Height:       c.Spectrogram.Height,
		FFTSize:      c.Analysis.FFTSize,
		SampleRate:   c.Audio.SampleRate,
		MinFrequency: c.Spectrogram.MinFrequency,
		MaxFrequency: c.Spectrogram.MaxFrequency,
		Axis:         axis,
	}, nil
}

// FileOptions maps the configuration onto offline render options.
func (c *Config) FileOptions() (spectrogram.FileOptions, error) {
	ro, err := c.RendererOptions()
	if err != nil {
		return spectrogram.FileOptions{}, err
	}
	window, err := c.Window()
	if err != nil {
		return spectrogram.FileOptions{}, err
	}
	return spectrogram.FileOptions{Options: ro, Window: window, Hop: c.Spectrogram.Hop}, nil
}
