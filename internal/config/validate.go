// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"net"

	"spectro/internal/log"
	"spectro/pkg/bitint"
)

// Validate reports every problem in the configuration, each wrapping
// ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}
	keep := func(err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
		}
	}

	_, ok := log.ParseLevel(c.LogLevel)
	check(ok, "log_level %q is not a level", c.LogLevel)

	a := c.Audio
	check(a.InputDevice >= MinDeviceID, "audio.input_device %d is below %d", a.InputDevice, MinDeviceID)
	check(a.SampleRate >= MinSampleRate && a.SampleRate <= MaxSampleRate,
		"audio.sample_rate %g is outside %d..%d", a.SampleRate, MinSampleRate, MaxSampleRate)
	check(a.FramesPerBuffer > 0 && a.FramesPerBuffer <= MaxBufferFrames,
		"audio.frames_per_buffer %d is outside 1..%d", a.FramesPerBuffer, MaxBufferFrames)
	check(a.InputChannels > 0 && a.InputChannels <= MaxChannels,
		"audio.input_channels %d is outside 1..%d", a.InputChannels, MaxChannels)
	check(a.GateThreshold >= 0 && a.GateThreshold <= 1,
		"audio.gate_threshold %g is outside 0..1", a.GateThreshold)

	n := c.Analysis
	check(bitint.IsPowerOfTwo(n.FFTSize) && n.FFTSize >= MinFFTSize && n.FFTSize <= MaxFFTSize,
		"analysis.fft_size %d must be a power of two in %d..%d", n.FFTSize, MinFFTSize, MaxFFTSize)
	_, err := c.Window()
	keep(err)
	_, err = c.Scaler()
	keep(err)

	s := c.Spectrogram
	check(s.Width > 0 && s.Width <= MaxImageSize, "spectrogram.width %d is outside 1..%d", s.Width, MaxImageSize)
	check(s.Height > 0 && s.Height <= MaxImageSize, "spectrogram.height %d is outside 1..%d", s.Height, MaxImageSize)
	check(s.MinFrequency >= 0 && s.MinFrequency < s.MaxFrequency,
		"spectrogram frequency range [%g, %g] is empty", s.MinFrequency, s.MaxFrequency)
	check(s.MinFrequency < a.SampleRate/2,
		"spectrogram.min_frequency %g is above Nyquist for %g Hz", s.MinFrequency, a.SampleRate)
	check(s.LUTSize >= MinLUTSize && s.LUTSize <= MaxLUTSize,
		"spectrogram.lut_size %d is outside %d..%d", s.LUTSize, MinLUTSize, MaxLUTSize)
	check(s.Hop >= 0 && s.Hop <= n.FFTSize, "spectrogram.hop %d is outside 0..fft_size", s.Hop)
	_, err = c.Axis()
	keep(err)
	_, err = c.Gradient()
	keep(err)

	t := c.Transport
	if t.WebSocketEnabled {
		_, _, err := net.SplitHostPort(t.WebSocketAddress)
		check(err == nil, "transport.websocket_address %q is not host:port", t.WebSocketAddress)
	}
	if t.UDPEnabled {
		_, _, err := net.SplitHostPort(t.UDPTargetAddress)
		check(err == nil, "transport.udp_target_address %q is not host:port", t.UDPTargetAddress)
	}
	check(t.SendInterval > 0, "transport.send_interval must be positive")

	return errors.Join(errs...)
}
