// SPDX-License-Identifier: MIT
/*
Package audio captures and decodes audio for the spectrogram pipeline:
- Lock-free live capture using PortAudio
- Noise gate with branchless implementation
- WAV recording of the captured stream with atomic state management
- WAV, MP3 and FLAC file decoding to mono float64 samples

Thread Safety:
- Uses atomic operations for state management
- Pre-allocates buffers to avoid GC in hot path
- Locks OS thread during audio processing
*/
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"spectro/internal/log"
	"spectro/pkg/bitint"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

var logger = log.New("audio")

// FrameSink consumes one buffer of mono 32-bit PCM per capture callback.
// Implementations run on the audio thread and must not block.
type FrameSink interface {
	ProcessInt32(samples []int32) error
}

// Options configures a capture Engine.
type Options struct {
	DeviceID        int // DefaultDeviceID for the host default.
	SampleRate      float64
	FramesPerBuffer int
	Channels        int
	LowLatency      bool
	GateThreshold   float64 // 0..1 of full scale; 0 disables the gate.
}

// DefaultOptions returns mono 44.1 kHz capture from the default device.
func DefaultOptions() Options {
	return Options{
		DeviceID:        DefaultDeviceID,
		SampleRate:      44100,
		FramesPerBuffer: 1024,
		Channels:        1,
		LowLatency:      true,
		GateThreshold:   0.001,
	}
}

// Validate checks that the options can open a stream.
func (o Options) Validate() error {
	switch {
	case o.DeviceID < DefaultDeviceID:
		return fmt.Errorf("invalid device ID: %d", o.DeviceID)
	case o.SampleRate <= 0:
		return fmt.Errorf("sample rate must be positive, got %f", o.SampleRate)
	case o.FramesPerBuffer < 1:
		return fmt.Errorf("frames per buffer must be positive, got %d", o.FramesPerBuffer)
	case o.Channels < 1:
		return fmt.Errorf("channel count must be positive, got %d", o.Channels)
	case o.GateThreshold < 0 || o.GateThreshold > 1:
		return fmt.Errorf("gate threshold %f is outside 0..1", o.GateThreshold)
	}
	return nil
}

// Stats counts capture callbacks.
type Stats struct {
	Buffers    uint64 // Callbacks received.
	Gated      uint64 // Buffers dropped by the noise gate.
	SinkErrors uint64
}

type Engine struct {
	opts Options
	sink FrameSink

	// Audio input handling.
	inputBuffer  []int32
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	monoBuffer []int32 // Channel 0 of inputBuffer when capturing more than one channel.

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold int32 // Absolute amplitude threshold (0-2147483647)

	// Recording state and buffers.
	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion

	buffers    atomic.Uint64
	gated      atomic.Uint64
	sinkErrors atomic.Uint64
}

// NewEngine resolves the input device and prepares the capture buffers.
// PortAudio must already be initialized.
func NewEngine(opts Options, sink FrameSink) (*Engine, error) {
	if sink == nil {
		return nil, errors.New("audio engine needs a frame sink")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	inputDevice, err := InputDevice(opts.DeviceID)
	if err != nil {
		return nil, err
	}
	if opts.Channels > inputDevice.MaxInputChannels {
		return nil, fmt.Errorf("device %s has %d input channels, %d requested",
			inputDevice.Name, inputDevice.MaxInputChannels, opts.Channels)
	}

	e := newEngine(opts, sink)
	e.inputDevice = inputDevice
	if opts.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	logger.Infof("input device %q, %d channel(s) at %.0f Hz, %d frames per buffer",
		inputDevice.Name, opts.Channels, opts.SampleRate, opts.FramesPerBuffer)
	return e, nil
}

// newEngine builds an engine with its buffers but no device.
func newEngine(opts Options, sink FrameSink) *Engine {
	e := &Engine{
		opts:        opts,
		sink:        sink,
		inputBuffer: make([]int32, opts.FramesPerBuffer*opts.Channels),
		monoBuffer:  make([]int32, opts.FramesPerBuffer),
	}
	e.SetGateThreshold(opts.GateThreshold)
	if opts.GateThreshold > 0 {
		e.EnableGate()
	}
	return e
}

func (e *Engine) StartInputStream() error {
	if e.inputDevice == nil {
		return errors.New("no input device selected")
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.opts.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.opts.FramesPerBuffer,
		SampleRate:      e.opts.SampleRate,
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

// Stats returns the callback counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Buffers:    e.buffers.Load(),
		Gated:      e.gated.Load(),
		SinkErrors: e.sinkErrors.Load(),
	}
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	n := copy(e.inputBuffer, in)
	e.processBuffer(e.inputBuffer[:n])

	// Write to WAV file if recording
	if atomic.LoadInt32(&e.isRecording) == 1 && e.wavEncoder != nil {
		e.sampleBuf.Data = e.sampleBuf.Data[:n]
		for i, sample := range e.inputBuffer[:n] {
			e.sampleBuf.Data[i] = int(sample)
		}

		if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
			logger.Errorf("Error writing to WAV file: %v", err)
		}
	}
}

// processBuffer gates the interleaved buffer and hands channel 0 to the sink.
// Performance Critical (Hot Path):
// - No allocations
// - Branchless noise gate implementation
func (e *Engine) processBuffer(buffer []int32) {
	e.buffers.Add(1)

	if e.gateEnabled && peakAmplitude(buffer) <= e.gateThreshold {
		e.gated.Add(1)
		return
	}
	if e.sink == nil {
		return
	}

	frame := buffer
	if e.opts.Channels > 1 {
		frames := min(len(buffer)/e.opts.Channels, len(e.monoBuffer))
		for i := range frames {
			e.monoBuffer[i] = buffer[i*e.opts.Channels]
		}
		frame = e.monoBuffer[:frames]
	}

	if err := e.sink.ProcessInt32(frame); err != nil {
		// Log the 1st, 2nd, 4th, 8th... failure so a broken sink cannot flood the log.
		if n := e.sinkErrors.Add(1); bitint.IsPowerOfTwo(int(min(n, math.MaxInt32))) {
			logger.Warnf("frame sink failed (%d errors): %v", n, err)
		}
	}
}

// peakAmplitude returns the largest absolute sample without branching.
func peakAmplitude(buffer []int32) int32 {
	var maxAmplitude int32
	for _, sample := range buffer {
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		diff := amplitude - maxAmplitude
		maxAmplitude += (diff & (diff >> 31)) ^ diff
	}
	return maxAmplitude
}
