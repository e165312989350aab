// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// recordBitDepth matches the int32 samples PortAudio delivers.
const recordBitDepth = 32

// StartRecording writes every captured buffer, gated or not, to a WAV file
// until StopRecording.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, int(e.opts.SampleRate),
		recordBitDepth, e.opts.Channels, 1)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: e.opts.Channels,
			SampleRate:  int(e.opts.SampleRate),
		},
		Data:           make([]int, e.opts.FramesPerBuffer*e.opts.Channels),
		SourceBitDepth: recordBitDepth,
	}

	atomic.StoreInt32(&e.isRecording, 1)
	logger.Infof("recording to %s", filename)

	return nil
}

// IsRecording reports whether a recording is in progress.
func (e *Engine) IsRecording() bool {
	return atomic.LoadInt32(&e.isRecording) == 1
}

func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}

// Close stops any recording and the input stream.
func (e *Engine) Close() error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}

	if err := e.StopInputStream(); err != nil {
		return err
	}

	return nil
}
