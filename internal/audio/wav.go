// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSource decodes PCM WAV files.
type WAVSource struct {
	decoder    *wav.Decoder
	closer     io.Closer
	sampleRate int
	bitDepth   int
	numChans   int
	intBuf     *audio.IntBuffer
}

// NewWAVSource opens the WAV file at path.
func NewWAVSource(path string) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := NewWAVSourceReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.closer = f
	return src, nil
}

// NewWAVSourceReader decodes WAV data from r. Close does not close r.
func NewWAVSourceReader(r io.ReadSeeker) (*WAVSource, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	// Get format info without reading all samples
	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}
	if decoder.NumChans == 0 || decoder.BitDepth == 0 {
		return nil, errors.New("WAV header has no channels or bit depth")
	}

	return &WAVSource{
		decoder:    decoder,
		sampleRate: int(decoder.SampleRate),
		bitDepth:   int(decoder.BitDepth),
		numChans:   int(decoder.NumChans),
	}, nil
}

// ReadChunk reads the next chunk of samples.
func (d *WAVSource) ReadChunk(numSamples int) ([]float64, error) {
	// numSamples x numChannels for interleaved data
	bufSize := numSamples * d.numChans
	if d.intBuf == nil || cap(d.intBuf.Data) < bufSize {
		d.intBuf = &audio.IntBuffer{
			Data: make([]int, bufSize),
			Format: &audio.Format{
				NumChannels: d.numChans,
				SampleRate:  d.sampleRate,
			},
		}
	}
	d.intBuf.Data = d.intBuf.Data[:bufSize]

	n, err := d.decoder.PCMBuffer(d.intBuf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	maxVal := float64(audio.IntMaxSignedValue(d.bitDepth))
	frames := n / d.numChans
	samples := make([]float64, frames)
	for i := range frames {
		var sum float64
		for ch := range d.numChans {
			sum += float64(d.intBuf.Data[i*d.numChans+ch])
		}
		samples[i] = sum / float64(d.numChans) / maxVal
	}
	return samples, nil
}

func (d *WAVSource) SampleRate() int { return d.sampleRate }

func (d *WAVSource) NumChannels() int { return d.numChans }

// BitDepth returns the sample width of the file.
func (d *WAVSource) BitDepth() int { return d.bitDepth }

func (d *WAVSource) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}
