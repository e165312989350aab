// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACSource decodes FLAC files frame by frame. Samples left over from a
// frame are kept for the next ReadChunk.
type FLACSource struct {
	file    *os.File
	stream  *flac.Stream
	pending []float64
}

// NewFLACSource opens the FLAC file at path.
func NewFLACSource(path string) (*FLACSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	// The stream reads f through a bufio.Reader and never closes it.
	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}
	if stream.Info.NChannels == 0 {
		f.Close()
		return nil, fmt.Errorf("%s: FLAC stream has no channels", path)
	}

	return &FLACSource{file: f, stream: stream}, nil
}

// ReadChunk reads the next chunk of samples.
func (d *FLACSource) ReadChunk(numSamples int) ([]float64, error) {
	for len(d.pending) < numSamples {
		frame, err := d.stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		scale := 1 / float64(int64(1)<<(frame.BitsPerSample-1))
		channels := len(frame.Subframes)
		for i := range len(frame.Subframes[0].Samples) {
			var sum int64
			for _, sub := range frame.Subframes {
				sum += int64(sub.Samples[i])
			}
			d.pending = append(d.pending, float64(sum)/float64(channels)*scale)
		}
	}

	if len(d.pending) == 0 {
		return nil, io.EOF
	}
	n := min(numSamples, len(d.pending))
	samples := make([]float64, n)
	copy(samples, d.pending)
	d.pending = append(d.pending[:0], d.pending[n:]...)
	return samples, nil
}

func (d *FLACSource) SampleRate() int { return int(d.stream.Info.SampleRate) }

func (d *FLACSource) NumChannels() int { return int(d.stream.Info.NChannels) }

// NumSamples returns the per-channel sample count from the stream header,
// or 0 when unknown.
func (d *FLACSource) NumSamples() uint64 { return d.stream.Info.NSamples }

func (d *FLACSource) Close() error {
	if d.stream != nil {
		d.stream.Close()
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
