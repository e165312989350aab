// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// readChunkSize is the number of samples ReadAll requests per call.
const readChunkSize = 8192

// Decoder reads an audio file as mono float64 samples in [-1, 1].
// Multi-channel sources are downmixed by averaging.
type Decoder interface {
	// ReadChunk returns up to numSamples samples, or io.EOF once the
	// stream is exhausted.
	ReadChunk(numSamples int) ([]float64, error)

	SampleRate() int

	// NumChannels returns the channel count of the source before downmixing.
	NumChannels() int

	Close() error
}

// OpenDecoder picks a Decoder from the file extension.
func OpenDecoder(path string) (Decoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		return NewWAVSource(path)
	case ".mp3":
		return NewMP3Source(path)
	case ".flac":
		return NewFLACSource(path)
	default:
		return nil, fmt.Errorf("unsupported audio format: '%s'", ext)
	}
}

// ReadAll drains dec and returns every sample.
func ReadAll(dec Decoder) ([]float64, error) {
	var samples []float64
	for {
		chunk, err := dec.ReadChunk(readChunkSize)
		samples = append(samples, chunk...)
		if errors.Is(err, io.EOF) {
			return samples, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
