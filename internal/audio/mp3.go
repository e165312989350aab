// SPDX-License-Identifier: MIT
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces interleaved 16-bit little-endian stereo.
const (
	mp3Channels      = 2
	mp3BytesPerFrame = 2 * mp3Channels
)

// MP3Source decodes MPEG-1/2 Layer III files.
type MP3Source struct {
	decoder *mp3.Decoder
	file    *os.File
	buf     []byte
}

// NewMP3Source opens the MP3 file at path.
func NewMP3Source(path string) (*MP3Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	return &MP3Source{decoder: decoder, file: f}, nil
}

// ReadChunk reads the next chunk of samples.
func (d *MP3Source) ReadChunk(numSamples int) ([]float64, error) {
	want := numSamples * mp3BytesPerFrame
	if cap(d.buf) < want {
		d.buf = make([]byte, want)
	}
	buf := d.buf[:want]

	n, err := io.ReadFull(d.decoder, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read MP3 data: %w", err)
	}
	if n < mp3BytesPerFrame {
		return nil, io.EOF
	}

	frames := n / mp3BytesPerFrame
	samples := make([]float64, frames)
	for i := range frames {
		left := int16(binary.LittleEndian.Uint16(buf[i*4:]))
		right := int16(binary.LittleEndian.Uint16(buf[i*4+2:]))
		samples[i] = (float64(left) + float64(right)) / 2 / 32768.0
	}
	return samples, nil
}

func (d *MP3Source) SampleRate() int { return d.decoder.SampleRate() }

func (d *MP3Source) NumChannels() int { return mp3Channels }

func (d *MP3Source) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
