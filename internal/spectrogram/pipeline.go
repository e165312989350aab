// SPDX-License-Identifier: MIT
package spectrogram

import (
	"context"
	"errors"
	"fmt"
	"image"

	"spectro/internal/analysis"
	"spectro/internal/audio"
	"spectro/internal/fft"
	"spectro/internal/palette"
)

// Pipeline runs sample frames through the FFT and into a Renderer. It
// satisfies audio.FrameSink so the capture engine can feed it directly.
//
// Captured PCM accumulates in a window of FFTSize samples and is transformed
// once every hop samples, however the capture buffers are sized.
type Pipeline struct {
	fft      *fft.Processor
	renderer *Renderer

	window  *Rolling[int32]
	frame   []int32 // Window contents, oldest first.
	hop     int
	pending int // Samples captured since the last transform.
}

var _ audio.FrameSink = (*Pipeline)(nil)

// NewPipeline builds the FFT processor and renderer for opts.
func NewPipeline(opts Options, window fft.WindowFunc, lut *palette.LUT, scaler analysis.Scaler) (*Pipeline, error) {
	proc, err := fft.NewProcessor(opts.FFTSize, opts.SampleRate, window)
	if err != nil {
		return nil, err
	}
	r, err := NewRenderer(opts, lut, scaler)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		fft:      proc,
		renderer: r,
		window:   NewRolling[int32](opts.FFTSize, 0),
		frame:    make([]int32, opts.FFTSize),
		hop:      defaultHop(opts.FFTSize),
	}, nil
}

func defaultHop(size int) int { return max(size/2, 1) }

// SetHop sets how many captured samples separate two columns. Zero restores
// the default of half the FFT size.
func (p *Pipeline) SetHop(hop int) error {
	size := p.fft.Size()
	if hop == 0 {
		hop = defaultHop(size)
	}
	if hop < 0 || hop > size {
		return fmt.Errorf("hop %d is outside 1..%d", hop, size)
	}
	p.hop = hop
	p.pending = 0
	return nil
}

// Hop returns the samples between columns pushed by ProcessInt32.
func (p *Pipeline) Hop() int { return p.hop }

// ProcessFrame transforms one frame of normalized samples and pushes the
// resulting column.
func (p *Pipeline) ProcessFrame(samples []float64) error {
	return p.renderer.Push(p.fft.Process(samples))
}

// ProcessInt32 appends captured PCM to the analysis window and pushes a
// column for every hop samples seen. It does not allocate and must not be
// called concurrently.
func (p *Pipeline) ProcessInt32(samples []int32) error {
	for _, s := range samples {
		p.window.Insert(s)
		p.pending++
		if p.pending < p.hop {
			continue
		}
		p.pending = 0
		p.window.CopyTo(p.frame)
		if err := p.renderer.Push(p.fft.ProcessInt32(p.frame)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) Renderer() *Renderer { return p.renderer }

func (p *Pipeline) FFT() *fft.Processor { return p.fft }

// FileOptions configures RenderFile. Width and SampleRate in Options are
// replaced by the frame count and the decoder's rate.
type FileOptions struct {
	Options
	Window fft.WindowFunc
	Hop    int // Samples between frames; 0 means FFTSize/2.
}

// RenderFile decodes all of dec and renders one column per hop.
func RenderFile(ctx context.Context, dec audio.Decoder, opts FileOptions, lut *palette.LUT, scaler analysis.Scaler) (*image.NRGBA, error) {
	samples, err := audio.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New("audio contains no samples")
	}

	size := opts.FFTSize
	hop := opts.Hop
	if hop <= 0 {
		hop = defaultHop(size)
	}
	if hop > size {
		return nil, fmt.Errorf("hop %d is larger than the fft size %d", hop, size)
	}
	frames := 1
	if len(samples) > size {
		frames += (len(samples) - size + hop - 1) / hop
	}

	ro := opts.Options
	ro.Width = frames
	ro.SampleRate = float64(dec.SampleRate())

	p, err := NewPipeline(ro, opts.Window, lut, scaler)
	if err != nil {
		return nil, err
	}
	logger.Infof("rendering %d samples at %d Hz into %d columns", len(samples), dec.SampleRate(), frames)

	for i := range frames {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		start := i * hop
		end := min(start+size, len(samples))
		if err := p.ProcessFrame(samples[start:end]); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return p.renderer.Image(), nil
}
