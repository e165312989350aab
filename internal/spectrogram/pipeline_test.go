// SPDX-License-Identifier: MIT
package spectrogram

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"spectro/internal/analysis"
	"spectro/internal/audio"
	"spectro/internal/fft"
	"spectro/pkg/argb"
	"spectro/pkg/utils"
)

// memDecoder serves samples from memory in chunks.
type memDecoder struct {
	samples []float64
	rate    int
	pos     int
}

func (d *memDecoder) ReadChunk(n int) ([]float64, error) {
	if d.pos >= len(d.samples) {
		return nil, io.EOF
	}
	end := min(d.pos+n, len(d.samples))
	chunk := d.samples[d.pos:end]
	d.pos = end
	return chunk, nil
}

func (d *memDecoder) SampleRate() int  { return d.rate }
func (d *memDecoder) NumChannels() int { return 1 }
func (d *memDecoder) Close() error     { return nil }

var _ audio.Decoder = (*memDecoder)(nil)

func fileOptions(hop int) FileOptions {
	return FileOptions{
		Options: Options{
			Width:        1,
			Height:       32,
			FFTSize:      1024,
			MinFrequency: 20,
			MaxFrequency: 20000,
			Axis:         AxisLinear,
		},
		Window: fft.Hann,
		Hop:    hop,
	}
}

func TestPipelineFeedsRenderer(t *testing.T) {
	opts := testOptions(AxisLinear)
	p, err := NewPipeline(opts, fft.Hann, testLUT(t), analysis.Linear{Scaling: 1})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	// A loud tone near the top of the range lights the top row only.
	tone := utils.GenerateSineWaveFloat(opts.FFTSize, opts.SampleRate, 20000, 1)
	if err := p.ProcessFrame(tone); err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	col := make([]argb.Color, opts.Height)
	p.Renderer().LatestColumn(col)
	if col[0] != black {
		t.Errorf("bottom row = %v, want silence", col[0])
	}
	if col[opts.Height-1] == black {
		t.Error("top row is silent, want the tone")
	}

	// A full window of capture at the default hop of half a window.
	pcm := make([]int32, opts.FFTSize)
	if err := p.ProcessInt32(pcm); err != nil {
		t.Fatalf("ProcessInt32: %v", err)
	}
	if p.Renderer().Written() != 3 {
		t.Errorf("Written() = %d, want 3", p.Renderer().Written())
	}
	if p.FFT().Size() != opts.FFTSize {
		t.Errorf("FFT().Size() = %d", p.FFT().Size())
	}
}

func TestPipelineAccumulatesCaptureBuffers(t *testing.T) {
	opts := testOptions(AxisLog)
	n := opts.FFTSize
	tone := 100 * opts.SampleRate / float64(n)
	pcm := utils.GenerateSineWave(4*n, opts.SampleRate, tone)

	tests := []struct {
		name  string
		chunk int
		hop   int
	}{
		{"Half window buffers", n / 2, 0},
		{"Odd sized buffers", 300, 0},
		{"Small buffers with quarter hop", 64, n / 4},
		{"Whole stream at once with full hop", 4 * n, n},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lut := testLUT(t)
			scaler := analysis.Linear{Scaling: 1}
			p, err := NewPipeline(opts, fft.Hann, lut, scaler)
			if err != nil {
				t.Fatalf("NewPipeline: %v", err)
			}
			if err := p.SetHop(tt.hop); err != nil {
				t.Fatalf("SetHop(%d): %v", tt.hop, err)
			}

			for start := 0; start < len(pcm); start += tt.chunk {
				if err := p.ProcessInt32(pcm[start:min(start+tt.chunk, len(pcm))]); err != nil {
					t.Fatalf("ProcessInt32: %v", err)
				}
			}
			if want := uint64(len(pcm) / p.Hop()); p.Renderer().Written() != want {
				t.Errorf("Written() = %d, want %d", p.Renderer().Written(), want)
			}

			// The last column must equal a transform of the last full window.
			ref, err := fft.NewProcessor(n, opts.SampleRate, fft.Hann)
			if err != nil {
				t.Fatal(err)
			}
			want := ref.ProcessInt32(pcm[len(pcm)-n:])
			got := make([]float64, p.FFT().Bins())
			if err := p.FFT().MagnitudesInto(got); err != nil {
				t.Fatal(err)
			}
			for i := range want {
				if math.Abs(got[i]-want[i]) > 1e-12 {
					t.Fatalf("bin %d = %g, want %g", i, got[i], want[i])
				}
			}
			if peak, _ := p.FFT().Peak(); peak != 100 {
				t.Errorf("peak bin = %d, want 100", peak)
			}

			r, err := NewRenderer(opts, lut, scaler)
			if err != nil {
				t.Fatal(err)
			}
			if err := r.Push(want); err != nil {
				t.Fatal(err)
			}
			gotCol := make([]argb.Color, opts.Height)
			wantCol := make([]argb.Color, opts.Height)
			p.Renderer().LatestColumn(gotCol)
			r.LatestColumn(wantCol)
			for row := range wantCol {
				if gotCol[row] != wantCol[row] {
					t.Errorf("row %d = %v, want %v", row, gotCol[row], wantCol[row])
				}
			}
		})
	}
}

func TestPipelineSetHop(t *testing.T) {
	opts := testOptions(AxisLinear)
	p, err := NewPipeline(opts, fft.Hann, testLUT(t), analysis.Linear{Scaling: 1})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		hop     int
		want    int
		wantErr bool
	}{
		{0, opts.FFTSize / 2, false},
		{1, 1, false},
		{opts.FFTSize, opts.FFTSize, false},
		{opts.FFTSize + 1, 0, true},
		{-1, 0, true},
	}
	for _, tt := range tests {
		err := p.SetHop(tt.hop)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetHop(%d) error = %v, wantErr %v", tt.hop, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && p.Hop() != tt.want {
			t.Errorf("SetHop(%d): Hop() = %d, want %d", tt.hop, p.Hop(), tt.want)
		}
	}

	// Buffers shorter than the hop push nothing until the hop fills.
	if err := p.SetHop(0); err != nil {
		t.Fatal(err)
	}
	short := make([]int32, opts.FFTSize/2-1)
	if err := p.ProcessInt32(short); err != nil {
		t.Fatal(err)
	}
	if p.Renderer().Written() != 0 {
		t.Errorf("Written() = %d after a partial hop, want 0", p.Renderer().Written())
	}
	if err := p.ProcessInt32(short[:1]); err != nil {
		t.Fatal(err)
	}
	if p.Renderer().Written() != 1 {
		t.Errorf("Written() = %d after a full hop, want 1", p.Renderer().Written())
	}
}

func TestPipelineProcessInt32Allocations(t *testing.T) {
	opts := testOptions(AxisLog)
	p, err := NewPipeline(opts, fft.Hann, testLUT(t), analysis.Linear{Scaling: 1})
	if err != nil {
		t.Fatal(err)
	}
	buf := utils.GenerateSineWave(opts.FFTSize, opts.SampleRate, 1000)

	allocs := testing.AllocsPerRun(20, func() {
		_ = p.ProcessInt32(buf)
	})
	if allocs > 0 {
		t.Errorf("ProcessInt32 allocated %.1f times per call, want 0", allocs)
	}
}

func TestRenderFile(t *testing.T) {
	const rate = 16000
	samples := utils.GenerateSineWaveFloat(rate, rate, 1000, 0.8)

	tests := []struct {
		name        string
		samples     int
		hop         int
		wantColumns int
	}{
		{"Default hop", rate, 0, 1 + (rate-1024+511)/512},
		{"Quarter hop", rate, 256, 1 + (rate-1024+255)/256},
		{"Hop equal to size", rate, 1024, 1 + (rate-1024+1023)/1024},
		{"Shorter than one frame", 300, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := &memDecoder{samples: samples[:tt.samples], rate: rate}
			img, err := RenderFile(context.Background(), dec, fileOptions(tt.hop), testLUT(t), analysis.Linear{Scaling: 1})
			if err != nil {
				t.Fatalf("RenderFile: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantColumns || b.Dy() != 32 {
				t.Errorf("image is %dx%d, want %dx32", b.Dx(), b.Dy(), tt.wantColumns)
			}
		})
	}
}

func TestRenderFileTonePosition(t *testing.T) {
	const rate = 16000
	dec := &memDecoder{samples: utils.GenerateSineWaveFloat(rate, rate, 1000, 1), rate: rate}

	img, err := RenderFile(context.Background(), dec, fileOptions(0), testLUT(t), analysis.Linear{Scaling: 1})
	if err != nil {
		t.Fatalf("RenderFile: %v", err)
	}

	// Linear rows over 20..8000 Hz: 1 kHz sits in the bottom eighth.
	x := img.Bounds().Dx() / 2
	var brightest, brightestY int
	for y := range img.Bounds().Dy() {
		if v := int(img.NRGBAAt(x, y).R); v > brightest {
			brightest, brightestY = v, y
		}
	}
	if row := img.Bounds().Dy() - 1 - brightestY; row > 32/8 {
		t.Errorf("tone brightest at row %d from the bottom, want within the bottom eighth", row)
	}
}

func TestRenderFileErrors(t *testing.T) {
	lut := testLUT(t)
	scaler := analysis.Linear{Scaling: 1}
	tone := utils.GenerateSineWaveFloat(4096, 16000, 1000, 0.5)

	t.Run("Hop larger than size", func(t *testing.T) {
		dec := &memDecoder{samples: tone, rate: 16000}
		if _, err := RenderFile(context.Background(), dec, fileOptions(2048), lut, scaler); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("Empty input", func(t *testing.T) {
		dec := &memDecoder{rate: 16000}
		if _, err := RenderFile(context.Background(), dec, fileOptions(0), lut, scaler); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		dec := &memDecoder{samples: tone, rate: 16000}
		if _, err := RenderFile(ctx, dec, fileOptions(0), lut, scaler); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("Invalid options", func(t *testing.T) {
		opts := fileOptions(0)
		opts.FFTSize = 1000
		dec := &memDecoder{samples: tone, rate: 16000}
		if _, err := RenderFile(context.Background(), dec, opts, lut, scaler); err == nil {
			t.Error("expected an error")
		}
	})
}
