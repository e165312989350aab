// SPDX-License-Identifier: MIT
//
// Package spectrogram renders magnitude spectra into a scrolling heat map.
// A Renderer holds one column of packed ARGB pixels per spectrum in a ring,
// newest on the right; frequency rows are laid out linearly, on a log scale
// or by octave band.
package spectrogram

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"spectro/internal/analysis"
	"spectro/internal/axis"
	"spectro/internal/fft"
	"spectro/internal/log"
	"spectro/internal/palette"
	"spectro/pkg/argb"
	"spectro/pkg/bitint"

	"gonum.org/v1/gonum/floats"
)

var logger = log.New("renderer")

// ErrSpectrumTooShort is returned by Push when the spectrum does not reach
// the highest bin the renderer displays.
var ErrSpectrumTooShort = errors.New("spectrum shorter than the displayed bin range")

// Options describes the image geometry and the frequency range it covers.
type Options struct {
	Width, Height int // Columns kept, rows per column.
	FFTSize       int
	SampleRate    float64
	MinFrequency  float64
	MaxFrequency  float64 // Clamped to the Nyquist frequency.
	Axis          AxisMode
}

// DefaultOptions returns an 800x256 log-axis view of 20 Hz to 20 kHz.
func DefaultOptions() Options {
	return Options{
		Width:        800,
		Height:       256,
		FFTSize:      1024,
		SampleRate:   44100,
		MinFrequency: 20,
		MaxFrequency: 20000,
		Axis:         AxisLog,
	}
}

// Validate checks that the options describe a drawable image.
func (o Options) Validate() error {
	switch {
	case o.Width < 1 || o.Height < 1:
		return fmt.Errorf("image size %dx%d must be positive", o.Width, o.Height)
	case !bitint.IsPowerOfTwo(o.FFTSize):
		return fmt.Errorf("fft size %d must be a power of two", o.FFTSize)
	case o.SampleRate <= 0:
		return fmt.Errorf("sample rate must be positive, got %f", o.SampleRate)
	case o.MinFrequency < 0 || !(o.MinFrequency < o.MaxFrequency):
		return fmt.Errorf("frequency range [%g, %g] is empty", o.MinFrequency, o.MaxFrequency)
	case o.MinFrequency >= o.SampleRate/2:
		return fmt.Errorf("minimum frequency %g is above Nyquist (%g)", o.MinFrequency, o.SampleRate/2)
	}
	return nil
}

// Renderer turns magnitude spectra into colored columns.
type Renderer struct {
	opts   Options
	lut    *palette.LUT
	scaler analysis.Scaler

	// Inclusive bin span feeding each row; row 0 is the lowest frequency.
	rowLo, rowHi []int
	bins         int // Spectrum length Push needs.

	mu      sync.RWMutex
	columns *Rolling[[]argb.Color]
}

// NewRenderer precomputes the row to bin table and allocates every column
// up front, filled with the color for silence.
func NewRenderer(opts Options, lut *palette.LUT, scaler analysis.Scaler) (*Renderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if lut == nil || scaler == nil {
		return nil, errors.New("renderer needs a palette and a scaler")
	}

	lo, hi, err := rowSpans(opts)
	if err != nil {
		return nil, err
	}

	silence := lut.Lookup(0)
	columns := NewRolling[[]argb.Color](opts.Width, nil)
	for i := range columns.data {
		col := make([]argb.Color, opts.Height)
		for j := range col {
			col[j] = silence
		}
		columns.data[i] = col
	}

	r := &Renderer{
		opts:    opts,
		lut:     lut,
		scaler:  scaler,
		rowLo:   lo,
		rowHi:   hi,
		bins:    hi[len(hi)-1] + 1,
		columns: columns,
	}
	logger.Debugf("%dx%d axis=%s bins=%d..%d", opts.Width, opts.Height, opts.Axis, lo[0], hi[len(hi)-1])
	return r, nil
}

// rowSpans maps every row to the FFT bins it summarises.
func rowSpans(o Options) (lo, hi []int, err error) {
	rate := int(o.SampleRate)
	binWidth := o.SampleRate / float64(o.FFTSize)
	maxFreq := min(o.MaxFrequency, float64(fft.MaxFrequencyForRate(rate)))
	lastBin := max(fft.TrimResultBufferTo(o.FFTSize, rate, int(math.Ceil(maxFreq))), 1)

	lo = make([]int, o.Height)
	hi = make([]int, o.Height)
	h := float64(o.Height)

	clampBin := func(b int) int { return max(0, min(b, lastBin)) }
	spanFor := func(r int, fLo, fHi float64) {
		lo[r] = clampBin(int(fLo / binWidth))
		hi[r] = max(lo[r], clampBin(int(math.Ceil(fHi/binWidth))-1))
	}

	switch o.Axis {
	case AxisLinear:
		step := (maxFreq - o.MinFrequency) / h
		for r := range o.Height {
			spanFor(r, o.MinFrequency+step*float64(r), o.MinFrequency+step*float64(r+1))
		}

	case AxisLog:
		a, err := axis.NewLog(o.MinFrequency, maxFreq)
		if err != nil {
			return nil, nil, err
		}
		for r := range o.Height {
			spanFor(r, a.ValueForDisplay(float64(r), h), a.ValueForDisplay(float64(r+1), h))
		}

	case AxisOctave:
		// Rows are shared evenly between octave bands starting at bin 1;
		// within a band its bins are spread linearly.
		n := float64(axis.Octaves(lastBin + 1))
		for r := range o.Height {
			p0 := float64(r) * n / h
			k := int(p0)
			first, last := axis.OctaveRange(k, lastBin+1)
			span := float64(last - first + 1)
			frac1 := min(float64(r+1)*n/h-float64(k), 1)
			lo[r] = first + int((p0-float64(k))*span)
			hi[r] = min(max(lo[r], first+int(math.Ceil(frac1*span))-1), last)
		}

	default:
		return nil, nil, fmt.Errorf("unknown axis mode %v", o.Axis)
	}
	return lo, hi, nil
}

// Push renders one spectrum as the newest column. Each row takes the
// largest magnitude over its bins, scales it and looks the color up in the
// palette. Push does not allocate.
func (r *Renderer) Push(magnitudes []float64) error {
	if len(magnitudes) < r.bins {
		return ErrSpectrumTooShort
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	col := *r.columns.Slot()
	for row := range col {
		m := floats.Max(magnitudes[r.rowLo[row] : r.rowHi[row]+1])
		col[row] = r.lut.Lookup(r.scaler.Scale(float32(m)))
	}
	return nil
}

// LatestColumn copies the newest column into dst, lowest frequency first,
// and returns the number of colors copied.
func (r *Renderer) LatestColumn(dst []argb.Color) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copy(dst, r.columns.Latest())
}

// LatestColumnSeq is LatestColumn that also returns the column's sequence
// number, the Written count when it was pushed. Both are read under one lock.
func (r *Renderer) LatestColumnSeq(dst []argb.Color) (n int, seq uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copy(dst, r.columns.Latest()), r.columns.Written()
}

// Image returns a snapshot: oldest column on the left, lowest frequency at
// the bottom.
func (r *Renderer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	_ = r.Draw(img)
	return img
}

// Draw paints the current columns into img, which must match the
// renderer's size.
func (r *Renderer) Draw(img *image.NRGBA) error {
	b := img.Bounds()
	if b.Dx() != r.opts.Width || b.Dy() != r.opts.Height {
		return fmt.Errorf("image is %dx%d, renderer is %dx%d", b.Dx(), b.Dy(), r.opts.Width, r.opts.Height)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for x, col := range r.columns.All() {
		for row, c := range col {
			off := img.PixOffset(b.Min.X+x, b.Max.Y-1-row)
			img.Pix[off+0] = c.R()
			img.Pix[off+1] = c.G()
			img.Pix[off+2] = c.B()
			img.Pix[off+3] = c.A()
		}
	}
	return nil
}

// Columns returns the number of columns kept.
func (r *Renderer) Columns() int { return r.opts.Width }

// Rows returns the number of rows per column.
func (r *Renderer) Rows() int { return r.opts.Height }

// Written returns how many columns have been pushed in total.
func (r *Renderer) Written() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.columns.Written()
}

// Bins returns the minimum spectrum length Push accepts.
func (r *Renderer) Bins() int { return r.bins }

// RowSpan returns the inclusive bin range summarised by row.
func (r *Renderer) RowSpan(row int) (lo, hi int) { return r.rowLo[row], r.rowHi[row] }

// RowFrequency returns the centre frequency of row in Hz.
func (r *Renderer) RowFrequency(row int) float64 {
	binWidth := r.opts.SampleRate / float64(r.opts.FFTSize)
	return float64(r.rowLo[row]+r.rowHi[row]) / 2 * binWidth
}

// Options returns the options the renderer was built with.
func (r *Renderer) Options() Options { return r.opts }
