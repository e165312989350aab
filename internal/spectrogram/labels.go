// SPDX-License-Identifier: MIT
package spectrogram

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"sort"
	"strconv"

	"spectro/internal/axis"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	tickLength = 4
	labelPad   = 3
)

var (
	labelColor      = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	labelBackground = color.NRGBA{A: 0xFF}
)

// Tick marks a labelled frequency at image row Y, counted from the top.
type Tick struct {
	Frequency float64
	Y         int
	Label     string
}

// FrequencyTicks picks label positions for an image rendered with opts and
// then resized to height rows. Log axes get 1, 2 and 5 per decade, linear
// axes an even step and octave axes the start of every band.
func FrequencyTicks(opts Options, height int) ([]Tick, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if height < 1 {
		return nil, fmt.Errorf("height %d must be positive", height)
	}
	lo, hi, err := rowSpans(opts)
	if err != nil {
		return nil, err
	}

	binWidth := opts.SampleRate / float64(opts.FFTSize)
	maxFreq := min(opts.MaxFrequency, opts.SampleRate/2)

	var freqs []float64
	switch opts.Axis {
	case AxisLog:
		a, err := axis.NewLog(opts.MinFrequency, maxFreq)
		if err != nil {
			return nil, err
		}
		for _, f := range a.Ticks() {
			if m := leadingDigit(f); m == 1 || m == 2 || m == 5 {
				freqs = append(freqs, f)
			}
		}
	case AxisLinear:
		step := niceStep((maxFreq - opts.MinFrequency) / 6)
		for f := math.Ceil(opts.MinFrequency/step) * step; f <= maxFreq; f += step {
			freqs = append(freqs, f)
		}
	case AxisOctave:
		for k := range axis.Octaves(hi[len(hi)-1] + 1) {
			first, _ := axis.OctaveRange(k, hi[len(hi)-1]+1)
			freqs = append(freqs, float64(first)*binWidth)
		}
	}

	rows := opts.Height
	ticks := make([]Tick, 0, len(freqs))
	for _, f := range freqs {
		bin := int(math.Round(f / binWidth))
		if bin < lo[0] {
			continue
		}
		r := sort.Search(rows, func(r int) bool { return hi[r] >= bin })
		if r == rows {
			continue
		}
		y := height - 1 - int((float64(r)+0.5)*float64(height)/float64(rows))
		ticks = append(ticks, Tick{Frequency: f, Y: max(0, min(y, height-1)), Label: formatHz(f)})
	}
	return ticks, nil
}

// niceStep rounds v up to 1, 2 or 5 times a power of ten.
func niceStep(v float64) float64 {
	if v <= 0 {
		return 1
	}
	p := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*p >= v {
			return m * p
		}
	}
	return 10 * p
}

// leadingDigit returns the first significant digit of f >= 1.
func leadingDigit(f float64) int {
	p := 1.0
	for p*10 <= f {
		p *= 10
	}
	return int(math.Round(f / p))
}

func formatHz(f float64) string {
	if f >= 1000 {
		return strconv.FormatFloat(math.Round(f/100)/10, 'f', -1, 64) + "k"
	}
	return strconv.FormatFloat(math.Round(f), 'f', -1, 64)
}

// Annotate returns img with a margin on the left holding a tick and label
// for each of ticks. Labels that would overlap the previous one are skipped.
// A nil face uses the built-in 7x13 bitmap font.
func Annotate(img image.Image, ticks []Tick, face font.Face) *image.NRGBA {
	if face == nil {
		face = basicfont.Face7x13
	}
	d := &font.Drawer{Face: face}

	widest := 0
	for _, t := range ticks {
		widest = max(widest, d.MeasureString(t.Label).Ceil())
	}
	margin := widest + tickLength + 2*labelPad

	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, margin+b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(labelBackground), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(margin, 0, margin+b.Dx(), b.Dy()), img, b.Min, draw.Src)

	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	d.Dst = out
	d.Src = image.NewUniform(labelColor)

	lastY := math.MinInt
	for _, t := range ticks {
		if t.Y < 0 || t.Y >= b.Dy() || abs(t.Y-lastY) < ascent+descent {
			continue
		}
		lastY = t.Y

		for x := margin - tickLength; x < margin; x++ {
			out.SetNRGBA(x, t.Y, labelColor)
		}
		baseline := max(ascent, min(t.Y+(ascent-descent)/2, b.Dy()-descent))
		x := margin - tickLength - labelPad - d.MeasureString(t.Label).Ceil()
		d.Dot = fixed.P(x, baseline)
		d.DrawString(t.Label)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ParseFace builds a face from TrueType data at size points.
func ParseFace(ttf []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// LoadFace reads a TrueType font file.
func LoadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFace(data, size)
}
