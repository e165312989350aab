// SPDX-License-Identifier: MIT
//
// Package fft turns blocks of audio samples into magnitude spectra using the
// gonum real FFT. A Processor owns every buffer it needs, so Process does not
// allocate and can run inside the audio callback.
package fft

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"spectro/internal/log"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

var logger = log.New("fft")

// int32Scale maps int32 PCM to [-1.0, 1.0).
const int32Scale = 1.0 / float64(0x80000000)

// workspace holds pre-allocated buffers for FFT calculations.
type workspace struct {
	input     []float64    // ...for real input samples (windowed, scaled)
	fftOutput []complex128 // ...for FFT complex output
	magnitude []float64    // ...for normalised magnitude output
	window    []float64    // ...for window function coefficients
}

// Processor holds the FFT processor state and configuration.
type Processor struct {
	fftSize    int
	sampleRate float64
	stages     int
	windowType WindowFunc
	fftObj     *fourier.FFT

	mu        sync.RWMutex // Guards workspace.magnitude against concurrent readers.
	workspace workspace
}

// NewProcessor creates a new FFT processor, pre-allocating all buffers and
// computing the window coefficients once.
func NewProcessor(fftSize int, sampleRate float64, windowType WindowFunc) (*Processor, error) {
	stages, err := StageCount(fftSize)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	coeffs := make([]float64, fftSize)
	windowCoefficients(coeffs, windowType)

	// FFT output size for real input is N/2 + 1 complex values.
	outputSize := fftSize/2 + 1

	logger.Debugf("size=%d stages=%d rate=%.1f Hz window=%s", fftSize, stages, sampleRate, windowType)

	return &Processor{
		fftSize:    fftSize,
		sampleRate: sampleRate,
		stages:     stages,
		windowType: windowType,
		fftObj:     fourier.NewFFT(fftSize),
		workspace: workspace{
			input:     make([]float64, fftSize),
			fftOutput: make([]complex128, outputSize),
			magnitude: make([]float64, outputSize),
			window:    coeffs,
		},
	}, nil
}

// Process windows samples, runs the FFT and returns the magnitude spectrum
// scaled by 2/N, so a full-scale sine on a bin centre reads as its amplitude
// times the window's coherent gain. Input shorter than the FFT size is
// zero-padded, longer input is truncated.
//
// The returned slice is owned by the processor and is overwritten by the next
// call. Readers on other goroutines use MagnitudesInto.
func (p *Processor) Process(samples []float64) []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	in := p.workspace.input
	n := copy(in, samples)
	for i := range n {
		in[i] *= p.workspace.window[i]
	}
	clear(in[n:])

	return p.transform()
}

// ProcessInt32 is Process for 32-bit PCM.
func (p *Processor) ProcessInt32(samples []int32) []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	in := p.workspace.input
	for i := range in {
		if i < len(samples) {
			in[i] = float64(samples[i]) * int32Scale * p.workspace.window[i]
		} else {
			in[i] = 0
		}
	}

	return p.transform()
}

// transform expects p.mu to be held for writing.
func (p *Processor) transform() []float64 {
	p.fftObj.Coefficients(p.workspace.fftOutput, p.workspace.input)
	for i, c := range p.workspace.fftOutput {
		p.workspace.magnitude[i] = cmplx.Abs(c)
	}
	floats.Scale(2/float64(p.fftSize), p.workspace.magnitude)
	return p.workspace.magnitude
}

// MagnitudesInto copies the latest magnitudes into dst, which must hold
// exactly Bins() values.
func (p *Processor) MagnitudesInto(dst []float64) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(dst) != len(p.workspace.magnitude) {
		return fmt.Errorf("destination slice length %d does not match required length %d", len(dst), len(p.workspace.magnitude))
	}
	copy(dst, p.workspace.magnitude)
	return nil
}

// Peak returns the bin with the largest magnitude, ignoring DC, and its
// magnitude. A spectrum with only a DC bin reports bin 0.
func (p *Processor) Peak() (bin int, magnitude float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.workspace.magnitude) < 2 {
		return 0, p.workspace.magnitude[0]
	}
	spectrum := p.workspace.magnitude[1:]
	i := floats.MaxIdx(spectrum)
	return i + 1, spectrum[i]
}

// FrequencyForBin returns the centre frequency in Hz of bin i, or 0 when i
// is out of range.
func (p *Processor) FrequencyForBin(i int) float64 {
	if i < 0 || i >= len(p.workspace.fftOutput) {
		return 0
	}
	return p.fftObj.Freq(i) * p.sampleRate
}

// BinForFrequency returns the bin whose centre is closest to freq, clamped
// to the valid bin range.
func (p *Processor) BinForFrequency(freq float64) int {
	bin := int(math.Round(freq * float64(p.fftSize) / p.sampleRate))
	return max(0, min(bin, p.Bins()-1))
}

// Size returns the FFT size in samples.
func (p *Processor) Size() int { return p.fftSize }

// Bins returns the number of magnitude values, fftSize/2 + 1.
func (p *Processor) Bins() int { return len(p.workspace.magnitude) }

// SampleRate returns the sample rate in Hz.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// Stages returns the number of radix-2 stages, log2 of the FFT size.
func (p *Processor) Stages() int { return p.stages }

// Window returns the window function applied before the transform.
func (p *Processor) Window() WindowFunc { return p.windowType }
