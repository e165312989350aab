// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"math"

	"spectro/pkg/bitint"
)

// StageCount returns the number of radix-2 butterfly stages for fftSize,
// i.e. log2(fftSize). Sizes that are not positive powers of two are rejected.
func StageCount(fftSize int) (int, error) {
	stages, err := bitint.Log2Exact(fftSize)
	if err != nil {
		return 0, fmt.Errorf("fft size: %w", err)
	}
	return stages, nil
}

// FrequencyOfBin returns the centre frequency of bin, rounded to the
// nearest hertz.
func FrequencyOfBin(bin, rate, fftSize int) int {
	return int(math.Round(float64(bin) * (float64(rate) / float64(fftSize))))
}

// MaxFrequencyForRate returns the Nyquist frequency for rate.
func MaxFrequencyForRate(rate int) int {
	return rate / 2
}

// TrimResultBufferTo returns how many bins are needed to cover frequencies
// up to and including frequency, never more than fftSize/2.
func TrimResultBufferTo(fftSize, rate, frequency int) int {
	binWidth := float64(rate) / float64(fftSize)
	return min(int(math.Ceil(float64(frequency)/binWidth)), fftSize/2)
}

// FrequencySamplesAtRate returns how many samples one period of frequency
// spans at rate.
func FrequencySamplesAtRate(frequency float64, rate int) float64 {
	return float64(rate) / frequency
}
