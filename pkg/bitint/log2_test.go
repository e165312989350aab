// SPDX-License-Identifier: MIT
package bitint

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
)

func TestLog2(t *testing.T) {
	tests := []struct {
		n        uint32
		expected int
	}{
		{0, Log2Zero},        // Sentinel
		{1, 0},               // Smallest positive
		{2, 1},               // Power of two
		{3, 1},               // Between powers
		{512, 9},             // FFT size
		{1000, 9},            // Bin count, not a power
		{1024, 10},           // FFT size
		{65535, 15},          // All low bits
		{1 << 31, 31},        // Top bit
		{math.MaxUint32, 31}, // Maximum value
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d→%d", tt.n, tt.expected), func(t *testing.T) {
			result := Log2(tt.n)
			if result != tt.expected {
				t.Errorf("Log2(%d) = %d, expected %d", tt.n, result, tt.expected)
			}
		})
	}
}

func TestLog2PowersOfTwo(t *testing.T) {
	for k := range 32 {
		n := uint32(1) << k
		if got := Log2(n); got != k {
			t.Errorf("Log2(1<<%d) = %d, expected %d", k, got, k)
		}
	}
}

func TestLog2ZeroIsStable(t *testing.T) {
	for i := range 100 {
		if got := Log2(0); got != Log2Zero {
			t.Fatalf("call %d: Log2(0) = %d, expected %d", i, got, Log2Zero)
		}
	}
	if got := Log2_64(0); got != Log2Zero {
		t.Errorf("Log2_64(0) = %d, expected %d", got, Log2Zero)
	}
}

// log2InBounds reports whether 2^k <= n < 2^(k+1) with k = Log2(n).
func log2InBounds(n uint32) bool {
	k := Log2(n)
	return uint64(n) >= uint64(1)<<k && uint64(n) < uint64(1)<<(k+1)
}

func TestLog2Bounds(t *testing.T) {
	var inputs []uint32

	// Every value up to 2^16.
	for n := uint32(1); n <= 1<<16; n++ {
		inputs = append(inputs, n)
	}

	// Both sides of every power of two.
	for k := 1; k < 32; k++ {
		p := uint32(1) << k
		inputs = append(inputs, p-1, p, p+1)
	}

	// Random sample of the signed 31-bit range.
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1_000_000 {
		inputs = append(inputs, uint32(rng.Int32N(math.MaxInt32))+1)
	}

	for _, n := range inputs {
		if !log2InBounds(n) {
			k := Log2(n)
			t.Fatalf("Log2(%d) = %d violates 2^%d <= n < 2^%d", n, k, k, k+1)
		}
	}
}

func TestLog2_64(t *testing.T) {
	tests := []struct {
		n        uint64
		expected int
	}{
		{1, 0},
		{1 << 32, 32},
		{1<<40 + 7, 40},
		{math.MaxUint64, 63},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d→%d", tt.n, tt.expected), func(t *testing.T) {
			if result := Log2_64(tt.n); result != tt.expected {
				t.Errorf("Log2_64(%d) = %d, expected %d", tt.n, result, tt.expected)
			}
		})
	}
}

func TestLog2Exact(t *testing.T) {
	tests := []struct {
		n        int
		expected int
		err      error
	}{
		{-1024, 0, ErrInvalidArgument}, // Negative size
		{0, 0, ErrInvalidArgument},     // Zero size
		{1, 0, nil},                    // Trivial transform
		{1024, 10, nil},                // Common FFT size
		{1 << 20, 20, nil},             // Large FFT size
		{1000, 0, ErrNotPowerOfTwo},    // Not a power of two
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d→%d", tt.n, tt.expected), func(t *testing.T) {
			result, err := Log2Exact(tt.n)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Log2Exact(%d) error = %v, expected %v", tt.n, err, tt.err)
			}
			if result != tt.expected {
				t.Errorf("Log2Exact(%d) = %d, expected %d", tt.n, result, tt.expected)
			}
		})
	}
}

func TestLog2ZeroAllocs(t *testing.T) {
	var sink int
	allocs := testing.AllocsPerRun(100, func() {
		for n := uint32(0); n < 4096; n++ {
			sink += Log2(n)
		}
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Log2, got %.1f", allocs)
	}
	_ = sink
}
