// SPDX-License-Identifier: MIT
package bitint

import (
	"errors"
	"fmt"
	"math/bits"
)

// Log2Zero is returned by Log2 and Log2_64 for an input of zero. It is a
// fixed sentinel and carries no meaning beyond "no bit is set".
const Log2Zero = -1

var (
	ErrInvalidArgument = errors.New("bitint: argument must be positive")
	ErrNotPowerOfTwo   = errors.New("bitint: argument must be a power of two")
)

// Log2 returns the position of the highest set bit of n, which is
// floor(log2(n)) for n >= 1. Log2(0) returns Log2Zero.
//
// bits.Len32 lowers to a single leading-zero-count instruction on all
// supported targets, so the call is constant time and branch free:
//
//	Input       Output  Binary
//	1           0       0000...0001
//	512         9       0000...0010 0000 0000
//	1000        9       0000...0011 1110 1000
//	0xFFFFFFFF  31      1111...1111
//	0           -1      (sentinel)
func Log2(n uint32) int {
	return bits.Len32(n) - 1
}

// Log2_64 is Log2 for 64-bit inputs.
func Log2_64(n uint64) int {
	return bits.Len64(n) - 1
}

// Log2Exact returns log2(n) for sizes held in a signed int, such as FFT
// window sizes read from configuration. Unlike Log2 it rejects input that
// is not a positive power of two.
func Log2Exact(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("log2 of %d: %w", n, ErrInvalidArgument)
	}
	if !IsPowerOfTwo(n) {
		return 0, fmt.Errorf("log2 of %d: %w", n, ErrNotPowerOfTwo)
	}
	return bits.Len64(uint64(n)) - 1, nil
}
