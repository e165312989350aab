/*
Package bitint provides bit manipulation functions for the spectrogram
hot path. The package covers the power-of-2 arithmetic needed for FFT
sizing and the integer base-2 logarithm used to derive transform stage
counts and octave bucket indices.

Design Principles:
- Zero Allocations: All operations use stack memory only
- Predictable Performance: O(1) constant time operations
- Real-Time Safe: No locks, syscalls, or blocking operations

Usage:

	// Stage count of a 1024 point FFT
	stages := bitint.Log2(1024) // Returns 10

	// Octave of an FFT bin
	octave := bitint.Log2(uint32(bin))

	// Round a requested size up to a valid FFT size
	size := bitint.NextPowerOfTwo(1000) // Returns 1024

----------------------------------------------------------------------

Log2 and NextPowerOfTwo are two views of the same quantity:

	bits.Len32(n) is the number of bits needed to hold n.

	Log2(n)           = bits.Len32(n) - 1     (highest set bit)
	NextPowerOfTwo(n) = 1 << bits.Len32(n-1)  (smallest 2^k >= n)

	For n = 8 (binary 1000):
	  Log2(8)            = 4 - 1 = 3
	  NextPowerOfTwo(8)  = 1 << Len(7) = 1 << 3 = 8

	For n = 9 (binary 1001):
	  Log2(9)            = 4 - 1 = 3
	  NextPowerOfTwo(9)  = 1 << Len(8) = 1 << 4 = 16

	The subtraction in NextPowerOfTwo keeps exact powers of two in
	place, without it every power of two would be doubled.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
//
//	Input  Output  Explanation
//	4      4      Already power of 2 (preserved)
//	5      8      Next power after 5
//	0      1      Handle zero case
//	-1     1      Handle negative case
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return int(1 << bits.Len(uint(size-1)))
}

// NextPowerOfTwo32 is NextPowerOfTwo for uint32 sizes. Sizes above 1<<31
// have no uint32 power of two to round to and return 0.
func NextPowerOfTwo32(size uint32) uint32 {
	if size <= 1 {
		return 1
	}
	return uint32(uint64(1) << bits.Len32(size-1))
}

// IsPowerOfTwo checks if n is a power of 2 using bit manipulation.
// The expression (n & (n-1)) == 0 works because:
//   - Powers of 2 have exactly one bit set
//   - Subtracting 1 from a power of 2 sets all lower bits
//   - AND operation will be 0 only for powers of 2
//
// Examples:
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
//	-8     false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// For uint32 values
func IsPowerOfTwo32(n uint32) bool {
	return n != 0 && (n&(n-1)) == 0
}
