/*
Package bitint provides the power-of-2 helpers used for audio buffer
and FFT sizing.

All operations are O(1), allocation-free and real-time safe.

Usage:

	// Round a scratch buffer up to the next FFT-friendly size
	capacity := bitint.NextPowerOfTwo(windowLen)

	// Verify a playback block size is valid
	ok := bitint.IsPowerOfTwo(blockSize)
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
//
// The subtraction (size-1) is what preserves exact powers of 2:
// for 8, bits.Len64(7) = 3 and 1<<3 = 8, while without it
// bits.Len64(8) = 4 would incorrectly double the input to 16.
//
// Examples:
//
//	Input  Output
//	4      4      Already power of 2 (preserved)
//	5      8      Next power after 5
//	0      1      Handle zero case
//	-1     1      Handle negative case
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}

	// 64-bit platforms (where int is 64-bit)
	if ^uint(0)>>63 == 0 {
		return int(1 << (bits.Len64(uint64(size - 1))))
	}

	// 32-bit platforms
	return int(1 << (bits.Len32(uint32(size - 1))))
}

// IsPowerOfTwo checks if n is a power of 2. The expression
// (n & (n-1)) == 0 holds only when exactly one bit is set:
// subtracting 1 from a power of 2 sets all lower bits, so the
// AND clears everything.
//
// Examples:
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
