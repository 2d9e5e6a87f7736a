/*
Package bitint holds the power-of-two helpers used to size frames and FFTs.

Both functions are allocation free and constant time, so they are safe to
call from the engine loop.

	size := bitint.NextPowerOfTwo(1000) // 1024
	ok := bitint.IsPowerOfTwo(size)     // true
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size, and 1 for
// size <= 0. Subtracting one first keeps exact powers of 2 unchanged:
// bits.Len(7) is 3, so 8 maps to 1<<3 rather than 1<<4.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. A power of 2 has
// one bit set, so clearing its lowest set bit with n&(n-1) leaves zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
