// Package utils implements various helper functions.
package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// BitReverse64 returns the bit-reverse value of the input value, within a context of 2^bitLen.
func BitReverse64[T constraints.Integer](index T, bitLen int) T {
	if bitLen == 0 {
		return 0
	}
	return T(bits.Reverse64(uint64(index)) >> (64 - bitLen))
}

// BitReverseInPlaceSlice applies an in-place bit-reverse permutation on the input slice.
// The length of the slice must be a power of two.
func BitReverseInPlaceSlice[T any](slice []T, N int) {

	var bit, j int

	for i := 1; i < N; i++ {

		bit = N >> 1

		for j >= bit {
			j -= bit
			bit >>= 1
		}

		j += bit

		if i < j {
			slice[i], slice[j] = slice[j], slice[i]
		}
	}
}

// IsPowerOfTwo returns true if x is a strictly positive power of two.
func IsPowerOfTwo[T constraints.Integer](x T) bool {
	return x > 0 && x&(x-1) == 0
}

// Log2 returns floor(log2(x)) for x > 0.
func Log2[T constraints.Unsigned](x T) int {
	return bits.Len64(uint64(x)) - 1
}

// AllDistinct returns true if all elements in s are distinct, and false otherwise.
func AllDistinct[V comparable](s []V) bool {
	m := make(map[V]struct{}, len(s))
	for _, si := range s {
		if _, exists := m[si]; exists {
			return false
		}
		m[si] = struct{}{}
	}
	return true
}

// Alias1D returns true if x and y share the same base array.
// Taken from http://golang.org/src/pkg/math/big/nat.go#L340 .
func Alias1D[V any](x, y []V) bool {
	return cap(x) > 0 && cap(y) > 0 && &x[0:cap(x)][cap(x)-1] == &y[0:cap(y)][cap(y)-1]
}

// MaxSlice returns the maximum value in the slice.
func MaxSlice[V constraints.Ordered](slice []V) (max V) {
	if len(slice) == 0 {
		return
	}
	max = slice[0]
	for _, c := range slice[1:] {
		if c > max {
			max = c
		}
	}
	return
}

// MinSlice returns the minimum value in the slice.
func MinSlice[V constraints.Ordered](slice []V) (min V) {
	if len(slice) == 0 {
		return
	}
	min = slice[0]
	for _, c := range slice[1:] {
		if c < min {
			min = c
		}
	}
	return
}
