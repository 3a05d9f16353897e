package ring

import (
	"fmt"
	"unsafe"
)

// AddVec evaluates p3 = p1 + p2 mod modulus.
// p1, p2, p3 must be of the same size.
func AddVec(p1, p2, p3 []uint64, modulus uint64) {

	N := len(p1)

	if len(p2) != N || len(p3) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d len(p3)=%d", N, len(p2), len(p3)))
	}

	for j := 0; j < N-(N&7); j = j + 8 {

		/* #nosec G103 -- iteration number is ensured to be a multiple of 8*/
		x := (*[8]uint64)(unsafe.Pointer(&p1[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 8*/
		y := (*[8]uint64)(unsafe.Pointer(&p2[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 8*/
		z := (*[8]uint64)(unsafe.Pointer(&p3[j]))

		z[0] = AddMod(x[0], y[0], modulus)
		z[1] = AddMod(x[1], y[1], modulus)
		z[2] = AddMod(x[2], y[2], modulus)
		z[3] = AddMod(x[3], y[3], modulus)
		z[4] = AddMod(x[4], y[4], modulus)
		z[5] = AddMod(x[5], y[5], modulus)
		z[6] = AddMod(x[6], y[6], modulus)
		z[7] = AddMod(x[7], y[7], modulus)
	}

	for i := N - (N & 7); i < N; i++ {
		p3[i] = AddMod(p1[i], p2[i], modulus)
	}
}

// SubVec evaluates p3 = p1 - p2 mod modulus.
// p1, p2, p3 must be of the same size.
func SubVec(p1, p2, p3 []uint64, modulus uint64) {

	N := len(p1)

	if len(p2) != N || len(p3) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d len(p3)=%d", N, len(p2), len(p3)))
	}

	for i := range p1 {
		p3[i] = SubMod(p1[i], p2[i], modulus)
	}
}

// NegVec evaluates p2 = -p1 mod modulus.
func NegVec(p1, p2 []uint64, modulus uint64) {

	if len(p2) != len(p1) {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d", len(p1), len(p2)))
	}

	for i := range p1 {
		p2[i] = SubMod(0, p1[i], modulus)
	}
}

// MulCoeffsBarrettVec evaluates p3 = p1 * p2 mod modulus.
// p1, p2, p3 must be of the same size.
func MulCoeffsBarrettVec(p1, p2, p3 []uint64, modulus, mu uint64, qbit int) {

	N := len(p1)

	if len(p2) != N || len(p3) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d len(p3)=%d", N, len(p2), len(p3)))
	}

	for j := 0; j < N-(N&7); j = j + 8 {

		/* #nosec G103 -- iteration number is ensured to be a multiple of 8*/
		x := (*[8]uint64)(unsafe.Pointer(&p1[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 8*/
		y := (*[8]uint64)(unsafe.Pointer(&p2[j]))
		/* #nosec G103 -- iteration number is ensured to be a multiple of 8*/
		z := (*[8]uint64)(unsafe.Pointer(&p3[j]))

		z[0] = BRed(x[0], y[0], modulus, mu, qbit)
		z[1] = BRed(x[1], y[1], modulus, mu, qbit)
		z[2] = BRed(x[2], y[2], modulus, mu, qbit)
		z[3] = BRed(x[3], y[3], modulus, mu, qbit)
		z[4] = BRed(x[4], y[4], modulus, mu, qbit)
		z[5] = BRed(x[5], y[5], modulus, mu, qbit)
		z[6] = BRed(x[6], y[6], modulus, mu, qbit)
		z[7] = BRed(x[7], y[7], modulus, mu, qbit)
	}

	for i := N - (N & 7); i < N; i++ {
		p3[i] = BRed(p1[i], p2[i], modulus, mu, qbit)
	}
}

// MulCoeffsBarrettThenAddVec evaluates p3 = p3 + p1 * p2 mod modulus.
// p1, p2, p3 must be of the same size.
func MulCoeffsBarrettThenAddVec(p1, p2, p3 []uint64, modulus, mu uint64, qbit int) {

	N := len(p1)

	if len(p2) != N || len(p3) != N {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d len(p3)=%d", N, len(p2), len(p3)))
	}

	for i := range p1 {
		p3[i] = AddMod(p3[i], BRed(p1[i], p2[i], modulus, mu, qbit), modulus)
	}
}

// MulScalarBarrettVec evaluates p2 = p1 * scalar mod modulus.
// scalar must be in [0, modulus).
func MulScalarBarrettVec(p1 []uint64, scalar uint64, p2 []uint64, modulus, mu uint64, qbit int) {

	if len(p2) != len(p1) {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d", len(p1), len(p2)))
	}

	for i := range p1 {
		p2[i] = BRed(p1[i], scalar, modulus, mu, qbit)
	}
}

// ReduceVec evaluates p2 = p1 mod modulus for arbitrary 64-bit coefficients.
func ReduceVec(p1, p2 []uint64, modulus, mu uint64, qbit int) {

	if len(p2) != len(p1) {
		panic(fmt.Errorf("len(p1)=%d len(p2)=%d", len(p1), len(p2)))
	}

	for i := range p1 {
		p2[i] = BRedAdd(p1[i], modulus, mu, qbit)
	}
}

// ZeroVec sets all values of p1 to zero.
func ZeroVec(p1 []uint64) {
	for i := range p1 {
		p1[i] = 0
	}
}

// CountMismatchesVec returns the number of indexes at which p1 and p2 differ.
// Indexes beyond the shortest slice are counted as mismatches.
func CountMismatchesVec(p1, p2 []uint64) (count int) {
	n := min(len(p1), len(p2))
	for i := 0; i < n; i++ {
		if p1[i] != p2[i] {
			count++
		}
	}
	return count + max(len(p1), len(p2)) - n
}
