// Package sampling implements a seeded, deterministic source of randomness.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/zeebo/blake3"
)

const bufferSize = 1024

// Source is a deterministic stream of random bytes expanded from a 32 byte
// seed with the extendable output of keyed BLAKE3.
// A Source must not be used concurrently: use [Source.NewSource] to derive
// an independent child stream for each goroutine.
type Source struct {
	seed [32]byte
	xof  *blake3.Digest
	buff [bufferSize]byte
	ptr  int
}

// NewSeed returns a fresh 32 byte seed read from crypto/rand.
func NewSeed() (seed [32]byte) {
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Errorf("rand.Read: %w", err))
	}
	return
}

// NewSource instantiates a new [Source] from the given seed.
// Two sources with the same seed produce the same stream.
func NewSource(seed [32]byte) *Source {

	h, err := blake3.NewKeyed(seed[:])

	// Sanity check, NewKeyed only fails on a key of invalid length
	if err != nil {
		panic(fmt.Errorf("blake3.NewKeyed: %w", err))
	}

	s := &Source{seed: seed, xof: h.Digest()}
	s.refill()
	return s
}

// Seed returns the seed of the receiver.
func (s *Source) Seed() [32]byte {
	return s.seed
}

// NewSeed draws a new seed from the receiver.
func (s *Source) NewSeed() (seed [32]byte) {
	_, _ = s.Read(seed[:])
	return
}

// NewSource derives a new independent [Source] from the receiver.
func (s *Source) NewSource() *Source {
	return NewSource(s.NewSeed())
}

func (s *Source) refill() {
	if _, err := s.xof.Read(s.buff[:]); err != nil {
		panic(fmt.Errorf("blake3.Digest.Read: %w", err))
	}
	s.ptr = 0
}

// Read fills p with random bytes. It never returns an error.
func (s *Source) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if s.ptr == bufferSize {
			s.refill()
		}
		m := copy(p[n:], s.buff[s.ptr:])
		s.ptr += m
		n += m
	}
	return
}

// Uint64 returns a uniform random uint64.
func (s *Source) Uint64() uint64 {
	if s.ptr > bufferSize-8 {
		s.refill()
	}
	x := binary.LittleEndian.Uint64(s.buff[s.ptr:])
	s.ptr += 8
	return x
}

// Uint64N returns a uniform random uint64 in [0, n).
// It panics if n is zero.
func (s *Source) Uint64N(n uint64) uint64 {

	if n == 0 {
		panic("cannot Uint64N: n = 0")
	}

	// Lemire's multiply-shift with rejection
	hi, lo := bits.Mul64(s.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(s.Uint64(), n)
		}
	}
	return hi
}

// Float64 returns a uniform random float64 in [0, 1).
func (s *Source) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}
