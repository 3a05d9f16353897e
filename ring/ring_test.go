package ring

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/gpuntt/utils/sampling"
)

type testParameters struct {
	logN int
	logQ []int
}

var testParametersLiteral = []testParameters{
	{logN: 2, logQ: []int{20}},
	{logN: 4, logQ: []int{20, 30}},
	{logN: 6, logQ: []int{62, 50, 62}},
	{logN: 10, logQ: []int{40, 50, 60}},
}

func testString(opname string, ringQ RNSRing) string {
	return fmt.Sprintf("%s/N=%d/limbs=%d", opname, ringQ.N(), ringQ.ModuliChainLength())
}

type testParams struct {
	ringQ           RNSRing
	ringQCyclic     RNSRing
	ringQTwisted    RNSRing
	uniformSamplerQ *UniformSampler
}

func genTestParams(p testParameters) (tc *testParams, err error) {

	tc = new(testParams)

	N := 1 << p.logN

	var moduli []uint64
	if moduli, err = GenModuli(uint64(N), p.logQ); err != nil {
		return nil, err
	}

	if tc.ringQ, err = NewRNSRing(N, moduli); err != nil {
		return nil, err
	}

	if tc.ringQCyclic, err = NewRNSRingWithVariant(N, moduli, Cyclic); err != nil {
		return nil, err
	}

	if tc.ringQTwisted, err = NewRNSRingWithVariant(N, moduli, Twisted); err != nil {
		return nil, err
	}

	tc.uniformSamplerQ = NewUniformSampler(sampling.NewSource([32]byte{}), moduli)
	return
}

func TestRNSRing(t *testing.T) {

	var err error

	testModularArithmetic(t)
	testBarrett(t)
	testParameterGenerator(t)
	testNewRNSRing(t)

	for _, p := range testParametersLiteral {

		var tc *testParams
		if tc, err = genTestParams(p); err != nil {
			t.Fatal(err)
		}

		testRootParameters(tc, t)
		testTwiddleTable(tc, t)
		testNTT(tc, t)
		testNTTEvaluationPoints(tc, t)
		testConvolution(tc, t)
		testRNSRingOps(tc, t)
		testPolyToBigintCentered(tc, t)
		testSampler(tc, t)
	}
}

func TestNTTRoundTripN65536(t *testing.T) {

	const logN = 16
	N := 1 << logN

	q, err := GenGoodPrime(uint64(N), DefaultPrimeMultiplier, 62)
	require.NoError(t, err)
	require.Equal(t, 62, bits.Len64(q))

	for _, v := range []NTTVariant{Merged, Cyclic} {

		t.Run(fmt.Sprintf("Variant=%s", v), func(t *testing.T) {

			r, err := NewRingWithVariant(N, q, v)
			require.NoError(t, err)

			want := r.NewPoly()
			for i := range want {
				want[i] = uint64(i)
			}

			have := r.NewPoly()
			r.NTT(want, have)
			require.NotEqual(t, want, have)
			r.INTT(have, have)

			require.Zero(t, CountMismatchesVec(want, have))
		})
	}
}

func testModularArithmetic(t *testing.T) {

	source := sampling.NewSource([32]byte{'m', 'o', 'd'})

	moduli := []uint64{2, 3, 17, 65537, 0x3ee0001, 1<<31 - 1, 0x1fffffffffe00001, 1<<62 + 135, 1<<63 - 25}

	t.Run("AddSubMod", func(t *testing.T) {
		for _, q := range moduli {
			Q := new(big.Int).SetUint64(q)
			for _, pair := range [][2]uint64{{0, 0}, {q - 1, q - 1}, {0, q - 1}, {q - 1, 0}} {
				a, b := pair[0], pair[1]
				require.Less(t, AddMod(a, b, q), q)
				require.Less(t, SubMod(a, b, q), q)
			}
			for range 512 {
				a, b := source.Uint64N(q), source.Uint64N(q)
				sum, diff := AddMod(a, b, q), SubMod(a, b, q)
				require.Less(t, sum, q)
				require.Less(t, diff, q)
				want := new(big.Int).Add(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
				require.Equal(t, want.Mod(want, Q).Uint64(), sum)
				want.Sub(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
				require.Equal(t, want.Mod(want, Q).Uint64(), diff)
			}
		}
	})

	t.Run("MulExpInverse", func(t *testing.T) {
		for _, q := range moduli {
			Q := new(big.Int).SetUint64(q)
			for range 256 {
				a, b := source.Uint64N(q), source.Uint64N(q)
				want := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
				require.Equal(t, want.Mod(want, Q).Uint64(), MulModNaive(a, b, q))

				e := source.Uint64()
				want.Exp(new(big.Int).SetUint64(a), new(big.Int).SetUint64(e), Q)
				require.Equal(t, want.Uint64(), ExpModNaive(a, e, q))
			}
			require.Equal(t, uint64(1)%q, ExpModNaive(5, 0, q))
		}

		for _, q := range []uint64{3, 17, 65537, 0x3ee0001, 1<<31 - 1, 0x1fffffffffe00001} {
			for range 64 {
				x := 1 + source.Uint64N(q-1)
				require.Equal(t, uint64(1), MulModNaive(x, InverseModNaive(x, q), q))
			}
		}
	})

	t.Run("IsPrime", func(t *testing.T) {
		for _, q := range []uint64{2, 3, 17, 65537, 0x3ee0001, 1<<31 - 1, 0x1fffffffffe00001} {
			require.True(t, IsPrime(q), q)
		}
		for _, q := range []uint64{0, 1, 4, 561, 65535, 1 << 62, 0x1fffffffffe00001 * 3} {
			require.False(t, IsPrime(q), q)
		}
	})

	t.Run("IsPrimitive", func(t *testing.T) {
		// 3 generates Z_17^*: 3^2 = 9 has order 8 and 3^4 = 13 has order 4
		require.True(t, IsPrimitive(3, 16, 17))
		require.True(t, IsPrimitive(9, 8, 17))
		require.True(t, IsPrimitive(13, 4, 17))
		require.False(t, IsPrimitive(13, 8, 17))
		require.False(t, IsPrimitive(9, 16, 17))
		require.True(t, IsPrimitive(16, 2, 17))
	})

	t.Run("BitReverse", func(t *testing.T) {
		require.Equal(t, uint64(0b1011), BitReverse(0b1101, 4))
		require.Equal(t, uint64(1), BitReverse(1<<9, 10))
		for i := uint64(0); i < 64; i++ {
			require.Equal(t, i, BitReverse(BitReverse(i, 6), 6))
		}
	})
}

func testBarrett(t *testing.T) {

	source := sampling.NewSource([32]byte{'b', 'r', 'e', 'd'})

	t.Run("Constant", func(t *testing.T) {
		for _, q := range []uint64{3, 17, 65537, 0x3ee0001, 0x1fffffffffe00001, 1<<62 - 57} {
			mu, qbit := GetBarrettConstant(q)
			want := new(big.Int).Lsh(big.NewInt(1), uint(2*qbit+1))
			want.Quo(want, new(big.Int).SetUint64(q))
			require.Equal(t, want.Uint64(), mu)
			require.Equal(t, bits.Len64(q), qbit)
		}
		require.Panics(t, func() { GetBarrettConstant(1<<63 + 1) })
	})

	t.Run("Reduce", func(t *testing.T) {
		for _, q := range []uint64{3, 17, 65537, 0x3ee0001, 1<<31 - 1, 1 << 32, 1<<32 + 15, 0x1fffffffffe00001, 1<<62 - 57} {

			mu, qbit := GetBarrettConstant(q)

			require.Equal(t, MulModNaive(q-1, q-1, q), BRed(q-1, q-1, q, mu, qbit))
			require.Equal(t, uint64(0), BRed(0, q-1, q, mu, qbit))
			require.Equal(t, ^uint64(0)%q, BRedAdd(^uint64(0), q, mu, qbit))

			for range 1024 {
				a, b := source.Uint64N(q), source.Uint64N(q)
				require.Equal(t, MulModNaive(a, b, q), BRed(a, b, q, mu, qbit))
				x := source.Uint64()
				require.Equal(t, x%q, BRedAdd(x, q, mu, qbit))
			}
		}
	})
}

func testParameterGenerator(t *testing.T) {

	t.Run("GenGoodPrime", func(t *testing.T) {

		for _, logN := range []int{1, 4, 10, 16} {
			for _, bw := range []int{30, 40, 50, 62} {

				n := uint64(1) << logN
				step := DefaultPrimeMultiplier * 2 * n

				q, err := GenGoodPrime(n, DefaultPrimeMultiplier, bw)
				require.NoError(t, err)
				require.True(t, IsPrime(q))
				require.Equal(t, bw, bits.Len64(q))
				require.Equal(t, uint64(1), q%step)

				// q is the first prime of the progression with bw bits
				for c := q - step; bits.Len64(c) == bw; c -= step {
					require.False(t, IsPrime(c))
				}
			}
		}
	})

	t.Run("GenNTTPrimes", func(t *testing.T) {
		primes, err := GenNTTPrimes(1<<10, 1, 40, 8)
		require.NoError(t, err)
		require.Len(t, primes, 8)
		for i, q := range primes {
			require.True(t, IsPrime(q))
			require.Equal(t, uint64(1), q%(1<<11))
			if i > 0 {
				require.Greater(t, q, primes[i-1])
			}
		}

		moduli, err := GenModuli(1<<10, []int{40, 50, 40})
		require.NoError(t, err)
		require.Equal(t, 40, bits.Len64(moduli[0]))
		require.Equal(t, 50, bits.Len64(moduli[1]))
		require.Equal(t, 40, bits.Len64(moduli[2]))
		require.Less(t, moduli[0], moduli[2])
	})

	t.Run("Exhausted", func(t *testing.T) {
		_, err := GenGoodPrime(1<<10, DefaultPrimeMultiplier, 10)
		require.True(t, errors.Is(err, ErrPrimeNotFound))

		_, err = GenNTTPrimes(1<<4, DefaultPrimeMultiplier, 8, 1000)
		require.True(t, errors.Is(err, ErrPrimeNotFound))

		_, err = GenGoodPrime(1<<4, DefaultPrimeMultiplier, 63)
		require.Error(t, err)
		require.False(t, errors.Is(err, ErrPrimeNotFound))
	})

	t.Run("RootParameters", func(t *testing.T) {
		_, err := NewRootParameters(0, 97)
		require.Error(t, err)
		_, err = NewRootParameters(4, 15)
		require.Error(t, err)
		_, err = NewRootParameters(4, 17)
		require.Error(t, err)
		_, err = NewRootParametersWithFactors(3, 97, []uint64{2})
		require.Error(t, err)

		rp, err := NewRootParameters(3, 97)
		require.NoError(t, err)
		require.Equal(t, []uint64{2, 3}, rp.Factors)
		require.Equal(t, uint64(5), rp.Generator)

		rpWithFactors, err := NewRootParametersWithFactors(3, 97, []uint64{2, 3})
		require.NoError(t, err)
		require.True(t, rp.Equal(rpWithFactors))
		require.True(t, cmp.Equal(rp, rpWithFactors))

		rpFromBitWidth, err := NewRootParametersFromBitWidth(10, 40)
		require.NoError(t, err)
		require.Equal(t, 40, rpFromBitWidth.QBit)
		require.False(t, rp.Equal(rpFromBitWidth))
	})

	t.Run("GenPrimitiveRoot", func(t *testing.T) {
		for _, n := range []uint64{2, 4, 16, 32} {
			root, err := GenPrimitiveRoot(n, 97)
			require.NoError(t, err)
			require.True(t, IsPrimitive(root, n, 97))
		}
		_, err := GenPrimitiveRoot(64, 97)
		require.Error(t, err)
		_, err = GenPrimitiveRoot(12, 97)
		require.Error(t, err)
	})

	t.Run("GetOmega", func(t *testing.T) {
		q := uint64(0x3ee0001)
		w := uint64(12345)
		for stage := 0; stage < 8; stage++ {
			for k := uint64(0); k < 16; k++ {
				require.Equal(t, ExpModNaive(w, k<<stage, q), GetOmega(stage, k, w, q))
			}
		}
	})
}

func testNewRNSRing(t *testing.T) {
	t.Run("NewRNSRing", func(t *testing.T) {
		_, err := NewRNSRing(16, nil)
		require.Error(t, err)
		_, err = NewRNSRing(16, []uint64{97, 97})
		require.Error(t, err)
		_, err = NewRNSRing(12, []uint64{97})
		require.Error(t, err)
		_, err = NewRNSRing(64, []uint64{97})
		require.Error(t, err)

		r, err := NewRNSRing(16, []uint64{97, 193})
		require.NoError(t, err)
		require.Equal(t, 16, r.N())
		require.Equal(t, 4, r.LogN())
		require.Equal(t, 1, r.Level())
		require.Equal(t, []uint64{97, 193}, r.ModuliChain())
		require.Equal(t, Merged, r.Variant())
		require.Len(t, r.AtLevel(0), 1)
		require.Equal(t, int64(97*193), r.Modulus().Int64())

		rr, err := NewRNSRingFromRings([]*Ring{r[1], r[0]})
		require.NoError(t, err)
		require.Equal(t, []uint64{193, 97}, rr.ModuliChain())
	})
}

func testRootParameters(tc *testParams, t *testing.T) {

	t.Run(testString("RootParameters", tc.ringQ), func(t *testing.T) {

		for _, s := range tc.ringQ {

			q, N := s.Modulus, uint64(s.N)

			require.True(t, IsPrimitive(s.Omega, N, q))
			require.True(t, IsPrimitive(s.Psi, 2*N, q))
			require.Equal(t, s.Omega, MulModNaive(s.Psi, s.Psi, q))
			require.Equal(t, uint64(1), MulModNaive(s.Psi, s.PsiInv, q))
			require.Equal(t, uint64(1), MulModNaive(s.Omega, s.OmegaInv, q))
			require.Equal(t, uint64(1), MulModNaive(N, s.NInv, q))

			mu, qbit := GetBarrettConstant(q)
			require.Equal(t, mu, s.Mu)
			require.Equal(t, qbit, s.QBit)

			// Exact order
			x := uint64(1)
			for k := uint64(1); k < 2*N; k++ {
				x = MulModNaive(x, s.Psi, q)
				require.NotEqual(t, uint64(1), x)
			}
		}
	})
}

func testTwiddleTable(tc *testParams, t *testing.T) {

	t.Run(testString("TwiddleTable", tc.ringQ), func(t *testing.T) {

		for _, s := range tc.ringQ {

			rp := s.RootParameters
			logN := rp.LogN

			for _, v := range []NTTVariant{Merged, Cyclic, Twisted} {
				kind, order := v.TwiddleLayout()
				require.NoError(t, NewTwiddleTable(rp, kind, order).Validate(v))
			}

			psiBR := NewTwiddleTable(rp, Psi, BitReversed)
			psiNat := NewTwiddleTable(rp, Psi, Natural)
			omegaBR := NewTwiddleTable(rp, Omega, BitReversed)

			for i := 0; i < rp.N; i++ {
				want := ExpModNaive(rp.Psi, uint64(i), rp.Modulus)
				require.Equal(t, want, psiBR.Forward[BitReverse(uint64(i), logN)])
				require.Equal(t, want, psiNat.Forward[i])
				require.Equal(t, uint64(1), MulModNaive(psiBR.Forward[i], psiBR.Backward[i], rp.Modulus))
				require.Equal(t, uint64(1), MulModNaive(omegaBR.Forward[i], omegaBR.Backward[i], rp.Modulus))
			}

			require.ErrorIs(t, psiNat.Validate(Merged), ErrTwiddleLayout)
			require.ErrorIs(t, psiBR.Validate(Twisted), ErrTwiddleLayout)
			require.ErrorIs(t, omegaBR.Validate(Merged), ErrTwiddleLayout)

			if rp.N >= 4 {
				mislabeled := *psiNat
				mislabeled.Order = BitReversed
				require.ErrorIs(t, mislabeled.Validate(Merged), ErrTwiddleLayout)

				mislabeled = *psiBR
				mislabeled.Order = Natural
				require.ErrorIs(t, mislabeled.Validate(Twisted), ErrTwiddleLayout)

				mislabeled = *omegaBR
				mislabeled.Kind = Psi
				require.ErrorIs(t, mislabeled.Validate(Merged), ErrTwiddleLayout)
			}
		}
	})
}

func testNTT(tc *testParams, t *testing.T) {

	for _, ringQ := range []RNSRing{tc.ringQ, tc.ringQCyclic, tc.ringQTwisted} {

		t.Run(testString(fmt.Sprintf("NTT/RoundTrip/%s", ringQ.Variant()), ringQ), func(t *testing.T) {

			want := tc.uniformSamplerQ.ReadNew(ringQ.N())

			have := ringQ.NewRNSPoly()
			ringQ.NTT(want, have)

			for i, s := range ringQ {
				for _, c := range have.At(i) {
					require.Less(t, c, s.Modulus)
				}
			}

			ringQ.INTT(have, have)
			require.True(t, want.Equal(&have))
		})
	}

	t.Run(testString("NTT/MergedEqualsTwisted", tc.ringQ), func(t *testing.T) {

		p := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())

		merged := tc.ringQ.NewRNSPoly()
		twisted := tc.ringQ.NewRNSPoly()

		tc.ringQ.NTT(p, merged)
		tc.ringQTwisted.NTT(p, twisted)
		require.Zero(t, CountMismatches(merged, twisted))

		tc.ringQ.INTT(p, merged)
		tc.ringQTwisted.INTT(p, twisted)
		require.Zero(t, CountMismatches(merged, twisted))
	})

	t.Run(testString("NTT/InPlace", tc.ringQ), func(t *testing.T) {
		p := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())
		outOfPlace := tc.ringQ.NewRNSPoly()
		tc.ringQ.NTT(p, outOfPlace)
		tc.ringQ.NTT(p, p)
		require.True(t, p.Equal(&outOfPlace))
	})
}

// evalPoly returns sum coeffs[i] * x^i mod q.
func evalPoly(coeffs []uint64, x, q uint64) (y uint64) {
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = AddMod(MulModNaive(y, x, q), coeffs[i], q)
	}
	return
}

func testNTTEvaluationPoints(tc *testParams, t *testing.T) {

	if tc.ringQ.N() > 64 {
		return
	}

	t.Run(testString("NTT/EvaluationPoints", tc.ringQ), func(t *testing.T) {

		p := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())

		merged := tc.ringQ.NewRNSPoly()
		cyclic := tc.ringQ.NewRNSPoly()

		tc.ringQ.NTT(p, merged)
		tc.ringQCyclic.NTT(p, cyclic)

		logN := tc.ringQ.LogN()

		for i, s := range tc.ringQ {
			q := s.Modulus
			for k := 0; k < s.N; k++ {
				kRev := BitReverse(uint64(k), logN)
				require.Equal(t, evalPoly(p.At(i), ExpModNaive(s.Psi, 2*kRev+1, q), q), merged.At(i)[k])
				require.Equal(t, evalPoly(p.At(i), ExpModNaive(s.Omega, kRev, q), q), cyclic.At(i)[k])
			}
		}
	})
}

// mulNaive returns a*b mod (X^N + 1) if negacyclic, else a*b mod (X^N - 1).
func mulNaive(a, b []uint64, q uint64, negacyclic bool) (c []uint64) {
	N := len(a)
	c = make([]uint64, N)
	for i := range a {
		for j := range b {
			x := MulModNaive(a[i], b[j], q)
			if k := i + j; k < N {
				c[k] = AddMod(c[k], x, q)
			} else if negacyclic {
				c[k-N] = SubMod(c[k-N], x, q)
			} else {
				c[k-N] = AddMod(c[k-N], x, q)
			}
		}
	}
	return
}

func testConvolution(tc *testParams, t *testing.T) {

	for _, ringQ := range []RNSRing{tc.ringQ, tc.ringQCyclic, tc.ringQTwisted} {

		t.Run(testString(fmt.Sprintf("NTT/Convolution/%s", ringQ.Variant()), ringQ), func(t *testing.T) {

			a := tc.uniformSamplerQ.ReadNew(ringQ.N())
			b := tc.uniformSamplerQ.ReadNew(ringQ.N())

			want := ringQ.NewRNSPoly()
			for i, s := range ringQ {
				copy(want.At(i), mulNaive(a.At(i), b.At(i), s.Modulus, ringQ.Variant() != Cyclic))
			}

			aNTT, bNTT := ringQ.NewRNSPoly(), ringQ.NewRNSPoly()
			ringQ.NTT(a, aNTT)
			ringQ.NTT(b, bNTT)
			ringQ.MulCoeffs(aNTT, bNTT, aNTT)
			ringQ.INTT(aNTT, aNTT)

			require.True(t, want.Equal(&aNTT))
		})
	}
}

func testRNSRingOps(tc *testParams, t *testing.T) {

	t.Run(testString("Ops", tc.ringQ), func(t *testing.T) {

		ringQ := tc.ringQ

		a := tc.uniformSamplerQ.ReadNew(ringQ.N())
		b := tc.uniformSamplerQ.ReadNew(ringQ.N())

		add, sub, neg, mul, mac := ringQ.NewRNSPoly(), ringQ.NewRNSPoly(), ringQ.NewRNSPoly(), ringQ.NewRNSPoly(), ringQ.NewRNSPoly()

		ringQ.Add(a, b, add)
		ringQ.Sub(a, b, sub)
		ringQ.Neg(a, neg)
		ringQ.MulCoeffs(a, b, mul)
		mac.Copy(&add)
		ringQ.MulCoeffsThenAdd(a, b, mac)

		for i, s := range ringQ {
			q := s.Modulus
			for j := range a.At(i) {
				x, y := a.At(i)[j], b.At(i)[j]
				require.Equal(t, (x+y)%q, add.At(i)[j])
				require.Equal(t, (x+q-y)%q, sub.At(i)[j])
				require.Equal(t, (q-x)%q, neg.At(i)[j])
				require.Equal(t, MulModNaive(x, y, q), mul.At(i)[j])
				require.Equal(t, AddMod(add.At(i)[j], mul.At(i)[j], q), mac.At(i)[j])
			}
		}

		scaled := ringQ.NewRNSPoly()
		ringQ.MulScalar(a, 3, scaled)
		ringQ.Sub(scaled, a, scaled)
		ringQ.Sub(scaled, a, scaled)
		ringQ.Sub(scaled, a, scaled)
		for i := range scaled {
			for _, c := range scaled.At(i) {
				require.Zero(t, c)
			}
		}

		require.Equal(t, 0, CountMismatches(a, *a.Clone()))
		c := *a.Clone()
		c.At(0)[0] = AddMod(c.At(0)[0], 1, ringQ[0].Modulus)
		require.Equal(t, 1, CountMismatches(a, c))
		require.Equal(t, ringQ.N(), CountMismatches(a, a[:len(a)-1]))

		flat := make([]uint64, ringQ.N()*len(ringQ))
		a.Flatten(flat)
		for i := range a {
			require.Equal(t, []uint64(a.At(i)), flat[i*ringQ.N():(i+1)*ringQ.N()])
		}
		d := ringQ.NewRNSPoly()
		d.SetFlat(flat)
		require.True(t, a.Equal(&d))
	})
}

func testPolyToBigintCentered(tc *testParams, t *testing.T) {

	t.Run(testString("PolyToBigintCentered", tc.ringQ), func(t *testing.T) {

		ringQ := tc.ringQ
		N := ringQ.N()

		coeffs := make([]int64, N)
		for i := range coeffs {
			coeffs[i] = int64(i%9) - 4
		}

		p := ringQ.NewRNSPoly()
		ringQ.SetCoefficientsInt64(coeffs, p)

		values := make([]big.Int, N)
		ringQ.PolyToBigintCentered(p, values)

		for i := range values {
			require.Equal(t, coeffs[i], values[i].Int64())
		}

		stats := ringQ.Stats(p)
		require.Less(t, stats[0], 2.0)
		require.Greater(t, stats[0], 0.0)

		uniform := tc.uniformSamplerQ.ReadNew(N)
		require.Greater(t, ringQ.Stats(uniform)[0], ringQ.LogModuli()-8)
	})
}

func testSampler(tc *testParams, t *testing.T) {

	t.Run(testString("Sampler", tc.ringQ), func(t *testing.T) {

		ringQ := tc.ringQ
		N := ringQ.N()

		a := NewUniformSampler(sampling.NewSource([32]byte{7}), ringQ.ModuliChain()).ReadNew(N)
		b := NewUniformSampler(sampling.NewSource([32]byte{7}), ringQ.ModuliChain()).ReadNew(N)
		require.True(t, a.Equal(&b))

		for i, s := range ringQ {
			for _, c := range a.At(i) {
				require.Less(t, c, s.Modulus)
			}
		}

		_, err := NewBoundedSampler(sampling.NewSource([32]byte{}), []uint64{17}, 17)
		require.Error(t, err)

		bounded, err := NewBoundedSampler(sampling.NewSource([32]byte{}), ringQ.ModuliChain(), 3)
		require.NoError(t, err)

		p := bounded.ReadNew(N)
		values := make([]big.Int, N)
		ringQ.PolyToBigintCentered(p, values)
		for i := range values {
			require.LessOrEqual(t, values[i].Int64(), int64(3))
			require.GreaterOrEqual(t, values[i].Int64(), int64(-3))
		}

		level0 := bounded.AtLevel(0).ReadNew(N)
		require.Len(t, level0, 1)

		sum := *p.Clone()
		bounded.WithSource(sampling.NewSource([32]byte{1})).ReadAndAdd(sum)
		ringQ.PolyToBigintCentered(sum, values)
		for i := range values {
			require.LessOrEqual(t, values[i].Int64(), int64(6))
			require.GreaterOrEqual(t, values[i].Int64(), int64(-6))
		}
	})
}
