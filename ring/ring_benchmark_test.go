package ring

import (
	"fmt"
	"testing"
)

var benchParametersLiteral = []testParameters{
	{logN: 12, logQ: []int{50, 50, 50}},
	{logN: 16, logQ: []int{62, 62}},
}

func BenchmarkRNSRing(b *testing.B) {

	var err error

	benchParameterGeneration(b)

	for _, params := range benchParametersLiteral {

		var tc *testParams
		if tc, err = genTestParams(params); err != nil {
			b.Fatal(err)
		}

		benchNTT(tc, b)
		benchMulCoeffs(tc, b)
		benchAddCoeffs(tc, b)
		benchBRed(tc, b)
	}
}

func benchParameterGeneration(b *testing.B) {
	for _, logN := range []int{12, 16} {
		b.Run(fmt.Sprintf("NewRootParametersFromBitWidth/logN=%d/qbit=62", logN), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := NewRootParametersFromBitWidth(logN, 62); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func benchNTT(tc *testParams, b *testing.B) {

	for _, ringQ := range []RNSRing{tc.ringQ, tc.ringQCyclic, tc.ringQTwisted} {

		p := tc.uniformSamplerQ.ReadNew(ringQ.N())

		b.Run(testString(fmt.Sprintf("NTT/Forward/%s", ringQ.Variant()), ringQ), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				ringQ.NTT(p, p)
			}
		})

		b.Run(testString(fmt.Sprintf("NTT/Backward/%s", ringQ.Variant()), ringQ), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				ringQ.INTT(p, p)
			}
		})
	}
}

func benchMulCoeffs(tc *testParams, b *testing.B) {

	p0 := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())
	p1 := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())

	b.Run(testString("MulCoeffs", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tc.ringQ.MulCoeffs(p0, p1, p0)
		}
	})

	b.Run(testString("MulCoeffsThenAdd", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tc.ringQ.MulCoeffsThenAdd(p0, p1, p0)
		}
	})
}

func benchAddCoeffs(tc *testParams, b *testing.B) {

	p0 := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())
	p1 := tc.uniformSamplerQ.ReadNew(tc.ringQ.N())

	b.Run(testString("Add", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tc.ringQ.Add(p0, p1, p0)
		}
	})

	b.Run(testString("Sub", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			tc.ringQ.Sub(p0, p1, p0)
		}
	})
}

func benchBRed(tc *testParams, b *testing.B) {

	s := tc.ringQ[0]
	x, y := s.Modulus-1, s.Modulus>>1

	b.Run(testString("BRed", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			x = BRed(x, y, s.Modulus, s.Mu, s.QBit)
		}
	})

	b.Run(testString("MulModNaive", tc.ringQ), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			x = MulModNaive(x, y, s.Modulus)
		}
	})
}
