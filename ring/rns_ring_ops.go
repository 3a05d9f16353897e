package ring

// NTT evaluates p2 = NTT(p1).
func (r RNSRing) NTT(p1, p2 RNSPoly) {
	for i, s := range r {
		s.NTT(p1.At(i), p2.At(i))
	}
}

// INTT evaluates p2 = INTT(p1).
func (r RNSRing) INTT(p1, p2 RNSPoly) {
	for i, s := range r {
		s.INTT(p1.At(i), p2.At(i))
	}
}

// Add evaluates p3 = p1 + p2 coefficient-wise in the ring.
func (r RNSRing) Add(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		s.Add(p1.At(i), p2.At(i), p3.At(i))
	}
}

// Sub evaluates p3 = p1 - p2 coefficient-wise in the ring.
func (r RNSRing) Sub(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		s.Sub(p1.At(i), p2.At(i), p3.At(i))
	}
}

// Neg evaluates p2 = -p1 coefficient-wise in the ring.
func (r RNSRing) Neg(p1, p2 RNSPoly) {
	for i, s := range r {
		s.Neg(p1.At(i), p2.At(i))
	}
}

// Reduce evaluates p2 = p1 coefficient-wise mod modulus in the ring.
func (r RNSRing) Reduce(p1, p2 RNSPoly) {
	for i, s := range r {
		s.Reduce(p1.At(i), p2.At(i))
	}
}

// MulCoeffs evaluates p3 = p1 * p2 coefficient-wise in the ring.
func (r RNSRing) MulCoeffs(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		s.MulCoeffs(p1.At(i), p2.At(i), p3.At(i))
	}
}

// MulCoeffsThenAdd evaluates p3 = p3 + p1 * p2 coefficient-wise in the ring.
func (r RNSRing) MulCoeffsThenAdd(p1, p2, p3 RNSPoly) {
	for i, s := range r {
		s.MulCoeffsThenAdd(p1.At(i), p2.At(i), p3.At(i))
	}
}

// MulScalar evaluates p2 = p1 * scalar coefficient-wise in the ring.
func (r RNSRing) MulScalar(p1 RNSPoly, scalar uint64, p2 RNSPoly) {
	for i, s := range r {
		s.MulScalar(p1.At(i), scalar, p2.At(i))
	}
}

// SetCoefficientsInt64 sets p1 to the residues of the signed coefficients.
func (r RNSRing) SetCoefficientsInt64(coeffs []int64, p1 RNSPoly) {
	for i, s := range r {
		q := s.Modulus
		pi := p1.At(i)
		for j, c := range coeffs {
			if c < 0 {
				pi[j] = q - uint64(-c)%q
				if pi[j] == q {
					pi[j] = 0
				}
			} else {
				pi[j] = uint64(c) % q
			}
		}
	}
}
