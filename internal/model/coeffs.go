package model

import (
	"math"
	"math/cmplx"
)

// Coefficients is an immutable snapshot of everything the density derives
// from Parameters: the angular-time coefficients a_k, b_k, c_k, d_k of
// arXiv:1906.08356 Eq. (10)-(11) (Table 3) and the polarization factors
// N_k of Eq. (9). Derive is the only producer; evaluation code reads a
// snapshot and never mutates it, so a snapshot can be shared freely
// across goroutines.
type Coefficients struct {
	A, B, C, D [10]float64
	N          [10]float64

	// OK is false when APar2 < 0. The N factors are then undefined and
	// every density evaluation for this snapshot returns 0.
	OK bool
}

// component bundles the per-polarization CP parameters entering Table 3.
// eta is the CP eigenvalue: +1 for the 0 and parallel components, -1 for
// the perpendicular and S-wave components.
type component struct {
	eta    float64
	lambda float64
	phi    float64
	delta  float64
}

// Derive computes the coefficient snapshot for a parameter point.
func Derive(p Parameters) Coefficients {
	var cf Coefficients

	aPar2 := p.APar2()
	if aPar2 < 0 {
		return cf
	}
	cf.OK = true

	cf.N = [10]float64{
		p.A02,
		aPar2,
		p.APerp2,
		math.Sqrt(p.APerp2 * aPar2),
		math.Sqrt(p.A02 * aPar2),
		math.Sqrt(p.A02 * p.APerp2),
		p.AS2,
		math.Sqrt(p.AS2 * aPar2),
		math.Sqrt(p.AS2 * p.APerp2),
		math.Sqrt(p.AS2 * p.A02),
	}

	// Per-component phases, magnitudes and strong phases. The parameters
	// express parallel/perpendicular/S-wave values relative to the 0
	// component; δ_Sperp is relative to δ_perp.
	c0 := component{eta: +1, lambda: p.Lambda0, phi: p.Phi0, delta: 0}
	cPar := component{eta: +1, lambda: p.Lambda0 * p.LambdaPar0, phi: p.Phi0 + p.PhiPar0, delta: p.DeltaPar0}
	cPerp := component{eta: -1, lambda: p.Lambda0 * p.LambdaPerp0, phi: p.Phi0 + p.PhiPerp0, delta: p.DeltaPerp0}
	cS := component{eta: -1, lambda: p.Lambda0 * p.LambdaS0, phi: p.Phi0 + p.PhiS0, delta: p.DeltaSPerp + p.DeltaPerp0}

	// Diagonal terms: the pair formula with i == j reduces to the
	// familiar ½(1±λ²) and ∓ηλ{cos,sin}φ forms of Table 3.
	set := func(k int, v [4]float64) {
		cf.A[k], cf.B[k], cf.C[k], cf.D[k] = v[0], v[1], v[2], v[3]
	}
	set(0, pairRe(c0, c0))
	set(1, pairRe(cPar, cPar))
	set(2, pairRe(cPerp, cPerp))
	set(6, pairRe(cS, cS))

	// Interference terms. Whether the real or imaginary part applies
	// follows Table 3's term-by-term structure.
	set(3, pairIm(cPerp, cPar))
	set(4, pairRe(c0, cPar))
	set(5, pairIm(c0, cPerp))
	set(7, pairRe(cS, cPar))
	set(8, pairIm(cS, cPerp))
	set(9, pairRe(cS, c0))

	return cf
}

// pair evaluates the complex combination behind every Table 3 entry for
// the ordered component pair (i, j):
//
//	e^{i(δ_i-δ_j)} · { ½(1+P·Q̄), -½(P+Q̄), ½(1-P·Q̄), ½i(P-Q̄) }
//
// with P = η_i λ_i e^{-iφ_i} and Q̄ = η_j λ_j e^{+iφ_j}. The real parts
// give (a,b,c,d) for the diagonal and real-type interference terms, the
// imaginary parts for the imaginary-type ones.
func pair(i, j component) (va, vb, vc, vd complex128) {
	e := cmplx.Exp(complex(0, i.delta-j.delta))
	p := complex(i.eta*i.lambda, 0) * cmplx.Exp(complex(0, -i.phi))
	q := complex(j.eta*j.lambda, 0) * cmplx.Exp(complex(0, +j.phi))

	va = 0.5 * e * (1 + p*q)
	vb = -0.5 * e * (p + q)
	vc = 0.5 * e * (1 - p*q)
	vd = 0.5i * e * (p - q)
	return va, vb, vc, vd
}

func pairRe(i, j component) [4]float64 {
	va, vb, vc, vd := pair(i, j)
	return [4]float64{real(va), real(vb), real(vc), real(vd)}
}

func pairIm(i, j component) [4]float64 {
	va, vb, vc, vd := pair(i, j)
	return [4]float64{imag(va), imag(vb), imag(vc), imag(vd)}
}
