// Package angular provides the ten-term angular basis of the
// B_s → J/ψ φ decay rate in helicity angles, plus the analytic integrals
// of the basis over the full angular acceptance.
package angular

import "math"

// NumTerms is the number of basis functions.
const NumTerms = 10

// Basis returns the ten angular basis functions evaluated at the helicity
// angles: cosThetaH for the K+ in the φ rest frame, cosThetaL for the μ+
// in the J/ψ rest frame, and the decay-plane angle phi in [0, 2π).
//
// Conventions follow Eq. (9) of arXiv:1906.08356; the 3/(4π)
// normalization lives in the time factor, not here.
func Basis(cosThetaH, cosThetaL, phi float64) [NumTerms]float64 {
	ch := cosThetaH
	cl := cosThetaL
	sh2 := 1 - ch*ch // sin²θ_h
	sl2 := 1 - cl*cl // sin²θ_l
	sh := math.Sqrt(sh2)
	sl := math.Sqrt(sl2)
	sp, cp := math.Sincos(phi)

	return [NumTerms]float64{
		ch * ch * sl2,
		0.5 * sh2 * (1 - sl2*cp*cp),
		0.5 * sh2 * (1 - sl2*sp*sp),
		sh2 * sl2 * sp * cp,
		math.Sqrt2 * sh * ch * sl * cl * cp,
		-math.Sqrt2 * sh * ch * sl * cl * sp,
		sl2 / 3,
		2 / math.Sqrt(6) * sh * sl * cl * cp,
		-2 / math.Sqrt(6) * sh * sl * cl * sp,
		2 / math.Sqrt(3) * ch * sl2,
	}
}

// Integrals returns the integral of each basis function over
// cosθ_h ∈ [-1,1], cosθ_l ∈ [-1,1], φ ∈ [0,2π). Only the four diagonal
// terms survive; the interference terms integrate to zero by parity.
func Integrals() [NumTerms]float64 {
	const d = 16 * math.Pi / 9
	return [NumTerms]float64{d, d, d, 0, 0, 0, d, 0, 0, 0}
}
