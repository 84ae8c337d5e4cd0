// Package model implements the time-dependent B_s → J/ψ φ signal density
// of arXiv:1906.08356 Eq. (9): ten angular terms, each weighted by a
// polarization factor and a cosh/sinh/cos/sin time factor, with optional
// Gaussian decay-time resolution and an optional decay-time efficiency
// profile folded into the closed-form normalization integral.
package model

import "fmt"

// NumParams is the length of the flattened parameter vector.
const NumParams = 17

// Parameters holds the seventeen physics parameters of the signal model.
// The field order of Vector and FromVector is a binding contract with
// external fit drivers and must never be permuted.
type Parameters struct {
	A02    float64 // |A_0|², longitudinal amplitude fraction
	APerp2 float64 // |A_perp|², perpendicular amplitude fraction
	AS2    float64 // |A_S|², S-wave amplitude fraction

	DeltaGammaSD float64 // Γ_s - Γ_d width asymmetry, 1/ps
	DeltaGamma   float64 // ΔΓ_s width difference, 1/ps
	DeltaM       float64 // Δm_s mixing frequency, 1/ps

	Phi0     float64 // CP-violating phase of the 0 component
	PhiPar0  float64 // φ_par - φ_0
	PhiPerp0 float64 // φ_perp - φ_0
	PhiS0    float64 // φ_S - φ_0

	Lambda0     float64 // |λ_0|
	LambdaPar0  float64 // |λ_par| / |λ_0|
	LambdaPerp0 float64 // |λ_perp| / |λ_0|
	LambdaS0    float64 // |λ_S| / |λ_0|

	DeltaPar0  float64 // δ_par - δ_0 strong phase
	DeltaPerp0 float64 // δ_perp - δ_0 strong phase
	DeltaSPerp float64 // δ_S - δ_perp strong phase
}

// Vector flattens the parameters into the contractual 17-element order.
func (p Parameters) Vector() [NumParams]float64 {
	return [NumParams]float64{
		p.A02, p.APerp2, p.AS2,
		p.DeltaGammaSD, p.DeltaGamma, p.DeltaM,
		p.Phi0, p.PhiPar0, p.PhiPerp0, p.PhiS0,
		p.Lambda0, p.LambdaPar0, p.LambdaPerp0, p.LambdaS0,
		p.DeltaPar0, p.DeltaPerp0, p.DeltaSPerp,
	}
}

// FromVector builds Parameters from the contractual 17-element order.
func FromVector(v [NumParams]float64) Parameters {
	return Parameters{
		A02: v[0], APerp2: v[1], AS2: v[2],
		DeltaGammaSD: v[3], DeltaGamma: v[4], DeltaM: v[5],
		Phi0: v[6], PhiPar0: v[7], PhiPerp0: v[8], PhiS0: v[9],
		Lambda0: v[10], LambdaPar0: v[11], LambdaPerp0: v[12], LambdaS0: v[13],
		DeltaPar0: v[14], DeltaPerp0: v[15], DeltaSPerp: v[16],
	}
}

// APar2 returns the derived parallel amplitude fraction 1 - A0² - Aperp².
// A negative value marks a parameter point outside the physical simplex.
func (p Parameters) APar2() float64 {
	return 1 - p.A02 - p.APerp2
}

// DecayRate returns the rate ΔΓ_sd + Γ_d (1/ps) of the overall decay
// exponential, the single place the Γ_d reference width enters.
func (p Parameters) DecayRate() float64 {
	return p.DeltaGammaSD + gammaRefOffset
}

// Validate rejects parameter values that no fit should ever propose:
// negative amplitude fractions or magnitude ratios. It deliberately does
// NOT reject APar2 < 0, which the density handles as zero probability.
func (p Parameters) Validate() error {
	if p.A02 < 0 || p.APerp2 < 0 || p.AS2 < 0 {
		return fmt.Errorf("model: negative amplitude fraction (A02=%g, APerp2=%g, AS2=%g)", p.A02, p.APerp2, p.AS2)
	}
	if p.Lambda0 < 0 || p.LambdaPar0 < 0 || p.LambdaPerp0 < 0 || p.LambdaS0 < 0 {
		return fmt.Errorf("model: negative magnitude ratio (Lambda0=%g, LambdaPar0=%g, LambdaPerp0=%g, LambdaS0=%g)", p.Lambda0, p.LambdaPar0, p.LambdaPerp0, p.LambdaS0)
	}
	return nil
}
