package model

import (
	"math"

	"github.com/hepfit/phisfit/internal/angular"
	"github.com/hepfit/phisfit/internal/timeconv"
)

// IntegrateTime returns the definite integral of Evaluate over decay time
// t ∈ [lower, upper] at fixed angles, in closed form. By construction it
// matches numerical quadrature of Evaluate over the same window; that
// equality is the central consistency invariant between the point density
// and the normalization.
func (m *Model) IntegrateTime(lower, upper, cosThetaH, cosThetaL, phi float64) float64 {
	fk := angular.Basis(cosThetaH, cosThetaL, phi)
	return m.integrateTerms(fk, lower, upper)
}

// Normalization returns the integral of Evaluate over t ∈ [lower, upper]
// and the full angular domain, using the analytic angular-basis
// integrals.
func (m *Model) Normalization(lower, upper float64) float64 {
	return m.integrateTerms(angular.Integrals(), lower, upper)
}

func (m *Model) integrateTerms(w [angular.NumTerms]float64, lower, upper float64) float64 {
	if !m.coeffs.OK || upper <= lower {
		return 0
	}

	ich, ish, ict, ist := m.kernelIntegrals(lower, upper)

	var sum float64
	for k := 0; k < 10; k++ {
		sum += w[k] * m.coeffs.N[k] * m.timeCombination(k, ich, ish, ict, ist)
	}
	return normFactor * sum
}

// kernelIntegrals returns the four per-model time integrals
// ∫ exp·cosh, ∫ exp·sinh, ∫ exp·cos, ∫ exp·sin over [lower, upper],
// convolved with the resolution and weighted by the efficiency profile
// when those are configured.
func (m *Model) kernelIntegrals(lower, upper float64) (ich, ish, ict, ist float64) {
	a := m.params.DecayRate()
	bh := 0.5 * m.params.DeltaGamma
	bt := m.params.DeltaM

	switch {
	case m.eff != nil:
		ich = m.eff.IntegrateSinhCosh(a, bh, m.resMu, m.resSigma, lower, upper, +1)
		ish = m.eff.IntegrateSinhCosh(a, bh, m.resMu, m.resSigma, lower, upper, -1)
		ict = m.eff.IntegrateSinCos(a, bt, m.resMu, m.resSigma, lower, upper, +1)
		ist = m.eff.IntegrateSinCos(a, bt, m.resMu, m.resSigma, lower, upper, -1)
	case m.resSigma > 0:
		ich = timeconv.IntegratedConvolvedExpSinhCosh(a, bh, m.resMu, m.resSigma, lower, upper, +1)
		ish = timeconv.IntegratedConvolvedExpSinhCosh(a, bh, m.resMu, m.resSigma, lower, upper, -1)
		ict = timeconv.IntegratedConvolvedExpSinCos(a, bt, m.resMu, m.resSigma, lower, upper, +1)
		ist = timeconv.IntegratedConvolvedExpSinCos(a, bt, m.resMu, m.resSigma, lower, upper, -1)
	default:
		ich = expSinhCoshIntegral(a, bh, lower, upper, +1)
		ish = expSinhCoshIntegral(a, bh, lower, upper, -1)
		ict = expSinCosIntegral(a, bt, lower, upper, +1)
		ist = expSinCosIntegral(a, bt, lower, upper, -1)
	}
	return ich, ish, ict, ist
}

// expSinhCoshIntegral is the resolution-free ∫ exp(-a·t)·{cosh,sinh}(b·t)
// over [lower, upper], split into the two underlying exponentials.
// Requires a > |b|, which holds for any physical width pair.
func expSinhCoshIntegral(a, b, lower, upper float64, tag int) float64 {
	prim := func(t float64) (float64, float64) {
		return math.Exp((b-a)*t) / (b - a), math.Exp(-(a+b)*t) / (a + b)
	}
	p1u, p2u := prim(upper)
	p1l, p2l := prim(lower)
	if tag > 0 {
		return 0.5 * ((p1u - p1l) - (p2u - p2l))
	}
	return 0.5 * ((p1u - p1l) + (p2u - p2l))
}

// expSinCosIntegral is the resolution-free ∫ exp(-a·t)·{cos,sin}(b·t)
// over [lower, upper].
func expSinCosIntegral(a, b, lower, upper float64, tag int) float64 {
	d := a*a + b*b
	prim := func(t float64) float64 {
		s, c := math.Sincos(b * t)
		if tag > 0 {
			return math.Exp(-a*t) * (b*s - a*c) / d
		}
		return -math.Exp(-a*t) * (a*s + b*c) / d
	}
	return prim(upper) - prim(lower)
}
