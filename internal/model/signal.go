package model

import (
	"fmt"
	"log"
	"math"

	"github.com/hepfit/phisfit/internal/angular"
	"github.com/hepfit/phisfit/internal/spline"
	"github.com/hepfit/phisfit/internal/timeconv"
)

// Physics constants of the reference model (arXiv:1906.08356 Eq. (9)).
const (
	// normFactor is 3/(4π), the overall angular normalization.
	normFactor = 3 / (4 * math.Pi)

	// gammaRefOffset is the reference width Γ_d (1/ps) the
	// DeltaGammaSD parameter is measured against; the decay exponent is
	// exp(-(ΔΓ_sd + Γ_d)·t).
	gammaRefOffset = 0.65789
)

// Flavor selects the production flavor of the decaying meson; it fixes
// the sign in front of the oscillating cos/sin terms.
type Flavor int

const (
	Particle     Flavor = +1 // B_s
	Antiparticle Flavor = -1 // B_s-bar
)

func (f Flavor) String() string {
	switch f {
	case Particle:
		return "particle"
	case Antiparticle:
		return "antiparticle"
	default:
		return fmt.Sprintf("Flavor(%d)", int(f))
	}
}

// Option configures optional parts of a Model.
type Option func(*Model)

// WithResolution enables Gaussian decay-time resolution of mean mu and
// width sigma; the time factors then use the convolved kernels instead of
// the bare exponentials. sigma must be > 0.
func WithResolution(mu, sigma float64) Option {
	return func(m *Model) { m.resMu, m.resSigma = mu, sigma }
}

// WithEfficiency folds a decay-time efficiency profile into the density
// and its normalization integral. Requires WithResolution: the efficiency
// integrals are only available in the convolved closed form.
func WithEfficiency(eff *spline.CubicSpline) Option {
	return func(m *Model) { m.eff = eff }
}

// Model is the time-dependent signal density for one production flavor
// and one parameter point. It is immutable after construction; derived
// coefficients live in a Coefficients snapshot computed once, so a Model
// can be shared read-only across any number of goroutines. A new
// parameter point means a new Model (see WithParameters).
type Model struct {
	flavor Flavor
	params Parameters
	coeffs Coefficients

	resMu    float64
	resSigma float64 // 0 means no resolution
	eff      *spline.CubicSpline
}

// New builds a Model for the given flavor and parameter point.
func New(flavor Flavor, params Parameters, opts ...Option) (*Model, error) {
	if flavor != Particle && flavor != Antiparticle {
		return nil, fmt.Errorf("model: invalid flavor %d", int(flavor))
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		flavor: flavor,
		params: params,
		coeffs: Derive(params),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.resSigma < 0 {
		return nil, fmt.Errorf("model: negative resolution width %g", m.resSigma)
	}
	if m.eff != nil && m.resSigma == 0 {
		return nil, fmt.Errorf("model: efficiency profile requires a resolution width > 0")
	}
	return m, nil
}

// WithParameters returns a copy of m for a new parameter point, keeping
// flavor, resolution and efficiency settings. The receiver is unchanged.
func (m *Model) WithParameters(params Parameters) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	nm := *m
	nm.params = params
	nm.coeffs = Derive(params)
	return &nm, nil
}

// Flavor returns the production flavor the model was built for.
func (m *Model) Flavor() Flavor { return m.flavor }

// Parameters returns the parameter point the model was built for.
func (m *Model) Parameters() Parameters { return m.params }

// Coefficients returns the derived coefficient snapshot.
func (m *Model) Coefficients() Coefficients { return m.coeffs }

// Evaluate returns the unnormalized signal density at decay time t and
// helicity angles (cosθ_h, cosθ_l, φ), φ ∈ [0, 2π).
//
// Outside the physical amplitude simplex (APar2 < 0) the density is 0 for
// every input; a NaN sum is logged with the full parameter vector and
// then handled like any other value. Small negative values are numerical
// noise from the closed-form cancellations and are floored to 0.
func (m *Model) Evaluate(t, cosThetaH, cosThetaL, phi float64) float64 {
	if !m.coeffs.OK {
		return 0
	}

	fk := angular.Basis(cosThetaH, cosThetaL, phi)

	var sum float64
	if m.resSigma > 0 {
		a := m.params.DecayRate()
		bh := 0.5 * m.params.DeltaGamma
		bt := m.params.DeltaM

		ch := timeconv.ConvolvedExpSinhCosh(t, a, bh, m.resMu, m.resSigma, +1)
		sh := timeconv.ConvolvedExpSinhCosh(t, a, bh, m.resMu, m.resSigma, -1)
		ct := timeconv.ConvolvedExpSinCos(t, a, bt, m.resMu, m.resSigma, +1)
		st := timeconv.ConvolvedExpSinCos(t, a, bt, m.resMu, m.resSigma, -1)

		for k := 0; k < 10; k++ {
			sum += fk[k] * m.coeffs.N[k] * m.timeCombination(k, ch, sh, ct, st)
		}
	} else {
		decay := math.Exp(-m.params.DecayRate() * t)
		ch := math.Cosh(0.5 * t * m.params.DeltaGamma)
		sh := math.Sinh(0.5 * t * m.params.DeltaGamma)
		st, ct := math.Sincos(t * m.params.DeltaM)

		for k := 0; k < 10; k++ {
			sum += fk[k] * m.coeffs.N[k] * decay * m.timeCombination(k, ch, sh, ct, st)
		}
	}
	sum *= normFactor

	if m.eff != nil {
		sum *= m.eff.Eval(t)
	}

	if math.IsNaN(sum) {
		v := m.params.Vector()
		log.Printf("model: NaN density at t=%g cosThetaH=%g cosThetaL=%g phi=%g params=%v", t, cosThetaH, cosThetaL, phi, v)
	}

	if sum < 0 {
		return 0
	}
	return sum
}

// timeCombination assembles a_k·cosh + b_k·sinh + CP·(c_k·cos + d_k·sin)
// from precomputed time functions (bare or convolved).
func (m *Model) timeCombination(k int, ch, sh, ct, st float64) float64 {
	cp := float64(m.flavor)
	return m.coeffs.A[k]*ch + m.coeffs.B[k]*sh + cp*(m.coeffs.C[k]*ct+m.coeffs.D[k]*st)
}
