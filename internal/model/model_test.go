package model

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/hepfit/phisfit/internal/angular"
	"github.com/hepfit/phisfit/internal/spline"
	"github.com/hepfit/phisfit/internal/testutil"
)

// Reference parameter point, typical of a B_s → J/ψ φ fit result.
func refParams() Parameters {
	return Parameters{
		A02:          0.524,
		APerp2:       0.250,
		AS2:          0.027,
		DeltaGammaSD: 0.010,
		DeltaGamma:   0.0782,
		DeltaM:       17.713,
		Phi0:         -0.082,
		PhiPar0:      -0.043,
		PhiPerp0:     -0.074,
		PhiS0:        0.021,
		Lambda0:      0.955,
		LambdaPar0:   1.010,
		LambdaPerp0:  0.980,
		LambdaS0:     1.020,
		DeltaPar0:    3.030,
		DeltaPerp0:   2.600,
		DeltaSPerp:   -0.300,
	}
}

func refAngles() [][3]float64 {
	return [][3]float64{
		{0.3, -0.5, 1.1},
		{-0.7, 0.2, 4.9},
		{0.0, 0.0, 0.0},
		{0.95, -0.95, 3.1},
		{-0.4, 0.8, 5.9},
	}
}

func TestVectorRoundTrip(t *testing.T) {
	p := refParams()
	if diff := cmp.Diff(p, FromVector(p.Vector())); diff != "" {
		t.Errorf("parameter vector round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	p := refParams()
	testutil.AssertNoError(t, p.Validate())

	bad := p
	bad.AS2 = -0.1
	testutil.AssertError(t, bad.Validate())

	bad = p
	bad.LambdaPerp0 = -1
	testutil.AssertError(t, bad.Validate())
}

func TestNewValidation(t *testing.T) {
	_, err := New(Flavor(0), refParams())
	testutil.AssertError(t, err)

	_, err = New(Particle, refParams(), WithResolution(0, -0.1))
	testutil.AssertError(t, err)

	eff, err := spline.New([]float64{0, 1, 2}, []float64{1, 1, 1, 1, 1})
	testutil.AssertNoError(t, err)
	_, err = New(Particle, refParams(), WithEfficiency(eff))
	testutil.AssertError(t, err)
}

func TestEvaluateNonNegative(t *testing.T) {
	for _, flavor := range []Flavor{Particle, Antiparticle} {
		bare, err := New(flavor, refParams())
		testutil.AssertNoError(t, err)
		smeared, err := New(flavor, refParams(), WithResolution(0, 0.045))
		testutil.AssertNoError(t, err)

		for _, tt := range []float64{0.3, 0.7, 1.5, 3.0, 6.0} {
			for _, a := range refAngles() {
				for _, m := range []*Model{bare, smeared} {
					v := m.Evaluate(tt, a[0], a[1], a[2])
					if math.IsNaN(v) || v < 0 {
						t.Fatalf("Evaluate(%g, %v) = %g for flavor %v", tt, a, v, flavor)
					}
				}
			}
		}
		// The density is not identically zero.
		if bare.Evaluate(1, 0.3, -0.5, 1.1) == 0 {
			t.Error("density vanishes at a generic point")
		}
	}
}

func TestUnphysicalPointIsZero(t *testing.T) {
	p := refParams()
	p.A02 = 0.6
	p.APerp2 = 0.5 // APar2 = -0.1

	m, err := New(Particle, p)
	testutil.AssertNoError(t, err)
	for _, tt := range []float64{0.3, 1, 5} {
		for _, a := range refAngles() {
			if v := m.Evaluate(tt, a[0], a[1], a[2]); v != 0 {
				t.Fatalf("Evaluate = %g outside the physical simplex, want exactly 0", v)
			}
		}
	}
	if v := m.Normalization(0.3, 7); v != 0 {
		t.Errorf("Normalization = %g outside the physical simplex, want exactly 0", v)
	}
}

func TestDeriveDiagonalClosedForms(t *testing.T) {
	p := refParams()
	cf := Derive(p)

	// k=1 term (0 component, η = +1): ½(1+λ²), -λcosφ, ½(1-λ²), λsinφ.
	lam, phi := p.Lambda0, p.Phi0
	testutil.AssertCloseAbs(t, "a_1", cf.A[0], 0.5*(1+lam*lam), 1e-15)
	testutil.AssertCloseAbs(t, "b_1", cf.B[0], -lam*math.Cos(phi), 1e-15)
	testutil.AssertCloseAbs(t, "c_1", cf.C[0], 0.5*(1-lam*lam), 1e-15)
	testutil.AssertCloseAbs(t, "d_1", cf.D[0], lam*math.Sin(phi), 1e-15)

	// k=3 term (perpendicular component, η = -1): the b, d signs flip.
	lam = p.Lambda0 * p.LambdaPerp0
	phi = p.Phi0 + p.PhiPerp0
	testutil.AssertCloseAbs(t, "a_3", cf.A[2], 0.5*(1+lam*lam), 1e-15)
	testutil.AssertCloseAbs(t, "b_3", cf.B[2], lam*math.Cos(phi), 1e-15)
	testutil.AssertCloseAbs(t, "c_3", cf.C[2], 0.5*(1-lam*lam), 1e-15)
	testutil.AssertCloseAbs(t, "d_3", cf.D[2], -lam*math.Sin(phi), 1e-15)
}

func TestCPConjugateSharesCoefficients(t *testing.T) {
	mb, err := New(Particle, refParams())
	testutil.AssertNoError(t, err)
	mbbar, err := New(Antiparticle, refParams())
	testutil.AssertNoError(t, err)

	// The coefficient snapshot is flavor independent; the flavor only
	// flips the sign applied to the C, D terms at evaluation time.
	if diff := cmp.Diff(mb.Coefficients(), mbbar.Coefficients()); diff != "" {
		t.Errorf("coefficient snapshots differ (-particle +antiparticle):\n%s", diff)
	}
}

func TestFlavorAverageDropsOscillation(t *testing.T) {
	// Averaging the two flavors cancels the CP-odd cos/sin terms,
	// leaving only the cosh/sinh part, which we can rebuild from the
	// snapshot directly.
	mb, err := New(Particle, refParams())
	testutil.AssertNoError(t, err)
	mbbar, err := New(Antiparticle, refParams())
	testutil.AssertNoError(t, err)

	p := refParams()
	cf := mb.Coefficients()
	for _, tt := range []float64{0.4, 1.1, 2.7} {
		for _, a := range refAngles() {
			avg := 0.5 * (mb.Evaluate(tt, a[0], a[1], a[2]) + mbbar.Evaluate(tt, a[0], a[1], a[2]))

			fk := angular.Basis(a[0], a[1], a[2])
			decay := math.Exp(-p.DecayRate() * tt)
			var want float64
			for k := 0; k < 10; k++ {
				want += fk[k] * cf.N[k] * decay *
					(cf.A[k]*math.Cosh(0.5*tt*p.DeltaGamma) + cf.B[k]*math.Sinh(0.5*tt*p.DeltaGamma))
			}
			want *= normFactor

			testutil.AssertCloseRel(t, "flavor average", avg, want, 1e-12)
		}
	}
}

func TestIntegrateTimeMatchesQuadrature(t *testing.T) {
	m, err := New(Particle, refParams())
	testutil.AssertNoError(t, err)

	const lower, upper = 0.3, 7.0
	for _, a := range refAngles() {
		got := m.IntegrateTime(lower, upper, a[0], a[1], a[2])
		want := quad.Fixed(func(x float64) float64 {
			return m.Evaluate(x, a[0], a[1], a[2])
		}, lower, upper, 301, nil, 0)
		testutil.AssertCloseRel(t, "time integral", got, want, 1e-9)
	}
}

func TestIntegrateTimeMatchesQuadratureWithResolution(t *testing.T) {
	m, err := New(Antiparticle, refParams(), WithResolution(0, 0.045))
	testutil.AssertNoError(t, err)

	const lower, upper = 0.3, 7.0
	for _, a := range refAngles() {
		got := m.IntegrateTime(lower, upper, a[0], a[1], a[2])
		want := quad.Fixed(func(x float64) float64 {
			return m.Evaluate(x, a[0], a[1], a[2])
		}, lower, upper, 301, nil, 0)
		testutil.AssertCloseRel(t, "smeared time integral", got, want, 1e-9)
	}
}

func TestIntegrateTimeMatchesQuadratureWithEfficiency(t *testing.T) {
	eff, err := spline.New(
		[]float64{0.3, 0.91, 1.96, 4.0, 9.0},
		[]float64{0.4, 0.85, 1.05, 1.1, 1.0, 0.85, 0.7},
	)
	testutil.AssertNoError(t, err)

	m, err := New(Particle, refParams(), WithResolution(0, 0.045), WithEfficiency(eff))
	testutil.AssertNoError(t, err)

	const lower, upper = 0.3, 12.0

	// Integrate piecewise between the spline's knots so the quadrature
	// never straddles a derivative kink.
	breaks := []float64{lower}
	for i := 0; i < eff.NumKnots(); i++ {
		if k := eff.Knot(i); k > lower && k < upper {
			breaks = append(breaks, k)
		}
	}
	if neg, xn := eff.NegativeTail(); neg && xn > lower && xn < upper {
		t.Fatalf("crossover %g unexpectedly inside the window", xn)
	}
	breaks = append(breaks, upper)

	for _, a := range refAngles()[:3] {
		got := m.IntegrateTime(lower, upper, a[0], a[1], a[2])
		var want float64
		for i := 1; i < len(breaks); i++ {
			want += quad.Fixed(func(x float64) float64 {
				return m.Evaluate(x, a[0], a[1], a[2])
			}, breaks[i-1], breaks[i], 301, nil, 0)
		}
		testutil.AssertCloseRel(t, "efficiency time integral", got, want, 1e-8)
	}
}

func TestNormalization(t *testing.T) {
	m, err := New(Particle, refParams(), WithResolution(0, 0.045))
	testutil.AssertNoError(t, err)

	whole := m.Normalization(0.3, 7)
	if whole <= 0 {
		t.Fatalf("Normalization = %g, want > 0", whole)
	}
	// Additivity over adjacent windows.
	split := m.Normalization(0.3, 2.1) + m.Normalization(2.1, 7)
	testutil.AssertCloseRel(t, "normalization additivity", split, whole, 1e-12)
}

func TestWithParameters(t *testing.T) {
	m, err := New(Particle, refParams(), WithResolution(0, 0.045))
	testutil.AssertNoError(t, err)

	p2 := refParams()
	p2.Phi0 = 0.3
	m2, err := m.WithParameters(p2)
	testutil.AssertNoError(t, err)

	if m.Parameters().Phi0 != refParams().Phi0 {
		t.Error("receiver mutated by WithParameters")
	}
	if m2.Parameters().Phi0 != 0.3 {
		t.Error("new model does not carry the new parameters")
	}
	if diff := cmp.Diff(m.Coefficients(), m2.Coefficients()); diff == "" {
		t.Error("coefficient snapshot unchanged for a different parameter point")
	}
	// Flavor and resolution settings carry over.
	if m2.Flavor() != Particle {
		t.Error("flavor not preserved")
	}
}
