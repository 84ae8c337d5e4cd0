package timeconv

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/hepfit/phisfit/internal/testutil"
)

// Physical-looking rates: decay width a, width difference and mixing
// frequency b, per-event resolution around 45 fs.
const (
	testGamma  = 0.6614
	testDG     = 0.0391 // ΔΓ/2
	testDM     = 17.757
	testMu     = 0.0
	testSigma  = 0.045
	testLower  = 0.3
	testUpper  = 7.0
	quadPoints = 301
)

func TestConvolvedExpSinhCoshLimits(t *testing.T) {
	// Far from the turn-on the convolution approaches the bare product.
	for _, tt := range []float64{1, 2, 4} {
		for _, tag := range []int{+1, -1} {
			got := ConvolvedExpSinhCosh(tt, testGamma, testDG, testMu, testSigma, tag)
			bare := math.Exp(-testGamma * tt)
			if tag > 0 {
				bare *= math.Cosh(testDG * tt)
			} else {
				bare *= math.Sinh(testDG * tt)
			}
			testutil.AssertCloseRel(t, "convolved vs bare", got, bare, 1e-3)
		}
	}
}

func TestConvolvedExpSinCosLimits(t *testing.T) {
	// With b·σ ≪ 1 the oscillation survives convolution nearly
	// undamped only for small b; use a slow oscillation here.
	const b = 0.5
	for _, tt := range []float64{1, 2, 4} {
		for _, tag := range []int{+1, -1} {
			got := ConvolvedExpSinCos(tt, testGamma, b, testMu, testSigma, tag)
			bare := math.Exp(-testGamma * tt)
			if tag > 0 {
				bare *= math.Cos(b * tt)
			} else {
				bare *= math.Sin(b * tt)
			}
			testutil.AssertCloseRel(t, "convolved vs bare", got, bare, 1e-2)
		}
	}
}

func TestIntegratedSinhCoshRoundTrip(t *testing.T) {
	for _, tag := range []int{+1, -1} {
		got := IntegratedConvolvedExpSinhCosh(testGamma, testDG, testMu, testSigma, testLower, testUpper, tag)
		want := quad.Fixed(func(x float64) float64 {
			return ConvolvedExpSinhCosh(x, testGamma, testDG, testMu, testSigma, tag)
		}, testLower, testUpper, quadPoints, nil, 0)
		testutil.AssertCloseRel(t, "integrated sinhcosh", got, want, 1e-9)
	}
}

func TestIntegratedSinCosRoundTrip(t *testing.T) {
	for _, tag := range []int{+1, -1} {
		got := IntegratedConvolvedExpSinCos(testGamma, testDM, testMu, testSigma, testLower, testUpper, tag)
		want := quad.Fixed(func(x float64) float64 {
			return ConvolvedExpSinCos(x, testGamma, testDM, testMu, testSigma, tag)
		}, testLower, testUpper, quadPoints, nil, 0)
		testutil.AssertCloseRel(t, "integrated sincos", got, want, 1e-9)
	}
}

func TestIntegratedSinCosRoundTripShiftedMean(t *testing.T) {
	// Nonzero resolution mean and a window that starts at the mean.
	const mu = 0.12
	for _, tag := range []int{+1, -1} {
		got := IntegratedConvolvedExpSinCos(testGamma, testDM, mu, testSigma, mu, 5, tag)
		want := quad.Fixed(func(x float64) float64 {
			return ConvolvedExpSinCos(x, testGamma, testDM, mu, testSigma, tag)
		}, mu, 5, quadPoints, nil, 0)
		testutil.AssertCloseRel(t, "integrated sincos", got, want, 1e-9)
	}
}

func TestScaledErfcBranchContinuity(t *testing.T) {
	// The stable and direct branches must agree where they meet.
	z := complex(0.5, -0.8)
	for _, eps := range []float64{1e-8, 1e-10} {
		lo := ScaledErfc(real(z)-eps, z)
		hi := ScaledErfc(real(z)+eps, z)
		if d := cabs(lo - hi); d > 1e-7 {
			t.Errorf("branch discontinuity at eps=%g: |Δ| = %g", eps, d)
		}
	}
}

func cabs(z complex128) float64 {
	return math.Hypot(real(z), imag(z))
}
