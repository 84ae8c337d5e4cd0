// Package timeconv provides closed forms for the convolution of an
// exponential decay law with a Gaussian time-resolution function.
//
// The four kernels cover exp(-a·t) multiplied by cosh, sinh, cos or sin
// of b·t, smeared by a Gaussian of mean mu and width sigma, both as point
// values and as definite integrals over a decay-time window. The closed
// forms follow the reference expressions of the decay-time analysis
// literature, written in terms of the scaled complementary error function
// so that no intermediate overflows for any physical (a > |b|, sigma > 0)
// parameter point.
//
// The tag argument selects the branch: tag > 0 picks cosh (respectively
// cos), tag < 0 picks sinh (respectively sin).
package timeconv

import (
	"math"

	"github.com/hepfit/phisfit/internal/faddeeva"
)

const sqrt2 = math.Sqrt2

// ScaledErfc returns exp(z²-2zx)·erfc(z-x) for a complex rate z and real
// x, the building block shared by every kernel.
//
// For Re(z-x) >= 0 the product is rewritten as exp(-x²)·w(i(z-x)), which
// is free of overflow. Otherwise the direct form is safe: with Re(z) > 0
// and Re(z-x) < 0 the exponent z²-2zx has a non-positive real part.
func ScaledErfc(x float64, z complex128) complex128 {
	zx := z - complex(x, 0)
	if real(zx) >= 0 {
		ex := math.Exp(-x * x)
		return complex(ex, 0) * faddeeva.W(complex(-imag(zx), real(zx)))
	}
	return cexp(z*z-2*z*complex(x, 0)) * (2 - faddeeva.Erfc(-zx))
}

// ScaledErfcReal is the real-rate specialization of ScaledErfc.
func ScaledErfcReal(x, z float64) float64 {
	if z-x >= 0 {
		return math.Exp(-x*x) * faddeeva.Erfcx(z-x)
	}
	return math.Exp(z*z-2*z*x) * (2 - math.Erfc(x-z))
}

func cexp(z complex128) complex128 {
	e := math.Exp(real(z))
	s, c := math.Sincos(imag(z))
	return complex(e*c, e*s)
}

// ConvolvedExpSinhCosh returns the Gaussian convolution of
// exp(-a·t)·cosh(b·t) (tag > 0) or exp(-a·t)·sinh(b·t) (tag < 0)
// evaluated at decay time t, for resolution mean mu and width sigma.
func ConvolvedExpSinhCosh(t, a, b, mu, sigma float64, tag int) float64 {
	x := (t - mu) / (sigma * sqrt2)

	z1 := (a - b) * sigma / sqrt2
	z2 := (a + b) * sigma / sqrt2

	f1 := ScaledErfcReal(x, z1)
	f2 := ScaledErfcReal(x, z2)

	if tag > 0 {
		return 0.25 * (f1 + f2)
	}
	return 0.25 * (f1 - f2)
}

// ConvolvedExpSinCos returns the Gaussian convolution of
// exp(-a·t)·cos(b·t) (tag > 0) or exp(-a·t)·sin(b·t) (tag < 0)
// evaluated at decay time t, for resolution mean mu and width sigma.
func ConvolvedExpSinCos(t, a, b, mu, sigma float64, tag int) float64 {
	x := (t - mu) / (sigma * sqrt2)

	z1 := complex(a*sigma/sqrt2, -b*sigma/sqrt2)
	z2 := complex(a*sigma/sqrt2, +b*sigma/sqrt2)

	f1 := ScaledErfc(x, z1)
	f2 := ScaledErfc(x, z2)

	if tag > 0 {
		return 0.25 * real(f1+f2)
	}
	// Re[(f1-f2)/i] == Im(f1-f2).
	return 0.25 * imag(f1-f2)
}

// cumulative returns M0(x2;z) - M0(x1;z) with M0(x;z) = erf(x) - F(x;z),
// the order-zero moment difference behind the integrated kernels.
func cumulative(x1, x2 float64, z complex128) complex128 {
	m2 := complex(math.Erf(x2), 0) - ScaledErfc(x2, z)
	m1 := complex(math.Erf(x1), 0) - ScaledErfc(x1, z)
	return m2 - m1
}

func cumulativeReal(x1, x2, z float64) float64 {
	m2 := math.Erf(x2) - ScaledErfcReal(x2, z)
	m1 := math.Erf(x1) - ScaledErfcReal(x1, z)
	return m2 - m1
}

// IntegratedConvolvedExpSinhCosh returns the definite integral of
// ConvolvedExpSinhCosh over t in [lower, upper]. The result equals the
// numerical integral of the point kernel to double precision.
func IntegratedConvolvedExpSinhCosh(a, b, mu, sigma, lower, upper float64, tag int) float64 {
	x1 := (lower - mu) / (sigma * sqrt2)
	x2 := (upper - mu) / (sigma * sqrt2)

	z1 := (a - b) * sigma / sqrt2
	z2 := (a + b) * sigma / sqrt2

	c1 := cumulativeReal(x1, x2, z1) / z1
	c2 := cumulativeReal(x1, x2, z2) / z2

	// dt = sigma*sqrt2 dx and each cumulative carries 1/(2z); together
	// with the kernel's 1/4 prefactor that is sigma*sqrt2/8.
	norm := sigma * sqrt2 / 8
	if tag > 0 {
		return norm * (c1 + c2)
	}
	return norm * (c1 - c2)
}

// IntegratedConvolvedExpSinCos returns the definite integral of
// ConvolvedExpSinCos over t in [lower, upper].
func IntegratedConvolvedExpSinCos(a, b, mu, sigma, lower, upper float64, tag int) float64 {
	x1 := (lower - mu) / (sigma * sqrt2)
	x2 := (upper - mu) / (sigma * sqrt2)

	z1 := complex(a*sigma/sqrt2, -b*sigma/sqrt2)
	z2 := complex(a*sigma/sqrt2, +b*sigma/sqrt2)

	c1 := cumulative(x1, x2, z1) / z1
	c2 := cumulative(x1, x2, z2) / z2

	norm := sigma * sqrt2 / 8
	if tag > 0 {
		return norm * real(c1+c2)
	}
	return norm * imag(c1-c2)
}
