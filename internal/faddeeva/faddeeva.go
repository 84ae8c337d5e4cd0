// Package faddeeva evaluates the Faddeeva function w(z) and the related
// complex complementary error function.
//
// w(z) = exp(-z²) erfc(-iz) is the primitive behind every closed-form
// Gaussian-tail integral in this repository. The implementation follows
// Weideman's rational approximation (SIAM Rev. 36 (1994) 595), which is
// uniformly accurate in the closed upper half-plane, including the real
// axis where series and continued-fraction methods degrade.
package faddeeva

import (
	"math"
	"math/cmplx"
)

// weidemanN is the degree of the rational approximation. N=64 keeps the
// relative error near 1e-14 across the upper half-plane, comfortably
// inside the 1e-9 round-trip tolerance the integration code is tested to.
const weidemanN = 64

const invSqrtPi = 0.5641895835477562869480794515607725858 // 1/sqrt(pi)

var (
	weidemanL float64
	weidemanA [weidemanN]float64
)

func init() {
	// Coefficients a_n of the Weideman expansion, computed once by a
	// direct cosine transform of f(θ) = exp(-t²)(L²+t²), t = L·tan(θ/2),
	// sampled at θ_k = kπ/M. The samples are even in k, so the DFT
	// reduces to the cosine sum below.
	const m = 2 * weidemanN
	weidemanL = math.Sqrt(weidemanN / math.Sqrt2)

	var f [m]float64 // f[k] at θ_k, k = 0..M-1; the k=M sample vanishes
	f[0] = weidemanL * weidemanL
	for k := 1; k < m; k++ {
		t := weidemanL * math.Tan(float64(k)*math.Pi/(2*m))
		f[k] = math.Exp(-t*t) * (weidemanL*weidemanL + t*t)
	}
	for n := 1; n <= weidemanN; n++ {
		sum := f[0]
		for k := 1; k < m; k++ {
			sum += 2 * f[k] * math.Cos(float64(n)*float64(k)*math.Pi/m)
		}
		weidemanA[n-1] = sum / (2 * m)
	}
}

// W returns the Faddeeva function w(z) = exp(-z²) erfc(-iz).
// Arguments in the lower half-plane are folded up with
// w(z) = 2 exp(-z²) - conj(w(conj(z))).
func W(z complex128) complex128 {
	if imag(z) < 0 {
		return 2*cmplx.Exp(-z*z) - cmplx.Conj(wUpper(cmplx.Conj(z)))
	}
	return wUpper(z)
}

// wUpper evaluates w(z) for Im(z) >= 0 via the rational expansion
//
//	w(z) ≈ 2 p(Z)/(L-iz)² + (1/√π)/(L-iz),  Z = (L+iz)/(L-iz),
//
// where p is the degree N-1 polynomial with the precomputed coefficients.
func wUpper(z complex128) complex128 {
	iz := complex(-imag(z), real(z)) // i*z
	d := complex(weidemanL, 0) - iz
	zz := (complex(weidemanL, 0) + iz) / d

	// Horner evaluation, highest coefficient first.
	p := complex(weidemanA[weidemanN-1], 0)
	for n := weidemanN - 2; n >= 0; n-- {
		p = p*zz + complex(weidemanA[n], 0)
	}

	return 2*p/(d*d) + complex(invSqrtPi, 0)/d
}

// Erfc returns the complementary error function of a complex argument.
func Erfc(z complex128) complex128 {
	if real(z) < 0 {
		return 2 - Erfc(-z)
	}
	// erfc(z) = exp(-z²) w(iz) for Re(z) >= 0; iz lies in the upper
	// half-plane there, where wUpper applies directly.
	return cmplx.Exp(-z*z) * wUpper(complex(-imag(z), real(z)))
}

// Erfcx returns the scaled complementary error function
// exp(x²) erfc(x) for real x. For x >= 0 it is w evaluated on the
// positive imaginary axis; for negative x the reflection formula is
// used (which overflows for large -x, as erfcx itself does).
func Erfcx(x float64) float64 {
	if x < 0 {
		return 2*math.Exp(x*x) - Erfcx(-x)
	}
	return real(wUpper(complex(0, x)))
}
