package spline

import (
	"math"

	"github.com/hepfit/phisfit/internal/timeconv"
)

// The closed-form integral of x^n · exp(z²-2zx)·erfc(z-x) over a scaled
// decay-time interval factorizes into rate-only terms K_n(z) and
// boundary-only terms M_n(x; z). Both families are evaluated on
// complex128 so the oscillating (cos/sin) rates share the code path with
// the real (cosh/sinh) ones.

const invSqrtPi = 0.5641895835477562869480794515607725858 // 1/sqrt(pi)

// factorials 0! through 3!, enough for a cubic.
var factorial = [4]float64{1, 1, 2, 6}

func binom(n, k int) float64 {
	return factorial[n] / (factorial[k] * factorial[n-k])
}

// kn returns K_0..K_3 for the complex rate z.
func kn(z complex128) [4]complex128 {
	iz := 1 / z
	iz2 := iz * iz
	return [4]complex128{
		0.5 * iz,
		0.5 * iz2,
		(1 + iz2) * iz,
		3 * (1 + iz2) * iz2,
	}
}

// mn returns M_0..M_3 at the scaled boundary x for rate z.
func mn(x float64, z complex128) [4]complex128 {
	f := timeconv.ScaledErfc(x, z)
	ex := complex(math.Exp(-x*x)*invSqrtPi, 0)
	cx := complex(x, 0)

	return [4]complex128{
		complex(math.Erf(x), 0) - f,
		-2 * (ex + cx*f),
		-2 * (2*cx*ex + (2*cx*cx-1)*f),
		-4 * ((2*cx*cx-1)*ex + cx*(2*cx*cx-3)*f),
	}
}
