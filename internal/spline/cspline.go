// Package spline implements the piecewise-cubic decay-time efficiency
// profile of the likelihood model: a cubic B-spline over a fixed knot
// vector, converted at construction into per-segment power-basis
// polynomials, evaluable pointwise and integrable in closed form against
// the Gaussian-convolved exponential kernels of package timeconv.
package spline

import (
	"fmt"
	"math"
)

// Default tuning constants. Both were chosen empirically for fit
// stability in the reference analysis and are overridable via Options.
const (
	// DefaultFloor replaces the spline value past the point where the
	// linear tail extrapolation turns negative. A small positive value
	// behaves better in a fit than an exact zero.
	DefaultFloor = 1e-3

	// DefaultRoundEps zeroes polynomial coefficients whose magnitude is
	// pure cancellation noise from the change of basis.
	DefaultRoundEps = 1e-9
)

// Option customizes spline construction.
type Option func(*CubicSpline)

// WithFloor overrides the positive floor used past the negative
// crossover of the extrapolated tail.
func WithFloor(floor float64) Option {
	return func(s *CubicSpline) { s.floor = floor }
}

// WithRoundEps overrides the coefficient-rounding threshold.
func WithRoundEps(eps float64) Option {
	return func(s *CubicSpline) { s.roundEps = eps }
}

// CubicSpline is a piecewise-cubic efficiency profile over n knots,
// linearly extrapolated past the last knot. Immutable after construction.
//
// For knot[i] <= x < knot[i+1] the value is
// as[0][i] + as[1][i]·x + as[2][i]·x² + as[3][i]·x³; the last segment
// (i = n-1) holds the linear tail.
type CubicSpline struct {
	n  int       // number of knots
	u  []float64 // padded knot vector, length n+6
	as [4][]float64

	// The linear tail can cross zero; past that point Eval returns the
	// floor instead of a negative efficiency.
	negativeTail bool
	xNegative    float64

	floor    float64
	roundEps float64
}

// New builds a cubic spline from n strictly increasing knot positions and
// n+2 B-spline coefficients.
func New(knots, coeffs []float64, opts ...Option) (*CubicSpline, error) {
	n := len(knots)
	if n < 2 {
		return nil, fmt.Errorf("spline: need at least 2 knots, got %d", n)
	}
	if len(coeffs) != n+2 {
		return nil, fmt.Errorf("spline: got %d coefficients for %d knots, want %d", len(coeffs), n, n+2)
	}
	for i := 1; i < n; i++ {
		if knots[i] <= knots[i-1] {
			return nil, fmt.Errorf("spline: knots must be strictly increasing (knot[%d]=%g, knot[%d]=%g)", i-1, knots[i-1], i, knots[i])
		}
	}

	s := &CubicSpline{
		n:        n,
		u:        make([]float64, n+6),
		floor:    DefaultFloor,
		roundEps: DefaultRoundEps,
	}
	for _, opt := range opts {
		opt(s)
	}
	for k := range s.as {
		s.as[k] = make([]float64, n)
	}

	// Padded knot vector: the first and last knots are tripled so the
	// B-spline basis clamps at the boundaries.
	u := s.u
	u[0], u[1], u[2] = knots[0], knots[0], knots[0]
	copy(u[3:], knots)
	u[n+3], u[n+4], u[n+5] = knots[n-1], knots[n-1], knots[n-1]

	// Denominator prefactors of the basis change. The entries for the
	// final segment are never referenced (it is overwritten by the
	// linear tail below).
	p := make([]float64, n)
	q := make([]float64, n)
	r := make([]float64, n)
	sd := make([]float64, n)
	for i := 0; i < n; i++ {
		p[i] = (u[i+4] - u[i+1]) * (u[i+4] - u[i+2]) * (u[i+4] - u[i+3])
		q[i] = (u[i+5] - u[i+2]) * (u[i+4] - u[i+2]) * (u[i+4] - u[i+3])
		r[i] = (u[i+5] - u[i+3]) * (u[i+5] - u[i+2]) * (u[i+4] - u[i+3])
		sd[i] = (u[i+6] - u[i+3]) * (u[i+5] - u[i+3]) * (u[i+4] - u[i+3])
	}

	// Power-basis coefficients per segment: a closed-form change of
	// basis from the clamped cubic B-spline, no iterative solve.
	for i := 0; i < n-1; i++ {
		var a0, a1, a2, a3 [4]float64

		a0[0] = u[i+4] * u[i+4] * u[i+4] / p[i]
		a0[1] = -u[i+1]*u[i+4]*u[i+4]/p[i] - u[i+2]*u[i+4]*u[i+5]/q[i] - u[i+3]*u[i+5]*u[i+5]/r[i]
		a0[2] = u[i+2]*u[i+2]*u[i+4]/q[i] + u[i+2]*u[i+3]*u[i+5]/r[i] + u[i+3]*u[i+3]*u[i+6]/sd[i]
		a0[3] = -u[i+3] * u[i+3] * u[i+3] / sd[i]

		a1[0] = -3 * u[i+4] * u[i+4] / p[i]
		a1[1] = (2*u[i+1]*u[i+4]+u[i+4]*u[i+4])/p[i] +
			(u[i+2]*u[i+4]+u[i+2]*u[i+5]+u[i+4]*u[i+5])/q[i] +
			(2*u[i+3]*u[i+5]+u[i+5]*u[i+5])/r[i]
		a1[2] = -(2*u[i+2]*u[i+4]+u[i+2]*u[i+2])/q[i] -
			(u[i+2]*u[i+3]+u[i+2]*u[i+5]+u[i+3]*u[i+5])/r[i] -
			(2*u[i+3]*u[i+6]+u[i+3]*u[i+3])/sd[i]
		a1[3] = 3 * u[i+3] * u[i+3] / sd[i]

		a2[0] = 3 * u[i+4] / p[i]
		a2[1] = -(2*u[i+4]+u[i+1])/p[i] -
			(u[i+2]+u[i+4]+u[i+5])/q[i] -
			(2*u[i+5]+u[i+3])/r[i]
		a2[2] = (2*u[i+2]+u[i+4])/q[i] +
			(u[i+2]+u[i+5]+u[i+3])/r[i] +
			(2*u[i+3]+u[i+6])/sd[i]
		a2[3] = -3 * u[i+3] / sd[i]

		a3[0] = -1 / p[i]
		a3[1] = 1/p[i] + 1/q[i] + 1/r[i]
		a3[2] = -1/q[i] - 1/r[i] - 1/sd[i]
		a3[3] = 1 / sd[i]

		for j := 0; j < 4; j++ {
			b := coeffs[i+j]
			s.as[0][i] += b * a0[j]
			s.as[1][i] += b * a1[j]
			s.as[2][i] += b * a2[j]
			s.as[3][i] += b * a3[j]
		}
		for k := 0; k < 4; k++ {
			if math.Abs(s.as[k][i]) < s.roundEps {
				s.as[k][i] = 0
			}
		}
	}

	// Past the last knot: linear extrapolation of the second-to-last
	// segment, matching value and slope at the last knot v.
	v := u[n+2]
	i := n - 1
	s.as[3][i] = 0
	s.as[2][i] = 0
	s.as[1][i] = s.as[1][i-1] + 2*s.as[2][i-1]*v + 3*s.as[3][i-1]*v*v
	s.as[0][i] = s.as[0][i-1] + s.as[1][i-1]*v + s.as[2][i-1]*v*v + s.as[3][i-1]*v*v*v - s.as[1][i]*v

	if s.as[1][i] < 0 {
		s.negativeTail = true
		s.xNegative = -s.as[0][i] / s.as[1][i]
	}

	return s, nil
}

// NumKnots returns the number of knots.
func (s *CubicSpline) NumKnots() int { return s.n }

// Knot returns the i-th knot position.
func (s *CubicSpline) Knot(i int) float64 { return s.u[3+i] }

// NegativeTail reports whether the extrapolated tail crosses zero, and at
// which position.
func (s *CubicSpline) NegativeTail() (bool, float64) {
	return s.negativeTail, s.xNegative
}

// findKnot returns the index of the last knot <= x (0 if x precedes the
// first knot). Linear scan; the knot vectors in use are short.
func (s *CubicSpline) findKnot(x float64) int {
	j := 0
	for i := 0; i < s.n; i++ {
		if x >= s.u[3+i] {
			j = i
		}
	}
	return j
}

// Eval evaluates the spline at x, honoring the positive floor past the
// negative crossover of the extrapolated tail.
func (s *CubicSpline) Eval(x float64) float64 {
	if s.negativeTail && x > s.xNegative {
		return s.floor
	}
	j := s.findKnot(x)
	return s.as[0][j] + s.as[1][j]*x + s.as[2][j]*x*x + s.as[3][j]*x*x*x
}
