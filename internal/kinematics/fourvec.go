// Package kinematics provides relativistic four-momentum arithmetic and
// the decay-angle observables of a four-body final state.
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// FourVec is an energy-momentum four-vector (E, p) in natural units.
// It is an immutable value type; all operations return new values.
type FourVec struct {
	E float64
	P r3.Vec
}

// NewFourVec builds a four-vector from energy and Cartesian momentum
// components.
func NewFourVec(e, px, py, pz float64) FourVec {
	return FourVec{E: e, P: r3.Vec{X: px, Y: py, Z: pz}}
}

// Add returns the component-wise sum v + w.
func (v FourVec) Add(w FourVec) FourVec {
	return FourVec{E: v.E + w.E, P: r3.Add(v.P, w.P)}
}

// Sub returns the component-wise difference v - w.
func (v FourVec) Sub(w FourVec) FourVec {
	return FourVec{E: v.E - w.E, P: r3.Sub(v.P, w.P)}
}

// Dot returns the Minkowski inner product v·w with (+,-,-,-) signature.
func (v FourVec) Dot(w FourVec) float64 {
	return v.E*w.E - r3.Dot(v.P, w.P)
}

// M2 returns the invariant mass squared v·v. It can be negative for
// spacelike vectors.
func (v FourVec) M2() float64 {
	return v.Dot(v)
}

// M returns the invariant mass, or NaN for spacelike vectors.
func (v FourVec) M() float64 {
	m2 := v.M2()
	if m2 < 0 {
		return math.NaN()
	}
	return math.Sqrt(m2)
}

// Beta returns the velocity vector p/E.
func (v FourVec) Beta() r3.Vec {
	return r3.Scale(1/v.E, v.P)
}

// Boost applies a pure Lorentz boost with velocity beta and returns the
// boosted vector. Boosting by -frame.Beta() takes a vector into the rest
// frame of "frame".
func (v FourVec) Boost(beta r3.Vec) FourVec {
	b2 := r3.Dot(beta, beta)
	if b2 == 0 {
		return v
	}
	gamma := 1 / math.Sqrt(1-b2)
	bp := r3.Dot(beta, v.P)

	e := gamma * (v.E + bp)
	p := r3.Add(v.P, r3.Scale((gamma-1)*bp/b2+gamma*v.E, beta))
	return FourVec{E: e, P: p}
}

// BoostToRestFrameOf boosts v into the rest frame of frame.
func (v FourVec) BoostToRestFrameOf(frame FourVec) FourVec {
	return v.Boost(r3.Scale(-1, frame.Beta()))
}
