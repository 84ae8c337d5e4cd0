package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CosDecayAngle returns the cosine of the helicity decay angle: the angle
// between daughter d's flight direction in the rest frame of its parent q
// and q's flight direction in the rest frame of q's own parent p.
//
// The value is computed directly from Lorentz invariants (four-vector dot
// products and invariant masses), which sidesteps the two explicit boosts
// and their numerical noise. For a degenerate configuration the
// denominator vanishes and the result is NaN; callers must treat such an
// event as invalid.
func CosDecayAngle(p, q, d FourVec) float64 {
	pd := p.Dot(d)
	pq := p.Dot(q)
	qd := q.Dot(d)
	mp2 := p.M2()
	mq2 := q.M2()
	md2 := d.M2()

	return (pd*mq2 - pq*qd) / math.Sqrt((pq*pq-mq2*mp2)*(qd*qd-mq2*md2))
}

// PhiPlaneAngle returns the angle between the decay plane spanned by
// particles d2, d3 and the plane spanned by h1, h2, evaluated in the rest
// frame of the full four-body system d2+d3+h1+h2.
//
// The angle is measured from the component of d2 transverse to the
// combined d2+d3 direction to the transverse component of h1, with the
// orientation fixed by the right-handed third axis. The result is
// normalized into [0, 2π); this range (rather than [-π, π)) is a hard
// contract with the angular basis functions.
func PhiPlaneAngle(d2, d3, h1, h2 FourVec) float64 {
	mother := d2.Add(d3).Add(h1).Add(h2)

	d2 = d2.BoostToRestFrameOf(mother)
	d3 = d3.BoostToRestFrameOf(mother)
	h1 = h1.BoostToRestFrameOf(mother)

	// Direction of the combined d2+d3 pair in the mother frame.
	dd := r3.Add(d2.P, d3.P)
	dd2 := r3.Dot(dd, dd)

	// Components of d2 and h1 transverse to the pair axis.
	d2perp := r3.Sub(d2.P, r3.Scale(r3.Dot(dd, d2.P)/dd2, dd))
	h1perp := r3.Sub(h1.P, r3.Scale(r3.Dot(dd, h1.P)/dd2, dd))

	// Third axis, orthogonal to both the pair direction and d2perp.
	d2prime := r3.Cross(d2perp, dd)

	d2perp = r3.Scale(1/r3.Norm(d2perp), d2perp)
	d2prime = r3.Scale(1/r3.Norm(d2prime), d2prime)

	cosPhi := r3.Dot(d2perp, h1perp)
	sinPhi := r3.Dot(d2prime, h1perp)

	phi := math.Atan2(sinPhi, cosPhi)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi
}
