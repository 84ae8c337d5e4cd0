// Package toymc generates pseudo-experiment event samples from the
// signal density by accept-reject sampling.
package toymc

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hepfit/phisfit/internal/model"
)

// Event is one generated observation.
type Event struct {
	T         float64 // decay time, ps
	CosThetaH float64
	CosThetaL float64
	Phi       float64
	Flavor    model.Flavor
}

// Generator draws events from a pair of flavor-conjugate models over a
// fixed decay-time window. Proposals use a truncated exponential in time
// (matching the leading decay behavior) and uniform angles, so the
// accept-reject efficiency stays roughly flat across the window.
type Generator struct {
	particle     *model.Model
	antiparticle *model.Model
	lower, upper float64

	rate     float64 // proposal exponential rate
	envelope float64 // max of density / proposal shape, with headroom

	uniform distuv.Uniform // acceptance draw on [0,1)
	angleH  distuv.Uniform
	angleL  distuv.Uniform
	anglePh distuv.Uniform
	rng     *rand.Rand
}

// New builds a Generator for the two flavor models over [lower, upper].
// Both models must share the same parameter point.
func New(particle, antiparticle *model.Model, lower, upper float64, seed uint64) (*Generator, error) {
	if particle.Flavor() != model.Particle || antiparticle.Flavor() != model.Antiparticle {
		return nil, fmt.Errorf("toymc: models passed in wrong flavor order")
	}
	if upper <= lower {
		return nil, fmt.Errorf("toymc: empty time window [%g, %g]", lower, upper)
	}

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	g := &Generator{
		particle:     particle,
		antiparticle: antiparticle,
		lower:        lower,
		upper:        upper,
		rate:         particle.Parameters().DecayRate(),
		uniform:      distuv.Uniform{Min: 0, Max: 1, Src: src},
		angleH:       distuv.Uniform{Min: -1, Max: 1, Src: src},
		angleL:       distuv.Uniform{Min: -1, Max: 1, Src: src},
		anglePh:      distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src},
		rng:          rand.New(src),
	}
	g.envelope = g.scanEnvelope()
	if g.envelope == 0 {
		// Happens outside the physical amplitude simplex, where the
		// density is identically zero; accept-reject would never
		// terminate.
		return nil, fmt.Errorf("toymc: signal density vanishes on the generation window")
	}
	return g, nil
}

// scanEnvelope estimates the maximum of density / proposal shape on a
// coarse grid and pads it. Accept-reject stays exact as long as the pad
// covers the true maximum; the generous factor makes that safe for any
// physical parameter point.
func (g *Generator) scanEnvelope() float64 {
	maxRatio := 0.0
	for i := 0; i <= 40; i++ {
		t := g.lower + (g.upper-g.lower)*float64(i)/40
		shape := math.Exp(-g.rate * (t - g.lower))
		for ch := -0.9; ch <= 0.9; ch += 0.3 {
			for cl := -0.9; cl <= 0.9; cl += 0.3 {
				for phi := 0.3; phi < 2*math.Pi; phi += 1.0 {
					for _, m := range []*model.Model{g.particle, g.antiparticle} {
						if r := m.Evaluate(t, ch, cl, phi) / shape; r > maxRatio {
							maxRatio = r
						}
					}
				}
			}
		}
	}
	return 2.5 * maxRatio
}

// proposeTime draws from the exponential of rate g.rate truncated to
// [lower, upper], by inverse CDF.
func (g *Generator) proposeTime() float64 {
	u := g.uniform.Rand()
	span := 1 - math.Exp(-g.rate*(g.upper-g.lower))
	return g.lower - math.Log(1-u*span)/g.rate
}

// Generate draws n events, alternating flavors 50/50 on a fair coin.
func (g *Generator) Generate(n int) []Event {
	events := make([]Event, 0, n)
	for len(events) < n {
		flavor := model.Particle
		m := g.particle
		if g.rng.IntN(2) == 1 {
			flavor = model.Antiparticle
			m = g.antiparticle
		}

		t := g.proposeTime()
		ch := g.angleH.Rand()
		cl := g.angleL.Rand()
		phi := g.anglePh.Rand()

		shape := math.Exp(-g.rate * (t - g.lower))
		if m.Evaluate(t, ch, cl, phi) > g.uniform.Rand()*g.envelope*shape {
			events = append(events, Event{T: t, CosThetaH: ch, CosThetaL: cl, Phi: phi, Flavor: flavor})
		}
	}
	return events
}
