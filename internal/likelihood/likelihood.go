// Package likelihood evaluates the negative log-likelihood of an event
// sample under the signal model, normalized over the decay-time window
// and the full angular domain.
package likelihood

import (
	"math"
	"runtime"
	"sync"

	"github.com/hepfit/phisfit/internal/model"
	"github.com/hepfit/phisfit/internal/toymc"
)

// PenaltyNLL is returned when the sample cannot be scored: a parameter
// point outside the physical simplex, a vanishing normalization, or an
// event with zero density. Large enough that any minimizer walks away
// from the region, finite so it does not poison its arithmetic.
const PenaltyNLL = 1e30

// Evaluator scores event samples against a flavor-conjugate model pair
// over a fixed decay-time window. It is immutable and safe for
// concurrent use.
type Evaluator struct {
	particle     *model.Model
	antiparticle *model.Model
	lower, upper float64
	workers      int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithWorkers overrides the number of parallel scoring goroutines.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New builds an Evaluator for the two flavor models over [lower, upper].
func New(particle, antiparticle *model.Model, lower, upper float64, opts ...Option) *Evaluator {
	e := &Evaluator{
		particle:     particle,
		antiparticle: antiparticle,
		lower:        lower,
		upper:        upper,
		workers:      runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithParameters returns an Evaluator for a new parameter point, keeping
// the window and worker settings. Used by a scan or minimizer driving
// the likelihood across parameter space.
func (e *Evaluator) WithParameters(p model.Parameters) (*Evaluator, error) {
	mp, err := e.particle.WithParameters(p)
	if err != nil {
		return nil, err
	}
	ma, err := e.antiparticle.WithParameters(p)
	if err != nil {
		return nil, err
	}
	ne := *e
	ne.particle = mp
	ne.antiparticle = ma
	return &ne, nil
}

// NLL returns -Σ log(f(event)/Norm) over the sample, scoring each event
// against the model of its flavor. Events are scored in parallel chunks;
// every evaluation reads the immutable coefficient snapshots, so no
// locking is involved.
func (e *Evaluator) NLL(events []toymc.Event) float64 {
	if len(events) == 0 {
		return 0
	}

	normP := e.particle.Normalization(e.lower, e.upper)
	normA := e.antiparticle.Normalization(e.lower, e.upper)
	if normP <= 0 || normA <= 0 || math.IsNaN(normP) || math.IsNaN(normA) {
		return PenaltyNLL
	}

	workers := e.workers
	if workers > len(events) {
		workers = len(events)
	}
	chunk := (len(events) + workers - 1) / workers

	sums := make([]float64, workers)
	bad := make([]bool, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(events) {
			hi = len(events)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			var sum float64
			for _, ev := range events[lo:hi] {
				m := e.particle
				if ev.Flavor == model.Antiparticle {
					m = e.antiparticle
				}
				f := m.Evaluate(ev.T, ev.CosThetaH, ev.CosThetaL, ev.Phi)
				if f <= 0 || math.IsNaN(f) {
					bad[w] = true
					return
				}
				sum += math.Log(f)
			}
			sums[w] = sum
		}(w, lo, hi)
	}
	wg.Wait()

	var logSum float64
	for w := 0; w < workers; w++ {
		if bad[w] {
			return PenaltyNLL
		}
		logSum += sums[w]
	}

	// Each event contributes log Norm of its flavor.
	var nP, nA int
	for _, ev := range events {
		if ev.Flavor == model.Antiparticle {
			nA++
		} else {
			nP++
		}
	}
	return -logSum + float64(nP)*math.Log(normP) + float64(nA)*math.Log(normA)
}
