package likelihood

import (
	"math"
	"testing"

	"github.com/hepfit/phisfit/internal/model"
	"github.com/hepfit/phisfit/internal/testutil"
	"github.com/hepfit/phisfit/internal/toymc"
)

func testParams() model.Parameters {
	return model.Parameters{
		A02: 0.524, APerp2: 0.250, AS2: 0.027,
		DeltaGammaSD: 0.010, DeltaGamma: 0.0782, DeltaM: 17.713,
		Phi0: -0.082, Lambda0: 0.955,
		LambdaPar0: 1, LambdaPerp0: 1, LambdaS0: 1,
		DeltaPar0: 3.030, DeltaPerp0: 2.600, DeltaSPerp: -0.300,
	}
}

func testSample(t *testing.T, n int) (*Evaluator, []toymc.Event) {
	t.Helper()
	mp, err := model.New(model.Particle, testParams(), model.WithResolution(0, 0.045))
	testutil.AssertNoError(t, err)
	ma, err := model.New(model.Antiparticle, testParams(), model.WithResolution(0, 0.045))
	testutil.AssertNoError(t, err)

	g, err := toymc.New(mp, ma, 0.3, 7, 7)
	testutil.AssertNoError(t, err)
	return New(mp, ma, 0.3, 7), g.Generate(n)
}

func TestNLLFinite(t *testing.T) {
	e, events := testSample(t, 500)
	nll := e.NLL(events)
	if math.IsNaN(nll) || math.IsInf(nll, 0) || nll == PenaltyNLL {
		t.Fatalf("NLL = %g, want a finite score", nll)
	}
}

func TestNLLEmptySample(t *testing.T) {
	e, _ := testSample(t, 1)
	if got := e.NLL(nil); got != 0 {
		t.Errorf("NLL(nil) = %g, want 0", got)
	}
}

func TestNLLWorkerCountInvariant(t *testing.T) {
	e, events := testSample(t, 300)
	want := New(e.particle, e.antiparticle, e.lower, e.upper, WithWorkers(1)).NLL(events)
	for _, n := range []int{2, 4, 16} {
		got := New(e.particle, e.antiparticle, e.lower, e.upper, WithWorkers(n)).NLL(events)
		testutil.AssertCloseRel(t, "NLL across worker counts", got, want, 1e-12)
	}
}

func TestNLLUnphysicalPointPenalized(t *testing.T) {
	e, events := testSample(t, 100)
	p := testParams()
	p.A02 = 0.6
	p.APerp2 = 0.5
	bad, err := e.WithParameters(p)
	testutil.AssertNoError(t, err)
	if got := bad.NLL(events); got != PenaltyNLL {
		t.Errorf("NLL outside the simplex = %g, want penalty %g", got, PenaltyNLL)
	}
}

func TestNLLRespondsToParameters(t *testing.T) {
	e, events := testSample(t, 300)
	base := e.NLL(events)

	p := testParams()
	p.DeltaGammaSD = 0.2 // much faster decay than the sample was drawn with
	shifted, err := e.WithParameters(p)
	testutil.AssertNoError(t, err)

	if got := shifted.NLL(events); got == base {
		t.Errorf("NLL unchanged under a parameter shift: %g", got)
	}
}
