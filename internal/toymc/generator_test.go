package toymc

import (
	"math"
	"testing"

	"github.com/hepfit/phisfit/internal/model"
	"github.com/hepfit/phisfit/internal/testutil"
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

func testModels(t *testing.T) (*model.Model, *model.Model) {
	t.Helper()
	mp, err := model.New(model.Particle, testParams(), model.WithResolution(0, 0.045))
	testutil.AssertNoError(t, err)
	ma, err := model.New(model.Antiparticle, testParams(), model.WithResolution(0, 0.045))
	testutil.AssertNoError(t, err)
	return mp, ma
}

func TestNewValidation(t *testing.T) {
	mp, ma := testModels(t)
	_, err := New(ma, mp, 0.3, 7, 1) // flavors swapped
	testutil.AssertError(t, err)
	_, err = New(mp, ma, 7, 0.3, 1) // empty window
	testutil.AssertError(t, err)
}

func TestNewRejectsVanishingDensity(t *testing.T) {
	// Outside the physical amplitude simplex the density is identically
	// zero; the generator must refuse rather than loop forever.
	p := testParams()
	p.A02 = 0.6
	p.APerp2 = 0.5
	mp, err := model.New(model.Particle, p, model.WithResolution(0, 0.045))
	testutil.AssertNoError(t, err)
	ma, err := model.New(model.Antiparticle, p, model.WithResolution(0, 0.045))
	testutil.AssertNoError(t, err)

	_, err = New(mp, ma, 0.3, 7, 1)
	testutil.AssertError(t, err)
}

func TestProposalRateMatchesModel(t *testing.T) {
	mp, ma := testModels(t)
	g, err := New(mp, ma, 0.3, 7, 1)
	testutil.AssertNoError(t, err)

	if g.rate != testParams().DecayRate() {
		t.Errorf("proposal rate %g, want the model decay rate %g", g.rate, testParams().DecayRate())
	}
}

func TestGenerateRespectsBounds(t *testing.T) {
	mp, ma := testModels(t)
	g, err := New(mp, ma, 0.3, 7, 11)
	testutil.AssertNoError(t, err)

	events := g.Generate(500)
	if len(events) != 500 {
		t.Fatalf("got %d events, want 500", len(events))
	}

	var particles, antiparticles int
	var meanT float64
	for _, ev := range events {
		if ev.T < 0.3 || ev.T > 7 {
			t.Fatalf("t = %g outside window", ev.T)
		}
		if ev.CosThetaH < -1 || ev.CosThetaH > 1 || ev.CosThetaL < -1 || ev.CosThetaL > 1 {
			t.Fatalf("angle cosine outside [-1, 1]: %+v", ev)
		}
		if ev.Phi < 0 || ev.Phi >= 2*math.Pi {
			t.Fatalf("phi = %g outside [0, 2pi)", ev.Phi)
		}
		switch ev.Flavor {
		case model.Particle:
			particles++
		case model.Antiparticle:
			antiparticles++
		default:
			t.Fatalf("unexpected flavor %v", ev.Flavor)
		}
		meanT += ev.T
	}
	meanT /= float64(len(events))

	if particles == 0 || antiparticles == 0 {
		t.Errorf("flavor split %d/%d, want both populated", particles, antiparticles)
	}
	// Exponential decay pulls the mean well below the window midpoint.
	if meanT > 2.5 {
		t.Errorf("mean decay time %g, want < 2.5 for a decaying sample", meanT)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	mp, ma := testModels(t)
	g1, err := New(mp, ma, 0.3, 7, 99)
	testutil.AssertNoError(t, err)
	g2, err := New(mp, ma, 0.3, 7, 99)
	testutil.AssertNoError(t, err)

	e1 := g1.Generate(50)
	e2 := g2.Generate(50)
	for i := range e1 {
		if e1[i] != e2[i] {
			t.Fatalf("event %d differs between identically seeded generators", i)
		}
	}

	g3, err := New(mp, ma, 0.3, 7, 100)
	testutil.AssertNoError(t, err)
	e3 := g3.Generate(50)
	same := true
	for i := range e1 {
		if e1[i] != e3[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced an identical sample")
	}
}
