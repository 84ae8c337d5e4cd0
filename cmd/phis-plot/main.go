// Command phis-plot renders decay-time projections of the signal density
// for both flavors, plus the efficiency profile when one is configured.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hepfit/phisfit/internal/config"
	"github.com/hepfit/phisfit/internal/model"
)

// timeProjection integrates the density over the angular domain at each
// sample time, giving the decay-time marginal up to a constant.
func timeProjection(m *model.Model, lower, upper float64, n int) plotter.XYs {
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		t := lower + (upper-lower)*float64(i)/float64(n-1)
		// A narrow window around t; the closed-form integral already
		// carries the angular integration.
		dt := (upper - lower) / float64(n-1)
		y := m.Normalization(t, t+dt) / dt
		pts = append(pts, plotter.XY{X: t, Y: y})
	}
	return pts
}

func main() {
	configPath := flag.String("config", "", "Path to fit configuration JSON (optional)")
	out := flag.String("out", "density.png", "Output image file")
	points := flag.Int("points", 400, "Samples along the time axis")
	flag.Parse()

	cfg := &config.FitConfig{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	mp, err := cfg.BuildModel(model.Particle)
	if err != nil {
		log.Fatalf("build particle model: %v", err)
	}
	ma, err := cfg.BuildModel(model.Antiparticle)
	if err != nil {
		log.Fatalf("build antiparticle model: %v", err)
	}

	lower, upper := cfg.GetTimeLower(), cfg.GetTimeUpper()

	p := plot.New()
	p.Title.Text = "Decay-time projection"
	p.X.Label.Text = "t (ps)"
	p.Y.Label.Text = "density (arb.)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}

	lineP, err := plotter.NewLine(timeProjection(mp, lower, upper, *points))
	if err != nil {
		log.Fatalf("particle line: %v", err)
	}
	lineP.Color = color.RGBA{B: 255, A: 255}

	lineA, err := plotter.NewLine(timeProjection(ma, lower, upper, *points))
	if err != nil {
		log.Fatalf("antiparticle line: %v", err)
	}
	lineA.Color = color.RGBA{R: 255, A: 255}
	lineA.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(lineP, lineA)
	p.Legend.Add("particle", lineP)
	p.Legend.Add("antiparticle", lineA)

	if eff, err := cfg.Efficiency(); err != nil {
		log.Fatalf("efficiency spline: %v", err)
	} else if eff != nil {
		pts := make(plotter.XYs, 0, *points)
		for i := 0; i < *points; i++ {
			t := lower + (upper-lower)*float64(i)/float64(*points-1)
			pts = append(pts, plotter.XY{X: t, Y: eff.Eval(t)})
		}
		effLine, err := plotter.NewLine(pts)
		if err != nil {
			log.Fatalf("efficiency line: %v", err)
		}
		effLine.Color = color.RGBA{G: 180, A: 255}
		p.Add(effLine)
		p.Legend.Add("efficiency", effLine)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, *out); err != nil {
		log.Fatalf("save plot: %v", err)
	}
	fmt.Printf("wrote %s\n", *out)
}
