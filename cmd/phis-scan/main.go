// Command phis-scan profiles the negative log-likelihood of a stored run
// along one model parameter and renders the profile as an HTML chart.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/hepfit/phisfit/internal/config"
	"github.com/hepfit/phisfit/internal/eventstore"
	"github.com/hepfit/phisfit/internal/likelihood"
	"github.com/hepfit/phisfit/internal/model"
)

// scanSetters maps the scannable parameter names to their field setters.
var scanSetters = map[string]func(*model.Parameters, float64){
	"phi_0":          func(p *model.Parameters, v float64) { p.Phi0 = v },
	"delta_gamma":    func(p *model.Parameters, v float64) { p.DeltaGamma = v },
	"delta_gamma_sd": func(p *model.Parameters, v float64) { p.DeltaGammaSD = v },
	"delta_m":        func(p *model.Parameters, v float64) { p.DeltaM = v },
	"lambda_0":       func(p *model.Parameters, v float64) { p.Lambda0 = v },
	"a0_sq":          func(p *model.Parameters, v float64) { p.A02 = v },
	"aperp_sq":       func(p *model.Parameters, v float64) { p.APerp2 = v },
	"as_sq":          func(p *model.Parameters, v float64) { p.AS2 = v },
}

func scanNames() []string {
	names := make([]string, 0, len(scanSetters))
	for name := range scanSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func main() {
	configPath := flag.String("config", "", "Path to fit configuration JSON (optional)")
	dbPath := flag.String("db", "", "Event store path (overrides config)")
	runID := flag.String("run", "", "Run ID to score (defaults to the newest run)")
	param := flag.String("param", "phi_0", fmt.Sprintf("Parameter to scan %v", scanNames()))
	min := flag.Float64("min", -0.5, "Scan lower bound")
	max := flag.Float64("max", 0.5, "Scan upper bound")
	steps := flag.Int("steps", 41, "Number of scan points")
	out := flag.String("out", "scan.html", "Output HTML file")
	flag.Parse()

	setter, ok := scanSetters[*param]
	if !ok {
		log.Fatalf("unknown scan parameter %q, choose one of %v", *param, scanNames())
	}
	if *steps < 2 || *max <= *min {
		log.Fatalf("invalid scan range [%g, %g] with %d steps", *min, *max, *steps)
	}

	cfg := &config.FitConfig{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	path := cfg.GetDatabasePath()
	if *dbPath != "" {
		path = *dbPath
	}

	store, err := eventstore.Open(path)
	if err != nil {
		log.Fatalf("open event store: %v", err)
	}
	defer store.Close()

	id := *runID
	if id == "" {
		runs, err := store.ListRuns()
		if err != nil {
			log.Fatalf("list runs: %v", err)
		}
		if len(runs) == 0 {
			log.Fatal("event store holds no runs; generate one with phis-gen")
		}
		id = runs[0].ID
	}
	run, err := store.GetRun(id)
	if err != nil {
		log.Fatalf("load run: %v", err)
	}
	events, err := store.Events(id)
	if err != nil {
		log.Fatalf("load events: %v", err)
	}
	log.Printf("scanning %s over [%g, %g] on run %s (%d events)", *param, *min, *max, id, len(events))

	mp, err := cfg.BuildModel(model.Particle)
	if err != nil {
		log.Fatalf("build particle model: %v", err)
	}
	ma, err := cfg.BuildModel(model.Antiparticle)
	if err != nil {
		log.Fatalf("build antiparticle model: %v", err)
	}
	eval := likelihood.New(mp, ma, run.TimeLower, run.TimeUpper)

	xs := make([]string, 0, *steps)
	ys := make([]opts.LineData, 0, *steps)
	minNLL := likelihood.PenaltyNLL
	for i := 0; i < *steps; i++ {
		v := *min + (*max-*min)*float64(i)/float64(*steps-1)

		p := run.Params
		setter(&p, v)
		pe, err := eval.WithParameters(p)
		if err != nil {
			log.Fatalf("parameters at %s=%g: %v", *param, v, err)
		}
		nll := pe.NLL(events)
		if nll < minNLL {
			minNLL = nll
		}

		xs = append(xs, fmt.Sprintf("%.4g", v))
		ys = append(ys, opts.LineData{Value: nll})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "NLL profile", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("NLL profile: %s", *param),
			Subtitle: fmt.Sprintf("run=%s events=%d min NLL=%.3f", id, len(events), minNLL),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: *param}),
		charts.WithYAxisOpts(opts.YAxis{Name: "NLL"}),
	)
	line.SetXAxis(xs)
	line.AddSeries("NLL", ys, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		log.Fatalf("render chart: %v", err)
	}
	fmt.Printf("wrote %s\n", *out)
}
