// Command phis-gen generates a pseudo-experiment event sample from the
// configured signal model and stores it as a run in the event store.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hepfit/phisfit/internal/config"
	"github.com/hepfit/phisfit/internal/eventstore"
	"github.com/hepfit/phisfit/internal/likelihood"
	"github.com/hepfit/phisfit/internal/model"
	"github.com/hepfit/phisfit/internal/toymc"
	"github.com/hepfit/phisfit/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Path to fit configuration JSON (optional)")
	dbPath := flag.String("db", "", "Event store path (overrides config)")
	events := flag.Int("events", 0, "Number of events to generate (overrides config)")
	seed := flag.Uint64("seed", 0, "Random seed (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("phis-gen %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg := &config.FitConfig{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	n := cfg.GetEvents()
	if *events > 0 {
		n = *events
	}
	s := cfg.GetSeed()
	if *seed != 0 {
		s = *seed
	}
	path := cfg.GetDatabasePath()
	if *dbPath != "" {
		path = *dbPath
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
	gen, err := toymc.New(mp, ma, lower, upper, s)
	if err != nil {
		log.Fatalf("generator: %v", err)
	}

	log.Printf("generating %d events over [%g, %g] ps with seed %d", n, lower, upper, s)
	sample := gen.Generate(n)

	store, err := eventstore.Open(path)
	if err != nil {
		log.Fatalf("open event store: %v", err)
	}
	defer store.Close()

	runID, err := store.CreateRun(s, lower, upper, cfg.Parameters(), sample)
	if err != nil {
		log.Fatalf("store run: %v", err)
	}

	nll := likelihood.New(mp, ma, lower, upper).NLL(sample)
	fmt.Printf("run %s: %d events, NLL at truth = %.3f\n", runID, len(sample), nll)
}
