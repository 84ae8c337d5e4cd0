// Package config loads and validates the JSON fit configuration shared
// by the command-line tools: physics parameters, time window, resolution,
// efficiency profile and generation settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hepfit/phisfit/internal/model"
	"github.com/hepfit/phisfit/internal/spline"
)

// FitConfig is the root configuration. All fields are optional pointers
// so a partial JSON file only overrides what it names; the Get* methods
// supply the defaults. The parameter block uses the same field names as
// the model's 17-parameter contract.
type FitConfig struct {
	// Physics parameters.
	A02          *float64 `json:"a0_sq,omitempty"`
	APerp2       *float64 `json:"aperp_sq,omitempty"`
	AS2          *float64 `json:"as_sq,omitempty"`
	DeltaGammaSD *float64 `json:"delta_gamma_sd,omitempty"`
	DeltaGamma   *float64 `json:"delta_gamma,omitempty"`
	DeltaM       *float64 `json:"delta_m,omitempty"`
	Phi0         *float64 `json:"phi_0,omitempty"`
	PhiPar0      *float64 `json:"phi_par0,omitempty"`
	PhiPerp0     *float64 `json:"phi_perp0,omitempty"`
	PhiS0        *float64 `json:"phi_s0,omitempty"`
	Lambda0      *float64 `json:"lambda_0,omitempty"`
	LambdaPar0   *float64 `json:"lambda_par0,omitempty"`
	LambdaPerp0  *float64 `json:"lambda_perp0,omitempty"`
	LambdaS0     *float64 `json:"lambda_s0,omitempty"`
	DeltaPar0    *float64 `json:"delta_par0,omitempty"`
	DeltaPerp0   *float64 `json:"delta_perp0,omitempty"`
	DeltaSPerp   *float64 `json:"delta_sperp,omitempty"`

	// Decay-time window (ps).
	TimeLower *float64 `json:"time_lower,omitempty"`
	TimeUpper *float64 `json:"time_upper,omitempty"`

	// Gaussian resolution; sigma 0 disables the convolution.
	ResolutionMean  *float64 `json:"resolution_mean,omitempty"`
	ResolutionSigma *float64 `json:"resolution_sigma,omitempty"`

	// Optional decay-time efficiency profile.
	EfficiencyKnots  []float64 `json:"efficiency_knots,omitempty"`
	EfficiencyCoeffs []float64 `json:"efficiency_coeffs,omitempty"`
	SplineFloor      *float64  `json:"spline_floor,omitempty"`
	SplineRoundEps   *float64  `json:"spline_round_eps,omitempty"`

	// Generation / run settings.
	Events       *int    `json:"events,omitempty"`
	Seed         *uint64 `json:"seed,omitempty"`
	DatabasePath *string `json:"database_path,omitempty"`
}

// Load reads a FitConfig from a JSON file. Fields omitted from the file
// fall back to their defaults, so partial configs are safe.
func Load(path string) (*FitConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &FitConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration values that can be checked without
// building the model.
func (c *FitConfig) Validate() error {
	if c.TimeLower != nil && c.TimeUpper != nil && *c.TimeUpper <= *c.TimeLower {
		return fmt.Errorf("time_upper (%g) must exceed time_lower (%g)", *c.TimeUpper, *c.TimeLower)
	}
	if c.ResolutionSigma != nil && *c.ResolutionSigma < 0 {
		return fmt.Errorf("resolution_sigma must be non-negative, got %g", *c.ResolutionSigma)
	}
	if len(c.EfficiencyKnots) > 0 {
		if len(c.EfficiencyCoeffs) != len(c.EfficiencyKnots)+2 {
			return fmt.Errorf("efficiency_coeffs needs %d entries for %d knots, got %d",
				len(c.EfficiencyKnots)+2, len(c.EfficiencyKnots), len(c.EfficiencyCoeffs))
		}
		for i := 1; i < len(c.EfficiencyKnots); i++ {
			if c.EfficiencyKnots[i] <= c.EfficiencyKnots[i-1] {
				return fmt.Errorf("efficiency_knots must be strictly increasing at index %d", i)
			}
		}
	}
	if c.Events != nil && *c.Events < 0 {
		return fmt.Errorf("events must be non-negative, got %d", *c.Events)
	}
	return nil
}

func getF(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Parameters assembles the model parameter point, falling back to a
// reference fit result for any field the file does not set.
func (c *FitConfig) Parameters() model.Parameters {
	return model.Parameters{
		A02:          getF(c.A02, 0.524),
		APerp2:       getF(c.APerp2, 0.250),
		AS2:          getF(c.AS2, 0.027),
		DeltaGammaSD: getF(c.DeltaGammaSD, 0.010),
		DeltaGamma:   getF(c.DeltaGamma, 0.0782),
		DeltaM:       getF(c.DeltaM, 17.713),
		Phi0:         getF(c.Phi0, -0.082),
		PhiPar0:      getF(c.PhiPar0, 0),
		PhiPerp0:     getF(c.PhiPerp0, 0),
		PhiS0:        getF(c.PhiS0, 0),
		Lambda0:      getF(c.Lambda0, 0.955),
		LambdaPar0:   getF(c.LambdaPar0, 1),
		LambdaPerp0:  getF(c.LambdaPerp0, 1),
		LambdaS0:     getF(c.LambdaS0, 1),
		DeltaPar0:    getF(c.DeltaPar0, 3.030),
		DeltaPerp0:   getF(c.DeltaPerp0, 2.600),
		DeltaSPerp:   getF(c.DeltaSPerp, -0.300),
	}
}

// GetTimeLower returns the lower decay-time bound (ps) or the default.
func (c *FitConfig) GetTimeLower() float64 {
	return getF(c.TimeLower, 0.3)
}

// GetTimeUpper returns the upper decay-time bound (ps) or the default.
func (c *FitConfig) GetTimeUpper() float64 {
	return getF(c.TimeUpper, 15.0)
}

// GetResolutionMean returns the resolution mean (ps) or the default.
func (c *FitConfig) GetResolutionMean() float64 {
	return getF(c.ResolutionMean, 0)
}

// GetResolutionSigma returns the resolution width (ps) or the default.
func (c *FitConfig) GetResolutionSigma() float64 {
	return getF(c.ResolutionSigma, 0.045)
}

// GetEvents returns the number of events to generate or the default.
func (c *FitConfig) GetEvents() int {
	if c.Events == nil {
		return 50000
	}
	return *c.Events
}

// GetSeed returns the random seed or the default.
func (c *FitConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

// GetDatabasePath returns the run-store path or the default.
func (c *FitConfig) GetDatabasePath() string {
	if c.DatabasePath == nil {
		return "phisfit.db"
	}
	return *c.DatabasePath
}

// Efficiency builds the configured spline, or returns nil when no
// efficiency profile is configured.
func (c *FitConfig) Efficiency() (*spline.CubicSpline, error) {
	if len(c.EfficiencyKnots) == 0 {
		return nil, nil
	}
	var opts []spline.Option
	if c.SplineFloor != nil {
		opts = append(opts, spline.WithFloor(*c.SplineFloor))
	}
	if c.SplineRoundEps != nil {
		opts = append(opts, spline.WithRoundEps(*c.SplineRoundEps))
	}
	return spline.New(c.EfficiencyKnots, c.EfficiencyCoeffs, opts...)
}

// BuildModel assembles the signal model for the given flavor from the
// configured parameters, resolution and efficiency.
func (c *FitConfig) BuildModel(flavor model.Flavor) (*model.Model, error) {
	var opts []model.Option
	if sigma := c.GetResolutionSigma(); sigma > 0 {
		opts = append(opts, model.WithResolution(c.GetResolutionMean(), sigma))
	}
	eff, err := c.Efficiency()
	if err != nil {
		return nil, fmt.Errorf("efficiency spline: %w", err)
	}
	if eff != nil {
		opts = append(opts, model.WithEfficiency(eff))
	}
	return model.New(flavor, c.Parameters(), opts...)
}
