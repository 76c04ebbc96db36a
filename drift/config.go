// SPDX-License-Identifier: MIT
package drift

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/cordrift/collapse"
	"github.com/katalvlaran/cordrift/events"
	"github.com/katalvlaran/cordrift/precision"
	"github.com/katalvlaran/cordrift/stitch"
)

// DefaultZero is the number of trailing profile values anchored onto 0.
const DefaultZero = 10

// Collapse method names.
const (
	CollapseMean     = "mean"
	CollapseDerivate = "derivate"
	CollapseMerging  = "merging"
	CollapseSock     = "sock"
)

// Stitch method names. StitchNone leaves holes as they are.
const (
	StitchNone          = "none"
	StitchInterpolation = "interpolation"
	StitchDerivate      = "derivate"
	StitchSingleFit     = "singlefit"
)

// CollapseConfig names a collapse method and carries the settings of each.
type CollapseConfig struct {
	Method   string                  `yaml:"method"`
	Mean     collapse.MeanConfig     `yaml:"mean"`
	Derivate collapse.DerivateConfig `yaml:"derivate"`
	Merging  collapse.MergingConfig  `yaml:"merging"`
	Sock     collapse.SockConfig     `yaml:"sock"`
}

// Collapser returns the configured method.
func (c CollapseConfig) Collapser() (collapse.Collapser, error) {
	var (
		out collapse.Collapser
		err error
	)
	switch c.Method {
	case CollapseMean:
		out, err = c.Mean, c.Mean.Validate()
	case CollapseDerivate:
		out, err = c.Derivate, c.Derivate.Validate()
	case CollapseMerging:
		out, err = c.Merging, c.Merging.Validate()
	case CollapseSock:
		out, err = c.Sock, c.Sock.Validate()
	default:
		return nil, fmt.Errorf("%w: unknown collapse method %q", ErrConfiguration, c.Method)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: collapse: %w", ErrConfiguration, err)
	}

	return out, nil
}

// StitchConfig names a stitch method and carries the settings of each.
type StitchConfig struct {
	Method        string                     `yaml:"method"`
	Interpolation stitch.InterpolationConfig `yaml:"interpolation"`
	Derivate      stitch.DerivateConfig      `yaml:"derivate"`
	SingleFit     stitch.SingleFitConfig     `yaml:"singlefit"`
}

// Stitcher returns the configured method, nil for StitchNone.
func (c StitchConfig) Stitcher() (stitch.Stitcher, error) {
	var (
		out stitch.Stitcher
		err error
	)
	switch c.Method {
	case StitchNone:
		return nil, nil
	case StitchInterpolation:
		out, err = c.Interpolation, c.Interpolation.Validate()
	case StitchDerivate:
		out, err = c.Derivate, c.Derivate.Validate()
	case StitchSingleFit:
		out, err = c.SingleFit, c.SingleFit.Validate()
	default:
		return nil, fmt.Errorf("%w: unknown stitch method %q", ErrConfiguration, c.Method)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stitch: %w", ErrConfiguration, err)
	}

	return out, nil
}

// Config is the full drift task.
//
// Fields:
//   - Events: event detection per cycle; nil collapses whole cycles.
//   - Collapse: how ranges become a profile.
//   - Stitch: how holes in the profile are bridged.
//   - Zero: trailing values anchored onto 0; nil disables anchoring.
//   - Precision: σ shared by the event detection of one task.
//   - OnBeads: aggregate per bead (true) or per cycle across beads.
//   - Workers: Runner parallelism; < 1 means one per CPU.
type Config struct {
	Events    *events.Config      `yaml:"events"`
	Collapse  CollapseConfig      `yaml:"collapse"`
	Stitch    StitchConfig        `yaml:"stitch"`
	Zero      *int                `yaml:"zero"`
	Precision precision.Estimator `yaml:"precision"`
	OnBeads   bool                `yaml:"onbeads"`
	Workers   int                 `yaml:"workers"`
}

// DefaultConfig returns event detection with its defaults, a mean collapse,
// interpolation stitching, Zero 10 and per-bead aggregation.
func DefaultConfig() Config {
	evts := events.DefaultConfig()
	zero := DefaultZero

	return Config{
		Events: &evts,
		Collapse: CollapseConfig{
			Method:   CollapseMean,
			Mean:     collapse.DefaultMeanConfig(),
			Derivate: collapse.DefaultDerivateConfig(),
			Merging:  collapse.DefaultMergingConfig(),
			Sock:     collapse.DefaultSockConfig(),
		},
		Stitch: StitchConfig{
			Method:        StitchInterpolation,
			Interpolation: stitch.DefaultInterpolationConfig(),
			Derivate:      stitch.DefaultDerivateConfig(),
			SingleFit:     stitch.DefaultSingleFitConfig(),
		},
		Zero:      &zero,
		Precision: precision.DefaultEstimator(),
		OnBeads:   true,
	}
}

// Validate reports every inconsistency, each wrapping ErrConfiguration.
func (c Config) Validate() error {
	var errs []error
	if c.Zero != nil && *c.Zero <= 2 {
		errs = append(errs, fmt.Errorf("%w: zero %d <= 2", ErrConfiguration, *c.Zero))
	}
	if c.Events == nil && (c.Collapse.Method == CollapseMean || c.Collapse.Method == CollapseSock) {
		errs = append(errs, fmt.Errorf("%w: %s collapse requires events", ErrConfiguration, c.Collapse.Method))
	}
	if c.Events != nil {
		if err := c.Events.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: events: %w", ErrConfiguration, err))
		}
	}
	if _, err := c.Collapse.Collapser(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Stitch.Stitcher(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Precision.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrConfiguration, err))
	}

	return errors.Join(errs...)
}

// LoadConfig decodes YAML over DefaultConfig and validates the result.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfigFile is LoadConfig on the file at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("drift.LoadConfigFile: %w", err)
	}
	defer f.Close()

	cfg, err := LoadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("drift.LoadConfigFile %s: %w", path, err)
	}

	return cfg, nil
}
