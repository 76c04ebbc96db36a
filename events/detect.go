// SPDX-License-Identifier: MIT
package events

import (
	"errors"
	"fmt"
	"iter"

	"github.com/katalvlaran/cordrift/precision"
)

// Config gathers the three stages and the precision used by all of them.
type Config struct {
	Split     SplitConfig         `yaml:"split"`
	Merge     MergeConfig         `yaml:"merge"`
	Select    SelectConfig        `yaml:"select"`
	Precision precision.Estimator `yaml:"precision"`
}

// DefaultConfig returns the default of every stage and an estimating
// precision.
func DefaultConfig() Config {
	return Config{
		Split:     DefaultSplitConfig(),
		Merge:     DefaultMergeConfig(),
		Select:    DefaultSelectConfig(),
		Precision: precision.DefaultEstimator(),
	}
}

// Validate validates every stage.
func (c Config) Validate() error {
	return errors.Join(
		c.Split.Validate(),
		c.Merge.Validate(),
		c.Select.Validate(),
		c.Precision.Validate(),
	)
}

// Detector runs split, merge and select on one signal.
type Detector struct {
	cfg Config
}

// NewDetector returns a Detector for cfg. cfg is validated on each call.
func NewDetector(cfg Config) *Detector { return &Detector{cfg: cfg} }

// Config returns the detector configuration.
func (d *Detector) Config() Config { return d.cfg }

// Detect returns the events of signal. σ is resolved once: a positive sigma
// wins over the configured precision, which wins over estimation.
//
// Errors:
//   - ErrBadConfig for invalid stage parameters.
//   - precision.ErrConfiguration when σ can be neither read nor estimated.
func (d *Detector) Detect(signal []float32, sigma float64) ([]Interval, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(signal) <= 1 {
		return []Interval{}, nil
	}
	sigma, err := d.cfg.Precision.Resolve(sigma, signal)
	if err != nil {
		return nil, fmt.Errorf("events.Detect: %w", err)
	}

	found, err := d.cfg.Split.Split(signal, sigma)
	if err != nil {
		return nil, err
	}
	found, err = d.cfg.Merge.Merge(signal, found, sigma)
	if err != nil {
		return nil, err
	}

	return d.cfg.Select.Select(signal, found)
}

// Events is the lazy form of Detect: configuration and σ are checked
// eagerly, intervals are computed on the first iteration. Iterating twice
// recomputes them.
func (d *Detector) Events(signal []float32, sigma float64) (iter.Seq[Interval], error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(signal) > 1 {
		var err error
		if sigma, err = d.cfg.Precision.Resolve(sigma, signal); err != nil {
			return nil, fmt.Errorf("events.Events: %w", err)
		}
	}

	return func(yield func(Interval) bool) {
		found, err := d.Detect(signal, sigma)
		if err != nil {
			return
		}
		for _, iv := range found {
			if !yield(iv) {
				return
			}
		}
	}, nil
}
