// SPDX-License-Identifier: MIT
package precision

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// MinPrecision is the floor applied to every resolved precision.
const MinPrecision = 5e-4

// HFSigma returns the median of |x[j] − x[i]| over successive finite samples
// i < j. NaN samples are skipped.
func HFSigma(signal []float32) (float64, error) {
	diffs := make([]float64, 0, len(signal))
	prev, seen := 0.0, false
	for _, v := range signal {
		if math.IsNaN(float64(v)) {
			continue
		}
		if seen {
			diffs = append(diffs, math.Abs(float64(v)-prev))
		}
		prev, seen = float64(v), true
	}
	if len(diffs) == 0 {
		return 0, ErrEmptyInput
	}

	return stats.Median(diffs)
}

// Estimate returns the median of HFSigma over every signal that can be
// estimated. It fails with ErrEmptyInput when none can.
func Estimate(signals ...[]float32) (float64, error) {
	sigmas := make([]float64, 0, len(signals))
	for _, s := range signals {
		if v, err := HFSigma(s); err == nil {
			sigmas = append(sigmas, v)
		}
	}
	if len(sigmas) == 0 {
		return 0, ErrEmptyInput
	}
	if len(sigmas) == 1 {
		return sigmas[0], nil
	}

	return stats.Median(sigmas)
}

// Resolve returns max(MinPrecision, p) when p > 0, otherwise the floored
// estimate from signals.
func Resolve(p float64, signals ...[]float32) (float64, error) {
	return Estimator{RawFactor: 1}.Resolve(p, signals...)
}

// Estimator carries a default precision and the factor applied to
// estimated values.
type Estimator struct {
	// Precision, when > 0, is used whenever no override is given.
	Precision float64 `yaml:"precision,omitempty"`

	// RawFactor multiplies estimated precisions. Zero means 1.
	RawFactor float64 `yaml:"rawfactor,omitempty"`
}

// DefaultEstimator returns an Estimator that always estimates, with factor 1.
func DefaultEstimator() Estimator { return Estimator{RawFactor: 1} }

// Validate rejects a negative factor or precision.
func (e Estimator) Validate() error {
	if e.RawFactor < 0 || math.IsNaN(e.RawFactor) {
		return fmt.Errorf("%w: rawfactor %v", ErrConfiguration, e.RawFactor)
	}
	if e.Precision < 0 || math.IsNaN(e.Precision) {
		return fmt.Errorf("%w: precision %v", ErrConfiguration, e.Precision)
	}

	return nil
}

// Resolve picks, in order: the override p when > 0, e.Precision when > 0,
// then the estimate from signals floored at MinPrecision and multiplied by
// RawFactor. Failure wraps both ErrConfiguration and ErrEmptyInput.
func (e Estimator) Resolve(p float64, signals ...[]float32) (float64, error) {
	if p > 0 {
		return math.Max(MinPrecision, p), nil
	}
	if e.Precision > 0 {
		return math.Max(MinPrecision, e.Precision), nil
	}
	est, err := Estimate(signals...)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	factor := e.RawFactor
	if factor == 0 {
		factor = 1
	}

	return math.Max(MinPrecision, est) * factor, nil
}
