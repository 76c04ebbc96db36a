// SPDX-License-Identifier: MIT
package collapse

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// DefaultEdge is the number of samples at each end of a Range left out of
// Count.
const DefaultEdge = 1

// DefaultWeightPrecision is the σ used by chi-square weights when none is
// configured.
const DefaultWeightPrecision = 0.003

// Weight names how much each Range counts in a mean collapse.
type Weight string

const (
	// NoWeight gives every Range weight 1.
	NoWeight Weight = "none"

	// ChiSquare weights a Range by 1/χ², χ² being its reduced spread in
	// units of Precision, clamped to [1e-3, 1e3]. Ranges of at most 5
	// samples get 1e-3.
	ChiSquare Weight = "chisquare"
)

func (w Weight) valid() bool { return w == "" || w == NoWeight || w == ChiSquare }

// chiSquareMinLength is the shortest Range given a chi-square weight above
// the floor.
const chiSquareMinLength = 6

// chiSquare turns a mean squared deviation into a clamped weight.
func chiSquare(val float64) float64 {
	if math.IsNaN(val) {
		return 1e-3
	}

	return 1 / max(min(val, 1e3), 1e-3)
}

// weigher returns the weight of a shifted span: idx are profile indices,
// cur the shifted samples.
type weigher func(idx []int, cur []float64) float64

// MeanConfig collapses Ranges with a weighted running mean.
//
// Fields:
//   - Edge: samples at each end of a Range not counted (< 1: none).
//   - Center: re-bias a Range overlapping nothing yet onto zero; when
//     false it keeps its own level.
//   - Measure: Mean (default) or Median, used for every re-bias.
//   - Weight: NoWeight (default) or ChiSquare.
//   - Precision: σ of ChiSquare; <= 0 means DefaultWeightPrecision.
type MeanConfig struct {
	Edge      int     `yaml:"edge"`
	Center    bool    `yaml:"center"`
	Measure   Measure `yaml:"measure,omitempty"`
	Weight    Weight  `yaml:"weight,omitempty"`
	Precision float64 `yaml:"precision,omitempty"`
}

// DefaultMeanConfig returns Edge 1, no centering, Mean.
func DefaultMeanConfig() MeanConfig { return MeanConfig{Edge: DefaultEdge, Measure: Mean} }

// Validate checks the edge, measure, weight and precision.
func (c MeanConfig) Validate() error {
	if c.Edge < 0 {
		return fmt.Errorf("%w: edge %d < 0", ErrBadConfig, c.Edge)
	}
	if !c.Measure.valid() {
		return fmt.Errorf("%w: unknown measure %q", ErrBadConfig, c.Measure)
	}
	if !c.Weight.valid() {
		return fmt.Errorf("%w: unknown weight %q", ErrBadConfig, c.Weight)
	}
	if math.IsNaN(c.Precision) || math.IsInf(c.Precision, 0) {
		return fmt.Errorf("%w: precision %v", ErrBadConfig, c.Precision)
	}

	return nil
}

func (c MeanConfig) precision() float64 {
	if c.Precision > 0 {
		return c.Precision
	}

	return DefaultWeightPrecision
}

// weigher returns the configured per-range weight.
func (c MeanConfig) weigher() weigher {
	if c.Weight != ChiSquare {
		return func([]int, []float64) float64 { return 1 }
	}
	prec := c.precision()

	return func(_ []int, cur []float64) float64 {
		if len(cur) < chiSquareMinLength {
			return 1e-3
		}
		v, err := stats.SampleVariance(cur)
		if err != nil {
			return 1e-3
		}

		return chiSquare(v / (prec * prec))
	}
}

// order sorts ranges by decreasing Stop, then increasing length. The sort is
// stable so equal keys keep their input order.
func order(ranges []Range) []Range {
	out := append([]Range(nil), ranges...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Stop() != out[j].Stop() {
			return out[i].Stop() > out[j].Stop()
		}

		return len(out[i].Values) < len(out[j].Values)
	})

	return out
}

// Collapse folds ranges one at a time.
//
// Stage 1: sort by decreasing end, shorter first on ties.
// Stage 2: for each range, if some of its frames already have weight, shift
// it by the measure of (profile − range) over those frames and mix it in
// with weights W/(W+w), w being the range weight; otherwise write it as is
// (or centered).
// Stage 3: add w to the weight of every frame and 1 to Count on the frames
// left after trimming Edge.
func (c MeanConfig) Collapse(ranges []Range, prof *Profile) *Profile {
	return c.collapse(ranges, base(ranges, prof), c.weigher())
}

func (c MeanConfig) collapse(ranges []Range, out *Profile, weightOf weigher) *Profile {
	weight := make([]float64, out.Len())
	value := make([]float64, out.Len())
	for i := range weight {
		weight[i] = float64(out.Count[i])
		value[i] = float64(out.Value[i])
	}

	for _, s := range spans(out.XMin, out.XMax, order(ranges)) {
		cur := append([]float64(nil), s.val...)

		diffs := make([]float64, 0, len(s.idx))
		for k, i := range s.idx {
			if weight[i] > 0 {
				diffs = append(diffs, value[i]-cur[k])
			}
		}

		var w float64
		switch {
		case len(diffs) > 0:
			delta := c.Measure.of(diffs)
			for k := range cur {
				cur[k] += delta
			}
			w = weightOf(s.idx, cur)
			for k, i := range s.idx {
				rho := weight[i] / (weight[i] + w)
				value[i] = rho*value[i] + (1-rho)*cur[k]
			}
		case c.Center:
			delta := c.Measure.of(cur)
			for k := range cur {
				cur[k] -= delta
			}
			w = weightOf(s.idx, cur)
			for k, i := range s.idx {
				value[i] = cur[k]
			}
		default:
			w = weightOf(s.idx, cur)
			for k, i := range s.idx {
				value[i] = cur[k]
			}
		}

		for _, i := range s.idx {
			weight[i] += w
		}
		for _, i := range inner(s.idx, c.Edge) {
			out.Count[i]++
		}
	}

	for i, v := range value {
		out.Value[i] = float32(v)
	}

	return out
}
