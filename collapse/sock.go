package collapse

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// SockMode names the second pass of a SockConfig collapse.
type SockMode string

const (
	// RobustMean averages, per frame, the fitted samples between the
	// Robustness quantiles.
	RobustMean SockMode = "robustmean"

	// SockMedian takes, per frame, the median of the fitted samples.
	SockMedian SockMode = "median"

	// SockChiSquare runs the mean collapse again, each range weighted by
	// its χ² distance to the first pass.
	SockChiSquare SockMode = "chisquare"
)

// DefaultRobustness keeps the samples between the 10% and 90% ranks.
var DefaultRobustness = [2]float64{.1, .9}

// SockConfig collapses twice: a plain mean collapse first, then a second
// pass that uses it to discard faulty ranges.
//
// Fields:
//   - MeanConfig: first pass settings. Its Weight is ignored; Precision
//     feeds SockChiSquare.
//   - Mode: RobustMean (default), SockMedian or SockChiSquare.
//   - Robustness: lower and upper rank fractions kept by RobustMean;
//     zero means DefaultRobustness.
type SockConfig struct {
	MeanConfig `yaml:",inline"`
	Mode       SockMode   `yaml:"mode,omitempty"`
	Robustness [2]float64 `yaml:"robustness"`
}

// DefaultSockConfig returns the default first pass, RobustMean and
// DefaultRobustness.
func DefaultSockConfig() SockConfig {
	return SockConfig{MeanConfig: DefaultMeanConfig(), Mode: RobustMean, Robustness: DefaultRobustness}
}

// Validate checks the first pass, the mode and the robustness bounds.
func (c SockConfig) Validate() error {
	if err := c.MeanConfig.Validate(); err != nil {
		return err
	}
	switch c.Mode {
	case "", RobustMean, SockMedian, SockChiSquare:
	default:
		return fmt.Errorf("%w: unknown sock mode %q", ErrBadConfig, c.Mode)
	}
	lo, hi := c.Robustness[0], c.Robustness[1]
	if c.Robustness != ([2]float64{}) && !(lo >= 0 && lo < hi && hi <= 1) {
		return fmt.Errorf("%w: robustness %v not within 0 <= lo < hi <= 1", ErrBadConfig, c.Robustness)
	}

	return nil
}

// first returns the unweighted mean collapse of ranges.
func (c SockConfig) first(ranges []Range, out *Profile) *Profile {
	cfg := c.MeanConfig
	cfg.Weight = NoWeight

	return cfg.collapse(ranges, out.Clone(), cfg.weigher())
}

// fitted returns, per frame of first, the finite samples of every range
// shifted onto first.
func fitted(ranges []Range, first *Profile) [][]float64 {
	fits := make([]Range, len(ranges))
	for i, r := range ranges {
		fits[i] = first.Fit(r)
	}
	table := make([][]float64, first.Len())
	for _, s := range spans(first.XMin, first.XMax, fits) {
		for k, i := range s.idx {
			table[i] = append(table[i], s.val[k])
		}
	}

	return table
}

// Collapse runs the first pass, then the configured second one.
//
// Stage 1: mean collapse without weights.
// Stage 2: fit every range onto that profile.
// Stage 3: RobustMean and SockMedian reduce each frame of the fitted
// samples; frames without one are 0. SockChiSquare collapses again with
// weights 1/mean(((range − first)/Precision)²) over the frames the first
// pass counts. Count is the first pass's Count in every mode.
func (c SockConfig) Collapse(ranges []Range, prof *Profile) *Profile {
	out := base(ranges, prof)
	first := c.first(ranges, out)
	if c.Mode == SockChiSquare {
		return c.MeanConfig.collapse(ranges, out, c.chiSquareTo(first))
	}

	for i, row := range fitted(ranges, first) {
		out.Value[i] = float32(c.reduce(row))
	}
	copy(out.Count, first.Count)

	return out
}

// reduce returns the robust location of a frame's samples, 0 when empty.
func (c SockConfig) reduce(row []float64) float64 {
	if len(row) == 0 {
		return 0
	}
	if c.Mode == SockMedian {
		return Median.of(row)
	}
	lo, hi := c.Robustness[0], c.Robustness[1]
	if lo == 0 && hi == 0 {
		lo, hi = DefaultRobustness[0], DefaultRobustness[1]
	}
	sorted := append([]float64(nil), row...)
	sort.Float64s(sorted)
	n := float64(len(sorted))
	i := int(math.RoundToEven(n * lo))
	j := min(int(math.RoundToEven(n*hi))+1, len(sorted))
	if j <= i {
		return sorted[min(i, len(sorted)-1)]
	}
	v, _ := stats.Mean(sorted[i:j])

	return v
}

// chiSquareTo weights a shifted span by its mean squared distance to first,
// in units of Precision, over the frames first counts.
func (c SockConfig) chiSquareTo(first *Profile) weigher {
	prec := c.precision()

	return func(idx []int, cur []float64) float64 {
		if len(cur) < chiSquareMinLength {
			return 1e-3
		}
		chis := make([]float64, 0, len(cur))
		for k, i := range idx {
			if first.Count[i] > 0 {
				d := (cur[k] - float64(first.Value[i])) / prec
				chis = append(chis, d*d)
			}
		}
		if len(chis) == 0 {
			return 1e-3
		}
		v, _ := stats.Mean(chis)

		return chiSquare(v)
	}
}

// Table returns the samples of every range fitted onto the first pass as a
// frames × max-contributions table padded with NaN.
func (c SockConfig) Table(ranges []Range, prof *Profile) [][]float32 {
	out := base(ranges, prof)

	return pad(fitted(ranges, c.first(ranges, out)))
}
