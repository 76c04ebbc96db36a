// SPDX-License-Identifier: MIT
package events

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cordrift/precision"
	"github.com/katalvlaran/cordrift/stattest"
)

// MergeConfig configures the fusion of neighbouring intervals.
//
// Fields:
//   - Confidence: test level α, in (0, 1).
//   - IsEqual: known-sigma only: two-sided "no difference" test when
//     true; otherwise a one-sided test merging unless the right interval
//     is significantly lower than the left one.
//   - Test: KnownSigma (default when empty) or Heteroscedastic.
type MergeConfig struct {
	Confidence float64   `yaml:"confidence"`
	IsEqual    bool      `yaml:"isequal"`
	Test       MergeTest `yaml:"test,omitempty"`
}

// DefaultMergeConfig returns Confidence 0.1, IsEqual true, KnownSigma.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{Confidence: DefaultConfidence, IsEqual: true, Test: KnownSigma}
}

// Validate checks parameter ranges.
func (c MergeConfig) Validate() error {
	if !(c.Confidence > 0 && c.Confidence < 1) {
		return fmt.Errorf("%w: merge confidence %v not in (0, 1)", ErrBadConfig, c.Confidence)
	}
	switch c.Test {
	case "", KnownSigma, Heteroscedastic:
	default:
		return fmt.Errorf("%w: unknown merge test %q", ErrBadConfig, c.Test)
	}

	return nil
}

// prefixStats gives O(1) count, mean and sigma of any interval.
type prefixStats struct {
	cnt  []int
	sum  []float64
	sum2 []float64
}

func newPrefixStats(signal []float32) prefixStats {
	p := prefixStats{
		cnt:  make([]int, len(signal)+1),
		sum:  make([]float64, len(signal)+1),
		sum2: make([]float64, len(signal)+1),
	}
	for i, v := range signal {
		p.cnt[i+1], p.sum[i+1], p.sum2[i+1] = p.cnt[i], p.sum[i], p.sum2[i]
		if x := float64(v); !math.IsNaN(x) {
			p.cnt[i+1]++
			p.sum[i+1] += x
			p.sum2[i+1] += x * x
		}
	}

	return p
}

// input returns the statistics of iv. Intervals without finite samples get
// the sentinel mean and a zero sigma.
func (p prefixStats) input(iv Interval) stattest.Input {
	c := p.cnt[iv.Stop] - p.cnt[iv.Start]
	if c == 0 {
		return stattest.Input{Mean: emptyMean}
	}
	n := float64(c)
	mean := (p.sum[iv.Stop] - p.sum[iv.Start]) / n
	variance := (p.sum2[iv.Stop]-p.sum2[iv.Start])/n - mean*mean

	return stattest.Input{
		Count: c,
		Mean:  mean,
		Sigma: math.Max(precision.MinPrecision, math.Sqrt(math.Max(0, variance))),
	}
}

func checkIntervals(n int, intervals []Interval) error {
	for _, iv := range intervals {
		if iv.Start < 0 || iv.Stop > n || iv.Stop <= iv.Start {
			return fmt.Errorf("%w: [%d, %d) for length %d", ErrBadInterval, iv.Start, iv.Stop, n)
		}
	}

	return nil
}

// Merge fuses neighbouring intervals until no pair passes the test. Each
// round flags every mergeable pair at once; runs of flagged pairs become a
// single interval spanning the run. Merge is idempotent. An interval without
// finite samples is never merged.
//
// A sigma ≤ 0 is estimated from the signal for the KnownSigma test; the
// Heteroscedastic test ignores it.
func (c MergeConfig) Merge(signal []float32, intervals []Interval, sigma float64) ([]Interval, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := checkIntervals(len(signal), intervals); err != nil {
		return nil, err
	}
	cur := append([]Interval(nil), intervals...)
	if len(cur) < 2 {
		return cur, nil
	}

	mergeable, err := c.tester(signal, sigma)
	if err != nil {
		return nil, err
	}
	stats := newPrefixStats(signal)

	flags := make([]bool, len(cur)-1)
	for len(cur) > 1 {
		flags = flags[:len(cur)-1]
		found := false
		for i := range flags {
			l, r := stats.input(cur[i]), stats.input(cur[i+1])
			flags[i] = l.Count > 0 && r.Count > 0 && mergeable(l, r)
			found = found || flags[i]
		}
		if !found {
			break
		}

		next := cur[:0:0]
		for i := 0; i < len(cur); i++ {
			iv := cur[i]
			for i < len(flags) && flags[i] {
				i++
				iv.Stop = cur[i].Stop
			}
			next = append(next, iv)
		}
		cur = next
	}

	return cur, nil
}

// tester returns the pair predicate for the configured test.
func (c MergeConfig) tester(signal []float32, sigma float64) (func(l, r stattest.Input) bool, error) {
	if c.Test == Heteroscedastic {
		thr := 1 - c.Confidence*.5

		return func(l, r stattest.Input) bool {
			return stattest.HeteroscedasticThresholdValue(l, r) < thr
		}, nil
	}

	sigma, err := precision.Resolve(sigma, signal)
	if err != nil {
		return nil, fmt.Errorf("events.Merge: %w", err)
	}
	thr := stattest.KnownSigmaThreshold(c.IsEqual, c.Confidence, sigma)

	if !c.IsEqual {
		return func(l, r stattest.Input) bool {
			return stattest.KnownSigmaValue(false, r, l) > thr
		}, nil
	}

	return func(l, r stattest.Input) bool {
		// NaN values compare false and never merge.
		return stattest.KnownSigmaValue(true, l, r) < thr
	}, nil
}
