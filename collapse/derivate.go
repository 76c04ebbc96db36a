// SPDX-License-Identifier: MIT
package collapse

import (
	"fmt"
	"math"
)

// DerivateConfig collapses Ranges through their first differences.
//
// Fields:
//   - MaxDer: differences with |d| > MaxDer are discarded. Zero, negative
//     or +Inf mean no limit.
//   - Mode: Median (default) or Mean reduction per frame.
type DerivateConfig struct {
	MaxDer float64 `yaml:"maxder,omitempty"`
	Mode   Measure `yaml:"mode,omitempty"`
}

// DefaultDerivateConfig returns no MaxDer limit and Median.
func DefaultDerivateConfig() DerivateConfig {
	return DerivateConfig{MaxDer: math.Inf(1), Mode: Median}
}

// Validate checks the mode.
func (c DerivateConfig) Validate() error {
	if !c.Mode.valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrBadConfig, c.Mode)
	}
	if math.IsNaN(c.MaxDer) {
		return fmt.Errorf("%w: maxder is NaN", ErrBadConfig)
	}

	return nil
}

func (c DerivateConfig) mode() Measure {
	if c.Mode == "" {
		return Median
	}

	return c.Mode
}

func (c DerivateConfig) keep(d float64) bool {
	return c.MaxDer <= 0 || math.IsInf(c.MaxDer, 1) || math.Abs(d) <= c.MaxDer
}

// derivatives returns, per profile frame t, the kept x[t]-x[t+1] of every
// range finite at both t and t+1, and the number of such ranges before the
// MaxDer filter.
func (c DerivateConfig) derivatives(ranges []Range, out *Profile) ([][]float64, []int32) {
	table := make([][]float64, out.Len())
	count := make([]int32, out.Len())
	for _, s := range spans(out.XMin, out.XMax, ranges) {
		for k := 0; k+1 < len(s.idx); k++ {
			if s.idx[k+1] != s.idx[k]+1 {
				continue
			}
			t := s.idx[k]
			d := s.val[k] - s.val[k+1]
			count[t]++
			if c.keep(d) {
				table[t] = append(table[t], d)
			}
		}
	}

	return table, count
}

// Collapse reduces every frame's differences to one value (0 when there is
// none), adds the number of contributing ranges to Count and sets
// value[i] = Σ_{j≥i} reduced[j].
func (c DerivateConfig) Collapse(ranges []Range, prof *Profile) *Profile {
	out := base(ranges, prof)
	table, count := c.derivatives(ranges, out)
	mode := c.mode()

	var sum float64
	for i := out.Len() - 1; i >= 0; i-- {
		if len(table[i]) > 0 {
			sum += mode.of(table[i])
		}
		out.Value[i] = float32(sum)
		out.Count[i] += count[i]
	}

	return out
}

// Table returns the kept differences as a frames × max-contributions table
// padded with NaN.
func (c DerivateConfig) Table(ranges []Range, prof *Profile) [][]float32 {
	out := base(ranges, prof)
	table, _ := c.derivatives(ranges, out)

	return pad(table)
}
