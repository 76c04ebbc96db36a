// SPDX-License-Identifier: MIT
package stitch

import (
	"fmt"

	"github.com/katalvlaran/cordrift/collapse"
)

// DerivateConfig fills holes by collapsing the raw Ranges by derivative
// over each hole and one frame on either side.
type DerivateConfig struct {
	MinOverlaps int                     `yaml:"minoverlaps"`
	Collapse    collapse.DerivateConfig `yaml:",inline"`
}

// DefaultDerivateConfig returns MinOverlaps 10 and the default derivative
// collapse.
func DefaultDerivateConfig() DerivateConfig {
	return DerivateConfig{MinOverlaps: DefaultMinOverlaps, Collapse: collapse.DefaultDerivateConfig()}
}

// Validate checks the overlap count and the collapse settings.
func (c DerivateConfig) Validate() error {
	if c.MinOverlaps < 0 {
		return fmt.Errorf("%w: minoverlaps %d < 0", ErrBadConfig, c.MinOverlaps)
	}

	return c.Collapse.Validate()
}

// Stitch processes holes left to right. Before each hole the frames since
// the previous one are shifted to continue the previous sub-profile; the
// sub-profile of the current hole is aligned on the frame before it and
// spliced in, counts included. Frames after the last hole get the same
// continuity shift.
func (c DerivateConfig) Stitch(prof *collapse.Profile, data []collapse.Range) *collapse.Profile {
	out := prof.Clone()
	holes := Holes(out.Count, c.MinOverlaps)
	if len(holes) == 0 {
		return out
	}

	n := out.Len()
	var tmp *collapse.Profile
	last := -1
	for _, h := range holes {
		if tmp != nil {
			shift(out.Value, last, h.Start, float64(tmp.Value[tmp.Len()-1]-out.Value[last]))
		}

		lo, hi := max(h.Start-1, 0), min(h.Stop+1, n)
		tmp = c.Collapse.Collapse(data, collapse.NewProfileSpan(out.XMin+lo, out.XMin+hi))
		shift(tmp.Value, 0, tmp.Len(), float64(out.Value[lo]-tmp.Value[0]))

		ind := 0
		if h.Start > 0 {
			ind = 1
		}
		copy(out.Value[h.Start:h.Stop], tmp.Value[ind:ind+h.Len()])
		copy(out.Count[h.Start:h.Stop], tmp.Count[ind:ind+h.Len()])
		last = h.Stop
	}
	if last < n {
		shift(out.Value, last, n, float64(tmp.Value[tmp.Len()-1]-out.Value[last]))
	}

	return out
}
