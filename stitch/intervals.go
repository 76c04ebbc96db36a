// SPDX-License-Identifier: MIT
package stitch

import (
	"github.com/katalvlaran/cordrift/collapse"
	"github.com/katalvlaran/cordrift/events"
)

// DefaultMinOverlaps is the Count under which a frame belongs to a hole.
const DefaultMinOverlaps = 10

// runs returns the maximal runs of indices where keep(count[i]) holds.
func runs(count []int32, keep func(int32) bool) []events.Interval {
	out := make([]events.Interval, 0, 4)
	start := -1
	for i, c := range count {
		switch {
		case keep(c) && start < 0:
			start = i
		case !keep(c) && start >= 0:
			out = append(out, events.Interval{Start: start, Stop: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, events.Interval{Start: start, Stop: len(count)})
	}

	return out
}

// Holes returns the runs where count < minoverlaps.
func Holes(count []int32, minoverlaps int) []events.Interval {
	return runs(count, func(c int32) bool { return int(c) < minoverlaps })
}

// Filled returns the runs where count ≥ minoverlaps.
func Filled(count []int32, minoverlaps int) []events.Interval {
	return runs(count, func(c int32) bool { return int(c) >= minoverlaps })
}

// Stitcher fills the holes of a Profile. data are the Ranges the Profile was
// collapsed from; strategies that only interpolate ignore them.
type Stitcher interface {
	Stitch(prof *collapse.Profile, data []collapse.Range) *collapse.Profile
}

// shift adds d to v[lo:hi].
func shift(v []float32, lo, hi int, d float64) {
	for i := lo; i < hi; i++ {
		v[i] = float32(float64(v[i]) + d)
	}
}

// extrapolate copies the value of the first and last filled frames onto
// the ends of the profile.
func extrapolate(v []float32, first, last int) {
	for i := 0; i < first; i++ {
		v[i] = v[first]
	}
	for i := last + 1; i < len(v); i++ {
		v[i] = v[last]
	}
}
