// SPDX-License-Identifier: MIT
package collapse

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Range is a stretch of samples starting at frame Start. NaN is missing.
type Range struct {
	Start  int
	Values []float32
}

// Stop returns the frame after the last sample.
func (r Range) Stop() int { return r.Start + len(r.Values) }

// Profile is the behaviour common to many Ranges over frames [XMin, XMax).
// Count[i] and Value[i] describe frame XMin+i.
type Profile struct {
	XMin  int
	XMax  int
	Count []int32
	Value []float32
}

// NewProfile returns a zeroed Profile spanning every range:
// [min Start, max Stop). No range yields an empty Profile at 0.
func NewProfile(ranges []Range) *Profile {
	if len(ranges) == 0 {
		return NewProfileSpan(0, 0)
	}
	xmin, xmax := ranges[0].Start, ranges[0].Stop()
	for _, r := range ranges[1:] {
		xmin = min(xmin, r.Start)
		xmax = max(xmax, r.Stop())
	}

	return NewProfileSpan(xmin, xmax)
}

// NewProfileSpan returns a zeroed Profile over [xmin, xmax).
func NewProfileSpan(xmin, xmax int) *Profile {
	n := max(xmax-xmin, 0)

	return &Profile{XMin: xmin, XMax: xmin + n, Count: make([]int32, n), Value: make([]float32, n)}
}

// NewProfileLen returns a zeroed Profile over [0, n).
func NewProfileLen(n int) *Profile { return NewProfileSpan(0, n) }

// Len returns the number of frames.
func (p *Profile) Len() int { return len(p.Count) }

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	return &Profile{
		XMin:  p.XMin,
		XMax:  p.XMax,
		Count: append([]int32(nil), p.Count...),
		Value: append([]float32(nil), p.Value...),
	}
}

// overlap returns the profile indices [lo, hi) covered by r and the offset
// of lo within r.Values.
func (p *Profile) overlap(r Range) (lo, hi, off int) {
	lo = max(r.Start, p.XMin) - p.XMin
	hi = min(r.Stop(), p.XMax) - p.XMin
	off = lo + p.XMin - r.Start

	return lo, hi, off
}

// Fit returns r shifted so that its mean matches the Profile over the
// frames where Count > 0. r is returned unchanged when there is no such
// frame.
func (p *Profile) Fit(r Range) Range {
	out := Range{Start: r.Start, Values: append([]float32(nil), r.Values...)}
	lo, hi, off := p.overlap(r)
	diffs := make([]float64, 0, max(hi-lo, 0))
	for i := lo; i < hi; i++ {
		v := float64(r.Values[off+i-lo])
		if p.Count[i] > 0 && !math.IsNaN(v) {
			diffs = append(diffs, float64(p.Value[i])-v)
		}
	}
	if len(diffs) == 0 {
		return out
	}
	delta, _ := stats.Mean(diffs)
	for i := range out.Values {
		out.Values[i] += float32(delta)
	}

	return out
}

// Subtracted returns r minus the Profile on the frames both cover.
func (p *Profile) Subtracted(r Range) Range {
	out := Range{Start: r.Start, Values: append([]float32(nil), r.Values...)}
	lo, hi, off := p.overlap(r)
	for i := lo; i < hi; i++ {
		out.Values[off+i-lo] -= p.Value[i]
	}

	return out
}

// Collapser folds Ranges into a Profile. prof, when not nil, fixes the
// frame span and initial counts; it is cloned, never modified.
type Collapser interface {
	Collapse(ranges []Range, prof *Profile) *Profile
}
