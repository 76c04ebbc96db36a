// SPDX-License-Identifier: MIT
package drift

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/katalvlaran/cordrift/collapse"
	"github.com/katalvlaran/cordrift/events"
	"github.com/katalvlaran/cordrift/stitch"
)

// Task computes drift profiles for one configuration.
type Task struct {
	cfg       Config
	detector  *events.Detector
	collapser collapse.Collapser
	stitcher  stitch.Stitcher
}

// NewTask validates cfg and resolves its methods.
func NewTask(cfg Config) (*Task, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Task{cfg: cfg}
	if cfg.Events != nil {
		t.detector = events.NewDetector(*cfg.Events)
	}
	t.collapser, _ = cfg.Collapse.Collapser()
	t.stitcher, _ = cfg.Stitch.Stitcher()

	return t, nil
}

// Config returns the task configuration.
func (t *Task) Config() Config { return t.cfg }

// Ranges returns the ranges collapsed by Profile: the events of every cycle,
// or every cycle whole when event detection is off. Ranges share memory
// with cycles.
//
// Errors:
//   - precision.ErrConfiguration when σ can be neither read nor estimated
//     from cycles.
func (t *Task) Ranges(cycles [][]float32) ([]collapse.Range, error) {
	if t.detector == nil || len(cycles) == 0 {
		return whole(cycles), nil
	}

	sigma, err := t.cfg.Precision.Resolve(0, cycles...)
	if err != nil {
		return nil, fmt.Errorf("drift.Ranges: %w", err)
	}
	out := make([]collapse.Range, 0, 2*len(cycles))
	for _, cycle := range cycles {
		found, err := t.detector.Detect(cycle, sigma)
		if err != nil {
			return nil, fmt.Errorf("drift.Ranges: %w", err)
		}
		for _, iv := range found {
			out = append(out, collapse.Range{Start: iv.Start, Values: cycle[iv.Start:iv.Stop]})
		}
	}

	return out, nil
}

// Profile returns the drift common to cycles.
// Implementation:
//   - Stage 1: Collapse the ranges onto a profile over [0, longest cycle).
//   - Stage 2: Stitch the holes, fitting against the whole cycles.
//   - Stage 3: Shift the profile so the median of its last Zero values is 0.
//
// Cycles are not modified.
func (t *Task) Profile(cycles [][]float32) (*collapse.Profile, error) {
	ranges, err := t.Ranges(cycles)
	if err != nil {
		return nil, err
	}

	size := 0
	for _, c := range cycles {
		size = max(size, len(c))
	}
	prof := t.collapser.Collapse(ranges, collapse.NewProfileLen(size))
	if t.stitcher != nil {
		prof = t.stitcher.Stitch(prof, whole(cycles))
	}
	if t.cfg.Zero != nil {
		Anchor(prof, *t.cfg.Zero)
	}

	return prof, nil
}

// Anchor shifts prof in place so that the median of its last zero finite
// values is 0. Profiles shorter than zero use every value; profiles with no
// finite value are left alone.
func Anchor(prof *collapse.Profile, zero int) {
	if prof == nil || zero <= 0 {
		return
	}
	tail := prof.Value[max(0, len(prof.Value)-zero):]
	vals := make([]float64, 0, len(tail))
	for _, v := range tail {
		if !math.IsNaN(float64(v)) {
			vals = append(vals, float64(v))
		}
	}
	if len(vals) == 0 {
		return
	}
	med, err := stats.Median(vals)
	if err != nil {
		return
	}
	for i := range prof.Value {
		prof.Value[i] -= float32(med)
	}
}

// Subtract removes prof from cycle in place: cycle[XMin+i] -= Value[i]
// wherever both exist.
func Subtract(prof *collapse.Profile, cycle []float32) {
	if prof == nil {
		return
	}
	for i := max(0, prof.XMin); i < len(cycle); i++ {
		j := i - prof.XMin
		if j >= len(prof.Value) {
			return
		}
		cycle[i] -= prof.Value[j]
	}
}

func whole(cycles [][]float32) []collapse.Range {
	out := make([]collapse.Range, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, collapse.Range{Values: c})
	}

	return out
}
