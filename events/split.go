// SPDX-License-Identifier: MIT
package events

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cordrift/precision"
	"github.com/katalvlaran/cordrift/stattest"
)

// SplitConfig configures boundary detection.
//
// Fields:
//   - Window: number of samples summed on each side of an index (≥ 1).
//   - Confidence: level α of the two-sided known-sigma test, in (0, 1).
//   - Erode: samples removed from each side of a run of consecutive
//     boundaries; the strongest boundary of a run is always kept.
type SplitConfig struct {
	Window     int     `yaml:"window"`
	Confidence float64 `yaml:"confidence"`
	Erode      int     `yaml:"erode"`
}

// DefaultSplitConfig returns Window 1, Confidence 0.1, Erode 1.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{Window: DefaultWindow, Confidence: DefaultConfidence, Erode: DefaultErode}
}

// Validate checks parameter ranges.
func (c SplitConfig) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("%w: split window %d < 1", ErrBadConfig, c.Window)
	}
	if !(c.Confidence > 0 && c.Confidence < 1) {
		return fmt.Errorf("%w: split confidence %v not in (0, 1)", ErrBadConfig, c.Confidence)
	}
	if c.Erode < 0 {
		return fmt.Errorf("%w: split erode %d < 0", ErrBadConfig, c.Erode)
	}

	return nil
}

// compacted holds the finite samples of a signal and their original indices.
type compacted struct {
	values []float64
	index  []int
}

func compact(signal []float32) compacted {
	out := compacted{
		values: make([]float64, 0, len(signal)),
		index:  make([]int, 0, len(signal)),
	}
	for i, v := range signal {
		if !math.IsNaN(float64(v)) {
			out.values = append(out.values, float64(v))
			out.index = append(out.index, i)
		}
	}

	return out
}

// slopes returns, for every index i of x, the sum of x[i..i+w-1] minus the
// sum of x[i-w..i-1]. Out-of-range samples repeat the first or last value.
func slopes(x []float64, w int) []float64 {
	n := len(x)
	prefix := make([]float64, n+2*w+1)
	for k := 0; k < n+2*w; k++ {
		j := k - w
		switch {
		case j < 0:
			j = 0
		case j >= n:
			j = n - 1
		}
		prefix[k+1] = prefix[k] + x[j]
	}

	out := make([]float64, n)
	for i := range out {
		right := prefix[i+2*w] - prefix[i+w]
		left := prefix[i+w] - prefix[i]
		out[i] = right - left
	}

	return out
}

// threshold is the minimal |slope| that marks a boundary.
func (c SplitConfig) threshold(sigma float64) float64 {
	thr := stattest.KnownSigmaThresholdCounts(true, c.Confidence, sigma, c.Window, c.Window)

	return thr * float64(c.Window)
}

// erode shrinks every run of consecutive candidates by up to n indices on
// each side, never past the run's largest |slope|.
func erode(cand []bool, slope []float64, n int) {
	if n <= 0 {
		return
	}
	for i := 0; i < len(cand); {
		if !cand[i] {
			i++
			continue
		}
		j := i
		best := i
		for j < len(cand) && cand[j] {
			if math.Abs(slope[j]) > math.Abs(slope[best]) {
				best = j
			}
			j++
		}
		for k := i; k < i+n && k < best; k++ {
			cand[k] = false
		}
		for k := j - 1; k > j-1-n && k > best; k-- {
			cand[k] = false
		}
		i = j
	}
}

// Split returns the flat intervals of signal. A sigma ≤ 0 is estimated from
// the signal itself.
//
// Stage 1: drop NaN samples; fewer than 2 remaining yields no interval.
// Stage 2: mark indices where |slope| ≥ threshold·Window, then erode runs.
// Stage 3: map boundaries back to original indices and emit the intervals
// between them that are longer than 1 and hold a finite sample.
func (c SplitConfig) Split(signal []float32, sigma float64) ([]Interval, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	data := compact(signal)
	if len(data.values) <= 1 {
		return []Interval{}, nil
	}
	sigma, err := precision.Resolve(sigma, signal)
	if err != nil {
		return nil, fmt.Errorf("events.Split: %w", err)
	}

	slope := slopes(data.values, c.Window)
	thr := c.threshold(sigma)
	cand := make([]bool, len(slope))
	for i, s := range slope {
		cand[i] = math.Abs(s) >= thr
	}
	erode(cand, slope, c.Erode)

	bounds := make([]int, 0, 8)
	for i, ok := range cand {
		if ok {
			bounds = append(bounds, data.index[i])
		}
	}

	return boundsToIntervals(signal, bounds), nil
}

// boundsToIntervals cuts [0, len(signal)) at bounds (ascending, original
// indices) and keeps pieces of length > 1 holding a finite sample.
func boundsToIntervals(signal []float32, bounds []int) []Interval {
	finite := make([]int, len(signal)+1)
	for i, v := range signal {
		finite[i+1] = finite[i]
		if !math.IsNaN(float64(v)) {
			finite[i+1]++
		}
	}

	out := make([]Interval, 0, len(bounds)+1)
	emit := func(start, stop int) {
		if stop-start > 1 && finite[stop]-finite[start] > 0 {
			out = append(out, Interval{Start: start, Stop: stop})
		}
	}
	prev := 0
	for _, b := range bounds {
		emit(prev, b)
		prev = b
	}
	emit(prev, len(signal))

	return out
}

// Flatness returns |slope| / (threshold·Window) per sample, NaN where the
// signal is missing. Values ≥ 1 are boundary candidates before erosion.
func (c SplitConfig) Flatness(signal []float32, sigma float64) ([]float32, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := make([]float32, len(signal))
	for i := range out {
		out[i] = float32(math.NaN())
	}
	data := compact(signal)
	if len(data.values) <= 1 {
		return out, nil
	}
	sigma, err := precision.Resolve(sigma, signal)
	if err != nil {
		return nil, fmt.Errorf("events.Flatness: %w", err)
	}

	thr := c.threshold(sigma)
	for i, s := range slopes(data.values, c.Window) {
		out[data.index[i]] = float32(math.Abs(s) / thr)
	}

	return out, nil
}
