package events

import (
	"fmt"
	"math"
)

// SelectConfig filters intervals by length and trims their edges.
//
// An interval survives when its length is at least 2·EdgeLength+MinLength
// and its finite samples are spread over enough of it; survivors are then
// shrunk by EdgeLength on each side. A zero total (both fields 0) disables
// the stage.
type SelectConfig struct {
	MinLength  int `yaml:"minlength"`
	EdgeLength int `yaml:"edgelength"`
}

// DefaultSelectConfig returns MinLength 5, EdgeLength 0.
func DefaultSelectConfig() SelectConfig {
	return SelectConfig{MinLength: DefaultMinLength, EdgeLength: DefaultEdgeLength}
}

// Validate rejects negative lengths.
func (c SelectConfig) Validate() error {
	if c.MinLength < 0 || c.EdgeLength < 0 {
		return fmt.Errorf("%w: select lengths (%d, %d) must be >= 0", ErrBadConfig, c.MinLength, c.EdgeLength)
	}

	return nil
}

// MinDuration returns 2·EdgeLength+MinLength.
func (c SelectConfig) MinDuration() int { return 2*c.EdgeLength + c.MinLength }

// Select returns the surviving, trimmed intervals. signal may be nil, in
// which case only lengths are checked.
func (c SelectConfig) Select(signal []float32, intervals []Interval) ([]Interval, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	minl := c.MinDuration()
	if minl <= 0 {
		return append([]Interval(nil), intervals...), nil
	}
	if signal != nil {
		if err := checkIntervals(len(signal), intervals); err != nil {
			return nil, err
		}
	}

	out := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Len() < minl || iv.Len() <= 2*c.EdgeLength {
			continue
		}
		if signal != nil && !spread(signal[iv.Start:iv.Stop], minl) {
			continue
		}
		out = append(out, Interval{Start: iv.Start + c.EdgeLength, Stop: iv.Stop - c.EdgeLength})
	}

	return out, nil
}

// spread reports whether data starts and ends on finite samples, or whether
// its first and last finite samples are at least minl-1 apart.
func spread(data []float32, minl int) bool {
	first, last := -1, -1
	for i, v := range data {
		if !math.IsNaN(float64(v)) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return false
	}
	if first == 0 && last == len(data)-1 {
		return true
	}

	return last-first >= minl-1
}
