package collapse

import (
	"math"

	"github.com/montanaflynn/stats"
)

// span holds the finite samples of a Range clipped to a Profile: idx are
// profile indices (ascending), val the matching samples.
type span struct {
	idx []int
	val []float64
}

// spans clips every range to [xmin, xmax) and keeps its finite samples.
// Ranges without any are dropped.
func spans(xmin, xmax int, ranges []Range) []span {
	out := make([]span, 0, len(ranges))
	for _, r := range ranges {
		lo, hi := max(r.Start, xmin), min(r.Stop(), xmax)
		if hi <= lo {
			continue
		}
		s := span{idx: make([]int, 0, hi-lo), val: make([]float64, 0, hi-lo)}
		for f := lo; f < hi; f++ {
			v := float64(r.Values[f-r.Start])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			s.idx = append(s.idx, f-xmin)
			s.val = append(s.val, v)
		}
		if len(s.idx) > 0 {
			out = append(out, s)
		}
	}

	return out
}

// base returns a clone of prof, or a new Profile spanning ranges.
func base(ranges []Range, prof *Profile) *Profile {
	if prof == nil {
		return NewProfile(ranges)
	}

	return prof.Clone()
}

// inner trims edge entries from each end of idx. edge < 1 keeps all.
func inner(idx []int, edge int) []int {
	if edge < 1 {
		return idx
	}
	if len(idx) <= 2*edge {
		return nil
	}

	return idx[edge : len(idx)-edge]
}

// pad turns ragged rows into a rectangular table padded with NaN.
func pad(table [][]float64) [][]float32 {
	width := 0
	for _, row := range table {
		width = max(width, len(row))
	}

	res := make([][]float32, len(table))
	for i, row := range table {
		res[i] = make([]float32, width)
		for j := range res[i] {
			if j < len(row) {
				res[i][j] = float32(row[j])
			} else {
				res[i][j] = float32(math.NaN())
			}
		}
	}

	return res
}

// Measure names the location estimator used to re-bias ranges.
type Measure string

const (
	// Mean is the arithmetic mean.
	Mean Measure = "mean"

	// Median is the median.
	Median Measure = "median"
)

func (m Measure) valid() bool { return m == "" || m == Mean || m == Median }

// of returns the measure of a non-empty sample; "" is Mean.
func (m Measure) of(x []float64) float64 {
	var (
		v   float64
		err error
	)
	if m == Median {
		v, err = stats.Median(x)
	} else {
		v, err = stats.Mean(x)
	}
	if err != nil {
		return 0
	}

	return v
}
