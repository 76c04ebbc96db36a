// SPDX-License-Identifier: MIT
package stitch

import (
	"math"

	"github.com/katalvlaran/cordrift/collapse"
	"github.com/katalvlaran/cordrift/events"
	"github.com/katalvlaran/cordrift/matrix"
	"github.com/katalvlaran/cordrift/poly"
)

// SingleFitConfig fits, across each hole, one polynomial to FitLength
// frames on both sides together with a bias applied to the right side only.
type SingleFitConfig struct {
	FitLength   int `yaml:"fitlength"`
	FitOrder    int `yaml:"fitorder"`
	MinOverlaps int `yaml:"minoverlaps"`
}

// DefaultSingleFitConfig returns FitLength 10, FitOrder 2, MinOverlaps 10.
func DefaultSingleFitConfig() SingleFitConfig {
	return SingleFitConfig{
		FitLength:   DefaultFitLength,
		FitOrder:    DefaultSingleFitOrder,
		MinOverlaps: DefaultMinOverlaps,
	}
}

// Validate checks the fit parameters.
func (c SingleFitConfig) Validate() error {
	return validateFit(c.FitLength, c.FitOrder, c.MinOverlaps)
}

// fit solves, in least squares, y = p(x) + bias·[x on the right] with
// x = i − right.Start. The model is linear in (bias, p), so it goes straight
// to matrix.LeastSquares. The order is lowered until the system is solvable.
func (c SingleFitConfig) fit(value []float32, left, right events.Interval) (p []float64, bias float64, ok bool) {
	type point struct {
		x, y  float64
		right bool
	}
	pts := make([]point, 0, left.Len()+right.Len())
	var nl, nr int
	for _, iv := range []events.Interval{left, right} {
		for i := iv.Start; i < iv.Stop; i++ {
			v := float64(value[i])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			isRight := iv == right
			pts = append(pts, point{x: float64(i - right.Start), y: v, right: isRight})
			if isRight {
				nr++
			} else {
				nl++
			}
		}
	}
	if nl == 0 || nr == 0 {
		return nil, 0, false
	}

	for order := min(c.FitOrder, len(pts)-2); order >= 0; order-- {
		rows := make([][]float64, len(pts))
		y := make([]float64, len(pts))
		for k, pt := range pts {
			row := make([]float64, order+2)
			if pt.right {
				row[0] = 1
			}
			xp := 1.0
			for j := order + 1; j >= 1; j-- {
				row[j] = xp
				xp *= pt.x
			}
			rows[k], y[k] = row, pt.y
		}
		a, err := matrix.NewFromRows(rows)
		if err != nil {
			continue
		}
		sol, err := matrix.LeastSquares(a, y)
		if err != nil {
			continue
		}

		return sol[1:], sol[0], true
	}

	return nil, 0, false
}

// Stitch walks the filled runs pairwise. The right run of each pair is
// corrected by the bias of the previous pair before the next fit, the hole
// is filled by the fitted polynomial and the bias is carried to the next
// run. Ends are extrapolated with the nearest filled value.
func (c SingleFitConfig) Stitch(prof *collapse.Profile, _ []collapse.Range) *collapse.Profile {
	out := prof.Clone()
	if len(Holes(out.Count, c.MinOverlaps)) == 0 {
		return out
	}
	filled := Filled(out.Count, c.MinOverlaps)
	if len(filled) == 0 {
		return out
	}

	var delta float64
	last := -1
	for k := 0; k+1 < len(filled); k++ {
		l, r := filled[k], filled[k+1]
		if last >= 0 {
			shift(out.Value, last, l.Stop, -delta)
		}

		lw := events.Interval{Start: max(l.Stop-c.FitLength, l.Start), Stop: l.Stop}
		rw := events.Interval{Start: r.Start, Stop: min(r.Start+c.FitLength, r.Stop)}
		p, bias, ok := c.fit(out.Value, lw, rw)
		if ok {
			for i := l.Stop; i < r.Start; i++ {
				out.Value[i] = float32(poly.Eval(p, float64(i-r.Start)))
			}
			delta = bias
		} else {
			before := float64(out.Value[l.Stop-1])
			for i := l.Stop; i < r.Start; i++ {
				out.Value[i] = float32(before)
			}
			delta = float64(out.Value[r.Start]) - before
		}
		last = r.Start
	}
	end := filled[len(filled)-1].Stop
	if last >= 0 {
		shift(out.Value, last, end, -delta)
	}
	extrapolate(out.Value, filled[0].Start, end-1)

	return out
}
