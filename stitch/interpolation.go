// SPDX-License-Identifier: MIT
package stitch

import (
	"fmt"

	"github.com/katalvlaran/cordrift/collapse"
	"github.com/katalvlaran/cordrift/events"
	"github.com/katalvlaran/cordrift/poly"
)

// Default fit parameters.
const (
	DefaultFitLength          = 10
	DefaultInterpolationOrder = 1
	DefaultSingleFitOrder     = 2
)

// InterpolationConfig bridges holes with the polynomials fitted on the
// last FitLength frames before and the first FitLength frames after them.
type InterpolationConfig struct {
	FitLength   int `yaml:"fitlength"`
	FitOrder    int `yaml:"fitorder"`
	MinOverlaps int `yaml:"minoverlaps"`
}

// DefaultInterpolationConfig returns FitLength 10, FitOrder 1, MinOverlaps 10.
func DefaultInterpolationConfig() InterpolationConfig {
	return InterpolationConfig{
		FitLength:   DefaultFitLength,
		FitOrder:    DefaultInterpolationOrder,
		MinOverlaps: DefaultMinOverlaps,
	}
}

func validateFit(length, order, minoverlaps int) error {
	switch {
	case length < 1:
		return fmt.Errorf("%w: fitlength %d < 1", ErrBadConfig, length)
	case order < 0:
		return fmt.Errorf("%w: fitorder %d < 0", ErrBadConfig, order)
	case minoverlaps < 0:
		return fmt.Errorf("%w: minoverlaps %d < 0", ErrBadConfig, minoverlaps)
	}

	return nil
}

// Validate checks the fit parameters.
func (c InterpolationConfig) Validate() error {
	return validateFit(c.FitLength, c.FitOrder, c.MinOverlaps)
}

// fitRun fits value[lo:hi] at abscissae x0, x0+1, ...; a failed fit falls
// back to the mean level.
func fitRun(value []float32, lo, hi, x0, order int) []float64 {
	x := make([]float64, 0, hi-lo)
	y := make([]float64, 0, hi-lo)
	for i := lo; i < hi; i++ {
		x = append(x, float64(x0+i-lo))
		y = append(y, float64(value[i]))
	}
	p, err := poly.Fit(x, y, order)
	if err != nil {
		var m float64
		for _, v := range y {
			m += v
		}

		return []float64{m / float64(max(len(y), 1))}
	}

	return p
}

// Stitch fills every hole between two filled runs with
//
//	left(x) + delta + c·x², x = 1 … length−1
//
// where left is the polynomial fitted at the end of the left run (x = 0 on
// its last frame), delta the shift accumulated so far and c chosen so that
// the slope matches the right run's start polynomial at x = length. Runs
// shorter than FitOrder+1 are ignored. Ends are extrapolated with the
// nearest filled value. Without any usable run the profile is cleared.
func (c InterpolationConfig) Stitch(prof *collapse.Profile, _ []collapse.Range) *collapse.Profile {
	out := prof.Clone()
	if len(Holes(out.Count, c.MinOverlaps)) == 0 {
		return out
	}

	filled := make([]events.Interval, 0, 4)
	for _, r := range Filled(out.Count, c.MinOverlaps) {
		if r.Len() >= c.FitOrder+1 {
			filled = append(filled, r)
		}
	}
	if len(filled) == 0 {
		clear(out.Value)
		clear(out.Count)

		return out
	}

	lefts := make([][]float64, len(filled))
	rights := make([][]float64, len(filled))
	for i, r := range filled {
		lo := max(r.Start, r.Stop-c.FitLength)
		lefts[i] = fitRun(out.Value, lo, r.Stop, lo-r.Stop+1, c.FitOrder)
		rights[i] = fitRun(out.Value, r.Start, min(r.Start+c.FitLength, r.Stop), 0, c.FitOrder)
	}

	var delta float64
	last := -1
	for k := 0; k+1 < len(filled); k++ {
		hs, he := filled[k].Stop, filled[k+1].Start
		if last >= 0 {
			shift(out.Value, last, hs, delta)
		}

		left, right := lefts[k], rights[k+1]
		length := he - hs + 1
		coeff := poly.Eval(poly.Der(right, 1), 0) - poly.Eval(poly.Der(left, 1), float64(length))
		coeff /= 2 * float64(length)

		params := make([]float64, max(3, len(left)))
		copy(params[len(params)-len(left):], left)
		params[len(params)-1] += delta
		params[len(params)-3] += coeff

		for x := 1; x < length; x++ {
			out.Value[hs+x-1] = float32(poly.Eval(params, float64(x)))
		}
		delta = poly.Eval(params, float64(length)) - poly.Eval(right, 0)
		last = he
	}
	end := filled[len(filled)-1].Stop
	if last >= 0 {
		shift(out.Value, last, end, delta)
	}
	extrapolate(out.Value, filled[0].Start, end-1)

	return out
}
