// Package poly fits, evaluates and differentiates real polynomials.
//
// Coefficients are stored highest degree first, so that
// p = [a, b, c] means a·x² + b·x + c. Fits go through matrix.LeastSquares on a
// Vandermonde system.
package poly

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/cordrift/matrix"
)

var (
	// ErrEmptyInput is returned when Fit receives no points.
	ErrEmptyInput = errors.New("poly: no points to fit")

	// ErrBadOrder is returned for a negative order.
	ErrBadOrder = errors.New("poly: order must be >= 0")

	// ErrLengthMismatch is returned when x and y differ in length.
	ErrLengthMismatch = errors.New("poly: x and y lengths differ")
)

// Fit returns the least-squares polynomial of degree order through (x, y).
// When there are fewer than order+1 points the degree is lowered to
// len(x)-1 and the missing leading coefficients are zero, so the result
// always has order+1 entries.
func Fit(x, y []float64, order int) ([]float64, error) {
	if order < 0 {
		return nil, ErrBadOrder
	}
	if len(x) != len(y) {
		return nil, ErrLengthMismatch
	}
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	deg := order
	if deg > len(x)-1 {
		deg = len(x) - 1
	}

	rows := make([][]float64, len(x))
	for i, xi := range x {
		row := make([]float64, deg+1)
		v := 1.0
		for j := deg; j >= 0; j-- {
			row[j] = v
			v *= xi
		}
		rows[i] = row
	}
	a, err := matrix.NewFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("poly.Fit: %w", err)
	}
	coeffs, err := matrix.LeastSquares(a, y)
	if err != nil {
		return nil, fmt.Errorf("poly.Fit: %w", err)
	}

	out := make([]float64, order+1)
	copy(out[order-deg:], coeffs)

	return out, nil
}

// Eval evaluates p at x with Horner's scheme. An empty p evaluates to 0.
func Eval(p []float64, x float64) float64 {
	var y float64
	for _, c := range p {
		y = y*x + c
	}

	return y
}

// Der returns the m-th derivative of p. The result keeps at least one
// coefficient (a constant 0 once the degree is exhausted).
func Der(p []float64, m int) []float64 {
	out := append([]float64(nil), p...)
	for ; m > 0; m-- {
		if len(out) <= 1 {
			return []float64{0}
		}
		n := len(out) - 1
		next := make([]float64, n)
		for i := 0; i < n; i++ {
			next[i] = out[i] * float64(n-i)
		}
		out = next
	}
	if len(out) == 0 {
		return []float64{0}
	}

	return out
}
