// SPDX-License-Identifier: MIT
// Package matrix: linear least squares through Householder QR.

package matrix

import (
	"fmt"
	"math"
)

// rankTol is the relative threshold under which a diagonal entry of R is
// considered zero (columns linearly dependent).
const rankTol = 1e-12

// LeastSquares returns x minimizing ‖A·x − b‖₂.
// Implementation:
//   - Stage 1: Validate A (not nil, Rows ≥ Cols) and len(b) == Rows.
//   - Stage 2: Reduce a copy of A to R with Householder reflections, applying
//     the same reflections to a copy of b (c = Q·b).
//   - Stage 3: Back-substitute the leading n×n triangle of R against c[:n].
//
// Behavior highlights:
//   - Inputs are not mutated.
//   - Q is never formed explicitly.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch from validation.
//   - ErrSingular when R has a diagonal entry below rankTol·max|Rᵢᵢ|.
//
// Complexity:
//   - Time O(m·n²), Space O(m·n).
func LeastSquares(a Matrix, b []float64) ([]float64, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	if err := ValidateTall(a); err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	if err := ValidateVecLen(b, a.Rows()); err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	src, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	m, n := src.r, src.c

	r := make([]float64, len(src.data))
	copy(r, src.data)
	c := make([]float64, m)
	copy(c, b)

	for _, h := range householder(r, m, n) {
		h.apply(c)
	}

	// Rank check relative to the largest pivot.
	maxDiag := NormZero
	for i := 0; i < n; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(r[i*n+i]))
	}
	if maxDiag == NormZero {
		return nil, matrixErrorf(opLeastSquares, ErrSingular)
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		pivot := r[i*n+i]
		if math.Abs(pivot) <= rankTol*maxDiag {
			return nil, matrixErrorf(opLeastSquares, fmt.Errorf("pivot %d: %w", i, ErrSingular))
		}
		sum := c[i]
		for j := i + 1; j < n; j++ {
			sum -= r[i*n+j] * x[j]
		}
		x[i] = sum / pivot
	}

	return x, nil
}
