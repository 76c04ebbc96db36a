// SPDX-License-Identifier: MIT
// Package matrix: Householder QR for square and tall matrices.

package matrix

import (
	"fmt"
	"math"
)

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// Operation name constants for unified error wrapping.
const (
	opQR           = "QR"
	opLeastSquares = "LeastSquares"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// reflector is one Householder vector v (non-zero from index k on) with
// τ = 2/(vᵀv). Applying it maps y ↦ y − τ·v·(vᵀy).
type reflector struct {
	k   int
	v   []float64
	tau float64
}

// apply reflects the column vector y in place.
func (h reflector) apply(y []float64) {
	sum := NormZero
	for i := h.k; i < len(y); i++ {
		sum += h.v[i] * y[i]
	}
	for i := h.k; i < len(y); i++ {
		y[i] -= h.tau * h.v[i] * sum
	}
}

// householder reduces a (m×n, m ≥ n, row-major, modified in place) to upper
// trapezoidal form and returns the reflectors used, in application order.
// Zero columns are skipped.
func householder(a []float64, m, n int) []reflector {
	refs := make([]reflector, 0, n)
	var (
		i, j, k     int
		norm, alpha float64
		beta, sum   float64
	)
	for k = 0; k < n && k < m; k++ {
		// Stage 1: norm of the column below the diagonal.
		norm = NormZero
		for i = k; i < m; i++ {
			norm += a[i*n+k] * a[i*n+k]
		}
		norm = math.Sqrt(norm)
		if norm == NormZero {
			continue
		}

		// Stage 2: alpha = -sign(a[k,k])*norm avoids cancellation in v[k].
		alpha = -math.Copysign(norm, a[k*n+k])
		v := make([]float64, m)
		for i = k; i < m; i++ {
			v[i] = a[i*n+k]
		}
		v[k] -= alpha

		beta = NormZero
		for i = k; i < m; i++ {
			beta += v[i] * v[i]
		}
		if beta == NormZero {
			continue
		}
		h := reflector{k: k, v: v, tau: 2.0 / beta}

		// Stage 3: reflect every remaining column.
		for j = k; j < n; j++ {
			sum = NormZero
			for i = k; i < m; i++ {
				sum += v[i] * a[i*n+j]
			}
			for i = k; i < m; i++ {
				a[i*n+j] -= h.tau * v[i] * sum
			}
		}
		refs = append(refs, h)
	}

	return refs
}

// QR computes a Householder-based factorization such that A ≈ Qᵀ * R.
// Implementation:
//   - Stage 1: Validate m (not nil, Rows ≥ Cols); clone A.
//   - Stage 2: For k=0..n-1, build a column reflector and apply it to A (forming R).
//   - Stage 3: Accumulate the reflectors into Q (m×m) by reflecting the identity.
//
// Inputs:
//   - m: Matrix with Rows() ≥ Cols().
//
// Returns:
//   - Matrix: Q (m×m, accumulated reflectors; note that A ≈ Qᵀ * R, not Q*R).
//   - Matrix: R (m×n, upper trapezoidal).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(m·n² + m²·n), Space O(m²).
func QR(m Matrix) (Matrix, Matrix, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	if err := ValidateTall(m); err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	src, err := toDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	rows, cols := src.r, src.c

	R := src.Clone().(*Dense)
	refs := householder(R.data, rows, cols)

	Q, err := NewDense(rows, rows)
	if err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	col := make([]float64, rows)
	for j := 0; j < rows; j++ {
		for i := range col {
			col[i] = 0
		}
		col[j] = 1
		for _, h := range refs {
			h.apply(col)
		}
		for i := 0; i < rows; i++ {
			Q.data[i*rows+j] = col[i]
		}
	}

	return Q, R, nil
}
