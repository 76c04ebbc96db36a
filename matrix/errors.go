// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All routines return these sentinels (possibly wrapped with an
// operation tag) and tests check them via errors.Is.

package matrix

import "errors"

// Every message is prefixed with "matrix: ..." for consistency. If context is
// essential, wrap with fmt.Errorf("ctx: %w", ErrX) at the outer boundary.

var (
	// ErrBadShape is returned when requested shape is invalid (e.g., r<=0 or c<=0).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g., a right-hand side whose length differs from the row count.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrSingular is returned when R has a (numerically) zero diagonal entry,
	// i.e. the columns of A are linearly dependent.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")
)
