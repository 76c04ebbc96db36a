// Package matrix provides the small dense linear-algebra core used by the
// drift stitching fits.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix behind the Matrix interface.
//   - QR, a Householder factorization for square and tall (m ≥ n) matrices.
//   - LeastSquares, min‖A·x − b‖₂ through QR and back substitution.
//
// Polynomial fits over a handful of profile samples are tall, skinny and
// badly scaled (Vandermonde columns), which is why the normal equations are
// avoided and the orthogonal factorization is used instead.
//
// See poly for the polynomial layer built on top of LeastSquares.
package matrix
