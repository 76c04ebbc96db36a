// Package precision estimates the measurement noise σ of a track signal.
//
// The estimator is the half-frame sigma (HFSigma): the median absolute
// difference between successive finite samples. It is insensitive to the
// steps of the signal, which only contribute a handful of large differences.
//
// Callers usually go through Resolve or Estimator.Resolve which let a
// positive override win over estimation and floor every result at
// MinPrecision.
package precision
