// SPDX-License-Identifier: MIT
package stattest

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Input summarizes one sample: number of points, mean and sample sigma.
type Input struct {
	Count int
	Mean  float64
	Sigma float64
}

// countNorm returns √(c₁c₂/(c₁+c₂)). It is NaN when both counts are zero.
func countNorm(c1, c2 int) float64 {
	return math.Sqrt(float64(c1) * float64(c2) / float64(c1+c2))
}

// KnownSigmaValue returns (left.Mean − right.Mean)·√(c₁c₂/(c₁+c₂)),
// as an absolute value when isEqual is set.
func KnownSigmaValue(isEqual bool, left, right Input) float64 {
	val := (left.Mean - right.Mean) * countNorm(left.Count, right.Count)
	if isEqual && val < 0 {
		return -val
	}

	return val
}

// KnownSigmaThreshold is the normal quantile N(0, σ) at 1 − α/2 when isEqual,
// at α otherwise. alpha must lie in (0, 1).
func KnownSigmaThreshold(isEqual bool, alpha, sigma float64) float64 {
	p := alpha
	if isEqual {
		p = 1 - alpha*.5
	}

	return distuv.Normal{Mu: 0, Sigma: sigma}.Quantile(p)
}

// KnownSigmaThresholdCounts is KnownSigmaThreshold expressed directly on the
// difference of means for samples of sizes c1 and c2.
func KnownSigmaThresholdCounts(isEqual bool, alpha, sigma float64, c1, c2 int) float64 {
	return KnownSigmaThreshold(isEqual, alpha, sigma) / countNorm(c1, c2)
}

// KnownSigmaIsEqual reports whether the two samples cannot be told apart at
// confidence alpha given the noise sigma.
func KnownSigmaIsEqual(alpha, sigma float64, left, right Input) bool {
	return KnownSigmaValue(true, left, right) < KnownSigmaThreshold(true, alpha, sigma)
}

// level is the Student t CDF of |t| with dof degrees of freedom, 1 when the
// degrees of freedom are not usable.
func level(dof, t float64) float64 {
	if math.IsNaN(dof) || math.IsInf(dof, 0) || dof <= 0 {
		return 1
	}

	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}.CDF(math.Abs(t))
}

func isEqual(alpha, dof, t float64) bool {
	lev := level(dof, t)

	return lev > alpha*.5 && lev < 1-alpha*.5
}

func isLower(alpha, dof, t float64) bool { return level(dof, t) < alpha }

// thresholdValue folds the CDF level so that it lies in [0.5, 1].
func thresholdValue(dof, t float64) float64 {
	val := level(dof, t)
	if val < .5 {
		return 1 - val
	}

	return val
}
