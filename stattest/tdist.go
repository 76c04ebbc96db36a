package stattest

import "math"

// Homoscedastic returns the degrees of freedom and t statistic of the
// pooled-variance two-sample test.
func Homoscedastic(left, right Input) (dof, t float64) {
	oneS := func(x Input) float64 { return x.Sigma * x.Sigma * float64(x.Count-1) }
	dof = float64(left.Count + right.Count - 2)
	sigma := math.Sqrt((oneS(left) + oneS(right)) / dof)
	t = (left.Mean - right.Mean) / sigma * countNorm(left.Count, right.Count)

	return dof, t
}

// HomoscedasticIsEqual reports whether the pooled test accepts equal means.
func HomoscedasticIsEqual(alpha float64, left, right Input) bool {
	dof, t := Homoscedastic(left, right)

	return isEqual(alpha, dof, t)
}

// HomoscedasticIsLower reports whether left is certified lower than right.
func HomoscedasticIsLower(alpha float64, left, right Input) bool {
	dof, t := Homoscedastic(left, right)

	return isLower(alpha, dof, t)
}

// HomoscedasticIsGreater is the negation of HomoscedasticIsLower.
func HomoscedasticIsGreater(alpha float64, left, right Input) bool {
	return !HomoscedasticIsLower(alpha, left, right)
}

// HomoscedasticThresholdValue returns the folded CDF level of the pooled
// test, 1 when either sample has fewer than 2 points.
func HomoscedasticThresholdValue(left, right Input) float64 {
	if left.Count < 2 || right.Count < 2 {
		return 1
	}

	return thresholdValue(Homoscedastic(left, right))
}

// Heteroscedastic returns the Welch–Satterthwaite degrees of freedom and the
// t statistic of Welch's test.
func Heteroscedastic(left, right Input) (dof, t float64) {
	sigOverN := func(x Input) float64 { return x.Sigma * x.Sigma / float64(x.Count) }
	div := func(a float64, x Input) float64 { return a * a / float64(x.Count-1) }

	sonL, sonR := sigOverN(left), sigOverN(right)
	sum := sonL + sonR
	dof = sum * sum / (div(sonL, left) + div(sonR, right))
	t = (left.Mean - right.Mean) / math.Sqrt(sum)

	return dof, t
}

// HeteroscedasticIsEqual reports whether Welch's test accepts equal means.
func HeteroscedasticIsEqual(alpha float64, left, right Input) bool {
	dof, t := Heteroscedastic(left, right)

	return isEqual(alpha, dof, t)
}

// HeteroscedasticIsLower reports whether left is certified lower than right.
func HeteroscedasticIsLower(alpha float64, left, right Input) bool {
	dof, t := Heteroscedastic(left, right)

	return isLower(alpha, dof, t)
}

// HeteroscedasticIsGreater is the negation of HeteroscedasticIsLower.
func HeteroscedasticIsGreater(alpha float64, left, right Input) bool {
	return !HeteroscedasticIsLower(alpha, left, right)
}

// HeteroscedasticThresholdValue returns the folded CDF level of Welch's
// test, 1 when either sample has a single point.
func HeteroscedasticThresholdValue(left, right Input) float64 {
	if left.Count == 1 || right.Count == 1 {
		return 1
	}

	return thresholdValue(Heteroscedastic(left, right))
}
