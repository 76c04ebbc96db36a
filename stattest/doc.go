// Package stattest implements the two-sample tests used to decide whether
// neighbouring stretches of a signal share the same level.
//
// Three families are provided:
//
//   - Known sigma: the noise level σ is known in advance (it is the
//     precision of the measurement). The statistic is
//     (m₁ − m₂)·√(c₁c₂/(c₁+c₂)) and the thresholds are normal quantiles.
//   - Homoscedastic: both samples share an unknown variance, estimated from
//     the pooled sample sigmas (Student t with c₁+c₂−2 degrees of freedom).
//   - Heteroscedastic: Welch's test with the Welch–Satterthwaite degrees of
//     freedom.
//
// Distributions come from gonum.org/v1/gonum/stat/distuv.
package stattest
