// Package collapse measures the behaviour common to many stretches of data.
//
// Every cycle of a bead (or every bead of a cycle) is reduced to Ranges:
// a starting frame and the samples that follow it. Collapsing folds those
// Ranges onto one frame axis and returns a Profile: for each frame, the
// number of contributing Ranges and the shared value. The shared value is
// the drift (thermal, electric or mechanical) that must be removed from
// every cycle.
//
// ✨ Strategies (all implement Collapser):
//   - MeanConfig: weighted running mean, each Range re-biased onto
//     what has already been collapsed. Largest end first, shorter first on
//     ties. Ranges weigh 1 each, or 1/χ² of their spread (ChiSquare).
//   - SockConfig: a MeanConfig pass, then every Range fitted onto it and
//     reduced per frame by a trimmed mean or median, or collapsed again
//     with χ² weights against the first pass.
//   - DerivateConfig: per-frame median (or mean) of the first differences,
//     integrated back from the right.
//   - MergingConfig: pairwise merge of the Ranges sharing the most frames.
//
// A Collapser never modifies its inputs: the Profile passed in, if any, is
// cloned and the clone is returned. Zero Ranges yield an empty Profile.
package collapse
