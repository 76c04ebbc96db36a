// Package stitch repairs the holes of a collapsed Profile.
//
// A hole is a run of frames whose Count is below MinOverlaps: too few
// Ranges contributed there for the value to be trusted. Well supported runs
// ("filled") are kept and used as anchors:
//
//   - DerivateConfig re-collapses the raw Ranges by derivative around each
//     hole and splices the result in.
//   - InterpolationConfig bridges each hole with the polynomials fitted at
//     the ends of its neighbours, matching slopes at both edges.
//   - SingleFitConfig fits one polynomial across a hole plus the bias
//     separating its two sides.
//
// Every Stitcher returns a new Profile and leaves its input untouched; a
// Profile without holes comes back unchanged.
package stitch
