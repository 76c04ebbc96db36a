// Package events finds the flat stretches ("events") of a track cycle.
//
// 🚀 What is an event?
//
//	A bead sitting on a hairpin stays at a constant extension until the
//	hairpin opens or closes. Between such transitions the signal is flat up
//	to the measurement noise σ. Each flat stretch is reported as a half-open
//	Interval [Start, Stop) over the cycle's frames.
//
// ✨ Pipeline:
//   - Split: a windowed slope statistic is compared to a known-sigma
//     threshold; every index where the slope is significant becomes a
//     boundary (SplitConfig).
//   - Merge: neighbouring intervals whose means cannot be told apart are
//     fused until a fixed point is reached (MergeConfig).
//   - Select: short intervals are dropped and survivors trimmed
//     (SelectConfig).
//
// Detector chains the three stages and resolves σ once, either from a
// supplied value or from the signal itself (package precision).
//
// ⚙️ Usage:
//
//	det := events.NewDetector(events.DefaultConfig())
//	found, err := det.Detect(cycle, 0) // 0: estimate σ from the cycle
//
// Missing samples are NaN. They are skipped by every statistic and never
// start or end an interval on their own.
//
// Complexity: every stage is O(n) per round; merging needs at most as many
// rounds as there are intervals.
package events
