// Package cordrift finds the flat events of single-molecule track cycles
// and removes the drift those cycles share.
//
// 🚀 What is cordrift?
//
//	A pipeline of small, synchronous packages:
//		• precision: high-frequency noise estimate of a signal
//		• events:    split, merge and select flat stretches of a signal
//		• collapse:  fold many stretches into one Profile (mean, derivative, merging)
//		• stitch:    bridge the poorly supported holes of a Profile
//		• drift:     configuration, per-bead or per-cycle profiles, anchoring,
//		             subtraction, memoization and a parallel runner
//
// ✨ Guarantees
//
//   - Inputs are never mutated, except by drift.Subtract and Runner.CorrectBeads.
//   - Degenerate data (empty, all-NaN, too short) yields neutral outputs;
//     only an unresolvable precision or an inconsistent configuration is an
//     error.
//   - Every configuration has a DefaultX constructor and a Validate method.
//
// Under the hood:
//
//	matrix/    dense matrices, Householder QR, least squares
//	poly/      polynomial fit, evaluation and derivative
//	stattest/  known-sigma and Student t two-sample tests
//	simulator/ deterministic synthetic tracks
//	cmd/       the cordrift command line
//
// A cycle and its drift:
//
//	  ┌──┐      ┌──────┐
//	──┘  └──────┘      └──   events
//	 ╱‾‾‾‾‾‾‾‾‾‾‾‾‾‾‾‾‾‾‾   drift shared by every cycle
//
//	go get github.com/katalvlaran/cordrift
package cordrift
