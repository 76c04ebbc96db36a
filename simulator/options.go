// SPDX-License-Identifier: MIT
// Package: cordrift/simulator
//
// options.go: functional options for synthetic tracks.
//
// Contract:
//   • Options are functional (type Option func(*config)).
//   • Option constructors validate and panic on meaningless inputs;
//     NewTrack itself never panics.
//   • Determinism is explicit: the seed given to NewTrack, or WithRand.

package simulator

import "math/rand"

// Option customizes NewTrack by mutating a config before generation.
type Option func(*config)

// WithNoise sets the Gaussian noise sigma (>= 0) added to every sample.
// Panics if sigma < 0.
func WithNoise(sigma float64) Option {
	if sigma < 0 {
		panic("simulator: WithNoise(sigma<0)")
	}
	return func(c *config) { c.noise = sigma }
}

// WithDrift sets the thermal drift z(t) = zscale·(1 − exp(−t/tscale)),
// shared by every cycle of every bead. zscale 0 disables it.
// Panics if tscale <= 0.
func WithDrift(zscale, tscale float64) Option {
	if tscale <= 0 {
		panic("simulator: WithDrift(tscale<=0)")
	}
	return func(c *config) { c.zscale, c.tscale = zscale, tscale }
}

// WithEvents sets n steps per cycle, each changing the level by up to
// ±amplitude. Panics if n < 0.
func WithEvents(n int, amplitude float64) Option {
	if n < 0 {
		panic("simulator: WithEvents(n<0)")
	}
	return func(c *config) { c.events, c.amplitude = n, amplitude }
}

// WithMissing sets the probability in [0, 1) that a sample is NaN.
// Panics outside that range.
func WithMissing(rate float64) Option {
	if rate < 0 || rate >= 1 {
		panic("simulator: WithMissing(rate∉[0,1))")
	}
	return func(c *config) { c.missing = rate }
}

// WithRand draws from r instead of a source seeded by NewTrack.
// Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("simulator: WithRand(nil)")
	}
	return func(c *config) { c.rng = r }
}
