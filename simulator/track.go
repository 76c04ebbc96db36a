// SPDX-License-Identifier: MIT
// Package simulator generates deterministic synthetic tracks: cycles made
// of flat events, a thermal drift shared by every cycle, Gaussian noise and
// missing samples.
package simulator

import (
	"math"
	"math/rand"
	"sort"
)

// Defaults applied before options.
const (
	defNoise     = 0.01
	defZScale    = 0.2
	defTScale    = 100.0
	defEvents    = 3
	defAmplitude = 1.0
)

type config struct {
	noise     float64
	zscale    float64
	tscale    float64
	events    int
	amplitude float64
	missing   float64
	rng       *rand.Rand
}

func newConfig(seed int64, opts ...Option) config {
	cfg := config{
		noise:     defNoise,
		zscale:    defZScale,
		tscale:    defTScale,
		events:    defEvents,
		amplitude: defAmplitude,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(seed))
	}

	return cfg
}

// Track is a generated track and its ground truth.
//
// Fields:
//   - Data: bead id → cycles, as measured.
//   - Clean: bead id → cycles, without drift, noise nor missing samples.
//   - Drift: the drift added to frame i of every cycle.
type Track struct {
	Data  map[int][][]float32
	Clean map[int][][]float32
	Drift []float32
}

// ThermalDrift returns zscale·(1 − exp(−i/tscale)) for i in [0, length).
func ThermalDrift(length int, zscale, tscale float64) []float32 {
	out := make([]float32, max(length, 0))
	for i := range out {
		out[i] = float32(zscale * (1 - math.Exp(-float64(i)/tscale)))
	}

	return out
}

// steps returns n sorted step positions in (0, length), one per slot of
// width length/(n+1), jittered within the middle half of the slot.
func steps(rng *rand.Rand, n, length int) []int {
	out := make([]int, 0, n)
	slot := float64(length) / float64(n+1)
	for k := 1; k <= n; k++ {
		pos := int(slot*float64(k) + (rng.Float64()-0.5)*slot/2)
		if pos > 0 && pos < length {
			out = append(out, pos)
		}
	}
	sort.Ints(out)

	return out
}

// NewTrack returns nbeads beads of ncycles cycles of length frames each.
// Invalid sizes yield an empty Track.
//
// Each cycle starts at level 0 and changes level at every step by a
// uniform amount in ±amplitude, at least amplitude/2 in magnitude.
func NewTrack(nbeads, ncycles, length int, seed int64, opts ...Option) *Track {
	out := &Track{Data: map[int][][]float32{}, Clean: map[int][][]float32{}}
	if nbeads < 1 || ncycles < 1 || length < 1 {
		return out
	}
	cfg := newConfig(seed, opts...)
	rng := cfg.rng
	out.Drift = ThermalDrift(length, cfg.zscale, cfg.tscale)

	for b := 0; b < nbeads; b++ {
		data := make([][]float32, ncycles)
		clean := make([][]float32, ncycles)
		for c := range data {
			data[c] = make([]float32, length)
			clean[c] = make([]float32, length)

			level := 0.0
			next := steps(rng, cfg.events, length)
			for i := 0; i < length; i++ {
				for len(next) > 0 && next[0] == i {
					jump := cfg.amplitude * (0.5 + 0.5*rng.Float64())
					if rng.Intn(2) == 0 {
						jump = -jump
					}
					level += jump
					next = next[1:]
				}
				clean[c][i] = float32(level)

				v := level + float64(out.Drift[i])
				if cfg.noise > 0 {
					v += cfg.noise * rng.NormFloat64()
				}
				if cfg.missing > 0 && rng.Float64() < cfg.missing {
					v = math.NaN()
				}
				data[c][i] = float32(v)
			}
		}
		out.Data[b], out.Clean[b] = data, clean
	}

	return out
}
