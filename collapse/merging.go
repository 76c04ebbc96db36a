// SPDX-License-Identifier: MIT
package collapse

import "fmt"

// MergingConfig collapses Ranges by repeatedly merging the pair sharing the
// most frames. Edge frames at each end of a merged group are not counted.
type MergingConfig struct {
	Edge int `yaml:"edge"`
}

// DefaultMergingConfig returns Edge 1.
func DefaultMergingConfig() MergingConfig { return MergingConfig{Edge: DefaultEdge} }

// Validate checks the edge.
func (c MergingConfig) Validate() error {
	if c.Edge < 0 {
		return fmt.Errorf("%w: edge %d < 0", ErrBadConfig, c.Edge)
	}

	return nil
}

// group is a centered range: missing samples hold 0 with a zero count.
type group struct {
	start int
	vals  []float64
	cnt   []int32
	alive bool
}

func (g *group) stop() int { return g.start + len(g.vals) }

func newGroup(s span, xmin int) group {
	lo, hi := s.idx[0], s.idx[len(s.idx)-1]+1
	g := group{start: lo + xmin, vals: make([]float64, hi-lo), cnt: make([]int32, hi-lo), alive: true}
	var mean float64
	for _, v := range s.val {
		mean += v
	}
	mean /= float64(len(s.val))
	for k, i := range s.idx {
		g.vals[i-lo] = s.val[k]
		g.cnt[i-lo] = 1
	}
	for k := range g.vals {
		g.vals[k] -= mean
	}

	return g
}

// common returns the number of frames shared by two groups.
func common(a, b *group) int {
	if !a.alive || !b.alive {
		return 0
	}

	return max(min(a.stop(), b.stop())-max(a.start, b.start), 0)
}

// delta is the mean of a's counted samples over the frames shared with b.
func delta(a, b *group) float64 {
	lo, hi := max(a.start, b.start), min(a.stop(), b.stop())
	var (
		sum float64
		n   int
	)
	for f := lo; f < hi; f++ {
		if a.cnt[f-a.start] > 0 {
			sum += a.vals[f-a.start]
			n++
		}
	}
	if n == 0 {
		return 0
	}

	return sum / float64(n)
}

// merge aligns a and b on their shared frames and averages them with
// count weights.
func merge(a, b *group) group {
	start := min(a.start, b.start)
	stop := max(a.stop(), b.stop())
	da, db := delta(a, b), delta(b, a)

	out := group{start: start, vals: make([]float64, stop-start), cnt: make([]int32, stop-start), alive: true}
	for k, c := range a.cnt {
		out.cnt[a.start-start+k] += c
	}
	for k, c := range b.cnt {
		out.cnt[b.start-start+k] += c
	}
	for k := range a.vals {
		i := a.start - start + k
		if out.cnt[i] > 0 {
			out.vals[i] += float64(a.cnt[k]) / float64(out.cnt[i]) * (a.vals[k] - da)
		}
	}
	for k := range b.vals {
		i := b.start - start + k
		if out.cnt[i] > 0 {
			out.vals[i] += float64(b.cnt[k]) / float64(out.cnt[i]) * (b.vals[k] - db)
		}
	}

	return out
}

// Collapse centers every range, then merges the pair with the largest
// overlap (first in row-major order on ties) until no pair overlaps.
// Surviving groups are written into the Profile; Count receives their
// number of finite contributions minus Edge frames at each end.
func (c MergingConfig) Collapse(ranges []Range, prof *Profile) *Profile {
	out := base(ranges, prof)
	sp := spans(out.XMin, out.XMax, ranges)
	groups := make([]group, len(sp))
	for i, s := range sp {
		groups[i] = newGroup(s, out.XMin)
	}

	n := len(groups)
	shared := make([][]int, n)
	for i := range shared {
		shared[i] = make([]int, n)
		for j := range shared[i] {
			if i != j {
				shared[i][j] = common(&groups[i], &groups[j])
			}
		}
	}

	for step := 0; step+1 < n; step++ {
		bi, bj, best := -1, -1, 0
		for i := range shared {
			for j, v := range shared[i] {
				if v > best {
					bi, bj, best = i, j, v
				}
			}
		}
		if best <= 0 {
			break
		}

		groups[bi] = merge(&groups[bi], &groups[bj])
		groups[bj].alive = false
		for k := 0; k < n; k++ {
			shared[bj][k], shared[k][bj] = 0, 0
		}
		for k := 0; k < n; k++ {
			if k != bi {
				v := common(&groups[bi], &groups[k])
				shared[bi][k], shared[k][bi] = v, v
			}
		}
	}

	for i := range groups {
		g := &groups[i]
		if !g.alive {
			continue
		}
		lo, hi := max(g.start, out.XMin), min(g.stop(), out.XMax)
		for f := lo; f < hi; f++ {
			out.Value[f-out.XMin] = float32(g.vals[f-g.start])
		}
		for f := lo + c.Edge; f < hi-c.Edge; f++ {
			out.Count[f-out.XMin] = g.cnt[f-g.start]
		}
	}

	return out
}
