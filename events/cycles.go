package events

import "sort"

// ToCycles attributes intervals expressed in global frames to cycles.
// starts holds the first frame of every cycle in ascending order; cycle k
// spans [starts[k], starts[k+1]) and the last cycle is unbounded. Each
// interval goes to the cycle holding most of its frames, the earlier cycle
// on ties. Frames before starts[0] belong to no cycle; an interval entirely
// before it gets -1.
func ToCycles(starts []int, intervals []Interval) []int {
	out := make([]int, len(intervals))
	for i, iv := range intervals {
		out[i] = -1
		if len(starts) == 0 {
			continue
		}
		// first cycle whose start is > iv.Start, minus one
		k := sort.SearchInts(starts, iv.Start+1) - 1
		if k < 0 {
			k = 0
		}
		best, bestLen := -1, 0
		for ; k < len(starts) && starts[k] < iv.Stop; k++ {
			lo, hi := max(iv.Start, starts[k]), iv.Stop
			if k+1 < len(starts) {
				hi = min(hi, starts[k+1])
			}
			if hi-lo > bestLen {
				best, bestLen = k, hi-lo
			}
		}
		out[i] = best
	}

	return out
}

// PhaseCycle locates an interval within a cycle and one of its phases.
type PhaseCycle struct {
	Cycle int
	Phase int
}

// ToPhaseAndCycles is ToCycles over phases: phases[c] lists the first
// global frame of every phase of cycle c. Intervals outside every phase get
// {-1, -1}.
func ToPhaseAndCycles(phases [][]int, intervals []Interval) []PhaseCycle {
	flat := make([]int, 0, len(phases)*4)
	owner := make([]PhaseCycle, 0, cap(flat))
	for c, ph := range phases {
		for p, s := range ph {
			flat = append(flat, s)
			owner = append(owner, PhaseCycle{Cycle: c, Phase: p})
		}
	}

	out := make([]PhaseCycle, len(intervals))
	for i, id := range ToCycles(flat, intervals) {
		if id < 0 {
			out[i] = PhaseCycle{Cycle: -1, Phase: -1}
			continue
		}
		out[i] = owner[id]
	}

	return out
}
