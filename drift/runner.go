// SPDX-License-Identifier: MIT
package drift

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/cordrift/collapse"
	"github.com/katalvlaran/cordrift/precision"
)

// Track maps a bead id to the sample series of its cycles.
type Track map[int][][]float32

// Beads returns the bead ids in increasing order.
func (t Track) Beads() []int {
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// Cycles returns the largest number of cycles of any bead.
func (t Track) Cycles() int {
	n := 0
	for _, cycles := range t {
		n = max(n, len(cycles))
	}

	return n
}

// Cycle returns cycle c of every bead that has it, in bead order.
func (t Track) Cycle(c int) [][]float32 {
	out := make([][]float32, 0, len(t))
	for _, id := range t.Beads() {
		if c < len(t[id]) {
			out = append(out, t[id][c])
		}
	}

	return out
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithCache shares profiles through c. Panics on nil.
func WithCache(c Cache) RunnerOption {
	if c == nil {
		panic("drift: WithCache(nil)")
	}
	return func(r *Runner) { r.cache = c }
}

// WithLogger sets the logger. Panics on nil.
func WithLogger(log logrus.FieldLogger) RunnerOption {
	if log == nil {
		panic("drift: WithLogger(nil)")
	}
	return func(r *Runner) { r.log = log }
}

// WithRoot names the track in cache keys.
func WithRoot(root string) RunnerOption {
	return func(r *Runner) { r.root = root }
}

// Runner applies a Task to every bead or cycle of a track in parallel.
type Runner struct {
	task  *Task
	cache Cache
	log   logrus.FieldLogger
	root  string
}

// NewRunner returns a Runner with a private MemoCache and the standard
// logrus logger unless options say otherwise.
func NewRunner(task *Task, opts ...RunnerOption) *Runner {
	r := &Runner{task: task, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewMemoCache()
	}

	return r
}

// unit is one profile computation: the key and the cycles it covers.
type unit struct {
	key    Key
	cycles [][]float32
}

func (r *Runner) units(track Track) []unit {
	onbeads := r.task.cfg.OnBeads
	if onbeads {
		ids := track.Beads()
		out := make([]unit, len(ids))
		for i, id := range ids {
			out[i] = unit{Key{r.root, id, true}, track[id]}
		}
		return out
	}
	out := make([]unit, track.Cycles())
	for c := range out {
		out[c] = unit{Key{r.root, c, false}, track.Cycle(c)}
	}

	return out
}

func (r *Runner) workers() int {
	if w := r.task.cfg.Workers; w > 0 {
		return w
	}

	return runtime.NumCPU()
}

// Profiles returns the profile of every bead (OnBeads) or cycle index,
// keyed by that id. Beads or cycles whose precision cannot be resolved are
// logged and left out.
func (r *Runner) Profiles(ctx context.Context, track Track) (map[int]*collapse.Profile, error) {
	return r.run(ctx, track, false)
}

// CorrectBeads subtracts the drift profiles from track in place. Each
// profile is computed once per key of the Runner's cache.
func (r *Runner) CorrectBeads(ctx context.Context, track Track) error {
	_, err := r.run(ctx, track, true)

	return err
}

func (r *Runner) run(ctx context.Context, track Track, apply bool) (map[int]*collapse.Profile, error) {
	units := r.units(track)
	field := "cycle"
	if r.task.cfg.OnBeads {
		field = "bead"
	}

	var (
		mu  sync.Mutex
		out = make(map[int]*collapse.Profile, len(units))
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers())
	for _, u := range units {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log := r.log.WithField(field, u.key.ID)
			prof, err := r.cache.Do(u.key, func() (*collapse.Profile, error) {
				return r.task.Profile(u.cycles)
			})
			if errors.Is(err, precision.ErrConfiguration) {
				log.WithError(err).Warn("drift: skipped, no precision")
				return nil
			}
			if err != nil {
				return fmt.Errorf("drift: %s %d: %w", field, u.key.ID, err)
			}
			if prof.Len() == 0 {
				log.Warn("drift: empty profile")
			}
			if apply {
				for _, c := range u.cycles {
					Subtract(prof, c)
				}
			}
			log.WithField("frames", prof.Len()).Debug("drift: profile ready")

			mu.Lock()
			out[u.key.ID] = prof
			mu.Unlock()

			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{
		"root":     r.root,
		"profiles": len(out),
		"units":    len(units),
	}).Info("drift: done")

	return out, nil
}
