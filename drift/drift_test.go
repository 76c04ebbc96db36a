package drift_test

import (
	"context"
	"errors"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cordrift/collapse"
	"github.com/katalvlaran/cordrift/drift"
	"github.com/katalvlaran/cordrift/precision"
	"github.com/katalvlaran/cordrift/simulator"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func intp(v int) *int { return &v }

// wholeCycles collapses whole cycles by their derivative, without stitching.
func wholeCycles() drift.Config {
	cfg := drift.DefaultConfig()
	cfg.Events = nil
	cfg.Collapse.Method = drift.CollapseDerivate
	cfg.Stitch.Method = drift.StitchNone

	return cfg
}

func median(v []float32) float64 {
	s := append([]float32(nil), v...)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	if len(s)%2 == 1 {
		return float64(s[len(s)/2])
	}

	return (float64(s[len(s)/2-1]) + float64(s[len(s)/2])) / 2
}

func TestAnchor(t *testing.T) {
	p := collapse.NewProfileLen(6)
	copy(p.Value, []float32{5, 1, 2, 3, 9, 4})
	drift.Anchor(p, 3)
	assert.Equal(t, []float32{1, -3, -2, -1, 5, 0}, p.Value)
	assert.Equal(t, 0.0, median(p.Value[3:]))

	q := collapse.NewProfileLen(2)
	copy(q.Value, []float32{2, 4})
	drift.Anchor(q, 10)
	assert.Equal(t, []float32{-1, 1}, q.Value)

	drift.Anchor(nil, 3)
	drift.Anchor(collapse.NewProfileLen(0), 3)
}

func TestSubtract(t *testing.T) {
	p := collapse.NewProfileSpan(2, 5)
	copy(p.Value, []float32{1, 2, 3})

	cycle := []float32{0, 0, 0, 0}
	drift.Subtract(p, cycle)
	assert.Equal(t, []float32{0, 0, -1, -2}, cycle)

	long := []float32{0, 0, 0, 0, 0, 0, 0}
	drift.Subtract(p, long)
	assert.Equal(t, []float32{0, 0, -1, -2, -3, 0, 0}, long)

	short := []float32{7}
	drift.Subtract(p, short)
	assert.Equal(t, []float32{7}, short)

	nan := []float32{0, 0, float32(math.NaN())}
	drift.Subtract(p, nan)
	assert.True(t, math.IsNaN(float64(nan[2])))
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, drift.DefaultConfig().Validate())
	require.NoError(t, wholeCycles().Validate())

	cases := map[string]func(*drift.Config){
		"zero":         func(c *drift.Config) { c.Zero = intp(2) },
		"mean noevent": func(c *drift.Config) { c.Events = nil },
		"collapse":     func(c *drift.Config) { c.Collapse.Method = "nope" },
		"stitch":       func(c *drift.Config) { c.Stitch.Method = "" },
		"stage":        func(c *drift.Config) { c.Collapse.Mean.Edge = -1 },
		"events":       func(c *drift.Config) { c.Events.Split.Window = 0 },
		"precision":    func(c *drift.Config) { c.Precision.RawFactor = -1 },
		"sock noevent": func(c *drift.Config) {
			c.Events = nil
			c.Collapse.Method = drift.CollapseSock
		},
		"sock mode": func(c *drift.Config) {
			c.Collapse.Method = drift.CollapseSock
			c.Collapse.Sock.Mode = "max"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := drift.DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), drift.ErrConfiguration)
			_, err := drift.NewTask(cfg)
			assert.ErrorIs(t, err, drift.ErrConfiguration)
		})
	}

	cfg := drift.DefaultConfig()
	cfg.Zero = nil
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	cfg, err := drift.LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	if diff := cmp.Diff(drift.DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	cfg, err = drift.LoadConfig(strings.NewReader(`
events: null
collapse:
  method: derivate
  derivate:
    maxder: 2.5
stitch:
  method: singlefit
  singlefit:
    fitlength: 6
zero: null
onbeads: false
workers: 3
`))
	require.NoError(t, err)
	assert.Nil(t, cfg.Events)
	assert.Nil(t, cfg.Zero)
	assert.False(t, cfg.OnBeads)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 2.5, cfg.Collapse.Derivate.MaxDer)
	assert.Equal(t, collapse.Median, cfg.Collapse.Derivate.Mode)
	assert.Equal(t, 6, cfg.Stitch.SingleFit.FitLength)
	assert.Equal(t, 2, cfg.Stitch.SingleFit.FitOrder)

	cfg, err = drift.LoadConfig(strings.NewReader("events:\n  split:\n    window: 3\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Events)
	assert.Equal(t, 3, cfg.Events.Split.Window)
	assert.Equal(t, 0.1, cfg.Events.Split.Confidence)

	cfg, err = drift.LoadConfig(strings.NewReader(`
collapse:
  method: sock
  sock:
    edge: 2
    mode: chisquare
    precision: 0.01
`))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Collapse.Sock.Edge)
	assert.Equal(t, collapse.SockChiSquare, cfg.Collapse.Sock.Mode)
	assert.Equal(t, 0.01, cfg.Collapse.Sock.Precision)
	assert.Equal(t, collapse.DefaultRobustness, cfg.Collapse.Sock.Robustness)

	_, err = drift.LoadConfig(strings.NewReader("unknown: 1\n"))
	assert.ErrorIs(t, err, drift.ErrConfiguration)

	_, err = drift.LoadConfig(strings.NewReader("zero: 1\n"))
	assert.ErrorIs(t, err, drift.ErrConfiguration)

	_, err = drift.LoadConfig(strings.NewReader("events: null\n"))
	assert.ErrorIs(t, err, drift.ErrConfiguration)

	_, err = drift.LoadConfigFile("does/not/exist.yaml")
	assert.Error(t, err)
}

func TestTask_WholeCycles(t *testing.T) {
	tr := simulator.NewTrack(1, 5, 120, 3,
		simulator.WithNoise(0), simulator.WithEvents(0, 0), simulator.WithDrift(0.5, 30))

	task, err := drift.NewTask(wholeCycles())
	require.NoError(t, err)
	prof, err := task.Profile(tr.Data[0])
	require.NoError(t, err)
	require.Equal(t, 120, prof.Len())

	med := median(tr.Drift[110:])
	for i, v := range prof.Value {
		assert.InDelta(t, float64(tr.Drift[i])-med, float64(v), 1e-5, "frame %d", i)
	}
	assert.Equal(t, int32(5), prof.Count[0])
	assert.Equal(t, int32(5), prof.Count[118])
	assert.Equal(t, int32(0), prof.Count[119])
}

func TestTask_ZeroAnchoring(t *testing.T) {
	tr := simulator.NewTrack(1, 20, 200, 11)
	cfg := drift.DefaultConfig()
	cfg.Zero = intp(3)
	task, err := drift.NewTask(cfg)
	require.NoError(t, err)

	prof, err := task.Profile(tr.Data[0])
	require.NoError(t, err)
	require.Equal(t, 200, prof.Len())
	assert.Equal(t, 0.0, median(prof.Value[197:]))
}

func TestTask_SockMatchesMean(t *testing.T) {
	tr := simulator.NewTrack(1, 20, 200, 11)
	mean, err := drift.NewTask(drift.DefaultConfig())
	require.NoError(t, err)
	cfg := drift.DefaultConfig()
	cfg.Collapse.Method = drift.CollapseSock
	sock, err := drift.NewTask(cfg)
	require.NoError(t, err)

	want, err := mean.Profile(tr.Data[0])
	require.NoError(t, err)
	got, err := sock.Profile(tr.Data[0])
	require.NoError(t, err)
	require.Equal(t, want.Len(), got.Len())
	assert.Equal(t, want.Count, got.Count)
	var diff float64
	for i := range got.Value {
		diff += math.Abs(float64(want.Value[i] - got.Value[i]))
	}
	assert.Less(t, diff/float64(got.Len()), .02)
}

func TestTask_Degenerate(t *testing.T) {
	task, err := drift.NewTask(drift.DefaultConfig())
	require.NoError(t, err)

	prof, err := task.Profile(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, prof.Len())

	nan := float32(math.NaN())
	_, err = task.Profile([][]float32{{nan, nan, nan}, {nan}})
	assert.ErrorIs(t, err, precision.ErrConfiguration)

	cfg := drift.DefaultConfig()
	cfg.Precision.Precision = 0.01
	task, err = drift.NewTask(cfg)
	require.NoError(t, err)
	_, err = task.Profile([][]float32{{nan, nan, nan}})
	assert.NoError(t, err)
}

func TestTask_InputsUntouched(t *testing.T) {
	tr := simulator.NewTrack(1, 10, 100, 5)
	before := make([][]float32, len(tr.Data[0]))
	for i, c := range tr.Data[0] {
		before[i] = append([]float32(nil), c...)
	}
	task, err := drift.NewTask(drift.DefaultConfig())
	require.NoError(t, err)
	_, err = task.Profile(tr.Data[0])
	require.NoError(t, err)
	assert.Equal(t, before, tr.Data[0])
}

func TestMemoCache_Once(t *testing.T) {
	cache := drift.NewMemoCache()
	key := drift.Key{Root: "track", ID: 4, OnBeads: true}
	want := collapse.NewProfileLen(3)

	var calls atomic.Int32
	var wg sync.WaitGroup
	got := make([]*collapse.Profile, 32)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := cache.Do(key, func() (*collapse.Profile, error) {
				calls.Add(1)
				time.Sleep(10 * time.Millisecond)
				return want, nil
			})
			assert.NoError(t, err)
			got[i] = p
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, p := range got {
		assert.Same(t, want, p)
	}
	assert.Equal(t, 1, cache.Len())

	cache.Forget(key)
	assert.Equal(t, 0, cache.Len())
}

func TestMemoCache_ErrorsNotCached(t *testing.T) {
	cache := drift.NewMemoCache()
	key := drift.Key{Root: "track", ID: 1}
	boom := errors.New("boom")

	_, err := cache.Do(key, func() (*collapse.Profile, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())

	p, err := cache.Do(key, func() (*collapse.Profile, error) { return collapse.NewProfileLen(1), nil })
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, `"track"/false/1`, key.String())
}

func TestMemoCache_KeysWithSeparators(t *testing.T) {
	keys := []drift.Key{
		{Root: "a", ID: 1, OnBeads: true},
		{Root: "a/bead", ID: 1},
		{Root: "a/true", ID: 1},
		{Root: `a"/true/1`, ID: 1},
		{Root: "a/cycle/1", ID: 2, OnBeads: true},
		{Root: "a", ID: 2},
	}
	seen := map[string]drift.Key{}
	for _, k := range keys {
		prev, dup := seen[k.String()]
		assert.False(t, dup, "%+v and %+v share %s", prev, k, k.String())
		seen[k.String()] = k
	}

	cache := drift.NewMemoCache()
	var calls atomic.Int32
	for _, k := range keys {
		_, err := cache.Do(k, func() (*collapse.Profile, error) {
			calls.Add(1)
			return collapse.NewProfileLen(1), nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(len(keys)), calls.Load())
	assert.Equal(t, len(keys), cache.Len())
}

// spread returns max - min over frames of the residual data - clean,
// averaged over every cycle of every bead.
func spread(data, clean map[int][][]float32) float64 {
	var sum []float64
	var n []int
	for bead, cycles := range data {
		for c, cycle := range cycles {
			if len(sum) < len(cycle) {
				sum = append(sum, make([]float64, len(cycle)-len(sum))...)
				n = append(n, make([]int, len(cycle)-len(n))...)
			}
			for i, v := range cycle {
				if !math.IsNaN(float64(v)) {
					sum[i] += float64(v - clean[bead][c][i])
					n[i]++
				}
			}
		}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range sum {
		if n[i] > 0 {
			lo, hi = math.Min(lo, sum[i]/float64(n[i])), math.Max(hi, sum[i]/float64(n[i]))
		}
	}

	return hi - lo
}

func TestRunner_CorrectBeads(t *testing.T) {
	tr := simulator.NewTrack(3, 20, 200, 42)
	require.Greater(t, spread(tr.Data, tr.Clean), 0.15)

	task, err := drift.NewTask(drift.DefaultConfig())
	require.NoError(t, err)
	cache := drift.NewMemoCache()
	runner := drift.NewRunner(task, drift.WithCache(cache), drift.WithLogger(quietLogger()),
		drift.WithRoot("sim"))

	require.NoError(t, runner.CorrectBeads(context.Background(), tr.Data))
	assert.Less(t, spread(tr.Data, tr.Clean), 0.04)
	assert.Equal(t, 3, cache.Len())

	profs, err := runner.Profiles(context.Background(), tr.Data)
	require.NoError(t, err)
	assert.Len(t, profs, 3)
	assert.Equal(t, 3, cache.Len())
}

func TestRunner_OnCycles(t *testing.T) {
	tr := simulator.NewTrack(4, 6, 90, 8,
		simulator.WithNoise(0), simulator.WithEvents(0, 0), simulator.WithDrift(0.3, 25))
	cfg := wholeCycles()
	cfg.OnBeads = false
	cfg.Workers = 2
	task, err := drift.NewTask(cfg)
	require.NoError(t, err)

	runner := drift.NewRunner(task, drift.WithLogger(quietLogger()))
	require.NoError(t, runner.CorrectBeads(context.Background(), tr.Data))
	assert.Less(t, spread(tr.Data, tr.Clean), 1e-4)

	profs, err := runner.Profiles(context.Background(), tr.Data)
	require.NoError(t, err)
	assert.Len(t, profs, 6)
}

func TestRunner_SkipsUnresolvable(t *testing.T) {
	nan := float32(math.NaN())
	track := drift.Track{
		0: simulator.NewTrack(1, 10, 100, 5).Data[0],
		1: {{nan, nan, nan, nan}},
	}
	task, err := drift.NewTask(drift.DefaultConfig())
	require.NoError(t, err)

	profs, err := drift.NewRunner(task, drift.WithLogger(quietLogger())).Profiles(context.Background(), track)
	require.NoError(t, err)
	assert.Contains(t, profs, 0)
	assert.NotContains(t, profs, 1)
}

func TestRunner_Cancelled(t *testing.T) {
	task, err := drift.NewTask(drift.DefaultConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = drift.NewRunner(task, drift.WithLogger(quietLogger())).
		CorrectBeads(ctx, simulator.NewTrack(2, 5, 50, 1).Data)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrack(t *testing.T) {
	track := drift.Track{2: {{1}, {2}}, 0: {{3}}}
	assert.Equal(t, []int{0, 2}, track.Beads())
	assert.Equal(t, 2, track.Cycles())
	assert.Equal(t, [][]float32{{3}, {1}}, track.Cycle(0))
	assert.Equal(t, [][]float32{{2}}, track.Cycle(1))
}
