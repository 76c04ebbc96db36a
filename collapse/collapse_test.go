package collapse_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cordrift/collapse"
)

var (
	_ collapse.Collapser = collapse.MeanConfig{}
	_ collapse.Collapser = collapse.DerivateConfig{}
	_ collapse.Collapser = collapse.MergingConfig{}
	_ collapse.Collapser = collapse.SockConfig{}
)

// constant returns n copies of v.
func constant(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}

	return out
}

// horizontal returns one range per column i of value i over [5, 10).
func horizontal(ncols int) []collapse.Range {
	out := make([]collapse.Range, ncols)
	for i := range out {
		out[i] = collapse.Range{Start: 5, Values: constant(5, float32(i))}
	}

	return out
}

// slanted returns, for each column j, the values j, j+5, ..., j+20 at frame 5.
func slanted(cols ...int) []collapse.Range {
	out := make([]collapse.Range, 0, len(cols))
	for _, j := range cols {
		vals := make([]float32, 5)
		for r := range vals {
			vals[r] = float32(5*r + j)
		}
		out = append(out, collapse.Range{Start: 5, Values: vals})
	}

	return out
}

func counts(parts ...[2]int) []int32 {
	out := []int32{}
	for _, p := range parts {
		for i := 0; i < p[1]; i++ {
			out = append(out, int32(p[0]))
		}
	}

	return out
}

func assertValues(t *testing.T, want []float64, got []float32, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], float64(got[i]), tol, "index %d", i)
	}
}

func TestNewProfile(t *testing.T) {
	p := collapse.NewProfile([]collapse.Range{{Start: 3, Values: make([]float32, 4)}, {Start: 1, Values: make([]float32, 2)}})
	assert.Equal(t, 1, p.XMin)
	assert.Equal(t, 7, p.XMax)
	assert.Equal(t, 6, p.Len())

	empty := collapse.NewProfile(nil)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 5, collapse.NewProfileLen(5).Len())
}

func TestCollapse_EmptyInput(t *testing.T) {
	for _, c := range []collapse.Collapser{
		collapse.DefaultMeanConfig(), collapse.DefaultDerivateConfig(), collapse.DefaultMergingConfig(),
		collapse.DefaultSockConfig(),
	} {
		p := c.Collapse(nil, nil)
		assert.Equal(t, 0, p.Len())
		assert.Empty(t, p.Value)
	}
}

func TestMean_Conservation(t *testing.T) {
	const n = 7
	ranges := make([]collapse.Range, n)
	for i := range ranges {
		ranges[i] = collapse.Range{Start: 0, Values: constant(100, 2.5)}
	}

	p := collapse.MeanConfig{Edge: 0}.Collapse(ranges, nil)
	require.Equal(t, 100, p.Len())
	for i := 0; i < 100; i++ {
		assert.Equal(t, int32(n), p.Count[i])
		assert.InDelta(t, 2.5, p.Value[i], 1e-4)
	}

	p = collapse.DefaultMeanConfig().Collapse(ranges, nil)
	assert.Equal(t, int32(0), p.Count[0])
	assert.Equal(t, int32(n), p.Count[1])
	assert.Equal(t, int32(0), p.Count[99])
}

func TestMean_RoundTrip(t *testing.T) {
	ranges := []collapse.Range{
		{Start: 0, Values: constant(5, 1)},
		{Start: 3, Values: constant(5, 1)},
	}
	p := collapse.MeanConfig{Edge: 0}.Collapse(ranges, nil)
	assert.Equal(t, 0, p.XMin)
	assert.Equal(t, 8, p.XMax)
	assert.Equal(t, []int32{1, 1, 1, 2, 2, 1, 1, 1}, p.Count)
	assertValues(t, []float64{1, 1, 1, 1, 1, 1, 1, 1}, p.Value, 1e-6)
}

func TestMean_Centered(t *testing.T) {
	cfg := collapse.MeanConfig{Edge: 0, Center: true}

	p := cfg.Collapse(horizontal(5), nil)
	assert.Equal(t, 5, p.XMin)
	assert.Equal(t, 10, p.XMax)
	assert.Equal(t, counts([2]int{5, 5}), p.Count)
	assertValues(t, []float64{0, 0, 0, 0, 0}, p.Value, 0)

	p = cfg.Collapse(slanted(1, 2, 3), nil)
	assert.Equal(t, counts([2]int{3, 5}), p.Count)
	assertValues(t, []float64{-10, -5, 0, 5, 10}, p.Value, 1e-4)

	ranges := append(slanted(1, 2, 3), collapse.Range{Start: 15, Values: constant(10, 1)})
	p = cfg.Collapse(ranges, nil)
	assert.Equal(t, counts([2]int{3, 5}, [2]int{0, 5}, [2]int{1, 10}), p.Count)
	assertValues(t, []float64{-10, -5, 0, 5, 10}, p.Value[:5], 1e-4)
	for _, v := range p.Value[5:] {
		assert.Equal(t, float32(0), v)
	}
}

func TestMean_UnevenLevels(t *testing.T) {
	// a second range at a different level is shifted onto the first
	ranges := []collapse.Range{
		{Start: 0, Values: []float32{0, 1, 2, 3, 4, 5}},
		{Start: 0, Values: []float32{10, 11, 12, 13, 14, 15}},
	}
	p := collapse.MeanConfig{Edge: 0}.Collapse(ranges, nil)
	assertValues(t, []float64{0, 1, 2, 3, 4, 5}, p.Value, 1e-5)

	p = collapse.MeanConfig{Edge: 0, Measure: collapse.Median}.Collapse(ranges, nil)
	assertValues(t, []float64{0, 1, 2, 3, 4, 5}, p.Value, 1e-5)
}

func TestMean_TieBreakShorterFirst(t *testing.T) {
	ranges := []collapse.Range{
		{Start: 0, Values: constant(4, 0)},
		{Start: 2, Values: constant(2, 5)},
	}
	p := collapse.MeanConfig{Edge: 0}.Collapse(ranges, nil)
	assertValues(t, []float64{5, 5, 5, 5}, p.Value, 1e-6)
}

func TestMean_InputsUntouched(t *testing.T) {
	ranges := []collapse.Range{
		{Start: 2, Values: []float32{1, 2, float32(math.NaN()), 4}},
		{Start: 0, Values: []float32{3, 3, 3}},
	}
	prof := collapse.NewProfileSpan(0, 6)
	before := prof.Clone()

	out := collapse.DefaultMeanConfig().Collapse(ranges, prof)
	assert.Equal(t, before, prof)
	assert.Equal(t, float32(1), ranges[0].Values[0])
	assert.Equal(t, float32(3), ranges[1].Values[0])
	assert.Equal(t, 6, out.Len())
	assert.NotSame(t, prof, out)
}

func TestMean_ChiSquareWeight(t *testing.T) {
	noisy := make([]float32, 10)
	for i := range noisy {
		noisy[i] = 5 + .03
		if i%2 == 1 {
			noisy[i] = 5 - .03
		}
	}
	ranges := []collapse.Range{
		{Start: 0, Values: constant(10, 0)},
		{Start: 0, Values: noisy},
	}

	plain := collapse.MeanConfig{Edge: 0}.Collapse(ranges, nil)
	assert.InDelta(t, .015, plain.Value[0], 1e-5)
	assert.InDelta(t, -.015, plain.Value[1], 1e-5)

	cfg := collapse.MeanConfig{Edge: 0, Weight: collapse.ChiSquare}
	p := cfg.Collapse(ranges, nil)
	assert.Equal(t, counts([2]int{2, 10}), p.Count)
	assertValues(t, make([]float64, 10), p.Value, 1e-4)

	// short ranges sit at the weight floor, equal weights average evenly
	short := []collapse.Range{
		{Start: 0, Values: []float32{0, 0, 0}},
		{Start: 0, Values: []float32{1, -1, 1}},
	}
	p = cfg.Collapse(short, nil)
	assertValues(t, []float64{.5 - 1.0/6, -.5 - 1.0/6, .5 - 1.0/6}, p.Value, 1e-5)
}

// spiked returns n flat ranges at 1 over [0, 20) and a last one with a
// spike of 50 at frame 10.
func spiked(n int) []collapse.Range {
	out := make([]collapse.Range, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, collapse.Range{Start: 0, Values: constant(20, 1)})
	}
	bad := constant(20, 1)
	bad[10] = 50

	return append(out, collapse.Range{Start: 0, Values: bad})
}

func TestSock_DiscardsFaultyRange(t *testing.T) {
	ranges := spiked(20)

	mean := collapse.MeanConfig{Edge: 0}.Collapse(ranges, nil)
	assert.Greater(t, mean.Value[10], float32(3))

	for _, tc := range []struct {
		name string
		cfg  collapse.SockConfig
		tol  float64
	}{
		{"robustmean", collapse.SockConfig{MeanConfig: collapse.MeanConfig{Edge: 0}}, 1e-4},
		{"median", collapse.SockConfig{MeanConfig: collapse.MeanConfig{Edge: 0}, Mode: collapse.SockMedian}, 1e-4},
		{"chisquare", collapse.SockConfig{
			MeanConfig: collapse.MeanConfig{Edge: 0, Precision: 1},
			Mode:       collapse.SockChiSquare,
		}, 1e-2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.cfg.Validate())
			p := tc.cfg.Collapse(ranges, nil)
			require.Equal(t, 20, p.Len())
			assert.Equal(t, counts([2]int{21, 20}), p.Count)
			for i, v := range p.Value {
				assert.InDelta(t, 1, v, tc.tol, "frame %d", i)
			}
		})
	}
}

func TestSock_Table(t *testing.T) {
	ranges := append(spiked(3), collapse.Range{Start: 15, Values: constant(10, 2)})
	table := collapse.DefaultSockConfig().Table(ranges, nil)
	require.Len(t, table, 25)
	for _, row := range table {
		require.Len(t, row, 5)
	}

	finite := func(row []float32) int {
		n := 0
		for _, v := range row {
			if !math.IsNaN(float64(v)) {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 4, finite(table[0]))
	assert.Equal(t, 5, finite(table[16]))
	assert.Equal(t, 1, finite(table[24]))
	assert.True(t, math.IsNaN(float64(table[24][1])))
}

func TestDerivate_Lines(t *testing.T) {
	cfg := collapse.DerivateConfig{}

	p := cfg.Collapse(horizontal(5), nil)
	assert.Equal(t, counts([2]int{5, 4}, [2]int{0, 1}), p.Count)
	assertValues(t, []float64{0, 0, 0, 0, 0}, p.Value, 0)

	p = cfg.Collapse(slanted(1, 2, 3), nil)
	assert.Equal(t, counts([2]int{3, 4}, [2]int{0, 1}), p.Count)
	assertValues(t, []float64{-20, -15, -10, -5, 0}, p.Value, 1e-4)

	ranges := append(slanted(1, 2, 3), collapse.Range{Start: 15, Values: constant(10, 1)})
	p = cfg.Collapse(ranges, nil)
	assert.Equal(t, counts([2]int{3, 4}, [2]int{0, 6}, [2]int{1, 9}, [2]int{0, 1}), p.Count)
	assertValues(t, []float64{-20, -15, -10, -5, 0}, p.Value[:5], 1e-4)
	for _, v := range p.Value[5:] {
		assert.Equal(t, float32(0), v)
	}
}

func TestDerivate_MaxDer(t *testing.T) {
	ramp := []float32{0, 1, 2, 3, 4}
	spike := []float32{0, 1, 102, 3, 4}
	ranges := []collapse.Range{{Start: 0, Values: ramp}, {Start: 0, Values: spike}}

	cfg := collapse.DerivateConfig{MaxDer: 5, Mode: collapse.Mean}
	p := cfg.Collapse(ranges, nil)
	assertValues(t, []float64{-4, -3, -2, -1, 0}, p.Value, 1e-6)
	assert.Equal(t, []int32{2, 2, 2, 2, 0}, p.Count)

	table := cfg.Table(ranges, nil)
	require.Len(t, table, 5)
	require.Len(t, table[1], 2)
	assert.Equal(t, float32(-1), table[1][0])
	assert.True(t, math.IsNaN(float64(table[1][1])))
	assert.True(t, math.IsNaN(float64(table[4][0])))

	// without a limit the spike drags the mean locally but cancels in total
	p = collapse.DerivateConfig{Mode: collapse.Mean}.Collapse(ranges, nil)
	assert.InDelta(t, -4.0, p.Value[0], 1e-5)
	assert.InDelta(t, 48.0, p.Value[2], 1e-5)
}

func TestDerivate_MissingSamples(t *testing.T) {
	nan := float32(math.NaN())
	ranges := []collapse.Range{
		{Start: 0, Values: []float32{0, 1, nan, 3, 4}},
	}
	p := collapse.DerivateConfig{}.Collapse(ranges, nil)
	// no difference is available at frames 1 and 2
	assert.Equal(t, []int32{1, 0, 0, 1, 0}, p.Count)
	assertValues(t, []float64{-2, -1, -1, -1, 0}, p.Value, 1e-6)
}

func TestMerging_Lines(t *testing.T) {
	cfg := collapse.MergingConfig{Edge: 0}

	p := cfg.Collapse(horizontal(5), nil)
	assert.Equal(t, counts([2]int{5, 5}), p.Count)
	assertValues(t, []float64{0, 0, 0, 0, 0}, p.Value, 1e-6)

	p = cfg.Collapse(slanted(1, 2, 3), nil)
	assert.Equal(t, counts([2]int{3, 5}), p.Count)
	assertValues(t, []float64{-10, -5, 0, 5, 10}, p.Value, 1e-4)

	ranges := append(slanted(1, 2, 3), collapse.Range{Start: 15, Values: constant(10, 1)})
	p = cfg.Collapse(ranges, nil)
	assert.Equal(t, counts([2]int{3, 5}, [2]int{0, 5}, [2]int{1, 10}), p.Count)
	assertValues(t, []float64{-10, -5, 0, 5, 10}, p.Value[:5], 1e-4)
	for _, v := range p.Value[5:] {
		assert.Equal(t, float32(0), v)
	}
}

func TestMerging_PartialOverlap(t *testing.T) {
	// two shifted copies of one ramp are aligned on their common frames
	a := collapse.Range{Start: 0, Values: []float32{0, 1, 2, 3, 4, 5}}
	b := collapse.Range{Start: 3, Values: []float32{13, 14, 15, 16, 17, 18}}
	p := collapse.MergingConfig{Edge: 1}.Collapse([]collapse.Range{a, b}, nil)
	require.Equal(t, 9, p.Len())
	for i := 1; i < p.Len(); i++ {
		assert.InDelta(t, 1.0, p.Value[i]-p.Value[i-1], 1e-5, "slope at %d", i)
	}
	assert.Equal(t, []int32{0, 1, 1, 2, 2, 2, 1, 1, 0}, p.Count)
}

func TestProfile_FitSubtracted(t *testing.T) {
	p := collapse.NewProfileSpan(10, 14)
	copy(p.Value, []float32{1, 2, 3, 4})
	copy(p.Count, []int32{1, 1, 0, 0})

	r := collapse.Range{Start: 9, Values: []float32{7, 10, 11, 12}}
	fit := p.Fit(r)
	// shifted by mean(1-10, 2-11) = -9
	assert.Equal(t, []float32{-2, 1, 2, 3}, fit.Values)
	assert.Equal(t, float32(7), r.Values[0])

	sub := p.Subtracted(r)
	assert.Equal(t, []float32{7, 9, 9, 9}, sub.Values)

	none := p.Fit(collapse.Range{Start: 12, Values: []float32{5}})
	assert.Equal(t, []float32{5}, none.Values)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, collapse.DefaultMeanConfig().Validate())
	assert.NoError(t, collapse.DefaultDerivateConfig().Validate())
	assert.NoError(t, collapse.DefaultMergingConfig().Validate())
	assert.ErrorIs(t, collapse.MeanConfig{Edge: -1}.Validate(), collapse.ErrBadConfig)
	assert.ErrorIs(t, collapse.MeanConfig{Measure: "mode"}.Validate(), collapse.ErrBadConfig)
	assert.ErrorIs(t, collapse.MeanConfig{Weight: "uniform"}.Validate(), collapse.ErrBadConfig)
	assert.ErrorIs(t, collapse.MeanConfig{Precision: math.NaN()}.Validate(), collapse.ErrBadConfig)
	assert.NoError(t, collapse.DefaultSockConfig().Validate())
	assert.NoError(t, collapse.SockConfig{}.Validate())
	assert.ErrorIs(t, collapse.SockConfig{Mode: "max"}.Validate(), collapse.ErrBadConfig)
	assert.ErrorIs(t, collapse.SockConfig{Robustness: [2]float64{.9, .1}}.Validate(), collapse.ErrBadConfig)
	assert.ErrorIs(t, collapse.SockConfig{MeanConfig: collapse.MeanConfig{Edge: -1}}.Validate(), collapse.ErrBadConfig)
	assert.ErrorIs(t, collapse.DerivateConfig{Mode: "max"}.Validate(), collapse.ErrBadConfig)
	assert.ErrorIs(t, collapse.DerivateConfig{MaxDer: math.NaN()}.Validate(), collapse.ErrBadConfig)
	assert.ErrorIs(t, collapse.MergingConfig{Edge: -2}.Validate(), collapse.ErrBadConfig)
}
