package collapse_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/cordrift/collapse"
)

func benchRanges(n, length int) []collapse.Range {
	rng := rand.New(rand.NewSource(3))
	out := make([]collapse.Range, n)
	for i := range out {
		start := rng.Intn(length / 4)
		vals := make([]float32, length-start-rng.Intn(length/4))
		for k := range vals {
			vals[k] = float32(k)*1e-3 + float32(rng.NormFloat64()*1e-2)
		}
		out[i] = collapse.Range{Start: start, Values: vals}
	}

	return out
}

func BenchmarkCollapse(b *testing.B) {
	ranges := benchRanges(100, 400)
	for name, c := range map[string]collapse.Collapser{
		"mean":     collapse.DefaultMeanConfig(),
		"derivate": collapse.DefaultDerivateConfig(),
		"merging":  collapse.DefaultMergingConfig(),
		"sock":     collapse.DefaultSockConfig(),
	} {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				c.Collapse(ranges, nil)
			}
		})
	}
}
