package stitch_test

import (
	"testing"

	"github.com/katalvlaran/cordrift/stitch"
)

func BenchmarkStitch(b *testing.B) {
	p := powerProfile(2000, 1)
	damage(p)
	data := derivateData()
	for name, s := range map[string]stitch.Stitcher{
		"derivate":      stitch.DefaultDerivateConfig(),
		"interpolation": stitch.DefaultInterpolationConfig(),
		"singlefit":     stitch.DefaultSingleFitConfig(),
	} {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				s.Stitch(p, data)
			}
		})
	}
}
