package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWindowSizeOne(t *testing.T) {
	for _, fn := range []WindowFunc{WindowHann, WindowHamming, WindowBlackman} {
		w := Window(fn, 1)
		require.Equal(t, []float64{1.0}, w)
	}
}

func TestHammingFirstSample(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 4096).Draw(t, "n")
		w := Window(WindowHamming, n)
		alpha, beta := WindowAlphaBeta(WindowHamming)
		require.InDelta(t, alpha-beta, w[0], 1e-12)
	})
}

func TestWindowSymmetry(t *testing.T) {
	for _, fn := range []WindowFunc{WindowHann, WindowHamming, WindowBlackman} {
		w := Window(fn, 256)
		for i := 0; i < len(w); i++ {
			j := len(w) - 1 - i
			if math.Abs(w[i]-w[j]) > 1e-12 {
				t.Fatalf("window %v not symmetric at %d/%d: %g vs %g", fn, i, j, w[i], w[j])
			}
		}
	}
}
