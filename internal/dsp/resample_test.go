package dsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResamplerUnityRatioIsIdentity(t *testing.T) {
	src := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	dst := make([]float32, len(src)-1)
	r := NewResampler(1.0)
	n := r.Process(src, dst)
	require.Equal(t, len(dst), n)
	for i, v := range dst {
		require.InDelta(t, float32(i), v, 1e-6)
	}
}

func TestResamplerDriftFreeOverManyBlocks(t *testing.T) {
	src := make([]float32, 100000)
	for i := range src {
		src[i] = float32(i)
	}
	r := NewResampler(1.5)
	dst := make([]float32, 16)
	total := 0
	for pass := 0; pass < 100; pass++ {
		n := r.Process(src, dst)
		total += n
	}
	// position should have advanced by very close to total*1.5 regardless
	// of how many small block calls were made to get there.
	require.InDelta(t, float64(total)*1.5, r.Position(), 1.0)
}
