package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestS16RoundTrip(t *testing.T) {
	raw := make([]byte, 2)
	for _, x := range []float32{0, 0.5, -0.5, 1, -1, 0.999} {
		EncodeFromF32(raw, 0, S16, x)
		got := DecodeToF32(raw, 0, S16)
		require.InDelta(t, float64(x), float64(got), 1.0/32768+1e-6)
	}
}

func TestU8ZeroPoint(t *testing.T) {
	raw := make([]byte, 1)
	EncodeFromF32(raw, 0, U8, 0)
	require.Equal(t, byte(128), raw[0])
	require.InDelta(t, 0.0, float64(DecodeToF32(raw, 0, U8)), 1.0/128)
}

func TestS24SignExtension(t *testing.T) {
	raw := make([]byte, 3)
	EncodeFromF32(raw, 0, S24, -1.0)
	got := DecodeToF32(raw, 0, S24)
	require.InDelta(t, -1.0, float64(got), 1e-4)
}

func TestDecodeEncodeBlockRoundTrip(t *testing.T) {
	src := []float32{0, 0.25, -0.25, 0.75, -0.75, 1, -1}
	for _, enc := range []Encoding{U8, S16, S24, S32, F32} {
		raw := make([]byte, len(src)*BytesPerSample(enc))
		EncodeBlock(src, enc, raw)
		dst := make([]float32, len(src))
		DecodeBlock(raw, enc, dst)
		tol := float32(0.01)
		if enc == F32 {
			tol = 1e-7
		}
		for i := range src {
			require.InDelta(t, float64(src[i]), float64(dst[i]), float64(tol), "encoding=%v idx=%d", enc, i)
		}
	}
}

func TestMixMonoStereoRoundTrip(t *testing.T) {
	mono := []float32{0.4}
	stereo := make([]float32, 2)
	Mix(mono, 1, stereo, 2)
	require.Equal(t, float32(0.4), stereo[0])
	require.Equal(t, float32(0.4), stereo[1])

	back := make([]float32, 1)
	Mix(stereo, 2, back, 1)
	require.InDelta(t, 0.4, float64(back[0]), 1e-6)
}

func TestInterleaveDeinterleave(t *testing.T) {
	src := []float32{1, 10, 2, 20, 3, 30}
	chans := [][]float32{make([]float32, 3), make([]float32, 3)}
	Deinterleave(src, 2, chans)
	require.Equal(t, []float32{1, 2, 3}, chans[0])
	require.Equal(t, []float32{10, 20, 30}, chans[1])

	out := make([]float32, 6)
	Interleave(chans, 2, out)
	require.Equal(t, src, out)
}
