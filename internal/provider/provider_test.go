package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

func testFormat() format.AudioFormat {
	return format.AudioFormat{SampleRate: 48000, Channels: 1, Encoding: format.F32}
}

func TestStreamProviderReadExact(t *testing.T) {
	data := []float32{0, 1, 2, 3, 4}
	p := NewStreamProvider(testFormat(), data)
	dst := make([]float32, 3)
	n, err := p.Read(dst)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []float32{0, 1, 2}, dst)
}

func TestStreamProviderEndReached(t *testing.T) {
	data := []float32{0, 1}
	p := NewStreamProvider(testFormat(), data)
	ended := false
	p.OnEndReached(func() { ended = true })
	dst := make([]float32, 2)
	p.Read(dst)
	require.True(t, ended)
	n, err := p.Read(dst)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestStreamProviderSeek(t *testing.T) {
	data := []float32{0, 1, 2, 3}
	p := NewStreamProvider(testFormat(), data)
	require.NoError(t, p.Seek(2))
	dst := make([]float32, 2)
	p.Read(dst)
	require.Equal(t, []float32{2, 3}, dst)

	err := p.Seek(100)
	require.Error(t, err)
	require.True(t, isKind(err, apperr.KindInvalidArgument))
}

func TestSyntheticProviderNotSeekable(t *testing.T) {
	p := NewSyntheticProvider(testFormat(), SyntheticSine, 440, 1)
	err := p.Seek(0)
	require.Error(t, err)
	require.True(t, isKind(err, apperr.KindNotSeekable))
}

func TestSyntheticDCLevel(t *testing.T) {
	p := NewSyntheticProvider(testFormat(), SyntheticDC, 0, 0.5)
	dst := make([]float32, 4)
	p.Read(dst)
	for _, v := range dst {
		require.Equal(t, float32(0.5), v)
	}
}

func TestRingBufferDropOldest(t *testing.T) {
	r := newRingBufferDropOldest(4)
	r.write([]float32{1, 2, 3, 4, 5, 6})
	dst := make([]float32, 4)
	n, closed := r.readWithTimeout(dst, time.Millisecond)
	require.False(t, closed)
	require.Equal(t, 4, n)
	require.Equal(t, []float32{3, 4, 5, 6}, dst)
	require.Equal(t, int64(2), r.droppedCount())
}

func isKind(err error, k apperr.Kind) bool {
	e, ok := err.(*apperr.Error)
	return ok && e.Kind == k
}
