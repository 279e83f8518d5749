package player

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/audiograph/internal/format"
	"github.com/cbegin/audiograph/internal/provider"
)

func testFormat() format.AudioFormat {
	return format.AudioFormat{SampleRate: 48000, Channels: 1, Encoding: format.F32}
}

func TestPlayerStateMachine(t *testing.T) {
	p := NewSoundPlayer("p", provider.NewSyntheticProvider(testFormat(), provider.SyntheticDC, 0, 1), 1024)
	require.Equal(t, StateStopped, p.State())
	p.Play()
	require.Equal(t, StatePlaying, p.State())
	p.Pause()
	require.Equal(t, StatePaused, p.State())
	p.Play()
	require.Equal(t, StatePlaying, p.State())
	p.Stop()
	require.Equal(t, StateStopped, p.State())
}

func TestPlayerStoppedRendersSilence(t *testing.T) {
	p := NewSoundPlayer("p", provider.NewSyntheticProvider(testFormat(), provider.SyntheticDC, 0, 1), 1024)
	buf := make([]float32, 8)
	p.Render(buf, 2)
	for _, v := range buf {
		require.Equal(t, float32(0), v)
	}
}

func TestPlayerSpeedClamped(t *testing.T) {
	p := NewSoundPlayer("p", provider.NewSyntheticProvider(testFormat(), provider.SyntheticDC, 0, 1), 1024)
	p.SetSpeed(10)
	require.Equal(t, 4.0, p.Speed())
	p.SetSpeed(0.0)
	require.Equal(t, 0.25, p.Speed())
}

func TestPlayerPlaysDCSignal(t *testing.T) {
	data := []float32{0.5, 0.5, 0.5, 0.5}
	p := NewSoundPlayer("p", provider.NewStreamProvider(testFormat(), data), 1024)
	p.SetPanMethod(SurroundPan{Method: PanLinear})
	p.Play()
	buf := make([]float32, 8) // stereo, 4 frames
	p.Render(buf, 2)
	require.NotEqual(t, float32(0), buf[0])
}

func TestVBAPPicksNearestSpeakerPair(t *testing.T) {
	pan := SurroundPan{
		Method: PanVBAP,
		Speakers: []Speaker{
			{Angle: -1.0},
			{Angle: 0},
			{Angle: 1.0},
		},
		SourceAngle: 0,
	}
	dst := make([]float32, 3)
	pan.Apply([]float32{1}, 1, dst, 3)
	require.InDelta(t, 1.0, dst[1], 1e-6)
	require.InDelta(t, 0.0, dst[0], 1e-6)
	require.InDelta(t, 0.0, dst[2], 1e-6)
}
