package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPhaseVocoderProducesEnergyAtUnityStretch(t *testing.T) {
	const sampleRate = 48000
	const frameSize = 1024
	pv := NewPhaseVocoder(frameSize)

	frame := make([]float64, frameSize)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * 440 * float64(i) / sampleRate)
	}
	dst := make([]float32, pv.HopIn()*2)
	n := pv.ProcessFrame(frame, 1.0, dst)
	require.Greater(t, n, 0)

	var energy float64
	for i := 0; i < n; i++ {
		energy += float64(dst[i]) * float64(dst[i])
	}
	require.Greater(t, energy, 0.0)
}

func TestPhaseVocoderResetClearsState(t *testing.T) {
	pv := NewPhaseVocoder(512)
	frame := make([]float64, 512)
	for i := range frame {
		frame[i] = math.Sin(float64(i) * 0.1)
	}
	dst := make([]float32, 256)
	pv.ProcessFrame(frame, 1.0, dst)
	pv.Reset()
	for _, v := range pv.lastPhase {
		require.Equal(t, 0.0, v)
	}
	for _, v := range pv.outBuf {
		require.Equal(t, 0.0, v)
	}
}
