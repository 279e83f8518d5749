package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBiquadLowPassAttenuatesHighFreq(t *testing.T) {
	const sampleRate = 48000
	bq := NewBiquad(BiquadLowPass, 200, 0.707, sampleRate, 0, 1)

	rmsAt := func(freq float64) float64 {
		bq.Reset()
		sum := 0.0
		const n = 4096
		for i := 0; i < n; i++ {
			x := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
			y := bq.ProcessSample(x, 0)
			if i > n/2 { // settle past the filter's transient
				sum += y * y
			}
		}
		return math.Sqrt(sum / (n / 2))
	}

	low := rmsAt(50)
	high := rmsAt(8000)
	require.Greater(t, low, high)
}

func TestBiquadPerChannelIndependence(t *testing.T) {
	bq := NewBiquad(BiquadLowPass, 1000, 0.707, 48000, 0, 2)
	buf := []float32{1, 0, 0, 0, 0, 0}
	bq.Process(buf, 2)
	// channel 1 never received a nonzero impulse, so it must stay at 0.
	require.Equal(t, float32(0), buf[1])
	require.Equal(t, float32(0), buf[3])
	require.Equal(t, float32(0), buf[5])
}
