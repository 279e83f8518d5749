package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestIsPowerOfTwo(t *testing.T) {
	cases := map[int]bool{0: false, 1: true, 2: true, 3: false, 1024: true, 1023: false, -4: false}
	for n, want := range cases {
		require.Equal(t, want, IsPowerOfTwo(n), "n=%d", n)
	}
}

func TestFFTIFFTRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		exp := rapid.IntRange(1, 12).Draw(t, "exp")
		n := 1 << exp
		signal := rapid.SliceOfN(rapid.Float64Range(-1, 1), n, n).Draw(t, "signal")

		data := make([]Complex, n)
		for i, s := range signal {
			data[i] = Complex{Re: s}
		}
		plan := NewPlan(n, KernelAuto)
		plan.FFT(data)
		plan.IFFT(data)

		for i, s := range signal {
			if diff := math.Abs(data[i].Re - s); diff >= 1e-9 {
				t.Fatalf("round trip mismatch at %d: got %g want %g diff %g", i, data[i].Re, s, diff)
			}
		}
	})
}

func TestFFTKernelsAgree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		exp := rapid.IntRange(4, 10).Draw(t, "exp")
		n := 1 << exp
		signal := rapid.SliceOfN(rapid.Float64Range(-1, 1), n, n).Draw(t, "signal")

		scalarData := make([]Complex, n)
		wideData := make([]Complex, n)
		for i, s := range signal {
			scalarData[i] = Complex{Re: s}
			wideData[i] = Complex{Re: s}
		}
		NewPlan(n, KernelScalar).FFT(scalarData)
		NewPlan(n, KernelWide).FFT(wideData)

		for i := range scalarData {
			if math.Abs(scalarData[i].Re-wideData[i].Re) >= 1e-9 {
				t.Fatalf("Re mismatch at %d", i)
			}
			if math.Abs(scalarData[i].Im-wideData[i].Im) >= 1e-9 {
				t.Fatalf("Im mismatch at %d", i)
			}
		}
	})
}

func TestModRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float64Range(-1e6, 1e6).Draw(t, "x")
		m := rapid.Float64Range(1e-3, 1e6).Draw(t, "m")
		r := Mod(x, m)
		require.GreaterOrEqual(t, r, 0.0)
		require.Less(t, r, m)
	})
}

func TestPrincipalRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		theta := rapid.Float64Range(-1e4, 1e4).Draw(t, "theta")
		p := Principal(theta)
		require.Greater(t, p, -math.Pi)
		require.LessOrEqual(t, p, math.Pi)

		k := (theta - p) / (2 * math.Pi)
		require.InDelta(t, math.Round(k), k, 1e-6)
	})
}
