package dsp

import "math"

// WindowFunc names a window family.
type WindowFunc int

const (
	WindowHann WindowFunc = iota
	WindowHamming
	WindowBlackman
)

// Window returns the window of the given family and size. Size 1
// always returns [1.0]; otherwise w[n] = alpha - beta*cos(2*pi*n/(N-1))
// for Hann/Hamming, and the three-term Blackman form.
func Window(fn WindowFunc, size int) []float64 {
	w := make([]float64, size)
	if size == 1 {
		w[0] = 1.0
		return w
	}
	denom := float64(size - 1)
	switch fn {
	case WindowHamming:
		const alpha, beta = 0.54, 0.46
		for n := range w {
			w[n] = alpha - beta*math.Cos(2*math.Pi*float64(n)/denom)
		}
	case WindowBlackman:
		const a0, a1, a2 = 0.42, 0.5, 0.08
		for n := range w {
			x := float64(n) / denom
			w[n] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
		}
	default: // WindowHann
		const alpha, beta = 0.5, 0.5
		for n := range w {
			w[n] = alpha - beta*math.Cos(2*math.Pi*float64(n)/denom)
		}
	}
	return w
}

// WindowAlphaBeta returns the canonical (alpha, beta) pair for a family,
// used by tests asserting w[0] == alpha - beta.
func WindowAlphaBeta(fn WindowFunc) (alpha, beta float64) {
	switch fn {
	case WindowHamming:
		return 0.54, 0.46
	case WindowBlackman:
		return 0.42, 0.5 // a0, a1; w[0] = a0 - a1 + a2, callers combine with Window
	default:
		return 0.5, 0.5
	}
}
