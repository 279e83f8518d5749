package dsp

import "math"

// BiquadType selects the filter response computed from (cutoff, Q,
// sample-rate) using the standard Audio EQ Cookbook coefficient forms.
type BiquadType int

const (
	BiquadLowPass BiquadType = iota
	BiquadHighPass
	BiquadBandPass
	BiquadNotch
	BiquadPeaking
	BiquadLowShelf
	BiquadHighShelf
)

// Biquad is a two-pole, two-zero direct-form-II filter with independent
// per-channel state, so one coefficient set can process an interleaved
// multi-channel block without cross-talk between channels.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64 // a0 is normalized to 1
	z1, z2     []float64
}

// NewBiquad computes coefficients for typ at the given cutoff (Hz), Q,
// sample rate and gain (dB, used only by the shelf/peaking types).
func NewBiquad(typ BiquadType, cutoff, q float64, sampleRate int, gainDB float64, channels int) *Biquad {
	bq := &Biquad{z1: make([]float64, channels), z2: make([]float64, channels)}
	bq.SetParams(typ, cutoff, q, sampleRate, gainDB)
	return bq
}

// SetParams recomputes the filter's coefficients in place, preserving
// per-channel state (a parameter change does not reset history).
func (b *Biquad) SetParams(typ BiquadType, cutoff, q float64, sampleRate int, gainDB float64) {
	if q <= 0 {
		q = 0.707
	}
	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosw0 := math.Cos(w0)
	sinw0 := math.Sin(w0)
	alpha := sinw0 / (2 * q)
	A := math.Pow(10, gainDB/40)

	var a0, a1, a2, b0, b1, b2 float64
	switch typ {
	case BiquadHighPass:
		b0 = (1 + cosw0) / 2
		b1 = -(1 + cosw0)
		b2 = (1 + cosw0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	case BiquadBandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	case BiquadNotch:
		b0 = 1
		b1 = -2 * cosw0
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	case BiquadPeaking:
		b0 = 1 + alpha*A
		b1 = -2 * cosw0
		b2 = 1 - alpha*A
		a0 = 1 + alpha/A
		a1 = -2 * cosw0
		a2 = 1 - alpha/A
	case BiquadLowShelf:
		sq := math.Sqrt(A)
		b0 = A * ((A + 1) - (A-1)*cosw0 + 2*sq*alpha)
		b1 = 2 * A * ((A - 1) - (A+1)*cosw0)
		b2 = A * ((A + 1) - (A-1)*cosw0 - 2*sq*alpha)
		a0 = (A + 1) + (A-1)*cosw0 + 2*sq*alpha
		a1 = -2 * ((A - 1) + (A+1)*cosw0)
		a2 = (A + 1) + (A-1)*cosw0 - 2*sq*alpha
	case BiquadHighShelf:
		sq := math.Sqrt(A)
		b0 = A * ((A + 1) + (A-1)*cosw0 + 2*sq*alpha)
		b1 = -2 * A * ((A - 1) + (A+1)*cosw0)
		b2 = A * ((A + 1) + (A-1)*cosw0 - 2*sq*alpha)
		a0 = (A + 1) - (A-1)*cosw0 + 2*sq*alpha
		a1 = 2 * ((A - 1) - (A+1)*cosw0)
		a2 = (A + 1) - (A-1)*cosw0 - 2*sq*alpha
	default: // BiquadLowPass
		b0 = (1 - cosw0) / 2
		b1 = 1 - cosw0
		b2 = (1 - cosw0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosw0
		a2 = 1 - alpha
	}
	b.b0, b.b1, b.b2 = b0/a0, b1/a0, b2/a0
	b.a1, b.a2 = a1/a0, a2/a0
}

// ProcessSample filters one sample on channel ch using direct-form-II
// transposed state, and returns the filtered value.
func (b *Biquad) ProcessSample(x float64, ch int) float64 {
	z1, z2 := b.z1[ch], b.z2[ch]
	y := b.b0*x + z1
	z1 = b.b1*x - b.a1*y + z2
	z2 = b.b2*x - b.a2*y
	b.z1[ch], b.z2[ch] = z1, z2
	return y
}

// Process filters an interleaved block in place.
func (b *Biquad) Process(buf []float32, channels int) {
	for i := 0; i < len(buf); i += channels {
		for ch := 0; ch < channels; ch++ {
			buf[i+ch] = float32(b.ProcessSample(float64(buf[i+ch]), ch))
		}
	}
}

// Reset clears all per-channel filter state.
func (b *Biquad) Reset() {
	for i := range b.z1 {
		b.z1[i] = 0
		b.z2[i] = 0
	}
}
