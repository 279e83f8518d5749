package synth

import "math"

const twoPi = 2 * math.Pi

// Waveform selects the unison layer's oscillator shape, grounded on the
// pack's own multi-waveform oscillator bank (sine/saw/square/triangle).
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSaw
	WaveSquare
	WaveTriangle
)

// sample evaluates one waveform cycle at phase radians.
func (w Waveform) sample(phase float64) float64 {
	p := math.Mod(phase, twoPi)
	if p < 0 {
		p += twoPi
	}
	switch w {
	case WaveSaw:
		return 1 - 2*p/twoPi
	case WaveSquare:
		if p < math.Pi {
			return 1
		}
		return -1
	case WaveTriangle:
		return 2*math.Abs(2*p/twoPi-1) - 1
	default:
		return math.Sin(p)
	}
}

// unison is one detuned, panned oscillator layer inside a voice.
type unison struct {
	detuneRatio float64
	pan         float64 // -1..1, 0 = center
	phase       float64
}

// render advances the oscillator by one sample at freq Hz / sampleRate
// and accumulates its equal-power-panned output into outL/outR.
func (u *unison) render(freq float64, waveform Waveform, sampleRate float64, outL, outR *float64) {
	s := waveform.sample(u.phase)
	angle := (u.pan + 1) / 2 * (math.Pi / 2)
	*outL += s * math.Cos(angle)
	*outR += s * math.Sin(angle)
	u.phase += twoPi * freq * u.detuneRatio / sampleRate
	if u.phase > twoPi {
		u.phase -= twoPi
	}
}
