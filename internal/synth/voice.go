package synth

import (
	"math"

	"github.com/cbegin/audiograph/internal/dsp"
	"github.com/cbegin/audiograph/internal/lfo"
)

// voice is a synthesizer note-in-flight: unison layers, amplitude
// envelope, optional filter + filter envelope, and the per-note MPE
// expression state a channel's MPE routing writes into.
type voice struct {
	id       uint64
	note     uint8
	velocity uint8
	channel  uint8

	baseFreq float64
	layers   []unison
	def      VoiceDef

	ampEnv    *Envelope
	filterEnv *Envelope
	filter    *dsp.Biquad

	pitchLFO  lfo.LFO
	ampLFO    lfo.LFO
	filterLFO lfo.LFO

	// MPE per-note expression, written by the owning channel's message
	// routing and read every render block.
	noteBendSemitones float64
	pressure          float64 // 0..1
	timbre            float64 // 0..1 (CC#74)

	sustained bool // held by the sustain pedal, not yet released
	releasing bool
}

func midiNoteToFreq(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

func newVoice(id uint64, note, velocity, channel uint8, def VoiceDef, sampleRate int) *voice {
	v := &voice{
		id:       id,
		note:     note,
		velocity: velocity,
		channel:  channel,
		baseFreq: midiNoteToFreq(note),
		def:      def,
		ampEnv:   NewEnvelope(def.Amp),
	}
	v.layers = make([]unison, len(def.Unison))
	for i, l := range def.Unison {
		v.layers[i] = unison{detuneRatio: l.DetuneRatio, pan: l.Pan}
	}
	if def.FilterEnabled {
		v.filterEnv = NewEnvelope(def.FilterEnv)
		v.filter = dsp.NewBiquad(dsp.BiquadLowPass, 2000, filterQOrDefault(def.FilterQ), sampleRate, 0, 2)
	}
	return v
}

func filterQOrDefault(q float64) float64 {
	if q <= 0 {
		return 0.707
	}
	return q
}

// release moves the voice to its release phase; per spec a voice is
// eligible for destruction once Finished reports true.
func (v *voice) release() {
	v.releasing = true
	v.ampEnv.Release()
	if v.filterEnv != nil {
		v.filterEnv.Release()
	}
}

// finished reports whether the voice's amplitude envelope has decayed
// to silence and can be removed from its channel's pool.
func (v *voice) finished() bool { return v.ampEnv.Finished() }

// channelBendSemitones and sampleRate are supplied by the owning
// channel since they are shared across every voice it holds.
func (v *voice) render(out []float32, channels int, sampleRate int, channelBendSemitones float64) {
	frames := len(out) / channels
	sr := float64(sampleRate)
	unisonScale := 1.0 / math.Sqrt(float64(len(v.layers)))
	bendRatio := math.Pow(2, (v.noteBendSemitones+channelBendSemitones)/12)

	for f := 0; f < frames; f++ {
		ampLevel := v.ampEnv.Advance(sr)
		var filterEnvLevel float64
		if v.filterEnv != nil {
			filterEnvLevel = v.filterEnv.Advance(sr)
		}

		pitchMod := v.pitchLFO.Sample(sr) // semitones
		ampMod := v.ampLFO.Sample(sr)     // gain offset
		filterMod := v.filterLFO.Sample(sr)

		freqMul := bendRatio
		if pitchMod != 0 {
			freqMul *= math.Pow(2, pitchMod/12)
		}

		var l, r float64
		for i := range v.layers {
			v.layers[i].render(v.baseFreq*freqMul, v.def.Unison[i].Waveform, sr, &l, &r)
		}
		l *= unisonScale
		r *= unisonScale

		if v.filter != nil {
			cutoff := 200 + float64(v.velocity)/127*4000 + v.pressure*2000 + v.timbre*3000 + (filterEnvLevel+filterMod)*8000
			if cutoff < 20 {
				cutoff = 20
			}
			if cutoff > sr/2-1 {
				cutoff = sr/2 - 1
			}
			v.filter.SetParams(dsp.BiquadLowPass, cutoff, filterQOrDefault(v.def.FilterQ), sampleRate, 0)
			l = v.filter.ProcessSample(l, 0)
			r = v.filter.ProcessSample(r, 1)
		}

		gain := (ampLevel) * (1 + ampMod)
		l *= gain
		r *= gain

		if channels >= 2 {
			out[f*channels] += float32(l)
			out[f*channels+1] += float32(r)
		} else {
			out[f*channels] += float32((l + r) / 2)
		}
	}
}
