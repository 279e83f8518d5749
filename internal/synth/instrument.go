package synth

// UnisonLayerDef describes one oscillator layer of a voice definition.
type UnisonLayerDef struct {
	DetuneRatio float64 // multiplies the voice's base frequency
	Pan         float64 // -1..1
	Waveform    Waveform
}

// VoiceDef is what a NoteOn resolves to through an instrument's mapping
// table: the unison layer set, amplitude envelope, and optional filter
// + filter envelope applied to the summed unison signal.
type VoiceDef struct {
	Unison []UnisonLayerDef
	Amp    ADSRParams

	FilterEnabled bool
	FilterQ       float64
	FilterEnv     ADSRParams
}

// mappingEntry binds one note/velocity rectangle to a VoiceDef.
type mappingEntry struct {
	noteLo, noteHi         uint8
	velocityLo, velocityHi uint8
	def                    VoiceDef
}

// InstrumentBank resolves (note, velocity) to a VoiceDef through an
// ordered note-range x velocity-range mapping table; the first matching
// entry wins, mirroring a conventional multi-sample keymap.
type InstrumentBank struct {
	entries []mappingEntry
}

// NewInstrumentBank constructs an empty bank.
func NewInstrumentBank() *InstrumentBank {
	return &InstrumentBank{}
}

// Map registers a VoiceDef for the given inclusive note/velocity ranges.
func (b *InstrumentBank) Map(noteLo, noteHi, velLo, velHi uint8, def VoiceDef) {
	b.entries = append(b.entries, mappingEntry{noteLo, noteHi, velLo, velHi, def})
}

// Resolve finds the first mapping entry covering (note, velocity). ok
// is false if no entry matches, in which case NoteOn produces no voice.
func (b *InstrumentBank) Resolve(note, velocity uint8) (VoiceDef, bool) {
	for _, e := range b.entries {
		if note >= e.noteLo && note <= e.noteHi && velocity >= e.velocityLo && velocity <= e.velocityHi {
			return e.def, true
		}
	}
	return VoiceDef{}, false
}

// DefaultInstrumentBank returns a single-layer sine-wave bank covering
// the full note and velocity range, a reasonable default for a channel
// with no explicit patch loaded.
func DefaultInstrumentBank() *InstrumentBank {
	b := NewInstrumentBank()
	b.Map(0, 127, 0, 127, VoiceDef{
		Unison: []UnisonLayerDef{{DetuneRatio: 1.0, Pan: 0, Waveform: WaveSine}},
		Amp:    ADSRParams{AttackSec: 0.005, DecaySec: 0.12, SustainLvl: 0.8, ReleaseSec: 0.2},
	})
	return b
}
