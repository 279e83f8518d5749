package synth

import (
	"sync"

	"github.com/cbegin/audiograph/internal/midi"
)

const channelCount = 16

// channel owns one MIDI channel's voice pool, instrument bank, and
// channel-wide expression state (pitch-bend, sustain latch).
type channel struct {
	mu            sync.Mutex
	bank          *InstrumentBank
	maxVoices     int
	voices        []*voice
	bendSemitones float64
	sustainDown   bool
	nextID        uint64
}

func newChannel(maxVoices int) *channel {
	return &channel{bank: DefaultInstrumentBank(), maxVoices: maxVoices}
}

// Synth is the 16-channel polyphonic synthesizer: voice allocation,
// ADSR, unison, filter modulation, and MPE expression routing. It
// implements midi.Destination so a Route can deliver directly into it.
type Synth struct {
	sampleRate int
	channels   [channelCount]*channel

	mpeMu       sync.Mutex
	mpeEnabled  bool
	noteToVoice map[uint8]*voice // MPE mode: note number -> active voice
}

// NewSynth constructs a synth with maxVoicesPerChannel-sized pools.
func NewSynth(sampleRate, maxVoicesPerChannel int) *Synth {
	s := &Synth{sampleRate: sampleRate, noteToVoice: map[uint8]*voice{}}
	for i := range s.channels {
		s.channels[i] = newChannel(maxVoicesPerChannel)
	}
	return s
}

// SetInstrument replaces a channel's mapping table.
func (s *Synth) SetInstrument(ch uint8, bank *InstrumentBank) {
	c := s.channels[ch%channelCount]
	c.mu.Lock()
	c.bank = bank
	c.mu.Unlock()
}

// SetMPEEnabled toggles MPE mode. Per spec, switching modes sends an
// implicit All-Notes-Off so no voice survives with the previous mode's
// routing assumptions.
func (s *Synth) SetMPEEnabled(enabled bool) {
	s.mpeMu.Lock()
	changed := s.mpeEnabled != enabled
	s.mpeEnabled = enabled
	s.mpeMu.Unlock()
	if changed {
		s.AllNotesOff()
	}
}

// AllNotesOff releases every voice on every channel immediately.
func (s *Synth) AllNotesOff() {
	for _, c := range s.channels {
		c.mu.Lock()
		for _, v := range c.voices {
			v.release()
		}
		c.mu.Unlock()
	}
	s.mpeMu.Lock()
	s.noteToVoice = map[uint8]*voice{}
	s.mpeMu.Unlock()
}

// Deliver implements midi.Destination, dispatching NoteOn/NoteOff/
// ControlChange/PitchBend/ChannelAftertouch to the target channel.
func (s *Synth) Deliver(m midi.Message) error {
	switch m.Command {
	case midi.CommandNoteOn:
		if m.Velocity == 0 {
			s.noteOff(m.Channel, m.Note)
		} else {
			s.noteOn(m.Channel, m.Note, m.Velocity)
		}
	case midi.CommandNoteOff:
		s.noteOff(m.Channel, m.Note)
	case midi.CommandControlChange:
		s.controlChange(m.Channel, m.CC, m.CCValue)
	case midi.CommandPitchBend:
		s.pitchBend(m.Channel, m.Bend)
	case midi.CommandChannelAftertouch:
		s.channelPressure(m.Channel, m.Pressure)
	}
	return nil
}

const (
	ccSustainPedal = 64
	ccTimbre       = 74
)

func (s *Synth) controlChange(ch, cc, value uint8) {
	switch cc {
	case ccSustainPedal:
		s.setSustain(ch, value >= 64)
	case ccTimbre:
		s.routeMPE(ch, func(v *voice) { v.timbre = float64(value) / 127 })
	}
}

func (s *Synth) setSustain(ch uint8, down bool) {
	c := s.channels[ch%channelCount]
	c.mu.Lock()
	defer c.mu.Unlock()
	wasDown := c.sustainDown
	c.sustainDown = down
	if wasDown && !down {
		for _, v := range c.voices {
			if v.sustained {
				v.sustained = false
				v.release()
			}
		}
	}
}

func (s *Synth) pitchBend(ch uint8, bend int16) {
	semitones := float64(bend) / 8192 * 2 // +-2 semitones, standard default bend range
	s.mpeMu.Lock()
	mpe := s.mpeEnabled
	s.mpeMu.Unlock()
	if mpe {
		s.routeMPE(ch, func(v *voice) { v.noteBendSemitones = semitones })
		return
	}
	c := s.channels[ch%channelCount]
	c.mu.Lock()
	c.bendSemitones = semitones
	c.mu.Unlock()
}

func (s *Synth) channelPressure(ch uint8, pressure uint8) {
	s.routeMPE(ch, func(v *voice) { v.pressure = float64(pressure) / 127 })
}

// routeMPE applies f to the voice currently bound to ch's note (MPE
// per-note routing); outside MPE mode it applies to every active voice
// on the channel, which is the conventional (non-MPE) interpretation of
// channel pressure/CC#74/pitch-bend.
func (s *Synth) routeMPE(ch uint8, f func(v *voice)) {
	s.mpeMu.Lock()
	mpe := s.mpeEnabled
	s.mpeMu.Unlock()
	if mpe {
		s.mpeMu.Lock()
		for _, v := range s.noteToVoice {
			if v.channel == ch {
				f(v)
			}
		}
		s.mpeMu.Unlock()
		return
	}
	c := s.channels[ch%channelCount]
	c.mu.Lock()
	for _, v := range c.voices {
		f(v)
	}
	c.mu.Unlock()
}

func (s *Synth) noteOn(ch, note, velocity uint8) {
	c := s.channels[ch%channelCount]
	c.mu.Lock()
	def, ok := c.bank.Resolve(note, velocity)
	if !ok {
		c.mu.Unlock()
		return
	}
	if len(c.voices) >= c.maxVoices {
		c.steal()
	}
	c.nextID++
	v := newVoice(c.nextID, note, velocity, ch, def, s.sampleRate)
	c.voices = append(c.voices, v)
	c.mu.Unlock()

	s.mpeMu.Lock()
	if s.mpeEnabled {
		s.noteToVoice[note] = v
	}
	s.mpeMu.Unlock()
}

// steal removes the oldest releasing voice to make room for a new
// note; if none is releasing, it falls back to the oldest voice of any
// state so NoteOn always succeeds once the pool is full.
func (c *channel) steal() {
	for i, v := range c.voices {
		if v.releasing {
			c.voices = append(c.voices[:i], c.voices[i+1:]...)
			return
		}
	}
	if len(c.voices) > 0 {
		c.voices = c.voices[1:]
	}
}

func (s *Synth) noteOff(ch, note uint8) {
	c := s.channels[ch%channelCount]
	c.mu.Lock()
	for _, v := range c.voices {
		if v.note == note && !v.releasing {
			if c.sustainDown {
				v.sustained = true
			} else {
				v.release()
			}
		}
	}
	c.mu.Unlock()

	s.mpeMu.Lock()
	if s.mpeEnabled {
		delete(s.noteToVoice, note)
	}
	s.mpeMu.Unlock()
}

// Render mixes every active voice on every channel into out (stereo
// interleaved unless channels==1), then reaps finished voices.
func (s *Synth) Render(out []float32, channels int) {
	for i := range out {
		out[i] = 0
	}
	for _, c := range s.channels {
		c.mu.Lock()
		live := c.voices[:0]
		for _, v := range c.voices {
			v.render(out, channels, s.sampleRate, c.bendSemitones)
			if !v.finished() {
				live = append(live, v)
			}
		}
		c.voices = live
		c.mu.Unlock()
	}
}

// ActiveVoiceCount returns the number of voices currently in flight
// across every channel, mainly useful for tests and diagnostics.
func (s *Synth) ActiveVoiceCount() int {
	n := 0
	for _, c := range s.channels {
		c.mu.Lock()
		n += len(c.voices)
		c.mu.Unlock()
	}
	return n
}
