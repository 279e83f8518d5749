package midi

import (
	"math/rand/v2"
)

// Transpose shifts NoteOn/NoteOff pitch by semitones, clamping the
// result to the valid 0..127 note range instead of wrapping.
type Transpose struct {
	Semitones int
}

func (t Transpose) Process(m Message) []Message {
	if m.Command != CommandNoteOn && m.Command != CommandNoteOff {
		return []Message{m}
	}
	return []Message{m.WithNote(clamp7(int(m.Note) + t.Semitones))}
}

// ChannelFilter drops any message whose channel does not match Channel.
type ChannelFilter struct {
	Channel uint8
}

func (f ChannelFilter) Process(m Message) []Message {
	if m.Channel != f.Channel {
		return nil
	}
	return []Message{m}
}

// VelocityScale multiplies NoteOn velocity by Factor, clamping to 1..127
// (a NoteOn with velocity 0 is conventionally a NoteOff in some
// encodings; this modifier never produces that ambiguity).
type VelocityScale struct {
	Factor float64
}

func (v VelocityScale) Process(m Message) []Message {
	if m.Command != CommandNoteOn {
		return []Message{m}
	}
	scaled := int(float64(m.Velocity) * v.Factor)
	if scaled < 1 {
		scaled = 1
	}
	if scaled > 127 {
		scaled = 127
	}
	return []Message{m.WithVelocity(uint8(scaled))}
}

// Harmonizer emits the incoming note plus one parallel note per
// configured interval (semitones above or below), each clamped to the
// valid note range.
type Harmonizer struct {
	Intervals []int
}

func (h Harmonizer) Process(m Message) []Message {
	if m.Command != CommandNoteOn && m.Command != CommandNoteOff {
		return []Message{m}
	}
	out := make([]Message, 0, len(h.Intervals)+1)
	out = append(out, m)
	for _, iv := range h.Intervals {
		out = append(out, m.WithNote(clamp7(int(m.Note)+iv)))
	}
	return out
}

// Randomizer jitters NoteOn velocity by up to ±VelocityJitter. It does
// not change or report message timing: TimingJitter is stored but not
// read by Process.
type Randomizer struct {
	VelocityJitter uint8 // max absolute velocity delta
	TimingJitter   int   // max absolute tick delta, informational only
}

func (r Randomizer) Process(m Message) []Message {
	if m.Command != CommandNoteOn || r.VelocityJitter == 0 {
		return []Message{m}
	}
	delta := 0
	if r.VelocityJitter > 0 {
		delta = rand.IntN(int(r.VelocityJitter)*2+1) - int(r.VelocityJitter)
	}
	v := int(m.Velocity) + delta
	if v < 1 {
		v = 1
	}
	if v > 127 {
		v = 127
	}
	return []Message{m.WithVelocity(uint8(v))}
}

// ArpeggiatorPattern selects how the arpeggiator orders its held notes.
type ArpeggiatorPattern int

const (
	ArpUp ArpeggiatorPattern = iota
	ArpDown
	ArpUpDown
)

// Arpeggiator holds a note list gated by NoteOn/NoteOff and emits one
// note per tick of its tempo clock, stepping through the list according
// to Pattern. Driven per audio block via Tick rather than a wall-clock
// timer, so it never blocks or allocates on the audio thread, matching
// the sample-accumulator tick-dispatch loop the rest of this module
// follows for time-driven state.
type Arpeggiator struct {
	Pattern   ArpeggiatorPattern
	RateHz    float64 // notes per second
	Velocity  uint8
	Channel   uint8

	held     []uint8
	step     int
	dir      int
	tickFrac float64

	emit func(Message)
}

// NewArpeggiator constructs an arpeggiator that calls emit for every
// note it produces; emit is typically a Route's internal injection
// point or a synth channel's NoteOn/NoteOff pair.
func NewArpeggiator(pattern ArpeggiatorPattern, rateHz float64, emit func(Message)) *Arpeggiator {
	return &Arpeggiator{Pattern: pattern, RateHz: rateHz, dir: 1, emit: emit}
}

// Process feeds NoteOn/NoteOff into the held-note list and swallows
// them; the arpeggiator emits its own NoteOn/NoteOff pairs from Tick.
func (a *Arpeggiator) Process(m Message) []Message {
	switch m.Command {
	case CommandNoteOn:
		a.addHeld(m.Note)
		a.Channel = m.Channel
		a.Velocity = m.Velocity
	case CommandNoteOff:
		a.removeHeld(m.Note)
	}
	return nil
}

func (a *Arpeggiator) addHeld(note uint8) {
	for _, n := range a.held {
		if n == note {
			return
		}
	}
	a.held = append(a.held, note)
}

func (a *Arpeggiator) removeHeld(note uint8) {
	for i, n := range a.held {
		if n == note {
			a.held = append(a.held[:i], a.held[i+1:]...)
			return
		}
	}
}

// Tick advances the arpeggiator's sample-accumulated clock by frames at
// sampleRate, emitting one note (with the prior note's NoteOff) for
// every tempo period elapsed.
func (a *Arpeggiator) Tick(frames, sampleRate int) {
	if len(a.held) == 0 || a.RateHz <= 0 {
		return
	}
	period := float64(sampleRate) / a.RateHz
	a.tickFrac += float64(frames)
	for a.tickFrac >= period {
		a.tickFrac -= period
		a.advance()
	}
}

func (a *Arpeggiator) advance() {
	note := a.nextNote()
	if a.emit == nil {
		return
	}
	a.emit(Message{Command: CommandNoteOn, Channel: a.Channel, Note: note, Velocity: a.Velocity})
	a.emit(Message{Command: CommandNoteOff, Channel: a.Channel, Note: note})
}

func (a *Arpeggiator) nextNote() uint8 {
	n := len(a.held)
	switch a.Pattern {
	case ArpDown:
		a.step = (a.step + 1) % n
		return a.held[n-1-a.step%n]
	case ArpUpDown:
		if a.step > n-1 {
			a.step = n - 1
		}
		note := a.held[a.step]
		if n > 1 {
			a.step += a.dir
			if a.step >= n-1 {
				a.step = n - 1
				a.dir = -1
			} else if a.step <= 0 {
				a.step = 0
				a.dir = 1
			}
		}
		return note
	default: // ArpUp
		note := a.held[a.step%n]
		a.step = (a.step + 1) % n
		return note
	}
}
