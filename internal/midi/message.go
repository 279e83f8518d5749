// Package midi implements the MIDI routing fabric: a wrapped message
// model over gitlab.com/gomidi/midi/v2, routes with an ordered
// processor chain, and the built-in processors (transpose,
// channel-filter, velocity-scale, arpeggiator, harmonizer, randomizer).
package midi

import (
	"gitlab.com/gomidi/midi/v2"
)

// Command identifies a channel-message's command independent of channel.
type Command int

const (
	CommandUnknown Command = iota
	CommandNoteOff
	CommandNoteOn
	CommandControlChange
	CommandPitchBend
	CommandPolyAftertouch
	CommandChannelAftertouch
	CommandProgramChange
)

// Message wraps a gomidi v2 message with the derived properties the
// router's processors and the synth's channel dispatch need without
// re-parsing raw bytes at every stage.
type Message struct {
	raw midi.Message

	Command  Command
	Channel  uint8
	Note     uint8
	Velocity uint8
	CC       uint8
	CCValue  uint8
	Bend     int16 // -8192..8191, 0 = center
	Pressure uint8
	Program  uint8

	SysEx []byte
}

// Wrap derives a Message's properties from a raw gomidi message.
func Wrap(raw midi.Message) Message {
	m := Message{raw: raw}

	var ch, key, vel, cc, ccVal, pressure, program uint8
	var bend int16

	switch {
	case raw.GetNoteOn(&ch, &key, &vel):
		m.Command, m.Channel, m.Note, m.Velocity = CommandNoteOn, ch, key, vel
	case raw.GetNoteOff(&ch, &key, &vel):
		m.Command, m.Channel, m.Note, m.Velocity = CommandNoteOff, ch, key, vel
	case raw.GetControlChange(&ch, &cc, &ccVal):
		m.Command, m.Channel, m.CC, m.CCValue = CommandControlChange, ch, cc, ccVal
	case raw.GetPitchBend(&ch, &bend, nil):
		m.Command, m.Channel, m.Bend = CommandPitchBend, ch, bend
	case raw.GetPolyAfterTouch(&ch, &key, &pressure):
		m.Command, m.Channel, m.Note, m.Pressure = CommandPolyAftertouch, ch, key, pressure
	case raw.GetAfterTouch(&ch, &pressure):
		m.Command, m.Channel, m.Pressure = CommandChannelAftertouch, ch, pressure
	case raw.GetProgramChange(&ch, &program):
		m.Command, m.Channel, m.Program = CommandProgramChange, ch, program
	default:
		if sx, ok := raw.SysEx(); ok {
			m.SysEx = sx
		}
	}
	return m
}

// IsSysEx reports whether this message carries system-exclusive bytes,
// in which case it bypasses every route's processor chain per the
// router's fixed policy.
func (m Message) IsSysEx() bool { return m.SysEx != nil }

// Raw returns the underlying gomidi message, e.g. for forwarding to a
// physical output port unmodified.
func (m Message) Raw() midi.Message { return m.raw }

// WithNote returns a copy of m with Note replaced and the raw bytes
// rebuilt, used by processors that transform a NoteOn/NoteOff.
func (m Message) WithNote(note uint8) Message {
	switch m.Command {
	case CommandNoteOn:
		m.raw = midi.NoteOn(m.Channel, note, m.Velocity)
	case CommandNoteOff:
		m.raw = midi.NoteOff(m.Channel, note)
	}
	m.Note = note
	return m
}

// WithVelocity returns a copy of m with Velocity replaced, rebuilding
// the raw NoteOn bytes (NoteOff carries no velocity in this model).
func (m Message) WithVelocity(vel uint8) Message {
	if m.Command == CommandNoteOn {
		m.raw = midi.NoteOn(m.Channel, m.Note, vel)
	}
	m.Velocity = vel
	return m
}

// WithChannel returns a copy of m retargeted to another channel.
func (m Message) WithChannel(ch uint8) Message {
	switch m.Command {
	case CommandNoteOn:
		m.raw = midi.NoteOn(ch, m.Note, m.Velocity)
	case CommandNoteOff:
		m.raw = midi.NoteOff(ch, m.Note)
	case CommandControlChange:
		m.raw = midi.ControlChange(ch, m.CC, m.CCValue)
	case CommandPitchBend:
		m.raw = midi.Pitchbend(ch, m.Bend)
	}
	m.Channel = ch
	return m
}

func clamp7(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
