package synth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/audiograph/internal/midi"
)

func TestNoteOnProducesSound(t *testing.T) {
	s := NewSynth(48000, 8)
	require.NoError(t, s.Deliver(midi.Message{Command: midi.CommandNoteOn, Channel: 0, Note: 60, Velocity: 100}))

	buf := make([]float32, 256)
	for i := 0; i < 50; i++ {
		s.Render(buf, 2)
	}
	require.Equal(t, 1, s.ActiveVoiceCount())

	nonZero := false
	for _, v := range buf {
		if v != 0 {
			nonZero = true
			break
		}
	}
	require.True(t, nonZero)
}

func TestNoteOffReleasesAndVoiceIsReaped(t *testing.T) {
	s := NewSynth(48000, 8)
	bank := NewInstrumentBank()
	bank.Map(0, 127, 0, 127, VoiceDef{
		Unison: []UnisonLayerDef{{DetuneRatio: 1, Waveform: WaveSine}},
		Amp:    ADSRParams{AttackSec: 0.0001, DecaySec: 0.0001, SustainLvl: 0.5, ReleaseSec: 0.0001},
	})
	s.SetInstrument(0, bank)

	require.NoError(t, s.Deliver(midi.Message{Command: midi.CommandNoteOn, Channel: 0, Note: 60, Velocity: 100}))
	buf := make([]float32, 64)
	s.Render(buf, 2)
	require.Equal(t, 1, s.ActiveVoiceCount())

	require.NoError(t, s.Deliver(midi.Message{Command: midi.CommandNoteOff, Channel: 0, Note: 60}))
	for i := 0; i < 1000; i++ {
		s.Render(buf, 2)
	}
	require.Equal(t, 0, s.ActiveVoiceCount())
}

func TestSustainPedalHoldsNoteUntilRelease(t *testing.T) {
	s := NewSynth(48000, 8)
	s.Deliver(midi.Message{Command: midi.CommandControlChange, Channel: 0, CC: ccSustainPedal, CCValue: 127})
	s.Deliver(midi.Message{Command: midi.CommandNoteOn, Channel: 0, Note: 60, Velocity: 100})
	s.Deliver(midi.Message{Command: midi.CommandNoteOff, Channel: 0, Note: 60})

	require.Equal(t, 1, s.ActiveVoiceCount())
	require.True(t, s.channels[0].voices[0].sustained)

	s.Deliver(midi.Message{Command: midi.CommandControlChange, Channel: 0, CC: ccSustainPedal, CCValue: 0})
	require.True(t, s.channels[0].voices[0].releasing)
}

func TestVoiceStealingWhenPoolFull(t *testing.T) {
	s := NewSynth(48000, 2)
	s.Deliver(midi.Message{Command: midi.CommandNoteOn, Channel: 0, Note: 60, Velocity: 100})
	s.Deliver(midi.Message{Command: midi.CommandNoteOff, Channel: 0, Note: 60}) // now releasing
	s.Deliver(midi.Message{Command: midi.CommandNoteOn, Channel: 0, Note: 64, Velocity: 100})
	require.Equal(t, 2, s.ActiveVoiceCount())

	s.Deliver(midi.Message{Command: midi.CommandNoteOn, Channel: 0, Note: 67, Velocity: 100})
	require.Equal(t, 2, s.ActiveVoiceCount(), "pool should stay at its cap, stealing the releasing voice")
	for _, v := range s.channels[0].voices {
		require.NotEqual(t, uint8(60), v.note, "the releasing voice for note 60 should have been stolen")
	}
}

func TestMPEModeSwitchSendsAllNotesOff(t *testing.T) {
	s := NewSynth(48000, 8)
	s.Deliver(midi.Message{Command: midi.CommandNoteOn, Channel: 0, Note: 60, Velocity: 100})
	require.Equal(t, 1, s.ActiveVoiceCount())

	s.SetMPEEnabled(true)
	require.True(t, s.channels[0].voices[0].releasing)
}

func TestEnvelopeReleaseStartsFromCurrentLevelNotSustain(t *testing.T) {
	e := NewEnvelope(ADSRParams{AttackSec: 0.001, DecaySec: 10, SustainLvl: 0.2, ReleaseSec: 1})
	for i := 0; i < 10; i++ {
		e.Advance(48000)
	}
	levelAtRelease := e.Level()
	require.Greater(t, levelAtRelease, 0.2, "still in attack, above sustain level")
	e.Release()
	next := e.Advance(48000)
	require.Less(t, next, levelAtRelease)
	require.Greater(t, next, 0.0)
}
