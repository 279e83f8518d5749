package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/audiograph/internal/format"
	"github.com/cbegin/audiograph/internal/midi"
	"github.com/cbegin/audiograph/internal/provider"
)

func stereoFmt() format.AudioFormat {
	return format.AudioFormat{SampleRate: 48000, Channels: 2, Encoding: format.F32}
}

func constData(n int, v float32) []float32 {
	d := make([]float32, n)
	for i := range d {
		d[i] = v
	}
	return d
}

func TestTempoMapRoundTrip(t *testing.T) {
	tm := NewTempoMap(480, []TempoMarker{{Tick: 0, MicrosPerQuarter: 500000}})
	// At 120 BPM, 480 ticks = 1 quarter note = 0.5s.
	require.InDelta(t, 0.5, tm.TickToSeconds(480), 1e-9)
	require.InDelta(t, 480, float64(tm.SecondsToTick(0.5)), 1)
}

func TestTempoMapWithMultipleMarkers(t *testing.T) {
	tm := NewTempoMap(480, []TempoMarker{
		{Tick: 0, MicrosPerQuarter: 500000},   // 120 BPM
		{Tick: 960, MicrosPerQuarter: 1000000}, // drops to 60 BPM after 2 quarters
	})
	// First 960 ticks (2 quarters) at 120 BPM = 1.0s.
	require.InDelta(t, 1.0, tm.TickToSeconds(960), 1e-9)
	// One more quarter at 60 BPM = 1.0s more.
	require.InDelta(t, 2.0, tm.TickToSeconds(1440), 1e-9)
}

func TestAudioSegmentRendersWithinWindow(t *testing.T) {
	prov := provider.NewStreamProvider(stereoFmt(), constData(2000, 0.5))
	seg := NewAudioSegment(prov, 1024)
	seg.TimelineStart = 0
	seg.TimelineDuration = 1.0
	seg.Volume = 1.0

	out := make([]float32, 100*2)
	seg.render(0, 100.0/48000, 48000, 2, out)
	require.NotEqual(t, float32(0), out[0])
}

func TestAudioSegmentSilentOutsideItsWindow(t *testing.T) {
	prov := provider.NewStreamProvider(stereoFmt(), constData(2000, 0.5))
	seg := NewAudioSegment(prov, 1024)
	seg.TimelineStart = 10.0
	seg.TimelineDuration = 1.0

	out := make([]float32, 100*2)
	seg.render(0, 100.0/48000, 48000, 2, out)
	for _, v := range out {
		require.Equal(t, float32(0), v)
	}
}

func TestFadeInRampsFromSilence(t *testing.T) {
	prov := provider.NewStreamProvider(stereoFmt(), constData(96000, 1.0))
	seg := NewAudioSegment(prov, 1024)
	seg.TimelineStart = 0
	seg.TimelineDuration = 1.0
	seg.FadeInSec = 0.5
	seg.FadeInCurve = FadeLinear

	frames := 48000 // 1 second
	out := make([]float32, frames*2)
	seg.render(0, 1.0, 48000, 2, out)

	require.InDelta(t, 0, out[0], 1e-3)
	// Midpoint of the fade-in (0.25s) should be roughly half of the
	// fully-faded-in level (the stereo downmix pan splits unity input
	// to ~0.707 per channel before the fade multiplier applies).
	mid := int(0.25 * 48000)
	require.InDelta(t, 0.3536, out[mid*2], 0.05)
}

func TestTrackMuteSilencesOutput(t *testing.T) {
	prov := provider.NewStreamProvider(stereoFmt(), constData(2000, 1.0))
	seg := NewAudioSegment(prov, 1024)
	seg.TimelineDuration = 1.0

	track := NewTrack("t")
	track.AddSegment(seg)
	track.Muted = true

	out := make([]float32, 100*2)
	track.render(0, 100.0/48000, 48000, 2, true, out)
	for _, v := range out {
		require.Equal(t, float32(0), v)
	}
}

func TestSoloMutesNonSoloedTracks(t *testing.T) {
	c := NewComposition(48000, 2, 480)
	p1 := provider.NewStreamProvider(stereoFmt(), constData(96000, 1.0))
	p2 := provider.NewStreamProvider(stereoFmt(), constData(96000, 1.0))

	t1 := c.AddTrack("solo")
	seg1 := NewAudioSegment(p1, 1024)
	seg1.TimelineDuration = 2.0
	t1.AddSegment(seg1)
	t1.Soloed = true

	t2 := c.AddTrack("other")
	seg2 := NewAudioSegment(p2, 1024)
	seg2.TimelineDuration = 2.0
	t2.AddSegment(seg2)

	out := c.Render(0, 100.0/48000)
	require.NotEmpty(t, out)
	require.NotEqual(t, float32(0), out[0], "soloed track should be audible")
}

type recordingDest struct {
	notes []uint8
}

func (d *recordingDest) Deliver(m midi.Message) error {
	if m.Command == midi.CommandNoteOn {
		d.notes = append(d.notes, m.Note)
	}
	return nil
}

func TestMidiTrackForwardsEventsInWindow(t *testing.T) {
	dest := &recordingDest{}
	c := NewComposition(48000, 2, 480)
	mt := c.AddMidiTrack("midi", dest)
	seg := &MidiSegment{TimelineDuration: 10}
	seg.Events = []TickEvent{
		{Tick: 0, Msg: midi.Message{Command: midi.CommandNoteOn, Note: 60}},
		{Tick: 960, Msg: midi.Message{Command: midi.CommandNoteOn, Note: 64}},
	}
	mt.AddSegment(seg)

	c.Render(0, 0.5) // 0.5s at 120 BPM default = 480 ticks, covers only the first event
	require.Equal(t, []uint8{60}, dest.notes)
}

func TestCompositionCalculateDuration(t *testing.T) {
	c := NewComposition(48000, 2, 480)
	tr := c.AddTrack("t")
	seg := NewAudioSegment(provider.NewStreamProvider(stereoFmt(), constData(100, 0)), 1024)
	seg.TimelineStart = 3
	seg.TimelineDuration = 4
	tr.AddSegment(seg)
	require.Equal(t, 7.0, c.CalculateDuration())
}
