package timeline

import (
	"github.com/cbegin/audiograph/internal/graph"
	"github.com/cbegin/audiograph/internal/midi"
)

// Composition is a set of audio and MIDI tracks sharing one tempo map,
// rendered window-by-window by the host's transport.
type Composition struct {
	SampleRate int
	Channels   int

	tracks     []*Track
	midiTracks []*MidiTrack
	tempo      *TempoMap
}

// NewComposition constructs an empty composition at sampleRate/channels
// with a 120 BPM default tempo until tempo markers are set.
func NewComposition(sampleRate, channels, ticksPerQuarter int) *Composition {
	return &Composition{
		SampleRate: sampleRate,
		Channels:   channels,
		tempo:      NewTempoMap(ticksPerQuarter, nil),
	}
}

// SetTempoMap replaces the composition's tempo markers.
func (c *Composition) SetTempoMap(ticksPerQuarter int, markers []TempoMarker) {
	c.tempo = NewTempoMap(ticksPerQuarter, markers)
}

// AddTrack appends a new audio track and returns it.
func (c *Composition) AddTrack(name string) *Track {
	t := NewTrack(name)
	c.tracks = append(c.tracks, t)
	return t
}

// AddMidiTrack appends a new MIDI track targeting dest and returns it.
func (c *Composition) AddMidiTrack(name string, dest midi.Destination) *MidiTrack {
	t := NewMidiTrack(name, dest)
	c.midiTracks = append(c.midiTracks, t)
	return t
}

// RemoveTrack detaches an audio track by identity.
func (c *Composition) RemoveTrack(t *Track) {
	for i, tr := range c.tracks {
		if tr == t {
			c.tracks = append(c.tracks[:i], c.tracks[i+1:]...)
			return
		}
	}
}

// RemoveMidiTrack detaches a MIDI track by identity.
func (c *Composition) RemoveMidiTrack(t *MidiTrack) {
	for i, tr := range c.midiTracks {
		if tr == t {
			c.midiTracks = append(c.midiTracks[:i], c.midiTracks[i+1:]...)
			return
		}
	}
}

// anySoloed reports whether at least one audio track is soloed, which
// mutes every non-soloed track for this render per spec.
func (c *Composition) anySoloed() bool {
	for _, t := range c.tracks {
		if t.Soloed {
			return true
		}
	}
	return false
}

// Render sums every audio track's contribution to [t0,t1) into a
// freshly-sized buffer and forwards every MIDI track's events in the
// same window to their destinations.
func (c *Composition) Render(t0, t1 float64) []float32 {
	frames := int((t1 - t0) * float64(c.SampleRate))
	if frames <= 0 {
		return nil
	}
	out := make([]float32, frames*c.Channels)

	soloed := c.anySoloed()
	scratch := graph.RentScratch(len(out))
	defer graph.ReturnScratch(scratch)
	for _, t := range c.tracks {
		audible := !soloed || t.Soloed
		t.render(t0, t1, c.SampleRate, c.Channels, audible, scratch)
		for i := range out {
			out[i] += scratch[i]
		}
	}

	for _, mt := range c.midiTracks {
		mt.render(t0, t1, c.tempo)
	}
	return out
}

// CalculateDuration returns the latest point any track's content
// reaches on the timeline, in seconds.
func (c *Composition) CalculateDuration() float64 {
	end := 0.0
	for _, t := range c.tracks {
		for _, s := range t.Segments {
			if e := s.timelineEnd(); e > end {
				end = e
			}
		}
	}
	for _, mt := range c.midiTracks {
		for _, s := range mt.Segments {
			if e := s.timelineEnd(); e > end {
				end = e
			}
		}
	}
	return end
}
