package timeline

import (
	"github.com/cbegin/audiograph/internal/graph"
	"github.com/cbegin/audiograph/internal/midi"
)

// Track sums all overlapping audio segments and applies the track's
// own modifier chain and volume/pan before accumulating into the
// composition's output, honoring mute/solo across the composition.
type Track struct {
	*graph.Base

	Segments []*AudioSegment
	Muted    bool
	Soloed   bool
}

// NewTrack constructs an empty audio track.
func NewTrack(name string) *Track {
	return &Track{Base: graph.NewBase(name)}
}

// AddSegment appends a segment to the track.
func (t *Track) AddSegment(s *AudioSegment) { t.Segments = append(t.Segments, s) }

// render sums every segment overlapping [t0,t1) into out, then applies
// the track's modifier chain and volume/pan. audible reports whether
// this track should be heard at all given the composition's solo state.
func (t *Track) render(t0, t1 float64, sampleRate, channels int, audible bool, out []float32) {
	for i := range out {
		out[i] = 0
	}
	if !audible || t.Muted || !t.Enabled() {
		return
	}
	for _, s := range t.Segments {
		s.render(t0, t1, sampleRate, channels, out)
	}
	graph.RunModifiers(t.Modifiers(), out, channels)
	graph.ApplyVolumePan(out, channels, t.Volume(), t.Pan())
}

// MidiTrack forwards each overlapping MIDI segment's events in a tick
// window to a destination, applying the track's processor chain
// (SysEx bypasses it and only reaches a midi.PhysicalDestination, as
// in the router).
type MidiTrack struct {
	Name       string
	Segments   []*MidiSegment
	Processors []midi.Processor
	Dest       midi.Destination
}

// NewMidiTrack constructs an empty MIDI track targeting dest.
func NewMidiTrack(name string, dest midi.Destination) *MidiTrack {
	return &MidiTrack{Name: name, Dest: dest}
}

// AddSegment appends a MIDI segment to the track.
func (t *MidiTrack) AddSegment(s *MidiSegment) { t.Segments = append(t.Segments, s) }

// AddProcessor appends a processor to the track's MIDI modifier chain.
func (t *MidiTrack) AddProcessor(p midi.Processor) { t.Processors = append(t.Processors, p) }

// render converts [t0,t1) to ticks via tempo and forwards every event
// in range through the processor chain to Dest. Segments are handled
// one after another, each in the order eventsInTickRange returns its
// events; events of different segments are not merged by tick.
func (t *MidiTrack) render(t0, t1 float64, tempo *TempoMap) {
	loTick := tempo.SecondsToTick(t0)
	hiTick := tempo.SecondsToTick(t1)
	for _, seg := range t.Segments {
		segT0 := max(t0, seg.TimelineStart)
		segT1 := min(t1, seg.timelineEnd())
		if segT1 <= segT0 {
			continue
		}
		for _, ev := range seg.eventsInTickRange(loTick, hiTick) {
			if ev.Msg.IsSysEx() {
				if phys, ok := t.Dest.(midi.PhysicalDestination); ok {
					_ = phys.DeliverSysEx(ev.Msg.SysEx)
				}
				continue
			}
			stage := []midi.Message{ev.Msg}
			for _, p := range t.Processors {
				var next []midi.Message
				for _, m := range stage {
					next = append(next, p.Process(m)...)
				}
				stage = next
			}
			for _, m := range stage {
				_ = t.Dest.Deliver(m)
			}
		}
	}
}
