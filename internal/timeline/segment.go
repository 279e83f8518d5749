package timeline

import (
	"math"

	"github.com/cbegin/audiograph/internal/graph"
	"github.com/cbegin/audiograph/internal/midi"
	"github.com/cbegin/audiograph/internal/player"
	"github.com/cbegin/audiograph/internal/provider"
)

// AudioSegment places one provider's audio on a track's timeline. The
// source-side playback (speed, loop, panning) is delegated to a
// player.SoundPlayer so the timeline engine does not reimplement
// resampling/time-stretch; a segment just decides WHEN that player's
// output is audible and shapes it with fade envelopes.
//
// Per spec, a segment's effective (timeline) duration may exceed its
// source duration when Stretch > 1 — TimelineDuration is the length on
// the timeline, independent of how many source frames the player
// actually consumes to produce it.
type AudioSegment struct {
	TimelineStart    float64 // seconds
	TimelineDuration float64 // seconds
	SourceStartFrame int64
	Stretch          float64 // 1.0 = no stretch
	PitchPreserve    bool

	FadeInSec, FadeOutSec   float64
	FadeInCurve, FadeOutCurve FadeCurve

	Volume, Pan float64 // render applies Volume; Pan is not applied

	player  *player.SoundPlayer
	started bool
}

// NewAudioSegment wraps prov in a player.SoundPlayer configured per this
// segment's stretch/pitch settings.
func NewAudioSegment(prov provider.SoundDataProvider, frameSize int) *AudioSegment {
	s := &AudioSegment{Stretch: 1.0, Volume: 1.0, FadeInCurve: FadeLinear, FadeOutCurve: FadeLinear}
	s.player = player.NewSoundPlayer("segment", prov, frameSize)
	return s
}

// SetLoop configures the underlying player's source-side loop points.
func (s *AudioSegment) SetLoop(start, end int64) { s.player.SetLoop(start, end) }

// AddModifier appends a modifier to the segment's chain, applied after
// the player renders and before the fade and volume gain.
func (s *AudioSegment) AddModifier(m graph.Modifier) { s.player.AddModifier(m) }

func (s *AudioSegment) timelineEnd() float64 { return s.TimelineStart + s.TimelineDuration }

// ensureStarted seeks the player to its source start and begins
// playback the first time this segment is touched by a render.
func (s *AudioSegment) ensureStarted() {
	if s.started {
		return
	}
	s.started = true
	if s.player.Provider().CanSeek() {
		_ = s.player.Seek(s.SourceStartFrame)
	}
	s.player.SetSpeed(s.Stretch)
	if s.PitchPreserve {
		s.player.SetPlaybackMode(player.ModePitchPreserve)
	} else {
		s.player.SetPlaybackMode(player.ModePitchShift)
	}
	s.player.Play()
}

// fadeGain returns the fade multiplier at timelineTime seconds into the
// segment's rendered window, per the configured fade-in/fade-out curves.
func (s *AudioSegment) fadeGain(timelineTime float64) float64 {
	gain := 1.0
	sinceStart := timelineTime - s.TimelineStart
	if s.FadeInSec > 0 && sinceStart < s.FadeInSec {
		gain *= s.FadeInCurve.gainAt(sinceStart / s.FadeInSec)
	}
	untilEnd := s.timelineEnd() - timelineTime
	if s.FadeOutSec > 0 && untilEnd < s.FadeOutSec {
		gain *= s.FadeOutCurve.gainAt(untilEnd / s.FadeOutSec)
	}
	return gain
}

// render accumulates this segment's contribution to [t0,t1) (global
// timeline seconds) into out, which is frames*channels long starting at
// t0. Frames outside [TimelineStart, timelineEnd) are left untouched.
func (s *AudioSegment) render(t0, t1 float64, sampleRate, channels int, out []float32) {
	o0 := math.Max(t0, s.TimelineStart)
	o1 := math.Min(t1, s.timelineEnd())
	if o1 <= o0 {
		return
	}
	s.ensureStarted()

	startFrame := int(math.Round((o0 - t0) * float64(sampleRate)))
	frames := int(math.Round((o1 - o0) * float64(sampleRate)))
	if frames <= 0 {
		return
	}

	scratch := graph.RentScratch(frames * channels)
	defer graph.ReturnScratch(scratch)
	s.player.Render(scratch, channels)
	graph.RunModifiers(s.player.Modifiers(), scratch, channels)

	for f := 0; f < frames; f++ {
		t := o0 + float64(f)/float64(sampleRate)
		gain := s.fadeGain(t) * s.Volume
		dstFrame := startFrame + f
		if dstFrame < 0 || (dstFrame+1)*channels > len(out) {
			continue
		}
		for c := 0; c < channels; c++ {
			out[dstFrame*channels+c] += scratch[f*channels+c] * float32(gain)
		}
	}
}

// MidiSegment places one in-memory event stream on a MIDI track's
// timeline, queried in tick ranges by Composition's MIDI track render.
type MidiSegment struct {
	TimelineStart    float64
	TimelineDuration float64
	TickOffset       int64 // segment-local tick 0 maps to this tick in the composition's tempo map

	Events []TickEvent
}

// TickEvent is one MIDI message at an absolute segment-local tick.
type TickEvent struct {
	Tick int64
	Msg  midi.Message
}

func (s *MidiSegment) timelineEnd() float64 { return s.TimelineStart + s.TimelineDuration }

// eventsInTickRange returns every event whose absolute tick (TickOffset
// + local tick) falls in [loTick, hiTick), in non-decreasing tick order
// as stored — callers are expected to have built Events pre-sorted,
// matching an SMF track's natural delta-time ordering.
func (s *MidiSegment) eventsInTickRange(loTick, hiTick int64) []TickEvent {
	var out []TickEvent
	for _, e := range s.Events {
		abs := e.Tick + s.TickOffset
		if abs >= loTick && abs < hiTick {
			out = append(out, TickEvent{Tick: abs, Msg: e.Msg})
		}
	}
	return out
}
