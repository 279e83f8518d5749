// Package player implements SoundPlayer: the playback-state machine
// that reads a provider, applies speed change (pitch-shift or
// pitch-preserve), surround panning and a modifier chain, and emits
// playback-ended when its provider reaches end of stream.
package player

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/dsp"
	"github.com/cbegin/audiograph/internal/graph"
	"github.com/cbegin/audiograph/internal/provider"
)

// State is one of the player's three transport states.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

// PlaybackMode selects how SetSpeed changes pitch.
type PlaybackMode int

const (
	ModePitchShift PlaybackMode = iota
	ModePitchPreserve
)

// LoopPoints are (start, end) frames in the provider's own timeline.
// When a seekable provider reaches end of stream the player seeks back
// to Start; End is stored but not consulted, so every loop runs to the
// end of the source.
type LoopPoints struct {
	Start, End int64
}

// SoundPlayer is a graph leaf node: it owns a provider and renders into
// the graph at the device's channel count, resampling/time-stretching
// and panning as configured.
type SoundPlayer struct {
	*graph.Base

	prov provider.SoundDataProvider

	state atomic.Int32 // State

	speedBits atomic.Uint64 // bit-cast float64, default 1.0
	modeBits  atomic.Uint32 // PlaybackMode, default ModePitchShift
	pendingMode atomic.Int32 // -1 = none, else PlaybackMode+1
	loop      atomic.Pointer[LoopPoints]

	resampler *dsp.Resampler
	vocoder   *dsp.PhaseVocoder

	pan   SurroundPan
	onEnd []func()

	readBuf  []float32 // provider-format scratch, reused across Render calls
	mixBuf   []float32 // post-resample/vocoder mono-channel-rate scratch
	frameF64 []float64 // phase-vocoder analysis frame scratch
}

// NewSoundPlayer constructs a player reading from prov, rendering at
// frameSize-sample phase-vocoder blocks when pitch-preserving.
func NewSoundPlayer(name string, prov provider.SoundDataProvider, frameSize int) *SoundPlayer {
	p := &SoundPlayer{
		Base:      graph.NewBase(name),
		prov:      prov,
		resampler: dsp.NewResampler(1.0),
		vocoder:   dsp.NewPhaseVocoder(frameSize),
		pan:       SurroundPan{Method: PanLinear},
	}
	p.speedBits.Store(math.Float64bits(1.0))
	p.pendingMode.Store(-1)
	prov.OnEndReached(p.handleEnd)
	return p
}

// Play transitions Stopped->Playing or Paused->Playing.
func (p *SoundPlayer) Play() {
	switch State(p.state.Load()) {
	case StateStopped, StatePaused:
		p.state.Store(int32(StatePlaying))
	}
}

// Pause transitions Playing->Paused.
func (p *SoundPlayer) Pause() {
	if State(p.state.Load()) == StatePlaying {
		p.state.Store(int32(StatePaused))
	}
}

// Stop transitions any state->Stopped and rewinds if seekable.
func (p *SoundPlayer) Stop() {
	p.state.Store(int32(StateStopped))
	if p.prov.CanSeek() {
		_ = p.prov.Seek(0)
	}
}

// Seek is legal in any state; it repositions the provider.
func (p *SoundPlayer) Seek(frames int64) error {
	return p.prov.Seek(frames)
}

func (p *SoundPlayer) State() State { return State(p.state.Load()) }

// Provider returns the player's underlying data source, e.g. so a
// caller can check CanSeek before calling Seek.
func (p *SoundPlayer) Provider() provider.SoundDataProvider { return p.prov }

// SetLoop sets loop points; playback loops from start to the end of the
// source, and end is not consulted (see LoopPoints).
func (p *SoundPlayer) SetLoop(start, end int64) { p.loop.Store(&LoopPoints{Start: start, End: end}) }
func (p *SoundPlayer) ClearLoop()               { p.loop.Store(nil) }

// SetSpeed sets the playback speed ratio, clamped to [0.25, 4.0].
func (p *SoundPlayer) SetSpeed(x float64) {
	if x < 0.25 {
		x = 0.25
	}
	if x > 4.0 {
		x = 4.0
	}
	p.speedBits.Store(math.Float64bits(x))
}

func (p *SoundPlayer) Speed() float64 { return math.Float64frombits(p.speedBits.Load()) }

// SetPlaybackMode stages a pitch-shift/pitch-preserve switch; it takes
// effect at the next Render call boundary, at which point the
// resampler's fractional accumulator and the vocoder's phase state are
// both reset to avoid an audible click from stale continuity.
func (p *SoundPlayer) SetPlaybackMode(m PlaybackMode) {
	p.pendingMode.Store(int32(m) + 1)
}

func (p *SoundPlayer) PlaybackMode() PlaybackMode {
	return PlaybackMode(p.modeBits.Load())
}

// OnPlaybackEnded registers a listener fired when the provider reaches
// EOS and the loop setting does not dictate a restart.
func (p *SoundPlayer) OnPlaybackEnded(f func()) { p.onEnd = append(p.onEnd, f) }

func (p *SoundPlayer) handleEnd() {
	if loop := p.loop.Load(); loop != nil {
		if p.prov.CanSeek() {
			_ = p.prov.Seek(loop.Start)
			return
		}
	}
	p.state.Store(int32(StateStopped))
	for _, f := range p.onEnd {
		f()
	}
}

// Render implements graph.Node: fills buf (channels-wide interleaved)
// by reading the provider, applying speed change and surround panning.
func (p *SoundPlayer) Render(buf []float32, channels int) int {
	for i := range buf {
		buf[i] = 0
	}
	if p.State() != StatePlaying {
		return len(buf)
	}
	if pending := p.pendingMode.Load(); pending >= 0 {
		p.modeBits.Store(uint32(pending - 1))
		p.resampler.Reset()
		p.vocoder.Reset()
		p.pendingMode.Store(-1)
	}

	srcCh := p.prov.Format().Channels
	frames := len(buf) / channels
	speed := p.Speed()

	switch {
	case speed == 1.0:
		read := p.bufOf(&p.readBuf, frames*srcCh)
		n, _ := p.prov.Read(read)
		p.panInto(read[:n*srcCh], srcCh, buf, channels, frames)

	case p.PlaybackMode() == ModePitchPreserve && srcCh == 1:
		p.renderPitchPreserve(buf, channels, frames, speed)

	default:
		p.resampler.SetRatio(speed)
		wantSrcFrames := int(float64(frames)*speed) + 2
		read := p.bufOf(&p.readBuf, wantSrcFrames*srcCh)
		p.prov.Read(read)
		mix := p.bufOf(&p.mixBuf, frames*srcCh)
		produced := p.resampler.Process(read, mix)
		p.panInto(mix[:produced*srcCh], srcCh, buf, channels, frames)
	}
	return len(buf)
}

func (p *SoundPlayer) renderPitchPreserve(buf []float32, channels, frames int, speed float64) {
	frameSize := p.vocoder.FrameSize()
	read := p.bufOf(&p.readBuf, frameSize)
	n, _ := p.prov.Read(read)
	for i := n; i < frameSize; i++ {
		read[i] = 0
	}
	if cap(p.frameF64) < frameSize {
		p.frameF64 = make([]float64, frameSize)
	}
	doubleFrame := p.frameF64[:frameSize]
	for i, v := range read {
		doubleFrame[i] = float64(v)
	}
	mix := p.bufOf(&p.mixBuf, frames)
	produced := p.vocoder.ProcessFrame(doubleFrame, speed, mix)
	p.panInto(mix[:produced], 1, buf, channels, frames)
}

// bufOf returns a reusable scratch buffer of exactly n samples, growing
// the backing slice only when necessary.
func (p *SoundPlayer) bufOf(slot *[]float32, n int) []float32 {
	if cap(*slot) < n {
		*slot = make([]float32, n)
	}
	return (*slot)[:n]
}

func (p *SoundPlayer) panInto(mono []float32, srcCh int, buf []float32, dstCh, frames int) {
	frame := make([]float32, srcCh)
	out := make([]float32, dstCh)
	for f := 0; f < frames; f++ {
		if (f+1)*srcCh > len(mono) {
			break
		}
		copy(frame, mono[f*srcCh:(f+1)*srcCh])
		p.pan.Apply(frame, srcCh, out, dstCh)
		for c := 0; c < dstCh; c++ {
			buf[f*dstCh+c] = out[c] * p.Volume()
		}
	}
}

// SetPanMethod configures the panning algorithm (linear, constant-power, VBAP).
func (p *SoundPlayer) SetPanMethod(pan SurroundPan) { p.pan = pan }

// ErrInvalidSpeed describes a speed outside [0.25, 4.0]. SetSpeed clamps
// out-of-range values instead of returning it.
var ErrInvalidSpeed = apperr.New(apperr.KindInvalidArgument, "speed out of [0.25, 4.0]")
