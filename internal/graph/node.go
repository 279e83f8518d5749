package graph

import (
	"math"
	"sync/atomic"
)

// Node is the pull-model contract every graph component implements:
// render fills buf (which the caller owns and has already zeroed or
// not, per the node's own accumulation contract) with channels-wide
// interleaved frames.
type Node interface {
	Render(buf []float32, channels int) int
	Name() string
	Enabled() bool
	SetEnabled(bool)
	Volume() float32
	SetVolume(float32)
	Pan() float32
	SetPan(float32)
	Modifiers() []Modifier
	AddModifier(Modifier)
	Analyzers() []Analyzer
	AddAnalyzer(Analyzer)
}

// Base implements the common Node bookkeeping (name, enabled, volume,
// pan, modifier chain, analyzer set) that every concrete leaf and the
// Mixer embed. Volume and pan are stored as atomic bits so the audio
// thread's Render never takes a lock to read them; control threads
// write through SetVolume/SetPan.
type Base struct {
	name      string
	enabled   atomic.Bool
	volume    atomic.Uint32 // bit-cast float32, default 1.0
	pan       atomic.Uint32 // bit-cast float32, default 0.5 (center)
	modifiers atomic.Pointer[[]Modifier]
	analyzers atomic.Pointer[[]Analyzer]
}

// NewBase constructs a Base with default enabled=true, volume=1, pan=0.5.
func NewBase(name string) *Base {
	b := &Base{name: name}
	b.enabled.Store(true)
	b.volume.Store(math.Float32bits(1.0))
	b.pan.Store(math.Float32bits(0.5))
	empty := []Modifier(nil)
	b.modifiers.Store(&empty)
	emptyA := []Analyzer(nil)
	b.analyzers.Store(&emptyA)
	return b
}

func (b *Base) Name() string    { return b.name }
func (b *Base) Enabled() bool   { return b.enabled.Load() }
func (b *Base) SetEnabled(v bool) { b.enabled.Store(v) }

func (b *Base) Volume() float32     { return math.Float32frombits(b.volume.Load()) }
func (b *Base) SetVolume(v float32) { b.volume.Store(math.Float32bits(v)) }

func (b *Base) Pan() float32     { return math.Float32frombits(b.pan.Load()) }
func (b *Base) SetPan(v float32) { b.pan.Store(math.Float32bits(v)) }

func (b *Base) Modifiers() []Modifier { return *b.modifiers.Load() }

// AddModifier appends via copy-on-write: the audio thread always sees
// either the old or the new slice, never a partially-built one.
func (b *Base) AddModifier(m Modifier) {
	for {
		old := b.modifiers.Load()
		next := append(append([]Modifier{}, *old...), m)
		if b.modifiers.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (b *Base) Analyzers() []Analyzer { return *b.analyzers.Load() }

func (b *Base) AddAnalyzer(a Analyzer) {
	for {
		old := b.analyzers.Load()
		next := append(append([]Analyzer{}, *old...), a)
		if b.analyzers.CompareAndSwap(old, &next) {
			return
		}
	}
}

// EqualPowerPan returns the (left, right) gain for pan in [0,1], 0=left,
// 1=right, 0.5=center, using the equal-power law L=cos(pan*pi/2),
// R=sin(pan*pi/2).
func EqualPowerPan(pan float32) (left, right float32) {
	theta := float64(pan) * math.Pi / 2
	return float32(math.Cos(theta)), float32(math.Sin(theta))
}

// ApplyVolumePan scales and pans a stereo-interleaved buffer in place.
// For mono buffers (channels==1) only volume is applied.
func ApplyVolumePan(buf []float32, channels int, volume, pan float32) {
	if channels == 1 {
		for i := range buf {
			buf[i] *= volume
		}
		return
	}
	l, r := EqualPowerPan(pan)
	for i := 0; i+1 < len(buf); i += channels {
		buf[i] *= volume * l
		buf[i+1] *= volume * r
	}
}
