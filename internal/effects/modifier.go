package effects

import "sync/atomic"

// ModifierAdapter exposes a stereo Effector (delay, reverb, chorus,
// distortion, 3/5-band EQ, compressor) as a graph.Modifier so it can
// attach to any Node's modifier chain the same way a Track or a
// SoundPlayer attaches one. This generalizes the teacher's
// eventWrapper in the root player.go, which ran a fixed effect chain
// and a master EQ inline on every rendered block; here any Effector
// can sit on any node, not just the one hard-wired master path.
type ModifierAdapter struct {
	eff     Effector
	enabled atomic.Bool
}

// NewModifierAdapter wraps eff, enabled by default.
func NewModifierAdapter(eff Effector) *ModifierAdapter {
	a := &ModifierAdapter{eff: eff}
	a.enabled.Store(true)
	return a
}

func (a *ModifierAdapter) Enabled() bool     { return a.enabled.Load() }
func (a *ModifierAdapter) SetEnabled(v bool) { a.enabled.Store(v) }

// Process runs the wrapped Effector over every stereo frame in buf.
// Every Effector in this package is intrinsically stereo (cross-channel
// feedback, banding split across L/R); a buffer with channels != 2
// passes through unmodified rather than guessing a downmix.
func (a *ModifierAdapter) Process(buf []float32, channels int) {
	if channels != 2 {
		return
	}
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = a.eff.Process(buf[i], buf[i+1])
	}
}

// Reset clears the wrapped Effector's internal state (delay lines,
// filter history, envelope followers).
func (a *ModifierAdapter) Reset() { a.eff.Reset() }
