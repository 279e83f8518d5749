package synth

// envStage mirrors the ADSR state machine used throughout the pack's
// synthesis engines (attack ramps to 1, decay falls to the sustain
// level, release falls from whatever level the envelope was actually
// at — not from the sustain level — to 0).
type envStage int

const (
	stageAttack envStage = iota
	stageDecay
	stageSustain
	stageRelease
	stageOff
)

// ADSRParams are the four stage times/levels; AttackSec/DecaySec/
// ReleaseSec are in seconds, SustainLevel in [0,1].
type ADSRParams struct {
	AttackSec   float64
	DecaySec    float64
	SustainLvl  float64
	ReleaseSec  float64
}

// Envelope is a linear-segment ADSR generator. Release always starts
// from the envelope's current level at the moment NoteOff/Release is
// called, so a note released mid-decay does not jump up to the sustain
// level first.
type Envelope struct {
	params ADSRParams
	stage  envStage
	level  float64
}

// NewEnvelope constructs an envelope in its attack stage.
func NewEnvelope(p ADSRParams) *Envelope {
	return &Envelope{params: p, stage: stageAttack}
}

// Release transitions the envelope to its release stage from whatever
// level it currently holds.
func (e *Envelope) Release() {
	if e.stage != stageRelease && e.stage != stageOff {
		e.stage = stageRelease
	}
}

// Finished reports whether the envelope has fully decayed to silence.
func (e *Envelope) Finished() bool { return e.stage == stageOff }

// Level returns the envelope's current output level without advancing it.
func (e *Envelope) Level() float64 { return e.level }

// Advance steps the envelope by one sample at sampleRate and returns
// its new level.
func (e *Envelope) Advance(sampleRate float64) float64 {
	switch e.stage {
	case stageAttack:
		step := attackStep(e.params.AttackSec, sampleRate)
		e.level += step
		if e.level >= 1 {
			e.level = 1
			e.stage = stageDecay
		}
	case stageDecay:
		step := decayStep(e.params.DecaySec, e.params.SustainLvl, sampleRate)
		e.level -= step
		if e.level <= e.params.SustainLvl {
			e.level = e.params.SustainLvl
			e.stage = stageSustain
		}
	case stageSustain:
		e.level = e.params.SustainLvl
	case stageRelease:
		step := releaseStep(e.params.ReleaseSec, sampleRate)
		e.level -= step
		if e.level <= 0.0001 {
			e.level = 0
			e.stage = stageOff
		}
	case stageOff:
		e.level = 0
	}
	return e.level
}

func attackStep(attackSec, sampleRate float64) float64 {
	if attackSec <= 0 {
		return 1
	}
	return 1.0 / (attackSec * sampleRate)
}

func decayStep(decaySec, sustainLvl, sampleRate float64) float64 {
	if decaySec <= 0 {
		return 1
	}
	return (1 - sustainLvl) / (decaySec * sampleRate)
}

// releaseStep computes a fixed per-sample decrement sized so a release
// started at full level (1.0) reaches silence in releaseSec; a release
// started lower (per Envelope.Release's from-current-level contract)
// simply reaches silence sooner.
func releaseStep(releaseSec, sampleRate float64) float64 {
	if releaseSec <= 0 {
		return 1
	}
	return 1.0 / (releaseSec * sampleRate)
}
