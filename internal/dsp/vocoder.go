package dsp

import "math"

// PhaseVocoder time-stretches a mono signal while preserving pitch,
// using an STFT with 75%-overlap Hann analysis/synthesis windows,
// per-bin phase unwrapping and overlap-add resynthesis.
type PhaseVocoder struct {
	frameSize int
	hopIn     int // analysis hop (fixed: frameSize/4, i.e. 75% overlap)
	plan      *Plan
	window    []float64

	lastPhase []float64 // previous frame's input phase per bin
	sumPhase  []float64 // accumulated output (unwrapped) phase per bin

	inBuf  []float64 // sliding analysis buffer
	outBuf []float64 // overlap-add accumulator, length frameSize+hopOut(max)
	outPos int       // read cursor into outBuf
}

// NewPhaseVocoder creates a vocoder operating on frameSize-sample
// frames (must be a power of two).
func NewPhaseVocoder(frameSize int) *PhaseVocoder {
	if !IsPowerOfTwo(frameSize) {
		panic("dsp: phase vocoder frame size must be a power of two")
	}
	hop := frameSize / 4
	pv := &PhaseVocoder{
		frameSize: frameSize,
		hopIn:     hop,
		plan:      NewPlan(frameSize, KernelAuto),
		window:    Window(WindowHann, frameSize),
		lastPhase: make([]float64, frameSize/2+1),
		sumPhase:  make([]float64, frameSize/2+1),
		inBuf:     make([]float64, frameSize),
		outBuf:    make([]float64, frameSize*2),
	}
	return pv
}

// Reset clears all phase-tracking and buffered state, used when a
// player swaps into pitch-preserving mode to avoid a click from stale
// phase continuity.
func (pv *PhaseVocoder) Reset() {
	for i := range pv.lastPhase {
		pv.lastPhase[i] = 0
		pv.sumPhase[i] = 0
	}
	for i := range pv.inBuf {
		pv.inBuf[i] = 0
	}
	for i := range pv.outBuf {
		pv.outBuf[i] = 0
	}
	pv.outPos = 0
}

// ProcessFrame consumes one new analysis frame's worth of input
// (frameSize samples, already positioned by the caller at the desired
// source read point) and stretches it by stretch (output hop = hopIn *
// stretch), writing the synthesized samples for that frame into dst
// (overlap-added with any still-pending tail) and returning how many
// samples of dst are now final and ready to emit.
func (pv *PhaseVocoder) ProcessFrame(frame []float64, stretch float64, dst []float32) int {
	hopOut := int(float64(pv.hopIn) * stretch)
	if hopOut < 1 {
		hopOut = 1
	}

	n := pv.frameSize
	bins := n/2 + 1
	windowed := make([]Complex, n)
	for i := 0; i < n; i++ {
		windowed[i] = Complex{Re: frame[i] * pv.window[i]}
	}
	pv.plan.FFT(windowed)

	synthesized := make([]Complex, n)
	freqPerBin := 2 * math.Pi * float64(pv.hopIn) / float64(n)
	for k := 0; k < bins; k++ {
		mag := math.Hypot(windowed[k].Re, windowed[k].Im)
		phase := math.Atan2(windowed[k].Im, windowed[k].Re)

		deltaPhase := phase - pv.lastPhase[k]
		pv.lastPhase[k] = phase
		deltaPhase -= float64(k) * freqPerBin
		deltaPhase = Principal(deltaPhase)
		trueFreq := float64(k)*freqPerBin + deltaPhase

		pv.sumPhase[k] += trueFreq * (float64(hopOut) / float64(pv.hopIn))
		outPhase := pv.sumPhase[k]
		synthesized[k] = Complex{Re: mag * math.Cos(outPhase), Im: mag * math.Sin(outPhase)}
		if k > 0 && k < n/2 {
			conj := n - k
			synthesized[conj] = Complex{Re: synthesized[k].Re, Im: -synthesized[k].Im}
		}
	}
	pv.plan.IFFT(synthesized)

	for i := 0; i < n; i++ {
		idx := pv.outPos + i
		for idx >= len(pv.outBuf) {
			pv.growOutBuf()
		}
		pv.outBuf[idx] += synthesized[i].Re * pv.window[i]
	}

	produced := hopOut
	if produced > len(dst) {
		produced = len(dst)
	}
	for i := 0; i < produced; i++ {
		dst[i] = float32(pv.outBuf[pv.outPos+i])
	}
	// shift the accumulator left by hopOut
	copy(pv.outBuf, pv.outBuf[hopOut:])
	for i := len(pv.outBuf) - hopOut; i < len(pv.outBuf); i++ {
		pv.outBuf[i] = 0
	}
	return produced
}

func (pv *PhaseVocoder) growOutBuf() {
	grown := make([]float64, len(pv.outBuf)*2)
	copy(grown, pv.outBuf)
	pv.outBuf = grown
}

// FrameSize returns the analysis/synthesis frame length.
func (pv *PhaseVocoder) FrameSize() int { return pv.frameSize }

// HopIn returns the fixed 75%-overlap analysis hop (frameSize/4).
func (pv *PhaseVocoder) HopIn() int { return pv.hopIn }
