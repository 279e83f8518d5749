package dsp

// Resampler performs linear interpolation at an arbitrary real ratio,
// accumulating its fractional read position across calls so a long run
// of small blocks never drifts relative to one large block (grounded on
// the fractional-delay read pattern used by the chorus effect: track a
// continuous position, not a per-block-rounded one).
type Resampler struct {
	ratio float64 // source frames consumed per output frame (input-rate / output-rate); >1 = speed up (shorten)
	pos   float64 // fractional read position into the source stream
}

// NewResampler creates a resampler at the given ratio. A ratio of 2.0
// means "consume source twice as fast", i.e. the output runs at half
// the duration for the same number of source frames.
func NewResampler(ratio float64) *Resampler {
	return &Resampler{ratio: ratio}
}

// SetRatio updates the resample ratio without touching the accumulated
// fractional position.
func (r *Resampler) SetRatio(ratio float64) { r.ratio = ratio }

// Reset zeroes the fractional accumulator, used when a player switches
// playback mode to avoid carrying stale phase into the new mode.
func (r *Resampler) Reset() { r.pos = 0 }

// Process reads mono samples from src (read-only) and linearly
// resamples into dst, returning the number of dst frames produced. The
// source read position advances by ratio per output frame.
func (r *Resampler) Process(src []float32, dst []float32) int {
	n := 0
	for n < len(dst) {
		idx := int(r.pos)
		if idx+1 >= len(src) {
			break
		}
		frac := float32(r.pos - float64(idx))
		dst[n] = src[idx]*(1-frac) + src[idx+1]*frac
		n++
		r.pos += r.ratio
	}
	return n
}

// Position returns the current fractional read position into src.
func (r *Resampler) Position() float64 { return r.pos }
