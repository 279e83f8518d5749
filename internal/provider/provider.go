// Package provider implements SoundDataProvider: a lazy, forward-read,
// optionally seekable PCM source read by exactly one SoundPlayer at a
// time. SoundPlayer has no dispose step and does not release its
// provider.
package provider

import (
	"math"
	"sync"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

// SoundDataProvider is the common contract every concrete source below
// implements. Read returns 0 at end-of-stream without an error; Seek
// returns apperr.ErrNotSeekable when the provider is forward-only.
type SoundDataProvider interface {
	Format() format.AudioFormat
	Position() int64
	LengthFrames() (frames int64, known bool)
	CanSeek() bool
	Read(dst []float32) (framesRead int, err error)
	Seek(frames int64) error

	// OnEndReached/OnPositionChanged register listeners invoked from
	// whatever goroutine calls Read/Seek; callers on the audio thread
	// must keep these callbacks short and non-blocking.
	OnEndReached(func())
	OnPositionChanged(func(int64))
}

// base provides the event bookkeeping shared by every provider variant.
type base struct {
	mu             sync.Mutex
	endListeners   []func()
	posListeners   []func(int64)
}

func (b *base) OnEndReached(f func())       { b.mu.Lock(); b.endListeners = append(b.endListeners, f); b.mu.Unlock() }
func (b *base) OnPositionChanged(f func(int64)) {
	b.mu.Lock()
	b.posListeners = append(b.posListeners, f)
	b.mu.Unlock()
}

func (b *base) fireEnd() {
	b.mu.Lock()
	ls := append([]func(){}, b.endListeners...)
	b.mu.Unlock()
	for _, f := range ls {
		f()
	}
}

func (b *base) firePosition(p int64) {
	b.mu.Lock()
	ls := append([]func(int64){}, b.posListeners...)
	b.mu.Unlock()
	for _, f := range ls {
		f(p)
	}
}

// StreamProvider wraps PCM already decoded into one memory block
// (interleaved float32 at the provider's format), generalizing the
// teacher's single ebitengine-bound SampleSource into a seekable,
// format-agnostic provider.
type StreamProvider struct {
	base
	fmtv   format.AudioFormat
	data   []float32 // interleaved
	frames int64
	pos    int64
	ended  bool
}

func NewStreamProvider(fmtv format.AudioFormat, interleaved []float32) *StreamProvider {
	return &StreamProvider{
		fmtv:   fmtv,
		data:   interleaved,
		frames: int64(len(interleaved) / fmtv.Channels),
	}
}

func (s *StreamProvider) Format() format.AudioFormat { return s.fmtv }
func (s *StreamProvider) Position() int64            { return s.pos }
func (s *StreamProvider) LengthFrames() (int64, bool) { return s.frames, true }
func (s *StreamProvider) CanSeek() bool               { return true }

func (s *StreamProvider) Read(dst []float32) (int, error) {
	ch := s.fmtv.Channels
	wantFrames := len(dst) / ch
	avail := s.frames - s.pos
	if avail <= 0 {
		if !s.ended {
			s.ended = true
			s.fireEnd()
		}
		return 0, nil
	}
	n := wantFrames
	if int64(n) > avail {
		n = int(avail)
	}
	start := s.pos * int64(ch)
	copy(dst[:n*ch], s.data[start:start+int64(n*ch)])
	s.pos += int64(n)
	s.firePosition(s.pos)
	if s.pos >= s.frames {
		s.ended = true
		s.fireEnd()
	}
	return n, nil
}

func (s *StreamProvider) Seek(frames int64) error {
	if frames < 0 || frames > s.frames {
		return apperr.New(apperr.KindInvalidArgument, "seek out of range")
	}
	s.pos = frames
	s.ended = false
	s.firePosition(s.pos)
	return nil
}

// RawProvider wraps an already-PCM byte slice (e.g. a memory-mapped
// file) decoded lazily on Read rather than up front, avoiding the
// StreamProvider's eager float32 conversion for very large sources.
type RawProvider struct {
	base
	fmtv   format.AudioFormat
	raw    []byte
	frames int64
	pos    int64
	ended  bool
}

func NewRawProvider(fmtv format.AudioFormat, raw []byte) *RawProvider {
	bps := format.BytesPerSample(fmtv.Encoding)
	frameBytes := bps * fmtv.Channels
	return &RawProvider{fmtv: fmtv, raw: raw, frames: int64(len(raw) / frameBytes)}
}

func (r *RawProvider) Format() format.AudioFormat  { return r.fmtv }
func (r *RawProvider) Position() int64             { return r.pos }
func (r *RawProvider) LengthFrames() (int64, bool) { return r.frames, true }
func (r *RawProvider) CanSeek() bool                { return true }

func (r *RawProvider) Read(dst []float32) (int, error) {
	ch := r.fmtv.Channels
	bps := format.BytesPerSample(r.fmtv.Encoding)
	wantFrames := len(dst) / ch
	avail := r.frames - r.pos
	if avail <= 0 {
		if !r.ended {
			r.ended = true
			r.fireEnd()
		}
		return 0, nil
	}
	n := wantFrames
	if int64(n) > avail {
		n = int(avail)
	}
	byteOff := r.pos * int64(ch*bps)
	format.DecodeBlock(r.raw[byteOff:byteOff+int64(n*ch*bps)], r.fmtv.Encoding, dst[:n*ch])
	r.pos += int64(n)
	r.firePosition(r.pos)
	if r.pos >= r.frames {
		r.ended = true
		r.fireEnd()
	}
	return n, nil
}

func (r *RawProvider) Seek(frames int64) error {
	if frames < 0 || frames > r.frames {
		return apperr.New(apperr.KindInvalidArgument, "seek out of range")
	}
	r.pos = frames
	r.ended = false
	return nil
}

// SyntheticKind selects a SyntheticProvider's waveform.
type SyntheticKind int

const (
	SyntheticSilence SyntheticKind = iota
	SyntheticSine
	SyntheticDC
)

// SyntheticProvider is an infinite, non-seekable generator used for
// tests and for silence/tone placeholders; grounded on the same
// "lazy, forward-read" shape as the other providers but with no backing
// store at all.
type SyntheticProvider struct {
	base
	fmtv  format.AudioFormat
	kind  SyntheticKind
	freq  float64
	level float32
	pos   int64
}

func NewSyntheticProvider(fmtv format.AudioFormat, kind SyntheticKind, freqHz float64, level float32) *SyntheticProvider {
	return &SyntheticProvider{fmtv: fmtv, kind: kind, freq: freqHz, level: level}
}

func (s *SyntheticProvider) Format() format.AudioFormat   { return s.fmtv }
func (s *SyntheticProvider) Position() int64              { return s.pos }
func (s *SyntheticProvider) LengthFrames() (int64, bool) { return 0, false }
func (s *SyntheticProvider) CanSeek() bool                { return false }

func (s *SyntheticProvider) Read(dst []float32) (int, error) {
	ch := s.fmtv.Channels
	frames := len(dst) / ch
	for f := 0; f < frames; f++ {
		var v float32
		switch s.kind {
		case SyntheticSine:
			v = s.level * sinAt(s.freq, s.pos, s.fmtv.SampleRate)
		case SyntheticDC:
			v = s.level
		default:
			v = 0
		}
		for c := 0; c < ch; c++ {
			dst[f*ch+c] = v
		}
		s.pos++
	}
	s.firePosition(s.pos)
	return frames, nil
}

func (s *SyntheticProvider) Seek(int64) error {
	return apperr.New(apperr.KindNotSeekable, "synthetic provider is forward-only")
}

func sinAt(freq float64, n int64, sampleRate int) float32 {
	const tau = 6.283185307179586
	x := tau * freq * float64(n) / float64(sampleRate)
	return float32(math.Sin(x))
}
