package device

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/google/uuid"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

// EbitenBackend is a playback-only, no-real-hardware backend used by
// the sample program. Adapted from the stream/player pair that originally
// bridged a single sequencer into ebitengine/oto; here the callback is
// an arbitrary onRender func so any Mixer.Render can be the source.
type EbitenBackend struct {
	id uuid.UUID

	mu          sync.Mutex
	contextOnce sync.Once
	context     *ebitaudio.Context
	sampleRate  int
}

// NewEbitenBackend constructs a backend exposing exactly one virtual
// playback device named "ebiten/oto default output".
func NewEbitenBackend() *EbitenBackend {
	return &EbitenBackend{id: uuid.New()}
}

func (b *EbitenBackend) ListPlaybackDevices() ([]Info, error) {
	return []Info{{ID: b.id, Name: "ebiten/oto default output", IsPlayback: true}}, nil
}

func (b *EbitenBackend) ListCaptureDevices() ([]Info, error) {
	return nil, apperr.New(apperr.KindNotSupported, "ebiten backend has no capture device")
}

func (b *EbitenBackend) sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contextOnce.Do(func() {
		b.sampleRate = sampleRate
		b.context = ebitaudio.NewContext(sampleRate)
	})
	if b.sampleRate != sampleRate {
		return nil, fmt.Errorf("ebiten audio context already initialized at %d Hz (requested %d Hz)", b.sampleRate, sampleRate)
	}
	return b.context, nil
}

func (b *EbitenBackend) OpenPlayback(dev Info, fmtv format.AudioFormat, onRender func([]float32)) (StreamHandle, error) {
	if dev.ID != b.id {
		return nil, apperr.New(apperr.KindInvalidArgument, "unknown ebiten device id")
	}
	if fmtv.Channels != 2 {
		return nil, apperr.New(apperr.KindFormatUnsupported, "ebiten backend requires stereo output")
	}
	ctx, err := b.sharedContext(fmtv.SampleRate)
	if err != nil {
		return nil, err
	}
	reader := &renderReader{onRender: onRender}
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &ebitenStream{player: pl, reader: reader}, nil
}

func (b *EbitenBackend) OpenCapture(Info, format.AudioFormat, func([]float32)) (StreamHandle, error) {
	return nil, apperr.New(apperr.KindNotSupported, "ebiten backend has no capture device")
}

// renderReader adapts an arbitrary stereo-F32 onRender callback into
// the io.Reader shape ebitengine's audio.Context expects, the same
// byte-packing the teacher's StreamReader used.
type renderReader struct {
	mu       sync.Mutex
	onRender func([]float32)
	buf      []float32
}

func (r *renderReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8 // 2 channels * 4 bytes/float32
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.onRender(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *renderReader) Close() error { return nil }

type ebitenStream struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

func (s *ebitenStream) Start() error { s.player.Play(); return nil }
func (s *ebitenStream) Stop() error  { s.player.Pause(); return nil }
func (s *ebitenStream) Close() error {
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		return err
	}
	return s.reader.Close()
}
