package device

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

type fakeStream struct {
	started, stopped, closed bool
}

func (s *fakeStream) Start() error { s.started = true; return nil }
func (s *fakeStream) Stop() error  { s.stopped = true; return nil }
func (s *fakeStream) Close() error { s.closed = true; return nil }

type fakeBackend struct {
	playbackDevices []Info
	openErr         error
	lastRender      func([]float32)
}

func (b *fakeBackend) ListPlaybackDevices() ([]Info, error) { return b.playbackDevices, nil }
func (b *fakeBackend) ListCaptureDevices() ([]Info, error)  { return nil, nil }
func (b *fakeBackend) OpenPlayback(dev Info, fmtv format.AudioFormat, onRender func([]float32)) (StreamHandle, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.lastRender = onRender
	return &fakeStream{}, nil
}
func (b *fakeBackend) OpenCapture(Info, format.AudioFormat, func([]float32)) (StreamHandle, error) {
	return nil, apperr.New(apperr.KindNotSupported, "fake backend has no capture")
}

func testFmt() format.AudioFormat { return format.AudioFormat{SampleRate: 48000, Channels: 2} }

func TestEngineOpenPlaybackAndStart(t *testing.T) {
	dev := Info{ID: uuid.New(), Name: "fake", IsPlayback: true}
	backend := &fakeBackend{playbackDevices: []Info{dev}}
	eng := NewEngine(backend)

	rendered := false
	d, err := eng.OpenPlayback(dev, testFmt(), func(out []float32) { rendered = true })
	require.NoError(t, err)
	require.Equal(t, StateStopped, d.State())

	require.NoError(t, d.Start())
	require.Equal(t, StateRunning, d.State())

	backend.lastRender(make([]float32, 4))
	require.True(t, rendered)
}

func TestAudioProcessedBroadcast(t *testing.T) {
	dev := Info{ID: uuid.New(), Name: "fake"}
	backend := &fakeBackend{playbackDevices: []Info{dev}}
	eng := NewEngine(backend)
	d, err := eng.OpenPlayback(dev, testFmt(), func(out []float32) {})
	require.NoError(t, err)

	var gotCap Capability
	var gotLen int
	d.OnAudioProcessed(func(buf []float32, channels int, cap Capability) {
		gotCap = cap
		gotLen = len(buf)
	})
	backend.lastRender(make([]float32, 8))
	require.Equal(t, CapabilityPlayback, gotCap)
	require.Equal(t, 8, gotLen)
}

func TestOpenPlaybackInvalidFormat(t *testing.T) {
	backend := &fakeBackend{}
	eng := NewEngine(backend)
	_, err := eng.OpenPlayback(Info{}, format.AudioFormat{}, func([]float32) {})
	require.Error(t, err)
	e, ok := err.(*apperr.Error)
	require.True(t, ok)
	require.Equal(t, apperr.KindFormatUnsupported, e.Kind)
}
