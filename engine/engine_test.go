package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/device"
	"github.com/cbegin/audiograph/internal/format"
	"github.com/cbegin/audiograph/internal/graph"
	"github.com/cbegin/audiograph/internal/midi"
)

type fakeStream struct{ started, stopped, closed bool }

func (s *fakeStream) Start() error { s.started = true; return nil }
func (s *fakeStream) Stop() error  { s.stopped = true; return nil }
func (s *fakeStream) Close() error { s.closed = true; return nil }

type fakeBackend struct {
	devices    []device.Info
	lastRender func([]float32)
}

func (b *fakeBackend) ListPlaybackDevices() ([]device.Info, error) { return b.devices, nil }
func (b *fakeBackend) ListCaptureDevices() ([]device.Info, error)  { return b.devices, nil }
func (b *fakeBackend) OpenPlayback(dev device.Info, fmtv format.AudioFormat, onRender func([]float32)) (device.StreamHandle, error) {
	b.lastRender = onRender
	return &fakeStream{}, nil
}
func (b *fakeBackend) OpenCapture(device.Info, format.AudioFormat, func([]float32)) (device.StreamHandle, error) {
	return &fakeStream{}, nil
}

func testFmt() format.AudioFormat { return format.AudioFormat{SampleRate: 48000, Channels: 2} }

// constNode is a minimal graph.Node that fills every frame with a
// constant value, used to exercise the master mixer through Engine.
type constNode struct {
	*graph.Base
	value float32
}

func newConstNode(v float32) *constNode {
	return &constNode{Base: graph.NewBase("const"), value: v}
}

func (c *constNode) Render(buf []float32, channels int) int {
	for i := range buf {
		buf[i] = c.value
	}
	return len(buf)
}

func TestEngineOpenPlaybackRendersThroughMaster(t *testing.T) {
	dev := device.Info{ID: uuid.New(), Name: "fake", IsPlayback: true}
	backend := &fakeBackend{devices: []device.Info{dev}}
	e := New(backend)

	e.AddComponent(newConstNode(0.5))

	d, err := e.OpenPlayback(dev, testFmt())
	require.NoError(t, err)
	require.NotNil(t, backend.lastRender)

	out := make([]float32, 8)
	backend.lastRender(out)
	// default pan is center (0.5); equal-power pan scales each channel
	// by cos/sin(pi/4) = ~0.7071, so 0.5 in becomes ~0.3536 out.
	for _, v := range out {
		require.InDelta(t, 0.35355, v, 1e-4)
	}
	require.NoError(t, d.Start())
	require.NoError(t, e.Dispose())
}

func TestEngineDisposeTwiceFails(t *testing.T) {
	dev := device.Info{ID: uuid.New(), Name: "fake", IsPlayback: true}
	backend := &fakeBackend{devices: []device.Info{dev}}
	e := New(backend)
	_, err := e.OpenPlayback(dev, testFmt())
	require.NoError(t, err)

	require.NoError(t, e.Dispose())
	err = e.Dispose()
	require.ErrorIs(t, err, apperr.ErrDisposed)
}

func TestConnectRoutesMessages(t *testing.T) {
	src := &midi.FuncSource{}
	var got []midi.Message
	dest := midi.FuncDestination(func(m midi.Message) error {
		got = append(got, m)
		return nil
	})
	route := Connect(src, dest)
	route.AddProcessor(midi.Transpose{Semitones: 12})

	src.Emit(midi.Message{Command: midi.CommandNoteOn, Note: 60, Velocity: 100})
	require.Len(t, got, 1)
	require.Equal(t, uint8(72), got[0].Note)
}

func TestRenderToWAVProducesValidHeader(t *testing.T) {
	c := NewComposition(48000, 2, 480)
	tr := c.AddTrack("t")
	tr.SetVolume(1.0)
	_ = tr

	var buf bytesWriteSeeker
	err := RenderToWAV(&buf, c, 0, 0.01, 16)
	require.NoError(t, err)
	require.True(t, len(buf.data) > 44)
	require.Equal(t, "RIFF", string(buf.data[0:4]))
	require.Equal(t, "WAVE", string(buf.data[8:12]))
}

// bytesWriteSeeker is a minimal in-memory io.WriteSeeker, since
// go-audio/wav.Encoder needs to seek back and patch its header sizes
// once the data chunk is fully written.
type bytesWriteSeeker struct {
	data []byte
	pos  int64
}

func (w *bytesWriteSeeker) Write(p []byte) (int, error) {
	end := w.pos + int64(len(p))
	if end > int64(len(w.data)) {
		grown := make([]byte, end)
		copy(grown, w.data)
		w.data = grown
	}
	copy(w.data[w.pos:end], p)
	w.pos = end
	return len(p), nil
}

func (w *bytesWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		w.pos = offset
	case 1:
		w.pos += offset
	case 2:
		w.pos = int64(len(w.data)) + offset
	}
	return w.pos, nil
}
