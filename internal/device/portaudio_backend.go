package device

import (
	"runtime"

	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

// PortaudioBackend binds to real hardware via
// github.com/gordonklaus/portaudio, grounded on the device-callback
// pattern used for native audio engines in the pack: lock the callback
// goroutine to its OS thread and work from pre-allocated buffers only.
type PortaudioBackend struct {
	idByIndex map[int]uuid.UUID
}

// NewPortaudioBackend initializes the portaudio library. Callers must
// call Terminate when the backend is no longer needed.
func NewPortaudioBackend() (*PortaudioBackend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, apperr.Wrap(apperr.KindDeviceError, "portaudio init failed", err)
	}
	return &PortaudioBackend{idByIndex: map[int]uuid.UUID{}}, nil
}

// Terminate releases the portaudio library's process-wide resources.
func (b *PortaudioBackend) Terminate() error {
	return portaudio.Terminate()
}

func (b *PortaudioBackend) infoFor(index int, dev *portaudio.DeviceInfo, playback, capture bool) Info {
	id, ok := b.idByIndex[index]
	if !ok {
		id = uuid.New()
		b.idByIndex[index] = id
	}
	return Info{ID: id, Name: dev.Name, IsPlayback: playback, IsCapture: capture}
}

func (b *PortaudioBackend) ListPlaybackDevices() ([]Info, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDeviceError, "enumerate devices failed", err)
	}
	var out []Info
	for i, d := range devices {
		if d.MaxOutputChannels > 0 {
			out = append(out, b.infoFor(i, d, true, false))
		}
	}
	return out, nil
}

func (b *PortaudioBackend) ListCaptureDevices() ([]Info, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDeviceError, "enumerate devices failed", err)
	}
	var out []Info
	for i, d := range devices {
		if d.MaxInputChannels > 0 {
			out = append(out, b.infoFor(i, d, false, true))
		}
	}
	return out, nil
}

func (b *PortaudioBackend) findDevice(id uuid.UUID) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for i, d := range devices {
		if b.idByIndex[i] == id {
			return d, nil
		}
	}
	return nil, apperr.New(apperr.KindInvalidArgument, "unknown device id")
}

func (b *PortaudioBackend) OpenPlayback(dev Info, fmtv format.AudioFormat, onRender func([]float32)) (StreamHandle, error) {
	pdev, err := b.findDevice(dev.ID)
	if err != nil {
		return nil, err
	}
	params := portaudio.HighLatencyParameters(nil, pdev)
	params.Output.Channels = fmtv.Channels
	params.SampleRate = float64(fmtv.SampleRate)

	out := make([]float32, 0, 4096)
	stream, err := portaudio.OpenStream(params, func(outBuf []float32) {
		runtime.LockOSThread()
		if cap(out) < len(outBuf) {
			out = make([]float32, len(outBuf))
		}
		out = out[:len(outBuf)]
		onRender(out)
		copy(outBuf, out)
	})
	if err != nil {
		return nil, err
	}
	return &paStream{stream: stream}, nil
}

func (b *PortaudioBackend) OpenCapture(dev Info, fmtv format.AudioFormat, onCapture func([]float32)) (StreamHandle, error) {
	pdev, err := b.findDevice(dev.ID)
	if err != nil {
		return nil, err
	}
	params := portaudio.HighLatencyParameters(pdev, nil)
	params.Input.Channels = fmtv.Channels
	params.SampleRate = float64(fmtv.SampleRate)

	stream, err := portaudio.OpenStream(params, func(inBuf []float32) {
		runtime.LockOSThread()
		onCapture(inBuf)
	})
	if err != nil {
		return nil, err
	}
	return &paStream{stream: stream}, nil
}

type paStream struct {
	stream *portaudio.Stream
}

func (s *paStream) Start() error { return s.stream.Start() }
func (s *paStream) Stop() error  { return s.stream.Stop() }
func (s *paStream) Close() error { return s.stream.Close() }
