// Package engine is the host-facing facade: the one import site a
// host program needs to create a device, attach a master mixer, and
// build the composition/player/synth/router pieces that feed it. It
// mirrors the teacher's root mmlfm package, which played the same role
// for an MML-driven player.
package engine

import (
	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/device"
	"github.com/cbegin/audiograph/internal/format"
	"github.com/cbegin/audiograph/internal/graph"
	"github.com/cbegin/audiograph/internal/midi"
	"github.com/cbegin/audiograph/internal/player"
	"github.com/cbegin/audiograph/internal/provider"
	"github.com/cbegin/audiograph/internal/synth"
	"github.com/cbegin/audiograph/internal/timeline"
)

// Re-export the error taxonomy so a host only ever imports this
// package, never internal/apperr directly.
type (
	Kind  = apperr.Kind
	Error = apperr.Error
)

const (
	KindDeviceError       = apperr.KindDeviceError
	KindFormatUnsupported = apperr.KindFormatUnsupported
	KindNotSeekable       = apperr.KindNotSeekable
	KindEndOfStream       = apperr.KindEndOfStream
	KindTimeout           = apperr.KindTimeout
	KindNotSupported      = apperr.KindNotSupported
	KindDisposed          = apperr.KindDisposed
	KindInvalidArgument   = apperr.KindInvalidArgument
	KindRouteFaulted      = apperr.KindRouteFaulted
	KindDecoderError      = apperr.KindDecoderError
	KindEncoderError      = apperr.KindEncoderError
)

// Device and format types a host needs to name are re-exported rather
// than requiring a second import.
type (
	DeviceInfo = device.Info
	Device     = device.Device
	Backend    = device.Backend
	Capability = device.Capability
	AudioFormat = format.AudioFormat
	Encoding    = format.Encoding
)

// Engine owns one native backend's device lifecycle plus the master
// mixer every opened playback device renders. A host typically
// constructs exactly one Engine per process.
type Engine struct {
	devices *device.Engine
	Master  *graph.Mixer

	playback *device.Device
	capture  *device.Device

	disposed bool
}

// New constructs an Engine bound to backend (portaudio, ebiten, or any
// other device.Backend implementation).
func New(backend device.Backend) *Engine {
	return &Engine{
		devices: device.NewEngine(backend),
		Master:  graph.NewMixer("master"),
	}
}

func (e *Engine) ListPlaybackDevices() ([]DeviceInfo, error) { return e.devices.ListPlaybackDevices() }
func (e *Engine) ListCaptureDevices() ([]DeviceInfo, error)  { return e.devices.ListCaptureDevices() }

// OpenPlayback opens dev and wires the master mixer as its render
// callback; this is the verb a host calls once at startup.
func (e *Engine) OpenPlayback(dev DeviceInfo, fmtv AudioFormat) (*Device, error) {
	channels := fmtv.Channels
	d, err := e.devices.OpenPlayback(dev, fmtv, func(out []float32) { e.Master.Render(out, channels) })
	if err != nil {
		return nil, err
	}
	e.playback = d
	return d, nil
}

// OpenCapture opens dev for capture, fanning frames to onCapture
// (typically a provider.MicrophoneProvider's ingestion callback).
func (e *Engine) OpenCapture(dev DeviceInfo, fmtv AudioFormat, onCapture func([]float32)) (*Device, error) {
	d, err := e.devices.OpenCapture(dev, fmtv, onCapture)
	if err != nil {
		return nil, err
	}
	e.capture = d
	return d, nil
}

// OpenFullDuplex opens matching playback (master mixer) and capture
// (onCapture) streams at the same format.
func (e *Engine) OpenFullDuplex(dev DeviceInfo, fmtv AudioFormat, onCapture func([]float32)) (playback, capture *Device, err error) {
	channels := fmtv.Channels
	playback, capture, err = e.devices.OpenFullDuplex(dev, fmtv, func(out []float32) { e.Master.Render(out, channels) }, onCapture)
	if err != nil {
		return nil, nil, err
	}
	e.playback, e.capture = playback, capture
	return playback, capture, nil
}

// OpenLoopback opens the platform's loopback capture device, failing
// with KindNotSupported where the backend exposes none.
func (e *Engine) OpenLoopback(fmtv AudioFormat, onCapture func([]float32)) (*Device, error) {
	d, err := e.devices.OpenLoopback(fmtv, onCapture)
	if err != nil {
		return nil, err
	}
	e.capture = d
	return d, nil
}

// SwitchDevice hot-swaps the playback device. If the new device cannot
// be opened or started, the old one is restarted (when it was running)
// and stays the playback device. If only disposing the old device
// fails, the new device becomes the playback device and is returned
// with the error.
func (e *Engine) SwitchDevice(newInfo DeviceInfo) (*Device, error) {
	if e.playback == nil {
		return nil, apperr.New(apperr.KindInvalidArgument, "no playback device open")
	}
	next, err := e.devices.SwitchDevice(e.playback, newInfo)
	if next != nil {
		e.playback = next
	}
	return next, err
}

// Dispose stops and releases the Engine's current playback and capture
// devices.
func (e *Engine) Dispose() error {
	if e.disposed {
		return apperr.New(apperr.KindDisposed, "engine already disposed")
	}
	e.disposed = true
	var firstErr error
	for _, d := range []*Device{e.playback, e.capture} {
		if d == nil {
			continue
		}
		_ = d.Stop()
		if err := d.Dispose(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// AddComponent / RemoveComponent manage the master mixer's children.
func (e *Engine) AddComponent(n graph.Node)    { e.Master.AddComponent(n) }
func (e *Engine) RemoveComponent(n graph.Node) { e.Master.RemoveComponent(n) }

// The following constructors are re-exported so a host program needs
// only this package to build every top-level collaborator.

// NewComposition constructs a timeline composition.
func NewComposition(sampleRate, channels, ticksPerQuarter int) *timeline.Composition {
	return timeline.NewComposition(sampleRate, channels, ticksPerQuarter)
}

// NewSoundPlayer constructs a player reading from prov.
func NewSoundPlayer(name string, prov provider.SoundDataProvider, frameSize int) *player.SoundPlayer {
	return player.NewSoundPlayer(name, prov, frameSize)
}

// NewSynth constructs a polyphonic synth with maxVoicesPerChannel
// voices available per MIDI channel.
func NewSynth(sampleRate, maxVoicesPerChannel int) *synth.Synth {
	return synth.NewSynth(sampleRate, maxVoicesPerChannel)
}

// Connect wires src to dest through a new MIDI route (empty processor
// chain; callers add processors with Route.AddProcessor).
func Connect(src midi.Source, dest midi.Destination) *midi.Route {
	return midi.NewRoute(src, dest)
}
