// Package device implements the device-driven engine: device lifecycle,
// callback dispatch into the master mixer, and each device's
// audio-processed broadcast. Two backends are wired: portaudio for real
// hardware, and an ebiten/oto-backed backend for the no-hardware demo
// and test path.
package device

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

// State is a device's lifecycle stage.
type State int

const (
	StateUninitialized State = iota
	StateStopped
	StateRunning
)

// Capability tags an audio-processed broadcast with which path produced it.
type Capability int

const (
	CapabilityPlayback Capability = iota
	CapabilityCapture
)

// Info identifies an enumerable device. Per this module's resolved
// open question, only the UTF-8 Name is exposed; a legacy fixed-string
// layout, if a backend happens to expose one, is decoded into this same
// field by the backend and never surfaced as a second field.
type Info struct {
	ID         uuid.UUID
	Name       string
	IsPlayback bool
	IsCapture  bool
}

// Backend is the native-device collaborator this package treats as
// external: it enumerates devices and opens streams that invoke a PCM
// callback. portaudio_backend.go and ebiten_backend.go implement it.
type Backend interface {
	ListPlaybackDevices() ([]Info, error)
	ListCaptureDevices() ([]Info, error)
	OpenPlayback(dev Info, fmtv format.AudioFormat, onRender func(out []float32)) (StreamHandle, error)
	OpenCapture(dev Info, fmtv format.AudioFormat, onCapture func(in []float32)) (StreamHandle, error)
}

// StreamHandle is a started stream that can be stopped and closed.
type StreamHandle interface {
	Start() error
	Stop() error
	Close() error
}

// Device wraps one opened stream with its lifecycle state and format,
// plus the graph-attachment bookkeeping device switching must preserve.
type Device struct {
	mu      sync.Mutex
	state   State
	fmtv    format.AudioFormat
	info    Info
	backend Backend
	stream  StreamHandle

	onRender  func(out []float32)
	onCapture func(in []float32)

	processedMu   sync.Mutex
	processedSubs []func(buf []float32, channels int, cap Capability)
}

// Engine owns one or more devices opened on one backend. Audio-processed
// subscribers are kept per Device (see Device.OnAudioProcessed), not
// shared across devices.
type Engine struct {
	mu      sync.Mutex
	devices map[uuid.UUID]*Device
	backend Backend
}

// NewEngine constructs an engine bound to a single backend; a host can
// run multiple Engines (e.g. one per backend) if it needs both
// portaudio and ebiten device sets simultaneously.
func NewEngine(backend Backend) *Engine {
	return &Engine{devices: map[uuid.UUID]*Device{}, backend: backend}
}

func (e *Engine) ListPlaybackDevices() ([]Info, error) { return e.backend.ListPlaybackDevices() }
func (e *Engine) ListCaptureDevices() ([]Info, error)  { return e.backend.ListCaptureDevices() }

// OpenPlayback opens dev at fmtv and wires onRender as its callback,
// which is typically a master Mixer's Render method.
func (e *Engine) OpenPlayback(dev Info, fmtv format.AudioFormat, onRender func(out []float32)) (*Device, error) {
	if !fmtv.Valid() {
		return nil, apperr.New(apperr.KindFormatUnsupported, "invalid sample rate or channel count")
	}
	d := &Device{state: StateStopped, fmtv: fmtv, info: dev, backend: e.backend, onRender: onRender}
	stream, err := e.backend.OpenPlayback(dev, fmtv, func(out []float32) {
		onRender(out)
		d.broadcast(out, fmtv.Channels, CapabilityPlayback)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDeviceError, "open playback failed", err)
	}
	d.stream = stream
	e.mu.Lock()
	e.devices[dev.ID] = d
	e.mu.Unlock()
	return d, nil
}

// OpenCapture opens dev at fmtv for capture, fanning frames out to
// onCapture (typically a MicrophoneProvider's ingestion callback).
func (e *Engine) OpenCapture(dev Info, fmtv format.AudioFormat, onCapture func(in []float32)) (*Device, error) {
	if !fmtv.Valid() {
		return nil, apperr.New(apperr.KindFormatUnsupported, "invalid sample rate or channel count")
	}
	d := &Device{state: StateStopped, fmtv: fmtv, info: dev, backend: e.backend, onCapture: onCapture}
	stream, err := e.backend.OpenCapture(dev, fmtv, func(in []float32) {
		onCapture(in)
		d.broadcast(in, fmtv.Channels, CapabilityCapture)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDeviceError, "open capture failed", err)
	}
	d.stream = stream
	e.mu.Lock()
	e.devices[dev.ID] = d
	e.mu.Unlock()
	return d, nil
}

// OpenFullDuplex opens matching playback and capture streams sharing format.
func (e *Engine) OpenFullDuplex(dev Info, fmtv format.AudioFormat, onRender func([]float32), onCapture func([]float32)) (playback, capture *Device, err error) {
	playback, err = e.OpenPlayback(dev, fmtv, onRender)
	if err != nil {
		return nil, nil, err
	}
	capture, err = e.OpenCapture(dev, fmtv, onCapture)
	if err != nil {
		playback.Dispose()
		return nil, nil, err
	}
	return playback, capture, nil
}

// OpenLoopback opens a loopback capture device; it fails with
// apperr.ErrNotSupported when the backend has no loopback device.
func (e *Engine) OpenLoopback(fmtv format.AudioFormat, onCapture func([]float32)) (*Device, error) {
	devices, err := e.backend.ListCaptureDevices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if isLoopbackName(d.Name) {
			return e.OpenCapture(d, fmtv, onCapture)
		}
	}
	return nil, apperr.New(apperr.KindNotSupported, "no loopback capture device on this backend")
}

func isLoopbackName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "loopback") || strings.Contains(lower, "stereo mix")
}

// Start transitions a device Stopped -> Running.
func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateRunning {
		return nil
	}
	if err := d.stream.Start(); err != nil {
		return apperr.Wrap(apperr.KindDeviceError, "stream start failed", err)
	}
	d.state = StateRunning
	return nil
}

// Stop transitions Running -> Stopped.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateRunning {
		return nil
	}
	if err := d.stream.Stop(); err != nil {
		return apperr.Wrap(apperr.KindDeviceError, "stream stop failed", err)
	}
	d.state = StateStopped
	return nil
}

// Dispose releases the device's native handle permanently.
func (d *Device) Dispose() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.stream.Close()
	d.state = StateUninitialized
	if err != nil {
		return apperr.Wrap(apperr.KindDeviceError, "stream close failed", err)
	}
	return nil
}

func (d *Device) State() State              { return d.state }
func (d *Device) Format() format.AudioFormat { return d.fmtv }
func (d *Device) Info() Info                { return d.info }

// OnAudioProcessed subscribes to this device's post-callback broadcast,
// tagged with the capability (Playback/Capture) that produced the block.
func (d *Device) OnAudioProcessed(f func(buf []float32, channels int, cap Capability)) {
	d.processedMu.Lock()
	d.processedSubs = append(d.processedSubs, f)
	d.processedMu.Unlock()
}

// broadcast fans buf out to every audio-processed subscriber. Called
// inline on the audio callback thread; subscribers must be short and
// non-blocking per the design note on event fan-out.
func (d *Device) broadcast(buf []float32, channels int, cap Capability) {
	d.processedMu.Lock()
	subs := append([]func([]float32, int, Capability){}, d.processedSubs...)
	d.processedMu.Unlock()
	for _, s := range subs {
		s(buf, channels, cap)
	}
}

// SwitchDevice stops the old device, opens a new one with the same
// format, and starts it if the old one was running. If opening or
// starting the new device fails, it rolls back by restarting the old
// device (when it was running) and returns the error. Once the new
// device is running the old one is disposed; if that fails, the new
// device is returned together with the error.
func (e *Engine) SwitchDevice(old *Device, newInfo Info) (*Device, error) {
	old.mu.Lock()
	wasRunning := old.state == StateRunning
	fmtv := old.fmtv
	onRender := old.onRender
	onCapture := old.onCapture
	old.mu.Unlock()

	if err := old.Stop(); err != nil {
		return nil, err
	}

	var next *Device
	var err error
	if onRender != nil {
		next, err = e.OpenPlayback(newInfo, fmtv, onRender)
	} else {
		next, err = e.OpenCapture(newInfo, fmtv, onCapture)
	}
	if err != nil {
		// Roll back: restart the old device so the host stays live.
		if wasRunning {
			_ = old.Start()
		}
		return nil, err
	}

	next.processedMu.Lock()
	next.processedSubs = append(next.processedSubs, old.processedSubs...)
	next.processedMu.Unlock()

	if wasRunning {
		if err := next.Start(); err != nil {
			// Roll back: release the new device and restart the old one.
			_ = next.Dispose()
			_ = old.Start()
			return nil, err
		}
	}

	if err := old.Dispose(); err != nil {
		return next, err
	}
	e.mu.Lock()
	delete(e.devices, old.info.ID)
	e.mu.Unlock()
	return next, nil
}
