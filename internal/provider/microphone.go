package provider

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

// CaptureSource is the external device-driver collaborator that
// delivers raw capture frames to the callback passed to Start. No type
// in internal/device implements it; a capture Device delivers frames
// through the onCapture callback given to OpenCapture instead.
type CaptureSource interface {
	Start(onFrames func([]float32)) error
	Stop() error
}

// MicrophoneProvider captures from a device into a bounded queue,
// dropping the oldest frames on overflow with a logged warning rather
// than blocking the capture callback.
type MicrophoneProvider struct {
	base
	fmtv   format.AudioFormat
	ring   *ringBuffer
	src    CaptureSource
	logger *log.Logger
	pos    int64
}

// NewMicrophoneProvider wires src's capture callback into a drop-oldest
// ring buffer sized for bufferFrames of audio.
func NewMicrophoneProvider(fmtv format.AudioFormat, bufferFrames int, src CaptureSource, logger *log.Logger) *MicrophoneProvider {
	if logger == nil {
		logger = log.Default()
	}
	m := &MicrophoneProvider{
		fmtv:   fmtv,
		ring:   newRingBufferDropOldest(bufferFrames * fmtv.Channels),
		src:    src,
		logger: logger,
	}
	return m
}

// Start begins capture; the device callback feeds frames into the ring.
func (m *MicrophoneProvider) Start() error {
	lastDropLog := int64(0)
	return m.src.Start(func(frames []float32) {
		m.ring.write(frames)
		if dropped := m.ring.droppedCount(); dropped != lastDropLog {
			m.logger.Warn("microphone capture dropped frames", "dropped", dropped-lastDropLog)
			lastDropLog = dropped
		}
	})
}

func (m *MicrophoneProvider) Stop() error { return m.src.Stop() }

func (m *MicrophoneProvider) Format() format.AudioFormat  { return m.fmtv }
func (m *MicrophoneProvider) Position() int64             { return m.pos }
func (m *MicrophoneProvider) LengthFrames() (int64, bool) { return 0, false }
func (m *MicrophoneProvider) CanSeek() bool               { return false }

func (m *MicrophoneProvider) Read(dst []float32) (int, error) {
	n, _ := m.ring.readWithTimeout(dst, 50*time.Millisecond)
	m.pos += int64(n / m.fmtv.Channels)
	if n > 0 {
		m.firePosition(m.pos)
	}
	return n / m.fmtv.Channels, nil
}

func (m *MicrophoneProvider) Seek(int64) error {
	return apperr.New(apperr.KindNotSeekable, "microphone provider is forward-only")
}
