package engine

import (
	"io"
	"math"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

// Codec names the output codec a Recorder targets. Per spec, WAV,
// FLAC and MP3 are all meant to be delegated to an external codec
// library; only go-audio/wav is present in this module's dependency
// set, so FLAC and MP3 are recognized but rejected at construction
// with KindNotSupported rather than silently falling back to a
// hand-rolled encoder.
type Codec int

const (
	CodecWAV Codec = iota
	CodecFLAC
	CodecMP3
)

// RecorderState is the recorder's transport state.
type RecorderState int

const (
	RecorderStopped RecorderState = iota
	RecorderRecording
	RecorderPaused
)

// Recorder ingests interleaved float32 blocks (typically via
// Device.OnAudioProcessed) and encodes them to w as they arrive.
// Grounded on the teacher's eventWrapper/sampleTap tap-and-forward
// pattern in the root player.go, generalized from "one in-process
// tap callback" to "an encoded file written incrementally."
type Recorder struct {
	mu    sync.Mutex
	state RecorderState

	codec     Codec
	fmtv      format.AudioFormat
	bitDepth  int
	enc       *wav.Encoder
	fullScale float64
	maxV      int64
	minV      int64

	onFailed func(error)
}

// NewRecorder constructs a Recorder writing fmtv-shaped audio to w as
// codec. Only CodecWAV is backed by a wired encoder in this build.
func NewRecorder(codec Codec, fmtv format.AudioFormat, w io.WriteSeeker, bitDepth int) (*Recorder, error) {
	if codec != CodecWAV {
		return nil, apperr.New(apperr.KindNotSupported, "only the WAV codec is wired to an encoder in this build")
	}
	if !fmtv.Valid() {
		return nil, apperr.New(apperr.KindFormatUnsupported, "invalid sample rate or channel count")
	}
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, apperr.New(apperr.KindInvalidArgument, "bitDepth must be 16, 24, or 32")
	}
	return &Recorder{
		codec:     codec,
		fmtv:      fmtv,
		bitDepth:  bitDepth,
		enc:       wav.NewEncoder(w, fmtv.SampleRate, bitDepth, fmtv.Channels, 1),
		fullScale: float64(int64(1) << uint(bitDepth-1)),
		maxV:      int64(1)<<uint(bitDepth-1) - 1,
		minV:      -int64(1) << uint(bitDepth-1),
	}, nil
}

// OnRecordingFailed registers a listener fired once when an encode
// call fails; the recorder stops itself before firing, per spec's
// "recorders on encode failure stop recording and publish
// recording-failed" propagation policy.
func (r *Recorder) OnRecordingFailed(f func(error)) { r.onFailed = f }

// Start transitions Stopped -> Recording.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == RecorderRecording {
		return nil
	}
	r.state = RecorderRecording
	return nil
}

// Pause transitions Recording -> Paused; ingested blocks are dropped
// while paused.
func (r *Recorder) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == RecorderRecording {
		r.state = RecorderPaused
	}
}

// Resume transitions Paused -> Recording.
func (r *Recorder) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == RecorderPaused {
		r.state = RecorderRecording
	}
}

// Stop finalizes the encoded file and transitions to Stopped. Safe to
// call more than once.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == RecorderStopped {
		return nil
	}
	r.state = RecorderStopped
	if err := r.enc.Close(); err != nil {
		return apperr.Wrap(apperr.KindEncoderError, "wav finalize failed", err)
	}
	return nil
}

// Ingest encodes one interleaved float32 block. Intended to be wired
// as a Device.OnAudioProcessed subscriber or a Mixer tap; it is a
// no-op while stopped or paused.
func (r *Recorder) Ingest(buf []float32, channels int) {
	r.mu.Lock()
	recording := r.state == RecorderRecording
	r.mu.Unlock()
	if !recording {
		return
	}

	data := make([]int, len(buf))
	for i, s := range buf {
		v := int64(math.RoundToEven(float64(s) * r.fullScale))
		if v > r.maxV {
			v = r.maxV
		}
		if v < r.minV {
			v = r.minV
		}
		data[i] = int(v)
	}
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: r.fmtv.SampleRate},
		Data:           data,
		SourceBitDepth: r.bitDepth,
	}
	if err := r.enc.Write(ib); err != nil {
		r.mu.Lock()
		r.state = RecorderStopped
		r.mu.Unlock()
		if r.onFailed != nil {
			r.onFailed(apperr.Wrap(apperr.KindEncoderError, "wav encode failed", err))
		}
	}
}
