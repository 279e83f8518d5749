package provider

import (
	"io"

	"github.com/go-audio/wav"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

// ChunkedDecoderProvider calls an external codec on demand rather than
// decoding the whole stream up front. This is the one concrete codec
// instance wired into the module: github.com/go-audio/wav. Any other
// codec only needs to produce the same IntBuffer shape to slot in here.
type ChunkedDecoderProvider struct {
	base
	dec    *wav.Decoder
	fmtv   format.AudioFormat
	frames int64
	pos    int64
	ended  bool
}

// NewChunkedDecoderProvider opens a WAV stream for chunked decoding.
// CanSeek reports true once the decoder has located the PCM data chunk.
func NewChunkedDecoderProvider(r io.ReadSeeker) (*ChunkedDecoderProvider, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, apperr.New(apperr.KindDecoderError, "not a valid WAV stream")
	}
	dec.ReadInfo()
	fmtv := format.AudioFormat{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		Encoding:   bitDepthToEncoding(int(dec.BitDepth)),
	}
	var frames int64
	if dur, err := dec.Duration(); err == nil {
		frames = int64(dur.Seconds() * float64(fmtv.SampleRate))
	}
	return &ChunkedDecoderProvider{dec: dec, fmtv: fmtv, frames: frames}, nil
}

func bitDepthToEncoding(bits int) format.Encoding {
	switch bits {
	case 8:
		return format.U8
	case 24:
		return format.S24
	case 32:
		return format.S32
	default:
		return format.S16
	}
}

func (c *ChunkedDecoderProvider) Format() format.AudioFormat   { return c.fmtv }
func (c *ChunkedDecoderProvider) Position() int64              { return c.pos }
func (c *ChunkedDecoderProvider) LengthFrames() (int64, bool)  { return c.frames, c.frames > 0 }
func (c *ChunkedDecoderProvider) CanSeek() bool                { return c.dec.PCMChunk != nil }

func (c *ChunkedDecoderProvider) Read(dst []float32) (int, error) {
	ch := c.fmtv.Channels
	wantFrames := len(dst) / ch
	buf := &wavIntBuffer{format: &c.fmtv}
	n, err := c.dec.PCMBuffer(buf.asAudioBuffer(wantFrames))
	if err != nil && err != io.EOF {
		return 0, apperr.Wrap(apperr.KindDecoderError, "wav decode failed", err)
	}
	if n == 0 {
		if !c.ended {
			c.ended = true
			c.fireEnd()
		}
		return 0, nil
	}
	buf.writeFloat32(dst, n)
	c.pos += int64(n / ch)
	c.firePosition(c.pos)
	return n / ch, nil
}

func (c *ChunkedDecoderProvider) Seek(frames int64) error {
	if !c.CanSeek() {
		return apperr.New(apperr.KindNotSeekable, "underlying WAV reader is not seekable")
	}
	c.pos = frames
	c.ended = false
	return nil
}
