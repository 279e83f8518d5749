package engine

import (
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/timeline"
)

// RenderToWAV renders composition over [t0, t1) and encodes the result
// as a PCM WAV file at bitDepth (16, 24, or 32) through go-audio/wav,
// the same codec library internal/provider already decodes with —
// this is the encode-side mirror of wavIntBuffer in
// internal/provider/wavbuffer.go, replacing the teacher's hand-rolled
// encoding/binary RIFF writer in offline.go.
func RenderToWAV(w io.WriteSeeker, comp *timeline.Composition, t0, t1 float64, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return apperr.New(apperr.KindInvalidArgument, "bitDepth must be 16, 24, or 32")
	}
	samples := comp.Render(t0, t1)

	enc := wav.NewEncoder(w, comp.SampleRate, bitDepth, comp.Channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: comp.Channels, SampleRate: comp.SampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	fullScale := float64(int64(1) << uint(bitDepth-1))
	maxV := int64(1)<<uint(bitDepth-1) - 1
	minV := -int64(1) << uint(bitDepth-1)
	for i, s := range samples {
		v := int64(math.RoundToEven(float64(s) * fullScale))
		if v > maxV {
			v = maxV
		}
		if v < minV {
			v = minV
		}
		buf.Data[i] = int(v)
	}

	if err := enc.Write(buf); err != nil {
		return apperr.Wrap(apperr.KindEncoderError, "wav encode failed", err)
	}
	if err := enc.Close(); err != nil {
		return apperr.Wrap(apperr.KindEncoderError, "wav finalize failed", err)
	}
	return nil
}
