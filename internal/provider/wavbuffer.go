package provider

import (
	"github.com/go-audio/audio"

	"github.com/cbegin/audiograph/internal/format"
)

// wavIntBuffer bridges go-audio/audio's IntBuffer (the shape
// go-audio/wav.Decoder.PCMBuffer fills) into the graph's interleaved
// float32 working format.
type wavIntBuffer struct {
	format *format.AudioFormat
	buf    *audio.IntBuffer
}

func (w *wavIntBuffer) asAudioBuffer(frames int) *audio.IntBuffer {
	w.buf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: w.format.Channels,
			SampleRate:  w.format.SampleRate,
		},
		Data:           make([]int, frames*w.format.Channels),
		SourceBitDepth: bitDepthOf(w.format.Encoding),
	}
	return w.buf
}

func bitDepthOf(e format.Encoding) int {
	switch e {
	case format.U8:
		return 8
	case format.S24:
		return 24
	case format.S32, format.F32:
		return 32
	default:
		return 16
	}
}

// writeFloat32 scales the decoded integer samples in w.buf into dst,
// using the same full-scale divisor as the matching format.Encoding so
// a WAV-sourced buffer and a raw-PCM-sourced buffer agree bit-for-bit
// on the same input.
func (w *wavIntBuffer) writeFloat32(dst []float32, n int) {
	fullScale := float32(int64(1) << (w.buf.SourceBitDepth - 1))
	for i := 0; i < n && i < len(w.buf.Data); i++ {
		dst[i] = float32(w.buf.Data[i]) / fullScale
	}
}
