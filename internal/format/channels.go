package format

// Layout names a channel layout following WAVE-format conventions.
type Layout int

const (
	LayoutMono Layout = iota
	LayoutStereo
	Layout51 // L R C LFE BL BR
	Layout71 // adds SL SR
)

func ChannelCount(l Layout) int {
	switch l {
	case LayoutMono:
		return 1
	case LayoutStereo:
		return 2
	case Layout51:
		return 6
	case Layout71:
		return 8
	default:
		return 2
	}
}

// Deinterleave splits an interleaved block into per-channel slices.
// dst must have len(dst) == channels and each dst[c] sized frames.
func Deinterleave(src []float32, channels int, dst [][]float32) {
	frames := len(src) / channels
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			dst[c][f] = src[f*channels+c]
		}
	}
}

// Interleave is the inverse of Deinterleave.
func Interleave(src [][]float32, channels int, dst []float32) {
	frames := len(dst) / channels
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			dst[f*channels+c] = src[c][f]
		}
	}
}

// The stereo<->surround coefficients are local constants inside
// stereoToSurround and surroundToStereo; Mix allocates no matrix.

// Mix converts one interleaved frame (len(srcFrame) == srcChannels)
// into dstFrame (len == dstChannels) using the fixed downmix/upmix
// rules: mono<->stereo duplicate/average, stereo<->5.1/7.1 via
// ITU-R BS.775 coefficients. Unrecognized channel-count pairs pass
// through by copy-or-truncate.
func Mix(srcFrame []float32, srcChannels int, dstFrame []float32, dstChannels int) {
	switch {
	case srcChannels == dstChannels:
		copy(dstFrame, srcFrame)
	case srcChannels == 1 && dstChannels == 2:
		dstFrame[0] = srcFrame[0]
		dstFrame[1] = srcFrame[0]
	case srcChannels == 2 && dstChannels == 1:
		dstFrame[0] = (srcFrame[0] + srcFrame[1]) * 0.5
	case srcChannels == 2 && dstChannels == 6:
		stereoToSurround(srcFrame, dstFrame, 6)
	case srcChannels == 2 && dstChannels == 8:
		stereoToSurround(srcFrame, dstFrame, 8)
	case srcChannels == 6 && dstChannels == 2:
		surroundToStereo(srcFrame, dstFrame, 6)
	case srcChannels == 8 && dstChannels == 2:
		surroundToStereo(srcFrame, dstFrame, 8)
	default:
		n := srcChannels
		if dstChannels < n {
			n = dstChannels
		}
		for i := 0; i < n; i++ {
			dstFrame[i] = srcFrame[i]
		}
		for i := n; i < dstChannels; i++ {
			dstFrame[i] = 0
		}
	}
}

// stereoToSurround places L/R directly, derives center as their
// average, leaves LFE silent, and duplicates L/R into the rear/side
// channels attenuated by the ITU-R BS.775 downmix coefficient (~0.707)
// run in reverse as a simple, deterministic upmix.
func stereoToSurround(src []float32, dst []float32, n int) {
	const rear = 0.707
	l, r := src[0], src[1]
	for i := range dst[:n] {
		dst[i] = 0
	}
	dst[0] = l // L
	dst[1] = r // R
	dst[2] = (l + r) * 0.5 // C
	dst[3] = 0             // LFE
	dst[4] = l * rear      // BL / SL
	dst[5] = r * rear      // BR / SR
	if n == 8 {
		dst[6] = l * rear // SL (7.1 adds a second rear pair)
		dst[7] = r * rear // SR
	}
}

// surroundToStereo implements the ITU-R BS.775 downmix: L' = L + 0.707C
// + 0.707BL, R' = R + 0.707C + 0.707BR (7.1's extra SL/SR fold in at the
// same 0.707 coefficient), followed by a 3 dB pad to keep the result in
// range when every channel is at full scale.
func surroundToStereo(src []float32, dst []float32, n int) {
	const k = 0.707
	const pad = 0.707
	l, r, c, bl, br := src[0], src[1], src[2], src[4], src[5]
	lo := l + k*c + k*bl
	ro := r + k*c + k*br
	if n == 8 {
		lo += k * src[6]
		ro += k * src[7]
	}
	dst[0] = lo * pad
	dst[1] = ro * pad
}
