package player

import "math"

// PanMethod selects how SurroundPan derives output gains.
type PanMethod int

const (
	PanLinear PanMethod = iota
	PanConstantPower
	PanVBAP
)

// Speaker is a speaker position on the unit circle, in radians, 0 =
// straight ahead, positive = clockwise (right).
type Speaker struct {
	Angle float64
}

// SurroundPan configures a player's panning. PanLinear and
// PanConstantPower behave identically: the source frame is averaged to
// mono and split to the first two output channels at √2/2 gain each,
// other output channels are silent, and no pan position is read. For
// PanVBAP it places the source at SourceAngle among Speakers using
// vector-base amplitude panning.
type SurroundPan struct {
	Method       PanMethod
	Speakers     []Speaker
	SourceAngle  float64
	ListenerYaw  float64 // rotates Speakers/SourceAngle when the listener turns
}

// Apply converts one srcCh-wide input frame into a dstCh-wide output
// frame using the configured method. For PanLinear/PanConstantPower
// the mono mix goes to L and R at √2/2 each (the graph package's
// equal-power pan at centre only), or unchanged to a mono output; for
// PanVBAP the source is placed among the configured speaker ring.
func (s *SurroundPan) Apply(src []float32, srcCh int, dst []float32, dstCh int) {
	mono := monoOf(src, srcCh)
	switch s.Method {
	case PanVBAP:
		s.applyVBAP(mono, dst, dstCh)
	default:
		s.applyLinearOrPower(mono, dst, dstCh)
	}
}

func monoOf(src []float32, ch int) float32 {
	if ch == 1 {
		return src[0]
	}
	var sum float32
	for _, v := range src {
		sum += v
	}
	return sum / float32(ch)
}

func (s *SurroundPan) applyLinearOrPower(mono float32, dst []float32, dstCh int) {
	if dstCh == 1 {
		dst[0] = mono
		return
	}
	// Split equally across the first two channels (L/R); any
	// additional surround channels receive silence from this simple
	// stereo-source method (VBAP exists for true multi-speaker placement).
	for i := range dst {
		dst[i] = 0
	}
	dst[0] = mono * float32(math.Sqrt2) / 2
	dst[1] = mono * float32(math.Sqrt2) / 2
}

// applyVBAP implements 2D vector-base amplitude panning: choose the two
// speakers whose angles bracket SourceAngle with the smallest included
// angle, then solve the planar triangle for their gains.
func (s *SurroundPan) applyVBAP(mono float32, dst []float32, dstCh int) {
	for i := range dst {
		dst[i] = 0
	}
	if len(s.Speakers) < 2 {
		if dstCh > 0 {
			dst[0] = mono
		}
		return
	}
	target := s.SourceAngle + s.ListenerYaw

	bestI, bestJ := 0, 1
	bestSpan := math.Pi * 2
	for i := 0; i < len(s.Speakers); i++ {
		for j := i + 1; j < len(s.Speakers); j++ {
			ai, aj := s.Speakers[i].Angle, s.Speakers[j].Angle
			if angleBetween(ai, aj, target) {
				span := math.Abs(angularDiff(ai, aj))
				if span < bestSpan {
					bestSpan = span
					bestI, bestJ = i, j
				}
			}
		}
	}

	p1 := [2]float64{math.Cos(s.Speakers[bestI].Angle), math.Sin(s.Speakers[bestI].Angle)}
	p2 := [2]float64{math.Cos(s.Speakers[bestJ].Angle), math.Sin(s.Speakers[bestJ].Angle)}
	src := [2]float64{math.Cos(target), math.Sin(target)}

	// Solve [p1 p2] * [g1 g2]^T = src for the two speaker gains.
	det := p1[0]*p2[1] - p1[1]*p2[0]
	var g1, g2 float64
	if math.Abs(det) > 1e-9 {
		g1 = (src[0]*p2[1] - src[1]*p2[0]) / det
		g2 = (p1[0]*src[1] - p1[1]*src[0]) / det
	}
	norm := math.Hypot(g1, g2)
	if norm > 1e-9 {
		g1 /= norm
		g2 /= norm
	}
	if bestI < dstCh {
		dst[bestI] += mono * float32(g1)
	}
	if bestJ < dstCh {
		dst[bestJ] += mono * float32(g2)
	}
}

func angularDiff(a, b float64) float64 {
	d := math.Mod(b-a+math.Pi, 2*math.Pi) - math.Pi
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func angleBetween(a, b, target float64) bool {
	span := angularDiff(a, b)
	toTarget := angularDiff(a, target)
	if span >= 0 {
		return toTarget >= 0 && toTarget <= span
	}
	return toTarget <= 0 && toTarget >= span
}
