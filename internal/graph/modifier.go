// Package graph implements the pull-model component graph: the
// Modifier/Analyzer contracts, the Node base, and the Mixer that
// recursively pulls from its children, applies each child's modifier
// chain, fans the result out to analyzers, and accumulates into the
// parent's output.
package graph

// Modifier is a pure, in-place block transformer. Process must not
// allocate in steady state and must be safe to call concurrently with
// parameter mutations made from other threads (those mutations are
// expected to be atomic loads/stores on the modifier's own fields;
// Process always observes either the old or the new value, never a
// torn one).
type Modifier interface {
	Process(buf []float32, channels int)
	Enabled() bool
}

// SampleModifier is the sample-at-a-time alternative to Modifier,
// adopted by kernels (e.g. a single Biquad) that are naturally
// expressed per-sample; BlockFromSample adapts one to the Modifier
// interface.
type SampleModifier interface {
	ProcessSample(x float32, ch int) float32
	Enabled() bool
}

// BlockFromSample adapts a SampleModifier into a Modifier.
func BlockFromSample(m SampleModifier) Modifier {
	return &sampleAdapter{m}
}

type sampleAdapter struct{ m SampleModifier }

func (a *sampleAdapter) Enabled() bool { return a.m.Enabled() }

func (a *sampleAdapter) Process(buf []float32, channels int) {
	for i := 0; i < len(buf); i += channels {
		for ch := 0; ch < channels; ch++ {
			buf[i+ch] = a.m.ProcessSample(buf[i+ch], ch)
		}
	}
}

// Analyzer is a read-only observer over the post-modifier buffer. It
// may publish derived state (level, spectrum, VAD) through its own
// subscriber mechanism; Observe itself never mutates buf.
type Analyzer interface {
	Observe(buf []float32, channels int)
}

// RunModifiers applies every enabled modifier in chain, in order, to buf.
func RunModifiers(chain []Modifier, buf []float32, channels int) {
	for _, m := range chain {
		if m.Enabled() {
			m.Process(buf, channels)
		}
	}
}

// NotifyAnalyzers fans buf out to every analyzer in set.
func NotifyAnalyzers(set []Analyzer, buf []float32, channels int) {
	for _, a := range set {
		a.Observe(buf, channels)
	}
}
