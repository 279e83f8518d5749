package graph

import "sync"

// Mixer is a graph node that sums its children. The child list is
// copy-on-write: writers (control thread) take writeMu and install a
// new immutable slice under the snapshot's write lock; readers (the
// audio thread, inside Render) take a short read lock only to load the
// current slice, then iterate it without holding any lock.
type Mixer struct {
	*Base

	writeMu  sync.Mutex
	snapshot snapshotHolder
}

type snapshotHolder struct {
	mu   sync.RWMutex
	list []Node
}

// NewMixer constructs an empty mixer.
func NewMixer(name string) *Mixer {
	return &Mixer{Base: NewBase(name)}
}

// AddComponent attaches a child node. Safe to call from any control
// thread; never called from the audio thread.
func (m *Mixer) AddComponent(n Node) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.snapshot.mu.Lock()
	defer m.snapshot.mu.Unlock()
	next := append(append([]Node{}, m.snapshot.list...), n)
	m.snapshot.list = next
}

// RemoveComponent detaches a child node by identity.
func (m *Mixer) RemoveComponent(n Node) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.snapshot.mu.Lock()
	defer m.snapshot.mu.Unlock()
	next := make([]Node, 0, len(m.snapshot.list))
	for _, c := range m.snapshot.list {
		if c != n {
			next = append(next, c)
		}
	}
	m.snapshot.list = next
}

// Children returns a snapshot of the currently attached children. The
// audio thread calls this once per Render; the returned slice must not
// be mutated by the caller.
func (m *Mixer) Children() []Node {
	m.snapshot.mu.RLock()
	defer m.snapshot.mu.RUnlock()
	return m.snapshot.list
}

// Render pulls each enabled child into a rented scratch buffer, applies
// the child's modifier chain and analyzers, scales by volume, pans
// (equal-power), and accumulates into buf. buf must already be the
// size the caller wants filled and is zeroed by Render before summing.
func (m *Mixer) Render(buf []float32, channels int) int {
	for i := range buf {
		buf[i] = 0
	}
	if !m.Enabled() {
		return len(buf)
	}
	children := m.Children()
	for _, c := range children {
		if !c.Enabled() {
			continue
		}
		scratch := RentScratch(len(buf))
		c.Render(scratch, channels)
		RunModifiers(c.Modifiers(), scratch, channels)
		NotifyAnalyzers(c.Analyzers(), scratch, channels)
		ApplyVolumePan(scratch, channels, c.Volume(), c.Pan())
		for i := range buf {
			buf[i] += scratch[i]
		}
		ReturnScratch(scratch)
	}
	return len(buf)
}
