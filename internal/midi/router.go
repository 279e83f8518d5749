package midi

import (
	"sync"
	"sync/atomic"
)

// Processor transforms one message into zero or more messages. Each
// stage's output feeds the next stage in the route's chain.
type Processor interface {
	Process(m Message) []Message
}

// Source emits messages. SysEx arrives as a Message with its SysEx
// field set, and routes pass it around their processor chain.
type Source interface {
	OnMessage(func(Message))
}

// Destination is a physical output device or an in-process
// MIDI-controllable component (a synth channel, a modifier target).
// A non-nil error marks the route faulted.
type Destination interface {
	Deliver(m Message) error
}

// PhysicalDestination additionally accepts raw SysEx, since only
// physical outputs are sent SysEx under the router's bypass rule.
type PhysicalDestination interface {
	Destination
	DeliverSysEx(bytes []byte) error
}

// Route connects one source to one destination through an ordered,
// copy-on-write processor chain. Enumeration takes a snapshot so the
// audio path never blocks on structural edits, mirroring the master
// mixer's child-list pattern.
type Route struct {
	writeMu sync.Mutex
	chain   atomic.Pointer[[]Processor]

	dest    Destination
	faulted atomic.Bool

	onFault func(error)
}

// NewRoute connects src to dest with an initially empty processor chain.
func NewRoute(src Source, dest Destination) *Route {
	r := &Route{dest: dest}
	empty := []Processor{}
	r.chain.Store(&empty)
	src.OnMessage(r.handle)
	return r
}

// OnFault registers a callback invoked exactly once, when the route
// transitions to faulted, carrying the error the destination returned.
func (r *Route) OnFault(f func(error)) { r.onFault = f }

// AddProcessor appends a processor to the chain. Control-thread only.
func (r *Route) AddProcessor(p Processor) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	cur := *r.chain.Load()
	next := append(append([]Processor{}, cur...), p)
	r.chain.Store(&next)
}

// Faulted reports whether the route has stopped forwarding messages.
func (r *Route) Faulted() bool { return r.faulted.Load() }

// handle runs m through the processor chain and delivers every
// resulting message to the destination, per spec: SysEx bypasses the
// chain entirely and only reaches a PhysicalDestination.
func (r *Route) handle(m Message) {
	if r.faulted.Load() {
		return
	}
	if m.IsSysEx() {
		if phys, ok := r.dest.(PhysicalDestination); ok {
			if err := phys.DeliverSysEx(m.SysEx); err != nil {
				r.fault(err)
			}
		}
		return
	}

	chain := *r.chain.Load()
	stage := []Message{m}
	for _, p := range chain {
		var next []Message
		for _, msg := range stage {
			next = append(next, p.Process(msg)...)
		}
		stage = next
		if len(stage) == 0 {
			return
		}
	}

	for _, out := range stage {
		if err := r.dest.Deliver(out); err != nil {
			r.fault(err)
			return
		}
	}
}

func (r *Route) fault(err error) {
	if r.faulted.CompareAndSwap(false, true) {
		if r.onFault != nil {
			r.onFault(err)
		}
	}
}

// FuncDestination adapts a plain function to the Destination interface,
// used by tests and by simple in-process routing targets.
type FuncDestination func(m Message) error

func (f FuncDestination) Deliver(m Message) error { return f(m) }

// FuncSource is a manually-driven Source, used by tests and by internal
// emitters (e.g. the timeline's MIDI segment playback) that have no
// physical device backing them.
type FuncSource struct {
	mu        sync.Mutex
	listeners []func(Message)
}

func (s *FuncSource) OnMessage(f func(Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, f)
}

// Emit delivers m to every registered listener, i.e. every route
// attached to this source.
func (s *FuncSource) Emit(m Message) {
	s.mu.Lock()
	listeners := append([]func(Message){}, s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(m)
	}
}
