package timeline

import "sort"

// TempoMarker is one tempo change: at tick Tick, the piece is played at
// MicrosPerQuarter microseconds per quarter note until the next marker.
type TempoMarker struct {
	Tick            int64
	MicrosPerQuarter int64
}

// TempoMap converts between MIDI ticks and seconds via a piecewise-linear
// mapping built from an ordered set of tempo markers, grounded on the
// pack's own tick-to-wall-clock segment walk but restructured into a
// binary-searchable sorted marker list so a query costs O(log N) instead
// of a linear scan back from the start of the piece.
type TempoMap struct {
	ticksPerQuarter int
	markers         []TempoMarker  // sorted by Tick, markers[0].Tick == 0
	secondsAtTick   []float64      // cumulative seconds at each marker's tick
}

// NewTempoMap builds a map from ticksPerQuarter (PPQ) and an unsorted
// set of markers; a default 120 BPM (500000 microseconds/quarter)
// marker at tick 0 is implied if none is given there.
func NewTempoMap(ticksPerQuarter int, markers []TempoMarker) *TempoMap {
	sorted := append([]TempoMarker{}, markers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })
	if len(sorted) == 0 || sorted[0].Tick != 0 {
		sorted = append([]TempoMarker{{Tick: 0, MicrosPerQuarter: 500000}}, sorted...)
	}

	tm := &TempoMap{ticksPerQuarter: ticksPerQuarter, markers: sorted}
	tm.secondsAtTick = make([]float64, len(sorted))
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		deltaTicks := sorted[i].Tick - prev.Tick
		tm.secondsAtTick[i] = tm.secondsAtTick[i-1] + tm.secondsPerTick(prev.MicrosPerQuarter)*float64(deltaTicks)
	}
	return tm
}

func (tm *TempoMap) secondsPerTick(microsPerQuarter int64) float64 {
	return (float64(microsPerQuarter) / 1e6) / float64(tm.ticksPerQuarter)
}

// markerIndexFor returns the index of the last marker at or before tick.
func (tm *TempoMap) markerIndexFor(tick int64) int {
	i := sort.Search(len(tm.markers), func(i int) bool { return tm.markers[i].Tick > tick })
	if i == 0 {
		return 0
	}
	return i - 1
}

// TickToSeconds converts an absolute tick to seconds since tick 0.
func (tm *TempoMap) TickToSeconds(tick int64) float64 {
	i := tm.markerIndexFor(tick)
	deltaTicks := tick - tm.markers[i].Tick
	return tm.secondsAtTick[i] + tm.secondsPerTick(tm.markers[i].MicrosPerQuarter)*float64(deltaTicks)
}

// SecondsToTick converts seconds since tick 0 to an absolute tick,
// the inverse of TickToSeconds, via the same binary search over the
// cumulative-seconds table.
func (tm *TempoMap) SecondsToTick(seconds float64) int64 {
	i := sort.Search(len(tm.secondsAtTick), func(i int) bool { return tm.secondsAtTick[i] > seconds })
	if i == 0 {
		i = 1
	}
	i--
	deltaSeconds := seconds - tm.secondsAtTick[i]
	deltaTicks := deltaSeconds / tm.secondsPerTick(tm.markers[i].MicrosPerQuarter)
	return tm.markers[i].Tick + int64(deltaTicks)
}
