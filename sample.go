package flowstat

// Sample is an immutable observation record: a label, a start/stop tick
// pair, and a count of events represented. Two construction modes exist:
// a timed sample (start<stop, count=1) and a counted sample (an
// aggregate of N events in a span, start==stop).
//
// Gauges piggyback on the counted-sample encoding: a Gauge reading is
// sent as a counted sample whose Count field carries the gauge value.
// This keeps the wire shape to one struct rather than introducing a
// tagged variant just for gauges.
type Sample[L Label] struct {
	Label L
	Start uint64
	Stop  uint64
	Count uint64
}

// NewTimedSample returns a Sample recording one event spanning
// [start, stop] ticks. Panics if stop < start.
func NewTimedSample[L Label](label L, start, stop uint64) Sample[L] {
	if stop < start {
		panic("flowstat: timed sample stop precedes start")
	}
	return Sample[L]{Label: label, Start: start, Stop: stop, Count: 1}
}

// NewCountedSample returns a Sample recording count events observed at a
// single tick (start==stop==at). Panics if count is zero.
func NewCountedSample[L Label](label L, at uint64, count uint64) Sample[L] {
	if count < 1 {
		panic("flowstat: counted sample requires count >= 1")
	}
	return Sample[L]{Label: label, Start: at, Stop: at, Count: count}
}

// NewGaugeSample returns a Sample carrying a gauge reading at a single
// tick, using the counted-sample encoding (see the Sample doc comment).
func NewGaugeSample[L Label](label L, at uint64, value uint64) Sample[L] {
	return Sample[L]{Label: label, Start: at, Stop: at, Count: value}
}
