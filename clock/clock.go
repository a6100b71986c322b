// Package clock abstracts the monotonic tick counter the aggregator uses
// to schedule window boundaries and to stamp samples.
package clock

import (
	"time"
)

// Clocksource reads a monotonic hardware counter cheaply and converts
// counter ticks into nanoseconds. Construction is always infallible;
// Convert never fails.
type Clocksource interface {
	// Counter returns the current tick reading. It must be monotonic
	// non-decreasing across goroutines on the same machine.
	Counter() uint64

	// TimeNanos returns nanoseconds since the Unix epoch, used for
	// heatmap slice boundaries.
	TimeNanos() uint64

	// FrequencyHz returns ticks per second, learned at construction.
	FrequencyHz() float64

	// Convert turns a tick count into nanoseconds, flooring.
	Convert(ticks uint64) uint64

	// Recalibrate re-measures the tick frequency. Implementations for
	// which the frequency is exact by construction may treat this as a
	// no-op.
	Recalibrate()
}

// Monotonic is the portable Clocksource fallback: it has no access to a
// raw hardware cycle counter, so it uses Go's monotonic clock reading
// directly as the tick counter. One tick is one nanosecond, so
// FrequencyHz is always 1e9 and Convert is the identity function.
type Monotonic struct {
	start time.Time
	freq  float64
}

// NewMonotonic returns a Clocksource anchored at the current instant.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now(), freq: 1e9}
}

// Counter returns nanoseconds elapsed since construction.
func (m *Monotonic) Counter() uint64 {
	return uint64(time.Since(m.start))
}

// TimeNanos returns wall-clock nanoseconds since the Unix epoch.
func (m *Monotonic) TimeNanos() uint64 {
	return uint64(time.Now().UnixNano())
}

// FrequencyHz always reports 1e9: one tick per nanosecond.
func (m *Monotonic) FrequencyHz() float64 {
	return m.freq
}

// Convert is the identity function since ticks are already nanoseconds.
func (m *Monotonic) Convert(ticks uint64) uint64 {
	return ticks
}

// Recalibrate is a no-op: the tick-to-nanosecond mapping for Monotonic is
// exact by construction and never drifts.
func (m *Monotonic) Recalibrate() {}
