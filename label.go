package flowstat

import "fmt"

// Label is a metric identifier: it must support equality (so it can key
// the aggregator's per-label maps), hashing (comparable gives this for
// free via Go's native map), and a short display string for Meters keys.
type Label interface {
	comparable
	fmt.Stringer
}

// StringLabel is the common case: a plain string identifier. It satisfies
// Label directly.
type StringLabel string

// String implements Label.
func (s StringLabel) String() string { return string(s) }
