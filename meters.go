package flowstat

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strconv"
)

// Meters is the current published snapshot of derived statistics: two
// flat key-value maps, cheap to clone, written only by the Receiver at
// window boundaries and read only via Controller snapshots.
type Meters struct {
	Integers map[string]uint64
	Floats   map[string]float64
}

func newMeters() Meters {
	return Meters{
		Integers: make(map[string]uint64),
		Floats:   make(map[string]float64),
	}
}

// Clone returns a deep copy, safe to hand to a caller that outlives the
// Receiver's internal snapshot.
func (m Meters) Clone() Meters {
	out := Meters{
		Integers: make(map[string]uint64, len(m.Integers)),
		Floats:   make(map[string]float64, len(m.Floats)),
	}
	for k, v := range m.Integers {
		out.Integers[k] = v
	}
	for k, v := range m.Floats {
		out.Floats[k] = v
	}
	return out
}

// WriteLine serialises Meters as "<key> <value>\n" per entry, integers
// first, then floats, in lexicographic key order for stable diffs across
// snapshots. The buffer-growing, minimal-allocation approach mirrors
// pascaldekloe/metrics' WriteText, adapted for a two-map snapshot instead
// of a live atomic registry.
func (m Meters) WriteLine(w io.Writer) error {
	keys := make([]string, 0, len(m.Integers))
	for k := range m.Integers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := make([]byte, 0, 4096)
	for _, k := range keys {
		buf = append(buf, k...)
		buf = append(buf, ' ')
		buf = strconv.AppendUint(buf, m.Integers[k], 10)
		buf = append(buf, '\n')
	}

	fkeys := make([]string, 0, len(m.Floats))
	for k := range m.Floats {
		fkeys = append(fkeys, k)
	}
	sort.Strings(fkeys)

	for _, k := range fkeys {
		buf = append(buf, k...)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, m.Floats[k], 'g', -1, 64)
		buf = append(buf, '\n')
	}

	_, err := w.Write(buf)
	return err
}

// LineBytes is a convenience wrapper around WriteLine.
func (m Meters) LineBytes() []byte {
	var buf bytes.Buffer
	m.WriteLine(&buf)
	return buf.Bytes()
}

// MarshalJSON renders Meters as a single flat JSON object merging both
// maps.
func (m Meters) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(m.Integers)+len(m.Floats))
	for k, v := range m.Integers {
		flat[k] = v
	}
	for k, v := range m.Floats {
		flat[k] = v
	}
	return json.Marshal(flat)
}
