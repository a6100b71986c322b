// Package heatmap implements a time-sliced 2-D histogram used to render
// latency/value waterfalls, plus binary trace serialisation. Each
// 1-second time slice is itself a hist.Histogram, so every slice inherits
// the same fixed-precision log-bucketed counting behaviour the flat
// latency/value histograms use.
package heatmap

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/flowstat/flowstat/hist"
)

// SliceSeconds is the wall-clock width of one heatmap column.
const SliceSeconds = 1

// Heatmap spans a run of TotalSlices one-second columns in a ring; slices
// are never cleared across window boundaries, only across service-mode
// roll-overs.
type Heatmap struct {
	totalSlices int
	maxValue    int64
	startNanos  uint64
	slices      []*hist.Histogram
}

// New returns a Heatmap with totalSlices columns, each bucketing values
// up to maxValue.
func New(totalSlices int, maxValue int64, startNanos uint64) *Heatmap {
	if totalSlices < 1 {
		totalSlices = 1
	}
	slices := make([]*hist.Histogram, totalSlices)
	for i := range slices {
		slices[i] = hist.New(maxValue)
	}
	return &Heatmap{
		totalSlices: totalSlices,
		maxValue:    maxValue,
		startNanos:  startNanos,
		slices:      slices,
	}
}

// Record increments the bucket for value in the column containing tsNanos.
func (h *Heatmap) Record(tsNanos uint64, value int64) {
	idx := h.sliceIndex(tsNanos)
	h.slices[idx].Record(value)
}

func (h *Heatmap) sliceIndex(tsNanos uint64) int {
	if tsNanos < h.startNanos {
		return 0
	}
	elapsedSeconds := (tsNanos - h.startNanos) / 1e9
	return int(elapsedSeconds) % h.totalSlices
}

// Clear resets every column and re-anchors the start time, called on
// service-mode roll-over.
func (h *Heatmap) Clear(startNanos uint64) {
	for _, s := range h.slices {
		s.Reset()
	}
	h.startNanos = startNanos
}

// Trace is the exported snapshot persisted to the trace file and consumed
// by RenderWaterfall.
type Trace struct {
	TotalSlices int
	MaxValue    int64
	StartNanos  uint64
	// Columns[i] holds the value-at-percentile ladder for column i, at the
	// same nine percentiles hist.DefaultPercentiles defines, which is
	// sufficient resolution for a waterfall render without serialising
	// full per-bucket counts.
	Columns [][]int64
}

// Snapshot produces a Trace over the current state, safe to call from the
// Receiver goroutine at any window or run boundary.
func (h *Heatmap) Snapshot() Trace {
	cols := make([][]int64, h.totalSlices)
	for i, s := range h.slices {
		row := make([]int64, len(hist.DefaultPercentiles))
		for j, p := range hist.DefaultPercentiles {
			row[j] = s.ValueAtQuantile(p.Percent)
		}
		cols[i] = row
	}
	return Trace{
		TotalSlices: h.totalSlices,
		MaxValue:    h.maxValue,
		StartNanos:  h.startNanos,
		Columns:     cols,
	}
}

// WriteTrace gob-encodes t to w. The binary trace format is private to
// this package; RenderWaterfall and ReadTrace are the only supported
// readers.
func WriteTrace(w io.Writer, t Trace) error {
	return gob.NewEncoder(w).Encode(t)
}

// ReadTrace decodes a trace file written by WriteTrace.
func ReadTrace(r io.Reader) (Trace, error) {
	var t Trace
	err := gob.NewDecoder(r).Decode(&t)
	return t, err
}

// EncodeTrace is a convenience wrapper returning the encoded bytes
// directly.
func EncodeTrace(t Trace) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTrace(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
