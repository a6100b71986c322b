// Package hist implements a fixed-precision log-bucketed counting
// structure over integers, queryable by percentile. It wraps
// github.com/HdrHistogram/hdrhistogram-go so the aggregator never has to
// reach for a third-party histogram type directly.
package hist

import (
	hdr "github.com/HdrHistogram/hdrhistogram-go"
)

// MaxLatencyNanos bounds latency histograms at 60 seconds.
const MaxLatencyNanos = int64(60 * 1e9)

// SignificantFigures is the precision hdrhistogram keeps for every
// bucket. Three digits give <0.1% relative error.
const SignificantFigures = 3

// Histogram is a single-writer, single-reader fixed-precision histogram.
// The Receiver is its only writer and only reader, so no internal locking
// guards access here.
type Histogram struct {
	hdr *hdr.Histogram
}

// New returns a Histogram covering [0, max] at SignificantFigures digits
// of precision.
func New(max int64) *Histogram {
	return &Histogram{hdr: hdr.New(0, max, SignificantFigures)}
}

// NewLatency returns a Histogram sized for nanosecond latencies up to
// MaxLatencyNanos.
func NewLatency() *Histogram {
	return New(MaxLatencyNanos)
}

// Record increments the bucket containing v. Values above the configured
// maximum are clamped into the top bucket rather than rejected.
func (h *Histogram) Record(v int64) {
	if v < 0 {
		v = 0
	}
	if err := h.hdr.RecordValue(v); err != nil {
		h.hdr.RecordValue(h.hdr.HighestTrackableValue())
	}
}

// ValueAtQuantile returns the value at percentile q (0..100). An empty
// histogram reports 0.
func (h *Histogram) ValueAtQuantile(q float64) int64 {
	if h.hdr.TotalCount() == 0 {
		return 0
	}
	return h.hdr.ValueAtQuantile(q)
}

// TotalCount returns the number of recorded values.
func (h *Histogram) TotalCount() int64 {
	return h.hdr.TotalCount()
}

// Reset clears all recorded values, used at every window boundary.
func (h *Histogram) Reset() {
	h.hdr.Reset()
}

// DefaultPercentiles are the percentiles LatencyPercentile/ValuePercentile
// interests report, in order.
var DefaultPercentiles = []struct {
	Name    string
	Percent float64
}{
	{"min", 0},
	{"p50", 50},
	{"p75", 75},
	{"p90", 90},
	{"p95", 95},
	{"p99", 99},
	{"p999", 99.9},
	{"p9999", 99.99},
	{"max", 100},
}
