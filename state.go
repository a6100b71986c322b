package flowstat

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/flowstat/flowstat/allan"
	"github.com/flowstat/flowstat/heatmap"
	"github.com/flowstat/flowstat/hist"
)

// aggregatorState holds every per-label structure the Receiver owns. It
// is mutated exclusively by the Receiver's goroutine, so none of its
// fields need locking or atomics: nothing else ever touches them.
type aggregatorState[L Label] struct {
	counters map[L]uint64
	gauges   map[L]uint64

	latencyHist map[L]*hist.Histogram
	valueHist   map[L]*hist.Histogram

	latencyHeat map[L]*heatmap.Heatmap
	valueHeat   map[L]*heatmap.Heatmap

	allans map[L]*allan.Accumulator

	interests map[Interest[L]]struct{}
}

func newAggregatorState[L Label]() *aggregatorState[L] {
	return &aggregatorState[L]{
		counters:    make(map[L]uint64),
		gauges:      make(map[L]uint64),
		latencyHist: make(map[L]*hist.Histogram),
		valueHist:   make(map[L]*hist.Histogram),
		latencyHeat: make(map[L]*heatmap.Heatmap),
		valueHeat:   make(map[L]*heatmap.Heatmap),
		allans:      make(map[L]*allan.Accumulator),
		interests:   make(map[Interest[L]]struct{}),
	}
}

// addInterest initialises exactly the structure required for i's kind,
// keyed by i.Label, if it isn't already present, and records i in the
// interest set. Duplicate registrations are idempotent at both the
// structure level and the set level.
func (s *aggregatorState[L]) addInterest(i Interest[L], nowNanos uint64, cfg Config) {
	if _, exists := s.interests[i]; exists {
		return
	}
	s.interests[i] = struct{}{}

	switch structureCategory(i.Kind) {
	case "count":
		if _, ok := s.counters[i.Label]; !ok {
			s.counters[i.Label] = 0
		}
	case "gauge":
		if _, ok := s.gauges[i.Label]; !ok {
			s.gauges[i.Label] = 0
		}
	case "latencyHist":
		if _, ok := s.latencyHist[i.Label]; !ok {
			s.latencyHist[i.Label] = hist.NewLatency()
		}
	case "valueHist":
		if _, ok := s.valueHist[i.Label]; !ok {
			s.valueHist[i.Label] = hist.New(cfg.HistogramMaxValue)
		}
	case "allan":
		if _, ok := s.allans[i.Label]; !ok {
			s.allans[i.Label] = allan.New(cfg.MaxTau)
		}
	case "latencyHeat":
		if _, ok := s.latencyHeat[i.Label]; !ok {
			s.latencyHeat[i.Label] = heatmap.New(cfg.TotalHeatmapSlices(), cfg.HeatmapMaxValue, nowNanos)
		}
	case "valueHeat":
		if _, ok := s.valueHeat[i.Label]; !ok {
			s.valueHeat[i.Label] = heatmap.New(cfg.TotalHeatmapSlices(), cfg.HeatmapMaxValue, nowNanos)
		}
	}
}

// removeInterest removes i from the interest set and, if no remaining
// interest for the same label still needs the underlying structure (a
// Trace and a Waterfall interest for the same label share one heatmap),
// tears that structure down.
func (s *aggregatorState[L]) removeInterest(i Interest[L]) {
	if _, exists := s.interests[i]; !exists {
		return
	}
	delete(s.interests, i)

	cat := structureCategory(i.Kind)
	if s.categoryStillNeeded(cat, i.Label) {
		return
	}

	switch cat {
	case "count":
		delete(s.counters, i.Label)
	case "gauge":
		delete(s.gauges, i.Label)
	case "latencyHist":
		delete(s.latencyHist, i.Label)
	case "valueHist":
		delete(s.valueHist, i.Label)
	case "allan":
		delete(s.allans, i.Label)
	case "latencyHeat":
		delete(s.latencyHeat, i.Label)
	case "valueHeat":
		delete(s.valueHeat, i.Label)
	}
}

func (s *aggregatorState[L]) categoryStillNeeded(cat string, label L) bool {
	for i := range s.interests {
		if i.Label == label && structureCategory(i.Kind) == cat {
			return true
		}
	}
	return false
}

// apply folds one sample into every structure registered for its label.
// Each update self-filters: labels without a corresponding initialised
// structure are no-ops.
func (s *aggregatorState[L]) apply(sample Sample[L], startNanos, stopNanos uint64) {
	dt := stopNanos - startNanos

	if _, ok := s.counters[sample.Label]; ok {
		s.counters[sample.Label] += sample.Count
	}
	if _, ok := s.gauges[sample.Label]; ok {
		s.gauges[sample.Label] = sample.Count
	}
	if h, ok := s.latencyHist[sample.Label]; ok {
		h.Record(int64(dt))
	}
	if h, ok := s.valueHist[sample.Label]; ok {
		h.Record(int64(sample.Count))
	}
	if hm, ok := s.latencyHeat[sample.Label]; ok {
		hm.Record(startNanos, int64(dt))
	}
	if hm, ok := s.valueHeat[sample.Label]; ok {
		hm.Record(startNanos, int64(sample.Count))
	}
	if acc, ok := s.allans[sample.Label]; ok {
		acc.Record(float64(dt) / 1e9)
	}
}

// buildMeters recomputes the Meters snapshot from current aggregator
// state, deriving each key from its label and interest kind.
func (s *aggregatorState[L]) buildMeters(sampleRate float64) Meters {
	m := newMeters()

	for i := range s.interests {
		key := i.Label.String()

		switch i.Kind {
		case CountInterest:
			m.Integers[key+"_count"] = s.counters[i.Label]

		case GaugeInterest:
			m.Integers[key+"_gauge"] = s.gauges[i.Label]

		case LatencyPercentileInterest:
			h := s.latencyHist[i.Label]
			for _, p := range hist.DefaultPercentiles {
				var v int64
				if h != nil {
					v = h.ValueAtQuantile(p.Percent)
				}
				m.Integers[key+"_"+p.Name+"_nanoseconds"] = uint64(v)
			}

		case ValuePercentileInterest:
			h := s.valueHist[i.Label]
			for _, p := range hist.DefaultPercentiles {
				var v int64
				if h != nil {
					v = h.ValueAtQuantile(p.Percent)
				}
				scaled := math.Floor(float64(v) * sampleRate)
				m.Integers[key+"_"+p.Name+"_units"] = uint64(scaled)
			}

		case AllanDeviationInterest:
			acc := s.allans[i.Label]
			if acc == nil {
				continue
			}
			for tau := 1; tau <= acc.MaxTau(); tau++ {
				dev, ok := acc.Deviation(tau)
				if !ok {
					dev = 0
				}
				m.Floats[fmt.Sprintf("%s_tau_%d_adev", key, tau)] = dev
			}

		case LatencyTraceInterest, LatencyWaterfallInterest, ValueTraceInterest, ValueWaterfallInterest:
			// Trace/Waterfall interests never contribute Meters
			// entries; they produce file artefacts at save time.
		}
	}

	return m
}

// clearWindowHistograms clears the latency and value histograms at every
// window boundary. Counters, gauges, heatmaps, and Allan accumulators
// persist across windows.
func (s *aggregatorState[L]) clearWindowHistograms() {
	for _, h := range s.latencyHist {
		h.Reset()
	}
	for _, h := range s.valueHist {
		h.Reset()
	}
}

// clearHeatmaps resets every heatmap. Used only on service-mode
// roll-over, not at window boundaries.
func (s *aggregatorState[L]) clearHeatmaps(nowNanos uint64) {
	for _, hm := range s.latencyHeat {
		hm.Clear(nowNanos)
	}
	for _, hm := range s.valueHeat {
		hm.Clear(nowNanos)
	}
}

// saveFiles enumerates every Trace/Waterfall interest and persists its
// artefact: each *Trace interest writes a heatmap trace file, each
// *Waterfall interest renders a PNG.
func (s *aggregatorState[L]) saveFiles(cfg Config) error {
	for i := range s.interests {
		var err error
		switch i.Kind {
		case LatencyTraceInterest:
			err = s.writeTrace(s.latencyHeat[i.Label], pathOr(i.Path, cfg.TraceFile))
		case ValueTraceInterest:
			err = s.writeTrace(s.valueHeat[i.Label], pathOr(i.Path, cfg.TraceFile))
		case LatencyWaterfallInterest:
			err = s.writeWaterfall(s.latencyHeat[i.Label], pathOr(i.Path, cfg.WaterfallFile))
		case ValueWaterfallInterest:
			err = s.writeWaterfall(s.valueHeat[i.Label], pathOr(i.Path, cfg.WaterfallFile))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func pathOr(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}

func (s *aggregatorState[L]) writeTrace(hm *heatmap.Heatmap, path string) error {
	if hm == nil {
		return nil
	}
	data, err := heatmap.EncodeTrace(hm.Snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *aggregatorState[L]) writeWaterfall(hm *heatmap.Heatmap, path string) error {
	if hm == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := heatmap.RenderWaterfall(&buf, hm.Snapshot()); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
