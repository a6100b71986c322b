// Package flowstat implements a high-throughput telemetry aggregation
// core: a lock-free producer-side Sender that batches Sample
// observations, and a single-consumer Receiver goroutine that folds
// batches into counters, gauges, latency/value histograms, Allan
// deviation accumulators, and time-sliced heatmaps, publishing periodic
// Meters snapshots on demand via a Controller.
//
// The core is parametric in the label type: any comparable,
// fmt.Stringer-implementing type satisfies Label, with StringLabel
// provided for the common case.
//
// Collaborators for histogramming (package hist), heatmaps (package
// heatmap), Allan deviation (package allan), and monotonic time (package
// clock) are kept as separate importable packages, mirroring how
// pascaldekloe/metrics keeps its Prometheus/OpenTelemetry adapters
// outside the core registry.
package flowstat
