package flowstat

import (
	"fmt"
	"time"
)

// Config is immutable after construction. Build one with NewConfig and a
// chain of Option functions.
type Config struct {
	// Duration is the window length, in seconds.
	Duration int
	// Windows is the number of windows in a run, also a factor of the
	// heatmap time-slice count: TotalSlices = Duration * Windows.
	Windows int
	// Capacity is the data/control channel and buffer-pool depth, in
	// batches.
	Capacity int
	// BatchSize is the number of samples per batch buffer.
	BatchSize int
	// MaxTau is the maximum lag tracked by Allan accumulators.
	MaxTau int
	// SampleRate scales ValuePercentile Meters output.
	SampleRate float64
	// ServiceMode, if true, makes Run repeat indefinitely, flushing
	// heatmaps at the end of every cycle instead of terminating.
	ServiceMode bool
	// PollDelay upper-bounds how long the Receiver blocks per poll
	// iteration. Zero means block until either channel is ready.
	PollDelay time.Duration
	// TraceFile/WaterfallFile are the default output paths used by
	// *Trace/*Waterfall interests registered with an empty Path.
	TraceFile     string
	WaterfallFile string
	// HistogramMaxValue bounds the value histogram (latency histograms
	// are always bounded by hist.MaxLatencyNanos).
	HistogramMaxValue int64
	// HeatmapMaxValue bounds both the latency and value heatmaps'
	// per-slice histograms.
	HeatmapMaxValue int64
}

// Option configures a Config under construction.
type Option func(*Config)

func WithDuration(seconds int) Option {
	return func(c *Config) { c.Duration = seconds }
}

func WithWindows(n int) Option {
	return func(c *Config) { c.Windows = n }
}

func WithCapacity(n int) Option {
	return func(c *Config) { c.Capacity = n }
}

func WithBatchSize(n int) Option {
	return func(c *Config) { c.BatchSize = n }
}

func WithMaxTau(n int) Option {
	return func(c *Config) { c.MaxTau = n }
}

func WithSampleRate(rate float64) Option {
	return func(c *Config) { c.SampleRate = rate }
}

func WithServiceMode(on bool) Option {
	return func(c *Config) { c.ServiceMode = on }
}

func WithPollDelay(d time.Duration) Option {
	return func(c *Config) { c.PollDelay = d }
}

func WithTraceFile(path string) Option {
	return func(c *Config) { c.TraceFile = path }
}

func WithWaterfallFile(path string) Option {
	return func(c *Config) { c.WaterfallFile = path }
}

func WithHistogramMaxValue(v int64) Option {
	return func(c *Config) { c.HistogramMaxValue = v }
}

func WithHeatmapMaxValue(v int64) Option {
	return func(c *Config) { c.HeatmapMaxValue = v }
}

// defaultConfig mirrors the defaults a long-running embedder would pick:
// one-second windows, a generous in-flight sample budget, and a sample
// rate of 1 (no scaling).
func defaultConfig() Config {
	return Config{
		Duration:          1,
		Windows:           60,
		Capacity:          64,
		BatchSize:         256,
		MaxTau:            32,
		SampleRate:        1,
		PollDelay:         100 * time.Millisecond,
		TraceFile:         "flowstat.trace",
		WaterfallFile:     "flowstat.png",
		HistogramMaxValue: 1 << 32,
		HeatmapMaxValue:   1 << 32,
	}
}

// NewConfig builds a Config from defaults plus the given options and
// validates it. An invalid Config returns a wrapped ErrFatalConfig rather
// than aborting the process directly; cmd/flowstatd is the layer that
// elects to exit on it.
func NewConfig(opts ...Option) (Config, error) {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	if c.Duration <= 0 {
		return Config{}, fmt.Errorf("%w: duration must be positive, got %d", ErrFatalConfig, c.Duration)
	}
	if c.Windows <= 0 {
		return Config{}, fmt.Errorf("%w: windows must be positive, got %d", ErrFatalConfig, c.Windows)
	}
	if c.Capacity <= 0 {
		return Config{}, fmt.Errorf("%w: capacity must be positive, got %d", ErrFatalConfig, c.Capacity)
	}
	if c.BatchSize <= 0 {
		return Config{}, fmt.Errorf("%w: batch size must be positive, got %d", ErrFatalConfig, c.BatchSize)
	}
	if c.MaxTau <= 0 {
		return Config{}, fmt.Errorf("%w: max tau must be positive, got %d", ErrFatalConfig, c.MaxTau)
	}

	// A non-positive or NaN sample rate would scale Meters output to zero,
	// invert it or make it undefined, so treat it as "no scaling" instead
	// of rejecting it.
	if !(c.SampleRate > 0) {
		c.SampleRate = 1
	}

	return c, nil
}

// TotalHeatmapSlices is Duration*Windows, the heatmap time-slice count.
func (c Config) TotalHeatmapSlices() int {
	return c.Duration * c.Windows
}

// WindowTicks returns the tick-domain length of one window given a
// clocksource frequency.
func (c Config) WindowTicks(frequencyHz float64) uint64 {
	return uint64(float64(c.Duration) * frequencyHz)
}
