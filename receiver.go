package flowstat

import (
	"context"
	"time"

	"github.com/flowstat/flowstat/clock"
	"go.uber.org/zap"
)

// Receiver is the sole owner and mutator of all per-label aggregator
// state: it schedules window boundaries and services the data and
// control channels cooperatively from a single goroutine. No locks or
// atomics protect aggregatorState because nothing else ever touches it.
type Receiver[L Label] struct {
	cfg    Config
	clock  clock.Clocksource
	data   *dataChannel[L]
	pool   *bufferPool[L]
	ctrl   *controlChannel[L]
	state  *aggregatorState[L]
	logger *zap.Logger

	meters     Meters
	windowTime uint64
	endTime    uint64

	drainedThisWindow uint64
}

type receiverOptions struct {
	logger *zap.Logger
	clock  clock.Clocksource
}

// ReceiverOption configures a Receiver under construction.
type ReceiverOption func(*receiverOptions)

// WithLogger injects a *zap.Logger. A nil/omitted logger defaults to
// zap.NewNop().
func WithLogger(log *zap.Logger) ReceiverOption {
	return func(o *receiverOptions) { o.logger = log }
}

// WithClocksource overrides the default clock.Monotonic, primarily for
// tests that need a controllable clock.
func WithClocksource(c clock.Clocksource) ReceiverOption {
	return func(o *receiverOptions) { o.clock = c }
}

// NewReceiver constructs a Receiver: both channels, the buffer pool
// (pre-filled), the clocksource, and empty state maps.
func NewReceiver[L Label](cfg Config, opts ...ReceiverOption) *Receiver[L] {
	ro := receiverOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.clock == nil {
		ro.clock = clock.NewMonotonic()
	}

	now := ro.clock.Counter()
	freq := ro.clock.FrequencyHz()
	windowTicks := cfg.WindowTicks(freq)

	r := &Receiver[L]{
		cfg:        cfg,
		clock:      ro.clock,
		data:       newDataChannel[L](cfg.Capacity),
		pool:       newBufferPool[L](cfg.Capacity, cfg.BatchSize),
		ctrl:       newControlChannel[L](cfg.Capacity),
		state:      newAggregatorState[L](),
		logger:     ro.logger,
		meters:     newMeters(),
		windowTime: now + windowTicks,
		endTime:    now + uint64(cfg.Windows)*windowTicks,
	}
	return r
}

// NewSender returns a fresh Sender bound to this Receiver's channels and
// pool. Call Clone on the result to hand additional producer goroutines
// their own local buffer.
func (r *Receiver[L]) NewSender() *Sender[L] {
	return newSender(r.data, r.pool, r.ctrl, r.cfg.BatchSize)
}

// NewController returns a Controller bound to this Receiver's control
// channel.
func (r *Receiver[L]) NewController() *Controller[L] {
	return newController(r.ctrl)
}

// Shutdown cooperatively marks the data and control channels closed:
// later Sender and Controller sends are refused, and any in-flight
// Controller.GetMeters call unblocks with ErrSnapshotReplyLost. The
// Receiver's poll loop does not observe the closure; it still drains
// anything already queued, and Run/RunOnce return only when their context
// is cancelled or the run completes.
func (r *Receiver[L]) Shutdown() {
	r.data.close()
	r.ctrl.close()
}

// RunOnce executes exactly one window: it polls both channels until the
// window deadline is reached, applying every drained sample and control
// message along the way, then performs the window-boundary procedure and
// returns.
func (r *Receiver[L]) RunOnce(ctx context.Context) error {
	for {
		if r.clock.Counter() >= r.windowTime {
			r.windowBoundary()
			return nil
		}
		if err := r.poll(ctx); err != nil {
			return err
		}
	}
}

// poll drains up to Capacity currently-ready data batches, then every
// currently-ready control message, non-blockingly; only if nothing was
// ready does it block for up to PollDelay (or indefinitely if PollDelay is
// zero) waiting for one readiness. Bounding the data drain keeps control
// from starving for longer than one poll iteration.
func (r *Receiver[L]) poll(ctx context.Context) error {
	drainedAny := false

drainData:
	for n := 0; n < cap(r.data.ch); n++ {
		select {
		case b := <-r.data.ch:
			r.drainBatch(b)
			drainedAny = true
		default:
			break drainData
		}
	}

drainCtrl:
	for {
		select {
		case m := <-r.ctrl.ch:
			r.handleControl(m)
			drainedAny = true
		default:
			break drainCtrl
		}
	}

	if drainedAny {
		return nil
	}

	return r.blockOnce(ctx)
}

func (r *Receiver[L]) blockOnce(ctx context.Context) error {
	if r.cfg.PollDelay <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b := <-r.data.ch:
			r.drainBatch(b)
		case m := <-r.ctrl.ch:
			r.handleControl(m)
		}
		return nil
	}

	timer := time.NewTimer(r.cfg.PollDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case b := <-r.data.ch:
		r.drainBatch(b)
	case m := <-r.ctrl.ch:
		r.handleControl(m)
	case <-timer.C:
	}
	return nil
}

func (r *Receiver[L]) drainBatch(b Batch[L]) {
	for _, sample := range b {
		startNanos := r.clock.Convert(sample.Start)
		stopNanos := r.clock.Convert(sample.Stop)
		r.state.apply(sample, startNanos, stopNanos)
	}
	r.drainedThisWindow += uint64(len(b))
	r.pool.put(b)
}

func (r *Receiver[L]) handleControl(m ctrlMsg[L]) {
	switch m.kind {
	case ctrlAddInterest:
		r.state.addInterest(m.interest, r.clock.TimeNanos(), r.cfg)
	case ctrlRemoveInterest:
		r.state.removeInterest(m.interest)
	case ctrlSnapshotMeters:
		select {
		case m.reply <- r.meters.Clone():
		default:
			r.logger.Debug("dropped snapshot reply: requester already gone")
		}
	}
}

// windowBoundary recomputes Meters, clears the window-scoped histograms,
// and advances the window deadline.
func (r *Receiver[L]) windowBoundary() {
	r.meters = r.state.buildMeters(r.cfg.SampleRate)
	r.state.clearWindowHistograms()

	if r.drainedThisWindow == 0 {
		r.logger.Debug("window boundary closed with no samples drained")
	}
	r.drainedThisWindow = 0

	r.windowTime += r.cfg.WindowTicks(r.clock.FrequencyHz())
}

// Run invokes RunOnce until Windows windows have elapsed, then persists
// heatmap artefacts. In ServiceMode it clears all heatmaps, advances the
// run deadline, and repeats; otherwise it terminates.
func (r *Receiver[L]) Run(ctx context.Context) error {
	for {
		for w := 0; w < r.cfg.Windows; w++ {
			if err := r.RunOnce(ctx); err != nil {
				return err
			}
		}

		if err := r.state.saveFiles(r.cfg); err != nil {
			r.logger.Error("save files failed", zap.Error(err))
		}

		if !r.cfg.ServiceMode {
			return nil
		}

		r.state.clearHeatmaps(r.clock.TimeNanos())
		freq := r.clock.FrequencyHz()
		r.endTime = r.clock.Counter() + uint64(r.cfg.Windows)*r.cfg.WindowTicks(freq)
		r.logger.Debug("service mode roll-over", zap.Uint64("end_time", r.endTime))
	}
}
