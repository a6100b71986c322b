package flowstat

import (
	"context"
	"testing"
	"time"
)

// fakeClock gives tests full control over tick advancement instead of
// waiting on wall-clock time.
type fakeClock struct {
	counter uint64
}

func (f *fakeClock) Counter() uint64         { return f.counter }
func (f *fakeClock) TimeNanos() uint64       { return f.counter }
func (f *fakeClock) FrequencyHz() float64    { return 1e9 }
func (f *fakeClock) Convert(t uint64) uint64 { return t }
func (f *fakeClock) Recalibrate()            {}

func TestReceiverPollDrainsControlThenData(t *testing.T) {
	cfg, err := NewConfig(WithDuration(1), WithWindows(1), WithCapacity(4), WithBatchSize(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fc := &fakeClock{}
	r := NewReceiver[StringLabel](cfg, WithClocksource(fc))
	sender := r.NewSender()
	controller := r.NewController()

	ctx := context.Background()

	controller.AddInterest(Count(StringLabel("req")))
	if err := r.poll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.state.counters[StringLabel("req")]; !ok {
		t.Fatal("AddInterest control message was not processed")
	}

	sender.Send(NewCountedSample(StringLabel("req"), 0, 5))
	if err := r.poll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.windowBoundary()
	if got := r.meters.Integers["req_count"]; got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}

func TestRunOnceFiresWindowBoundaryWithoutBlocking(t *testing.T) {
	cfg, err := NewConfig(WithDuration(1), WithWindows(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fc := &fakeClock{}
	r := NewReceiver[StringLabel](cfg, WithClocksource(fc))

	fc.counter = r.windowTime // deadline already reached

	before := r.windowTime
	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.windowTime <= before {
		t.Fatal("window deadline must advance after a boundary fires")
	}
}

func TestRunOnceRespectsContextCancellation(t *testing.T) {
	cfg, err := NewConfig(WithDuration(3600), WithWindows(1), WithPollDelay(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fc := &fakeClock{}
	r := NewReceiver[StringLabel](cfg, WithClocksource(fc))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.RunOnce(ctx); err != context.Canceled {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestShutdownUnblocksPendingSnapshot(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewReceiver[StringLabel](cfg)
	controller := r.NewController()

	go func() {
		<-r.ctrl.ch // accept the SnapshotMeters message, never reply
		r.Shutdown()
	}()

	_, err = controller.GetMeters()
	if err != ErrSnapshotReplyLost {
		t.Fatalf("got %v, want ErrSnapshotReplyLost", err)
	}
}

// TestReceiverRunIntegration is a real-time integration test of Run,
// Sender, and Controller cooperating across goroutines; it is the one
// test in this package that cannot use fakeClock, since Run's
// service-mode roll-over depends on wall-clock progress.
func TestReceiverRunIntegration(t *testing.T) {
	cfg, err := NewConfig(
		WithDuration(1),
		WithWindows(1),
		WithPollDelay(5*time.Millisecond),
		WithServiceMode(true),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewReceiver[StringLabel](cfg)
	sender := r.NewSender()
	controller := r.NewController()

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- r.Run(ctx) }()
	defer func() {
		cancel()
		<-runErr
	}()

	controller.AddInterest(Count(StringLabel("hits")))
	time.Sleep(20 * time.Millisecond)
	sender.Send(NewCountedSample(StringLabel("hits"), 0, 3))
	sender.Flush()

	time.Sleep(1200 * time.Millisecond) // let one window boundary pass

	m, err := controller.GetMeters()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Integers["hits_count"] != 3 {
		t.Fatalf("got %v, want hits_count=3", m.Integers)
	}
}
