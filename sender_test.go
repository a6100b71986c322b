package flowstat

import "testing"

func newTestSender(batchSize, capacity int) (*Sender[StringLabel], *dataChannel[StringLabel]) {
	data := newDataChannel[StringLabel](capacity)
	pool := newBufferPool[StringLabel](capacity, batchSize)
	ctrl := newControlChannel[StringLabel](capacity)
	return newSender(data, pool, ctrl, batchSize), data
}

func TestSendFlushesAtBatchSize(t *testing.T) {
	s, data := newTestSender(2, 4)

	s.Send(NewCountedSample(StringLabel("a"), 0, 1))
	if len(data.ch) != 0 {
		t.Fatal("must not flush before reaching batch size")
	}

	s.Send(NewCountedSample(StringLabel("a"), 0, 1))
	if len(data.ch) != 1 {
		t.Fatalf("expected one flushed batch, got %d", len(data.ch))
	}

	b := <-data.ch
	if len(b) != 2 {
		t.Fatalf("got batch of %d, want 2", len(b))
	}
}

func TestSendRetainsBufferUnderBackpressure(t *testing.T) {
	s, data := newTestSender(1, 1)

	s.Send(NewCountedSample(StringLabel("a"), 0, 1)) // flushes, fills data channel
	if len(data.ch) != 1 {
		t.Fatalf("got %d, want 1", len(data.ch))
	}

	s.Send(NewCountedSample(StringLabel("b"), 0, 1)) // data channel full, must retain
	if len(s.buf) != 1 {
		t.Fatalf("expected the second sample retained locally, got buf len %d", len(s.buf))
	}

	<-data.ch
	s.Flush()
	if len(s.buf) != 0 {
		t.Fatalf("flush should have drained the retained buffer, got len %d", len(s.buf))
	}
}

func TestTrySendRejectsNearBatchBoundary(t *testing.T) {
	s, _ := newTestSender(2, 4)

	if err := s.TrySend(NewCountedSample(StringLabel("a"), 0, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.TrySend(NewCountedSample(StringLabel("a"), 0, 1)); err != ErrChannelFull {
		t.Fatalf("got %v, want ErrChannelFull once buffer would exceed batchSize-1", err)
	}
}

func TestCloneGetsIndependentBuffer(t *testing.T) {
	s, _ := newTestSender(4, 4)
	clone := s.Clone()

	s.Send(NewCountedSample(StringLabel("a"), 0, 1))
	if len(clone.buf) != 0 {
		t.Fatal("clone's buffer must be independent of the original's")
	}
}

func TestFlushIsNoOpOnEmptyBuffer(t *testing.T) {
	s, data := newTestSender(4, 4)
	s.Flush()
	if len(data.ch) != 0 {
		t.Fatal("flushing an empty buffer must not enqueue anything")
	}
}
