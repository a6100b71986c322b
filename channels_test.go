package flowstat

import "testing"

func TestBufferPoolGetReturnsRecycledThenFresh(t *testing.T) {
	p := newBufferPool[StringLabel](1, 4)

	b1 := p.get(4)
	if cap(b1) != 4 {
		t.Fatalf("got cap %d, want 4", cap(b1))
	}

	b2 := p.get(4)
	if cap(b2) != 4 {
		t.Fatalf("fresh allocation should also have the batch-size capacity, got %d", cap(b2))
	}
}

func TestBufferPoolPutDropsWhenFull(t *testing.T) {
	p := newBufferPool[StringLabel](1, 4)
	// drain the one pre-filled buffer
	p.get(4)

	p.put(make(Batch[StringLabel], 0, 4))
	p.put(make(Batch[StringLabel], 0, 4))

	if len(p.ch) != 1 {
		t.Fatalf("got pool depth %d, want 1 (second put dropped)", len(p.ch))
	}
}

func TestDataChannelTrySendFullAndDisconnected(t *testing.T) {
	d := newDataChannel[StringLabel](1)

	if err := d.trySend(Batch[StringLabel]{}); err != nil {
		t.Fatalf("unexpected error on first send: %v", err)
	}
	if err := d.trySend(Batch[StringLabel]{}); err != ErrChannelFull {
		t.Fatalf("got %v, want ErrChannelFull", err)
	}

	<-d.ch // drain so disconnection, not fullness, is what's tested next
	d.close()
	if err := d.trySend(Batch[StringLabel]{}); err != ErrChannelDisconnected {
		t.Fatalf("got %v, want ErrChannelDisconnected", err)
	}
}

func TestControlChannelTrySendFullAndDisconnected(t *testing.T) {
	c := newControlChannel[StringLabel](1)

	if err := c.trySend(ctrlMsg[StringLabel]{kind: ctrlAddInterest}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.trySend(ctrlMsg[StringLabel]{kind: ctrlAddInterest}); err != ErrChannelFull {
		t.Fatalf("got %v, want ErrChannelFull", err)
	}

	<-c.ch
	c.close()
	if err := c.trySend(ctrlMsg[StringLabel]{kind: ctrlAddInterest}); err != ErrChannelDisconnected {
		t.Fatalf("got %v, want ErrChannelDisconnected", err)
	}
}

func TestControlChannelCloseIsIdempotent(t *testing.T) {
	c := newControlChannel[StringLabel](1)
	c.close()
	c.close() // must not panic on double-close
}
