package flowstat

// Batch is a reusable buffer of samples exchanged between a Sender and
// the Receiver via the data channel, and recycled through the buffer
// pool. A Go buffered channel already gives exactly the bounded
// multi-producer/multi-consumer FIFO semantics the pool needs and exactly
// the bounded single-consumer FIFO semantics the data channel needs, with
// select-based poll readiness built in (see DESIGN.md).
type Batch[L Label] []Sample[L]

// bufferPool is a bounded multi-producer multi-consumer ring of reusable
// Batch buffers. Senders pop a buffer after flushing; the
// Receiver pushes a drained, cleared buffer back. An empty pool means a
// Sender allocates fresh; a full pool means the Receiver drops the
// returned buffer (the allocator reclaims it).
type bufferPool[L Label] struct {
	ch chan Batch[L]
}

func newBufferPool[L Label](capacity, batchSize int) *bufferPool[L] {
	p := &bufferPool[L]{ch: make(chan Batch[L], capacity)}
	for i := 0; i < capacity; i++ {
		p.ch <- make(Batch[L], 0, batchSize)
	}
	return p
}

// get returns a recycled buffer if one is available, else a fresh
// allocation of the given capacity. Under steady state the pool reaches a
// fixed point where no allocation occurs.
func (p *bufferPool[L]) get(batchSize int) Batch[L] {
	select {
	case b := <-p.ch:
		return b
	default:
		return make(Batch[L], 0, batchSize)
	}
}

// put returns a drained, cleared buffer to the pool, dropping it if the
// pool is already full.
func (p *bufferPool[L]) put(b Batch[L]) {
	b = b[:0]
	select {
	case p.ch <- b:
	default:
		// pool full: let the allocator reclaim b.
	}
}

// dataChannel is the bounded single-consumer FIFO of filled batches
// flowing from Senders to the Receiver.
type dataChannel[L Label] struct {
	ch     chan Batch[L]
	closed chan struct{}
}

func newDataChannel[L Label](capacity int) *dataChannel[L] {
	return &dataChannel[L]{
		ch:     make(chan Batch[L], capacity),
		closed: make(chan struct{}),
	}
}

// trySend performs a single non-blocking enqueue attempt: nil on success,
// ErrChannelFull if the channel is at capacity, ErrChannelDisconnected if
// it has been closed.
func (d *dataChannel[L]) trySend(b Batch[L]) error {
	select {
	case <-d.closed:
		return ErrChannelDisconnected
	default:
	}
	select {
	case d.ch <- b:
		return nil
	default:
		return ErrChannelFull
	}
}

func (d *dataChannel[L]) close() {
	select {
	case <-d.closed:
	default:
		close(d.closed)
	}
}

// ctrlKind enumerates control-channel message variants.
type ctrlKind int

const (
	ctrlAddInterest ctrlKind = iota
	ctrlRemoveInterest
	ctrlSnapshotMeters
)

// ctrlMsg is one control-channel message. Only ctrlSnapshotMeters uses
// reply; AddInterest/RemoveInterest are idempotent fire-and-forget.
type ctrlMsg[L Label] struct {
	kind     ctrlKind
	interest Interest[L]
	reply    chan Meters
}

type controlChannel[L Label] struct {
	ch     chan ctrlMsg[L]
	closed chan struct{}
}

func newControlChannel[L Label](capacity int) *controlChannel[L] {
	return &controlChannel[L]{
		ch:     make(chan ctrlMsg[L], capacity),
		closed: make(chan struct{}),
	}
}

func (c *controlChannel[L]) trySend(m ctrlMsg[L]) error {
	select {
	case <-c.closed:
		return ErrChannelDisconnected
	default:
	}
	select {
	case c.ch <- m:
		return nil
	default:
		return ErrChannelFull
	}
}

func (c *controlChannel[L]) close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}
