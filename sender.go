package flowstat

// Sender is the producer-side batching handle. It accepts
// samples on a single producer's goroutine, accumulates them into one
// local buffer, and flushes full buffers to the Receiver via the data
// channel. Sender is cloneable; every clone owns its own local buffer,
// backed by the same shared data channel, buffer pool, and control
// channel.
//
// Invariants upheld by every method below: exactly one local buffer at
// all times (never observable as nil between calls), no sample is ever
// silently discarded, and no sample is ever enqueued twice.
type Sender[L Label] struct {
	data      *dataChannel[L]
	pool      *bufferPool[L]
	ctrl      *controlChannel[L]
	buf       Batch[L]
	batchSize int
}

func newSender[L Label](data *dataChannel[L], pool *bufferPool[L], ctrl *controlChannel[L], batchSize int) *Sender[L] {
	return &Sender[L]{
		data:      data,
		pool:      pool,
		ctrl:      ctrl,
		buf:       make(Batch[L], 0, batchSize),
		batchSize: batchSize,
	}
}

// Clone returns an independent Sender sharing this Sender's channels and
// pool but owning its own local buffer, for handing to another producer
// goroutine.
func (s *Sender[L]) Clone() *Sender[L] {
	return &Sender[L]{
		data:      s.data,
		pool:      s.pool,
		ctrl:      s.ctrl,
		buf:       s.pool.get(s.batchSize),
		batchSize: s.batchSize,
	}
}

// Send appends sample to the local buffer. Once the buffer reaches
// BatchSize, it attempts one non-blocking enqueue to the data channel. On
// success, the Sender acquires a recycled buffer from the pool (or
// allocates fresh if the pool is empty). On backpressure or disconnection
// the full buffer is retained as-is and retried on the next call — Send
// never drops work and never blocks.
func (s *Sender[L]) Send(sample Sample[L]) {
	s.buf = append(s.buf, sample)
	if len(s.buf) < s.batchSize {
		return
	}
	s.flush()
}

func (s *Sender[L]) flush() {
	if err := s.data.trySend(s.buf); err != nil {
		// ErrChannelFull or ErrChannelDisconnected: retain the buffer
		// exactly as-is, caller's next Send/flush retries.
		return
	}
	s.buf = s.pool.get(s.batchSize)
}

// TrySend is a buffer-local variant: it never touches the data channel or
// the pool. It fails with ErrChannelFull if accepting sample would grow
// the local buffer beyond BatchSize-1 elements, rather than blocking or
// enqueuing.
func (s *Sender[L]) TrySend(sample Sample[L]) error {
	if len(s.buf) > s.batchSize-2 {
		return ErrChannelFull
	}
	s.buf = append(s.buf, sample)
	return nil
}

// SetBatchSize changes the flush threshold for future Send calls. It does
// not truncate or flush the current buffer.
func (s *Sender[L]) SetBatchSize(n int) {
	s.batchSize = n
}

// AddInterest fire-and-forgets an AddInterest control message. Failure
// (a full or disconnected control channel) is swallowed: interest
// registration is best-effort from the producer side.
func (s *Sender[L]) AddInterest(i Interest[L]) {
	s.ctrl.trySend(ctrlMsg[L]{kind: ctrlAddInterest, interest: i})
}

// RemoveInterest fire-and-forgets a RemoveInterest control message.
func (s *Sender[L]) RemoveInterest(i Interest[L]) {
	s.ctrl.trySend(ctrlMsg[L]{kind: ctrlRemoveInterest, interest: i})
}

// Flush attempts to push the current local buffer to the data channel
// immediately, without waiting for it to fill. Useful before shutting a
// producer goroutine down. Best-effort: on backpressure the buffer is
// retained, exactly as Send's implicit flush behaves.
func (s *Sender[L]) Flush() {
	if len(s.buf) == 0 {
		return
	}
	s.flush()
}
