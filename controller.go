package flowstat

// Controller is the external handle used to mutate aggregator interests
// and to pull a Meters snapshot while the Receiver runs.
type Controller[L Label] struct {
	ctrl *controlChannel[L]
}

func newController[L Label](ctrl *controlChannel[L]) *Controller[L] {
	return &Controller[L]{ctrl: ctrl}
}

// AddInterest fire-and-forgets an AddInterest control message.
func (c *Controller[L]) AddInterest(i Interest[L]) {
	c.ctrl.trySend(ctrlMsg[L]{kind: ctrlAddInterest, interest: i})
}

// RemoveInterest fire-and-forgets a RemoveInterest control message.
func (c *Controller[L]) RemoveInterest(i Interest[L]) {
	c.ctrl.trySend(ctrlMsg[L]{kind: ctrlRemoveInterest, interest: i})
}

// GetMeters requests a snapshot: it constructs a one-shot reply channel,
// attempts one non-blocking send of a SnapshotMeters message, and blocks
// on the reply. Returns ErrControlRejected when the control channel is
// full or disconnected, ErrSnapshotReplyLost if the Receiver shuts down
// after accepting the message but before replying.
func (c *Controller[L]) GetMeters() (Meters, error) {
	reply := make(chan Meters, 1)
	msg := ctrlMsg[L]{kind: ctrlSnapshotMeters, reply: reply}

	if err := c.ctrl.trySend(msg); err != nil {
		return Meters{}, ErrControlRejected
	}

	select {
	case m := <-reply:
		return m, nil
	case <-c.ctrl.closed:
		return Meters{}, ErrSnapshotReplyLost
	}
}
