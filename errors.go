package flowstat

import "errors"

// Producer-side errors never block forward progress of user threads;
// aggregator-side errors are fatal only when they would compromise state
// coherence.
var (
	// ErrChannelFull reports that the data or control channel rejected a
	// non-blocking send because it is at capacity. Senders retain their
	// buffer and retry on the next call; this is never surfaced to the
	// Sender's caller as a failure.
	ErrChannelFull = errors.New("flowstat: channel full")

	// ErrChannelDisconnected reports that the aggregator side of a
	// channel is gone. Senders retain their buffer; there is no automatic
	// reconnection.
	ErrChannelDisconnected = errors.New("flowstat: channel disconnected")

	// ErrControlRejected is returned by Controller.GetMeters when the
	// control channel is full or disconnected.
	ErrControlRejected = errors.New("flowstat: control channel rejected message")

	// ErrSnapshotReplyLost is returned by Controller.GetMeters when the
	// Receiver shut down before it could reply to a snapshot request.
	ErrSnapshotReplyLost = errors.New("flowstat: snapshot reply lost")

	// ErrFatalConfig is returned by NewConfig for a construction-time
	// invalid configuration. Library callers decide how to surface it;
	// cmd/flowstatd prints and exits.
	ErrFatalConfig = errors.New("flowstat: invalid configuration")
)
