package flowstat

import "testing"

func TestControllerAddInterestDelivers(t *testing.T) {
	ctrl := newControlChannel[StringLabel](1)
	c := newController(ctrl)

	c.AddInterest(Count(StringLabel("req")))

	msg := <-ctrl.ch
	if msg.kind != ctrlAddInterest || msg.interest.Label != StringLabel("req") {
		t.Fatalf("got %+v", msg)
	}
}

func TestControllerGetMetersRejectedWhenChannelFull(t *testing.T) {
	ctrl := newControlChannel[StringLabel](1)
	ctrl.ch <- ctrlMsg[StringLabel]{kind: ctrlAddInterest} // fill capacity
	c := newController(ctrl)

	_, err := c.GetMeters()
	if err != ErrControlRejected {
		t.Fatalf("got %v, want ErrControlRejected", err)
	}
}

func TestControllerGetMetersReceivesReply(t *testing.T) {
	ctrl := newControlChannel[StringLabel](1)
	c := newController(ctrl)

	done := make(chan struct{})
	go func() {
		msg := <-ctrl.ch
		msg.reply <- Meters{Integers: map[string]uint64{"req_count": 9}}
		close(done)
	}()

	m, err := c.GetMeters()
	<-done
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Integers["req_count"] != 9 {
		t.Fatalf("got %v", m.Integers)
	}
}

func TestControllerGetMetersLostOnShutdown(t *testing.T) {
	ctrl := newControlChannel[StringLabel](1)
	c := newController(ctrl)

	go func() {
		<-ctrl.ch // accept the message but never reply
		ctrl.close()
	}()

	_, err := c.GetMeters()
	if err != ErrSnapshotReplyLost {
		t.Fatalf("got %v, want ErrSnapshotReplyLost", err)
	}
}
