package forwarder

import (
	"context"
	"testing"

	"github.com/saferun-io/tee-fabric/internal/port"
	"github.com/saferun-io/tee-fabric/internal/ring"
)

func newTestRing(t *testing.T, slots int) *ring.Ring {
	t.Helper()
	l := ring.NewLayout(make([]uint64, ring.WordCount+slots))
	r := ring.New(l)
	if err := r.Init(slots); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

type fakeDriver struct {
	rx []uint64
	tx []uint64
}

func (d *fakeDriver) RecvBurst(descs []uint64) int {
	n := copy(descs, d.rx)
	d.rx = d.rx[n:]
	return n
}

func (d *fakeDriver) SendBurst(descs []uint64) int {
	d.tx = append(d.tx, descs...)
	return len(descs)
}

func TestPollOnceMovesNICToRecvqAndSendqToNIC(t *testing.T) {
	recvq := newTestRing(t, 16)
	sendq := newTestRing(t, 16)
	drv := &fakeDriver{rx: []uint64{1, 2, 3}}
	nic := port.NewNICQueue(0, drv)

	// Preload sendq as if the enclave already produced output.
	sendq.WriteAtTail([]uint64{100, 101})

	l := New("q0", nic, recvq, sendq, 0)
	fromNIC, fromEnclave, err := l.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if fromNIC != 3 {
		t.Fatalf("fromNIC = %d, want 3", fromNIC)
	}
	if fromEnclave != 2 {
		t.Fatalf("fromEnclave = %d, want 2", fromEnclave)
	}

	got := make([]uint64, 8)
	n := recvq.ReadFromHead(got)
	if n != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("recvq contents = %v (n=%d), want [1 2 3]", got[:n], n)
	}
	if len(drv.tx) != 2 || drv.tx[0] != 100 || drv.tx[1] != 101 {
		t.Fatalf("driver tx = %v, want [100 101]", drv.tx)
	}

	fn, te, fe, tn := l.Stats()
	if fn != 3 || te != 3 || fe != 2 || tn != 2 {
		t.Fatalf("Stats = (%d,%d,%d,%d), want (3,3,2,2)", fn, te, fe, tn)
	}
}

func TestPollOnceBackpressureRetriesUnsentSuffix(t *testing.T) {
	recvq := newTestRing(t, 2) // small ring forces a partial write
	sendq := newTestRing(t, 16)
	drv := &fakeDriver{rx: []uint64{1, 2, 3, 4}}
	nic := port.NewNICQueue(0, drv)

	l := New("q0", nic, recvq, sendq, 0)

	done := make(chan struct{})
	go func() {
		l.PollOnce(context.Background())
		close(done)
	}()

	// Drain recvq concurrently so the backpressure retry loop can make
	// progress and PollOnce actually returns.
	drained := make([]uint64, 0, 4)
	buf := make([]uint64, 2)
	for len(drained) < 4 {
		n := recvq.ReadFromHead(buf)
		drained = append(drained, buf[:n]...)
	}
	<-done

	if len(drained) != 4 {
		t.Fatalf("drained %d slots, want 4 (none lost under backpressure)", len(drained))
	}
	for i, want := range []uint64{1, 2, 3, 4} {
		if drained[i] != want {
			t.Fatalf("drained[%d] = %d, want %d", i, drained[i], want)
		}
	}
}

func TestRunPublishesStopOnContextCancel(t *testing.T) {
	recvq := newTestRing(t, 8)
	sendq := newTestRing(t, 8)
	nic := port.NewNICQueue(0, &fakeDriver{})
	l := New("q0", nic, recvq, sendq, -1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !recvq.Stopped() {
		t.Fatalf("recvq not marked stopped after Run returned")
	}
}
