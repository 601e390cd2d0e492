package port

import (
	"testing"

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

func TestSimQueueRecvPullsFromRecvq(t *testing.T) {
	recvq := newTestRing(t, 8)
	sendq := newTestRing(t, 8)
	if n := recvq.WriteAtTail([]uint64{1, 2, 3}); n != 3 {
		t.Fatalf("setup WriteAtTail = %d, want 3", n)
	}
	q := NewSimQueue(0, recvq, sendq)

	out := make([]uint64, 8)
	n, err := q.Recv(out)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if n != 3 {
		t.Fatalf("Recv returned %d, want 3", n)
	}
	if q.Stats().RxPackets() != 3 {
		t.Fatalf("RxPackets = %d, want 3", q.Stats().RxPackets())
	}
}

func TestSimQueueSendPushesToSendq(t *testing.T) {
	recvq := newTestRing(t, 8)
	sendq := newTestRing(t, 8)
	q := NewSimQueue(0, recvq, sendq)

	n, err := q.Send([]uint64{9, 8, 7})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n != 3 {
		t.Fatalf("Send returned %d, want 3", n)
	}
	if q.Stats().TxPackets() != 3 {
		t.Fatalf("TxPackets = %d, want 3", q.Stats().TxPackets())
	}

	out := make([]uint64, 8)
	got := sendq.ReadFromHead(out)
	if got != 3 || out[0] != 9 || out[1] != 8 || out[2] != 7 {
		t.Fatalf("sendq contents = %v (n=%d), want [9 8 7]", out[:got], got)
	}
}

func TestSimQueueSendBackpressureShortCount(t *testing.T) {
	recvq := newTestRing(t, 8)
	sendq := newTestRing(t, 2)
	q := NewSimQueue(0, recvq, sendq)

	n, err := q.Send([]uint64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n != 2 {
		t.Fatalf("Send returned %d, want 2 (ring capacity)", n)
	}
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

func TestNICQueueRecvSend(t *testing.T) {
	drv := &fakeDriver{rx: []uint64{10, 11, 12}}
	q := NewNICQueue(1, drv)

	out := make([]uint64, 8)
	n, err := q.Recv(out)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if n != 3 {
		t.Fatalf("Recv = %d, want 3", n)
	}
	if q.Index() != 1 {
		t.Fatalf("Index = %d, want 1", q.Index())
	}

	if _, err := q.Send([]uint64{10, 11}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(drv.tx) != 2 {
		t.Fatalf("driver tx = %v, want 2 elements", drv.tx)
	}
	if q.Stats().TxPackets() != 2 {
		t.Fatalf("TxPackets = %d, want 2", q.Stats().TxPackets())
	}
}

func TestLoopbackDriverEchoesSentDescriptors(t *testing.T) {
	drv := &LoopbackDriver{}
	q := NewNICQueue(0, drv)

	if n, err := q.Send([]uint64{5, 6, 7}); err != nil || n != 3 {
		t.Fatalf("Send = (%d, %v), want (3, nil)", n, err)
	}

	out := make([]uint64, 8)
	n, err := q.Recv(out)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if n != 3 || out[0] != 5 || out[1] != 6 || out[2] != 7 {
		t.Fatalf("Recv = %v (n=%d), want [5 6 7]", out[:n], n)
	}
}
