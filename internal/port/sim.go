package port

import "github.com/saferun-io/tee-fabric/internal/ring"

// SimQueue is the enclave-side port implementation: it bridges a recvq/
// sendq ring pair to the Queue interface instead of a real NIC. Recv pulls
// descriptors the host forwarder published on recvq; Send pushes this
// pipeline's output onto sendq for the host forwarder to pick up and
// transmit. It is also what test harnesses use in place of a NIC.
type SimQueue struct {
	index int
	recvq *ring.Ring
	sendq *ring.Ring
	stats Counters
}

// NewSimQueue wraps an already-initialized ring pair as a Queue.
func NewSimQueue(index int, recvq, sendq *ring.Ring) *SimQueue {
	return &SimQueue{index: index, recvq: recvq, sendq: sendq}
}

func (q *SimQueue) Index() int { return q.index }

// Recv pulls up to len(descs) slots off recvq, the ring the host forwarder
// publishes into.
func (q *SimQueue) Recv(descs []uint64) (int, error) {
	n := q.recvq.ReadFromHead(descs)
	q.stats.addRx(uint64(n))
	return n, nil
}

// Send pushes descs onto sendq, the ring the host forwarder drains to hand
// packets to the NIC. A short return means sendq was (partially) full; per
// spec.md's backpressure contract, the caller retries the undelivered
// remainder rather than treating it as dropped.
func (q *SimQueue) Send(descs []uint64) (int, error) {
	n := q.sendq.WriteAtTail(descs)
	q.stats.addTx(uint64(n))
	return n, nil
}

func (q *SimQueue) Stats() *Counters { return &q.stats }

// Stopped reports whether the recvq this queue reads from has been torn
// down by the host forwarder.
func (q *SimQueue) Stopped() bool { return q.recvq.Stopped() }
