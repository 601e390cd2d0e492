// Package forwarder implements the host-side busy-poll loop that couples
// one NIC queue to one enclave's recvq/sendq ring pair: NIC → recvq,
// sendq → NIC, batched, with backpressure and a graceful STOP teardown.
package forwarder

import (
	"context"
	"time"

	"github.com/saferun-io/tee-fabric/internal/affinity"
	"github.com/saferun-io/tee-fabric/internal/port"
	"github.com/saferun-io/tee-fabric/internal/ring"
	"github.com/saferun-io/tee-fabric/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// DefaultBatchSize bounds how many descriptors one poll iteration moves
// in each direction.
const DefaultBatchSize = 32

// StatsInterval is how often Run logs the direction counters.
const StatsInterval = time.Second

// Loop couples a NIC queue to one enclave's ring pair.
type Loop struct {
	Label     string
	NIC       port.Queue
	Recvq     *ring.Ring
	Sendq     *ring.Ring
	Core      int
	BatchSize int

	Log     *logrus.Logger
	Metrics *telemetry.Registry

	fromNIC     uint64
	toEnclave   uint64
	fromEnclave uint64
	toNIC       uint64
}

// New builds a Loop with DefaultBatchSize.
func New(label string, nic port.Queue, recvq, sendq *ring.Ring, core int) *Loop {
	return &Loop{Label: label, NIC: nic, Recvq: recvq, Sendq: sendq, Core: core, BatchSize: DefaultBatchSize}
}

// Run pins the calling OS thread to Core and busy-polls until ctx is
// canceled, then publishes STOP on Recvq and returns. When Log is set, it
// logs the direction counters and recvq head/tail every StatsInterval.
func (l *Loop) Run(ctx context.Context) error {
	if err := affinity.Pin(l.Core); err != nil && l.Log != nil {
		l.Log.WithError(err).WithField("queue", l.Label).Warn("forwarder: core pinning unavailable")
	}
	defer l.Recvq.PublishStop()

	lastReport := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if _, _, err := l.PollOnce(ctx); err != nil {
			return err
		}
		if l.Log != nil && time.Since(lastReport) >= StatsInterval {
			lastReport = time.Now()
			head, tail := l.Recvq.HeadTail()
			l.Log.WithFields(logrus.Fields{
				"queue": l.Label, "from_nic": l.fromNIC, "to_enclave": l.toEnclave,
				"from_enclave": l.fromEnclave, "to_nic": l.toNIC,
				"recvq_head": head, "recvq_tail": tail,
			}).Info("forwarder: stats")
		}
	}
}

// PollOnce runs a single NIC→recvq and sendq→NIC batch transfer, retrying
// a partial ring write with the unsent suffix until it drains or ctx is
// canceled (the "never block indefinitely if running becomes false"
// discipline spec.md requires). It is exported so tests can drive exactly
// one iteration deterministically.
func (l *Loop) PollOnce(ctx context.Context) (fromNIC, fromEnclave int, err error) {
	batch := make([]uint64, l.BatchSize)
	n, err := l.NIC.Recv(batch)
	if err != nil {
		return 0, 0, err
	}
	if n > 0 {
		l.fromNIC += uint64(n)
		l.toEnclave += uint64(l.drainToRing(ctx, l.Recvq, batch[:n]))
	}

	out := make([]uint64, l.BatchSize)
	got := l.Sendq.ReadFromHead(out)
	sentToNIC := 0
	if got > 0 {
		l.fromEnclave += uint64(got)
		sentToNIC = l.drainToNIC(ctx, out[:got])
		l.toNIC += uint64(sentToNIC)
	}
	l.recordStats(n, sentToNIC)
	return n, got, nil
}

// drainToRing writes slots into r, retrying the unsent suffix under
// backpressure, yielding to context cancellation between attempts so a
// full ring can never hang teardown. Returns how many were actually
// written, which is less than len(slots) only if ctx was canceled
// mid-drain.
func (l *Loop) drainToRing(ctx context.Context, r *ring.Ring, slots []uint64) int {
	remaining := slots
	for len(remaining) > 0 {
		select {
		case <-ctx.Done():
			return len(slots) - len(remaining)
		default:
		}
		sent := r.WriteAtTail(remaining)
		remaining = remaining[sent:]
	}
	return len(slots)
}

func (l *Loop) drainToNIC(ctx context.Context, slots []uint64) int {
	remaining := slots
	for len(remaining) > 0 {
		select {
		case <-ctx.Done():
			return len(slots) - len(remaining)
		default:
		}
		n, err := l.NIC.Send(remaining)
		if err != nil {
			return len(slots) - len(remaining)
		}
		remaining = remaining[n:]
	}
	return len(slots)
}

func (l *Loop) recordStats(received, sent int) {
	if l.Metrics == nil {
		return
	}
	// Add runs even for zero counts, so the series exist from the first poll.
	l.Metrics.RxPackets.WithLabelValues(l.Label).Add(float64(received))
	l.Metrics.TxPackets.WithLabelValues(l.Label).Add(float64(sent))
	head, tail := l.Recvq.HeadTail()
	l.Metrics.RingHead.WithLabelValues(l.Label + "-recvq").Set(float64(head))
	l.Metrics.RingTail.WithLabelValues(l.Label + "-recvq").Set(float64(tail))
}

// Stats returns the loop's running direction counters: from-NIC,
// to-enclave (recvq writes), from-enclave (sendq reads), to-NIC.
func (l *Loop) Stats() (fromNIC, toEnclave, fromEnclave, toNIC uint64) {
	return l.fromNIC, l.toEnclave, l.fromEnclave, l.toNIC
}
