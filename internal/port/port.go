// Package port implements the logical (rx-queue, tx-queue) abstraction
// described in spec.md §4.E: a Queue exposes the same recv/send/stats
// surface whether it is backed by a real NIC driver or, for the enclave
// side and test harnesses, a simulation bridge over a shared-memory ring
// pair.
package port

import "sync/atomic"

// Counters holds a queue's RX/TX packet totals, updated with atomic adds
// so a concurrently running stats scrape never blocks the forwarder loop.
type Counters struct {
	rx uint64
	tx uint64
}

func (c *Counters) addRx(n uint64) { atomic.AddUint64(&c.rx, n) }
func (c *Counters) addTx(n uint64) { atomic.AddUint64(&c.tx, n) }

// RxPackets returns the total packets received on this queue so far.
func (c *Counters) RxPackets() uint64 { return atomic.LoadUint64(&c.rx) }

// TxPackets returns the total packets sent on this queue so far.
func (c *Counters) TxPackets() uint64 { return atomic.LoadUint64(&c.tx) }

// Queue is a logical (rx-queue, tx-queue) pair: a driver handle, a queue
// index, and RX/TX statistics. Both the NIC-backed and simulation
// implementations satisfy this one interface, so a forwarder or scheduler
// never needs to know which kind it holds.
type Queue interface {
	// Index is this queue's position within its port's queue set.
	Index() int
	// Recv fills descs with up to len(descs) descriptor slots pulled off
	// this queue's receive side, returning how many were filled.
	Recv(descs []uint64) (int, error)
	// Send pushes descs[:n] onto this queue's transmit side, returning how
	// many were actually accepted (a short count signals backpressure;
	// the caller is responsible for retrying the remainder).
	Send(descs []uint64) (int, error)
	// Stats returns this queue's running RX/TX counters.
	Stats() *Counters
}
