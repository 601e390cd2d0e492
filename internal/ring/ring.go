// Package ring implements the single-producer/single-consumer shared-memory
// descriptor ring that carries packet descriptors across the host/enclave
// trust boundary.
//
// The ring's first four words (head, tail, size, mask) are laid out
// bit-exactly as described by the wire format: a consumer and producer
// living in different address spaces map the same bytes and communicate
// purely through this layout plus the ordering discipline documented below.
package ring

import (
	"errors"
	"sync/atomic"
)

// Stop is the sentinel written into a ring's size word to signal the
// consumer that it must terminate. It is distinct from any valid power of
// two slot count.
const Stop uint64 = 0xabcdefff

// ErrInvalidSize is returned by Init when slotCount is not a power of two.
var ErrInvalidSize = errors.New("ring: slot count must be a power of two")

// wordCount is the number of machine words occupying the ring header
// (head, tail, size, mask) before the slot array begins.
const wordCount = 4

// Layout is the raw memory layout of a ring region: four header words
// followed by a slot array. Accessors document the memory-order
// requirements of each field instead of exposing raw pointer arithmetic.
type Layout struct {
	words []uint64 // words[0]=head words[1]=tail words[2]=size words[3]=mask
	slots []uint64 // words[4:]
}

// NewLayout wraps a pre-allocated word slice (as
// produced by shm.Segment or an in-process heap buffer) as a ring Layout.
// words must have length wordCount+slotCount.
func NewLayout(words []uint64) *Layout {
	return &Layout{
		words: words[:wordCount],
		slots: words[wordCount:],
	}
}

func (l *Layout) head() uint64       { return atomic.LoadUint64(&l.words[0]) }
func (l *Layout) setHead(v uint64)   { atomic.StoreUint64(&l.words[0], v) }
func (l *Layout) tail() uint64       { return atomic.LoadUint64(&l.words[1]) }
func (l *Layout) setTail(v uint64)   { atomic.StoreUint64(&l.words[1], v) }
func (l *Layout) size() uint64       { return atomic.LoadUint64(&l.words[2]) }
func (l *Layout) setSize(v uint64)   { atomic.StoreUint64(&l.words[2], v) }
func (l *Layout) mask() uint64       { return atomic.LoadUint64(&l.words[3]) }
func (l *Layout) setMask(v uint64)   { atomic.StoreUint64(&l.words[3], v) }
func (l *Layout) slotCount() int     { return len(l.slots) }

// Ring is a producer or consumer handle onto a Layout. Both sides of the
// ring use the same type; which operations are safe to call depends on
// whether the caller is the producer or the consumer (exactly one of
// each is permitted per ring, per the SPSC contract).
type Ring struct {
	l *Layout
}

// New wraps layout as a Ring handle. It does not initialize the header —
// call Init on the producer side exactly once before any peer attaches.
func New(l *Layout) *Ring {
	return &Ring{l: l}
}

// Init initializes a freshly mapped ring region. slotCount must be a power
// of two. Only the side that creates the shared-memory segment (the host,
// by convention) calls Init.
func (r *Ring) Init(slotCount int) error {
	if slotCount <= 0 || slotCount&(slotCount-1) != 0 {
		return ErrInvalidSize
	}
	if slotCount != r.l.slotCount() {
		return ErrInvalidSize
	}
	r.l.setHead(0)
	r.l.setTail(0)
	r.l.setMask(uint64(slotCount - 1))
	// size is published last with a release store: once a peer observes a
	// valid size, head/tail/mask are already visible to it.
	r.l.setSize(uint64(slotCount))
	return nil
}

// Stopped reports whether the producer has published the Stop sentinel.
// Consumers must check this before every read.
func (r *Ring) Stopped() bool {
	return r.l.size() == Stop
}

// PublishStop writes the Stop sentinel into the ring's size word with
// release ordering, so that any consumer subsequently observing it has also
// already fenced off any slot bytes written prior to the call. This is the
// framework's sole host-to-enclave teardown signal; it replaces any
// reliance on an in-enclave signal handler.
func (r *Ring) PublishStop() {
	r.l.setSize(Stop)
}

// WriteAtTail copies up to min(len(slots), size+head-tail) slots from slots
// into the ring starting at the current tail, wrapping at size, then
// advances tail by the number of slots written. It is the producer-only
// entry point. Returns the number of slots actually written; callers must
// retry with the unwritten suffix if the return value is less than
// len(slots) (the ring is full).
func (r *Ring) WriteAtTail(slots []uint64) int {
	size := r.l.size()
	if size == Stop || size == 0 {
		return 0
	}
	head := r.l.head()
	tail := r.l.tail()
	available := size - (tail - head)
	n := uint64(len(slots))
	if n > available {
		n = available
	}
	if n == 0 {
		return 0
	}
	mask := r.l.mask()
	for i := uint64(0); i < n; i++ {
		idx := (tail + i) & mask
		r.l.slots[idx] = slots[i]
	}
	// Release fence: the slot stores above must be visible to any consumer
	// that observes the new tail.
	r.l.setTail(tail + n)
	return int(n)
}

// ReadFromHead reads up to min(len(out), tail-head) slots starting at the
// current head, wrapping at size, into out, then advances head by the
// number of slots read. Before reading, the caller must have already
// checked Stopped(); ReadFromHead itself does not check it, so that a
// ring drained to empty right before a Stop can still be fully consumed.
// It is the consumer-only entry point.
func (r *Ring) ReadFromHead(out []uint64) int {
	tail := r.l.tail()
	head := r.l.head()
	avail := tail - head
	n := uint64(len(out))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}
	mask := r.l.mask()
	for i := uint64(0); i < n; i++ {
		idx := (head + i) & mask
		out[i] = r.l.slots[idx]
	}
	// Release fence pairs with the producer's acquire-equivalent load of
	// head when it recomputes available space.
	r.l.setHead(head + n)
	return int(n)
}

// Depth returns the number of slots currently queued (tail-head, wrapping).
func (r *Ring) Depth() uint64 {
	return r.l.tail() - r.l.head()
}

// Size returns the ring's configured slot capacity, or Stop if the ring has
// been torn down.
func (r *Ring) Size() uint64 {
	return r.l.size()
}

// HeadTail returns the raw wrapping counters, for stats/telemetry display.
func (r *Ring) HeadTail() (head, tail uint64) {
	return r.l.head(), r.l.tail()
}

// WordCount is the number of header words preceding the slot array,
// exported so that shm segment sizing code can compute
// wordCount*8 + slotCount*8 bytes without duplicating the constant.
const WordCount = wordCount
