package packet

import "fmt"

// Pool is a fixed-capacity table of Buffers, standing in for the NIC
// driver's descriptor pool. A ring slot's 64-bit value is the Buffer's
// index into this table: unlike the original implementation this framework
// is ported from, a Go process cannot safely hand out raw pointers to a
// peer process, so slots carry pool indices instead (see the rendezvous
// Open Question resolution in DESIGN.md). Both sides of a ring pair must
// share the same Pool layout, which they learn about out of band from the
// Config (pool size) rather than over the ring itself.
type Pool struct {
	bufs []*Buffer
}

// NewPool allocates a pool of n buffers, each with the given capacity.
func NewPool(n, capacity, headroom int) *Pool {
	p := &Pool{bufs: make([]*Buffer, n)}
	for i := range p.bufs {
		b := NewBuffer(make([]byte, capacity), headroom)
		b.id = uint64(i)
		p.bufs[i] = b
	}
	return p
}

// Slot returns the ring-slot value for buffer index i.
func (p *Pool) Slot(i uint64) uint64 { return i }

// Get returns the buffer addressed by slot, or an error if it is out of
// range (a corrupted or foreign descriptor).
func (p *Pool) Get(slot uint64) (*Buffer, error) {
	if slot >= uint64(len(p.bufs)) {
		return nil, fmt.Errorf("packet: slot %d out of range (pool size %d)", slot, len(p.bufs))
	}
	return p.bufs[slot], nil
}

// Len returns the number of buffers in the pool.
func (p *Pool) Len() int { return len(p.bufs) }

// All returns every buffer index in the pool, e.g. to pre-post all buffers
// to a simulation RX ring at startup.
func (p *Pool) All() []uint64 {
	out := make([]uint64, len(p.bufs))
	for i := range out {
		out[i] = uint64(i)
	}
	return out
}
