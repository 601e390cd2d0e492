// Package packet implements the zero-copy buffer descriptor and layered
// protocol header views described in spec.md §4.A: a fixed-capacity
// payload region plus typed views (Ethernet/IPv4/IPv6/SRH/TCP/UDP/ICMPv6)
// that locate one protocol header at a known offset, chained through an
// Envelope back-reference for checksum cascade.
package packet

// DefaultCapacity is the default buffer payload region size in bytes.
const DefaultCapacity = 2048

// Buffer is the descriptor of a single-segment packet buffer (B-Desc).
// Ownership of the underlying array always belongs to the NIC driver (or,
// in tests, a Pool standing in for it); the framework never frees it —
// it only adjusts the live-data window within it.
type Buffer struct {
	data    []byte // len == cap == BufLen; the full allocated region
	dataOff uint32 // headroom before live data
	dataLen uint32 // length of live data
	pktLen  uint32 // logical packet length; equals dataLen (single segment)
	id      uint64 // pool-local identity, used as the ring slot value
}

// NewBuffer wraps backing (length == capacity) as an empty Buffer with the
// given headroom reserved at the front, mirroring a freshly posted DPDK
// mbuf with headroom for outer headers.
func NewBuffer(backing []byte, headroom int) *Buffer {
	return &Buffer{
		data:    backing,
		dataOff: uint32(headroom),
	}
}

// ID returns the buffer's pool-local identity, the value actually carried
// through a ring slot (see internal/packet.Pool).
func (b *Buffer) ID() uint64 { return b.id }

// BufLen is the buffer's total capacity in bytes.
func (b *Buffer) BufLen() uint32 { return uint32(len(b.data)) }

// DataLen is the length of the buffer's live data.
func (b *Buffer) DataLen() uint32 { return b.dataLen }

// PktLen is the logical packet length. For the single-segment buffers this
// framework supports, it always equals DataLen.
func (b *Buffer) PktLen() uint32 { return b.pktLen }

// DataOff is the headroom, in bytes, before the start of live data.
func (b *Buffer) DataOff() uint32 { return b.dataOff }

// SetLive sets the buffer's live-data window directly, used when a NIC
// driver hands over a freshly received buffer whose headroom/length the
// framework did not itself compute.
func (b *Buffer) SetLive(dataOff, dataLen uint32) {
	b.dataOff = dataOff
	b.dataLen = dataLen
	b.pktLen = dataLen
}

// DataAddress returns the live-data byte slice starting at offset bytes
// into the live region. It aliases the Buffer's backing array: writes
// through the returned slice mutate the buffer in place.
func (b *Buffer) DataAddress(offset int) []byte {
	start := int(b.dataOff) + offset
	if start < 0 || start > int(b.dataOff+b.dataLen) {
		return nil
	}
	return b.data[start:int(b.dataOff+b.dataLen)]
}

// headroom is the number of unused bytes before the live-data window.
func (b *Buffer) headroom() int { return int(b.dataOff) }

// tailroom is the number of unused bytes after the live-data window.
func (b *Buffer) tailroom() int {
	return len(b.data) - int(b.dataOff+b.dataLen)
}

// AddDataBeginning grows the live-data window by n bytes at the front,
// consuming headroom. Returns false if there isn't enough headroom.
func (b *Buffer) AddDataBeginning(n int) bool {
	if n < 0 || n > b.headroom() {
		return false
	}
	b.dataOff -= uint32(n)
	b.dataLen += uint32(n)
	b.pktLen = b.dataLen
	return true
}

// AddDataEnd grows the live-data window by n bytes at the back, consuming
// tailroom. Returns false if there isn't enough tailroom.
func (b *Buffer) AddDataEnd(n int) bool {
	if n < 0 || n > b.tailroom() {
		return false
	}
	b.dataLen += uint32(n)
	b.pktLen = b.dataLen
	return true
}

// RemoveDataBeginning shrinks the live-data window by n bytes at the
// front, returning the space to headroom.
func (b *Buffer) RemoveDataBeginning(n int) bool {
	if n < 0 || uint32(n) > b.dataLen {
		return false
	}
	b.dataOff += uint32(n)
	b.dataLen -= uint32(n)
	b.pktLen = b.dataLen
	return true
}

// RemoveDataEnd shrinks the live-data window by n bytes at the back,
// returning the space to tailroom.
func (b *Buffer) RemoveDataEnd(n int) bool {
	if n < 0 || uint32(n) > b.dataLen {
		return false
	}
	b.dataLen -= uint32(n)
	b.pktLen = b.dataLen
	return true
}

// Alloc allocates n bytes at offset by shifting trailing live bytes down
// (toward higher addresses), growing tailroom into live data. A zero-length
// call is a no-op. offset must not be past the current live-data length.
func (b *Buffer) Alloc(offset, n int) error {
	if n == 0 {
		return nil
	}
	if offset < 0 || uint32(offset) > b.dataLen {
		return ErrBadOffset
	}
	copyLen := int(b.dataLen) - offset
	if !b.AddDataEnd(n) {
		return ErrNotResized
	}
	if copyLen > 0 {
		src := b.DataAddress(offset)[:copyLen]
		dst := b.DataAddress(offset + n)
		copy(dst, src)
	}
	return nil
}

// Dealloc removes n bytes at offset by shifting trailing live bytes up
// (toward lower addresses), shrinking live data back into tailroom. A
// zero-length call is a no-op.
func (b *Buffer) Dealloc(offset, n int) error {
	if n == 0 {
		return nil
	}
	if offset < 0 || uint32(offset) > b.dataLen {
		return ErrBadOffset
	}
	srcOffset := offset + n
	switch {
	case uint32(srcOffset) < b.dataLen:
		src := b.DataAddress(srcOffset)
		dst := b.DataAddress(offset)
		copy(dst, src)
		if !b.RemoveDataEnd(n) {
			return ErrNotResized
		}
	case uint32(srcOffset) == b.dataLen:
		if !b.RemoveDataEnd(n) {
			return ErrNotResized
		}
	default:
		return ErrNotResized
	}
	return nil
}

// Realloc grows (delta > 0) or shrinks (delta < 0) the buffer at offset.
func (b *Buffer) Realloc(offset, delta int) error {
	switch {
	case delta > 0:
		return b.Alloc(offset, delta)
	case delta < 0:
		return b.Dealloc(offset, -delta)
	default:
		return nil
	}
}
