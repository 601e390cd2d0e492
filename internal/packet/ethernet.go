package packet

import (
	"encoding/binary"
	"net"
)

const ethernetHeaderLen = 14

// EtherType identifies the payload protocol carried by an Ethernet frame.
type EtherType uint16

const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeIPv6 EtherType = 0x86DD
)

// Ethernet is a view over a frame's Ethernet header. It is always the
// outermost header in a packet's view chain (its Envelope is nil).
type Ethernet struct {
	view
}

// ParseEthernet reads an Ethernet header at the start of buf's live data.
func ParseEthernet(buf *Buffer) (*Ethernet, error) {
	if buf.DataLen() < ethernetHeaderLen {
		return nil, ErrBadOffset
	}
	return &Ethernet{view{buf: buf, offset: 0}}, nil
}

// PushEthernet allocates a new Ethernet header at the start of buf,
// shifting any existing live data down.
func PushEthernet(buf *Buffer) (*Ethernet, error) {
	if err := buf.Alloc(0, ethernetHeaderLen); err != nil {
		return nil, err
	}
	return &Ethernet{view{buf: buf, offset: 0}}, nil
}

// Remove undoes a prior Push, shifting trailing bytes up and shrinking the
// buffer back down.
func (e *Ethernet) Remove() error {
	return e.buf.Dealloc(e.offset, ethernetHeaderLen)
}

func (e *Ethernet) HeaderLen() int     { return ethernetHeaderLen }
func (e *Ethernet) PayloadOffset() int { return e.offset + ethernetHeaderLen }

// Cascade is a no-op for Ethernet: it has no checksum and no outer
// envelope to recurse into.
func (e *Ethernet) Cascade() error { return nil }

func (e *Ethernet) raw() []byte { return e.bytesAt(ethernetHeaderLen) }

// Destination returns the frame's destination MAC address.
func (e *Ethernet) Destination() net.HardwareAddr {
	return net.HardwareAddr(append([]byte(nil), e.raw()[0:6]...))
}

// Source returns the frame's source MAC address.
func (e *Ethernet) Source() net.HardwareAddr {
	return net.HardwareAddr(append([]byte(nil), e.raw()[6:12]...))
}

// SetDestination overwrites the frame's destination MAC address.
func (e *Ethernet) SetDestination(mac net.HardwareAddr) {
	copy(e.raw()[0:6], mac)
}

// SetSource overwrites the frame's source MAC address.
func (e *Ethernet) SetSource(mac net.HardwareAddr) {
	copy(e.raw()[6:12], mac)
}

// SwapAddresses exchanges source and destination MAC addresses in place —
// the macswap example pipeline's entire job.
func (e *Ethernet) SwapAddresses() {
	raw := e.raw()
	var tmp [6]byte
	copy(tmp[:], raw[0:6])
	copy(raw[0:6], raw[6:12])
	copy(raw[6:12], tmp[:])
}

// EtherType returns the frame's payload protocol type.
func (e *Ethernet) EtherType() EtherType {
	return EtherType(binary.BigEndian.Uint16(e.raw()[12:14]))
}

// SetEtherType overwrites the frame's payload protocol type.
func (e *Ethernet) SetEtherType(t EtherType) {
	binary.BigEndian.PutUint16(e.raw()[12:14], uint16(t))
}
