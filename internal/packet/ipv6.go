package packet

import (
	"encoding/binary"
	"net"
)

const ipv6HeaderLen = 40

// IPv6 is a view over a fixed-size IPv6 header. Extension headers other
// than a single optional Segment Routing Header are out of scope.
type IPv6 struct {
	view
}

// ParseIPv6 reads an IPv6 header at parent's payload offset.
func ParseIPv6(parent Envelope) (*IPv6, error) {
	buf := parent.Buf()
	off := parent.PayloadOffset()
	if uint32(off)+ipv6HeaderLen > buf.DataLen() {
		return nil, ErrBadOffset
	}
	p := &IPv6{view{buf: buf, parent: parent, offset: off}}
	if p.raw()[0]>>4 != 6 {
		return nil, ErrParse
	}
	return p, nil
}

// PushIPv6 allocates a new IPv6 header right after parent's header.
func PushIPv6(parent Envelope) (*IPv6, error) {
	buf := parent.Buf()
	off := parent.PayloadOffset()
	if err := buf.Alloc(off, ipv6HeaderLen); err != nil {
		return nil, err
	}
	p := &IPv6{view{buf: buf, parent: parent, offset: off}}
	p.raw()[0] = 0x60
	return p, nil
}

// Remove undoes a prior Push.
func (p *IPv6) Remove() error {
	return p.buf.Dealloc(p.offset, ipv6HeaderLen)
}

func (p *IPv6) HeaderLen() int     { return ipv6HeaderLen }
func (p *IPv6) PayloadOffset() int { return p.offset + ipv6HeaderLen }
func (p *IPv6) raw() []byte        { return p.bytesAt(ipv6HeaderLen) }

func (p *IPv6) PayloadLength() uint16 { return binary.BigEndian.Uint16(p.raw()[4:6]) }
func (p *IPv6) NextHeader() uint8     { return p.raw()[6] }
func (p *IPv6) SetNextHeader(v uint8) { p.raw()[6] = v }
func (p *IPv6) HopLimit() uint8       { return p.raw()[7] }
func (p *IPv6) SetHopLimit(v uint8)   { p.raw()[7] = v }

func (p *IPv6) Source() net.IP {
	return net.IP(append([]byte(nil), p.raw()[8:24]...))
}

func (p *IPv6) Destination() net.IP {
	return net.IP(append([]byte(nil), p.raw()[24:40]...))
}

func (p *IPv6) SetSource(ip net.IP) {
	copy(p.raw()[8:24], ip.To16())
}

func (p *IPv6) SetDestination(ip net.IP) {
	copy(p.raw()[24:40], ip.To16())
}

// PseudoHeader returns the IPv6 pseudo-header used by TCP/UDP/ICMPv6
// checksums: source, destination, upper-layer length, zero-padded next
// header.
func (p *IPv6) PseudoHeader(payloadLen uint16, protocol uint8) []byte {
	out := make([]byte, 40)
	copy(out[0:16], p.raw()[8:24])
	copy(out[16:32], p.raw()[24:40])
	binary.BigEndian.PutUint32(out[32:36], uint32(payloadLen))
	out[39] = protocol
	return out
}

// fixPayloadLength recomputes the payload-length field (everything after
// this fixed 40-byte header, to the end of live data).
func (p *IPv6) fixPayloadLength() {
	payloadLen := uint16(int(p.buf.DataLen()) - p.offset - ipv6HeaderLen)
	binary.BigEndian.PutUint16(p.raw()[4:6], payloadLen)
}

// Cascade recomputes payload-length, then recurses outward. IPv6 has no
// header checksum of its own.
func (p *IPv6) Cascade() error {
	p.fixPayloadLength()
	if p.parent != nil {
		return p.parent.Cascade()
	}
	return nil
}
