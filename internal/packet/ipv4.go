package packet

import (
	"encoding/binary"
	"net"
)

const ipv4HeaderLen = 20

// IPv4 is a view over an IPv4 header with no options (IHL is fixed at 5),
// consistent with the single-segment, no-extension-header packets this
// framework supports for v4.
type IPv4 struct {
	view
}

// ParseIPv4 reads an IPv4 header at parent's payload offset.
func ParseIPv4(parent Envelope) (*IPv4, error) {
	buf := parent.Buf()
	off := parent.PayloadOffset()
	if uint32(off)+ipv4HeaderLen > buf.DataLen() {
		return nil, ErrBadOffset
	}
	p := &IPv4{view{buf: buf, parent: parent, offset: off}}
	raw := p.raw()
	if raw[0]>>4 != 4 {
		return nil, ErrParse
	}
	if raw[0]&0x0f != 5 {
		// Options are out of scope for this framework's parser.
		return nil, ErrParse
	}
	return p, nil
}

// PushIPv4 allocates a new IPv4 header right after parent's header,
// shifting any existing inner bytes down.
func PushIPv4(parent Envelope) (*IPv4, error) {
	buf := parent.Buf()
	off := parent.PayloadOffset()
	if err := buf.Alloc(off, ipv4HeaderLen); err != nil {
		return nil, err
	}
	p := &IPv4{view{buf: buf, parent: parent, offset: off}}
	raw := p.raw()
	raw[0] = 0x45 // version 4, IHL 5
	return p, nil
}

// Remove undoes a prior Push.
func (p *IPv4) Remove() error {
	return p.buf.Dealloc(p.offset, ipv4HeaderLen)
}

func (p *IPv4) HeaderLen() int     { return ipv4HeaderLen }
func (p *IPv4) PayloadOffset() int { return p.offset + ipv4HeaderLen }
func (p *IPv4) raw() []byte        { return p.bytesAt(ipv4HeaderLen) }

func (p *IPv4) TOS() uint8        { return p.raw()[1] }
func (p *IPv4) SetTOS(v uint8)    { p.raw()[1] = v }
func (p *IPv4) TotalLength() uint16 { return binary.BigEndian.Uint16(p.raw()[2:4]) }
func (p *IPv4) Identification() uint16 { return binary.BigEndian.Uint16(p.raw()[4:6]) }
func (p *IPv4) TTL() uint8         { return p.raw()[8] }
func (p *IPv4) SetTTL(v uint8)     { p.raw()[8] = v }
func (p *IPv4) Protocol() uint8    { return p.raw()[9] }
func (p *IPv4) SetProtocol(v uint8) { p.raw()[9] = v }
func (p *IPv4) Checksum() uint16   { return binary.BigEndian.Uint16(p.raw()[10:12]) }

func (p *IPv4) Source() net.IP {
	return net.IPv4(p.raw()[12], p.raw()[13], p.raw()[14], p.raw()[15])
}

func (p *IPv4) Destination() net.IP {
	return net.IPv4(p.raw()[16], p.raw()[17], p.raw()[18], p.raw()[19])
}

func (p *IPv4) SetSource(ip net.IP) {
	v4 := ip.To4()
	copy(p.raw()[12:16], v4)
}

func (p *IPv4) SetDestination(ip net.IP) {
	v4 := ip.To4()
	copy(p.raw()[16:20], v4)
}

// PseudoHeader returns the IPv4 pseudo-header used by TCP/UDP checksums:
// source, destination, zero, protocol, segment length.
func (p *IPv4) PseudoHeader(payloadLen uint16, protocol uint8) []byte {
	out := make([]byte, 12)
	copy(out[0:4], p.raw()[12:16])
	copy(out[4:8], p.raw()[16:20])
	out[8] = 0
	out[9] = protocol
	binary.BigEndian.PutUint16(out[10:12], payloadLen)
	return out
}

// fixLengthAndChecksum recomputes total length (header+everything to the
// end of live data) and the header checksum.
func (p *IPv4) fixLengthAndChecksum() {
	raw := p.raw()
	totalLen := uint16(int(p.buf.DataLen()) - p.offset)
	binary.BigEndian.PutUint16(raw[2:4], totalLen)
	raw[10] = 0
	raw[11] = 0
	sum := internetChecksum(raw)
	binary.BigEndian.PutUint16(raw[10:12], sum)
}

// Cascade recomputes this header's total-length and checksum fields, then
// recurses to its envelope (normally Ethernet, whose Cascade has nothing
// to fix up).
func (p *IPv4) Cascade() error {
	p.fixLengthAndChecksum()
	if p.parent != nil {
		return p.parent.Cascade()
	}
	return nil
}
