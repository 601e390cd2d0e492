package packet

import "encoding/binary"

const (
	icmpv6HeaderLen = 4
	protocolICMPv6  = 58

	ICMPv6TypeRouterSolicitation  uint8 = 133
	ICMPv6TypeRouterAdvertisement uint8 = 134
)

// ICMPv6 is a view over the common ICMPv6 header: type, code, checksum.
// The message body beyond it is type-specific (see NDPRouterSolicitation
// and NDPRouterAdvertisement).
type ICMPv6 struct {
	view
	ip IPEnvelope
}

// ParseICMPv6 reads an ICMPv6 header at ip's payload offset.
func ParseICMPv6(ip IPEnvelope) (*ICMPv6, error) {
	buf := ip.Buf()
	off := ip.PayloadOffset()
	if uint32(off)+icmpv6HeaderLen > buf.DataLen() {
		return nil, ErrBadOffset
	}
	return &ICMPv6{view: view{buf: buf, parent: ip, offset: off}, ip: ip}, nil
}

// PushICMPv6 allocates a new ICMPv6 header right after ip's header.
func PushICMPv6(ip IPEnvelope, msgType, code uint8) (*ICMPv6, error) {
	buf := ip.Buf()
	off := ip.PayloadOffset()
	if err := buf.Alloc(off, icmpv6HeaderLen); err != nil {
		return nil, err
	}
	m := &ICMPv6{view: view{buf: buf, parent: ip, offset: off}, ip: ip}
	raw := m.raw()
	raw[0] = msgType
	raw[1] = code
	return m, nil
}

func (m *ICMPv6) HeaderLen() int     { return icmpv6HeaderLen }
func (m *ICMPv6) PayloadOffset() int { return m.offset + icmpv6HeaderLen }
func (m *ICMPv6) raw() []byte        { return m.bytesAt(icmpv6HeaderLen) }

func (m *ICMPv6) Type() uint8     { return m.raw()[0] }
func (m *ICMPv6) Code() uint8     { return m.raw()[1] }
func (m *ICMPv6) Checksum() uint16 { return binary.BigEndian.Uint16(m.raw()[2:4]) }

func (m *ICMPv6) message() []byte {
	full := m.buf.DataAddress(m.offset)
	return full[:int(m.buf.DataLen())-m.offset]
}

func (m *ICMPv6) fixChecksum() {
	msg := m.message()
	msg[2], msg[3] = 0, 0
	pseudo := m.ip.PseudoHeader(uint16(len(msg)), protocolICMPv6)
	sum := checksumWithPseudoHeader(pseudo, msg)
	binary.BigEndian.PutUint16(msg[2:4], sum)
}

// Cascade recomputes the ICMPv6 checksum over the pseudo-header plus the
// full message, then recurses outward.
func (m *ICMPv6) Cascade() error {
	m.fixChecksum()
	if m.parent != nil {
		return m.parent.Cascade()
	}
	return nil
}

const ndpRSReservedLen = 4

// NDPRouterSolicitation is the Neighbor Discovery Router Solicitation
// body following an ICMPv6 header of type 133. Options are not parsed.
type NDPRouterSolicitation struct {
	icmp *ICMPv6
}

// ParseNDPRouterSolicitation reads a Router Solicitation body after icmp,
// which must already have Type()==ICMPv6TypeRouterSolicitation.
func ParseNDPRouterSolicitation(icmp *ICMPv6) (*NDPRouterSolicitation, error) {
	if icmp.Type() != ICMPv6TypeRouterSolicitation {
		return nil, ErrParse
	}
	buf := icmp.Buf()
	off := icmp.PayloadOffset()
	if uint32(off)+ndpRSReservedLen > buf.DataLen() {
		return nil, ErrBadOffset
	}
	return &NDPRouterSolicitation{icmp: icmp}, nil
}

const ndpRABodyLen = 12

// NDPRouterAdvertisement is the Neighbor Discovery Router Advertisement
// body following an ICMPv6 header of type 134. Options are not parsed.
type NDPRouterAdvertisement struct {
	icmp   *ICMPv6
	offset int
}

// ParseNDPRouterAdvertisement reads a Router Advertisement body after
// icmp, which must already have Type()==ICMPv6TypeRouterAdvertisement.
func ParseNDPRouterAdvertisement(icmp *ICMPv6) (*NDPRouterAdvertisement, error) {
	if icmp.Type() != ICMPv6TypeRouterAdvertisement {
		return nil, ErrParse
	}
	buf := icmp.Buf()
	off := icmp.PayloadOffset()
	if uint32(off)+ndpRABodyLen > buf.DataLen() {
		return nil, ErrBadOffset
	}
	return &NDPRouterAdvertisement{icmp: icmp, offset: off}, nil
}

func (r *NDPRouterAdvertisement) raw() []byte {
	b := r.icmp.Buf().DataAddress(r.offset)
	if len(b) < ndpRABodyLen {
		return nil
	}
	return b[:ndpRABodyLen]
}

func (r *NDPRouterAdvertisement) CurHopLimit() uint8      { return r.raw()[0] }
func (r *NDPRouterAdvertisement) Flags() uint8            { return r.raw()[1] }
func (r *NDPRouterAdvertisement) RouterLifetime() uint16  { return binary.BigEndian.Uint16(r.raw()[2:4]) }
func (r *NDPRouterAdvertisement) ReachableTime() uint32   { return binary.BigEndian.Uint32(r.raw()[4:8]) }
func (r *NDPRouterAdvertisement) RetransTimer() uint32    { return binary.BigEndian.Uint32(r.raw()[8:12]) }
