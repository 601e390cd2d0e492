package packet

import "encoding/binary"

const (
	udpHeaderLen = 8
	protocolUDP  = 17
)

// UDP is a view over a UDP datagram header.
type UDP struct {
	view
	ip IPEnvelope
}

// ParseUDP reads a UDP header at ip's payload offset.
func ParseUDP(ip IPEnvelope) (*UDP, error) {
	buf := ip.Buf()
	off := ip.PayloadOffset()
	if uint32(off)+udpHeaderLen > buf.DataLen() {
		return nil, ErrBadOffset
	}
	return &UDP{view: view{buf: buf, parent: ip, offset: off}, ip: ip}, nil
}

// PushUDP allocates a new UDP header right after ip's header.
func PushUDP(ip IPEnvelope) (*UDP, error) {
	buf := ip.Buf()
	off := ip.PayloadOffset()
	if err := buf.Alloc(off, udpHeaderLen); err != nil {
		return nil, err
	}
	return &UDP{view: view{buf: buf, parent: ip, offset: off}, ip: ip}, nil
}

// Remove undoes a prior Push.
func (u *UDP) Remove() error {
	return u.buf.Dealloc(u.offset, udpHeaderLen)
}

func (u *UDP) HeaderLen() int     { return udpHeaderLen }
func (u *UDP) PayloadOffset() int { return u.offset + udpHeaderLen }
func (u *UDP) raw() []byte        { return u.bytesAt(udpHeaderLen) }

func (u *UDP) SourcePort() uint16      { return binary.BigEndian.Uint16(u.raw()[0:2]) }
func (u *UDP) DestinationPort() uint16 { return binary.BigEndian.Uint16(u.raw()[2:4]) }
func (u *UDP) SetSourcePort(v uint16)      { binary.BigEndian.PutUint16(u.raw()[0:2], v) }
func (u *UDP) SetDestinationPort(v uint16) { binary.BigEndian.PutUint16(u.raw()[2:4], v) }
func (u *UDP) Length() uint16              { return binary.BigEndian.Uint16(u.raw()[4:6]) }
func (u *UDP) Checksum() uint16            { return binary.BigEndian.Uint16(u.raw()[6:8]) }

func (u *UDP) datagram() []byte {
	full := u.buf.DataAddress(u.offset)
	return full[:int(u.buf.DataLen())-u.offset]
}

// fixLengthAndChecksum recomputes the UDP length field and checksum. A
// computed checksum of exactly zero is written out as all-ones (0xFFFF),
// since on the wire a zero checksum field means "no checksum present" —
// callers who actually want that must call NoChecksum instead.
func (u *UDP) fixLengthAndChecksum() {
	dg := u.datagram()
	binary.BigEndian.PutUint16(dg[4:6], uint16(len(dg)))
	dg[6], dg[7] = 0, 0
	pseudo := u.ip.PseudoHeader(uint16(len(dg)), protocolUDP)
	sum := checksumWithPseudoHeader(pseudo, dg)
	if sum == 0 {
		sum = 0xFFFF
	}
	binary.BigEndian.PutUint16(dg[6:8], sum)
}

// NoChecksum explicitly declares that this datagram carries no checksum,
// writing the zero sentinel rather than letting Cascade compute one. This
// is a distinct operation from a checksum that happens to compute to
// zero, which Cascade instead encodes as all-ones.
func (u *UDP) NoChecksum() {
	dg := u.datagram()
	binary.BigEndian.PutUint16(dg[4:6], uint16(len(dg)))
	dg[6], dg[7] = 0, 0
}

// Cascade recomputes length and checksum, then recurses outward.
func (u *UDP) Cascade() error {
	u.fixLengthAndChecksum()
	if u.parent != nil {
		return u.parent.Cascade()
	}
	return nil
}
