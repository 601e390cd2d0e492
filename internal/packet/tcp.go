package packet

import "encoding/binary"

const (
	tcpFixedLen  = 20
	protocolTCP  = 6
)

// TCP is a view over a TCP segment header with no options (data offset is
// fixed at 5).
type TCP struct {
	view
	ip IPEnvelope
}

// ParseTCP reads a TCP header at ip's payload offset.
func ParseTCP(ip IPEnvelope) (*TCP, error) {
	buf := ip.Buf()
	off := ip.PayloadOffset()
	if uint32(off)+tcpFixedLen > buf.DataLen() {
		return nil, ErrBadOffset
	}
	t := &TCP{view: view{buf: buf, parent: ip, offset: off}, ip: ip}
	if t.raw()[12]>>4 != 5 {
		return nil, ErrParse
	}
	return t, nil
}

// PushTCP allocates a new TCP header right after ip's header.
func PushTCP(ip IPEnvelope) (*TCP, error) {
	buf := ip.Buf()
	off := ip.PayloadOffset()
	if err := buf.Alloc(off, tcpFixedLen); err != nil {
		return nil, err
	}
	t := &TCP{view: view{buf: buf, parent: ip, offset: off}, ip: ip}
	t.raw()[12] = 5 << 4
	return t, nil
}

// Remove undoes a prior Push.
func (t *TCP) Remove() error {
	return t.buf.Dealloc(t.offset, tcpFixedLen)
}

func (t *TCP) HeaderLen() int     { return tcpFixedLen }
func (t *TCP) PayloadOffset() int { return t.offset + tcpFixedLen }
func (t *TCP) raw() []byte        { return t.bytesAt(tcpFixedLen) }

func (t *TCP) SourcePort() uint16      { return binary.BigEndian.Uint16(t.raw()[0:2]) }
func (t *TCP) DestinationPort() uint16 { return binary.BigEndian.Uint16(t.raw()[2:4]) }
func (t *TCP) SetSourcePort(v uint16)      { binary.BigEndian.PutUint16(t.raw()[0:2], v) }
func (t *TCP) SetDestinationPort(v uint16) { binary.BigEndian.PutUint16(t.raw()[2:4], v) }
func (t *TCP) SequenceNumber() uint32     { return binary.BigEndian.Uint32(t.raw()[4:8]) }
func (t *TCP) AckNumber() uint32          { return binary.BigEndian.Uint32(t.raw()[8:12]) }
func (t *TCP) Flags() uint8               { return t.raw()[13] }
func (t *TCP) SetFlags(v uint8)           { t.raw()[13] = v }
func (t *TCP) WindowSize() uint16         { return binary.BigEndian.Uint16(t.raw()[14:16]) }
func (t *TCP) Checksum() uint16           { return binary.BigEndian.Uint16(t.raw()[16:18]) }

// segment returns the TCP header plus its payload, i.e. everything from
// this header's offset to the end of live data.
func (t *TCP) segment() []byte {
	full := t.buf.DataAddress(t.offset)
	return full[:int(t.buf.DataLen())-t.offset]
}

// fixChecksum recomputes the TCP checksum over the pseudo-header plus the
// full segment.
func (t *TCP) fixChecksum() {
	seg := t.segment()
	seg[16], seg[17] = 0, 0
	pseudo := t.ip.PseudoHeader(uint16(len(seg)), protocolTCP)
	sum := checksumWithPseudoHeader(pseudo, seg)
	binary.BigEndian.PutUint16(seg[16:18], sum)
}

// Cascade recomputes the TCP checksum, then recurses to the enclosing IP
// header.
func (t *TCP) Cascade() error {
	t.fixChecksum()
	if t.parent != nil {
		return t.parent.Cascade()
	}
	return nil
}
