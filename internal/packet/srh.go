package packet

import (
	"encoding/binary"
	"net"
)

const (
	srhFixedLen        = 8
	srhRoutingType      = 4
	nextHeaderRouting   = 43
)

// SRH is a view over an IPv6 Segment Routing Header (RFC 8754), a single
// extension header carrying a segment list. Its enclosing IPv6 header is
// always its parent.
type SRH struct {
	view
	ipv6 *IPv6
}

// ParseSRH reads a Segment Routing Header immediately following ipv6,
// requiring ipv6's NextHeader to already name Routing (43).
func ParseSRH(ipv6 *IPv6) (*SRH, error) {
	if ipv6.NextHeader() != nextHeaderRouting {
		return nil, ErrParse
	}
	buf := ipv6.Buf()
	off := ipv6.PayloadOffset()
	if uint32(off)+srhFixedLen > buf.DataLen() {
		return nil, ErrBadOffset
	}
	s := &SRH{view: view{buf: buf, parent: ipv6, offset: off}, ipv6: ipv6}
	raw := s.fixed()
	if raw[2] != srhRoutingType {
		return nil, ErrParse
	}
	total := s.HeaderLen()
	if uint32(off)+uint32(total) > buf.DataLen() {
		return nil, ErrBadOffset
	}
	return s, nil
}

// PushSRH allocates a Segment Routing Header carrying segments, inserted
// between ipv6 and whatever ipv6's NextHeader currently names. The new
// header's own NextHeader takes over that value and ipv6's NextHeader is
// set to Routing.
func PushSRH(ipv6 *IPv6, segments []net.IP) (*SRH, error) {
	innerProto := ipv6.NextHeader()
	n := len(segments)
	total := srhFixedLen + n*16
	buf := ipv6.Buf()
	off := ipv6.PayloadOffset()
	if err := buf.Alloc(off, total); err != nil {
		return nil, err
	}
	s := &SRH{view: view{buf: buf, parent: ipv6, offset: off}, ipv6: ipv6}
	raw := s.fixed()
	raw[0] = innerProto
	raw[1] = uint8(n * 2) // Hdr Ext Len in 8-octet units, excluding first 8
	raw[2] = srhRoutingType
	raw[3] = uint8(n - 1) // segments left: start at the first segment
	raw[4] = uint8(n - 1)
	raw[5] = 0
	binary.BigEndian.PutUint16(raw[6:8], 0)
	list := s.segmentBytes(n)
	for i, seg := range segments {
		// Segment list is encoded in reverse traversal order: entry 0 is
		// the final destination.
		copy(list[i*16:i*16+16], seg.To16())
	}
	ipv6.SetNextHeader(nextHeaderRouting)
	return s, nil
}

func (s *SRH) segmentCount() int {
	return int(s.fixed()[1]) / 2
}

func (s *SRH) HeaderLen() int     { return srhFixedLen + s.segmentCount()*16 }
func (s *SRH) PayloadOffset() int { return s.offset + s.HeaderLen() }
func (s *SRH) fixed() []byte      { return s.bytesAt(srhFixedLen) }

func (s *SRH) segmentBytes(n int) []byte {
	full := s.buf.DataAddress(s.offset)
	end := srhFixedLen + n*16
	if len(full) < end {
		return nil
	}
	return full[srhFixedLen:end]
}

func (s *SRH) NextHeader() uint8 { return s.fixed()[0] }

// SegmentsLeft is the number of remaining segments before the final one.
func (s *SRH) SegmentsLeft() uint8 { return s.fixed()[3] }

// SetSegmentsLeft overwrites the segments-left field, e.g. when this node
// decrements it before forwarding to the next segment.
func (s *SRH) SetSegmentsLeft(v uint8) { s.fixed()[3] = v }

// Segment returns the i'th segment in the list (0 is the final
// destination, matching on-wire order).
func (s *SRH) Segment(i int) net.IP {
	n := s.segmentCount()
	b := s.segmentBytes(n)
	if b == nil || i < 0 || i >= n {
		return nil
	}
	return net.IP(append([]byte(nil), b[i*16:i*16+16]...))
}

// ActiveSegment returns the segment currently addressed by SegmentsLeft.
func (s *SRH) ActiveSegment() net.IP {
	return s.Segment(int(s.SegmentsLeft()))
}

// ApplyActiveSegment copies the active segment into the enclosing IPv6
// header's destination address. Per this header's forwarding semantics,
// this must run before any L4 Cascade, so that the pseudo-header TCP/UDP
// checksums see reflects the packet's true final destination rather than
// a waypoint.
func (s *SRH) ApplyActiveSegment() {
	s.ipv6.SetDestination(s.ActiveSegment())
}

// PseudoHeader returns the enclosing IPv6 header's pseudo-header, so an
// L4 header pushed after the SRH checksums against the IPv6 addresses as
// they currently stand.
func (s *SRH) PseudoHeader(payloadLen uint16, protocol uint8) []byte {
	return s.ipv6.PseudoHeader(payloadLen, protocol)
}

// Remove undoes a prior Push and restores ipv6's NextHeader to this
// header's own NextHeader value.
func (s *SRH) Remove() error {
	inner := s.NextHeader()
	if err := s.buf.Dealloc(s.offset, s.HeaderLen()); err != nil {
		return err
	}
	s.ipv6.SetNextHeader(inner)
	return nil
}

// Cascade has nothing of its own to fix up; it recurses to the enclosing
// IPv6 header.
func (s *SRH) Cascade() error {
	if s.parent != nil {
		return s.parent.Cascade()
	}
	return nil
}
