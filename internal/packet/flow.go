package packet

import "net"

// Flow is the 5-tuple key NF pipelines group packets by: source/destination
// address, source/destination port, and protocol number. It exists purely
// as a comparable lookup key for per-flow state (ACL decisions, NAT
// mappings, load-balancer stickiness) — it is not itself a header view.
type Flow struct {
	SrcIP    string
	DstIP    string
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// Reverse returns the flow key for the opposite direction of the same
// connection, used to recognize a reply packet against a cache keyed on
// the request's direction.
func (f Flow) Reverse() Flow {
	return Flow{SrcIP: f.DstIP, DstIP: f.SrcIP, SrcPort: f.DstPort, DstPort: f.SrcPort, Protocol: f.Protocol}
}

// TCPFlow builds a Flow key from an IPv4 TCP segment.
func TCPFlow(ip *IPv4, tcp *TCP) Flow {
	return Flow{
		SrcIP:    ipKey(ip.Source()),
		DstIP:    ipKey(ip.Destination()),
		SrcPort:  tcp.SourcePort(),
		DstPort:  tcp.DestinationPort(),
		Protocol: protocolTCP,
	}
}

func ipKey(ip net.IP) string {
	if v4 := ip.To4(); v4 != nil {
		return v4.String()
	}
	return ip.String()
}
