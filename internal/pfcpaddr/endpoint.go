// Package pfcpaddr implements the IP endpoint value type used as a map
// key throughout the PFCP runtime (local node bind address, remote node
// address).
package pfcpaddr

import (
	"fmt"
	"net"
)

// Family identifies the address family of an Endpoint.
type Family uint8

const (
	// FamilyUnknown is the zero value; an Endpoint in this state is invalid.
	FamilyUnknown Family = iota
	FamilyIPv4
	FamilyIPv6
)

// Endpoint is a comparable IP address plus an optional mask width, usable
// directly as a map key. Two endpoints are equal when family, address,
// and mask width all match.
type Endpoint struct {
	Family Family
	addr   [16]byte
	Bits   int // 0 means "no mask / host address"
}

// NewEndpoint builds an Endpoint from a net.IP. Port is not part of the
// endpoint identity — PFCP peers are identified by IP only.
func NewEndpoint(ip net.IP) (Endpoint, error) {
	if ip == nil {
		return Endpoint{}, fmt.Errorf("pfcpaddr: nil IP")
	}
	var ep Endpoint
	if v4 := ip.To4(); v4 != nil {
		ep.Family = FamilyIPv4
		copy(ep.addr[:4], v4)
		return ep, nil
	}
	v6 := ip.To16()
	if v6 == nil {
		return Endpoint{}, fmt.Errorf("pfcpaddr: invalid IP %v", ip)
	}
	ep.Family = FamilyIPv6
	copy(ep.addr[:], v6)
	return ep, nil
}

// NewEndpointWithMask builds an Endpoint carrying a mask width (TEID
// range / slice addressing contexts where a prefix rather than a host
// address is meaningful).
func NewEndpointWithMask(ip net.IP, bits int) (Endpoint, error) {
	ep, err := NewEndpoint(ip)
	if err != nil {
		return Endpoint{}, err
	}
	ep.Bits = bits
	return ep, nil
}

// IP returns the net.IP representation of the endpoint.
func (e Endpoint) IP() net.IP {
	switch e.Family {
	case FamilyIPv4:
		ip := make(net.IP, 4)
		copy(ip, e.addr[:4])
		return ip
	case FamilyIPv6:
		ip := make(net.IP, 16)
		copy(ip, e.addr[:])
		return ip
	default:
		return nil
	}
}

// Valid reports whether the endpoint was populated via NewEndpoint(WithMask).
func (e Endpoint) Valid() bool {
	return e.Family != FamilyUnknown
}

// String renders the endpoint for logging.
func (e Endpoint) String() string {
	if !e.Valid() {
		return "<unset>"
	}
	if e.Bits > 0 {
		return fmt.Sprintf("%s/%d", e.IP(), e.Bits)
	}
	return e.IP().String()
}
