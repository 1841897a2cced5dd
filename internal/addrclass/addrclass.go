// Package addrclass classifies IP addresses by delivery scope.
package addrclass

import "net"

// Family identifies the address family of an IP.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// FamilyOf reports whether ip is IPv4 (including the IPv4-mapped IPv6 form)
// or IPv6. Anything that is not 4 or 16 bytes long is FamilyUnknown.
func FamilyOf(ip net.IP) Family {
	switch {
	case len(ip) == net.IPv4len:
		return FamilyIPv4
	case len(ip) == net.IPv6len && ip.To4() != nil:
		return FamilyIPv4
	case len(ip) == net.IPv6len:
		return FamilyIPv6
	default:
		return FamilyUnknown
	}
}

// IsMulticast reports whether ip is a multicast group address: 224.0.0.0/4
// for IPv4, ff00::/8 for IPv6.
func IsMulticast(ip net.IP) bool {
	switch FamilyOf(ip) {
	case FamilyIPv4:
		return ip.To4()[0]&0xf0 == 0xe0
	case FamilyIPv6:
		return ip[0] == 0xff
	default:
		return false
	}
}
