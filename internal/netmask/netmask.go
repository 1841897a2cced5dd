// Package netmask resolves the subnet mask of an interface's IPv4 address.
package netmask

import (
	"net"

	"github.com/mosiko1234/heimdal/netinfo/internal/addrclass"
)

// MaskLookup is the owning interface's address-to-mask capability. It returns
// nil and no error when the address has no mask entry.
type MaskLookup interface {
	IPv4NetMask(ip net.IP) (net.IPMask, error)
}

// MaskLookupFunc adapts a function to MaskLookup.
type MaskLookupFunc func(ip net.IP) (net.IPMask, error)

func (f MaskLookupFunc) IPv4NetMask(ip net.IP) (net.IPMask, error) {
	return f(ip)
}

// Wildcard returns the all-ones mask reported when the OS has no mask for an
// address. Consumers on other platforms always see this field populated.
func Wildcard() net.IPMask {
	return net.CIDRMask(32, 32)
}

// ResolveIPv4 returns the mask for ip from lookup, or Wildcard when the
// lookup has no entry. Lookup faults are returned unchanged. IPv6 addresses
// have no mask in this model and yield nil without consulting lookup.
func ResolveIPv4(ip net.IP, lookup MaskLookup) (net.IPMask, error) {
	if addrclass.FamilyOf(ip) != addrclass.FamilyIPv4 {
		return nil, nil
	}
	if lookup == nil {
		return Wildcard(), nil
	}

	mask, err := lookup.IPv4NetMask(ip)
	if err != nil {
		return nil, err
	}

	switch len(mask) {
	case net.IPv4len:
		return append(net.IPMask(nil), mask...), nil
	case net.IPv6len:
		// 16-byte form of an IPv4 mask: keep the trailing four bytes.
		return append(net.IPMask(nil), mask[12:]...), nil
	default:
		return Wildcard(), nil
	}
}
