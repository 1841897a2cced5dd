//go:build linux

package linux

import (
	"net"
	"sync"

	"github.com/vishvananda/netlink"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// Interface is the raw state of one kernel link
type Interface struct {
	nl   Netlinker
	link netlink.Link

	mu sync.Mutex
	// addrs is the netlink list behind the last Addresses call; masks are
	// answered from it so they match the addresses handed out.
	addrs []netlink.Addr
}

var (
	_ platform.InterfaceHandle = (*Interface)(nil)
	_ platform.GatewaySource   = (*Interface)(nil)
)

func (i *Interface) Name() string {
	return i.link.Attrs().Name
}

// Index returns the kernel ifindex
func (i *Interface) Index() int {
	return i.link.Attrs().Index
}

// Addresses returns the configured unicast addresses followed by the
// multicast groups joined on the link.
func (i *Interface) Addresses() ([]net.IP, error) {
	addrs, err := i.nl.AddrList(i.link, netlink.FAMILY_ALL)
	if err != nil {
		return nil, errors.NewNativeQueryError("list addresses of "+i.Name(), err)
	}

	ips := make([]net.IP, 0, len(addrs))
	kept := make([]netlink.Addr, 0, len(addrs))
	for _, a := range addrs {
		if a.IPNet == nil || a.IP == nil {
			continue
		}
		ips = append(ips, a.IP)
		kept = append(kept, a)
	}

	groups, err := i.nl.MulticastAddrs(i.link)
	if err != nil {
		return nil, errors.NewNativeQueryError("list multicast groups of "+i.Name(), err)
	}

	i.mu.Lock()
	i.addrs = kept
	i.mu.Unlock()
	return append(ips, groups...), nil
}

// IPv4NetMask returns the mask of the IPv4 address ip on this link, or nil
// when the link does not carry ip. After Addresses has been called the mask
// comes from the same address list; before that the kernel is queried.
func (i *Interface) IPv4NetMask(ip net.IP) (net.IPMask, error) {
	i.mu.Lock()
	addrs := i.addrs
	i.mu.Unlock()

	if addrs == nil {
		var err error
		addrs, err = i.nl.AddrList(i.link, netlink.FAMILY_V4)
		if err != nil {
			return nil, errors.NewNativeQueryError("list ipv4 addresses of "+i.Name(), err)
		}
	}

	for _, a := range addrs {
		if a.IPNet != nil && a.IP.Equal(ip) {
			return a.Mask, nil
		}
	}
	return nil, nil
}

// Gateways returns the next hops of every route leaving through this link
func (i *Interface) Gateways() ([]net.IP, error) {
	routes, err := i.nl.RouteList(i.link, netlink.FAMILY_ALL)
	if err != nil {
		return nil, errors.NewNativeQueryError("list routes of "+i.Name(), err)
	}

	var gateways []net.IP
	for _, r := range routes {
		if r.Gw == nil || containsIP(gateways, r.Gw) {
			continue
		}
		gateways = append(gateways, r.Gw)
	}
	return gateways, nil
}

func containsIP(ips []net.IP, ip net.IP) bool {
	for _, existing := range ips {
		if existing.Equal(ip) {
			return true
		}
	}
	return false
}
