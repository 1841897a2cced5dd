//go:build linux

package linux

import (
	"net"

	"github.com/vishvananda/netlink"
)

// Netlinker abstracts the netlink reads the platform performs so tests can
// substitute canned links, addresses and routes.
type Netlinker interface {
	LinkList() ([]netlink.Link, error)
	LinkByName(name string) (netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	RouteList(link netlink.Link, family int) ([]netlink.Route, error)

	// MulticastAddrs returns the groups joined on link
	MulticastAddrs(link netlink.Link) ([]net.IP, error)
}

// RealNetlinker talks to the running kernel.
type RealNetlinker struct{}

// LinkList retrieves all links.
func (RealNetlinker) LinkList() ([]netlink.Link, error) {
	return netlink.LinkList()
}

// LinkByName retrieves a link by name.
func (RealNetlinker) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

// AddrList retrieves a list of addresses for a link.
func (RealNetlinker) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family)
}

// RouteList retrieves a list of routes.
func (RealNetlinker) RouteList(link netlink.Link, family int) ([]netlink.Route, error) {
	return netlink.RouteList(link, family)
}

// MulticastAddrs reads the joined groups from /proc/net/igmp and igmp6.
func (RealNetlinker) MulticastAddrs(link netlink.Link) ([]net.IP, error) {
	ifi, err := net.InterfaceByIndex(link.Attrs().Index)
	if err != nil {
		return nil, err
	}
	addrs, err := ifi.MulticastAddrs()
	if err != nil {
		return nil, err
	}

	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		if ipa, ok := a.(*net.IPAddr); ok {
			ips = append(ips, ipa.IP)
		}
	}
	return ips, nil
}
