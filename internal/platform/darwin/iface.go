package darwin

import (
	"net"

	gopsnet "github.com/shirou/gopsutil/net"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// groupLookup returns the multicast groups joined on the named interface
type groupLookup func(name string) ([]net.IP, error)

// Interface wraps one entry of the gopsutil interface table. Addresses come
// as CIDR strings, so the prefix doubles as the netmask.
type Interface struct {
	stat   gopsnet.InterfaceStat
	groups groupLookup
}

var _ platform.InterfaceHandle = (*Interface)(nil)

func newInterface(stat gopsnet.InterfaceStat, groups groupLookup) *Interface {
	return &Interface{stat: stat, groups: groups}
}

func (i *Interface) Name() string {
	return i.stat.Name
}

// Flags returns the interface flags as reported by gopsutil ("up", "multicast", ...)
func (i *Interface) Flags() []string {
	return append([]string(nil), i.stat.Flags...)
}

func (i *Interface) Addresses() ([]net.IP, error) {
	var ips []net.IP
	for _, a := range i.stat.Addrs {
		if ip, _ := parseAddr(a.Addr); ip != nil {
			ips = append(ips, ip)
		}
	}

	if i.groups != nil {
		groups, err := i.groups(i.stat.Name)
		if err != nil {
			return nil, errors.NewNativeQueryError("list multicast groups of "+i.stat.Name, err)
		}
		ips = append(ips, groups...)
	}
	return ips, nil
}

func (i *Interface) IPv4NetMask(ip net.IP) (net.IPMask, error) {
	for _, a := range i.stat.Addrs {
		addr, network := parseAddr(a.Addr)
		if network != nil && addr.Equal(ip) {
			return network.Mask, nil
		}
	}
	return nil, nil
}

// parseAddr accepts "192.168.1.10/24" as well as a bare address
func parseAddr(s string) (net.IP, *net.IPNet) {
	if ip, network, err := net.ParseCIDR(s); err == nil {
		return ip, network
	}
	return net.ParseIP(s), nil
}

// stdlibGroups reads joined groups through the routing socket
func stdlibGroups(name string) ([]net.IP, error) {
	ifi, err := net.InterfaceByName(name)
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
