package netconfig

import (
	"net"

	"github.com/mosiko1234/heimdal/netinfo/internal/addrclass"
	"github.com/mosiko1234/heimdal/netinfo/internal/ifprops"
)

// UnicastReport describes one unicast address and its mask
type UnicastReport struct {
	Address      string `json:"address" yaml:"address"`
	Family       string `json:"family" yaml:"family"`
	NetMask      string `json:"netmask,omitempty" yaml:"netmask,omitempty"`
	PrefixLength int    `json:"prefix_length" yaml:"prefix_length"`
	CIDR         string `json:"cidr,omitempty" yaml:"cidr,omitempty"`
}

// DNSReport mirrors the resolver settings exposed by a provider
type DNSReport struct {
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Suffix      string   `json:"suffix" yaml:"suffix"`
	Nameservers []string `json:"nameservers" yaml:"nameservers"`
	Search      []string `json:"search" yaml:"search"`
}

// InterfaceReport is a serialisable snapshot of one interface's IP
// configuration
type InterfaceReport struct {
	Name      string          `json:"name" yaml:"name"`
	Unicast   []UnicastReport `json:"unicast" yaml:"unicast"`
	Multicast []string        `json:"multicast" yaml:"multicast"`
	Gateways  []string        `json:"gateways" yaml:"gateways"`
	DNS       DNSReport       `json:"dns" yaml:"dns"`
}

// namedProperties is satisfied by *ifprops.Provider
type namedProperties interface {
	ifprops.Properties
	Name() string
}

// NewInterfaceReport reads every accessor of p once
func NewInterfaceReport(p namedProperties) (*InterfaceReport, error) {
	unicast, err := p.UnicastAddresses()
	if err != nil {
		return nil, err
	}
	multicast, err := p.MulticastAddresses()
	if err != nil {
		return nil, err
	}
	gateways, err := p.GatewayAddresses()
	if err != nil {
		return nil, err
	}

	report := &InterfaceReport{
		Name:      p.Name(),
		Unicast:   make([]UnicastReport, 0, unicast.Len()),
		Multicast: make([]string, 0, multicast.Len()),
		Gateways:  ipStrings(gateways),
		DNS: DNSReport{
			Enabled:     p.IsDnsEnabled(),
			Suffix:      p.DnsSuffix(),
			Nameservers: ipStrings(p.DnsAddresses()),
			Search:      p.DnsSearchList(),
		},
	}

	for _, u := range unicast.All() {
		report.Unicast = append(report.Unicast, newUnicastReport(u))
	}
	for _, m := range multicast.All() {
		report.Multicast = append(report.Multicast, m.Address.String())
	}
	return report, nil
}

func newUnicastReport(u ifprops.UnicastAddressInfo) UnicastReport {
	r := UnicastReport{
		Address:      u.Address.String(),
		Family:       addrclass.FamilyOf(u.Address).String(),
		PrefixLength: u.PrefixLength(),
	}
	if u.NetMask != nil {
		r.NetMask = net.IP(u.NetMask).String()
		r.CIDR = (&net.IPNet{IP: u.Address.Mask(u.NetMask), Mask: u.NetMask}).String()
	}
	return r
}

// HasRoutableIPv4 reports whether the interface carries a non-loopback,
// non-link-local IPv4 address
func (r *InterfaceReport) HasRoutableIPv4() bool {
	for _, u := range r.Unicast {
		ip := net.ParseIP(u.Address)
		if ip == nil || ip.To4() == nil {
			continue
		}
		if !ip.IsLoopback() && !ip.IsLinkLocalUnicast() {
			return true
		}
	}
	return false
}

func ipStrings(ips []net.IP) []string {
	out := make([]string, 0, len(ips))
	for _, ip := range ips {
		out = append(out, ip.String())
	}
	return out
}
