// Package ifprops builds the IP configuration view of one network interface.
//
// A Provider wraps an interface handle from the platform layer. Unicast and
// multicast address collections are computed on first access and cached for
// the Provider's lifetime; DNS settings are read from the resolver
// configuration once, when the Provider is created.
//
// State per address collection:
//
//	Uninitialized --first successful read--> Computed
//
// The two collections transition independently and never go back. Both are
// partitions of one address list, read from the handle once per Provider. A failed
// read (enumeration or mask lookup fault) leaves the collection Uninitialized
// and returns the platform error unchanged.
//
// Provider is safe for concurrent use.
package ifprops

import (
	"net"

	"github.com/mosiko1234/heimdal/netinfo/internal/addrclass"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/netmask"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/resolvconf"
)

// Properties is the OS-neutral view of an interface's IP configuration
type Properties interface {
	UnicastAddresses() (*UnicastAddressCollection, error)
	MulticastAddresses() (*MulticastAddressCollection, error)
	GatewayAddresses() ([]net.IP, error)
	DnsSuffix() string
	DnsAddresses() []net.IP
	DnsSearchList() []string
	IsDnsEnabled() bool
}

// Provider implements Properties for one interface handle
type Provider struct {
	handle platform.InterfaceHandle
	dns    resolvconf.Config
	logger *logger.Logger

	raw       lazyValue[[]net.IP]
	unicast   lazyValue[*UnicastAddressCollection]
	multicast lazyValue[*MulticastAddressCollection]
	gateways  lazyValue[[]net.IP]
}

var _ Properties = (*Provider)(nil)

type options struct {
	resolvConfPath string
	resolvConf     *resolvconf.Config
	logger         *logger.Logger
}

// Option configures a Provider
type Option func(*options)

// WithResolvConfPath reads DNS settings from path instead of /etc/resolv.conf
func WithResolvConfPath(path string) Option {
	return func(o *options) {
		o.resolvConfPath = path
	}
}

// WithResolvConf uses an already parsed resolver configuration
func WithResolvConf(cfg resolvconf.Config) Option {
	return func(o *options) {
		o.resolvConf = &cfg
	}
}

// WithLogger sets the logger used for cache fills
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New creates a Provider for handle. The resolver configuration is parsed
// here; parse problems produce empty DNS settings, never an error.
func New(handle platform.InterfaceHandle, opts ...Option) *Provider {
	o := options{resolvConfPath: resolvconf.DefaultPath}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNopLogger("IfProps")
	}

	var dns resolvconf.Config
	if o.resolvConf != nil {
		dns = *o.resolvConf
	} else {
		dns = resolvconf.ParseFile(o.resolvConfPath)
	}

	return &Provider{
		handle: handle,
		dns:    dns,
		logger: o.logger.WithField("iface", handle.Name()),
	}
}

// Name returns the name of the underlying interface
func (p *Provider) Name() string {
	return p.handle.Name()
}

// UnicastAddresses returns the interface's non-multicast addresses paired
// with their masks. The same collection is returned on every call once it
// has been computed.
func (p *Provider) UnicastAddresses() (*UnicastAddressCollection, error) {
	return p.unicast.get(p.buildUnicast)
}

// MulticastAddresses returns the multicast groups of the interface. The same
// collection is returned on every call once it has been computed.
func (p *Provider) MulticastAddresses() (*MulticastAddressCollection, error) {
	return p.multicast.get(p.buildMulticast)
}

// GatewayAddresses returns the next-hop gateways routed through the
// interface. Handles without a gateway source report none.
func (p *Provider) GatewayAddresses() ([]net.IP, error) {
	gateways, err := p.gateways.get(func() ([]net.IP, error) {
		src, ok := p.handle.(platform.GatewaySource)
		if !ok {
			return []net.IP{}, nil
		}
		gws, err := src.Gateways()
		if err != nil {
			return nil, err
		}
		return copyIPs(gws), nil
	})
	if err != nil {
		return nil, err
	}
	return copyIPs(gateways), nil
}

// DnsSuffix returns the DNS search suffix, or "" when none is configured
func (p *Provider) DnsSuffix() string {
	return p.dns.Suffix
}

// DnsAddresses returns the configured nameservers in file order
func (p *Provider) DnsAddresses() []net.IP {
	return copyIPs(p.dns.Nameservers)
}

// DnsSearchList returns the full search list of the resolver configuration
func (p *Provider) DnsSearchList() []string {
	return append([]string(nil), p.dns.Search...)
}

// IsDnsEnabled reports whether any nameserver is configured
func (p *Provider) IsDnsEnabled() bool {
	return len(p.dns.Nameservers) > 0
}

// rawAddresses reads the handle's address list once; both collections
// partition the same list.
func (p *Provider) rawAddresses() ([]net.IP, error) {
	return p.raw.get(func() ([]net.IP, error) {
		addrs, err := p.handle.Addresses()
		if err != nil {
			return nil, err
		}
		return copyIPs(addrs), nil
	})
}

func (p *Provider) buildUnicast() (*UnicastAddressCollection, error) {
	addrs, err := p.rawAddresses()
	if err != nil {
		return nil, err
	}

	collection := &UnicastAddressCollection{}
	for _, addr := range addrs {
		if addrclass.IsMulticast(addr) {
			continue
		}

		mask, err := netmask.ResolveIPv4(addr, p.handle)
		if err != nil {
			return nil, err
		}

		collection.add(UnicastAddressInfo{Address: addr, NetMask: mask}.clone())
	}

	p.logger.Debug("Cached %d unicast addresses", collection.Len())
	return collection, nil
}

func (p *Provider) buildMulticast() (*MulticastAddressCollection, error) {
	addrs, err := p.rawAddresses()
	if err != nil {
		return nil, err
	}

	collection := &MulticastAddressCollection{}
	for _, addr := range addrs {
		if !addrclass.IsMulticast(addr) {
			continue
		}
		collection.add(MulticastAddressInfo{Address: addr})
	}

	p.logger.Debug("Cached %d multicast addresses", collection.Len())
	return collection, nil
}

func copyIP(ip net.IP) net.IP {
	return append(net.IP(nil), ip...)
}

func copyIPs(ips []net.IP) []net.IP {
	out := make([]net.IP, len(ips))
	for i, ip := range ips {
		out[i] = copyIP(ip)
	}
	return out
}
