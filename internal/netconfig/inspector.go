// Package netconfig inspects the host's network configuration.
//
// The Inspector enumerates interfaces through the platform layer and keeps
// one ifprops.Provider per interface, so each interface's address
// collections are computed once for the lifetime of the Inspector. The
// resolver configuration is parsed once and shared by every provider.
//
// Primary interface selection:
//  1. Ask the platform for the interface holding the default route
//  2. Otherwise search in order: eth0, wlan0, en0, enp*, wlp*
//  3. Otherwise take the first interface with a non-loopback IPv4 address
//
// Thread Safety:
// All access to the provider cache is protected by RWMutex for safe concurrent access.
package netconfig

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/ifprops"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/resolvconf"
)

// preferredNames lists interface names (or prefixes) in order of priority
var preferredNames = []string{"eth0", "wlan0", "en0", "enp", "wlp"}

// Inspector builds interface reports on top of a platform
type Inspector struct {
	platform  platform.Platform
	dns       resolvconf.Config
	providers map[string]*ifprops.Provider
	logger    *logger.Logger
	mu        sync.RWMutex
}

// InspectorOption configures an Inspector
type InspectorOption func(*Inspector)

// WithLogger sets the component logger
func WithLogger(l *logger.Logger) InspectorOption {
	return func(in *Inspector) { in.logger = l }
}

// NewInspector creates an Inspector and parses the platform's resolver
// configuration.
func NewInspector(p platform.Platform, opts ...InspectorOption) *Inspector {
	in := &Inspector{
		platform:  p,
		providers: make(map[string]*ifprops.Provider),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.logger == nil {
		in.logger = logger.NewComponentLogger("NetConfig")
	}

	in.dns = resolvconf.ParseFile(p.ResolvConfPath())
	in.logger.Debug("Resolver configuration from %s: %d nameservers, suffix=%q",
		p.ResolvConfPath(), len(in.dns.Nameservers), in.dns.Suffix)
	return in
}

// Platform returns the underlying platform
func (in *Inspector) Platform() platform.Platform {
	return in.platform
}

// Refresh drops every cached provider and re-reads the resolver configuration
func (in *Inspector) Refresh() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.providers = make(map[string]*ifprops.Provider)
	in.dns = resolvconf.ParseFile(in.platform.ResolvConfPath())
}

// DNS returns the shared resolver configuration
func (in *Inspector) DNS() resolvconf.Config {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.dns
}

// provider returns the cached provider for handle, creating it on first use
func (in *Inspector) provider(handle platform.InterfaceHandle) *ifprops.Provider {
	name := handle.Name()

	in.mu.RLock()
	p, ok := in.providers[name]
	in.mu.RUnlock()
	if ok {
		return p
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if p, ok := in.providers[name]; ok {
		return p
	}
	p = ifprops.New(handle,
		ifprops.WithResolvConf(in.dns),
		ifprops.WithLogger(in.logger),
	)
	in.providers[name] = p
	return p
}

// Provider returns the properties provider of the named interface
func (in *Inspector) Provider(name string) (*ifprops.Provider, error) {
	handle, err := in.platform.InterfaceByName(name)
	if err != nil {
		return nil, err
	}
	return in.provider(handle), nil
}

// Interfaces returns a report for every interface on the host
func (in *Inspector) Interfaces() ([]*InterfaceReport, error) {
	handles, err := in.platform.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list interfaces")
	}

	reports := make([]*InterfaceReport, 0, len(handles))
	for _, h := range handles {
		report, err := NewInterfaceReport(in.provider(h))
		if err != nil {
			return nil, errors.Wrap(err, "failed to inspect %s", h.Name())
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Interface returns the report of one interface
func (in *Inspector) Interface(name string) (*InterfaceReport, error) {
	p, err := in.Provider(name)
	if err != nil {
		return nil, err
	}
	return NewInterfaceReport(p)
}

// PrimaryInterface returns the report of the interface most likely to carry
// the host's traffic.
func (in *Inspector) PrimaryInterface() (*InterfaceReport, error) {
	if name, err := in.platform.DefaultInterface(); err == nil && name != "" {
		report, err := in.Interface(name)
		if err == nil {
			return report, nil
		}
		in.logger.Debug("Default route interface %s not inspectable: %v", name, err)
	} else if err != nil {
		in.logger.Debug("Default route unavailable: %v", err)
	}

	reports, err := in.Interfaces()
	if err != nil {
		return nil, err
	}

	// First pass: look for preferred interface names
	for _, preferred := range preferredNames {
		for _, r := range reports {
			if strings.HasPrefix(r.Name, preferred) && r.HasRoutableIPv4() {
				return r, nil
			}
		}
	}

	// Second pass: find any interface with a valid IP
	for _, r := range reports {
		if r.HasRoutableIPv4() {
			return r, nil
		}
	}

	return nil, fmt.Errorf("no suitable network interface found")
}
