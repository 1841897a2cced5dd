//go:build linux

// Package linux implements the platform capabilities on top of rtnetlink and
// procfs.
package linux

import (
	"fmt"
	"net"

	"github.com/google/gopacket/routing"
	"github.com/prometheus/procfs"
	"github.com/vishvananda/netlink"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/resolvconf"
)

// Platform is the Linux implementation of platform.Platform
type Platform struct {
	nl         Netlinker
	fs         procfs.FS
	procRoot   string
	resolvConf string
	newRouter  func() (routing.Router, error)
	logger     *logger.Logger
}

var _ platform.Platform = (*Platform)(nil)

// Option configures a Platform
type Option func(*Platform)

// WithNetlinker replaces the kernel netlink client
func WithNetlinker(nl Netlinker) Option {
	return func(p *Platform) { p.nl = nl }
}

// WithResolvConfPath overrides /etc/resolv.conf
func WithResolvConfPath(path string) Option {
	return func(p *Platform) { p.resolvConf = path }
}

// WithRouter replaces the gopacket route lookup used by DefaultInterface
func WithRouter(newRouter func() (routing.Router, error)) Option {
	return func(p *Platform) { p.newRouter = newRouter }
}

// WithLogger sets the component logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Platform) { p.logger = l }
}

// New opens procfs at procRoot (procfs.DefaultMountPoint when empty)
func New(procRoot string, opts ...Option) (*Platform, error) {
	if procRoot == "" {
		procRoot = procfs.DefaultMountPoint
	}

	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, errors.NewNativeQueryError("open procfs at "+procRoot, err)
	}

	p := &Platform{
		nl:         RealNetlinker{},
		fs:         fs,
		procRoot:   procRoot,
		resolvConf: resolvconf.DefaultPath,
		newRouter:  routing.New,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.NewComponentLogger("Platform")
	}
	return p, nil
}

func (p *Platform) Name() string {
	return "linux"
}

// ProcRoot returns the procfs mount point counters are read from
func (p *Platform) ProcRoot() string {
	return p.procRoot
}

func (p *Platform) ResolvConfPath() string {
	return p.resolvConf
}

// Interfaces enumerates every link known to the kernel
func (p *Platform) Interfaces() ([]platform.InterfaceHandle, error) {
	links, err := p.nl.LinkList()
	if err != nil {
		return nil, errors.NewNativeQueryError("list links", err)
	}

	handles := make([]platform.InterfaceHandle, 0, len(links))
	for _, link := range links {
		handles = append(handles, &Interface{nl: p.nl, link: link})
	}
	return handles, nil
}

func (p *Platform) InterfaceByName(name string) (platform.InterfaceHandle, error) {
	link, err := p.nl.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", platform.ErrInterfaceNotFound, name)
		}
		return nil, errors.NewNativeQueryError("look up link "+name, err)
	}
	return &Interface{nl: p.nl, link: link}, nil
}

// DefaultInterface asks the gopacket router for the egress link of a
// public destination and falls back to scanning the main table for a
// default route.
func (p *Platform) DefaultInterface() (string, error) {
	if p.newRouter != nil {
		router, err := p.newRouter()
		if err == nil {
			iface, _, _, err := router.Route(net.IPv4(192, 0, 2, 1))
			if err == nil && iface != nil {
				return iface.Name, nil
			}
			p.logger.Debug("Route lookup failed: %v", err)
		} else {
			p.logger.Debug("Router unavailable: %v", err)
		}
	}

	routes, err := p.nl.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return "", errors.NewNativeQueryError("list routes", err)
	}

	for _, r := range routes {
		if !isDefaultRoute(r) {
			continue
		}
		links, err := p.nl.LinkList()
		if err != nil {
			return "", errors.NewNativeQueryError("list links", err)
		}
		for _, link := range links {
			if link.Attrs().Index == r.LinkIndex {
				return link.Attrs().Name, nil
			}
		}
	}
	return "", errors.New("no default route")
}

func isDefaultRoute(r netlink.Route) bool {
	if r.Dst == nil {
		return true
	}
	ones, _ := r.Dst.Mask.Size()
	return ones == 0
}
