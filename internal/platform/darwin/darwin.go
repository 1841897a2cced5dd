//go:build darwin

// Package darwin implements the platform capabilities with sysctl(3) and the
// gopsutil interface table.
package darwin

import (
	"fmt"

	gopsnet "github.com/shirou/gopsutil/net"
	"golang.org/x/sys/unix"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/resolvconf"
)

// Mockable native entry points
var (
	sysctlRaw   = unix.SysctlRaw
	interfaces  = gopsnet.Interfaces
	connections = gopsnet.Connections
)

// Platform is the macOS implementation of platform.Platform
type Platform struct {
	resolvConf string
	logger     *logger.Logger
}

var _ platform.Platform = (*Platform)(nil)

// Option configures a Platform
type Option func(*Platform)

// WithResolvConfPath overrides /etc/resolv.conf
func WithResolvConfPath(path string) Option {
	return func(p *Platform) { p.resolvConf = path }
}

// WithLogger sets the component logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Platform) { p.logger = l }
}

func New(opts ...Option) (*Platform, error) {
	p := &Platform{resolvConf: resolvconf.DefaultPath}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.NewComponentLogger("Platform")
	}
	return p, nil
}

func (p *Platform) Name() string {
	return "darwin"
}

func (p *Platform) ResolvConfPath() string {
	return p.resolvConf
}

func (p *Platform) Interfaces() ([]platform.InterfaceHandle, error) {
	stats, err := interfaces()
	if err != nil {
		return nil, errors.NewNativeQueryError("list interfaces", err)
	}

	handles := make([]platform.InterfaceHandle, 0, len(stats))
	for _, s := range stats {
		handles = append(handles, newInterface(s, stdlibGroups))
	}
	return handles, nil
}

func (p *Platform) InterfaceByName(name string) (platform.InterfaceHandle, error) {
	stats, err := interfaces()
	if err != nil {
		return nil, errors.NewNativeQueryError("list interfaces", err)
	}

	for _, s := range stats {
		if s.Name == name {
			return newInterface(s, stdlibGroups), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", platform.ErrInterfaceNotFound, name)
}

// DefaultInterface is not derived from the routing table on macOS; callers
// fall back to their own interface preference.
func (p *Platform) DefaultInterface() (string, error) {
	return "", fmt.Errorf("default route lookup: %w", platform.ErrUnsupported)
}

// UDPGlobalStatistics decodes net.inet.udp.stats. Listeners is the pcb count
// from the net.inet.udp.pcblist header.
func (p *Platform) UDPGlobalStatistics() (platform.UDPGlobalStatistics, error) {
	buf, err := sysctlRaw("net.inet.udp.stats")
	if err != nil {
		return platform.UDPGlobalStatistics{}, errors.NewNativeQueryError("sysctl net.inet.udp.stats", err)
	}
	stats, err := decodeUDPStat(buf)
	if err != nil {
		return platform.UDPGlobalStatistics{}, err
	}

	list, err := sysctlRaw("net.inet.udp.pcblist")
	if err != nil {
		return platform.UDPGlobalStatistics{}, errors.NewNativeQueryError("sysctl net.inet.udp.pcblist", err)
	}
	if stats.Listeners, err = decodePCBCount(list); err != nil {
		return platform.UDPGlobalStatistics{}, err
	}
	return stats, nil
}

// TCPGlobalStatistics decodes net.inet.tcp.stats. Session and listener counts
// come from the gopsutil connection table.
func (p *Platform) TCPGlobalStatistics() (platform.TCPGlobalStatistics, error) {
	buf, err := sysctlRaw("net.inet.tcp.stats")
	if err != nil {
		return platform.TCPGlobalStatistics{}, errors.NewNativeQueryError("sysctl net.inet.tcp.stats", err)
	}
	stats, err := decodeTCPStat(buf)
	if err != nil {
		return platform.TCPGlobalStatistics{}, err
	}

	conns, err := connections("tcp")
	if err != nil {
		return platform.TCPGlobalStatistics{}, errors.NewNativeQueryError("list tcp connections", err)
	}
	stats.CurrentEstablished, stats.Listeners = countStates(conns)
	return stats, nil
}

func (p *Platform) ICMPv4GlobalStatistics() (platform.ICMPv4GlobalStatistics, error) {
	buf, err := sysctlRaw("net.inet.icmp.stats")
	if err != nil {
		return platform.ICMPv4GlobalStatistics{}, errors.NewNativeQueryError("sysctl net.inet.icmp.stats", err)
	}
	return decodeICMPStat(buf)
}
