// Package mocks provides in-memory platform implementations for tests.
package mocks

import (
	"fmt"
	"net"
	"sync"

	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// MockError is a plain error used by mocks when no specific error is configured
type MockError struct {
	Message string
}

func (e *MockError) Error() string {
	return e.Message
}

// MockInterface is an in-memory InterfaceHandle
type MockInterface struct {
	mu           sync.RWMutex
	name         string
	addrs        []net.IP
	masks        map[string]net.IPMask
	gateways     []net.IP
	addrErr      error
	maskErr      error
	gatewayErr   error
	addressCalls int
	maskCalls    int
	gatewayCalls int
}

var (
	_ platform.InterfaceHandle = (*MockInterface)(nil)
	_ platform.GatewaySource   = (*MockInterface)(nil)
)

// NewMockInterface creates a mock interface holding addrs in order. Each
// address may carry a prefix ("10.0.0.2/24"), which becomes its mask entry.
func NewMockInterface(name string, addrs ...string) *MockInterface {
	m := &MockInterface{
		name:  name,
		masks: make(map[string]net.IPMask),
	}

	for _, a := range addrs {
		if ip, ipNet, err := net.ParseCIDR(a); err == nil {
			m.addrs = append(m.addrs, ip)
			if ip.To4() != nil {
				m.masks[ip.String()] = ipNet.Mask
			}
			continue
		}

		ip := net.ParseIP(a)
		if ip == nil {
			panic(fmt.Sprintf("mocks: invalid address %q", a))
		}
		m.addrs = append(m.addrs, ip)
	}

	return m
}

// Name returns the interface name
func (m *MockInterface) Name() string {
	return m.name
}

// Addresses returns a copy of the configured addresses
func (m *MockInterface) Addresses() ([]net.IP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addressCalls++
	if m.addrErr != nil {
		return nil, m.addrErr
	}

	result := make([]net.IP, len(m.addrs))
	for i, ip := range m.addrs {
		result[i] = append(net.IP(nil), ip...)
	}
	return result, nil
}

// IPv4NetMask returns the configured mask for ip, or nil
func (m *MockInterface) IPv4NetMask(ip net.IP) (net.IPMask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.maskCalls++
	if m.maskErr != nil {
		return nil, m.maskErr
	}
	return m.masks[ip.String()], nil
}

// Gateways returns the configured gateways
func (m *MockInterface) Gateways() ([]net.IP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gatewayCalls++
	if m.gatewayErr != nil {
		return nil, m.gatewayErr
	}
	return append([]net.IP(nil), m.gateways...), nil
}

// SetGateways configures the gateways reported by Gateways
func (m *MockInterface) SetGateways(gateways ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gateways = nil
	for _, g := range gateways {
		m.gateways = append(m.gateways, net.ParseIP(g))
	}
}

// SetAddressError configures the mock to fail Addresses
func (m *MockInterface) SetAddressError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addrErr = err
}

// SetMaskError configures the mock to fail IPv4NetMask
func (m *MockInterface) SetMaskError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maskErr = err
}

// SetGatewayError configures the mock to fail Gateways
func (m *MockInterface) SetGatewayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gatewayErr = err
}

// AddressCalls returns how many times Addresses was called
func (m *MockInterface) AddressCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.addressCalls
}

// MaskCalls returns how many times IPv4NetMask was called
func (m *MockInterface) MaskCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maskCalls
}

// GatewayCalls returns how many times Gateways was called
func (m *MockInterface) GatewayCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gatewayCalls
}

// MockPlatform is an in-memory Platform
type MockPlatform struct {
	mu             sync.RWMutex
	interfaces     []*MockInterface
	resolvConfPath string
	defaultIface   string

	udp  platform.UDPGlobalStatistics
	tcp  platform.TCPGlobalStatistics
	icmp platform.ICMPv4GlobalStatistics

	enumErr  error
	udpErr   error
	tcpErr   error
	icmpErr  error
	routeErr error

	udpCalls  int
	tcpCalls  int
	icmpCalls int
}

var _ platform.Platform = (*MockPlatform)(nil)

// NewMockPlatform creates a mock platform with the given interfaces
func NewMockPlatform(ifaces ...*MockInterface) *MockPlatform {
	return &MockPlatform{
		interfaces:     ifaces,
		resolvConfPath: "/nonexistent/resolv.conf",
	}
}

// Name returns "mock"
func (m *MockPlatform) Name() string {
	return "mock"
}

// Interfaces returns every configured interface
func (m *MockPlatform) Interfaces() ([]platform.InterfaceHandle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.enumErr != nil {
		return nil, m.enumErr
	}

	result := make([]platform.InterfaceHandle, len(m.interfaces))
	for i, iface := range m.interfaces {
		result[i] = iface
	}
	return result, nil
}

// InterfaceByName returns the named interface
func (m *MockPlatform) InterfaceByName(name string) (platform.InterfaceHandle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.enumErr != nil {
		return nil, m.enumErr
	}

	for _, iface := range m.interfaces {
		if iface.Name() == name {
			return iface, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", platform.ErrInterfaceNotFound, name)
}

// ResolvConfPath returns the configured resolver path
func (m *MockPlatform) ResolvConfPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolvConfPath
}

// DefaultInterface returns the configured default interface
func (m *MockPlatform) DefaultInterface() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.routeErr != nil {
		return "", m.routeErr
	}
	if m.defaultIface == "" {
		return "", &MockError{Message: "no default route"}
	}
	return m.defaultIface, nil
}

// UDPGlobalStatistics returns the configured UDP counters
func (m *MockPlatform) UDPGlobalStatistics() (platform.UDPGlobalStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.udpCalls++
	if m.udpErr != nil {
		return platform.UDPGlobalStatistics{}, m.udpErr
	}
	return m.udp, nil
}

// TCPGlobalStatistics returns the configured TCP counters
func (m *MockPlatform) TCPGlobalStatistics() (platform.TCPGlobalStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tcpCalls++
	if m.tcpErr != nil {
		return platform.TCPGlobalStatistics{}, m.tcpErr
	}
	return m.tcp, nil
}

// ICMPv4GlobalStatistics returns the configured ICMPv4 counters
func (m *MockPlatform) ICMPv4GlobalStatistics() (platform.ICMPv4GlobalStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.icmpCalls++
	if m.icmpErr != nil {
		return platform.ICMPv4GlobalStatistics{}, m.icmpErr
	}
	return m.icmp, nil
}

// SetResolvConfPath configures the resolver path
func (m *MockPlatform) SetResolvConfPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvConfPath = path
}

// SetDefaultInterface configures the default-route interface
func (m *MockPlatform) SetDefaultInterface(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultIface = name
}

// SetUDP configures the UDP counters
func (m *MockPlatform) SetUDP(stats platform.UDPGlobalStatistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.udp = stats
}

// SetTCP configures the TCP counters
func (m *MockPlatform) SetTCP(stats platform.TCPGlobalStatistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tcp = stats
}

// SetICMP configures the ICMPv4 counters
func (m *MockPlatform) SetICMP(stats platform.ICMPv4GlobalStatistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.icmp = stats
}

// SetEnumerationError configures the mock to fail interface enumeration
func (m *MockPlatform) SetEnumerationError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enumErr = err
}

// SetUDPError configures the mock to fail UDP queries
func (m *MockPlatform) SetUDPError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.udpErr = err
}

// SetTCPError configures the mock to fail TCP queries
func (m *MockPlatform) SetTCPError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tcpErr = err
}

// SetICMPError configures the mock to fail ICMP queries
func (m *MockPlatform) SetICMPError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.icmpErr = err
}

// SetRouteError configures the mock to fail DefaultInterface
func (m *MockPlatform) SetRouteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routeErr = err
}

// UDPCalls returns how many UDP queries were issued
func (m *MockPlatform) UDPCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.udpCalls
}

// TCPCalls returns how many TCP queries were issued
func (m *MockPlatform) TCPCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tcpCalls
}

// ICMPCalls returns how many ICMP queries were issued
func (m *MockPlatform) ICMPCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.icmpCalls
}
