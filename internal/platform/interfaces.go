// Package platform declares the OS-specific capabilities netinfo is built on.
//
// Each supported OS provides one implementation (see the linux and darwin
// subpackages) that only does native glue: enumerating interfaces and their
// addresses, looking up per-address masks and issuing single-shot counter
// queries. Classification, parsing and caching live in OS-neutral packages
// and are shared by every implementation.
package platform

import (
	"errors"
	"net"
)

// ErrUnsupported is returned when netinfo has no implementation for the
// running OS.
var ErrUnsupported = errors.New("platform not supported")

// ErrInterfaceNotFound is returned by InterfaceByName for unknown names.
var ErrInterfaceNotFound = errors.New("interface not found")

// InterfaceHandle is the raw state of one network interface
type InterfaceHandle interface {
	// Name returns the OS name of the interface (eth0, en0, ...)
	Name() string

	// Addresses returns the interface's IP addresses in OS order
	Addresses() ([]net.IP, error)

	// IPv4NetMask returns the mask configured for ip on this interface.
	// It returns nil and no error when the OS reports no mask for ip.
	IPv4NetMask(ip net.IP) (net.IPMask, error)
}

// GatewaySource is implemented by handles that can report next-hop gateways
type GatewaySource interface {
	Gateways() ([]net.IP, error)
}

// UDPGlobalStatistics is the raw UDP counter record returned by the OS
type UDPGlobalStatistics struct {
	DatagramsReceived uint64
	DatagramsSent     uint64
	IncomingDiscarded uint64
	IncomingErrors    uint64
	Listeners         uint64
}

// TCPGlobalStatistics is the raw TCP counter record returned by the OS
type TCPGlobalStatistics struct {
	ActiveOpens        uint64
	PassiveOpens       uint64
	AttemptFails       uint64
	EstabResets        uint64
	CurrentEstablished uint64
	SegmentsReceived   uint64
	SegmentsSent       uint64
	SegmentsRetrans    uint64
	InErrors           uint64
	OutResets          uint64
	Listeners          uint64
}

// ICMPv4GlobalStatistics is the raw ICMPv4 counter record returned by the OS
type ICMPv4GlobalStatistics struct {
	InMessages          uint64
	OutMessages         uint64
	InErrors            uint64
	OutErrors           uint64
	InDestUnreachables  uint64
	OutDestUnreachables uint64
	InEchos             uint64
	OutEchos            uint64
	InEchoReplies       uint64
	OutEchoReplies      uint64
}

// StatisticsSource issues single-shot counter queries. Failures carry the
// platform errno as an *errors.NativeQueryError.
type StatisticsSource interface {
	UDPGlobalStatistics() (UDPGlobalStatistics, error)
	TCPGlobalStatistics() (TCPGlobalStatistics, error)
	ICMPv4GlobalStatistics() (ICMPv4GlobalStatistics, error)
}

// Platform abstracts host network configuration across operating systems
type Platform interface {
	StatisticsSource

	// Name returns the platform identifier ("linux", "darwin")
	Name() string

	// Interfaces enumerates every interface on the host
	Interfaces() ([]InterfaceHandle, error)

	// InterfaceByName returns one interface or ErrInterfaceNotFound
	InterfaceByName(name string) (InterfaceHandle, error)

	// ResolvConfPath returns where the resolver configuration lives
	ResolvConfPath() string

	// DefaultInterface returns the name of the interface holding the
	// default route, or an error when it cannot be determined
	DefaultInterface() (string, error)
}
