// Package protostats captures point-in-time protocol counters.
//
// Each snapshot type issues exactly one native query when it is constructed
// and copies the result into unexported fields. A snapshot is never partially
// built: construction either returns a fully populated value or the native
// error. Session and listener counts saturate at the largest int instead of
// wrapping.
package protostats

import (
	"math"
	"sort"
	"time"
)

// Protocol names a snapshot kind
type Protocol string

const (
	ProtocolUDP    Protocol = "udp"
	ProtocolTCP    Protocol = "tcp"
	ProtocolICMPv4 Protocol = "icmp"
)

// Protocols lists every supported protocol in display order
var Protocols = []Protocol{ProtocolUDP, ProtocolTCP, ProtocolICMPv4}

// ParseProtocol maps a user-supplied name onto a Protocol
func ParseProtocol(name string) (Protocol, bool) {
	switch name {
	case "udp":
		return ProtocolUDP, true
	case "tcp":
		return ProtocolTCP, true
	case "icmp", "icmpv4":
		return ProtocolICMPv4, true
	default:
		return "", false
	}
}

// Snapshot is the protocol-independent value form of a capture, used by the
// history store and the metrics exporter.
type Snapshot struct {
	Protocol   Protocol         `json:"protocol"`
	CapturedAt time.Time        `json:"captured_at"`
	Counters   map[string]int64 `json:"counters"`
}

// Map returns a copy of the counters keyed by stable name
func (s Snapshot) Map() map[string]int64 {
	out := make(map[string]int64, len(s.Counters))
	for name, v := range s.Counters {
		out[name] = v
	}
	return out
}

// Names returns the counter names sorted alphabetically
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.Counters))
	for name := range s.Counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sample is implemented by every typed statistics capture
type Sample interface {
	Snapshot() Snapshot
}

// clampCount saturates a native count into int.
func clampCount(v uint64) int {
	if v > math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}

// clampCounter saturates a native counter into int64.
func clampCounter(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

var now = time.Now
