package protostats

import (
	"time"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// UDPSource performs the native UDP counter query
type UDPSource interface {
	UDPGlobalStatistics() (platform.UDPGlobalStatistics, error)
}

// UDPStatistics is an immutable sample of the host's UDP counters
type UDPStatistics struct {
	datagramsReceived int64
	datagramsSent     int64
	incomingDiscarded int64
	incomingErrors    int64
	listeners         int
	capturedAt        time.Time
}

var _ Sample = (*UDPStatistics)(nil)

// NewUDPStatistics queries src once and captures the result. A failed query
// returns nil and an error carrying the platform errno.
func NewUDPStatistics(src UDPSource) (*UDPStatistics, error) {
	raw, err := src.UDPGlobalStatistics()
	if err != nil {
		return nil, errors.NewNativeQueryError("udp global statistics", err)
	}

	return &UDPStatistics{
		datagramsReceived: clampCounter(raw.DatagramsReceived),
		datagramsSent:     clampCounter(raw.DatagramsSent),
		incomingDiscarded: clampCounter(raw.IncomingDiscarded),
		incomingErrors:    clampCounter(raw.IncomingErrors),
		listeners:         clampCount(raw.Listeners),
		capturedAt:        now(),
	}, nil
}

func (s *UDPStatistics) DatagramsReceived() int64 { return s.datagramsReceived }

func (s *UDPStatistics) DatagramsSent() int64 { return s.datagramsSent }

// IncomingDatagramsDiscarded counts datagrams dropped for lack of a listener
func (s *UDPStatistics) IncomingDatagramsDiscarded() int64 { return s.incomingDiscarded }

// IncomingDatagramsWithErrors counts datagrams dropped for header, length or
// checksum errors
func (s *UDPStatistics) IncomingDatagramsWithErrors() int64 { return s.incomingErrors }

// UDPListeners is the number of bound UDP sockets
func (s *UDPStatistics) UDPListeners() int { return s.listeners }

func (s *UDPStatistics) Protocol() Protocol { return ProtocolUDP }

func (s *UDPStatistics) CapturedAt() time.Time { return s.capturedAt }

func (s *UDPStatistics) Snapshot() Snapshot {
	return Snapshot{
		Protocol:   s.Protocol(),
		CapturedAt: s.capturedAt,
		Counters: map[string]int64{
			"datagrams_received": s.datagramsReceived,
			"datagrams_sent":     s.datagramsSent,
			"incoming_discarded": s.incomingDiscarded,
			"incoming_errors":    s.incomingErrors,
			"listeners":          int64(s.listeners),
		},
	}
}
