package protostats

import (
	"time"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// TCPSource performs the native TCP counter query
type TCPSource interface {
	TCPGlobalStatistics() (platform.TCPGlobalStatistics, error)
}

// TCPStatistics is an immutable sample of the host's TCP counters
type TCPStatistics struct {
	activeOpens        int64
	passiveOpens       int64
	failedAttempts     int64
	resetConnections   int64
	currentConnections int
	segmentsReceived   int64
	segmentsSent       int64
	segmentsResent     int64
	errorsReceived     int64
	resetsSent         int64
	listeners          int
	capturedAt         time.Time
}

var _ Sample = (*TCPStatistics)(nil)

// NewTCPStatistics queries src once and captures the result
func NewTCPStatistics(src TCPSource) (*TCPStatistics, error) {
	raw, err := src.TCPGlobalStatistics()
	if err != nil {
		return nil, errors.NewNativeQueryError("tcp global statistics", err)
	}

	return &TCPStatistics{
		activeOpens:        clampCounter(raw.ActiveOpens),
		passiveOpens:       clampCounter(raw.PassiveOpens),
		failedAttempts:     clampCounter(raw.AttemptFails),
		resetConnections:   clampCounter(raw.EstabResets),
		currentConnections: clampCount(raw.CurrentEstablished),
		segmentsReceived:   clampCounter(raw.SegmentsReceived),
		segmentsSent:       clampCounter(raw.SegmentsSent),
		segmentsResent:     clampCounter(raw.SegmentsRetrans),
		errorsReceived:     clampCounter(raw.InErrors),
		resetsSent:         clampCounter(raw.OutResets),
		listeners:          clampCount(raw.Listeners),
		capturedAt:         now(),
	}, nil
}

func (s *TCPStatistics) ActiveOpens() int64              { return s.activeOpens }
func (s *TCPStatistics) PassiveOpens() int64             { return s.passiveOpens }
func (s *TCPStatistics) FailedConnectionAttempts() int64 { return s.failedAttempts }
func (s *TCPStatistics) ResetConnections() int64         { return s.resetConnections }
func (s *TCPStatistics) CurrentConnections() int         { return s.currentConnections }
func (s *TCPStatistics) SegmentsReceived() int64         { return s.segmentsReceived }
func (s *TCPStatistics) SegmentsSent() int64             { return s.segmentsSent }
func (s *TCPStatistics) SegmentsResent() int64           { return s.segmentsResent }
func (s *TCPStatistics) ErrorsReceived() int64           { return s.errorsReceived }
func (s *TCPStatistics) ResetsSent() int64               { return s.resetsSent }
func (s *TCPStatistics) Listeners() int                  { return s.listeners }
func (s *TCPStatistics) Protocol() Protocol              { return ProtocolTCP }
func (s *TCPStatistics) CapturedAt() time.Time           { return s.capturedAt }

func (s *TCPStatistics) Snapshot() Snapshot {
	return Snapshot{
		Protocol:   s.Protocol(),
		CapturedAt: s.capturedAt,
		Counters: map[string]int64{
			"active_opens":               s.activeOpens,
			"passive_opens":              s.passiveOpens,
			"failed_connection_attempts": s.failedAttempts,
			"reset_connections":          s.resetConnections,
			"current_connections":        int64(s.currentConnections),
			"segments_received":          s.segmentsReceived,
			"segments_sent":              s.segmentsSent,
			"segments_resent":            s.segmentsResent,
			"errors_received":            s.errorsReceived,
			"resets_sent":                s.resetsSent,
			"listeners":                  int64(s.listeners),
		},
	}
}
