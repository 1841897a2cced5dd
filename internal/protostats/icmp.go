package protostats

import (
	"time"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// ICMPSource performs the native ICMPv4 counter query
type ICMPSource interface {
	ICMPv4GlobalStatistics() (platform.ICMPv4GlobalStatistics, error)
}

// ICMPv4Statistics is an immutable sample of the host's ICMPv4 counters
type ICMPv4Statistics struct {
	messagesReceived     int64
	messagesSent         int64
	errorsReceived       int64
	errorsSent           int64
	unreachablesReceived int64
	unreachablesSent     int64
	echoRequestsReceived int64
	echoRequestsSent     int64
	echoRepliesReceived  int64
	echoRepliesSent      int64
	capturedAt           time.Time
}

var _ Sample = (*ICMPv4Statistics)(nil)

// NewICMPv4Statistics queries src once and captures the result
func NewICMPv4Statistics(src ICMPSource) (*ICMPv4Statistics, error) {
	raw, err := src.ICMPv4GlobalStatistics()
	if err != nil {
		return nil, errors.NewNativeQueryError("icmpv4 global statistics", err)
	}

	return &ICMPv4Statistics{
		messagesReceived:     clampCounter(raw.InMessages),
		messagesSent:         clampCounter(raw.OutMessages),
		errorsReceived:       clampCounter(raw.InErrors),
		errorsSent:           clampCounter(raw.OutErrors),
		unreachablesReceived: clampCounter(raw.InDestUnreachables),
		unreachablesSent:     clampCounter(raw.OutDestUnreachables),
		echoRequestsReceived: clampCounter(raw.InEchos),
		echoRequestsSent:     clampCounter(raw.OutEchos),
		echoRepliesReceived:  clampCounter(raw.InEchoReplies),
		echoRepliesSent:      clampCounter(raw.OutEchoReplies),
		capturedAt:           now(),
	}, nil
}

func (s *ICMPv4Statistics) MessagesReceived() int64 { return s.messagesReceived }
func (s *ICMPv4Statistics) MessagesSent() int64     { return s.messagesSent }
func (s *ICMPv4Statistics) ErrorsReceived() int64   { return s.errorsReceived }
func (s *ICMPv4Statistics) ErrorsSent() int64       { return s.errorsSent }

func (s *ICMPv4Statistics) DestinationUnreachablesReceived() int64 {
	return s.unreachablesReceived
}

func (s *ICMPv4Statistics) DestinationUnreachablesSent() int64 {
	return s.unreachablesSent
}

func (s *ICMPv4Statistics) EchoRequestsReceived() int64 { return s.echoRequestsReceived }
func (s *ICMPv4Statistics) EchoRequestsSent() int64     { return s.echoRequestsSent }
func (s *ICMPv4Statistics) EchoRepliesReceived() int64  { return s.echoRepliesReceived }
func (s *ICMPv4Statistics) EchoRepliesSent() int64      { return s.echoRepliesSent }
func (s *ICMPv4Statistics) Protocol() Protocol          { return ProtocolICMPv4 }
func (s *ICMPv4Statistics) CapturedAt() time.Time       { return s.capturedAt }

func (s *ICMPv4Statistics) Snapshot() Snapshot {
	return Snapshot{
		Protocol:   s.Protocol(),
		CapturedAt: s.capturedAt,
		Counters: map[string]int64{
			"messages_received":                s.messagesReceived,
			"messages_sent":                    s.messagesSent,
			"errors_received":                  s.errorsReceived,
			"errors_sent":                      s.errorsSent,
			"destination_unreachable_received": s.unreachablesReceived,
			"destination_unreachable_sent":     s.unreachablesSent,
			"echo_requests_received":           s.echoRequestsReceived,
			"echo_requests_sent":               s.echoRequestsSent,
			"echo_replies_received":            s.echoRepliesReceived,
			"echo_replies_sent":                s.echoRepliesSent,
		},
	}
}
