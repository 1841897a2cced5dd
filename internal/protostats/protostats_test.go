package protostats

import (
	stderrors "errors"
	"math"
	"syscall"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/test/mocks"
)

func TestUDPStatisticsCopiesCounters(t *testing.T) {
	src := mocks.NewMockPlatform()
	src.SetUDP(platform.UDPGlobalStatistics{
		DatagramsReceived: 10,
		DatagramsSent:     5,
		IncomingDiscarded: 0,
		IncomingErrors:    0,
		Listeners:         3,
	})

	stats, err := NewUDPStatistics(src)
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, int64(10), stats.DatagramsReceived())
	assert.Equal(t, int64(5), stats.DatagramsSent())
	assert.Equal(t, int64(0), stats.IncomingDatagramsDiscarded())
	assert.Equal(t, int64(0), stats.IncomingDatagramsWithErrors())
	assert.Equal(t, 3, stats.UDPListeners())
	assert.Equal(t, 1, src.UDPCalls())
}

func TestUDPStatisticsIsImmutable(t *testing.T) {
	src := mocks.NewMockPlatform()
	src.SetUDP(platform.UDPGlobalStatistics{DatagramsReceived: 10})

	stats, err := NewUDPStatistics(src)
	require.NoError(t, err)

	src.SetUDP(platform.UDPGlobalStatistics{DatagramsReceived: 99})

	assert.Equal(t, int64(10), stats.DatagramsReceived())
	assert.Equal(t, int64(10), stats.DatagramsReceived())
	assert.Equal(t, 1, src.UDPCalls(), "accessors must not re-query")
}

func TestUDPListenersSaturate(t *testing.T) {
	src := mocks.NewMockPlatform()
	src.SetUDP(platform.UDPGlobalStatistics{
		DatagramsReceived: math.MaxUint64,
		Listeners:         math.MaxUint64,
	})

	stats, err := NewUDPStatistics(src)
	require.NoError(t, err)

	assert.Equal(t, math.MaxInt, stats.UDPListeners())
	assert.Equal(t, int64(math.MaxInt64), stats.DatagramsReceived())
}

func TestUDPStatisticsFailure(t *testing.T) {
	src := mocks.NewMockPlatform()
	src.SetUDPError(syscall.EACCES)

	stats, err := NewUDPStatistics(src)
	assert.Nil(t, stats)
	require.Error(t, err)

	var nqe *errors.NativeQueryError
	require.True(t, stderrors.As(err, &nqe))
	assert.Equal(t, syscall.EACCES, nqe.Code)
	assert.True(t, stderrors.Is(err, syscall.EACCES))
	assert.Equal(t, 1, src.UDPCalls())
}

func TestUDPStatisticsFailureWithoutErrno(t *testing.T) {
	src := mocks.NewMockPlatform()
	src.SetUDPError(stderrors.New("sysctl returned short buffer"))

	_, err := NewUDPStatistics(src)
	code, ok := errors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, syscall.EIO, code)
}

func TestTCPStatistics(t *testing.T) {
	src := mocks.NewMockPlatform()
	src.SetTCP(platform.TCPGlobalStatistics{
		ActiveOpens:        7,
		PassiveOpens:       2,
		AttemptFails:       1,
		EstabResets:        4,
		CurrentEstablished: 12,
		SegmentsReceived:   1000,
		SegmentsSent:       900,
		SegmentsRetrans:    3,
		InErrors:           0,
		OutResets:          6,
		Listeners:          math.MaxUint64,
	})

	stats, err := NewTCPStatistics(src)
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.ActiveOpens())
	assert.Equal(t, int64(2), stats.PassiveOpens())
	assert.Equal(t, int64(1), stats.FailedConnectionAttempts())
	assert.Equal(t, int64(4), stats.ResetConnections())
	assert.Equal(t, 12, stats.CurrentConnections())
	assert.Equal(t, int64(1000), stats.SegmentsReceived())
	assert.Equal(t, int64(900), stats.SegmentsSent())
	assert.Equal(t, int64(3), stats.SegmentsResent())
	assert.Equal(t, int64(0), stats.ErrorsReceived())
	assert.Equal(t, int64(6), stats.ResetsSent())
	assert.Equal(t, math.MaxInt, stats.Listeners())
}

func TestTCPStatisticsFailure(t *testing.T) {
	src := mocks.NewMockPlatform()
	src.SetTCPError(syscall.ENOENT)

	stats, err := NewTCPStatistics(src)
	assert.Nil(t, stats)
	assert.True(t, stderrors.Is(err, syscall.ENOENT))
}

func TestICMPv4Statistics(t *testing.T) {
	src := mocks.NewMockPlatform()
	src.SetICMP(platform.ICMPv4GlobalStatistics{
		InMessages:          20,
		OutMessages:         18,
		InErrors:            1,
		OutErrors:           0,
		InDestUnreachables:  2,
		OutDestUnreachables: 3,
		InEchos:             8,
		OutEchos:            9,
		InEchoReplies:       9,
		OutEchoReplies:      8,
	})

	stats, err := NewICMPv4Statistics(src)
	require.NoError(t, err)

	assert.Equal(t, int64(20), stats.MessagesReceived())
	assert.Equal(t, int64(18), stats.MessagesSent())
	assert.Equal(t, int64(1), stats.ErrorsReceived())
	assert.Equal(t, int64(0), stats.ErrorsSent())
	assert.Equal(t, int64(2), stats.DestinationUnreachablesReceived())
	assert.Equal(t, int64(3), stats.DestinationUnreachablesSent())
	assert.Equal(t, int64(8), stats.EchoRequestsReceived())
	assert.Equal(t, int64(9), stats.EchoRequestsSent())
	assert.Equal(t, int64(9), stats.EchoRepliesReceived())
	assert.Equal(t, int64(8), stats.EchoRepliesSent())
}

func TestCaptureSnapshot(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	src := mocks.NewMockPlatform()
	src.SetUDP(platform.UDPGlobalStatistics{DatagramsReceived: 10, DatagramsSent: 5, Listeners: 3})

	snap, err := Capture(src, ProtocolUDP)
	require.NoError(t, err)

	assert.Equal(t, ProtocolUDP, snap.Protocol)
	assert.Equal(t, fixed, snap.CapturedAt)
	assert.Equal(t, map[string]int64{
		"datagrams_received": 10,
		"datagrams_sent":     5,
		"incoming_discarded": 0,
		"incoming_errors":    0,
		"listeners":          3,
	}, snap.Map())
	assert.Equal(t, []string{
		"datagrams_received", "datagrams_sent", "incoming_discarded", "incoming_errors", "listeners",
	}, snap.Names())

	m := snap.Map()
	m["listeners"] = 0
	assert.Equal(t, int64(3), snap.Counters["listeners"])
}

func TestCaptureFailure(t *testing.T) {
	src := mocks.NewMockPlatform()
	src.SetICMPError(syscall.EPERM)

	snap, err := Capture(src, ProtocolICMPv4)
	require.Error(t, err)
	assert.Nil(t, snap.Counters)

	_, err = Capture(src, Protocol("sctp"))
	assert.Error(t, err)
}

func TestParseProtocol(t *testing.T) {
	tests := []struct {
		input string
		want  Protocol
		ok    bool
	}{
		{"udp", ProtocolUDP, true},
		{"tcp", ProtocolTCP, true},
		{"icmp", ProtocolICMPv4, true},
		{"icmpv4", ProtocolICMPv4, true},
		{"sctp", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseProtocol(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseProtocol(%q): expected (%q, %v), got (%q, %v)", tt.input, tt.want, tt.ok, got, ok)
		}
	}
}

func TestClampProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("listener clamp never goes negative and is monotone", prop.ForAll(
		func(a, b uint64) bool {
			if a > b {
				a, b = b, a
			}
			ca, cb := clampCount(a), clampCount(b)
			return ca >= 0 && ca <= cb
		},
		gen.UInt64(),
		gen.UInt64(),
	))

	properties.Property("counter clamp is identity below MaxInt64", prop.ForAll(
		func(v uint64) bool {
			if v > math.MaxInt64 {
				return clampCounter(v) == math.MaxInt64
			}
			return clampCounter(v) == int64(v)
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
