package darwin

import (
	"encoding/binary"

	"golang.org/x/sys/unix"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// Word offsets into the kernel's statistics structs. Every field of
// struct udpstat, tcpstat and icmpstat is a u_int32_t.
const (
	udpsIPackets = 0
	udpsHdrOps   = 1
	udpsBadSum   = 2
	udpsBadLen   = 3
	udpsNoPort   = 4
	udpsOPackets = 9

	tcpsConnAttempt    = 0
	tcpsAccepts        = 1
	tcpsDrops          = 3
	tcpsConnDrops      = 4
	tcpsSndTotal       = 15
	tcpsSndRexmitPack  = 18
	tcpsSndCtrl        = 24
	tcpsRcvTotal       = 25
	tcpsRcvBadSum      = 28
	tcpsRcvBadOff      = 29
	tcpsRcvMemDrop     = 30
	tcpsRcvShort       = 31
	tcpStatMinWords    = 32
	udpStatMinWords    = 10
	icmpMaxType        = 40
	icpsError          = 0
	icpsOutHist        = 3
	icpsBadCode        = icpsOutHist + icmpMaxType + 1
	icpsTooShort       = icpsBadCode + 1
	icpsChecksum       = icpsBadCode + 2
	icpsBadLen         = icpsBadCode + 3
	icpsInHist         = icpsBadCode + 5
	icmpStatMinWords   = icpsInHist + icmpMaxType + 1
	icmpEchoReply      = 0
	icmpDestUnreach    = 3
	icmpEcho           = 8
	xinpgenCountOffset = 4
)

type words []byte

func (w words) at(i int) uint64 {
	return uint64(binary.LittleEndian.Uint32(w[i*4:]))
}

func (w words) sum(from, n int) uint64 {
	var total uint64
	for i := from; i < from+n; i++ {
		total += w.at(i)
	}
	return total
}

func checkLen(op string, buf []byte, minWords int) (words, error) {
	if len(buf) < minWords*4 {
		return nil, errors.NativeQueryErrorf(op, unix.EIO, "short buffer: %d bytes, need %d", len(buf), minWords*4)
	}
	return words(buf), nil
}

// decodeUDPStat maps struct udpstat onto the UDP record. Errors are the sum
// of header, checksum and length drops.
func decodeUDPStat(buf []byte) (platform.UDPGlobalStatistics, error) {
	w, err := checkLen("decode net.inet.udp.stats", buf, udpStatMinWords)
	if err != nil {
		return platform.UDPGlobalStatistics{}, err
	}

	return platform.UDPGlobalStatistics{
		DatagramsReceived: w.at(udpsIPackets),
		DatagramsSent:     w.at(udpsOPackets),
		IncomingDiscarded: w.at(udpsNoPort),
		IncomingErrors:    w.at(udpsHdrOps) + w.at(udpsBadSum) + w.at(udpsBadLen),
	}, nil
}

func decodeTCPStat(buf []byte) (platform.TCPGlobalStatistics, error) {
	w, err := checkLen("decode net.inet.tcp.stats", buf, tcpStatMinWords)
	if err != nil {
		return platform.TCPGlobalStatistics{}, err
	}

	return platform.TCPGlobalStatistics{
		ActiveOpens:      w.at(tcpsConnAttempt),
		PassiveOpens:     w.at(tcpsAccepts),
		AttemptFails:     w.at(tcpsConnDrops),
		EstabResets:      w.at(tcpsDrops),
		SegmentsReceived: w.at(tcpsRcvTotal),
		SegmentsSent:     w.at(tcpsSndTotal),
		SegmentsRetrans:  w.at(tcpsSndRexmitPack),
		InErrors:         w.at(tcpsRcvBadSum) + w.at(tcpsRcvBadOff) + w.at(tcpsRcvMemDrop) + w.at(tcpsRcvShort),
		OutResets:        w.at(tcpsSndCtrl),
	}, nil
}

// decodeICMPStat folds the per-type histograms of struct icmpstat into the
// ICMPv4 record.
func decodeICMPStat(buf []byte) (platform.ICMPv4GlobalStatistics, error) {
	w, err := checkLen("decode net.inet.icmp.stats", buf, icmpStatMinWords)
	if err != nil {
		return platform.ICMPv4GlobalStatistics{}, err
	}

	inErrors := w.at(icpsBadCode) + w.at(icpsTooShort) + w.at(icpsChecksum) + w.at(icpsBadLen)
	return platform.ICMPv4GlobalStatistics{
		InMessages:          w.sum(icpsInHist, icmpMaxType+1) + inErrors,
		OutMessages:         w.sum(icpsOutHist, icmpMaxType+1),
		InErrors:            inErrors,
		OutErrors:           w.at(icpsError),
		InDestUnreachables:  w.at(icpsInHist + icmpDestUnreach),
		OutDestUnreachables: w.at(icpsOutHist + icmpDestUnreach),
		InEchos:             w.at(icpsInHist + icmpEcho),
		OutEchos:            w.at(icpsOutHist + icmpEcho),
		InEchoReplies:       w.at(icpsInHist + icmpEchoReply),
		OutEchoReplies:      w.at(icpsOutHist + icmpEchoReply),
	}, nil
}

// decodePCBCount reads xig_count from the xinpgen header that opens a
// pcblist sysctl.
func decodePCBCount(buf []byte) (uint64, error) {
	if len(buf) < xinpgenCountOffset+4 {
		return 0, errors.NativeQueryErrorf("decode pcblist", unix.EIO, "short buffer: %d bytes", len(buf))
	}
	return uint64(binary.LittleEndian.Uint32(buf[xinpgenCountOffset:])), nil
}
