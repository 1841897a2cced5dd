//go:build linux

package linux

import (
	"github.com/prometheus/procfs"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// tcpListen is the TCP_LISTEN state as printed in /proc/net/tcp
const tcpListen = 0x0A

// UDPGlobalStatistics reads the Udp: rows of /proc/self/net/snmp. Bound
// sockets are counted from /proc/net/udp and udp6.
func (p *Platform) UDPGlobalStatistics() (platform.UDPGlobalStatistics, error) {
	snmp, err := p.snmp()
	if err != nil {
		return platform.UDPGlobalStatistics{}, errors.NewNativeQueryError("read udp counters", err)
	}

	listeners, err := p.udpSockets()
	if err != nil {
		return platform.UDPGlobalStatistics{}, errors.NewNativeQueryError("count udp sockets", err)
	}

	udp := snmp.Udp
	return platform.UDPGlobalStatistics{
		DatagramsReceived: counter(udp.InDatagrams),
		DatagramsSent:     counter(udp.OutDatagrams),
		IncomingDiscarded: counter(udp.NoPorts),
		IncomingErrors:    counter(udp.InErrors),
		Listeners:         listeners,
	}, nil
}

// TCPGlobalStatistics reads the Tcp: rows of /proc/self/net/snmp and counts
// sockets in LISTEN state.
func (p *Platform) TCPGlobalStatistics() (platform.TCPGlobalStatistics, error) {
	snmp, err := p.snmp()
	if err != nil {
		return platform.TCPGlobalStatistics{}, errors.NewNativeQueryError("read tcp counters", err)
	}

	listeners, err := p.tcpListeners()
	if err != nil {
		return platform.TCPGlobalStatistics{}, errors.NewNativeQueryError("count tcp listeners", err)
	}

	tcp := snmp.Tcp
	return platform.TCPGlobalStatistics{
		ActiveOpens:        counter(tcp.ActiveOpens),
		PassiveOpens:       counter(tcp.PassiveOpens),
		AttemptFails:       counter(tcp.AttemptFails),
		EstabResets:        counter(tcp.EstabResets),
		CurrentEstablished: counter(tcp.CurrEstab),
		SegmentsReceived:   counter(tcp.InSegs),
		SegmentsSent:       counter(tcp.OutSegs),
		SegmentsRetrans:    counter(tcp.RetransSegs),
		InErrors:           counter(tcp.InErrs),
		OutResets:          counter(tcp.OutRsts),
		Listeners:          listeners,
	}, nil
}

// ICMPv4GlobalStatistics reads the Icmp: rows of /proc/self/net/snmp
func (p *Platform) ICMPv4GlobalStatistics() (platform.ICMPv4GlobalStatistics, error) {
	snmp, err := p.snmp()
	if err != nil {
		return platform.ICMPv4GlobalStatistics{}, errors.NewNativeQueryError("read icmp counters", err)
	}

	icmp := snmp.Icmp
	return platform.ICMPv4GlobalStatistics{
		InMessages:          counter(icmp.InMsgs),
		OutMessages:         counter(icmp.OutMsgs),
		InErrors:            counter(icmp.InErrors),
		OutErrors:           counter(icmp.OutErrors),
		InDestUnreachables:  counter(icmp.InDestUnreachs),
		OutDestUnreachables: counter(icmp.OutDestUnreachs),
		InEchos:             counter(icmp.InEchos),
		OutEchos:            counter(icmp.OutEchos),
		InEchoReplies:       counter(icmp.InEchoReps),
		OutEchoReplies:      counter(icmp.OutEchoReps),
	}, nil
}

func (p *Platform) snmp() (procfs.ProcSnmp, error) {
	self, err := p.fs.Self()
	if err != nil {
		return procfs.ProcSnmp{}, err
	}
	return self.Snmp()
}

func (p *Platform) udpSockets() (uint64, error) {
	v4, err := p.fs.NetUDPSummary()
	if err != nil {
		return 0, err
	}
	total := v4.UsedSockets

	// udp6 is absent when IPv6 is disabled
	if v6, err := p.fs.NetUDP6Summary(); err == nil {
		total += v6.UsedSockets
	} else {
		p.logger.Debug("Skipping udp6 sockets: %v", err)
	}
	return total, nil
}

func (p *Platform) tcpListeners() (uint64, error) {
	v4, err := p.fs.NetTCP()
	if err != nil {
		return 0, err
	}
	total := countListening(v4)

	if v6, err := p.fs.NetTCP6(); err == nil {
		total += countListening(v6)
	} else {
		p.logger.Debug("Skipping tcp6 sockets: %v", err)
	}
	return total, nil
}

func countListening(lines procfs.NetTCP) uint64 {
	var n uint64
	for _, line := range lines {
		if line.St == tcpListen {
			n++
		}
	}
	return n
}

// counter converts a procfs value; rows missing from the kernel's output
// read as zero.
func counter(v *float64) uint64 {
	if v == nil || *v < 0 {
		return 0
	}
	return uint64(*v)
}
