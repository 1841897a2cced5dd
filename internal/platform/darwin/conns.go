package darwin

import (
	gopsnet "github.com/shirou/gopsutil/net"
)

// countStates tallies established and listening sockets
func countStates(conns []gopsnet.ConnectionStat) (established, listening uint64) {
	for _, c := range conns {
		switch c.Status {
		case "ESTABLISHED":
			established++
		case "LISTEN":
			listening++
		}
	}
	return established, listening
}
