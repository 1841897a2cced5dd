package protostats

import (
	"fmt"

	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// Capture takes a fresh snapshot of proto from src
func Capture(src platform.StatisticsSource, proto Protocol) (Snapshot, error) {
	var (
		sample Sample
		err    error
	)
	switch proto {
	case ProtocolUDP:
		sample, err = NewUDPStatistics(src)
	case ProtocolTCP:
		sample, err = NewTCPStatistics(src)
	case ProtocolICMPv4:
		sample, err = NewICMPv4Statistics(src)
	default:
		return Snapshot{}, fmt.Errorf("unknown protocol %q", proto)
	}
	if err != nil {
		return Snapshot{}, err
	}
	return sample.Snapshot(), nil
}
