//go:build property
// +build property

package property

import (
	"net"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"

	"github.com/mosiko1234/heimdal/netinfo/internal/config"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/netconfig"
	"github.com/mosiko1234/heimdal/netinfo/test/mocks"
)

func inspect(t *testing.T, iface *mocks.MockInterface) *netconfig.InterfaceReport {
	p := mocks.NewMockPlatform(iface)
	in := netconfig.NewInspector(p, netconfig.WithLogger(logger.NewNopLogger("NetConfig")))
	report, err := in.Interface(iface.Name())
	if err != nil {
		t.Logf("Failed to inspect %s: %v", iface.Name(), err)
		return nil
	}
	return report
}

// For any IPv4 address configured with a prefix, the report carries that
// prefix and the network it implies.
func TestProperty_PrefixRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("report prefix and CIDR match the configured network", prop.ForAll(
		func(ip net.IP, prefix int) bool {
			ipNet := &net.IPNet{IP: ip.Mask(net.CIDRMask(prefix, 32)), Mask: net.CIDRMask(prefix, 32)}
			cidr := (&net.IPNet{IP: ip, Mask: ipNet.Mask}).String()

			report := inspect(t, mocks.NewMockInterface("eth0", cidr))
			if report == nil || len(report.Unicast) != 1 {
				return false
			}
			u := report.Unicast[0]
			return u.PrefixLength == prefix && u.CIDR == ipNet.String()
		},
		genUnicastIPv4(),
		genPrefix(),
	))

	properties.TestingRun(t)
}

// An IPv4 address without a mask entry reports the all-ones mask.
func TestProperty_MissingMaskIsHostRoute(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing mask resolves to 255.255.255.255", prop.ForAll(
		func(ip net.IP) bool {
			report := inspect(t, mocks.NewMockInterface("eth0", ip.String()))
			if report == nil || len(report.Unicast) != 1 {
				return false
			}
			return report.Unicast[0].NetMask == "255.255.255.255" && report.Unicast[0].PrefixLength == 32
		},
		genUnicastIPv4(),
	))

	properties.TestingRun(t)
}

// Multicast groups never appear among unicast addresses and keep their order.
func TestProperty_MulticastSeparated(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unicast and multicast partition the address list", prop.ForAll(
		func(unicast, group1, group2 net.IP) bool {
			report := inspect(t, mocks.NewMockInterface("eth0",
				group1.String(), unicast.String()+"/24", group2.String()))
			if report == nil {
				return false
			}
			return len(report.Unicast) == 1 &&
				report.Unicast[0].Address == unicast.String() &&
				len(report.Multicast) == 2 &&
				report.Multicast[0] == group1.String() &&
				report.Multicast[1] == group2.String()
		},
		genUnicastIPv4(),
		genMulticastIPv4(),
		genMulticastIPv4(),
	))

	properties.TestingRun(t)
}

// For any system with at least one active, routable IPv4 interface, the
// inspector selects a primary interface.
func TestProperty_PrimaryInterfaceAutoDetection(t *testing.T) {
	hostHasRoutableIPv4 := false
	ifaces, err := net.Interfaces()
	if err != nil {
		t.Skipf("Failed to list system interfaces: %v", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil && !ipnet.IP.IsLinkLocalUnicast() {
				hostHasRoutableIPv4 = true
			}
		}
	}
	if !hostHasRoutableIPv4 {
		t.Skip("No active routable IPv4 interface on this host")
	}

	host, err := netconfig.NewHostPlatform(config.DefaultConfig().Platform)
	if err != nil {
		t.Skipf("Host platform unavailable: %v", err)
	}

	properties := gopter.NewProperties(nil)

	properties.Property("primary interface is detected on hosts with active interfaces", prop.ForAll(
		func() bool {
			in := netconfig.NewInspector(host, netconfig.WithLogger(logger.NewNopLogger("NetConfig")))
			report, err := in.PrimaryInterface()
			if err != nil {
				t.Logf("Failed to detect primary interface: %v", err)
				return false
			}
			return report.Name != ""
		},
	))

	properties.TestingRun(t)
}
