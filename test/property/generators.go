//go:build property
// +build property

package property

import (
	"net"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

// genUnicastIPv4 generates an IPv4 address outside 224.0.0.0/4 and 0.0.0.0/8
func genUnicastIPv4() gopter.Gen {
	return gen.SliceOfN(4, gen.UInt8()).Map(func(b []uint8) net.IP {
		first := 1 + b[0]%223 // 1..223
		return net.IPv4(first, b[1], b[2], b[3]).To4()
	})
}

// genMulticastIPv4 generates an address in 224.0.0.0/4
func genMulticastIPv4() gopter.Gen {
	return gen.SliceOfN(4, gen.UInt8()).Map(func(b []uint8) net.IP {
		return net.IPv4(224+b[0]%16, b[1], b[2], b[3]).To4()
	})
}

// genPrefix generates an IPv4 prefix length
func genPrefix() gopter.Gen {
	return gen.IntRange(0, 32)
}
