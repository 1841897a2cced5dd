package netmask

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLookup map[string]net.IPMask

func (m mapLookup) IPv4NetMask(ip net.IP) (net.IPMask, error) {
	return m[ip.String()], nil
}

func TestResolveIPv4Found(t *testing.T) {
	lookup := mapLookup{"192.168.1.10": net.CIDRMask(24, 32)}

	mask, err := ResolveIPv4(net.ParseIP("192.168.1.10"), lookup)
	require.NoError(t, err)
	assert.Equal(t, net.IPMask{255, 255, 255, 0}, mask)
}

func TestResolveIPv4MissingUsesWildcard(t *testing.T) {
	mask, err := ResolveIPv4(net.ParseIP("10.1.2.3"), mapLookup{})
	require.NoError(t, err)
	assert.Equal(t, net.IPMask{255, 255, 255, 255}, mask)
}

func TestResolveIPv4NilLookup(t *testing.T) {
	mask, err := ResolveIPv4(net.ParseIP("10.1.2.3"), nil)
	require.NoError(t, err)
	assert.Equal(t, Wildcard(), mask)
}

func TestResolveIPv4SixteenByteMask(t *testing.T) {
	lookup := MaskLookupFunc(func(net.IP) (net.IPMask, error) {
		return net.IPMask(net.ParseIP("255.255.0.0")), nil
	})

	mask, err := ResolveIPv4(net.ParseIP("172.16.4.4"), lookup)
	require.NoError(t, err)
	assert.Equal(t, net.IPMask{255, 255, 0, 0}, mask)
}

func TestResolveIPv4LookupFault(t *testing.T) {
	fault := fmt.Errorf("netlink dump interrupted")
	lookup := MaskLookupFunc(func(net.IP) (net.IPMask, error) {
		return nil, fault
	})

	mask, err := ResolveIPv4(net.ParseIP("172.16.4.4"), lookup)
	assert.Nil(t, mask)
	assert.ErrorIs(t, err, fault)
}

func TestResolveIPv6NotConsulted(t *testing.T) {
	called := false
	lookup := MaskLookupFunc(func(net.IP) (net.IPMask, error) {
		called = true
		return nil, nil
	})

	mask, err := ResolveIPv4(net.ParseIP("2001:db8::1"), lookup)
	require.NoError(t, err)
	assert.Nil(t, mask)
	assert.False(t, called)
}

func TestWildcardIsFreshCopy(t *testing.T) {
	a := Wildcard()
	a[0] = 0
	assert.Equal(t, net.IPMask{255, 255, 255, 255}, Wildcard())
}
