package ifprops

import (
	"iter"
	"net"
)

// UnicastAddressInfo is a unicast address with its subnet mask. NetMask is
// always set for IPv4 (resolved or the wildcard default) and nil for IPv6.
type UnicastAddressInfo struct {
	Address net.IP
	NetMask net.IPMask
}

// PrefixLength returns the mask's leading one bits, or -1 without a mask or
// when the mask is not canonical.
func (u UnicastAddressInfo) PrefixLength() int {
	if u.NetMask == nil {
		return -1
	}
	ones, bits := u.NetMask.Size()
	if bits == 0 {
		return -1
	}
	return ones
}

func (u UnicastAddressInfo) clone() UnicastAddressInfo {
	info := UnicastAddressInfo{Address: copyIP(u.Address)}
	if u.NetMask != nil {
		info.NetMask = append(net.IPMask(nil), u.NetMask...)
	}
	return info
}

// MulticastAddressInfo is a multicast group address joined by the interface.
type MulticastAddressInfo struct {
	Address net.IP
}

func (m MulticastAddressInfo) clone() MulticastAddressInfo {
	return MulticastAddressInfo{Address: copyIP(m.Address)}
}

// entry is an element that hands out deep copies of itself
type entry[T any] interface {
	clone() T
}

// Collection is an ordered, read-only sequence. It is filled once while the
// provider builds it and never changes afterwards; every accessor returns
// copies of the stored addresses.
type Collection[T entry[T]] struct {
	items []T
}

type (
	UnicastAddressCollection   = Collection[UnicastAddressInfo]
	MulticastAddressCollection = Collection[MulticastAddressInfo]
)

func (c *Collection[T]) add(item T) {
	c.items = append(c.items, item)
}

// Len returns the number of entries.
func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// At returns entry i. It panics when i is out of range.
func (c *Collection[T]) At(i int) T {
	return c.items[i].clone()
}

// All iterates the entries in insertion order.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if c == nil {
			return
		}
		for i, item := range c.items {
			if !yield(i, item.clone()) {
				return
			}
		}
	}
}

// Slice returns a copy of the entries.
func (c *Collection[T]) Slice() []T {
	if c == nil {
		return nil
	}
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = item.clone()
	}
	return out
}
