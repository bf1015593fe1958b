// Package netplan holds the pure CIDR arithmetic behind the network
// topology builder: containment checks and carving a network block
// into equally sized subnet blocks.
package netplan

import (
	"fmt"
	"net/netip"
)

// Contains reports whether sub is a strict sub-range of network: a
// longer prefix whose range is fully enclosed. A block is not a strict
// sub-range of itself.
func Contains(network, sub string) (bool, error) {
	n, err := netip.ParsePrefix(network)
	if err != nil {
		return false, fmt.Errorf("invalid network block %q: %w", network, err)
	}
	s, err := netip.ParsePrefix(sub)
	if err != nil {
		return false, fmt.Errorf("invalid subnet block %q: %w", sub, err)
	}
	n, s = n.Masked(), s.Masked()
	return s.Bits() > n.Bits() && n.Contains(s.Addr()), nil
}

// ValidateSubnets fails if any subnet block is not a strict sub-range
// of the network block.
func ValidateSubnets(network string, subnets []string) error {
	for _, sub := range subnets {
		ok, err := Contains(network, sub)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("subnet block %s is not a strict sub-range of network block %s", sub, network)
		}
	}
	return nil
}

// Carve returns count consecutive /newBits blocks out of network,
// skipping the first start blocks. Only IPv4 blocks are supported;
// the demo topologies use nothing else.
func Carve(network string, newBits, start, count int) ([]string, error) {
	base, err := netip.ParsePrefix(network)
	if err != nil {
		return nil, fmt.Errorf("invalid network block %q: %w", network, err)
	}
	if !base.Addr().Is4() {
		return nil, fmt.Errorf("network block %q: only IPv4 blocks can be carved", network)
	}
	if newBits <= base.Bits() || newBits > 32 {
		return nil, fmt.Errorf("cannot carve /%d subnets from %s", newBits, network)
	}
	avail := 1 << (newBits - base.Bits())
	if start+count > avail {
		return nil, fmt.Errorf("network %s holds %d /%d subnets, need %d starting at %d",
			network, avail, newBits, count, start)
	}

	b := base.Masked().Addr().As4()
	first := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	step := uint32(1) << (32 - newBits)

	out := make([]string, count)
	for i := 0; i < count; i++ {
		v := first + uint32(start+i)*step
		addr := netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		out[i] = netip.PrefixFrom(addr, newBits).String()
	}
	return out, nil
}
