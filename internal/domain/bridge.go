package domain

import (
	"fmt"
	"net/netip"
)

// BridgeConfig describes the internal bridge the containers are attached to.
type BridgeConfig struct {
	Name string
	CIDR string // host address on the bridge, e.g. 10.10.10.1/24
}

// Prefix parses the bridge CIDR.
func (b BridgeConfig) Prefix() (netip.Prefix, error) {
	p, err := netip.ParsePrefix(b.CIDR)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("bridge %s: invalid cidr %q: %w", b.Name, b.CIDR, err)
	}
	return p, nil
}

// Subnet returns the masked network of the bridge, e.g. 10.10.10.0/24.
func (b BridgeConfig) Subnet() (netip.Prefix, error) {
	p, err := b.Prefix()
	if err != nil {
		return netip.Prefix{}, err
	}
	return p.Masked(), nil
}
