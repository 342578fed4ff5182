package config

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/bnema/wgate/internal/domain"
)

// Proxmox reserves IDs below 100.
const (
	MinContainerID = 100
	MaxContainerID = 999999999
)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Bridge.Name == "" {
		add("bridge.name is required")
	}
	bridge, err := netip.ParsePrefix(c.Bridge.CIDR)
	if err != nil {
		add("bridge.cidr %q: %v", c.Bridge.CIDR, err)
	}
	if _, err := netip.ParsePrefix(c.VPN.Subnet); err != nil {
		add("vpn.subnet %q: %v", c.VPN.Subnet, err)
	}

	if c.Template.Storage == "" || c.Template.Name == "" {
		add("template.storage and template.name are required")
	}

	seenIDs := make(map[int]string)
	seenIPs := make(map[netip.Addr]string)
	if bridge.IsValid() {
		seenIPs[bridge.Addr()] = "bridge.cidr"
	}
	checkContainer := func(field string, id int, ip string) {
		if id < MinContainerID || id > MaxContainerID {
			add("%s.id %d out of range [%d, %d]", field, id, MinContainerID, MaxContainerID)
		}
		if other, ok := seenIDs[id]; ok {
			add("%s.id %d already used by %s", field, id, other)
		}
		seenIDs[id] = field

		p, err := netip.ParsePrefix(ip)
		if err != nil {
			add("%s.ip %q: %v", field, ip, err)
			return
		}
		if bridge.IsValid() && !bridge.Masked().Contains(p.Addr()) {
			add("%s.ip %s is outside bridge subnet %s", field, p.Addr(), bridge.Masked())
		}
		if other, ok := seenIPs[p.Addr()]; ok {
			add("%s.ip %s already used by %s", field, p.Addr(), other)
		}
		seenIPs[p.Addr()] = field
	}

	checkContainer("gateway", c.Gateway.ID, c.Gateway.IP)
	if c.Gateway.Storage == "" {
		add("gateway.storage is required")
	}
	if c.Gateway.MemoryMB <= 0 || c.Gateway.Cores <= 0 {
		add("gateway.memory and gateway.cores must be positive")
	}
	for i, d := range c.Downstream {
		checkContainer(fmt.Sprintf("downstream[%d]", i), d.ID, d.IP)
	}

	if c.VPN.HostConfigDir == "" || c.VPN.ContainerConfigDir == "" {
		add("vpn.hostConfigDir and vpn.containerConfigDir are required")
	}
	if c.VPN.Interface == "" || c.VPN.NATInterface == "" {
		add("vpn.interface and vpn.natInterface are required")
	}
	if c.VPN.RestartSec < 0 {
		add("vpn.restartSec must not be negative")
	}

	if c.Readiness.Interval <= 0 || c.Readiness.Timeout <= 0 {
		add("readiness.interval and readiness.timeout must be positive")
	}
	if c.Readiness.Backoff < 1 {
		add("readiness.backoff must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
