package config

import (
	"fmt"
	"net/netip"

	"github.com/bnema/wgate/internal/domain"
)

// BridgeSpec returns the bridge definition.
func (c *Config) BridgeSpec() domain.BridgeConfig {
	return domain.BridgeConfig{Name: c.Bridge.Name, CIDR: c.Bridge.CIDR}
}

// TemplateRef returns the template reference as configured (possibly a prefix).
func (c *Config) TemplateRef() domain.TemplateRef {
	return domain.TemplateRef{Storage: c.Template.Storage, Name: c.Template.Name}
}

// GatewaySpec returns the gateway container spec. Its default route is the
// host's address on the bridge.
func (c *Config) GatewaySpec() domain.ContainerSpec {
	spec := domain.ContainerSpec{
		ID:           c.Gateway.ID,
		Hostname:     c.Gateway.Hostname,
		Bridge:       c.Bridge.Name,
		IP:           c.Gateway.IP,
		Storage:      c.Gateway.Storage,
		MemoryMB:     c.Gateway.MemoryMB,
		Cores:        c.Gateway.Cores,
		Unprivileged: c.Gateway.Unprivileged,
		OnBoot:       c.Gateway.OnBoot,
	}
	if p, err := netip.ParsePrefix(c.Bridge.CIDR); err == nil {
		spec.Gateway = p.Addr().String()
	}
	return spec
}

// GatewayAddr returns the gateway container's address on the bridge.
func (c *Config) GatewayAddr() string {
	if p, err := netip.ParsePrefix(c.Gateway.IP); err == nil {
		return p.Addr().String()
	}
	return ""
}

// DownstreamSpec builds a downstream container spec, inheriting resources
// from the gateway where the entry leaves them unset. The default route is
// filled in by the provisioner.
func (c *Config) DownstreamSpec(d DownstreamConfig) domain.ContainerSpec {
	spec := domain.ContainerSpec{
		ID:           d.ID,
		Hostname:     d.Hostname,
		Bridge:       c.Bridge.Name,
		IP:           d.IP,
		Storage:      c.Gateway.Storage,
		MemoryMB:     d.MemoryMB,
		Cores:        d.Cores,
		Unprivileged: c.Gateway.Unprivileged,
		OnBoot:       c.Gateway.OnBoot,
	}
	if spec.Hostname == "" {
		spec.Hostname = fmt.Sprintf("wg-client-%d", d.ID)
	}
	if spec.MemoryMB == 0 {
		spec.MemoryMB = c.Gateway.MemoryMB
	}
	if spec.Cores == 0 {
		spec.Cores = c.Gateway.Cores
	}
	return spec
}

// DownstreamSpecs returns the declared downstream containers.
func (c *Config) DownstreamSpecs() []domain.ContainerSpec {
	specs := make([]domain.ContainerSpec, 0, len(c.Downstream))
	for _, d := range c.Downstream {
		specs = append(specs, c.DownstreamSpec(d))
	}
	return specs
}

// VPNConfigSet returns the profile pool locations.
func (c *Config) VPNConfigSet() domain.VPNConfigSet {
	return domain.VPNConfigSet{
		HostDir:      c.VPN.HostConfigDir,
		ContainerDir: c.VPN.ContainerConfigDir,
		Pattern:      c.VPN.Pattern,
	}
}

// TunnelService returns the supervised tunnel unit description.
func (c *Config) TunnelService() domain.TunnelService {
	return domain.TunnelService{
		UnitName:   c.VPN.UnitName,
		ScriptPath: c.VPN.ScriptPath,
		ConfigDir:  c.VPN.ContainerConfigDir,
		Pattern:    c.VPN.Pattern,
		Interface:  c.VPN.Interface,
		RestartSec: c.VPN.RestartSec,
	}
}

// NextDownstream suggests an ID and address for a new downstream container:
// the first ID after the gateway and the first bridge address after the
// gateway's that no configured container uses.
func (c *Config) NextDownstream() (int, string) {
	usedIDs := map[int]bool{c.Gateway.ID: true}
	usedIPs := make(map[netip.Addr]bool)
	for _, ip := range []string{c.Bridge.CIDR, c.Gateway.IP} {
		if p, err := netip.ParsePrefix(ip); err == nil {
			usedIPs[p.Addr()] = true
		}
	}
	for _, d := range c.Downstream {
		usedIDs[d.ID] = true
		if p, err := netip.ParsePrefix(d.IP); err == nil {
			usedIPs[p.Addr()] = true
		}
	}

	id := c.Gateway.ID + 1
	for usedIDs[id] {
		id++
	}

	gw, err := netip.ParsePrefix(c.Gateway.IP)
	if err != nil {
		return id, ""
	}
	subnet := gw.Masked()
	for addr := gw.Addr().Next(); addr.IsValid() && subnet.Contains(addr); addr = addr.Next() {
		if !usedIPs[addr] && !isBroadcast(subnet, addr) {
			return id, netip.PrefixFrom(addr, gw.Bits()).String()
		}
	}
	return id, ""
}

func isBroadcast(subnet netip.Prefix, addr netip.Addr) bool {
	if !addr.Is4() || subnet.Bits() >= 31 {
		return false
	}
	return !subnet.Contains(addr.Next())
}
