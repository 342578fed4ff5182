package cli

import (
	"github.com/bnema/wgate/internal/adapters/out/ifupdown"
	"github.com/bnema/wgate/internal/adapters/out/iptables"
	"github.com/bnema/wgate/internal/adapters/out/pct"
	"github.com/bnema/wgate/internal/adapters/out/pveam"
	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/config"
	"github.com/bnema/wgate/internal/usecase/provision"
)

// ProvisionConfig maps the file configuration onto the provisioner settings.
func ProvisionConfig(cfg *config.Config) provision.Config {
	return provision.Config{
		Bridge:       cfg.BridgeSpec(),
		Uplink:       cfg.Host.UplinkInterface,
		Template:     cfg.TemplateRef(),
		Gateway:      cfg.GatewaySpec(),
		VPN:          cfg.VPNConfigSet(),
		Tunnel:       cfg.TunnelService(),
		NATInterface: cfg.VPN.NATInterface,
		LANInterface: cfg.VPN.LANInterface,
		Subnet:       cfg.VPN.Subnet,
		Packages:     cfg.VPN.Packages,
		Firewall: provision.FirewallPolicy{
			Comment: cfg.Firewall.Comment,
			Prune:   cfg.Firewall.Prune,
			Persist: cfg.Firewall.Persist,
		},
		Readiness: provision.Readiness{
			Interval:    cfg.Readiness.Interval,
			MaxInterval: cfg.Readiness.MaxInterval,
			Backoff:     cfg.Readiness.Backoff,
			Timeout:     cfg.Readiness.Timeout,
		},
	}
}

// newService builds the provisioner over runner. With dryRun set, host file
// writes go through the runner too.
func (a *App) newService(runner out.CommandRunner, dryRun bool, opts ...provision.Option) *provision.Service {
	cfg := a.Config
	network := ifupdown.NewNetwork(runner, a.Links, ifupdown.Config{
		InterfacesFile: cfg.Host.InterfacesFile,
		InterfacesDir:  cfg.Host.InterfacesDir,
		ProcRoot:       cfg.Host.ProcRoot,
		DryRun:         dryRun,
	})
	return provision.NewService(
		pct.NewManager(runner),
		pveam.NewCatalog(runner, cfg.Host.TemplateCacheDir),
		network,
		iptables.NewProvider(runner),
		ProvisionConfig(cfg),
		opts...,
	)
}
