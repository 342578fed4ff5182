package provision

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
)

// Step is one named provisioning action.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// GatewaySteps returns the ordered steps that build the gateway.
func (s *Service) GatewaySteps() []Step {
	cfg := s.config
	id := cfg.Gateway.ID
	template := cfg.Template

	return []Step{
		{"ensure bridge", func(ctx context.Context) error {
			return s.EnsureBridge(ctx, cfg.Bridge)
		}},
		{"ensure host NAT", s.EnsureHostNAT},
		{"ensure template", func(ctx context.Context) error {
			resolved, err := s.EnsureTemplate(ctx, cfg.Template)
			template = resolved
			return err
		}},
		{"recreate gateway", func(ctx context.Context) error {
			return s.RecreateContainer(ctx, cfg.Gateway, template)
		}},
		{"wait for gateway", func(ctx context.Context) error {
			return s.WaitUntilResponsive(ctx, id)
		}},
		{"configure forwarding", func(ctx context.Context) error {
			return s.ConfigureForwarding(ctx, id)
		}},
		{"install packages", func(ctx context.Context) error {
			return s.InstallPackages(ctx, id, cfg.Packages)
		}},
		{"seed tunnel profiles", func(ctx context.Context) error {
			_, err := s.SeedConfigFiles(ctx, id, cfg.VPN)
			return err
		}},
		{"install tunnel service", func(ctx context.Context) error {
			return s.InstallTunnelService(ctx, id, cfg.Tunnel)
		}},
		{"configure NAT", func(ctx context.Context) error {
			return s.ConfigureNAT(ctx, id, cfg.Subnet, cfg.NATInterface)
		}},
	}
}

// DownstreamSteps returns the steps that build one downstream container
// routed through gatewayIP.
func (s *Service) DownstreamSteps(spec domain.ContainerSpec, gatewayIP string) []Step {
	spec.Gateway = gatewayIP
	template := s.config.Template
	label := fmt.Sprintf("downstream %d", spec.ID)

	return []Step{
		{label + ": ensure template", func(ctx context.Context) error {
			resolved, err := s.EnsureTemplate(ctx, s.config.Template)
			template = resolved
			return err
		}},
		{label + ": recreate", func(ctx context.Context) error {
			return s.RecreateContainer(ctx, spec, template)
		}},
		{label + ": wait", func(ctx context.Context) error {
			return s.WaitUntilResponsive(ctx, spec.ID)
		}},
	}
}

func (s *Service) runSteps(ctx context.Context, steps []Step) error {
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", st.Name, err)
		}
		s.step(st.Name)
		if err := st.Run(ctx); err != nil {
			return fmt.Errorf("%s: %w", st.Name, err)
		}
	}
	return nil
}

// GatewayAddr returns the gateway's bridge address, the default route of
// downstream containers.
func (s *Service) GatewayAddr() (string, error) {
	p, err := netip.ParsePrefix(s.config.Gateway.IP)
	if err != nil {
		return "", fmt.Errorf("invalid gateway address %q: %w", s.config.Gateway.IP, err)
	}
	return p.Addr().String(), nil
}

// ProvisionGateway builds the bridge, host NAT and the gateway container with
// its tunnel. Every step is safe to rerun.
func (s *Service) ProvisionGateway(ctx context.Context) error {
	if err := s.runSteps(ctx, s.GatewaySteps()); err != nil {
		return err
	}
	logger.Info("Gateway provisioned", "id", s.config.Gateway.ID, "ip", s.config.Gateway.IP)
	return nil
}

// ProvisionDownstream creates a container whose default route is gatewayIP.
func (s *Service) ProvisionDownstream(ctx context.Context, spec domain.ContainerSpec, gatewayIP string) error {
	if err := s.runSteps(ctx, s.DownstreamSteps(spec, gatewayIP)); err != nil {
		return err
	}
	logger.Info("Downstream container provisioned", "id", spec.ID, "ip", spec.IP, "gateway", gatewayIP)
	return nil
}

// Run provisions the gateway, then each downstream container in order.
func (s *Service) Run(ctx context.Context, downstream []domain.ContainerSpec) error {
	if err := s.ProvisionGateway(ctx); err != nil {
		return err
	}
	gw, err := s.GatewayAddr()
	if err != nil {
		return err
	}
	for _, spec := range downstream {
		if err := s.ProvisionDownstream(ctx, spec, gw); err != nil {
			return err
		}
	}
	return nil
}

// CommandLog exposes the commands a recording runner has seen.
type CommandLog interface {
	Commands() []out.Command
}

// PlannedStep is a step with the commands it issued.
type PlannedStep struct {
	Name     string
	Commands []string
}

// Plan runs every step against a service whose adapters record instead of
// execute, attributing the recorded commands to the step that issued them.
// On failure the steps planned so far are returned with the error.
func (s *Service) Plan(ctx context.Context, log CommandLog, downstream []domain.ContainerSpec) ([]PlannedStep, error) {
	steps := s.GatewaySteps()
	gw, err := s.GatewayAddr()
	if err != nil {
		return nil, err
	}
	for _, spec := range downstream {
		steps = append(steps, s.DownstreamSteps(spec, gw)...)
	}

	planned := make([]PlannedStep, 0, len(steps))
	for _, st := range steps {
		before := len(log.Commands())
		err := st.Run(ctx)

		recorded := log.Commands()[before:]
		lines := make([]string, 0, len(recorded))
		for _, c := range recorded {
			lines = append(lines, c.String())
		}
		planned = append(planned, PlannedStep{Name: st.Name, Commands: lines})
		if err != nil {
			return planned, fmt.Errorf("%s: %w", st.Name, err)
		}
	}
	return planned, nil
}
