package provision

import (
	"context"
	"fmt"

	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
)

// EnsureBridge makes sure the host bridge is defined and up with its address.
// The definition is written at most once.
func (s *Service) EnsureBridge(ctx context.Context, bridge domain.BridgeConfig) error {
	defined, err := s.network.BridgeDefined(ctx, bridge.Name)
	if err != nil {
		return fmt.Errorf("failed to inspect bridge %s: %w", bridge.Name, err)
	}

	if !defined {
		if err := s.network.WriteBridge(ctx, bridge); err != nil {
			return err
		}
		return s.network.Activate(ctx, bridge.Name)
	}

	active, err := s.network.BridgeActive(ctx, bridge)
	if err != nil {
		return fmt.Errorf("failed to inspect bridge %s: %w", bridge.Name, err)
	}
	if active {
		logger.Debug("Bridge already active", "bridge", bridge.Name)
		return nil
	}

	logger.Info("Bridge defined but not active, bringing it up", "bridge", bridge.Name)
	return s.network.Activate(ctx, bridge.Name)
}

// HostRules returns the desired host rule set.
func (s *Service) HostRules() domain.FirewallRuleSet {
	rules := []domain.FirewallRule{domain.MasqueradeRule(s.config.Subnet, s.config.Uplink)}
	rules = append(rules, domain.ForwardRules(s.config.Bridge.Name, s.config.Uplink)...)
	return domain.FirewallRuleSet{Scope: "host", Rules: rules}
}

// EnsureHostNAT enables forwarding on the host and reconciles its NAT rules so
// the bridge subnet reaches the uplink.
func (s *Service) EnsureHostNAT(ctx context.Context) error {
	if err := s.network.EnableForwarding(ctx); err != nil {
		return err
	}
	result, err := s.reconcile(ctx, s.firewalls.Host(), s.HostRules())
	if err != nil {
		return fmt.Errorf("failed to configure host NAT: %w", err)
	}
	logger.Info("Host NAT reconciled", "added", result.Added, "removed", result.Removed)
	return nil
}
