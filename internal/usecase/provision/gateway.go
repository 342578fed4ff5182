package provision

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
)

// sysctl.conf is rewritten so a commented or differing ip_forward line
// becomes active, and the line is appended when absent.
const persistForwarding = `f=/etc/sysctl.conf
touch "$f"
if grep -Eq '^[[:space:]]*#?[[:space:]]*net\.ipv4\.ip_forward[[:space:]]*=' "$f"; then
	sed -i -E 's/^[[:space:]]*#?[[:space:]]*net\.ipv4\.ip_forward[[:space:]]*=.*/net.ipv4.ip_forward=1/' "$f"
else
	echo 'net.ipv4.ip_forward=1' >> "$f"
fi`

// ConfigureForwarding enables IPv4 forwarding in the container, now and
// across reboots.
func (s *Service) ConfigureForwarding(ctx context.Context, id int) error {
	if _, err := s.exec(ctx, id, "sysctl", "-w", "net.ipv4.ip_forward=1"); err != nil {
		return fmt.Errorf("failed to enable forwarding: %w", err)
	}
	if _, err := s.exec(ctx, id, "sh", "-c", persistForwarding); err != nil {
		return fmt.Errorf("failed to persist forwarding: %w", err)
	}
	if _, err := s.exec(ctx, id, "sysctl", "-p"); err != nil {
		return fmt.Errorf("failed to reload sysctl: %w", err)
	}
	return nil
}

// InstallPackages installs packages with apt in the container.
func (s *Service) InstallPackages(ctx context.Context, id int, packages []string) error {
	if len(packages) == 0 {
		return nil
	}
	if _, err := s.exec(ctx, id, "apt-get", "update"); err != nil {
		return fmt.Errorf("failed to update package index: %w", err)
	}
	args := append([]string{"env", "DEBIAN_FRONTEND=noninteractive", "apt-get", "install", "-y"}, packages...)
	if _, err := s.exec(ctx, id, args...); err != nil {
		return fmt.Errorf("failed to install %s: %w", strings.Join(packages, " "), err)
	}
	logger.Info("Packages installed", "id", id, "packages", packages)
	return nil
}

// listProfiles returns the names of the files in dir matching pattern inside
// the container. A missing directory yields no names.
func (s *Service) listProfiles(ctx context.Context, id int, dir, pattern string) ([]string, error) {
	find := shellquote.Join("find", dir, "-maxdepth", "1", "-type", "f", "-name", pattern)
	stdout, err := s.exec(ctx, id, "sh", "-c", find+" 2>/dev/null || true")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, path.Base(line))
		}
	}
	return names, nil
}

// hostProfiles returns the host files matching the set's pattern.
func hostProfiles(set domain.VPNConfigSet) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(set.HostDir, set.Pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid profile pattern %q: %w", set.Pattern, err)
	}
	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	return files, nil
}

// SeedConfigFiles copies the host's tunnel profiles into the container when
// its profile directory holds none. Existing profiles are left untouched.
func (s *Service) SeedConfigFiles(ctx context.Context, id int, set domain.VPNConfigSet) (int, error) {
	existing, err := s.listProfiles(ctx, id, set.ContainerDir, set.Pattern)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		logger.Info("Tunnel profiles already present, not copying", "id", id, "count", len(existing))
		return 0, nil
	}

	files, err := hostProfiles(set)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("%w: nothing matches %s in %s", domain.ErrNoTunnelConfigs, set.Pattern, set.HostDir)
	}

	if _, err := s.exec(ctx, id, "mkdir", "-p", set.ContainerDir); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", set.ContainerDir, err)
	}
	for _, f := range files {
		dst := path.Join(set.ContainerDir, filepath.Base(f))
		if err := s.containers.Push(ctx, id, f, dst, 0600); err != nil {
			return 0, err
		}
	}
	logger.Info("Tunnel profiles copied", "id", id, "count", len(files))
	return len(files), nil
}

// InstallTunnelService writes the profile selector and its systemd unit, then
// enables and restarts the unit.
func (s *Service) InstallTunnelService(ctx context.Context, id int, svc domain.TunnelService) error {
	script, err := RenderTunnelScript(svc)
	if err != nil {
		return err
	}
	unit, err := RenderTunnelUnit(svc)
	if err != nil {
		return err
	}

	if _, err := s.exec(ctx, id, "mkdir", "-p", path.Dir(svc.ScriptPath)); err != nil {
		return fmt.Errorf("failed to create %s: %w", path.Dir(svc.ScriptPath), err)
	}
	if err := s.containers.WriteFile(ctx, id, svc.ScriptPath, script, 0755); err != nil {
		return err
	}
	if err := s.containers.WriteFile(ctx, id, svc.UnitPath(), unit, 0644); err != nil {
		return err
	}

	for _, args := range [][]string{
		{"systemctl", "daemon-reload"},
		{"systemctl", "enable", svc.UnitName},
		{"systemctl", "restart", svc.UnitName},
	} {
		if _, err := s.exec(ctx, id, args...); err != nil {
			return fmt.Errorf("failed to %s: %w", strings.Join(args, " "), err)
		}
	}
	logger.Info("Tunnel service started", "id", id, "unit", svc.UnitName)
	return nil
}

// GatewayRules returns the desired rule set inside the gateway container.
func (s *Service) GatewayRules(subnet, natInterface string) domain.FirewallRuleSet {
	rules := []domain.FirewallRule{domain.MasqueradeRule(subnet, natInterface)}
	rules = append(rules, domain.ForwardRules(s.config.LANInterface, s.config.Tunnel.Interface)...)
	return domain.FirewallRuleSet{Scope: "gateway", Rules: rules}
}

// ConfigureNAT reconciles the gateway's NAT and forward rules so downstream
// traffic from subnet leaves masqueraded through natInterface.
func (s *Service) ConfigureNAT(ctx context.Context, id int, subnet, natInterface string) error {
	result, err := s.reconcile(ctx, s.firewalls.Container(id), s.GatewayRules(subnet, natInterface))
	if err != nil {
		return fmt.Errorf("failed to configure NAT: %w", err)
	}
	logger.Info("Gateway NAT reconciled", "id", id, "added", result.Added, "removed", result.Removed)
	return nil
}
