package provision

import (
	"context"
	"fmt"
	"path"
	"slices"

	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
)

// Rotate switches the gateway tunnel to profile, or to a profile picked
// uniformly at random when profile is empty, and returns the profile used.
func (s *Service) Rotate(ctx context.Context, profile string) (string, error) {
	id := s.config.Gateway.ID
	svc := s.config.Tunnel

	profiles, err := s.listProfiles(ctx, id, svc.ConfigDir, svc.Pattern)
	if err != nil {
		return "", err
	}
	if len(profiles) == 0 {
		return "", fmt.Errorf("%w: container %d has none in %s", domain.ErrNoTunnelConfigs, id, svc.ConfigDir)
	}

	chosen := profile
	if chosen == "" {
		chosen, err = domain.PickTunnelConfig(profiles, s.rng)
		if err != nil {
			return "", err
		}
	} else if !slices.Contains(profiles, chosen) {
		return "", fmt.Errorf("%w: %s", domain.ErrProfileNotFound, chosen)
	}

	if _, err := s.exec(ctx, id, "wg-quick", "down", svc.Interface); err != nil {
		logger.Debug("wg-quick down failed, continuing", "iface", svc.Interface, "err", err)
	}
	if _, err := s.exec(ctx, id, "install", "-m", "0600", path.Join(svc.ConfigDir, chosen), svc.ActiveConfigPath()); err != nil {
		return "", fmt.Errorf("failed to install profile %s: %w", chosen, err)
	}
	if _, err := s.exec(ctx, id, "wg-quick", "up", svc.Interface); err != nil {
		return "", fmt.Errorf("failed to bring up %s with %s: %w", svc.Interface, chosen, err)
	}

	logger.Info("Tunnel rotated", "id", id, "profile", chosen)
	return chosen, nil
}
