package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/wgate/internal/domain"
)

// ContainerReport is the observed state of a managed container.
type ContainerReport struct {
	Role     string
	ID       int
	Hostname string
	IP       string
	Status   domain.ContainerStatus
}

// Report is the observed state of everything the provisioner manages.
type Report struct {
	Bridge       domain.BridgeConfig
	BridgeActive bool
	Containers   []ContainerReport
	TunnelUnit   string
	TunnelState  string
}

// Status inspects the bridge, the gateway with its tunnel unit, and the
// declared downstream containers. Containers present on the host but not
// declared are listed last with the role "other". It changes nothing.
func (s *Service) Status(ctx context.Context, downstream []domain.ContainerSpec) (*Report, error) {
	cfg := s.config
	report := &Report{Bridge: cfg.Bridge, TunnelUnit: cfg.Tunnel.UnitName, TunnelState: "unknown"}

	active, err := s.network.BridgeActive(ctx, cfg.Bridge)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect bridge %s: %w", cfg.Bridge.Name, err)
	}
	report.BridgeActive = active

	infos, err := s.containers.List(ctx)
	if err != nil {
		return nil, err
	}
	listed := make(map[int]domain.ContainerInfo, len(infos))
	for _, info := range infos {
		listed[info.ID] = info
	}

	specs := append([]domain.ContainerSpec{cfg.Gateway}, downstream...)
	for i, spec := range specs {
		status := domain.ContainerStatusAbsent
		if info, ok := listed[spec.ID]; ok {
			status = info.Status
			delete(listed, spec.ID)
		}
		role := "downstream"
		if i == 0 {
			role = "gateway"
		}
		report.Containers = append(report.Containers, ContainerReport{
			Role:     role,
			ID:       spec.ID,
			Hostname: spec.Hostname,
			IP:       spec.IP,
			Status:   status,
		})
	}

	for _, info := range infos {
		if _, ok := listed[info.ID]; !ok {
			continue
		}
		report.Containers = append(report.Containers, ContainerReport{
			Role:     "other",
			ID:       info.ID,
			Hostname: info.Name,
			Status:   info.Status,
		})
	}

	if report.Containers[0].Status == domain.ContainerStatusRunning {
		// is-active exits non-zero for anything but "active" and still
		// prints the state.
		res, _ := s.containers.Exec(ctx, cfg.Gateway.ID, []string{"systemctl", "is-active", cfg.Tunnel.UnitName})
		if res != nil {
			if state := strings.TrimSpace(string(res.Stdout)); state != "" {
				report.TunnelState = state
			}
		}
	} else {
		report.TunnelState = "inactive"
	}
	return report, nil
}
