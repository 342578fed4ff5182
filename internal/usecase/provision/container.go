package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
)

// RecreateContainer destroys any container holding spec.ID, then creates and
// starts a fresh one.
func (s *Service) RecreateContainer(ctx context.Context, spec domain.ContainerSpec, template domain.TemplateRef) error {
	status, err := s.containers.Status(ctx, spec.ID)
	if err != nil {
		return err
	}

	if status.Exists() {
		logger.Info("Replacing existing container", "id", spec.ID, "status", status)
		if status != domain.ContainerStatusStopped {
			if err := s.containers.Stop(ctx, spec.ID); err != nil {
				logger.Warn("Failed to stop container, destroying anyway", "id", spec.ID, "err", err)
			}
		}
		if err := s.containers.Destroy(ctx, spec.ID); err != nil {
			return err
		}
	}

	if err := s.containers.Create(ctx, spec, template); err != nil {
		return err
	}
	if err := s.containers.Start(ctx, spec.ID); err != nil {
		return err
	}
	logger.Info("Container started", "id", spec.ID, "hostname", spec.Hostname, "ip", spec.IP)
	return nil
}

// WaitUntilResponsive polls the container with a no-op command until it
// succeeds. The wait between probes grows by the backoff factor up to the
// maximum interval; the whole wait is bounded by the readiness timeout.
func (s *Service) WaitUntilResponsive(ctx context.Context, id int) error {
	r := s.config.Readiness
	waitCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	interval := r.Interval
	var lastErr error
	for attempt := 1; ; attempt++ {
		_, err := s.containers.Exec(waitCtx, id, []string{"true"})
		if err == nil {
			logger.Debug("Container responsive", "id", id, "attempts", attempt)
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("waiting for container %d: %w", id, ctx.Err())
		}
		if waitCtx.Err() != nil {
			return fmt.Errorf("%w: container %d after %d attempts: %v", domain.ErrContainerNotReady, id, attempt, lastErr)
		}

		if s.hooks.OnPoll != nil {
			s.hooks.OnPoll(id, attempt, interval)
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
		case <-waitCtx.Done():
			timer.Stop()
			if ctx.Err() != nil {
				return fmt.Errorf("waiting for container %d: %w", id, ctx.Err())
			}
			return fmt.Errorf("%w: container %d after %d attempts: %v", domain.ErrContainerNotReady, id, attempt, lastErr)
		}

		interval = nextInterval(interval, r.Backoff, r.MaxInterval)
	}
}

func nextInterval(current time.Duration, backoff float64, max time.Duration) time.Duration {
	if backoff <= 1 {
		return current
	}
	next := time.Duration(float64(current) * backoff)
	if max > 0 && next > max {
		return max
	}
	return next
}
