// Package provision implements the gateway provisioning use case: host bridge
// and NAT, the WireGuard gateway container, and downstream containers routed
// through it.
package provision

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
)

// Readiness bounds the wait for a freshly started container.
type Readiness struct {
	Interval    time.Duration
	MaxInterval time.Duration
	Backoff     float64
	Timeout     time.Duration
}

// FirewallPolicy controls how managed rules are reconciled.
type FirewallPolicy struct {
	Comment string
	Prune   bool
	Persist bool
}

// Config holds the resolved provisioning settings.
type Config struct {
	Bridge       domain.BridgeConfig
	Uplink       string
	Template     domain.TemplateRef
	Gateway      domain.ContainerSpec
	VPN          domain.VPNConfigSet
	Tunnel       domain.TunnelService
	NATInterface string
	LANInterface string
	Subnet       string
	Packages     []string
	Firewall     FirewallPolicy
	Readiness    Readiness
}

// Hooks lets front-ends follow progress.
type Hooks struct {
	// OnStep is called before each provisioning step.
	OnStep func(name string)
	// OnPoll is called after each failed readiness probe with the wait
	// before the next one.
	OnPoll func(id, attempt int, next time.Duration)
}

// Service orchestrates provisioning over the host ports.
type Service struct {
	containers out.ContainerManager
	catalog    out.TemplateCatalog
	network    out.HostNetwork
	firewalls  out.FirewallProvider
	config     Config
	hooks      Hooks
	rng        *rand.Rand
}

// Option configures the Service.
type Option func(*Service)

// WithHooks sets progress callbacks.
func WithHooks(hooks Hooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithRand sets the source used to pick tunnel profiles.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		s.rng = rng
	}
}

// NewService creates a provisioning service.
func NewService(
	containers out.ContainerManager,
	catalog out.TemplateCatalog,
	network out.HostNetwork,
	firewalls out.FirewallProvider,
	config Config,
	opts ...Option,
) *Service {
	s := &Service{
		containers: containers,
		catalog:    catalog,
		network:    network,
		firewalls:  firewalls,
		config:     config,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the settings the service runs with.
func (s *Service) Config() Config {
	return s.config
}

func (s *Service) step(name string) {
	logger.Info("Step", "name", name)
	if s.hooks.OnStep != nil {
		s.hooks.OnStep(name)
	}
}

// exec runs a command in a container and returns its trimmed stdout.
func (s *Service) exec(ctx context.Context, id int, cmd ...string) (string, error) {
	res, err := s.containers.Exec(ctx, id, cmd)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", nil
	}
	return string(res.Stdout), nil
}
