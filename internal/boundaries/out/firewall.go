package out

import (
	"context"

	"github.com/bnema/wgate/internal/domain"
)

// Firewall defines the contract for one packet filter scope.
type Firewall interface {
	Exists(ctx context.Context, rule domain.FirewallRule) (bool, error)
	Append(ctx context.Context, rule domain.FirewallRule) error
	Delete(ctx context.Context, rule domain.FirewallRule) error
	// List returns the rules currently in a chain.
	List(ctx context.Context, table, chain string) ([]domain.FirewallRule, error)
	// Persist saves the applied rule set so it survives reboots.
	Persist(ctx context.Context) error
}

// FirewallProvider hands out firewall scopes for the host and for containers.
type FirewallProvider interface {
	Host() Firewall
	Container(id int) Firewall
}
