package out

import (
	"context"

	"github.com/bnema/wgate/internal/domain"
)

// HostNetwork defines the contract for persistent host interface
// definitions and their activation.
type HostNetwork interface {
	BridgeDefined(ctx context.Context, name string) (bool, error)
	WriteBridge(ctx context.Context, bridge domain.BridgeConfig) error
	// Activate cycles the interface down then up. Only the up step may fail.
	Activate(ctx context.Context, name string) error
	// BridgeActive reports whether the link is up and carries the address.
	BridgeActive(ctx context.Context, bridge domain.BridgeConfig) (bool, error)
	EnableForwarding(ctx context.Context) error
}
