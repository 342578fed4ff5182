// Package out defines output ports (interfaces) for infrastructure.
// These interfaces define the contract between the provisioner and driven
// adapters (pct, pveam, ifupdown, iptables).
package out

import (
	"context"

	"github.com/bnema/wgate/internal/domain"
)

// ContainerManager defines the contract for container lifecycle operations
// on the virtualization host, addressed by numeric container ID.
type ContainerManager interface {
	// Container lifecycle
	Status(ctx context.Context, id int) (domain.ContainerStatus, error)
	Create(ctx context.Context, spec domain.ContainerSpec, template domain.TemplateRef) error
	Start(ctx context.Context, id int) error
	Stop(ctx context.Context, id int) error
	Destroy(ctx context.Context, id int) error
	List(ctx context.Context) ([]domain.ContainerInfo, error)

	// In-container operations
	Exec(ctx context.Context, id int, cmd []string) (*ExecResult, error)
	Push(ctx context.Context, id int, hostPath, containerPath string, mode uint32) error
	WriteFile(ctx context.Context, id int, containerPath string, content []byte, mode uint32) error
}

// ExecResult holds the result of executing a command.
type ExecResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}
