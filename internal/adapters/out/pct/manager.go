// Package pct implements the ContainerManager port over the Proxmox pct tool.
package pct

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bnema/wgate/internal/adapters/out/command"
	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
)

const binary = "pct"

// Manager drives LXC containers through pct.
type Manager struct {
	runner out.CommandRunner
	tmpDir string
}

// NewManager creates a Manager running pct through runner.
func NewManager(runner out.CommandRunner) *Manager {
	return &Manager{runner: runner, tmpDir: os.TempDir()}
}

func (m *Manager) run(ctx context.Context, args ...string) (*out.ExecResult, error) {
	return m.runner.Run(ctx, out.Command{Name: binary, Args: args})
}

// Status reports the container state. A missing configuration is reported as
// absent rather than as an error.
func (m *Manager) Status(ctx context.Context, id int) (domain.ContainerStatus, error) {
	res, err := m.run(ctx, "status", strconv.Itoa(id))
	if err != nil {
		if command.IsExitError(err) && strings.Contains(err.Error(), "does not exist") {
			return domain.ContainerStatusAbsent, nil
		}
		return domain.ContainerStatusUnknown, fmt.Errorf("failed to query container %d: %w", id, err)
	}

	// "status: running"
	line := strings.TrimSpace(string(res.Stdout))
	_, word, found := strings.Cut(line, ":")
	if !found {
		return domain.ContainerStatusUnknown, fmt.Errorf("unexpected status output for container %d: %q", id, line)
	}
	return domain.ParseContainerStatus(word), nil
}

// CreateArgs renders the pct create arguments for spec.
func CreateArgs(spec domain.ContainerSpec, template domain.TemplateRef) []string {
	args := []string{
		"create", strconv.Itoa(spec.ID), template.VolID(),
		"--hostname", spec.Hostname,
		"--net0", spec.NetArg(),
		"--storage", spec.Storage,
		"--memory", strconv.Itoa(spec.MemoryMB),
		"--cores", strconv.Itoa(spec.Cores),
		"--unprivileged", boolArg(spec.Unprivileged),
		"--onboot", boolArg(spec.OnBoot),
	}
	if spec.Unprivileged {
		// systemd inside unprivileged containers needs nesting
		args = append(args, "--features", "nesting=1")
	}
	return args
}

func (m *Manager) Create(ctx context.Context, spec domain.ContainerSpec, template domain.TemplateRef) error {
	if _, err := m.run(ctx, CreateArgs(spec, template)...); err != nil {
		return fmt.Errorf("failed to create container %d: %w", spec.ID, err)
	}
	return nil
}

func (m *Manager) Start(ctx context.Context, id int) error {
	if _, err := m.run(ctx, "start", strconv.Itoa(id)); err != nil {
		return fmt.Errorf("failed to start container %d: %w", id, err)
	}
	return nil
}

func (m *Manager) Stop(ctx context.Context, id int) error {
	if _, err := m.run(ctx, "stop", strconv.Itoa(id)); err != nil {
		return fmt.Errorf("failed to stop container %d: %w", id, err)
	}
	return nil
}

func (m *Manager) Destroy(ctx context.Context, id int) error {
	if _, err := m.run(ctx, "destroy", strconv.Itoa(id)); err != nil {
		return fmt.Errorf("failed to destroy container %d: %w", id, err)
	}
	return nil
}

// List parses the pct list table.
func (m *Manager) List(ctx context.Context) ([]domain.ContainerInfo, error) {
	res, err := m.run(ctx, "list")
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	return parseList(res.Stdout)
}

func parseList(data []byte) ([]domain.ContainerInfo, error) {
	var infos []domain.ContainerInfo
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] == "VMID" {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		info := domain.ContainerInfo{ID: id, Status: domain.ParseContainerStatus(fields[1])}
		if len(fields) >= 3 {
			info.Name = fields[len(fields)-1]
		}
		infos = append(infos, info)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse container list: %w", err)
	}
	return infos, nil
}

// Exec runs cmd inside the container.
func (m *Manager) Exec(ctx context.Context, id int, cmd []string) (*out.ExecResult, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("exec in container %d: empty command", id)
	}
	args := append([]string{"exec", strconv.Itoa(id), "--"}, cmd...)
	res, err := m.run(ctx, args...)
	if err != nil {
		return res, fmt.Errorf("exec in container %d: %w", id, err)
	}
	return res, nil
}

// Push copies a host file into the container with the given permissions.
func (m *Manager) Push(ctx context.Context, id int, hostPath, containerPath string, mode uint32) error {
	_, err := m.run(ctx, "push", strconv.Itoa(id), hostPath, containerPath, "--perms", fmt.Sprintf("%04o", mode))
	if err != nil {
		return fmt.Errorf("failed to push %s into container %d: %w", hostPath, id, err)
	}
	return nil
}

// WriteFile stages content in a host temporary file and pushes it.
func (m *Manager) WriteFile(ctx context.Context, id int, containerPath string, content []byte, mode uint32) error {
	tmp, err := os.CreateTemp(m.tmpDir, "wgate-push-*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", containerPath, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to stage %s: %w", containerPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to stage %s: %w", containerPath, err)
	}

	return m.Push(ctx, id, tmp.Name(), containerPath, mode)
}

func boolArg(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
