// Package ifupdown implements the HostNetwork port over ifupdown2 interface
// definitions, netlink link state and procfs.
package ifupdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
)

var bridgeStanza = template.Must(template.New("bridge").Parse(`auto {{.Name}}
iface {{.Name}} inet static
	address {{.CIDR}}
	bridge-ports none
	bridge-stp off
	bridge-fd 0
`))

// LinkInspector reads the live state of a network link.
type LinkInspector interface {
	LinkState(name string) (up bool, addrs []netip.Prefix, err error)
}

// Config locates the host files the adapter works on.
type Config struct {
	InterfacesFile string
	InterfacesDir  string
	ProcRoot       string
	// DryRun issues file writes as commands to the runner instead of
	// touching the filesystem, so a recording runner can report them.
	DryRun bool
}

// Network manages bridge definitions on the host.
type Network struct {
	runner out.CommandRunner
	links  LinkInspector
	config Config
}

// NewNetwork creates a Network. A nil inspector uses netlink.
func NewNetwork(runner out.CommandRunner, links LinkInspector, config Config) *Network {
	if links == nil {
		links = NetlinkInspector{}
	}
	return &Network{runner: runner, links: links, config: config}
}

func (n *Network) definitionPath(name string) string {
	return filepath.Join(n.config.InterfacesDir, name)
}

// BridgeDefined reports whether a definition for name exists, either as its
// own file in the interfaces directory or as a stanza in the main file.
func (n *Network) BridgeDefined(_ context.Context, name string) (bool, error) {
	if _, err := os.Stat(n.definitionPath(name)); err == nil {
		return true, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to check bridge definition: %w", err)
	}

	if n.config.InterfacesFile == "" {
		return false, nil
	}
	data, err := os.ReadFile(n.config.InterfacesFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", n.config.InterfacesFile, err)
	}
	stanza := regexp.MustCompile(`(?m)^\s*iface\s+` + regexp.QuoteMeta(name) + `\s`)
	return stanza.Match(data), nil
}

// RenderBridge returns the interface stanza for bridge.
func RenderBridge(bridge domain.BridgeConfig) ([]byte, error) {
	var buf bytes.Buffer
	if err := bridgeStanza.Execute(&buf, bridge); err != nil {
		return nil, fmt.Errorf("failed to render bridge %s: %w", bridge.Name, err)
	}
	return buf.Bytes(), nil
}

func (n *Network) WriteBridge(ctx context.Context, bridge domain.BridgeConfig) error {
	content, err := RenderBridge(bridge)
	if err != nil {
		return err
	}
	path := n.definitionPath(bridge.Name)
	if n.config.DryRun {
		_, err := n.runner.Run(ctx, out.Command{Name: "tee", Args: []string{path}, Stdin: bytes.NewReader(content)})
		return err
	}
	if err := os.MkdirAll(n.config.InterfacesDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", n.config.InterfacesDir, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write bridge definition %s: %w", path, err)
	}
	logger.Info("Bridge definition written", "bridge", bridge.Name, "path", path)
	return nil
}

// Activate brings the interface down, ignoring failures since it may not be
// up yet, and then up.
func (n *Network) Activate(ctx context.Context, name string) error {
	if _, err := n.runner.Run(ctx, out.Command{Name: "ifdown", Args: []string{name}}); err != nil {
		logger.Debug("ifdown failed, continuing", "bridge", name, "err", err)
	}
	if _, err := n.runner.Run(ctx, out.Command{Name: "ifup", Args: []string{name}}); err != nil {
		return fmt.Errorf("failed to bring up %s: %w", name, err)
	}
	return nil
}

// BridgeActive reports whether the link is up and carries the bridge address.
func (n *Network) BridgeActive(_ context.Context, bridge domain.BridgeConfig) (bool, error) {
	want, err := bridge.Prefix()
	if err != nil {
		return false, err
	}
	up, addrs, err := n.links.LinkState(bridge.Name)
	if err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect %s: %w", bridge.Name, err)
	}
	if !up {
		return false, nil
	}
	for _, a := range addrs {
		if a == want {
			return true, nil
		}
	}
	return false, nil
}

// EnableForwarding turns on IPv4 forwarding for the running host kernel.
func (n *Network) EnableForwarding(ctx context.Context) error {
	if n.config.DryRun {
		_, err := n.runner.Run(ctx, out.Command{Name: "sysctl", Args: []string{"-w", "net.ipv4.ip_forward=1"}})
		return err
	}
	path := filepath.Join(n.config.ProcRoot, "sys", "net", "ipv4", "ip_forward")
	if current, err := os.ReadFile(path); err == nil && bytes.Equal(bytes.TrimSpace(current), []byte("1")) {
		return nil
	}
	if err := os.WriteFile(path, []byte("1"), 0644); err != nil {
		return fmt.Errorf("failed to setup IP forwarding: %w", err)
	}
	return nil
}
