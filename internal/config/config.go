// Package config loads and validates the provisioning configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/parser"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "wgate.yml"

type Config struct {
	General    GeneralConfig      `yaml:"general"`
	Host       HostConfig         `yaml:"host"`
	Bridge     BridgeConfig       `yaml:"bridge"`
	Template   TemplateConfig     `yaml:"template"`
	Gateway    ContainerConfig    `yaml:"gateway"`
	VPN        VPNConfig          `yaml:"vpn"`
	Firewall   FirewallConfig     `yaml:"firewall"`
	Readiness  ReadinessConfig    `yaml:"readiness"`
	Downstream []DownstreamConfig `yaml:"downstream"`
}

type GeneralConfig struct {
	LogLevel string `yaml:"logLevel"`
}

type HostConfig struct {
	InterfacesFile   string `yaml:"interfacesFile"`
	InterfacesDir    string `yaml:"interfacesDir"`
	TemplateCacheDir string `yaml:"templateCacheDir"` // %s is replaced by the storage name
	UplinkInterface  string `yaml:"uplinkInterface"`
	ProcRoot         string `yaml:"procRoot"`
}

type BridgeConfig struct {
	Name string `yaml:"name"`
	CIDR string `yaml:"cidr"`
}

type TemplateConfig struct {
	Storage string `yaml:"storage"`
	Name    string `yaml:"name"`
}

type ContainerConfig struct {
	ID           int    `yaml:"id"`
	Hostname     string `yaml:"hostname"`
	IP           string `yaml:"ip"`
	Storage      string `yaml:"storage"`
	MemoryMB     int    `yaml:"memory"`
	Cores        int    `yaml:"cores"`
	Unprivileged bool   `yaml:"unprivileged"`
	OnBoot       bool   `yaml:"onBoot"`
}

type DownstreamConfig struct {
	ID       int    `yaml:"id"`
	Hostname string `yaml:"hostname,omitempty"`
	IP       string `yaml:"ip"`
	MemoryMB int    `yaml:"memory,omitempty"`
	Cores    int    `yaml:"cores,omitempty"`
}

type VPNConfig struct {
	HostConfigDir      string   `yaml:"hostConfigDir"`
	ContainerConfigDir string   `yaml:"containerConfigDir"`
	Pattern            string   `yaml:"pattern"`
	Interface          string   `yaml:"interface"`
	NATInterface       string   `yaml:"natInterface"`
	LANInterface       string   `yaml:"lanInterface"`
	Subnet             string   `yaml:"subnet"`
	Packages           []string `yaml:"packages"`
	RestartSec         int      `yaml:"restartSec"`
	UnitName           string   `yaml:"unitName"`
	ScriptPath         string   `yaml:"scriptPath"`
}

type FirewallConfig struct {
	Comment string `yaml:"comment"`
	Prune   bool   `yaml:"prune"`
	Persist bool   `yaml:"persist"`
}

type ReadinessConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxInterval time.Duration `yaml:"maxInterval"`
	Backoff     float64       `yaml:"backoff"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Default returns the configuration matching a stock single-gateway setup.
func Default() *Config {
	return &Config{
		General: GeneralConfig{LogLevel: "info"},
		Host: HostConfig{
			InterfacesFile:   "/etc/network/interfaces",
			InterfacesDir:    "/etc/network/interfaces.d",
			TemplateCacheDir: "/var/lib/vz/template/cache",
			UplinkInterface:  "vmbr0",
			ProcRoot:         "/proc",
		},
		Bridge: BridgeConfig{
			Name: "vmbr1",
			CIDR: "10.10.10.1/24",
		},
		Template: TemplateConfig{
			Storage: "local",
			Name:    "debian-12-standard",
		},
		Gateway: ContainerConfig{
			ID:           200,
			Hostname:     "wg-gateway",
			IP:           "10.10.10.2/24",
			Storage:      "local-lvm",
			MemoryMB:     512,
			Cores:        1,
			Unprivileged: true,
			OnBoot:       true,
		},
		VPN: VPNConfig{
			HostConfigDir:      "/root/wireguard",
			ContainerConfigDir: "/etc/wireguard/profiles",
			Pattern:            "*.conf",
			Interface:          "wg0",
			NATInterface:       "wg0",
			LANInterface:       "eth0",
			Subnet:             "10.10.10.0/24",
			Packages:           []string{"wireguard-tools", "iptables", "iptables-persistent", "resolvconf"},
			RestartSec:         10,
			UnitName:           "wgate-tunnel.service",
			ScriptPath:         "/usr/local/sbin/wgate-tunnel",
		},
		Firewall: FirewallConfig{
			Comment: "wgate",
			Prune:   true,
			Persist: true,
		},
		Readiness: ReadinessConfig{
			Interval:    time.Second,
			MaxInterval: 10 * time.Second,
			Backoff:     1.5,
			Timeout:     2 * time.Minute,
		},
	}
}

// SearchPaths returns the locations probed when no explicit file is given.
func SearchPaths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "wgate", "config.yml"))
	}
	return append(paths, "/etc/wgate/config.yml")
}

// Load reads the configuration from path, or from the first existing search
// path when path is empty, applies WGATE_* overrides and validates the result.
// It returns the file actually used, empty when running on defaults.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	source, err := resolvePath(path)
	if err != nil {
		return nil, "", err
	}

	if source != "" {
		dir, file := filepath.Split(source)
		if dir == "" {
			dir = "."
		}
		if err := parser.ParseYAMLFile(os.DirFS(dir), file, cfg); err != nil {
			return nil, "", fmt.Errorf("error reading configuration file %s: %w", source, err)
		}
	}

	loadConfigFromEnv(cfg)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, source, err
	}

	return cfg, source, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
			}
			return "", fmt.Errorf("error checking configuration file: %w", err)
		}
		return path, nil
	}

	for _, candidate := range SearchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := parser.WriteYAMLFile(path, c); err != nil {
		return fmt.Errorf("error writing configuration file: %w", err)
	}
	return nil
}

// normalize derives fields left empty from the ones that are set.
func (c *Config) normalize() {
	if c.VPN.Subnet == "" {
		if p, err := netip.ParsePrefix(c.Bridge.CIDR); err == nil {
			c.VPN.Subnet = p.Masked().String()
		}
	} else if p, err := netip.ParsePrefix(c.VPN.Subnet); err == nil {
		c.VPN.Subnet = p.Masked().String()
	}
	if c.VPN.NATInterface == "" {
		c.VPN.NATInterface = c.VPN.Interface
	}
	if c.VPN.Pattern == "" {
		c.VPN.Pattern = "*.conf"
	}
}

// AppendDownstream adds a downstream entry to the file at path without
// folding in environment overrides. A missing file is created from defaults.
func AppendDownstream(path string, d DownstreamConfig) error {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		dir, file := filepath.Split(path)
		if dir == "" {
			dir = "."
		}
		if err := parser.ParseYAMLFile(os.DirFS(dir), file, cfg); err != nil {
			return fmt.Errorf("error reading configuration file %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error checking configuration file: %w", err)
	}

	for _, existing := range cfg.Downstream {
		if existing.ID == d.ID {
			return fmt.Errorf("%w: downstream container %d already declared in %s", domain.ErrInvalidConfig, d.ID, path)
		}
	}
	cfg.Downstream = append(cfg.Downstream, d)
	return cfg.Save(path)
}
