package domain

import (
	"fmt"
	"math/rand/v2"
	"path"
)

// VPNConfigSet is the pool of WireGuard profiles seeded into the gateway.
type VPNConfigSet struct {
	HostDir      string
	ContainerDir string
	Pattern      string
}

// PickTunnelConfig selects one profile uniformly at random.
func PickTunnelConfig(files []string, rng *rand.Rand) (string, error) {
	if len(files) == 0 {
		return "", ErrNoTunnelConfigs
	}
	if rng == nil {
		return files[rand.IntN(len(files))], nil
	}
	return files[rng.IntN(len(files))], nil
}

// TunnelService describes the supervised unit that brings the tunnel up.
type TunnelService struct {
	UnitName   string
	ScriptPath string
	ConfigDir  string
	Pattern    string
	Interface  string
	RestartSec int
}

// ActiveConfigPath is where the selected profile is installed for wg-quick.
func (t TunnelService) ActiveConfigPath() string {
	return fmt.Sprintf("/etc/wireguard/%s.conf", t.Interface)
}

// UnitPath is where the systemd unit file is installed.
func (t TunnelService) UnitPath() string {
	return path.Join("/etc/systemd/system", t.UnitName)
}
