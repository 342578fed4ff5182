// Package domain contains pure provisioning types without external dependencies.
// These types are used throughout the application and have no tags or framework dependencies.
package domain

import (
	"fmt"
	"net/netip"
	"strings"
)

// ContainerSpec describes an LXC container to (re)create on the host.
type ContainerSpec struct {
	ID           int
	Hostname     string
	Bridge       string
	IP           string // address in prefix form, e.g. 10.10.10.2/24
	Gateway      string // optional default route, plain address
	Storage      string // rootfs storage backend
	MemoryMB     int
	Cores        int
	Unprivileged bool
	OnBoot       bool
}

// NetArg renders the net0 value understood by pct.
func (s ContainerSpec) NetArg() string {
	parts := []string{
		"name=eth0",
		"bridge=" + s.Bridge,
		"ip=" + s.IP,
	}
	if s.Gateway != "" {
		parts = append(parts, "gw="+s.Gateway)
	}
	return strings.Join(parts, ",")
}

// Addr returns the container address without its prefix length.
func (s ContainerSpec) Addr() (netip.Addr, error) {
	prefix, err := netip.ParsePrefix(s.IP)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("container %d: invalid ip %q: %w", s.ID, s.IP, err)
	}
	return prefix.Addr(), nil
}

// ContainerStatus represents the observed state of a container.
type ContainerStatus string

const (
	ContainerStatusAbsent  ContainerStatus = "absent"
	ContainerStatusStopped ContainerStatus = "stopped"
	ContainerStatusRunning ContainerStatus = "running"
	ContainerStatusUnknown ContainerStatus = "unknown"
)

// ParseContainerStatus maps the status word printed by the container tooling.
func ParseContainerStatus(s string) ContainerStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return ContainerStatusRunning
	case "stopped":
		return ContainerStatusStopped
	case "absent", "":
		return ContainerStatusAbsent
	default:
		return ContainerStatusUnknown
	}
}

// Exists reports whether the container is known to the host in any state.
func (s ContainerStatus) Exists() bool {
	return s != ContainerStatusAbsent
}

// ContainerInfo is one row of the host's container listing.
type ContainerInfo struct {
	ID     int
	Name   string
	Status ContainerStatus
}
