package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/kballard/go-shellquote"

	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
)

// fakeHost is an in-memory Proxmox host implementing every port the service
// consumes.
type fakeHost struct {
	mu sync.Mutex

	containers map[int]*fakeContainer
	created    []int
	destroyed  []int
	readyAfter int

	cached    map[string][]string
	available []string
	updates   int
	downloads []domain.TemplateRef

	bridges      map[string]domain.BridgeConfig
	bridgeWrites int
	activeLinks  map[string]bool
	activations  int
	forwarding   bool

	hostFirewall      *fakeFirewall
	containerFirewall map[int]*fakeFirewall
}

type fakeFile struct {
	content []byte
	mode    uint32
}

type fakeContainer struct {
	spec     domain.ContainerSpec
	template domain.TemplateRef
	status   domain.ContainerStatus
	files    map[string]fakeFile
	probes   int
	packages []string
	sysctl   map[string]string
	units    map[string]string
	enabled  map[string]bool
	tunnelUp bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		containers:        make(map[int]*fakeContainer),
		cached:            make(map[string][]string),
		bridges:           make(map[string]domain.BridgeConfig),
		activeLinks:       make(map[string]bool),
		hostFirewall:      newFakeFirewall(),
		containerFirewall: make(map[int]*fakeFirewall),
	}
}

// ContainerManager

func (h *fakeHost) Status(_ context.Context, id int) (domain.ContainerStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[id]
	if !ok {
		return domain.ContainerStatusAbsent, nil
	}
	return c.status, nil
}

func (h *fakeHost) Create(_ context.Context, spec domain.ContainerSpec, template domain.TemplateRef) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.containers[spec.ID]; ok {
		return fmt.Errorf("CT %d already exists", spec.ID)
	}
	h.containers[spec.ID] = &fakeContainer{
		spec:     spec,
		template: template,
		status:   domain.ContainerStatusStopped,
		files:    make(map[string]fakeFile),
		sysctl:   make(map[string]string),
		units:    make(map[string]string),
		enabled:  make(map[string]bool),
	}
	h.containerFirewall[spec.ID] = newFakeFirewall()
	h.created = append(h.created, spec.ID)
	return nil
}

func (h *fakeHost) Start(_ context.Context, id int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[id]
	if !ok {
		return domain.ErrContainerNotFound
	}
	c.status = domain.ContainerStatusRunning
	return nil
}

func (h *fakeHost) Stop(_ context.Context, id int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[id]
	if !ok {
		return domain.ErrContainerNotFound
	}
	c.status = domain.ContainerStatusStopped
	return nil
}

func (h *fakeHost) Destroy(_ context.Context, id int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[id]
	if !ok {
		return domain.ErrContainerNotFound
	}
	if c.status == domain.ContainerStatusRunning {
		return fmt.Errorf("CT %d is running", id)
	}
	delete(h.containers, id)
	delete(h.containerFirewall, id)
	h.destroyed = append(h.destroyed, id)
	return nil
}

func (h *fakeHost) List(_ context.Context) ([]domain.ContainerInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	infos := make([]domain.ContainerInfo, 0, len(h.containers))
	for id, c := range h.containers {
		infos = append(infos, domain.ContainerInfo{ID: id, Name: c.spec.Hostname, Status: c.status})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

func (h *fakeHost) Exec(_ context.Context, id int, cmd []string) (*out.ExecResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[id]
	if !ok || c.status != domain.ContainerStatusRunning {
		return nil, fmt.Errorf("exec in container %d: not running", id)
	}

	switch cmd[0] {
	case "true":
		c.probes++
		if c.probes <= h.readyAfter {
			return nil, errors.New("container is not ready")
		}
	case "sysctl":
		if len(cmd) == 3 && cmd[1] == "-w" {
			k, v, _ := strings.Cut(cmd[2], "=")
			c.sysctl[k] = v
		}
	case "env":
		c.packages = append(c.packages, cmd[5:]...)
	case "sh":
		return h.shell(c, cmd[2])
	case "install":
		src, dst := cmd[3], cmd[4]
		f, ok := c.files[src]
		if !ok {
			return &out.ExecResult{ExitCode: 1}, fmt.Errorf("install: cannot stat %s", src)
		}
		c.files[dst] = fakeFile{content: f.content, mode: 0600}
	case "systemctl":
		switch cmd[1] {
		case "enable":
			c.enabled[cmd[2]] = true
		case "restart":
			if _, ok := c.files[path.Join("/etc/systemd/system", cmd[2])]; !ok {
				return &out.ExecResult{ExitCode: 5}, fmt.Errorf("Unit %s not found", cmd[2])
			}
			c.units[cmd[2]] = "active"
			c.tunnelUp = true
		case "is-active":
			state, ok := c.units[cmd[2]]
			if !ok {
				state = "inactive"
			}
			res := &out.ExecResult{Stdout: []byte(state + "\n")}
			if state != "active" {
				res.ExitCode = 3
				return res, errors.New("exit status 3")
			}
			return res, nil
		}
	case "wg-quick":
		if cmd[1] == "down" && !c.tunnelUp {
			return &out.ExecResult{ExitCode: 1}, fmt.Errorf("wg-quick: `%s' is not a WireGuard interface", cmd[2])
		}
		c.tunnelUp = cmd[1] == "up"
	}
	return &out.ExecResult{}, nil
}

func (h *fakeHost) shell(c *fakeContainer, script string) (*out.ExecResult, error) {
	if !strings.HasPrefix(script, "find ") {
		if strings.Contains(script, "sysctl.conf") {
			c.files["/etc/sysctl.conf"] = fakeFile{content: []byte("net.ipv4.ip_forward=1\n"), mode: 0644}
		}
		return &out.ExecResult{}, nil
	}

	args, err := shellquote.Split(strings.TrimSuffix(script, " 2>/dev/null || true"))
	if err != nil {
		return nil, err
	}
	// find DIR -maxdepth 1 -type f -name PATTERN
	dir, pattern := args[1], args[len(args)-1]
	var found []string
	for p := range c.files {
		if path.Dir(p) != dir {
			continue
		}
		if ok, _ := path.Match(pattern, path.Base(p)); ok {
			found = append(found, p)
		}
	}
	sort.Strings(found)
	stdout := ""
	if len(found) > 0 {
		stdout = strings.Join(found, "\n") + "\n"
	}
	return &out.ExecResult{Stdout: []byte(stdout)}, nil
}

func (h *fakeHost) Push(_ context.Context, id int, hostPath, containerPath string, mode uint32) error {
	content, err := os.ReadFile(hostPath)
	if err != nil {
		return err
	}
	return h.WriteFile(context.Background(), id, containerPath, content, mode)
}

func (h *fakeHost) WriteFile(_ context.Context, id int, containerPath string, content []byte, mode uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[id]
	if !ok {
		return domain.ErrContainerNotFound
	}
	c.files[containerPath] = fakeFile{content: content, mode: mode}
	return nil
}

// TemplateCatalog

func (h *fakeHost) Cached(_ context.Context, storage string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.cached[storage]...), nil
}

func (h *fakeHost) Update(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates++
	return nil
}

func (h *fakeHost) Available(_ context.Context) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.available...), nil
}

func (h *fakeHost) Download(_ context.Context, ref domain.TemplateRef) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.downloads = append(h.downloads, ref)
	h.cached[ref.Storage] = append(h.cached[ref.Storage], ref.Name)
	return nil
}

// HostNetwork

func (h *fakeHost) BridgeDefined(_ context.Context, name string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.bridges[name]
	return ok, nil
}

func (h *fakeHost) WriteBridge(_ context.Context, bridge domain.BridgeConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bridges[bridge.Name] = bridge
	h.bridgeWrites++
	return nil
}

func (h *fakeHost) Activate(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.bridges[name]; !ok {
		return fmt.Errorf("ifup: unknown interface %s", name)
	}
	h.activeLinks[name] = true
	h.activations++
	return nil
}

func (h *fakeHost) BridgeActive(_ context.Context, bridge domain.BridgeConfig) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	defined, ok := h.bridges[bridge.Name]
	return ok && h.activeLinks[bridge.Name] && defined.CIDR == bridge.CIDR, nil
}

func (h *fakeHost) EnableForwarding(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forwarding = true
	return nil
}

// FirewallProvider

func (h *fakeHost) Host() out.Firewall {
	return h.hostFirewall
}

func (h *fakeHost) Container(id int) out.Firewall {
	h.mu.Lock()
	defer h.mu.Unlock()
	fw, ok := h.containerFirewall[id]
	if !ok {
		fw = newFakeFirewall()
		h.containerFirewall[id] = fw
	}
	return fw
}

type fakeFirewall struct {
	mu       sync.Mutex
	rules    []domain.FirewallRule
	persists int
}

func newFakeFirewall() *fakeFirewall {
	return &fakeFirewall{}
}

func (f *fakeFirewall) Exists(_ context.Context, rule domain.FirewallRule) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if r.Key() == rule.Key() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFirewall) Append(_ context.Context, rule domain.FirewallRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule)
	return nil
}

func (f *fakeFirewall) Delete(_ context.Context, rule domain.FirewallRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rules {
		if r.Key() == rule.Key() {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return errors.New("iptables: Bad rule (does a matching rule exist in that chain?)")
}

func (f *fakeFirewall) List(_ context.Context, table, chain string) ([]domain.FirewallRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rules []domain.FirewallRule
	for _, r := range f.rules {
		if r.Table == table && r.Chain == chain {
			rules = append(rules, r)
		}
	}
	return rules, nil
}

func (f *fakeFirewall) Persist(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persists++
	return nil
}

func (f *fakeFirewall) Rules() []domain.FirewallRule {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.FirewallRule(nil), f.rules...)
}
