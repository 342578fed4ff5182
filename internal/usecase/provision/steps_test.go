package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wgate/internal/boundaries/out/mocks"
	"github.com/bnema/wgate/internal/domain"
)

func newMockService(t *testing.T) (*Service, *mocks.MockTemplateCatalog, *mocks.MockHostNetwork) {
	t.Helper()
	catalog := &mocks.MockTemplateCatalog{}
	network := &mocks.MockHostNetwork{}
	t.Cleanup(func() {
		catalog.AssertExpectations(t)
		network.AssertExpectations(t)
	})
	svc := NewService(&mocks.MockContainerManager{}, catalog, network, &mocks.MockFirewallProvider{}, testConfig(t))
	return svc, catalog, network
}

func TestService_EnsureTemplate(t *testing.T) {
	ref := domain.TemplateRef{Storage: "local", Name: "debian-12-standard"}

	t.Run("cached archive is reused", func(t *testing.T) {
		svc, catalog, _ := newMockService(t)
		catalog.On("Cached", mock.Anything, "local").Return([]string{"debian-12-standard_12.2-1_amd64.tar.zst", testArchive}, nil)

		got, err := svc.EnsureTemplate(context.Background(), ref)

		require.NoError(t, err)
		assert.Equal(t, domain.TemplateRef{Storage: "local", Name: testArchive}, got)
		catalog.AssertNotCalled(t, "Update", mock.Anything)
	})

	t.Run("missing archive is downloaded", func(t *testing.T) {
		svc, catalog, _ := newMockService(t)
		resolved := domain.TemplateRef{Storage: "local", Name: testArchive}
		catalog.On("Cached", mock.Anything, "local").Return(nil, nil)
		catalog.On("Update", mock.Anything).Return(nil)
		catalog.On("Available", mock.Anything).Return([]string{"alpine-3.20-default_20240908_amd64.tar.xz", testArchive}, nil)
		catalog.On("Download", mock.Anything, resolved).Return(nil)

		got, err := svc.EnsureTemplate(context.Background(), ref)

		require.NoError(t, err)
		assert.Equal(t, resolved, got)
	})

	t.Run("unknown template", func(t *testing.T) {
		svc, catalog, _ := newMockService(t)
		catalog.On("Cached", mock.Anything, "local").Return(nil, nil)
		catalog.On("Update", mock.Anything).Return(nil)
		catalog.On("Available", mock.Anything).Return([]string{"alpine-3.20-default_20240908_amd64.tar.xz"}, nil)

		_, err := svc.EnsureTemplate(context.Background(), ref)

		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})

	t.Run("update failure", func(t *testing.T) {
		svc, catalog, _ := newMockService(t)
		catalog.On("Cached", mock.Anything, "local").Return(nil, nil)
		catalog.On("Update", mock.Anything).Return(errors.New("pveam: no network"))

		_, err := svc.EnsureTemplate(context.Background(), ref)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update template catalog")
	})
}

func TestService_EnsureBridge(t *testing.T) {
	bridge := domain.BridgeConfig{Name: "vmbr1", CIDR: "10.10.10.1/24"}

	t.Run("new bridge is written and activated", func(t *testing.T) {
		svc, _, network := newMockService(t)
		network.On("BridgeDefined", mock.Anything, "vmbr1").Return(false, nil)
		network.On("WriteBridge", mock.Anything, bridge).Return(nil).Once()
		network.On("Activate", mock.Anything, "vmbr1").Return(nil).Once()

		require.NoError(t, svc.EnsureBridge(context.Background(), bridge))
	})

	t.Run("active bridge is left alone", func(t *testing.T) {
		svc, _, network := newMockService(t)
		network.On("BridgeDefined", mock.Anything, "vmbr1").Return(true, nil)
		network.On("BridgeActive", mock.Anything, bridge).Return(true, nil)

		require.NoError(t, svc.EnsureBridge(context.Background(), bridge))
		network.AssertNotCalled(t, "WriteBridge", mock.Anything, mock.Anything)
		network.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
	})

	t.Run("defined but down bridge is activated", func(t *testing.T) {
		svc, _, network := newMockService(t)
		network.On("BridgeDefined", mock.Anything, "vmbr1").Return(true, nil)
		network.On("BridgeActive", mock.Anything, bridge).Return(false, nil)
		network.On("Activate", mock.Anything, "vmbr1").Return(nil).Once()

		require.NoError(t, svc.EnsureBridge(context.Background(), bridge))
		network.AssertNotCalled(t, "WriteBridge", mock.Anything, mock.Anything)
	})

	t.Run("activation failure", func(t *testing.T) {
		svc, _, network := newMockService(t)
		network.On("BridgeDefined", mock.Anything, "vmbr1").Return(false, nil)
		network.On("WriteBridge", mock.Anything, bridge).Return(nil)
		network.On("Activate", mock.Anything, "vmbr1").Return(errors.New("ifup: vmbr1: bridge-ports none"))

		assert.Error(t, svc.EnsureBridge(context.Background(), bridge))
	})
}

func TestService_InstallPackages_Failure(t *testing.T) {
	containers := &mocks.MockContainerManager{}
	containers.On("Exec", mock.Anything, 200, []string{"apt-get", "update"}).Return(nil, errors.New("exit status 100"))
	svc := NewService(containers, nil, nil, nil, testConfig(t))

	err := svc.InstallPackages(context.Background(), 200, []string{"wireguard-tools"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update package index")
	containers.AssertExpectations(t)
}

func TestRenderTunnelUnit(t *testing.T) {
	cfg := testConfig(t)

	unit, err := RenderTunnelUnit(cfg.Tunnel)
	require.NoError(t, err)

	for _, line := range []string{
		"After=network-online.target",
		"Wants=network-online.target",
		"ExecStart=/usr/local/sbin/wgate-tunnel start",
		"ExecStop=/usr/local/sbin/wgate-tunnel stop",
		"Restart=on-failure",
		"RestartSec=10",
		"WantedBy=multi-user.target",
	} {
		assert.Contains(t, string(unit), line+"\n")
	}
}

func TestRenderTunnelScript_QuotesConfigValues(t *testing.T) {
	cfg := testConfig(t)
	svc := cfg.Tunnel
	svc.ConfigDir = "/srv/o'brien profiles"
	svc.Pattern = "se-*.conf"

	script, err := RenderTunnelScript(svc)
	require.NoError(t, err)

	s := string(script)
	assert.Contains(t, s, `CONFIG_DIR='/srv/o'\''brien profiles'`)
	assert.Contains(t, s, `-name se-\*.conf | shuf -n 1`)
	assert.NotContains(t, s, "'se-*.conf'")
}

func TestRenderTunnelScript(t *testing.T) {
	cfg := testConfig(t)

	script, err := RenderTunnelScript(cfg.Tunnel)
	require.NoError(t, err)

	s := string(script)
	assert.Contains(t, s, "CONFIG_DIR=/etc/wireguard/profiles\n")
	assert.Contains(t, s, "IFACE=wg0\n")
	assert.Contains(t, s, `-name \*.conf | shuf -n 1`)
	assert.Contains(t, s, "install -m 0600 \"$profile\" /etc/wireguard/wg0.conf\n")
	assert.Contains(t, s, "exec wg-quick up \"$IFACE\"")
	assert.Contains(t, s, "exec wg-quick down \"$IFACE\"")
}

func TestService_ConfigureNATReconcilesContainerRules(t *testing.T) {
	cfg := testConfig(t)
	fw := &mocks.MockFirewall{}
	firewalls := &mocks.MockFirewallProvider{}
	firewalls.On("Container", 200).Return(fw)
	svc := NewService(&mocks.MockContainerManager{}, &mocks.MockTemplateCatalog{}, &mocks.MockHostNetwork{}, firewalls, cfg)

	set := svc.GatewayRules(cfg.Subnet, cfg.NATInterface)
	masquerade := set.Rules[0].Tagged("wgate")
	stale := domain.MasqueradeRule(cfg.Subnet, "eth0").Tagged("wgate")
	foreign := domain.MasqueradeRule("192.168.50.0/24", "eth0")

	fw.On("List", mock.Anything, "nat", "POSTROUTING").Return([]domain.FirewallRule{stale, foreign, masquerade}, nil)
	fw.On("List", mock.Anything, "filter", "FORWARD").Return([]domain.FirewallRule{}, nil)
	fw.On("Delete", mock.Anything, stale).Return(nil)
	fw.On("Exists", mock.Anything, masquerade).Return(true, nil)
	fw.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
	fw.On("Append", mock.Anything, mock.Anything).Return(nil)
	fw.On("Persist", mock.Anything).Return(nil)

	require.NoError(t, svc.ConfigureNAT(context.Background(), 200, cfg.Subnet, cfg.NATInterface))

	fw.AssertExpectations(t)
	fw.AssertNotCalled(t, "Delete", mock.Anything, foreign)
	fw.AssertNotCalled(t, "Append", mock.Anything, masquerade)
	fw.AssertNumberOfCalls(t, "Append", 2)
	for _, r := range set.Rules[1:] {
		fw.AssertCalled(t, "Append", mock.Anything, r.Tagged("wgate"))
	}
}

func TestService_ConfigureNATStopsOnListFailure(t *testing.T) {
	cfg := testConfig(t)
	fw := &mocks.MockFirewall{}
	firewalls := &mocks.MockFirewallProvider{}
	firewalls.On("Container", 200).Return(fw)
	svc := NewService(&mocks.MockContainerManager{}, &mocks.MockTemplateCatalog{}, &mocks.MockHostNetwork{}, firewalls, cfg)

	fw.On("List", mock.Anything, "nat", "POSTROUTING").Return(nil, errors.New("iptables: exit status 4"))

	err := svc.ConfigureNAT(context.Background(), 200, cfg.Subnet, cfg.NATInterface)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to configure NAT")
	fw.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	fw.AssertNotCalled(t, "Persist", mock.Anything)
}
