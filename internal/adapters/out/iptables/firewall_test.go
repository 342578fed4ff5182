package iptables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wgate/internal/adapters/out/command/fake"
	"github.com/bnema/wgate/internal/domain"
)

func TestFirewall_ContainerCommands(t *testing.T) {
	runner := fake.New()
	fw := NewProvider(runner).Container(200)
	rule := domain.MasqueradeRule("10.10.10.0/24", "wg0")
	ctx := context.Background()

	require.NoError(t, fw.Append(ctx, rule))
	require.NoError(t, fw.Delete(ctx, rule))
	require.NoError(t, fw.Persist(ctx))

	assert.Equal(t, []string{
		"pct exec 200 -- iptables -t nat -A POSTROUTING -s 10.10.10.0/24 -o wg0 -j MASQUERADE",
		"pct exec 200 -- iptables -t nat -D POSTROUTING -s 10.10.10.0/24 -o wg0 -j MASQUERADE",
		"pct exec 200 -- sh -c mkdir -p /etc/iptables && iptables-save > /etc/iptables/rules.v4",
	}, runner.CommandLines())
}

func TestFirewall_HostCommands(t *testing.T) {
	runner := fake.New()
	fw := NewProvider(runner).Host()

	require.NoError(t, fw.Append(context.Background(), domain.ForwardRules("vmbr1", "vmbr0")[0]))
	assert.Equal(t, []string{"iptables -t filter -A FORWARD -i vmbr1 -o vmbr0 -j ACCEPT"}, runner.CommandLines())
}

func TestFirewall_Exists(t *testing.T) {
	rule := domain.MasqueradeRule("10.10.10.0/24", "wg0")

	tests := []struct {
		name     string
		exitCode int
		fail     bool
		want     bool
		wantErr  bool
	}{
		{name: "present", want: true},
		{name: "absent", fail: true, exitCode: 1, want: false},
		{name: "broken", fail: true, exitCode: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := fake.New()
			if tt.fail {
				runner.Fail(fake.CommandSpec{Name: "iptables", Prefix: []string{"-t", "nat", "-C"}}, tt.exitCode, "iptables: Bad rule")
			}
			got, err := NewHost(runner).Exists(context.Background(), rule)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRules(t *testing.T) {
	output := `-P POSTROUTING ACCEPT
-N DOCKER
-A POSTROUTING -s 10.10.10.0/24 -o wg0 -m comment --comment wgate -j MASQUERADE
-A POSTROUTING -s 172.17.0.0/16 ! -o docker0 -m comment --comment "docker bridge" -j MASQUERADE
`
	rules, err := ParseRules("nat", output)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "POSTROUTING", rules[0].Chain)
	assert.True(t, rules[0].HasComment("wgate"))
	assert.Equal(t, domain.MasqueradeRule("10.10.10.0/24", "wg0").Tagged("wgate").Key(), rules[0].Key())

	assert.True(t, rules[1].HasComment("docker bridge"))
	assert.False(t, rules[1].HasComment("wgate"))
}

func TestFirewall_List(t *testing.T) {
	runner := fake.New()
	runner.Output(fake.CommandSpec{Name: "iptables", Args: []string{"-t", "filter", "-S", "FORWARD"}},
		"-P FORWARD DROP\n-A FORWARD -i eth0 -o wg0 -m comment --comment wgate -j ACCEPT\n")

	rules, err := NewHost(runner).List(context.Background(), "filter", "FORWARD")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"-i", "eth0", "-o", "wg0", "-m", "comment", "--comment", "wgate", "-j", "ACCEPT"}, rules[0].Spec)
}
