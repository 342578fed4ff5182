package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wgate/internal/boundaries/out"
)

func TestRunner_CapturesStdout(t *testing.T) {
	r := NewRunner()

	res, err := r.Run(context.Background(), out.Command{Name: "sh", Args: []string{"-c", "echo hello"}})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(res.Stdout))
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunner_NonZeroExitCarriesStderr(t *testing.T) {
	r := NewRunner()

	res, err := r.Run(context.Background(), out.Command{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}})

	require.Error(t, err)
	assert.True(t, IsExitError(err))
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunner_PassesStdin(t *testing.T) {
	r := NewRunner()

	res, err := r.Run(context.Background(), out.Command{Name: "cat", Stdin: strings.NewReader("payload")})

	require.NoError(t, err)
	assert.Equal(t, "payload", string(res.Stdout))
}

func TestRunner_MissingProgram(t *testing.T) {
	r := NewRunner()

	_, err := r.Run(context.Background(), out.Command{Name: "wgate-definitely-not-installed"})

	require.Error(t, err)
	assert.False(t, IsExitError(err))
}

func TestRecorder_ScriptsResponses(t *testing.T) {
	rec := NewRecorder()
	rec.Respond("pct status 200", "status: running\n")

	res, err := rec.Run(context.Background(), out.Command{Name: "pct", Args: []string{"status", "200"}})
	require.NoError(t, err)
	assert.Equal(t, "status: running\n", string(res.Stdout))

	_, err = rec.Run(context.Background(), out.Command{Name: "ifup", Args: []string{"vmbr1"}})
	require.NoError(t, err)

	cmds := rec.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "ifup vmbr1", cmds[1].String())
}

func TestRecorder_FailContaining(t *testing.T) {
	rec := NewRecorder()
	absent := &ExitError{Command: "iptables", ExitCode: 1, Stderr: "Bad rule"}
	rec.FailContaining("-t nat -C", absent)
	rec.Respond("iptables -t nat -C POSTROUTING -j MASQUERADE", "")

	_, err := rec.Run(context.Background(), out.Command{Name: "pct", Args: []string{"exec", "200", "--", "iptables", "-t", "nat", "-C", "POSTROUTING", "-o", "wg0", "-j", "MASQUERADE"}})
	assert.ErrorIs(t, err, absent)

	_, err = rec.Run(context.Background(), out.Command{Name: "iptables", Args: []string{"-t", "nat", "-C", "POSTROUTING", "-j", "MASQUERADE"}})
	assert.NoError(t, err)
}
