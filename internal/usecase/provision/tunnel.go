package provision

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/kballard/go-shellquote"

	"github.com/bnema/wgate/internal/domain"
)

// Values are shell-quoted; they come from the configuration file.
var tunnelScript = template.Must(template.New("script").Funcs(template.FuncMap{
	"quote": func(s string) string { return shellquote.Join(s) },
}).Parse(`#!/bin/sh
# Managed by wgate.
set -eu

CONFIG_DIR={{quote .ConfigDir}}
IFACE={{quote .Interface}}

case "${1:-}" in
start)
	profile=$(find "$CONFIG_DIR" -maxdepth 1 -type f -name {{quote .Pattern}} | shuf -n 1)
	if [ -z "$profile" ]; then
		echo "no tunnel profile in $CONFIG_DIR" >&2
		exit 1
	fi
	echo "using $profile"
	install -m 0600 "$profile" {{quote .ActiveConfigPath}}
	exec wg-quick up "$IFACE"
	;;
stop)
	exec wg-quick down "$IFACE"
	;;
*)
	echo "usage: $0 start|stop" >&2
	exit 2
	;;
esac
`))

var tunnelUnit = template.Must(template.New("unit").Parse(`[Unit]
Description=wgate WireGuard tunnel ({{.Interface}})
After=network-online.target
Wants=network-online.target

[Service]
Type=oneshot
RemainAfterExit=yes
ExecStart={{.ScriptPath}} start
ExecStop={{.ScriptPath}} stop
Restart=on-failure
RestartSec={{.RestartSec}}

[Install]
WantedBy=multi-user.target
`))

// RenderTunnelScript renders the start/stop script that selects a profile.
func RenderTunnelScript(svc domain.TunnelService) ([]byte, error) {
	var buf bytes.Buffer
	if err := tunnelScript.Execute(&buf, svc); err != nil {
		return nil, fmt.Errorf("failed to render tunnel script: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTunnelUnit renders the systemd unit supervising the tunnel.
func RenderTunnelUnit(svc domain.TunnelService) ([]byte, error) {
	var buf bytes.Buffer
	if err := tunnelUnit.Execute(&buf, svc); err != nil {
		return nil, fmt.Errorf("failed to render tunnel unit: %w", err)
	}
	return buf.Bytes(), nil
}
