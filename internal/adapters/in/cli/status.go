package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/bnema/wgate/internal/adapters/in/cli/ui/styles"
	"github.com/bnema/wgate/internal/usecase/provision"
)

func NewStatusCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the bridge, the gateway tunnel and the managed containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.newService(a.Runner, false)
			report, err := svc.Status(cmd.Context(), a.Config.DownstreamSpecs())
			if err != nil {
				return err
			}
			renderReport(a.Out, report)
			return nil
		},
	}
}

func renderReport(w io.Writer, report *provision.Report) {
	bridgeState := "down"
	if report.BridgeActive {
		bridgeState = "active"
	}

	fmt.Fprintln(w, renderTitle("wgate status"))
	fmt.Fprintln(w, renderMeta("Bridge:", fmt.Sprintf("%s %s %s", report.Bridge.Name, report.Bridge.CIDR, styles.RenderState(bridgeState))))
	fmt.Fprintln(w, renderMeta("Tunnel:", fmt.Sprintf("%s %s", report.TunnelUnit, styles.RenderState(report.TunnelState))))
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Role", "ID", "Hostname", "IP", "Status"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoFormatHeaders(false)
	for _, c := range report.Containers {
		table.Append([]string{c.Role, strconv.Itoa(c.ID), c.Hostname, c.IP, styles.RenderState(string(c.Status))})
	}
	table.Render()
}
