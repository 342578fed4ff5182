package cli

import (
	"github.com/spf13/cobra"
)

func NewRotateCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate [profile]",
		Short: "Switch the gateway tunnel to another WireGuard profile",
		Long: `Rotate brings the tunnel down and up again with the named profile, or with a
profile picked at random from the gateway's profile directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := ""
			if len(args) == 1 {
				profile = args[0]
			}

			svc := a.newService(a.Runner, false)
			used, err := svc.Rotate(cmd.Context(), profile)
			if err != nil {
				return err
			}
			printSuccess(a.Out, "Tunnel %s now uses %s", a.Config.VPN.Interface, used)
			return nil
		},
	}
}
