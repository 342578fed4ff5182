package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/wgate/internal/config"
	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/internal/usecase/provision"
)

func NewDownstreamCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "downstream",
		Short: "Manage containers routed through the gateway",
	}
	cmd.AddCommand(newDownstreamAddCommand(a))
	return cmd
}

func newDownstreamAddCommand(a *App) *cobra.Command {
	var (
		d    config.DownstreamConfig
		save bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a container whose default route is the gateway",
		Long: `Add recreates a container on the bridge with the gateway as its default route.
Without --id and --ip the values are asked for interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if d.ID == 0 || d.IP == "" {
				if !a.Interactive() {
					return fmt.Errorf("%w: --id and --ip are required without a terminal", domain.ErrInputRequired)
				}
				prompted, err := PromptDownstreamContainer(a.Prompter, a.Config)
				if err != nil {
					return err
				}
				if prompted == nil {
					printWarning(a.Out, "No downstream container created")
					return nil
				}
				d = *prompted
			} else {
				d.IP = withBridgePrefix(a.Config, d.IP)
				if err := checkDownstream(a.Config, d); err != nil {
					return err
				}
			}

			prog := newProgress(cmd.ErrOrStderr())
			defer prog.stop()
			svc := a.newService(a.Runner, false, provision.WithHooks(prog.hooks()))
			return a.addDownstream(cmd.Context(), svc, prog, d, save)
		},
	}

	cmd.Flags().IntVar(&d.ID, "id", 0, "container ID")
	cmd.Flags().StringVar(&d.IP, "ip", "", "container address in CIDR form")
	cmd.Flags().StringVar(&d.Hostname, "hostname", "", "container hostname (default wg-client-<id>)")
	cmd.Flags().IntVar(&d.MemoryMB, "memory", 0, "memory in MB (default: same as the gateway)")
	cmd.Flags().IntVar(&d.Cores, "cores", 0, "CPU cores (default: same as the gateway)")
	cmd.Flags().BoolVar(&save, "save", false, "record the container in the config file")
	return cmd
}

