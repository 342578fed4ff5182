package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bnema/wgate/internal/config"
	"github.com/bnema/wgate/internal/usecase/provision"
)

func NewProvisionCommand(a *App) *cobra.Command {
	var (
		gatewayOnly bool
		noPrompt    bool
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision the bridge, the gateway and the declared downstream containers",
		Long: `Provision builds the host bridge and NAT, recreates the gateway container,
installs WireGuard with a service that brings up a randomly chosen profile,
and recreates every downstream container declared in the configuration.
Afterwards it offers to add one more downstream container interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(cmd.ErrOrStderr())
			defer prog.stop()

			svc := a.newService(a.Runner, false, provision.WithHooks(prog.hooks()))

			downstream := a.Config.DownstreamSpecs()
			if gatewayOnly {
				downstream = nil
			}
			if err := svc.Run(ctx, downstream); err != nil {
				return err
			}
			prog.stop()
			printSuccess(a.Out, "Gateway %d is up at %s", a.Config.Gateway.ID, a.Config.Gateway.IP)
			for _, spec := range downstream {
				printSuccess(a.Out, "Container %d is up at %s", spec.ID, spec.IP)
			}

			if noPrompt || !a.Interactive() {
				return nil
			}
			return a.promptDownstream(ctx, svc, prog, save)
		},
	}

	cmd.Flags().BoolVar(&gatewayOnly, "gateway-only", false, "skip the declared downstream containers")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "do not offer to add a downstream container")
	cmd.Flags().BoolVar(&save, "save", false, "record an interactively added container in the config file")
	return cmd
}

// promptDownstream offers to create one more container behind the gateway.
func (a *App) promptDownstream(ctx context.Context, svc *provision.Service, prog *progress, save bool) error {
	d, err := PromptDownstreamContainer(a.Prompter, a.Config)
	if err != nil {
		return err
	}
	if d == nil {
		printWarning(a.Out, "No downstream container created")
		return nil
	}
	return a.addDownstream(ctx, svc, prog, *d, save)
}

func (a *App) addDownstream(ctx context.Context, svc *provision.Service, prog *progress, d config.DownstreamConfig, save bool) error {
	gw, err := svc.GatewayAddr()
	if err != nil {
		return err
	}
	spec := a.Config.DownstreamSpec(d)
	if err := svc.ProvisionDownstream(ctx, spec, gw); err != nil {
		return err
	}
	prog.stop()
	printSuccess(a.Out, "Container %d is up at %s, routed through %s", spec.ID, spec.IP, gw)

	if save {
		path := a.configFile()
		if err := config.AppendDownstream(path, d); err != nil {
			return err
		}
		printSuccess(a.Out, "Recorded container %d in %s", d.ID, path)
	}
	return nil
}
