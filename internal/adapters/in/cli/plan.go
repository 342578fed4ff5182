package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/wgate/internal/adapters/out/command"
	"github.com/bnema/wgate/internal/adapters/out/pct"
	"github.com/bnema/wgate/internal/adapters/out/pveam"
	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/internal/usecase/provision"
	"github.com/bnema/wgate/pkg/templatename"
)

func NewPlanCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the commands provision would run, without changing the host",
		Long: `Plan walks every provisioning step against a recorder instead of the host.
Container states and, when the template is not cached, the catalog listing
are read from the host so replacements and downloads show up; firewall
rules are listed as if absent so every ensured rule is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			downstream := a.Config.DownstreamSpecs()

			rec, err := a.planRecorder(ctx, downstream)
			if err != nil {
				return err
			}

			svc := a.newService(rec, true)
			steps, err := svc.Plan(ctx, rec, downstream)
			renderPlan(a.Out, steps)
			return err
		},
	}
}

// planRecorder scripts the recorder with the live state of the managed
// containers.
func (a *App) planRecorder(ctx context.Context, downstream []domain.ContainerSpec) (*command.Recorder, error) {
	rec := command.NewRecorder()
	live := pct.NewManager(a.Runner)

	ids := []int{a.Config.Gateway.ID}
	for _, spec := range downstream {
		ids = append(ids, spec.ID)
	}
	for _, id := range ids {
		status, err := live.Status(ctx, id)
		if err != nil {
			return nil, err
		}
		line := "pct status " + strconv.Itoa(id)
		if status.Exists() {
			rec.Respond(line, "status: "+string(status)+"\n")
		} else {
			rec.Fail(line, &command.ExitError{Command: line, ExitCode: 2, Stderr: fmt.Sprintf("Configuration file 'nodes/localhost/lxc/%d.conf' does not exist", id)})
		}
	}

	if err := a.planCatalog(ctx, rec); err != nil {
		return nil, err
	}

	absent := &command.ExitError{Command: "iptables", ExitCode: 1, Stderr: "Bad rule (does a matching rule exist in that chain?)."}
	rec.FailContaining("iptables -t nat -C", absent)
	rec.FailContaining("iptables -t filter -C", absent)
	return rec, nil
}

// planCatalog hands the live template listing to the recorder when the cache
// cannot satisfy the configured template, so the plan resolves the archive
// the download step would fetch. Listing the catalog is read-only.
func (a *App) planCatalog(ctx context.Context, rec *command.Recorder) error {
	ref := a.Config.TemplateRef()
	cached, err := pveam.NewCatalog(a.Runner, a.Config.Host.TemplateCacheDir).Cached(ctx, ref.Storage)
	if err != nil {
		return fmt.Errorf("failed to read template cache: %w", err)
	}
	if _, ok := templatename.Resolve(ref.Name, cached); ok {
		return nil
	}

	cmd := out.Command{Name: "pveam", Args: []string{"available", "--section", "system"}}
	res, err := a.Runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to list available templates: %w", err)
	}
	rec.Respond(cmd.String(), string(res.Stdout))
	return nil
}

func renderPlan(w io.Writer, steps []provision.PlannedStep) {
	fmt.Fprintln(w, renderTitle("wgate plan"))
	for i, st := range steps {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, st.Name)
		if len(st.Commands) == 0 {
			fmt.Fprintln(w, "   "+renderMuted("nothing to do"))
			continue
		}
		for _, c := range st.Commands {
			fmt.Fprintln(w, "   "+renderMuted(c))
		}
	}
}
