// Package cli is the command-line front-end: cobra commands that load the
// configuration, build the provisioner over the host adapters and run it.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bnema/wgate/internal/adapters/out/command"
	"github.com/bnema/wgate/internal/adapters/out/ifupdown"
	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/internal/config"
	"github.com/bnema/wgate/internal/domain"
	"github.com/bnema/wgate/pkg/logger"
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "wgate/skip-config"

// BuildInfo is stamped at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App carries the state shared by the commands.
type App struct {
	Build      BuildInfo
	ConfigPath string
	Config     *config.Config
	Source     string
	RunID      string

	Out         io.Writer
	Err         io.Writer
	Prompter    Prompter
	Runner      out.CommandRunner
	Links       ifupdown.LinkInspector
	Interactive func() bool
}

// NewApp returns an App wired to the real host.
func NewApp(build BuildInfo) *App {
	return &App{
		Build:    build,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Prompter: SurveyPrompter{},
		Runner:   command.NewRunner(),
		Interactive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd())
		},
	}
}

func (a *App) loadConfig() error {
	cfg, source, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	a.Config = cfg
	a.Source = source

	log := logger.GetLogger()
	log.SetLogLevel(cfg.General.LogLevel)
	log.ConfigureFromEnv()

	if source == "" {
		logger.Debug("No configuration file found, using defaults")
	} else {
		logger.Debug("Using configuration file", "path", source)
	}
	return nil
}

// configFile is the file written by commands that persist changes.
func (a *App) configFile() string {
	if a.ConfigPath != "" {
		return a.ConfigPath
	}
	if a.Source != "" {
		return a.Source
	}
	return config.FileName
}

// NewRootCommand builds the command tree.
func NewRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "wgate",
		Short:         "Provision a WireGuard gateway container on a Proxmox host",
		Long:          "wgate builds a private bridge, a container that tunnels its traffic through WireGuard, and containers routed through it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.RunID = uuid.NewString()
			logger.WithRun(a.RunID[:8])
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return a.loadConfig()
		},
	}
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	root.PersistentFlags().StringVarP(&a.ConfigPath, "config", "c", "",
		"config file (default: ./wgate.yml, ~/.config/wgate/config.yml, /etc/wgate/config.yml)")

	root.AddCommand(
		NewProvisionCommand(a),
		NewDownstreamCommand(a),
		NewRotateCommand(a),
		NewStatusCommand(a),
		NewPlanCommand(a),
		NewConfigCommand(a),
		NewVersionCommand(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, build BuildInfo, args []string) int {
	a := NewApp(build)
	root := NewRootCommand(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(a.Err, renderError(err))
	}
	return ExitCode(err)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrOperationCancelled), errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, domain.ErrConfigNotFound):
		return 2
	default:
		return 1
	}
}
