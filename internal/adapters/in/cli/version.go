package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (b BuildInfo) String() string {
	version := b.Version
	if version == "" {
		version = "dev"
	}
	s := "wgate " + version
	if b.Commit != "" {
		s += fmt.Sprintf(" (commit %s", b.Commit)
		if b.Date != "" {
			s += ", built " + b.Date
		}
		s += ")"
	}
	return s
}

func NewVersionCommand(a *App) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Display the version of wgate",
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				v := a.Build.Version
				if v == "" {
					v = "dev"
				}
				fmt.Fprintln(a.Out, v)
				return
			}
			fmt.Fprintln(a.Out, a.Build.String())
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "show only the version number")
	return cmd
}
