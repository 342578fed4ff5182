package out

import (
	"context"
	"io"
	"strings"
)

// Command is an external program invocation.
type Command struct {
	Name  string
	Args  []string
	Stdin io.Reader
}

// String renders the command line for logs and plans.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// CommandRunner runs external programs. Implementations return a non-nil
// error when the program cannot be started or exits non-zero; the result is
// returned alongside so callers can inspect output either way.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (*ExecResult, error)
}
