// Package command runs host programs for the driven adapters.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/wgate/internal/boundaries/out"
	"github.com/bnema/wgate/pkg/logger"
)

// Runner executes commands with os/exec.
type Runner struct{}

// NewRunner creates a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes cmd and captures its output. A non-zero exit is returned as an
// error carrying the program's stderr.
func (r *Runner) Run(ctx context.Context, cmd out.Command) (*out.ExecResult, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	c.Stdout = stdout
	c.Stderr = stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	logger.Debug("Running command", "cmd", cmd.String())

	err := c.Run()
	result := &out.ExecResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if c.ProcessState != nil {
		result.ExitCode = c.ProcessState.ExitCode()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, &ExitError{Command: cmd.String(), ExitCode: result.ExitCode, Stderr: strings.TrimSpace(stderr.String())}
		}
		return result, fmt.Errorf("failed to run %s: %w", cmd.Name, err)
	}

	return result, nil
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// IsExitError reports whether err is a non-zero exit, as opposed to a failure
// to start the program at all.
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
