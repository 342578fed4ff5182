// Package fake provides a scriptable CommandRunner for adapter tests.
package fake

import (
	"context"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/bnema/wgate/internal/adapters/out/command"
	"github.com/bnema/wgate/internal/boundaries/out"
)

// CommandSpec matches executed commands. Empty fields match anything; Prefix
// matches the leading arguments only.
type CommandSpec struct {
	Name   string
	Args   []string
	Prefix []string
}

func (s CommandSpec) Matches(cmd out.Command) bool {
	if s.Name != "" && s.Name != cmd.Name {
		return false
	}
	if len(s.Args) > 0 && !reflect.DeepEqual(s.Args, cmd.Args) {
		return false
	}
	if len(s.Prefix) > 0 {
		if len(cmd.Args) < len(s.Prefix) || !reflect.DeepEqual(s.Prefix, cmd.Args[:len(s.Prefix)]) {
			return false
		}
	}
	return true
}

// Callback produces the result of a matched command.
type Callback func(cmd out.Command) (*out.ExecResult, error)

type registration struct {
	spec     CommandSpec
	callback Callback
}

// ExecutedCommand is a recorded invocation, with stdin drained.
type ExecutedCommand struct {
	out.Command
	StdinData []byte
}

// Runner records executed commands and dispatches them to callbacks. The most
// recent matching registration wins; unmatched commands succeed silently.
type Runner struct {
	mu               sync.Mutex
	ExecutedCommands []ExecutedCommand
	registrations    []registration
}

func New() *Runner {
	return &Runner{}
}

func (r *Runner) Run(_ context.Context, cmd out.Command) (*out.ExecResult, error) {
	var stdin []byte
	if cmd.Stdin != nil {
		stdin, _ = io.ReadAll(cmd.Stdin)
	}

	r.mu.Lock()
	r.ExecutedCommands = append(r.ExecutedCommands, ExecutedCommand{Command: cmd, StdinData: stdin})
	regs := append([]registration(nil), r.registrations...)
	r.mu.Unlock()

	for i := len(regs) - 1; i >= 0; i-- {
		if regs[i].spec.Matches(cmd) {
			return regs[i].callback(cmd)
		}
	}
	return &out.ExecResult{}, nil
}

// WhenRunning registers a callback for commands matching spec.
func (r *Runner) WhenRunning(spec CommandSpec, callback Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations = append(r.registrations, registration{spec: spec, callback: callback})
}

// Output makes commands matching spec print stdout and succeed.
func (r *Runner) Output(spec CommandSpec, stdout string) {
	r.WhenRunning(spec, func(out.Command) (*out.ExecResult, error) {
		return &out.ExecResult{Stdout: []byte(stdout)}, nil
	})
}

// Fail makes commands matching spec exit with the given code and stderr.
func (r *Runner) Fail(spec CommandSpec, exitCode int, stderr string) {
	r.WhenRunning(spec, func(cmd out.Command) (*out.ExecResult, error) {
		return &out.ExecResult{ExitCode: exitCode, Stderr: []byte(stderr)},
			&command.ExitError{Command: cmd.String(), ExitCode: exitCode, Stderr: stderr}
	})
}

// CommandLines returns the executed commands rendered as strings.
func (r *Runner) CommandLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.ExecutedCommands))
	for _, c := range r.ExecutedCommands {
		lines = append(lines, c.String())
	}
	return lines
}

// Executed reports whether a command line starting with prefix was run.
func (r *Runner) Executed(prefix string) bool {
	for _, line := range r.CommandLines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
