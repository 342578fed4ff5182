package command

import (
	"context"
	"strings"
	"sync"

	"github.com/bnema/wgate/internal/boundaries/out"
)

// Recorder is a dry-run runner: it records every command and reports success
// without touching the host. Responses can be scripted for read-only probes so
// a plan follows the same branches a real run would take.
type Recorder struct {
	mu        sync.Mutex
	commands  []out.Command
	responses map[string]*out.ExecResult
	failures  map[string]error
	partial   []partialFailure
}

type partialFailure struct {
	substr string
	err    error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		responses: make(map[string]*out.ExecResult),
		failures:  make(map[string]error),
	}
}

// Respond scripts the output returned for an exact command line.
func (r *Recorder) Respond(cmdline string, stdout string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[cmdline] = &out.ExecResult{Stdout: []byte(stdout)}
}

// Fail scripts an error returned for an exact command line.
func (r *Recorder) Fail(cmdline string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[cmdline] = err
}

// FailContaining scripts an error for every command line containing substr.
// Exact scripts take precedence.
func (r *Recorder) FailContaining(substr string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partial = append(r.partial, partialFailure{substr: substr, err: err})
}

func (r *Recorder) Run(_ context.Context, cmd out.Command) (*out.ExecResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = append(r.commands, cmd)
	line := cmd.String()
	if err, ok := r.failures[line]; ok {
		return &out.ExecResult{ExitCode: 1}, err
	}
	if res, ok := r.responses[line]; ok {
		return res, nil
	}
	for _, p := range r.partial {
		if strings.Contains(line, p.substr) {
			return &out.ExecResult{ExitCode: 1}, p.err
		}
	}
	return &out.ExecResult{}, nil
}

// Commands returns the recorded commands in order.
func (r *Recorder) Commands() []out.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]out.Command(nil), r.commands...)
}
