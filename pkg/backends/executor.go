// Package backends executes plan commands. Each lane has its own
// executor; all of them stream output to a caller-supplied sink as it
// arrives and return a complete result when the command resolves.
package backends

import (
	"context"
	"io"
	"time"
)

// Result is the outcome of one command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Merged returns the captured output in a stable stdout-then-stderr
// order for reports. Live interleaving goes to the sink instead.
func (r *Result) Merged() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// ExecOptions carry per-invocation settings.
type ExecOptions struct {
	// WorkDir is the working directory for the command. Empty means
	// the process working directory.
	WorkDir string

	// Env entries are appended to the inherited environment.
	Env []string

	// Sink receives output chunks in arrival order, stdout and stderr
	// interleaved. May be nil.
	Sink io.Writer
}

// CommandExecutor runs one command at a time. A command that fails to
// spawn returns an error; a command that spawns and exits nonzero
// returns a Result with the exit code and no error. Implementations
// must resolve even when the child is terminated externally.
type CommandExecutor interface {
	Execute(ctx context.Context, command string, opts ExecOptions) (*Result, error)

	// Terminate signals the currently running command, if any. Safe to
	// call from another goroutine and when nothing is running.
	Terminate()
}
