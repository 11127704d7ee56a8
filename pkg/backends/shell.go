package backends

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ShellExecutor runs commands through the system shell. It holds a
// handle to the live child so a cancel request can signal the exact
// process the user is looking at, not a lookup by name or pid.
type ShellExecutor struct {
	// Shell overrides the shell binary. Defaults to bash.
	Shell string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// Execute implements CommandExecutor. Output streams to opts.Sink as
// it arrives while stdout and stderr are captured separately for the
// result. Color is forced on so interactive tools keep their output
// styling under the pipe.
func (e *ShellExecutor) Execute(ctx context.Context, command string, opts ExecOptions) (*Result, error) {
	shell := e.Shell
	if shell == "" {
		shell = "bash"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = opts.WorkDir
	cmd.Env = append(os.Environ(), "FORCE_COLOR=1", "CLICOLOR_FORCE=1")
	cmd.Env = append(cmd.Env, opts.Env...)
	// Child may leave grandchildren holding the pipes; do not wait on
	// them forever.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if opts.Sink != nil {
		cmd.Stdout = io.MultiWriter(&stdout, opts.Sink)
		cmd.Stderr = io.MultiWriter(&stderr, opts.Sink)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn %q: %w", command, err)
	}
	e.setCmd(cmd)
	err := cmd.Wait()
	e.setCmd(nil)

	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if ctx.Err() != nil {
			res.ExitCode = -1
			return res, ctx.Err()
		}
		return nil, fmt.Errorf("run %q: %w", command, err)
	}
	return res, nil
}

// Terminate signals the live child. The in-flight Execute still
// resolves through Wait with the child's final state.
func (e *ShellExecutor) Terminate() {
	e.mu.Lock()
	cmd := e.cmd
	e.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		terminateProcess(cmd.Process)
	}
}

func (e *ShellExecutor) setCmd(cmd *exec.Cmd) {
	e.mu.Lock()
	e.cmd = cmd
	e.mu.Unlock()
}
