package backends

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestExecuteSuccess(t *testing.T) {
	e := &ShellExecutor{}
	var sink bytes.Buffer
	res, err := e.Execute(context.Background(), "echo hello", ExecOptions{Sink: &sink})
	if err != nil {
		t.Fatal(err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit = %d", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, "hello") {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if !strings.Contains(sink.String(), "hello") {
		t.Errorf("sink = %q, output not streamed", sink.String())
	}
}

func TestExecuteNonZeroExitIsNotError(t *testing.T) {
	e := &ShellExecutor{}
	res, err := e.Execute(context.Background(), "exit 3", ExecOptions{})
	if err != nil {
		t.Fatalf("nonzero exit returned error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit = %d, want 3", res.ExitCode)
	}
}

func TestExecuteSeparateCapture(t *testing.T) {
	e := &ShellExecutor{}
	res, err := e.Execute(context.Background(), "echo out; echo err 1>&2", ExecOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Stdout, "out") || strings.Contains(res.Stdout, "err") {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if !strings.Contains(res.Stderr, "err") || strings.Contains(res.Stderr, "out") {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestExecuteSpawnFailure(t *testing.T) {
	e := &ShellExecutor{Shell: "/nonexistent/shell"}
	_, err := e.Execute(context.Background(), "echo hi", ExecOptions{})
	if err == nil {
		t.Fatal("missing shell did not fail spawn")
	}
	if !strings.Contains(err.Error(), "spawn") {
		t.Errorf("err = %v, want spawn failure", err)
	}
}

func TestExecuteWorkDir(t *testing.T) {
	dir := t.TempDir()
	e := &ShellExecutor{}
	res, err := e.Execute(context.Background(), "pwd", ExecOptions{WorkDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Stdout, dir) {
		t.Errorf("pwd = %q, want %q", res.Stdout, dir)
	}
}

func TestTerminateResolvesExecute(t *testing.T) {
	e := &ShellExecutor{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		// The sleep would run far past the test deadline if the
		// termination signal were lost.
		res, err := e.Execute(context.Background(), "sleep 30", ExecOptions{})
		if err == nil && res.ExitCode == 0 {
			t.Error("terminated command reported success")
		}
	}()

	// Wait for the child to appear, then signal it.
	deadline := time.After(5 * time.Second)
	for {
		e.mu.Lock()
		running := e.cmd != nil
		e.mu.Unlock()
		if running {
			break
		}
		select {
		case <-deadline:
			t.Fatal("command never started")
		case <-time.After(10 * time.Millisecond):
		}
	}
	e.Terminate()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Execute did not resolve after Terminate")
	}
}

func TestTerminateIdleIsNoop(t *testing.T) {
	e := &ShellExecutor{}
	e.Terminate()
}

func TestExecuteContextCancel(t *testing.T) {
	e := &ShellExecutor{}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := e.Execute(ctx, "sleep 30", ExecOptions{})
	if err == nil {
		t.Fatal("cancelled execution returned no error")
	}
}
