package observe

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ormasoftchile/tact/pkg/backends"
	"github.com/ormasoftchile/tact/pkg/lane"
)

// scriptedExecutor records invocations and replies from a script.
type scriptedExecutor struct {
	commands []string
	fail     bool
	delay    time.Duration
	stdout   string
}

func (s *scriptedExecutor) Execute(ctx context.Context, command string, opts backends.ExecOptions) (*backends.Result, error) {
	s.commands = append(s.commands, command)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fail {
		return &backends.Result{ExitCode: 1, Stderr: "boom"}, nil
	}
	return &backends.Result{Stdout: s.stdout}, nil
}

func (s *scriptedExecutor) Terminate() {}

func desktopBackend(exec backends.CommandExecutor) *backends.DesktopBackend {
	return &backends.DesktopBackend{CTL: "desktop-ctl", Exec: exec}
}

func TestCaptureFilenames(t *testing.T) {
	exec := &scriptedExecutor{}
	c := &Collector{Dir: "/obs", Desktop: desktopBackend(exec)}

	c.Before(context.Background(), 2, "desktop-ctl open notepad")
	c.After(context.Background(), 2, "desktop-ctl open notepad")

	if len(exec.commands) != 2 {
		t.Fatalf("invocations = %v", exec.commands)
	}
	if !strings.Contains(exec.commands[0], "step-2-before.png") {
		t.Errorf("before command = %q", exec.commands[0])
	}
	if !strings.Contains(exec.commands[1], "step-2-after.png") {
		t.Errorf("after command = %q", exec.commands[1])
	}
}

func TestCaptureSkips(t *testing.T) {
	exec := &scriptedExecutor{}
	c := &Collector{Dir: "/obs", Desktop: desktopBackend(exec)}

	c.Before(context.Background(), 0, "ls -la")
	c.Before(context.Background(), 1, "browser-cli navigate https://example.com")
	c.Before(context.Background(), 2, "desktop-ctl screenshot --out mine.png")

	if len(exec.commands) != 0 {
		t.Errorf("capture ran for skipped steps: %v", exec.commands)
	}
}

func TestCaptureFailureSwallowed(t *testing.T) {
	exec := &scriptedExecutor{fail: true}
	c := &Collector{Dir: "/obs", Desktop: desktopBackend(exec)}
	c.Before(context.Background(), 0, "desktop-ctl open notepad")
	// No panic, no error surfaced; the step proceeds regardless.
	if len(exec.commands) != 1 {
		t.Errorf("capture not attempted")
	}
}

func TestCaptureUnconfigured(t *testing.T) {
	c := &Collector{Dir: "/obs"}
	c.Before(context.Background(), 0, "desktop-ctl open notepad")
	var nilc *Collector
	nilc.Before(context.Background(), 0, "desktop-ctl open notepad")
}

func TestDiagnosticsSections(t *testing.T) {
	shell := &scriptedExecutor{stdout: "/work\ntotal 0"}
	desk := &scriptedExecutor{stdout: "notepad.exe"}
	d := &Diagnostics{
		Shell:   shell,
		Desktop: desktopBackend(desk),
		WorkDir: "/work",
	}
	report := d.Collect(context.Background(), []lane.Lane{lane.LaneShell, lane.LaneDesktop})
	if !strings.Contains(report, "## shell") || !strings.Contains(report, "/work") {
		t.Errorf("shell section missing:\n%s", report)
	}
	if !strings.Contains(report, "## desktop") || !strings.Contains(report, "notepad.exe") {
		t.Errorf("desktop section missing:\n%s", report)
	}
	if strings.Contains(report, "## browser") {
		t.Errorf("browser section present without a bridge:\n%s", report)
	}
}

func TestDiagnosticsTimeBounded(t *testing.T) {
	bound := 200 * time.Millisecond
	slow := &scriptedExecutor{delay: 10 * time.Second}
	d := &Diagnostics{Shell: slow, Desktop: desktopBackend(slow), Timeout: bound}
	lanes := []lane.Lane{lane.LaneShell, lane.LaneDesktop}

	start := time.Now()
	report := d.Collect(context.Background(), lanes)
	elapsed := time.Since(start)

	if elapsed > bound+2*time.Second {
		t.Fatalf("collection took %v, bound is %v", elapsed, bound)
	}
	if !strings.Contains(report, "timed out") && !strings.Contains(report, "unavailable") {
		t.Errorf("truncated collection not noted:\n%s", report)
	}
}

func TestClip(t *testing.T) {
	long := strings.Repeat("x", 5000)
	clipped := clip(long, 100)
	if len(clipped) >= 5000 || !strings.Contains(clipped, "truncated") {
		t.Errorf("clip did not truncate: %d bytes", len(clipped))
	}
	if clip("short", 100) != "short" {
		t.Error("short string altered")
	}
}
