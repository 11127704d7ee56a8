package backends

import (
	"context"
	"fmt"
	"strings"
)

// DesktopBackend invokes the desktop automation script for observation
// and diagnostics. Plan steps in the desktop lane go through the shell
// executor like any other command; this type exists for the
// out-of-band invocations the engine makes on its own behalf.
type DesktopBackend struct {
	// CTL is the canonical desktop controller invocation, interpreter
	// included when the backend is a script.
	CTL string
	// Exec runs the invocations. Usually a dedicated ShellExecutor so
	// observation never races the live plan command for the handle.
	Exec CommandExecutor
}

// Available reports whether a desktop controller is configured.
func (d *DesktopBackend) Available() bool {
	return d != nil && d.CTL != "" && d.Exec != nil
}

// Screenshot captures the desktop to path.
func (d *DesktopBackend) Screenshot(ctx context.Context, path string) error {
	if !d.Available() {
		return fmt.Errorf("desktop backend not configured")
	}
	return d.run(ctx, fmt.Sprintf("%s screenshot --out %s", d.CTL, path))
}

// Apps returns the running-application dump.
func (d *DesktopBackend) Apps(ctx context.Context) (string, error) {
	return d.capture(ctx, d.CTL+" apps")
}

// Window returns the focused-window dump.
func (d *DesktopBackend) Window(ctx context.Context) (string, error) {
	return d.capture(ctx, d.CTL+" window")
}

// OCR returns recognized text from the current screen.
func (d *DesktopBackend) OCR(ctx context.Context) (string, error) {
	return d.capture(ctx, d.CTL+" ocr")
}

func (d *DesktopBackend) run(ctx context.Context, command string) error {
	res, err := d.Exec.Execute(ctx, command, ExecOptions{})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%s: exit %d: %s", command, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

func (d *DesktopBackend) capture(ctx context.Context, command string) (string, error) {
	if !d.Available() {
		return "", fmt.Errorf("desktop backend not configured")
	}
	res, err := d.Exec.Execute(ctx, command, ExecOptions{})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s: exit %d: %s", command, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}
