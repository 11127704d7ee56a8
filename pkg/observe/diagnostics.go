package observe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ormasoftchile/tact/pkg/backends"
	"github.com/ormasoftchile/tact/pkg/lane"
)

// DiagnosticsTimeout bounds the whole diagnostics sweep. Repair must
// never stall behind a wedged backend; whatever is collected when the
// clock runs out is the report.
const DiagnosticsTimeout = 12 * time.Second

// Diagnostics gathers environment state for a failure report. Each
// lane the plan touched contributes its own section; sections that
// fail or time out are noted and skipped.
type Diagnostics struct {
	Shell   backends.CommandExecutor
	Browser *backends.BrowserBridge
	Desktop *backends.DesktopBackend
	WorkDir string
	Log     *zap.Logger

	// Timeout overrides DiagnosticsTimeout when positive.
	Timeout time.Duration
}

// Collect returns a text report of the current environment for the
// given lanes.
func (d *Diagnostics) Collect(ctx context.Context, lanes []lane.Lane) string {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DiagnosticsTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var sb strings.Builder
	for _, ln := range lanes {
		if ctx.Err() != nil {
			sb.WriteString("diagnostics collection timed out\n")
			break
		}
		switch ln {
		case lane.LaneShell:
			d.shellSection(ctx, &sb)
		case lane.LaneBrowser:
			d.browserSection(ctx, &sb)
		case lane.LaneDesktop:
			d.desktopSection(ctx, &sb)
		}
	}
	return sb.String()
}

func (d *Diagnostics) shellSection(ctx context.Context, sb *strings.Builder) {
	if d.Shell == nil {
		return
	}
	sb.WriteString("## shell\n")
	res, err := d.Shell.Execute(ctx, "pwd && ls -la", backends.ExecOptions{WorkDir: d.WorkDir})
	if err != nil || res.ExitCode != 0 {
		fmt.Fprintf(sb, "directory listing unavailable: %v\n", err)
		return
	}
	sb.WriteString(clip(res.Stdout, 2048))
	sb.WriteString("\n")
}

func (d *Diagnostics) browserSection(ctx context.Context, sb *strings.Builder) {
	if d.Browser == nil {
		return
	}
	sb.WriteString("## browser\n")
	url, title := d.Browser.Location(ctx)
	if url == "" {
		sb.WriteString("no live page\n")
		return
	}
	fmt.Fprintf(sb, "url: %s\ntitle: %s\n", url, title)
	if content, err := d.Browser.Content(ctx); err == nil {
		sb.WriteString(clip(content, 2048))
		sb.WriteString("\n")
	}
}

func (d *Diagnostics) desktopSection(ctx context.Context, sb *strings.Builder) {
	if !d.Desktop.Available() {
		return
	}
	sb.WriteString("## desktop\n")
	if apps, err := d.Desktop.Apps(ctx); err == nil {
		sb.WriteString("running applications:\n")
		sb.WriteString(clip(apps, 1024))
		sb.WriteString("\n")
	} else if d.Log != nil {
		d.Log.Debug("apps diagnostic failed", zap.Error(err))
	}
	if win, err := d.Desktop.Window(ctx); err == nil {
		sb.WriteString("focused window:\n")
		sb.WriteString(clip(win, 1024))
		sb.WriteString("\n")
	}
}

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n…truncated"
}
