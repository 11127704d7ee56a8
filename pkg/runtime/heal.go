package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/ormasoftchile/tact/pkg/observe"
	"github.com/ormasoftchile/tact/pkg/plan"
)

// failureReport gathers diagnostics for the lanes the plan touched and
// assembles the repair prompt body.
func (s *Session) failureReport(ctx context.Context, p *plan.Plan, rr *RunResult) string {
	diag := &observe.Diagnostics{
		Shell:   s.cfg.Shell,
		Browser: s.cfg.Browser,
		Desktop: s.cfg.Desktop,
		WorkDir: s.cfg.WorkDir,
		Log:     s.cfg.Log,
	}
	return BuildFailureReport(p, rr.Failed, diag.Collect(ctx, p.Lanes()))
}

// BuildFailureReport renders a structured failure report: every failed
// step with its literal command, exit code, and captured output, the
// full plan for context, and the environment diagnostics. The
// translator repairs from this text alone, so it errs toward complete
// over compact.
func BuildFailureReport(p *plan.Plan, failed []TimelineEntry, diagnostics string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run failure report\nplan: %s\n\n", p.Title)

	sb.WriteString("## failed steps\n")
	for _, e := range failed {
		fmt.Fprintf(&sb, "### step %d\ncommand: %s\nlane: %s\nexit_code: %d\n",
			e.StepIndex+1, e.Command, e.Lane, e.ExitCode)
		if e.Error != "" {
			fmt.Fprintf(&sb, "error: %s\n", e.Error)
		}
		if !e.Verify.Passed && e.Verify.Detail != "" {
			fmt.Fprintf(&sb, "verify: %s\n", e.Verify.Detail)
		}
		if e.Output != "" {
			fmt.Fprintf(&sb, "output:\n%s\n", strings.TrimSpace(e.Output))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## full plan\n")
	for i, step := range p.Steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step.Command)
	}

	if diagnostics != "" {
		sb.WriteString("\n## environment\n")
		sb.WriteString(diagnostics)
	}
	return sb.String()
}
