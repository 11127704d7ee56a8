// Package observe captures visual evidence around desktop steps and
// gathers environment diagnostics for failure reports. Observation is
// best-effort everywhere: a missing screenshot never changes a step's
// outcome.
package observe

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ormasoftchile/tact/pkg/backends"
	"github.com/ormasoftchile/tact/pkg/lane"
)

// Collector takes screenshots before and after desktop steps.
type Collector struct {
	// Dir receives the screenshot files.
	Dir string
	// Desktop is the screenshot backend. A nil or unconfigured backend
	// disables capture.
	Desktop *backends.DesktopBackend
	Log     *zap.Logger
}

// Captures reports whether a command qualifies for screenshot capture.
func (c *Collector) Captures(command string) bool {
	if c == nil || !c.Desktop.Available() {
		return false
	}
	return lane.Classify(command) == lane.LaneDesktop && !lane.IsScreenshot(command)
}

// Before captures the pre-step screenshot for step n (zero-based
// display index is the caller's concern; n is used verbatim in the
// filename). Non-desktop steps and screenshot commands themselves are
// skipped.
func (c *Collector) Before(ctx context.Context, n int, command string) {
	c.capture(ctx, n, command, "before")
}

// After captures the post-step screenshot for step n.
func (c *Collector) After(ctx context.Context, n int, command string) {
	c.capture(ctx, n, command, "after")
}

func (c *Collector) capture(ctx context.Context, n int, command, phase string) {
	if !c.Captures(command) {
		return
	}
	path := filepath.Join(c.Dir, fmt.Sprintf("step-%d-%s.png", n, phase))
	if err := c.Desktop.Screenshot(ctx, path); err != nil && c.Log != nil {
		c.Log.Debug("observation screenshot failed",
			zap.Int("step", n),
			zap.String("phase", phase),
			zap.Error(err))
	}
}
