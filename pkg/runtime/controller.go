package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ormasoftchile/tact/pkg/backends"
	"github.com/ormasoftchile/tact/pkg/lane"
	"github.com/ormasoftchile/tact/pkg/observe"
	"github.com/ormasoftchile/tact/pkg/plan"
	"github.com/ormasoftchile/tact/pkg/safety"
)

// entryOutputLimit bounds the output stored per timeline entry.
const entryOutputLimit = 16 * 1024

// ControllerConfig wires a controller's collaborators.
type ControllerConfig struct {
	Plan      *plan.Plan
	Gate      *safety.Gate
	StepGate  *StepGate
	Observer  *observe.Collector
	Normalize *backends.Normalizer

	// Executors maps lanes to backends. Lanes without an entry fall
	// back to Shell.
	Executors map[lane.Lane]backends.CommandExecutor
	Shell     backends.CommandExecutor

	// WorkDir is the working directory for commands.
	WorkDir string
	// BaseDir is the parent of per-run artifact directories.
	BaseDir string
	Log     *zap.Logger
}

// Controller owns one run of one plan: the lifecycle state machine,
// step execution, tracing, and cancellation. Exactly one command is in
// flight at any time, and the controller holds its executor so a
// cancel can signal the live child directly.
type Controller struct {
	cfg    ControllerConfig
	state  *RunState
	trace  *TraceWriter
	runDir string

	cancelled atomic.Bool
	mu        sync.Mutex
	live      backends.CommandExecutor
	toolRuns  []*ToolRun
}

// RunResult summarizes a completed Run call.
type RunResult struct {
	RunID     string
	Cancelled bool
	Failed    []TimelineEntry
}

// NewController creates the run directory and puts the plan in
// preview.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Plan == nil || len(cfg.Plan.Steps) == 0 {
		return nil, fmt.Errorf("new controller: empty plan")
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.StepGate == nil {
		cfg.StepGate = NewStepGate(false)
	}
	if cfg.Gate == nil {
		cfg.Gate = &safety.Gate{}
	}

	runID := GenerateRunID()
	runDir := filepath.Join(cfg.BaseDir, runID)
	if err := os.MkdirAll(filepath.Join(runDir, "observations"), 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	if cfg.Observer != nil && cfg.Observer.Dir == "" {
		cfg.Observer.Dir = filepath.Join(runDir, "observations")
	}

	trace, err := NewTraceWriter(filepath.Join(runDir, "trace.jsonl"), runID)
	if err != nil {
		return nil, err
	}

	state := &RunState{
		RunID:      runID,
		Title:      cfg.Plan.Title,
		State:      StateIdle,
		ActiveStep: -1,
		Inspector:  InspectorData{},
	}
	if err := state.transition(StatePreview); err != nil {
		return nil, err
	}

	return &Controller{cfg: cfg, state: state, trace: trace, runDir: runDir}, nil
}

// Plan returns the plan under preview.
func (c *Controller) Plan() *plan.Plan { return c.cfg.Plan }

// State returns the live run state.
func (c *Controller) State() *RunState { return c.state }

// RunDir returns this run's artifact directory.
func (c *Controller) RunDir() string { return c.runDir }

// ToolRuns returns the tool runs created so far, in step order.
func (c *Controller) ToolRuns() []*ToolRun {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*ToolRun(nil), c.toolRuns...)
}

// AddStep appends a command while the plan is in preview.
func (c *Controller) AddStep(command, verify string) error {
	if err := c.editable(); err != nil {
		return err
	}
	c.cfg.Plan.Append(command, verify)
	return nil
}

// EditStep replaces the command of step i while in preview.
func (c *Controller) EditStep(i int, command string) error {
	if err := c.editable(); err != nil {
		return err
	}
	return c.cfg.Plan.Update(i, command)
}

// RemoveStep deletes step i while in preview.
func (c *Controller) RemoveStep(i int) error {
	if err := c.editable(); err != nil {
		return err
	}
	return c.cfg.Plan.Remove(i)
}

func (c *Controller) editable() error {
	if c.state.State != StatePreview {
		return fmt.Errorf("plan not editable in state %s", c.state.State)
	}
	return nil
}

// Cancel stops the run: the live child is signalled, a pending step
// gate is released, and no further steps start. Safe from any
// goroutine.
func (c *Controller) Cancel() {
	c.cancelled.Store(true)
	c.cfg.StepGate.Stop()
	c.mu.Lock()
	live := c.live
	c.mu.Unlock()
	if live != nil {
		live.Terminate()
	}
}

// Run executes the plan to completion. The safety gate is consulted
// once for the whole batch before the first step; step failures are
// recorded and execution continues. force bypasses the confirmation
// prompt for this run only.
func (c *Controller) Run(ctx context.Context, force bool) (*RunResult, error) {
	if err := c.state.transition(StateRunning); err != nil {
		return nil, err
	}
	c.state.StartedAt = time.Now()
	if err := c.trace.WriteState(StateRunning); err != nil {
		c.cfg.Log.Warn("trace state write failed", zap.Error(err))
	}

	dangerous, err := c.cfg.Gate.Check(ctx, c.cfg.Plan.Commands(), c.cfg.WorkDir, force)
	if err != nil {
		c.finish(StateCancelled)
		if errors.Is(err, safety.ErrRejected) {
			c.cfg.Log.Info("plan rejected at safety gate",
				zap.String("run_id", c.state.RunID),
				zap.Strings("dangerous", dangerous))
			return &RunResult{RunID: c.state.RunID, Cancelled: true}, nil
		}
		return nil, err
	}
	if len(dangerous) > 0 {
		c.cfg.Log.Info("destructive commands approved",
			zap.String("run_id", c.state.RunID),
			zap.Strings("dangerous", dangerous))
	}

	for i := range c.cfg.Plan.Steps {
		if c.cancelled.Load() || ctx.Err() != nil {
			break
		}
		if i > 0 {
			cont, gateErr := c.cfg.StepGate.Wait(ctx)
			if gateErr != nil || !cont {
				c.cancelled.Store(true)
				break
			}
		}
		entry := c.executeStep(ctx, i)
		c.state.Timeline = append(c.state.Timeline, entry)
		if err := c.trace.WriteStep(&entry); err != nil {
			c.cfg.Log.Warn("trace step write failed", zap.Error(err))
		}
		if err := c.state.Snapshot(filepath.Join(c.runDir, "state.json")); err != nil {
			c.cfg.Log.Warn("snapshot write failed", zap.Error(err))
		}
	}

	final := StateDone
	if c.cancelled.Load() || ctx.Err() != nil {
		final = StateCancelled
	}
	c.finish(final)

	res := &RunResult{
		RunID:     c.state.RunID,
		Cancelled: final == StateCancelled,
		Failed:    c.state.FailedSteps(),
	}
	return res, nil
}

func (c *Controller) executeStep(ctx context.Context, i int) TimelineEntry {
	step := c.cfg.Plan.Steps[i]
	c.state.ActiveStep = i

	command := step.Command
	if c.cfg.Normalize != nil {
		command = c.cfg.Normalize.Normalize(command)
	}

	entry := TimelineEntry{
		StepIndex: i,
		Command:   step.Command,
		Lane:      step.Lane,
		Intent:    step.Command,
		Actions:   []string{command},
		StartedAt: time.Now(),
	}
	if c.cfg.Observer.Captures(command) {
		entry.Observe = fmt.Sprintf("step-%d-before.png", i)
	}
	c.cfg.Observer.Before(ctx, i, command)

	tr := NewToolRun(string(step.Lane), command)
	c.mu.Lock()
	c.toolRuns = append(c.toolRuns, tr)
	c.mu.Unlock()

	exec := c.executorFor(step.Lane)
	if exec == nil {
		entry.EndedAt = time.Now()
		entry.Status = StepFailed
		entry.ExitCode = -1
		entry.Error = fmt.Sprintf("no executor for lane %s", step.Lane)
		entry.Verify = VerifyResult{Passed: false, Detail: entry.Error}
		tr.Finish(ToolFailed, entry.Error)
		return entry
	}
	c.setLive(exec)
	res, err := exec.Execute(ctx, command, backends.ExecOptions{
		WorkDir: c.cfg.WorkDir,
		Sink:    tr,
	})
	c.setLive(nil)
	entry.EndedAt = time.Now()

	switch {
	case err != nil && (c.cancelled.Load() || ctx.Err() != nil):
		entry.Status = StepCancelled
		entry.ExitCode = -1
		entry.Error = err.Error()
		tr.Finish(ToolFailed, "cancelled")
	case err != nil:
		// Spawn failure: the command never ran.
		entry.Status = StepFailed
		entry.ExitCode = -1
		entry.Error = err.Error()
		entry.Verify = VerifyResult{Passed: false, Detail: err.Error()}
		tr.Finish(ToolFailed, err.Error())
	default:
		output := res.Merged()
		entry.ExitCode = res.ExitCode
		entry.Output = clipOutput(output)
		entry.Verify = evalVerify(step.Verify, output, res.ExitCode)
		if entry.Verify.Passed {
			entry.Status = StepPassed
			tr.Finish(ToolDone, fmt.Sprintf("exit %d in %s", res.ExitCode, res.Duration.Round(time.Millisecond)))
		} else {
			entry.Status = StepFailed
			tr.Finish(ToolFailed, entry.Verify.Detail)
		}
		c.state.Inspector.ApplyResultMarkers(step.Lane, output)
	}

	// A terminated child surfaces as a plain nonzero exit; fold the
	// pending cancel into the entry status.
	if entry.Status == StepFailed && c.cancelled.Load() {
		entry.Status = StepCancelled
	}

	c.cfg.Observer.After(ctx, i, command)

	c.cfg.Log.Info("step finished",
		zap.String("run_id", c.state.RunID),
		zap.Int("step", i),
		zap.String("lane", string(step.Lane)),
		zap.String("status", string(entry.Status)),
		zap.Int("exit_code", entry.ExitCode))
	return entry
}

func (c *Controller) executorFor(ln lane.Lane) backends.CommandExecutor {
	if exec, ok := c.cfg.Executors[ln]; ok && exec != nil {
		return exec
	}
	return c.cfg.Shell
}

func (c *Controller) setLive(exec backends.CommandExecutor) {
	c.mu.Lock()
	c.live = exec
	c.mu.Unlock()
}

func (c *Controller) finish(final State) {
	c.state.ActiveStep = -1
	c.state.EndedAt = time.Now()
	if err := c.state.transition(final); err != nil {
		c.cfg.Log.Warn("final transition rejected", zap.Error(err))
		c.state.State = final
	}
	if err := c.trace.WriteState(final); err != nil {
		c.cfg.Log.Warn("trace state write failed", zap.Error(err))
	}
	if err := c.state.Snapshot(filepath.Join(c.runDir, "state.json")); err != nil {
		c.cfg.Log.Warn("snapshot write failed", zap.Error(err))
	}
	if err := c.trace.Close(); err != nil {
		c.cfg.Log.Warn("trace close failed", zap.Error(err))
	}
}

func clipOutput(s string) string {
	if len(s) <= entryOutputLimit {
		return s
	}
	return s[len(s)-entryOutputLimit:]
}
