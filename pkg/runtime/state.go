// Package runtime drives plan execution: the run state machine, the
// controller that walks steps through the backends, per-step tracing,
// and the self-heal loop that feeds failures back to the translator.
package runtime

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/ormasoftchile/tact/pkg/lane"
)

// State is the run lifecycle phase.
type State string

const (
	// StateIdle: no plan loaded.
	StateIdle State = "idle"
	// StatePreview: a plan is loaded and editable; nothing has run.
	StatePreview State = "preview"
	// StateRunning: steps are executing.
	StateRunning State = "running"
	// StateDone: the batch finished; individual steps may have failed.
	StateDone State = "done"
	// StateCancelled: the user stopped the run or rejected the plan.
	StateCancelled State = "cancelled"
)

// allowedTransitions is the full lifecycle graph. Anything not listed
// is a bug surfaced immediately rather than a silently corrupted run.
var allowedTransitions = map[State][]State{
	StateIdle:      {StatePreview},
	StatePreview:   {StateRunning, StateCancelled, StateIdle},
	StateRunning:   {StateDone, StateCancelled},
	StateDone:      {StateIdle, StatePreview},
	StateCancelled: {StateIdle, StatePreview},
}

// ValidateTransition reports whether moving from one state to the
// other is a legal lifecycle move.
func ValidateTransition(from, to State) error {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("invalid state transition %s -> %s", from, to)
}

// GenerateRunID creates a run ID in format YYYYMMDDTHHmmss-xxxx.
func GenerateRunID() string {
	ts := time.Now().Format("20060102T150405")
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("%s-%x", ts, suffix)
}

// StepStatus is the outcome of one executed step.
type StepStatus string

const (
	StepPassed    StepStatus = "passed"
	StepFailed    StepStatus = "failed"
	StepCancelled StepStatus = "cancelled"
)

// VerifyResult records the post-step check.
type VerifyResult struct {
	Passed bool   `json:"passed" yaml:"passed"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// TimelineEntry is the full record of one step: what was observed,
// what ran, and how it was verified. Entries are appended in strict
// step order.
type TimelineEntry struct {
	StepIndex int        `json:"step_index" yaml:"step_index"`
	Command   string     `json:"command" yaml:"command"`
	Lane      lane.Lane  `json:"lane" yaml:"lane"`
	Status    StepStatus `json:"status" yaml:"status"`
	ExitCode  int        `json:"exit_code" yaml:"exit_code"`

	// Observe names the evidence captured before the step ran, empty
	// when none was taken.
	Observe string `json:"observe,omitempty" yaml:"observe,omitempty"`
	// Intent is the human-readable purpose line shown for the step.
	Intent string `json:"intent,omitempty" yaml:"intent,omitempty"`
	// Actions lists what actually executed, normalized command
	// included.
	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`
	// Verify is the post-step check outcome.
	Verify VerifyResult `json:"verify" yaml:"verify"`

	Output    string    `json:"output,omitempty" yaml:"output,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time `json:"ended_at" yaml:"ended_at"`
}

// InspectorData is the latest structured state per lane, built from
// backend result markers. Newer markers replace older ones key by key.
type InspectorData map[lane.Lane]map[string]any

// RunState is everything a frontend needs to render a run.
type RunState struct {
	RunID      string          `json:"run_id" yaml:"run_id"`
	Title      string          `json:"title" yaml:"title"`
	State      State           `json:"state" yaml:"state"`
	ActiveStep int             `json:"active_step" yaml:"active_step"`
	Timeline   []TimelineEntry `json:"timeline" yaml:"timeline"`
	Inspector  InspectorData   `json:"inspector,omitempty" yaml:"inspector,omitempty"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	EndedAt    time.Time       `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
}

// transition moves the run to a new state, enforcing the lifecycle
// graph.
func (rs *RunState) transition(to State) error {
	if err := ValidateTransition(rs.State, to); err != nil {
		return err
	}
	rs.State = to
	return nil
}

// FailedSteps returns the timeline entries that failed, in order.
func (rs *RunState) FailedSteps() []TimelineEntry {
	var out []TimelineEntry
	for _, e := range rs.Timeline {
		if e.Status == StepFailed {
			out = append(out, e)
		}
	}
	return out
}
