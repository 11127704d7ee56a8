// Package translator turns natural-language instructions into command
// plans, and repairs plans that failed at runtime. The model is behind
// a small interface so tests and alternate providers can swap in
// without touching the pipeline.
package translator

import (
	"context"
	"errors"

	"github.com/ormasoftchile/tact/pkg/plan"
)

// ErrNoCommands means the model replied but produced nothing runnable:
// an empty, malformed, or note-only reply. This is a terminal
// translation failure, not a step failure; it never consumes retry
// budget.
var ErrNoCommands = errors.New("translation produced no runnable commands")

// Client translates instructions into plans.
type Client interface {
	// Translate turns an instruction into an ordered command plan.
	Translate(ctx context.Context, instruction string) (*plan.Plan, error)

	// Repair takes a failure report from a previous run and returns a
	// corrected plan for the same instruction.
	Repair(ctx context.Context, instruction, report string) (*plan.Plan, error)

	// ModelName identifies the backing model for manifests and logs.
	ModelName() string
}
