// Package plan holds the editable command plan produced by translation
// and consumed by the run controller. A plan is an ordered list of
// command steps; every mutation recomputes the derived lane and risk
// fields so they can never go stale against the command text.
package plan

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ormasoftchile/tact/pkg/lane"
	"github.com/ormasoftchile/tact/pkg/safety"
)

// Risk marks whether a step needs user approval before running.
type Risk string

const (
	RiskSafe          Risk = "safe"
	RiskNeedsApproval Risk = "needs_approval"
)

// Step is one executable command in a plan. Lane and Risk are derived
// from Command and recomputed on every mutation.
type Step struct {
	ID      string    `yaml:"id" json:"id"`
	Command string    `yaml:"command" json:"command"`
	Lane    lane.Lane `yaml:"lane" json:"lane"`
	Risk    Risk      `yaml:"risk" json:"risk"`
	Verify  string    `yaml:"verify,omitempty" json:"verify,omitempty"`
}

// Plan is an ordered command batch for one automation request.
type Plan struct {
	Title       string `yaml:"title" json:"title"`
	Instruction string `yaml:"instruction,omitempty" json:"instruction,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`

	// Healed marks a plan produced by failure repair. A healed plan is
	// entitled to exactly one automatic run.
	Healed bool `yaml:"healed,omitempty" json:"healed,omitempty"`
}

// New builds a plan from raw command strings, deriving lane and risk
// for each.
func New(title string, commands []string) *Plan {
	p := &Plan{Title: title}
	for _, cmd := range commands {
		p.Append(cmd, "")
	}
	return p
}

// Append adds a command to the end of the plan.
func (p *Plan) Append(command, verify string) {
	p.Steps = append(p.Steps, newStep(command, verify))
}

// Update replaces the command of step i, rederiving lane and risk.
func (p *Plan) Update(i int, command string) error {
	if i < 0 || i >= len(p.Steps) {
		return fmt.Errorf("update step %d: plan has %d steps", i, len(p.Steps))
	}
	p.Steps[i].Command = command
	p.Steps[i].Lane = lane.Classify(command)
	p.Steps[i].Risk = riskOf(command)
	return nil
}

// Remove deletes step i, preserving the order of the rest.
func (p *Plan) Remove(i int) error {
	if i < 0 || i >= len(p.Steps) {
		return fmt.Errorf("remove step %d: plan has %d steps", i, len(p.Steps))
	}
	p.Steps = append(p.Steps[:i], p.Steps[i+1:]...)
	return nil
}

// Commands returns the command strings in step order.
func (p *Plan) Commands() []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Command
	}
	return out
}

// Lanes returns the distinct lanes used by the plan, in first-use
// order.
func (p *Plan) Lanes() []lane.Lane {
	seen := map[lane.Lane]bool{}
	var out []lane.Lane
	for _, s := range p.Steps {
		if !seen[s.Lane] {
			seen[s.Lane] = true
			out = append(out, s.Lane)
		}
	}
	return out
}

// NeedsApproval reports whether any step carries destructive risk.
func (p *Plan) NeedsApproval() bool {
	for _, s := range p.Steps {
		if s.Risk == RiskNeedsApproval {
			return true
		}
	}
	return false
}

func newStep(command, verify string) Step {
	return Step{
		ID:      uuid.NewString(),
		Command: command,
		Lane:    lane.Classify(command),
		Risk:    riskOf(command),
		Verify:  verify,
	}
}

func riskOf(command string) Risk {
	if safety.IsDestructive(command) {
		return RiskNeedsApproval
	}
	return RiskSafe
}

// Operation is one entry in a translator reply. Only type "command"
// produces a step; "note" entries carry model commentary and are
// discarded from execution.
type Operation struct {
	Type    string `json:"type" jsonschema:"required,enum=command,enum=note"`
	Command string `json:"command,omitempty" jsonschema:"description=Shell or backend command to run"`
	Note    string `json:"note,omitempty" jsonschema:"description=Commentary that is not executed"`
	Verify  string `json:"verify,omitempty" jsonschema:"description=Optional boolean expression over output and exit_code"`
}

// Reply is the structured payload the translator must return.
type Reply struct {
	Title      string      `json:"title,omitempty"`
	Operations []Operation `json:"operations" jsonschema:"required"`
}

// FromReply converts a translator reply into a runnable plan. Note
// operations and command operations with empty command text are
// dropped; a reply with no runnable commands yields a plan with zero
// steps, which the caller treats as a failed translation.
func FromReply(instruction string, reply *Reply) *Plan {
	title := reply.Title
	if title == "" {
		title = summarize(instruction)
	}
	p := &Plan{Title: title, Instruction: instruction}
	for _, op := range reply.Operations {
		if op.Type != "command" {
			continue
		}
		cmd := strings.TrimSpace(op.Command)
		if cmd == "" {
			continue
		}
		p.Append(cmd, op.Verify)
	}
	return p
}

func summarize(instruction string) string {
	const max = 60
	s := strings.Join(strings.Fields(instruction), " ")
	if len(s) > max {
		s = s[:max] + "…"
	}
	return s
}
