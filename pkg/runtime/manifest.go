package runtime

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StepTotals summarizes step outcomes for the manifest.
type StepTotals struct {
	Total     int `yaml:"total"`
	Passed    int `yaml:"passed"`
	Failed    int `yaml:"failed"`
	Cancelled int `yaml:"cancelled"`
}

// RunManifest is the human-readable summary written next to the trace.
type RunManifest struct {
	RunID       string     `yaml:"run_id"`
	Title       string     `yaml:"title"`
	Instruction string     `yaml:"instruction,omitempty"`
	Model       string     `yaml:"model,omitempty"`
	State       State      `yaml:"state"`
	Steps       StepTotals `yaml:"steps"`
	Retries     int        `yaml:"retries,omitempty"`
	StartedAt   time.Time  `yaml:"started_at"`
	EndedAt     time.Time  `yaml:"ended_at,omitempty"`
}

// BuildManifest summarizes a finished (or stopped) run.
func BuildManifest(rs *RunState, instruction, model string, retries int) *RunManifest {
	m := &RunManifest{
		RunID:       rs.RunID,
		Title:       rs.Title,
		Instruction: instruction,
		Model:       model,
		State:       rs.State,
		Retries:     retries,
		StartedAt:   rs.StartedAt,
		EndedAt:     rs.EndedAt,
	}
	m.Steps.Total = len(rs.Timeline)
	for _, e := range rs.Timeline {
		switch e.Status {
		case StepPassed:
			m.Steps.Passed++
		case StepFailed:
			m.Steps.Failed++
		case StepCancelled:
			m.Steps.Cancelled++
		}
	}
	return m
}

// Write persists the manifest as YAML.
func (m *RunManifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
