package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/tact/pkg/lane"
)

// Save writes the plan to path as YAML.
func (p *Plan) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

// Load reads a YAML plan from path. Derived fields are recomputed from
// the command text so a hand-edited file cannot smuggle a stale lane or
// risk tag past the safety gate.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	for i := range p.Steps {
		s := &p.Steps[i]
		s.Lane = lane.Classify(s.Command)
		s.Risk = riskOf(s.Command)
	}
	return &p, nil
}
