package runtime

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/ormasoftchile/tact/pkg/backends"
	"github.com/ormasoftchile/tact/pkg/intent"
	"github.com/ormasoftchile/tact/pkg/lane"
	"github.com/ormasoftchile/tact/pkg/observe"
	"github.com/ormasoftchile/tact/pkg/plan"
	"github.com/ormasoftchile/tact/pkg/safety"
	"github.com/ormasoftchile/tact/pkg/translator"
)

// MaxRetries bounds the self-heal loop per session. The counter resets
// on a fully successful run, so the budget is per problem, not per
// process lifetime.
const MaxRetries = 5

// ErrRetryBudget means the self-heal loop gave up; the problem needs a
// human.
var ErrRetryBudget = errors.New("max retries reached, manual intervention required")

// SessionConfig wires a session's collaborators.
type SessionConfig struct {
	Translator translator.Client
	Gate       *safety.Gate
	StepMode   bool

	Shell     backends.CommandExecutor
	Executors map[lane.Lane]backends.CommandExecutor
	Normalize *backends.Normalizer
	Desktop   *backends.DesktopBackend
	Browser   *backends.BrowserBridge

	WorkDir string
	// BaseDir is the parent for run artifact directories, usually
	// <project>/.tact/runs.
	BaseDir string
	Log     *zap.Logger
}

// Session is the long-lived conversation-to-automation pipeline:
// classify, translate, run, and heal. It owns the retry counter and
// the current controller.
type Session struct {
	cfg      SessionConfig
	stepGate *StepGate

	mu         sync.Mutex
	retries    int
	controller *Controller
}

// Outcome reports what one Automate call did.
type Outcome struct {
	Intent    intent.Result
	Routed    bool
	RunID     string
	Cancelled bool
	Healed    bool
	Failed    []TimelineEntry
	Retries   int
}

// NewSession builds a session. A nil shell executor gets the real one.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Shell == nil {
		cfg.Shell = &backends.ShellExecutor{}
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Gate == nil {
		cfg.Gate = &safety.Gate{}
	}
	return &Session{
		cfg:      cfg,
		stepGate: NewStepGate(cfg.StepMode),
	}
}

// StepGate exposes the between-step gate for frontends.
func (s *Session) StepGate() *StepGate { return s.stepGate }

// Retries returns the consumed retry budget.
func (s *Session) Retries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retries
}

// ResetRetries clears the budget, the "I fixed it myself, try again"
// path.
func (s *Session) ResetRetries() {
	s.mu.Lock()
	s.retries = 0
	s.mu.Unlock()
}

// Controller returns the controller of the current or last run.
func (s *Session) Controller() *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller
}

// Cancel stops the current run, if any.
func (s *Session) Cancel() {
	if ctrl := s.Controller(); ctrl != nil {
		ctrl.Cancel()
	}
}

// Automate is the top-level entry: classify the text, translate it if
// it is an automation request, run the plan, and heal failures. Text
// that does not look like automation returns with Routed false and no
// side effects.
func (s *Session) Automate(ctx context.Context, instruction string) (*Outcome, error) {
	res := intent.Classify(instruction)
	out := &Outcome{Intent: res}
	if !res.Automation() {
		return out, nil
	}
	out.Routed = true

	p, err := s.cfg.Translator.Translate(ctx, instruction)
	if err != nil {
		// Includes ErrNoCommands: nothing ran, nothing to heal.
		return out, err
	}
	return s.runWithHeal(ctx, instruction, p, out)
}

// RunPlan executes an already-built plan (loaded from disk or edited
// in preview) under the same heal loop as Automate.
func (s *Session) RunPlan(ctx context.Context, p *plan.Plan) (*Outcome, error) {
	out := &Outcome{Routed: true}
	return s.runWithHeal(ctx, p.Instruction, p, out)
}

func (s *Session) runWithHeal(ctx context.Context, instruction string, p *plan.Plan, out *Outcome) (*Outcome, error) {
	for {
		ctrl, err := s.newController(p)
		if err != nil {
			return out, err
		}
		s.mu.Lock()
		s.controller = ctrl
		s.mu.Unlock()

		rr, err := ctrl.Run(ctx, false)
		if err != nil {
			return out, err
		}
		out.RunID = rr.RunID
		out.Cancelled = rr.Cancelled
		out.Failed = rr.Failed
		out.Retries = s.Retries()
		s.writeManifest(ctrl, instruction)

		if rr.Cancelled {
			// User intent beats self-healing; a cancelled run is final.
			return out, nil
		}
		if len(rr.Failed) == 0 {
			s.ResetRetries()
			out.Retries = 0
			return out, nil
		}

		if s.cfg.Translator == nil {
			// No translator, no heal; report the failures as they are.
			return out, nil
		}
		if s.Retries() >= MaxRetries {
			return out, ErrRetryBudget
		}

		report := s.failureReport(ctx, p, rr)
		repaired, err := s.cfg.Translator.Repair(ctx, instruction, report)
		if err != nil {
			// A repair that yields nothing runnable aborts the loop
			// without consuming budget; there is no plan to spend it on.
			return out, err
		}

		s.mu.Lock()
		s.retries++
		out.Retries = s.retries
		s.mu.Unlock()
		out.Healed = true
		p = repaired

		s.cfg.Log.Info("healed plan ready",
			zap.Int("retry", out.Retries),
			zap.Int("steps", len(p.Steps)))
	}
}

func (s *Session) writeManifest(ctrl *Controller, instruction string) {
	model := ""
	if s.cfg.Translator != nil {
		model = s.cfg.Translator.ModelName()
	}
	m := BuildManifest(ctrl.State(), instruction, model, s.Retries())
	if err := m.Write(filepath.Join(ctrl.RunDir(), "run.yaml")); err != nil {
		s.cfg.Log.Warn("manifest write failed", zap.Error(err))
	}
}

func (s *Session) newController(p *plan.Plan) (*Controller, error) {
	var observer *observe.Collector
	if s.cfg.Desktop.Available() {
		observer = &observe.Collector{Desktop: s.cfg.Desktop, Log: s.cfg.Log}
	}
	return NewController(ControllerConfig{
		Plan:      p,
		Gate:      s.cfg.Gate,
		StepGate:  s.stepGate,
		Observer:  observer,
		Normalize: s.cfg.Normalize,
		Executors: s.cfg.Executors,
		Shell:     s.cfg.Shell,
		WorkDir:   s.cfg.WorkDir,
		BaseDir:   s.cfg.BaseDir,
		Log:       s.cfg.Log,
	})
}
