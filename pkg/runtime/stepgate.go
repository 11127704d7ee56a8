package runtime

import "context"

// StepGate pauses execution between steps until the user decides to
// continue or stop. The gate is a capacity-one channel: a decision can
// be queued slightly ahead of the wait, but never more than one, so a
// frontend cannot accidentally pre-approve a whole run.
type StepGate struct {
	enabled   bool
	decisions chan bool
}

// NewStepGate returns a gate. A disabled gate never blocks.
func NewStepGate(enabled bool) *StepGate {
	return &StepGate{
		enabled:   enabled,
		decisions: make(chan bool, 1),
	}
}

// Enabled reports whether the gate blocks between steps.
func (g *StepGate) Enabled() bool { return g.enabled }

// Wait blocks before a step until a decision arrives. Returns false
// when the user stops the run. Context cancellation also releases the
// wait as a stop.
func (g *StepGate) Wait(ctx context.Context) (bool, error) {
	if !g.enabled {
		return true, nil
	}
	select {
	case cont := <-g.decisions:
		return cont, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Continue releases the next Wait. Dropped when a decision is already
// queued.
func (g *StepGate) Continue() {
	select {
	case g.decisions <- true:
	default:
	}
}

// Stop releases the next Wait with a stop decision.
func (g *StepGate) Stop() {
	select {
	case g.decisions <- false:
	default:
	}
}
