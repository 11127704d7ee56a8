package safety

import (
	"context"
	"errors"
)

// ErrRejected is returned when the user declines a destructive batch.
var ErrRejected = errors.New("destructive commands rejected by user")

// ConfirmRequest describes a suspended batch awaiting a single
// approve-or-reject decision. Approval covers the whole batch; there is
// no per-command granularity.
type ConfirmRequest struct {
	Commands  []string
	Dangerous []string
	WorkDir   string
}

// Confirmer resolves a confirmation request. Implementations block
// until the user answers or ctx is cancelled.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, req ConfirmRequest) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, req ConfirmRequest) (bool, error) {
	return f(ctx, req)
}

// Gate checks a command batch before execution. With safe mode off the
// gate passes everything through; with it on, any destructive command
// suspends the batch behind a confirmation prompt.
type Gate struct {
	SafeMode  bool
	Confirmer Confirmer
}

// Check screens the batch and, if needed, blocks on confirmation.
// force bypasses the prompt for a single run without disabling safe
// mode. Returns the destructive subset for display regardless of
// outcome. A nil Confirmer denies destructive batches outright.
func (g *Gate) Check(ctx context.Context, commands []string, workDir string, force bool) ([]string, error) {
	_, dangerous := Partition(commands)
	if len(dangerous) == 0 {
		return nil, nil
	}
	if !g.SafeMode || force {
		return dangerous, nil
	}
	if g.Confirmer == nil {
		return dangerous, ErrRejected
	}

	approved, err := g.Confirmer.Confirm(ctx, ConfirmRequest{
		Commands:  commands,
		Dangerous: dangerous,
		WorkDir:   workDir,
	})
	if err != nil {
		return dangerous, err
	}
	if !approved {
		return dangerous, ErrRejected
	}
	return dangerous, nil
}
