package runtime

import (
	"sync"

	"github.com/google/uuid"
)

// toolRunTailLimit bounds the retained output per tool run. The trace
// holds the full record; the live view only needs the recent tail.
const toolRunTailLimit = 4 * 1024

// ToolRunStatus tracks a tool run through its life.
type ToolRunStatus string

const (
	ToolRunning ToolRunStatus = "running"
	ToolDone    ToolRunStatus = "done"
	ToolFailed  ToolRunStatus = "failed"
)

// ToolRun is the live view of one executing command: identity, status,
// a one-line summary, and a bounded tail of streamed output. Writes
// and reads may come from different goroutines.
type ToolRun struct {
	ID      string
	Name    string
	Command string

	mu      sync.Mutex
	status  ToolRunStatus
	summary string
	tail    []byte
}

// NewToolRun starts a tool run in the running state.
func NewToolRun(name, command string) *ToolRun {
	return &ToolRun{
		ID:      uuid.NewString(),
		Name:    name,
		Command: command,
		status:  ToolRunning,
	}
}

// Write appends an output chunk, keeping only the most recent
// toolRunTailLimit bytes. Implements io.Writer so a ToolRun can be the
// executor's sink.
func (tr *ToolRun) Write(p []byte) (int, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.tail = append(tr.tail, p...)
	if over := len(tr.tail) - toolRunTailLimit; over > 0 {
		tr.tail = tr.tail[over:]
	}
	return len(p), nil
}

// Finish marks the run complete with a summary line.
func (tr *ToolRun) Finish(status ToolRunStatus, summary string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.status = status
	tr.summary = summary
}

// Status returns the current status.
func (tr *ToolRun) Status() ToolRunStatus {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.status
}

// Summary returns the completion summary, empty while running.
func (tr *ToolRun) Summary() string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.summary
}

// Tail returns a copy of the retained output tail.
func (tr *ToolRun) Tail() string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return string(tr.tail)
}
