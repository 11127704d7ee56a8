package runtime

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// TraceEvent is one JSONL record in the run trace.
type TraceEvent struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"ts"`
	RunID     string         `json:"run_id"`
	Entry     *TimelineEntry `json:"entry,omitempty"`
	State     State          `json:"state,omitempty"`
}

// TraceWriter writes run events to a JSONL trace file.
type TraceWriter struct {
	file   *os.File
	writer *bufio.Writer
	enc    *json.Encoder
	runID  string
}

// NewTraceWriter creates a trace writer that appends to the given file.
func NewTraceWriter(path, runID string) (*TraceWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	w := bufio.NewWriter(f)
	return &TraceWriter{
		file:   f,
		writer: w,
		enc:    json.NewEncoder(w),
		runID:  runID,
	}, nil
}

// WriteStep appends a step record and flushes to disk. Flush and sync
// happen at step boundaries so a crash loses at most the in-flight
// step.
func (tw *TraceWriter) WriteStep(entry *TimelineEntry) error {
	return tw.write(TraceEvent{
		Type:      "step_result",
		Timestamp: time.Now(),
		RunID:     tw.runID,
		Entry:     entry,
	})
}

// WriteState appends a lifecycle transition record.
func (tw *TraceWriter) WriteState(state State) error {
	return tw.write(TraceEvent{
		Type:      "state",
		Timestamp: time.Now(),
		RunID:     tw.runID,
		State:     state,
	})
}

func (tw *TraceWriter) write(event TraceEvent) error {
	if err := tw.enc.Encode(event); err != nil {
		return fmt.Errorf("encode trace event: %w", err)
	}
	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("flush trace: %w", err)
	}
	if err := tw.file.Sync(); err != nil {
		return fmt.Errorf("sync trace: %w", err)
	}
	return nil
}

// Close flushes and closes the trace file.
func (tw *TraceWriter) Close() error {
	if err := tw.writer.Flush(); err != nil {
		return err
	}
	return tw.file.Close()
}
