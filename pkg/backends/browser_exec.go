package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ResultMarker prefixes a line of structured state emitted by a
// backend. Everything after the prefix on that line is one JSON
// object. The run inspector scans output for these lines; unparseable
// payloads are skipped, never fatal.
const ResultMarker = "RESULT:"

// WriteResultMarker appends a marker line for v to sb. Marshal
// failures are dropped; a marker is telemetry, not a step outcome.
func WriteResultMarker(sb *strings.Builder, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	sb.WriteString(ResultMarker)
	sb.Write(data)
	sb.WriteString("\n")
}

// BrowserExecutor adapts the browser bridge to the CommandExecutor
// interface. It parses "browser-cli <op> [args…]" command strings and
// drives the persistent session, so browser steps run in-process
// instead of spawning a CLI per operation.
type BrowserExecutor struct {
	Bridge *BrowserBridge

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Execute implements CommandExecutor. Operation failures come back as
// exit code 1 with the error on stderr; only a browser that cannot
// start at all is a spawn failure.
func (e *BrowserExecutor) Execute(ctx context.Context, command string, opts ExecOptions) (*Result, error) {
	fields := strings.Fields(command)
	if len(fields) < 2 {
		return nil, fmt.Errorf("spawn %q: missing browser operation", command)
	}
	op := fields[1]
	args := fields[2:]

	opCtx, cancel := context.WithCancel(ctx)
	e.setCancel(cancel)
	defer func() {
		cancel()
		e.setCancel(nil)
	}()

	start := time.Now()
	output, err := e.dispatch(opCtx, op, args)
	res := &Result{Duration: time.Since(start)}

	if err != nil {
		if strings.Contains(err.Error(), "start browser") {
			return nil, fmt.Errorf("spawn browser: %w", err)
		}
		res.ExitCode = 1
		res.Stderr = err.Error()
		if opts.Sink != nil {
			fmt.Fprintln(opts.Sink, res.Stderr)
		}
		return res, nil
	}

	url, title := e.Bridge.Location(opCtx)
	var sb strings.Builder
	if output != "" {
		sb.WriteString(output)
		if !strings.HasSuffix(output, "\n") {
			sb.WriteString("\n")
		}
	}
	WriteResultMarker(&sb, map[string]any{
		"lane":  "browser",
		"op":    op,
		"url":   url,
		"title": title,
	})
	res.Stdout = sb.String()
	if opts.Sink != nil {
		fmt.Fprint(opts.Sink, res.Stdout)
	}
	return res, nil
}

// Terminate cancels the in-flight operation. The session stays up.
func (e *BrowserExecutor) Terminate() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (e *BrowserExecutor) setCancel(cancel context.CancelFunc) {
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()
}

func (e *BrowserExecutor) dispatch(ctx context.Context, op string, args []string) (string, error) {
	b := e.Bridge
	switch op {
	case "navigate":
		if len(args) < 1 {
			return "", fmt.Errorf("navigate: missing url")
		}
		return "", b.Navigate(ctx, args[0])
	case "click":
		if len(args) < 1 {
			return "", fmt.Errorf("click: missing selector")
		}
		return "", b.Click(ctx, strings.Join(args, " "))
	case "fill":
		if len(args) < 2 {
			return "", fmt.Errorf("fill: need selector and text")
		}
		return "", b.Fill(ctx, args[0], strings.Join(args[1:], " "))
	case "press":
		if len(args) < 1 {
			return "", fmt.Errorf("press: missing key")
		}
		return "", b.Press(ctx, args[0])
	case "type":
		return "", b.Type(ctx, strings.Join(args, " "))
	case "content":
		return b.Content(ctx)
	case "elements":
		if len(args) < 1 {
			return "", fmt.Errorf("elements: missing selector")
		}
		matches, err := b.Elements(ctx, strings.Join(args, " "))
		if err != nil {
			return "", err
		}
		return strings.Join(matches, "\n"), nil
	case "screenshot":
		if len(args) < 1 {
			return "", fmt.Errorf("screenshot: missing path")
		}
		return "", b.Screenshot(ctx, args[0])
	case "wait":
		if len(args) < 1 {
			return "", fmt.Errorf("wait: missing selector")
		}
		return "", b.Wait(ctx, strings.Join(args, " "))
	default:
		return "", fmt.Errorf("unknown browser operation %q", op)
	}
}
