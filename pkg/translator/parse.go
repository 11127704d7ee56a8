package translator

import (
	"fmt"
	"strings"

	"github.com/ormasoftchile/tact/pkg/plan"
)

// ExtractReply pulls the JSON reply out of raw model text and
// validates it. Models wrap JSON in prose or code fences often enough
// that extraction has to be tolerant; anything that does not contain a
// valid reply document maps to ErrNoCommands rather than a hard error,
// so a chatty model degrades to "nothing to run" instead of a crash.
func ExtractReply(raw string) (*plan.Reply, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrNoCommands)
	}
	reply, err := plan.ParseReply([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCommands, err)
	}
	return reply, nil
}

// extractJSON finds the reply document inside model text. Preference
// order: fenced ```json block, then the outermost {...} span.
func extractJSON(raw string) string {
	if fenced := extractFenced(raw); fenced != "" {
		return fenced
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func extractFenced(raw string) string {
	for _, marker := range []string{"```json", "```"} {
		idx := strings.Index(raw, marker)
		if idx < 0 {
			continue
		}
		rest := raw[idx+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		body := strings.TrimSpace(rest[:end])
		if strings.HasPrefix(body, "{") {
			return body
		}
	}
	return ""
}
