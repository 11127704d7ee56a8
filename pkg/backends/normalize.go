package backends

import (
	"strings"

	"github.com/ormasoftchile/tact/pkg/lane"
)

// Normalizer rewrites backend invocations to the canonical installed
// paths. Translated plans name backends by their short alias; models
// also produce variant spellings and interpreter-prefixed forms, and
// every one of them must land on the same binary.
type Normalizer struct {
	// BrowserCLI is the canonical browser backend invocation.
	BrowserCLI string
	// DesktopCTL is the canonical desktop backend invocation. For a
	// script backend this includes the interpreter ("python3 /opt/...").
	DesktopCTL string
}

// Normalize rewrites the command's program token if it is a known
// backend alias. Shell commands pass through untouched.
func (n *Normalizer) Normalize(command string) string {
	trimmed := strings.TrimSpace(command)
	switch lane.Classify(trimmed) {
	case lane.LaneBrowser:
		if n.BrowserCLI == "" {
			return command
		}
		return n.BrowserCLI + rest(trimmed, 1)
	case lane.LaneDesktop:
		if n.DesktopCTL == "" {
			return command
		}
		skip := 1
		fields := strings.Fields(trimmed)
		if len(fields) > 1 && isInterpreterToken(fields[0]) {
			skip = 2
		}
		return n.DesktopCTL + rest(trimmed, skip)
	}
	return command
}

// rest returns everything after the first skip fields, preserving the
// original spacing of the remainder.
func rest(command string, skip int) string {
	s := command
	for i := 0; i < skip; i++ {
		idx := strings.IndexAny(s, " \t")
		if idx < 0 {
			return ""
		}
		s = strings.TrimLeft(s[idx:], " \t")
	}
	if s == "" {
		return ""
	}
	return " " + s
}

func isInterpreterToken(token string) bool {
	switch strings.ToLower(token) {
	case "python", "python3", "py":
		return true
	}
	return false
}
