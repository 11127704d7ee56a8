// Package lane classifies command strings into execution lanes.
// The lane decides which backend runs a command and where diagnostics
// are collected from. Classification happens once at plan build time;
// the resulting tag travels with the step so execution never re-derives
// it from the command text.
package lane

import (
	"strings"
)

// Lane identifies the execution backend for a command.
type Lane string

const (
	// LaneShell runs the command through the system shell.
	LaneShell Lane = "shell"
	// LaneBrowser routes the command to the browser-automation bridge.
	LaneBrowser Lane = "browser"
	// LaneDesktop routes the command to the desktop UI-automation script.
	LaneDesktop Lane = "desktop"
)

// browserAliases are argv[0] spellings that identify a browser operation.
var browserAliases = map[string]bool{
	"browser-cli":     true,
	"browser_cli":     true,
	"browser-cli.exe": true,
}

// desktopAliases are argv[0] spellings that identify a desktop operation.
var desktopAliases = map[string]bool{
	"desktop-ctl":           true,
	"desktop_ctl":           true,
	"desktop-ctl.exe":       true,
	"desktop_automation.py": true,
}

// Classify maps a command string to its execution lane by inspecting
// the invoked program. Anything that is not a known backend invocation
// is a shell command.
func Classify(command string) Lane {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return LaneShell
	}

	head := baseName(fields[0])
	if browserAliases[head] {
		return LaneBrowser
	}
	if desktopAliases[head] {
		return LaneDesktop
	}

	// Interpreter-prefixed desktop script: "python desktop_automation.py …"
	if len(fields) > 1 && isInterpreter(head) && desktopAliases[baseName(fields[1])] {
		return LaneDesktop
	}

	return LaneShell
}

// Operation returns the backend operation name for a browser or desktop
// command ("navigate", "screenshot", …). Empty for shell commands.
func Operation(command string) string {
	fields := strings.Fields(command)
	switch Classify(command) {
	case LaneBrowser:
		if len(fields) > 1 {
			return fields[1]
		}
	case LaneDesktop:
		idx := 1
		if isInterpreter(baseName(fields[0])) {
			idx = 2
		}
		if len(fields) > idx {
			return fields[idx]
		}
	}
	return ""
}

// IsScreenshot reports whether a command is itself a screenshot
// operation. Observation capture skips these to avoid recursion.
func IsScreenshot(command string) bool {
	return Operation(command) == "screenshot"
}

func baseName(token string) string {
	token = strings.ToLower(token)
	if idx := strings.LastIndexAny(token, `/\`); idx >= 0 {
		token = token[idx+1:]
	}
	return token
}

func isInterpreter(name string) bool {
	switch name {
	case "python", "python3", "py":
		return true
	}
	return false
}
