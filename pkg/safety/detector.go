// Package safety screens command batches for destructive operations and
// suspends execution until the user approves them. Denial always wins:
// a batch with any unapproved destructive command never runs.
package safety

import (
	"regexp"
)

// destructivePatterns match command shapes that delete data, alter
// system state irreversibly, or terminate processes. Matching is
// case-insensitive and keyed on command structure, not intent.
var destructivePatterns = compilePatterns([]string{
	`\brm\s+-\w*[rf]`,
	`\brmdir\b`,
	`\bdel\s+/[fsq]`,
	`\brd\s+/s`,
	`\bremove-item\b.*-recurse`,
	`\bformat\b`,
	`\bmkfs\b`,
	`\bdiskpart\b`,
	`\bdd\s+if=`,
	`>\s*/dev/sd`,
	`\btruncate\s+-s\s*0`,
	`\bshutdown\b`,
	`\breboot\b`,
	`\brestart-computer\b`,
	`\bstop-computer\b`,
	`\bkill\b`,
	`\bkillall\b`,
	`\bpkill\b`,
	`\btaskkill\b`,
	`\bgit\s+reset\s+--hard\b`,
	`\bgit\s+clean\s+-\w*f`,
	`\bgit\s+push\b.*--force\b`,
	`\bgit\s+push\b.*-f\b`,
	`\bgit\s+filter-branch\b`,
	`\bdrop\s+(table|database)\b`,
})

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// IsDestructive reports whether a command matches any destructive
// signature. Unrecognized commands are treated as safe; the detector is
// a tripwire for known-dangerous shapes, not a full command analyzer.
func IsDestructive(command string) bool {
	for _, pattern := range destructivePatterns {
		if pattern.MatchString(command) {
			return true
		}
	}
	return false
}

// Partition splits a batch into safe and destructive commands,
// preserving order within each group.
func Partition(commands []string) (safe, dangerous []string) {
	for _, cmd := range commands {
		if IsDestructive(cmd) {
			dangerous = append(dangerous, cmd)
		} else {
			safe = append(safe, cmd)
		}
	}
	return safe, dangerous
}
