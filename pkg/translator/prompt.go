package translator

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ormasoftchile/tact/pkg/plan"
)

const systemPromptTemplate = `You are a command translator for a desktop automation tool.
You convert a user's instruction into an ordered list of commands.

Available backends, one operation per command:
- Shell commands run through the system shell ("ls -la", "git status").
- Browser operations use the browser CLI:
  browser-cli navigate <url>
  browser-cli click <selector>
  browser-cli fill <selector> <text>
  browser-cli press <key>
  browser-cli type <text>
  browser-cli content
  browser-cli elements <selector>
  browser-cli screenshot <path>
  browser-cli wait <selector>
- Desktop operations use the desktop controller:
  desktop-ctl open <app>
  desktop-ctl uiclick <x> <y>
  desktop-ctl type <text>
  desktop-ctl key <key>
  desktop-ctl mouse <x> <y>
  desktop-ctl click
  desktop-ctl drag <x1> <y1> <x2> <y2>
  desktop-ctl screenshot --out <path>
  desktop-ctl ocr
  desktop-ctl apps
  desktop-ctl window

Rules:
- Emit commands in execution order. Each command is one operation.
- Prefer the most specific backend: browser for web pages, desktop for
  native UI, shell for everything else.
- Never invent flags or operations beyond the lists above.
- A command may carry an optional "verify" boolean expression over the
  variables output (string) and exit_code (int).
- Respond with a single JSON object and nothing else. It must conform
  to this JSON Schema:

{{.Schema}}
`

const translateUserTemplate = `Instruction:
{{.Instruction}}

Produce the JSON plan.`

const repairUserTemplate = `Instruction:
{{.Instruction}}

A previous plan for this instruction failed. Here is the failure
report, including the exact commands, exit codes, captured output, and
environment diagnostics:

{{.Report}}

Produce a corrected JSON plan for the same instruction. Fix only what
the report shows to be broken; keep working steps.`

var (
	translateUserTmpl = template.Must(template.New("translate-user").Parse(translateUserTemplate))
	repairUserTmpl    = template.Must(template.New("repair-user").Parse(repairUserTemplate))
	systemTmpl        = template.Must(template.New("system").Parse(systemPromptTemplate))
)

// SystemPrompt renders the translator system prompt with the reply
// schema embedded.
func SystemPrompt() (string, error) {
	schema, err := plan.ReplySchemaJSON()
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	var sb strings.Builder
	if err := systemTmpl.Execute(&sb, struct{ Schema string }{Schema: string(schema)}); err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return sb.String(), nil
}

// TranslateUserPrompt renders the user turn for a fresh translation.
func TranslateUserPrompt(instruction string) (string, error) {
	var sb strings.Builder
	err := translateUserTmpl.Execute(&sb, struct{ Instruction string }{Instruction: instruction})
	if err != nil {
		return "", fmt.Errorf("render translate prompt: %w", err)
	}
	return sb.String(), nil
}

// RepairUserPrompt renders the user turn for a failure-driven repair.
func RepairUserPrompt(instruction, report string) (string, error) {
	var sb strings.Builder
	err := repairUserTmpl.Execute(&sb, struct{ Instruction, Report string }{
		Instruction: instruction,
		Report:      report,
	})
	if err != nil {
		return "", fmt.Errorf("render repair prompt: %w", err)
	}
	return sb.String(), nil
}
