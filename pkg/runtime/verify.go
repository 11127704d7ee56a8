package runtime

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// evalVerify evaluates a step's verify expression against the command
// outcome. An empty expression falls back to the exit-code check.
func evalVerify(expression, output string, exitCode int) VerifyResult {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		if exitCode == 0 {
			return VerifyResult{Passed: true}
		}
		return VerifyResult{Passed: false, Detail: fmt.Sprintf("exit code %d", exitCode)}
	}

	env := map[string]any{
		"output":    output,
		"exit_code": exitCode,
	}
	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return VerifyResult{Passed: false, Detail: fmt.Sprintf("compile condition %q: %v", expression, err)}
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return VerifyResult{Passed: false, Detail: fmt.Sprintf("eval condition %q: %v", expression, err)}
	}
	passed, ok := result.(bool)
	if !ok {
		return VerifyResult{Passed: false, Detail: fmt.Sprintf("condition %q did not return bool (got %T)", expression, result)}
	}
	if !passed {
		return VerifyResult{Passed: false, Detail: fmt.Sprintf("condition %q is false", expression)}
	}
	return VerifyResult{Passed: true}
}
