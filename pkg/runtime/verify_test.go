package runtime

import (
	"strings"
	"testing"
)

func TestEvalVerifyExitCodeFallback(t *testing.T) {
	if v := evalVerify("", "output", 0); !v.Passed {
		t.Errorf("exit 0 with no condition failed: %+v", v)
	}
	if v := evalVerify("", "output", 2); v.Passed {
		t.Error("exit 2 with no condition passed")
	}
}

func TestEvalVerifyExpressions(t *testing.T) {
	cases := []struct {
		expr     string
		output   string
		exitCode int
		want     bool
	}{
		{`exit_code == 0`, "", 0, true},
		{`exit_code == 0`, "", 1, false},
		{`output contains "ready"`, "server ready", 0, true},
		{`output contains "ready"`, "starting", 0, false},
		{`exit_code == 0 and output != ""`, "hi", 0, true},
	}
	for _, tc := range cases {
		v := evalVerify(tc.expr, tc.output, tc.exitCode)
		if v.Passed != tc.want {
			t.Errorf("evalVerify(%q, %q, %d) = %+v, want passed=%v",
				tc.expr, tc.output, tc.exitCode, v, tc.want)
		}
	}
}

func TestEvalVerifyBadExpression(t *testing.T) {
	v := evalVerify("this is not an expression ((", "out", 0)
	if v.Passed {
		t.Error("unparseable condition passed")
	}
	if !strings.Contains(v.Detail, "condition") {
		t.Errorf("detail = %q", v.Detail)
	}
}
