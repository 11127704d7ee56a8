package runtime

import (
	"strings"
	"testing"
)

func TestToolRunTailBounded(t *testing.T) {
	tr := NewToolRun("shell", "cat bigfile")
	chunk := strings.Repeat("x", 1000)
	for i := 0; i < 20; i++ {
		if _, err := tr.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}
	if len(tr.Tail()) != toolRunTailLimit {
		t.Errorf("tail = %d bytes, want %d", len(tr.Tail()), toolRunTailLimit)
	}

	tr.Write([]byte("MARKER-END"))
	if !strings.HasSuffix(tr.Tail(), "MARKER-END") {
		t.Error("tail lost the most recent output")
	}
}

func TestToolRunLifecycle(t *testing.T) {
	tr := NewToolRun("browser", "browser-cli navigate https://example.com")
	if tr.Status() != ToolRunning {
		t.Errorf("initial status = %s", tr.Status())
	}
	if tr.ID == "" {
		t.Error("no id assigned")
	}
	tr.Finish(ToolDone, "exit 0 in 20ms")
	if tr.Status() != ToolDone || tr.Summary() != "exit 0 in 20ms" {
		t.Errorf("status=%s summary=%q", tr.Status(), tr.Summary())
	}
}
