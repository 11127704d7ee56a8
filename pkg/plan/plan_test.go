package plan

import (
	"path/filepath"
	"testing"

	"github.com/ormasoftchile/tact/pkg/lane"
)

func TestNewDerivesLaneAndRisk(t *testing.T) {
	p := New("test", []string{
		"ls -la",
		"browser-cli navigate https://example.com",
		"rm -rf build",
	})
	if p.Steps[0].Lane != lane.LaneShell || p.Steps[0].Risk != RiskSafe {
		t.Errorf("step 0: lane=%s risk=%s", p.Steps[0].Lane, p.Steps[0].Risk)
	}
	if p.Steps[1].Lane != lane.LaneBrowser {
		t.Errorf("step 1: lane=%s", p.Steps[1].Lane)
	}
	if p.Steps[2].Risk != RiskNeedsApproval {
		t.Errorf("step 2: risk=%s", p.Steps[2].Risk)
	}
	if !p.NeedsApproval() {
		t.Error("plan with rm -rf should need approval")
	}
}

func TestUpdateRecomputes(t *testing.T) {
	p := New("test", []string{"ls"})
	if err := p.Update(0, "rm -rf /tmp/x"); err != nil {
		t.Fatal(err)
	}
	if p.Steps[0].Risk != RiskNeedsApproval {
		t.Errorf("risk not recomputed: %s", p.Steps[0].Risk)
	}
	if err := p.Update(0, "desktop-ctl screenshot"); err != nil {
		t.Fatal(err)
	}
	if p.Steps[0].Lane != lane.LaneDesktop || p.Steps[0].Risk != RiskSafe {
		t.Errorf("lane=%s risk=%s after second update", p.Steps[0].Lane, p.Steps[0].Risk)
	}
	if err := p.Update(5, "ls"); err == nil {
		t.Error("out-of-range update did not error")
	}
}

func TestRemovePreservesOrder(t *testing.T) {
	p := New("test", []string{"a", "b", "c"})
	if err := p.Remove(1); err != nil {
		t.Fatal(err)
	}
	got := p.Commands()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("commands after remove = %v", got)
	}
}

func TestFromReplyDropsNotes(t *testing.T) {
	reply := &Reply{
		Title: "open notepad",
		Operations: []Operation{
			{Type: "note", Note: "first we launch the app"},
			{Type: "command", Command: "desktop-ctl open notepad"},
			{Type: "command", Command: "   "},
			{Type: "command", Command: "desktop-ctl type hello", Verify: "exit_code == 0"},
		},
	}
	p := FromReply("open notepad and type hello", reply)
	if len(p.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(p.Steps))
	}
	if p.Steps[1].Verify != "exit_code == 0" {
		t.Errorf("verify not carried: %q", p.Steps[1].Verify)
	}
}

func TestParseReply(t *testing.T) {
	good := []byte(`{"operations":[{"type":"command","command":"ls"}]}`)
	reply, err := ParseReply(good)
	if err != nil {
		t.Fatalf("valid reply rejected: %v", err)
	}
	if len(reply.Operations) != 1 {
		t.Fatalf("operations = %d", len(reply.Operations))
	}

	for name, bad := range map[string][]byte{
		"not json":     []byte("sure, here is a plan"),
		"wrong type":   []byte(`{"operations":[{"type":"dance"}]}`),
		"missing type": []byte(`{"operations":[{"command":"ls"}]}`),
	} {
		if _, err := ParseReply(bad); err == nil {
			t.Errorf("%s: invalid reply accepted", name)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := New("round trip", []string{"ls", "rm -rf build"})
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := p.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Title != "round trip" || len(loaded.Steps) != 2 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.Steps[1].Risk != RiskNeedsApproval {
		t.Errorf("risk not recomputed on load: %s", loaded.Steps[1].Risk)
	}
}
