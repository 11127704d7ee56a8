package lane

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		command string
		want    Lane
	}{
		{"ls -la", LaneShell},
		{"git status", LaneShell},
		{"", LaneShell},
		{"browser-cli navigate https://example.com", LaneBrowser},
		{"/usr/local/bin/browser-cli click #submit", LaneBrowser},
		{"desktop-ctl screenshot --out shot.png", LaneDesktop},
		{"python desktop_automation.py open notepad", LaneDesktop},
		{"python3 desktop_automation.py key enter", LaneDesktop},
		{"echo browser-cli is not invoked here", LaneShell},
	}
	for _, tc := range cases {
		if got := Classify(tc.command); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.command, got, tc.want)
		}
	}
}

func TestOperation(t *testing.T) {
	cases := []struct {
		command string
		want    string
	}{
		{"browser-cli navigate https://example.com", "navigate"},
		{"desktop-ctl uiclick 100 200", "uiclick"},
		{"python desktop_automation.py screenshot --out s.png", "screenshot"},
		{"ls -la", ""},
		{"browser-cli", ""},
	}
	for _, tc := range cases {
		if got := Operation(tc.command); got != tc.want {
			t.Errorf("Operation(%q) = %q, want %q", tc.command, got, tc.want)
		}
	}
}

func TestIsScreenshot(t *testing.T) {
	if !IsScreenshot("desktop-ctl screenshot --out a.png") {
		t.Error("desktop screenshot command not detected")
	}
	if IsScreenshot("desktop-ctl uiclick 1 2") {
		t.Error("uiclick misdetected as screenshot")
	}
	if IsScreenshot("ls") {
		t.Error("shell command misdetected as screenshot")
	}
}
