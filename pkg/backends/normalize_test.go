package backends

import "testing"

func TestNormalize(t *testing.T) {
	n := &Normalizer{
		BrowserCLI: "/opt/tact/bin/browser-cli",
		DesktopCTL: "python3 /opt/tact/desktop_automation.py",
	}
	cases := []struct {
		in, want string
	}{
		{
			"browser-cli navigate https://example.com",
			"/opt/tact/bin/browser-cli navigate https://example.com",
		},
		{
			"browser_cli click #submit",
			"/opt/tact/bin/browser-cli click #submit",
		},
		{
			"desktop-ctl open notepad",
			"python3 /opt/tact/desktop_automation.py open notepad",
		},
		{
			"python desktop_automation.py key enter",
			"python3 /opt/tact/desktop_automation.py key enter",
		},
		{
			"desktop-ctl",
			"python3 /opt/tact/desktop_automation.py",
		},
		{"ls -la", "ls -la"},
		{"echo browser-cli", "echo browser-cli"},
	}
	for _, tc := range cases {
		if got := n.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeUnconfiguredPassthrough(t *testing.T) {
	n := &Normalizer{}
	in := "browser-cli navigate https://example.com"
	if got := n.Normalize(in); got != in {
		t.Errorf("unconfigured normalizer rewrote command: %q", got)
	}
}
