//go:build windows

package backends

import "os"

// terminateProcess stops the child. Windows has no SIGTERM; Kill is
// the only portable stop.
func terminateProcess(p *os.Process) {
	_ = p.Kill()
}
