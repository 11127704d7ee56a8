//go:build !windows

package backends

import (
	"os"
	"syscall"
)

// terminateProcess asks the child to exit gracefully. SIGTERM lets the
// child flush and clean up; the exec.Cmd WaitDelay covers the case
// where it ignores the signal.
func terminateProcess(p *os.Process) {
	_ = p.Signal(syscall.SIGTERM)
}
