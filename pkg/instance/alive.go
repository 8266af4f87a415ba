//go:build !windows

package instance

import (
	"os"
	"syscall"
)

// Alive reports whether the process with the given PID is still running.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds. Signal 0 probes existence.
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
