// Package instance finds the running vesseld daemon in the process table.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultMarker is the process title prefix the vesseld main process
// advertises, e.g. "vesseld: main v1.4.0 [/usr/sbin/vesseld --control ...]".
const DefaultMarker = "vesseld: main"

// DefaultProcRoot is the procfs mount point.
const DefaultProcRoot = "/proc"

// ErrNoInstance indicates no running daemon was found.
var ErrNoInstance = errors.New("no running vesseld instance found")

// MultipleInstancesError indicates more than one daemon matched the marker.
// Multi-instance setups are rejected, never resolved automatically.
type MultipleInstancesError struct {
	PIDs []int
}

func (e *MultipleInstancesError) Error() string {
	ids := make([]string, len(e.PIDs))
	for i, pid := range e.PIDs {
		ids[i] = strconv.Itoa(pid)
	}
	return "multiple vesseld instances found: " + strings.Join(ids, ", ")
}

// Locator scans the process table for the daemon's main process.
type Locator struct {
	// ProcRoot is the procfs root. Defaults to /proc.
	ProcRoot string

	// Marker is the process title prefix to match. Defaults to DefaultMarker.
	Marker string
}

// Locate returns the PID of the single running daemon instance.
// Zero matches or more than one match is a hard error; process existence
// is a point-in-time fact, so there are no retries.
func (l Locator) Locate() (int, error) {
	root := l.ProcRoot
	if root == "" {
		root = DefaultProcRoot
	}
	marker := l.Marker
	if marker == "" {
		marker = DefaultMarker
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("read process table %s: %w", root, err)
	}

	var pids []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		cmdline, err := Cmdline(root, pid)
		if err != nil {
			// Process may have exited between ReadDir and here.
			continue
		}
		if strings.HasPrefix(cmdline, marker) {
			pids = append(pids, pid)
		}
	}

	switch len(pids) {
	case 0:
		return 0, ErrNoInstance
	case 1:
		return pids[0], nil
	default:
		sort.Ints(pids)
		return 0, &MultipleInstancesError{PIDs: pids}
	}
}

// Cmdline returns the command line of a process with NUL separators
// replaced by spaces.
func Cmdline(procRoot string, pid int) (string, error) {
	data, err := os.ReadFile(filepath.Join(procRoot, strconv.Itoa(pid), "cmdline"))
	if err != nil {
		return "", err
	}
	cmd := strings.ReplaceAll(string(data), "\x00", " ")
	return strings.TrimSpace(cmd), nil
}
