// Package logwatch correlates a configuration change with the daemon's
// subsequent log output.
package logwatch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"
)

// Baseline captures the log file's position before a request is dispatched.
// Created per invocation and discarded after use.
type Baseline struct {
	Path  string
	Lines int

	enabled bool
}

// Enabled reports whether the log was readable at snapshot time. A missing
// or unreadable log disables correlation for the invocation instead of
// failing the command; observing the log is a convenience, not a
// precondition for the change itself.
func (b Baseline) Enabled() bool {
	return b.enabled
}

// Snapshot records the current line count of the log file.
func Snapshot(path string) Baseline {
	if path == "" {
		return Baseline{}
	}

	f, err := os.Open(path)
	if err != nil {
		return Baseline{Path: path}
	}
	defer f.Close()

	count, err := countLines(f)
	if err != nil {
		return Baseline{Path: path}
	}
	return Baseline{Path: path, Lines: count, enabled: true}
}

// Report pauses for wait and prints the lines appended since the baseline.
// A zero (or negative) wait disables both the pause and the report, as does
// a disabled baseline. The pause is a fixed heuristic for the daemon to
// react, not a synchronization guarantee.
func Report(w io.Writer, b Baseline, wait time.Duration) error {
	if !b.enabled || wait <= 0 {
		return nil
	}

	time.Sleep(wait)

	f, err := os.Open(b.Path)
	if err != nil {
		// The log went away mid-invocation; degrade quietly.
		return nil
	}
	defer f.Close()

	scanner := newLineScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line <= b.Lines {
			continue
		}
		if _, err := fmt.Fprintln(w, scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func countLines(r io.Reader) (int, error) {
	scanner := newLineScanner(r)
	count := 0
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
