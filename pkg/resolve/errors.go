package resolve

import (
	"fmt"
	"strings"
)

// MissingToolingError indicates a required external collaborator (the daemon
// binary, procfs) is absent or unusable.
type MissingToolingError struct {
	Names []string
}

func (e *MissingToolingError) Error() string {
	return "required tooling unavailable: " + strings.Join(e.Names, ", ")
}

// UnparsableParamsError indicates the daemon's invocation could not be
// decoded from its process title.
type UnparsableParamsError struct {
	PID    int
	Reason string
}

func (e *UnparsableParamsError) Error() string {
	return fmt.Sprintf("cannot decode runtime parameters of pid %d: %s", e.PID, e.Reason)
}

// SocketUnreadableError indicates the configured control socket exists in
// the daemon's parameters but is not accessible to this user.
type SocketUnreadableError struct {
	Path string
	Err  error
}

func (e *SocketUnreadableError) Error() string {
	return fmt.Sprintf("control socket %s is not readable: %v", e.Path, e.Err)
}

func (e *SocketUnreadableError) Unwrap() error { return e.Err }
