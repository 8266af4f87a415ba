package cli

import (
	"errors"
	"fmt"

	"github.com/vesselhq/vesselctl/pkg/dispatch"
	"github.com/vesselhq/vesselctl/pkg/resolve"
)

// Exit codes. Help and usage problems deliberately exit non-zero so
// scripted callers notice that no real operation was performed.
const (
	ExitUsage        = 1 // bad arguments, resolution failures, missing tooling
	ExitSocket       = 2 // control socket present in config but unreadable
	ExitPrecondition = 3 // INSERT target not an array; no mutation attempted
	ExitTransport    = 4 // the HTTP transport itself failed
)

// usageError is a fatal argument problem.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error onto the process exit code.
func ExitCode(err error) int {
	var sockErr *resolve.SocketUnreadableError
	if errors.As(err, &sockErr) {
		return ExitSocket
	}

	var notArray *dispatch.NotArrayError
	if errors.As(err, &notArray) {
		return ExitPrecondition
	}
	var payloadErr *dispatch.PayloadError
	if errors.As(err, &payloadErr) {
		return ExitPrecondition
	}

	var transport *dispatch.TransportError
	if errors.As(err, &transport) {
		return ExitTransport
	}

	// Everything else (usage, zero/multiple instances, missing tooling,
	// unparsable daemon parameters) is a resolution-class failure.
	return ExitUsage
}

// hintFor returns an extra operator hint for selected failures.
func hintFor(err error) string {
	var transport *dispatch.TransportError
	if errors.As(err, &transport) && transport.PermissionDenied() {
		return "hint: the control socket is only accessible to the daemon user; re-run as that user or via sudo"
	}
	return ""
}
