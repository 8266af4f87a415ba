package dispatch

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Method is the closed set of operations vesselctl can issue against the
// control API. INSERT is virtual: it has no transport-level equivalent and
// is composed from a GET and a PUT.
type Method int

// Methods.
const (
	MethodGet Method = iota
	MethodPut
	MethodPost
	MethodDelete
	MethodInsert
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return http.MethodGet
	case MethodPut:
		return http.MethodPut
	case MethodPost:
		return http.MethodPost
	case MethodDelete:
		return http.MethodDelete
	case MethodInsert:
		return "INSERT"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// UnsupportedMethodError marks a real HTTP verb the control API rejects.
type UnsupportedMethodError struct {
	Token string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("method %s is not supported by the control API", strings.ToUpper(e.Token))
}

// UnknownMethodError marks a token outside the method enumeration entirely.
type UnknownMethodError struct {
	Token string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown method %q", e.Token)
}

// ParseMethod maps a case-insensitive token onto the method enumeration.
// HEAD, PATCH, PURGE and OPTIONS are explicitly rejected as unsupported;
// anything else outside the enumeration is unknown.
func ParseMethod(token string) (Method, error) {
	switch strings.ToUpper(token) {
	case "GET":
		return MethodGet, nil
	case "PUT":
		return MethodPut, nil
	case "POST":
		return MethodPost, nil
	case "DELETE":
		return MethodDelete, nil
	case "INSERT":
		return MethodInsert, nil
	case "HEAD", "PATCH", "PURGE", "OPTIONS":
		return 0, &UnsupportedMethodError{Token: token}
	default:
		return 0, &UnknownMethodError{Token: token}
	}
}

// DefaultMethod picks the method when the operator gave none: PUT when a
// payload was piped in, GET otherwise.
func DefaultMethod(hasPayload bool) Method {
	if hasPayload {
		return MethodPut
	}
	return MethodGet
}

// MutatingURI reports whether the URI lives under the reserved control
// sub-namespace, whose endpoints can trigger daemon action without a body.
// Calls there count as mutating regardless of method.
func MutatingURI(uri string) bool {
	return uri == "/control" || strings.HasPrefix(uri, "/control/")
}

// DefaultReactionWait is the fixed pause before reading the log delta after
// a mutating call. A heuristic, not a completion signal.
const DefaultReactionWait = 1 * time.Second

// ReactionWait derives the log-correlation pause from the request shape.
// Zero disables both the pause and the report.
func ReactionWait(m Method, uri string) time.Duration {
	if m == MethodGet && !MutatingURI(uri) {
		return 0
	}
	return DefaultReactionWait
}
