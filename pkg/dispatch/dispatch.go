// Package dispatch translates vesselctl's virtual methods into real HTTP
// calls against the daemon's control API.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ohler55/ojg/oj"

	"github.com/vesselhq/vesselctl/pkg/logging"
)

// Request is one operator-issued configuration change.
type Request struct {
	Method  Method
	URI     string
	Payload []byte // nil when nothing was piped in
}

// Result is the outcome of a dispatched request.
type Result struct {
	Status int
	Body   []byte
	// Mutating records whether the call may have changed daemon state and
	// therefore warrants a log report.
	Mutating bool
}

// NotArrayError rejects an INSERT whose target does not currently hold an
// array. The PUT is never issued; the operation is all-or-nothing.
type NotArrayError struct {
	URI    string
	Reason string
}

func (e *NotArrayError) Error() string {
	return fmt.Sprintf("INSERT target %s does not hold an array: %s", e.URI, e.Reason)
}

// PayloadError rejects a payload that is not valid JSON where JSON is
// required.
type PayloadError struct {
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("payload is not valid JSON: %v", e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// ErrInsertNeedsPayload rejects an INSERT without piped input.
var ErrInsertNeedsPayload = &PayloadError{Err: fmt.Errorf("INSERT requires a value on stdin")}

// Dispatcher maps requests onto control API calls.
type Dispatcher struct {
	Client *Client
	Log    *slog.Logger
}

// NewDispatcher creates a dispatcher over the given client.
func NewDispatcher(client *Client, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Dispatcher{Client: client, Log: logger}
}

// Dispatch performs the request. The method enumeration is matched
// exhaustively; each variant carries its own payload rule.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	mutating := req.Method != MethodGet || MutatingURI(req.URI)

	var resp Response
	var err error

	switch req.Method {
	case MethodGet:
		resp, err = d.Client.Do(ctx, http.MethodGet, req.URI, req.Payload)
	case MethodPut:
		resp, err = d.Client.Do(ctx, http.MethodPut, req.URI, req.Payload)
	case MethodPost:
		resp, err = d.Client.Do(ctx, http.MethodPost, req.URI, req.Payload)
	case MethodDelete:
		// DELETE never reads a payload, even if one was supplied.
		resp, err = d.Client.Do(ctx, http.MethodDelete, req.URI, nil)
	case MethodInsert:
		resp, err = d.insert(ctx, req)
	default:
		return Result{}, &UnknownMethodError{Token: req.Method.String()}
	}
	if err != nil {
		return Result{}, err
	}

	d.Log.Debug("dispatched request",
		"method", req.Method.String(),
		"uri", req.URI,
		"status", resp.Status)

	return Result{Status: resp.Status, Body: resp.Body, Mutating: mutating}, nil
}

// insert implements the virtual INSERT: fetch the current value, verify it
// is an array, and PUT it back with the new element(s) prepended at index 0.
// If the fetch fails or the value is not an array, nothing is written.
func (d *Dispatcher) insert(ctx context.Context, req Request) (Response, error) {
	if req.Payload == nil {
		return Response{}, ErrInsertNeedsPayload
	}

	element, err := oj.Parse(req.Payload)
	if err != nil {
		return Response{}, &PayloadError{Err: err}
	}

	current, err := d.Client.Do(ctx, http.MethodGet, req.URI, nil)
	if err != nil {
		return Response{}, err
	}
	if current.Status != http.StatusOK {
		return Response{}, &NotArrayError{
			URI:    req.URI,
			Reason: fmt.Sprintf("fetch returned status %d", current.Status),
		}
	}

	value, err := oj.Parse(current.Body)
	if err != nil {
		return Response{}, &NotArrayError{URI: req.URI, Reason: "current value is not JSON"}
	}
	arr, ok := value.([]any)
	if !ok {
		return Response{}, &NotArrayError{URI: req.URI, Reason: fmt.Sprintf("current value is %T", value)}
	}

	// "Insert" means insert at index 0. A payload that is itself an array
	// contributes all of its elements, in order, ahead of the existing ones.
	var updated []any
	if elems, ok := element.([]any); ok {
		updated = append(append(updated, elems...), arr...)
	} else {
		updated = append(append(updated, element), arr...)
	}

	d.Log.Debug("inserting into array", "uri", req.URI, "length", len(updated))

	return d.Client.Do(ctx, http.MethodPut, req.URI, []byte(oj.JSON(updated)))
}
