package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/vesselhq/vesselctl/pkg/resolve"
)

// Response is one control API answer.
type Response struct {
	Status int
	Body   []byte
}

// TransportError wraps a failure of the HTTP transport itself, as opposed
// to an error status from the control API.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot reach control API at %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PermissionDenied reports whether the failure was an access problem,
// typically a control socket owned by the daemon user.
func (e *TransportError) PermissionDenied() bool {
	return errors.Is(e.Err, os.ErrPermission) || errors.Is(e.Err, syscall.EACCES)
}

// Client speaks plain HTTP to the control API, over TCP or a local socket.
type Client struct {
	endpoint   resolve.Endpoint
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a control client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP timeout for the client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a control API client for the resolved endpoint.
func NewClient(endpoint resolve.Endpoint, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		baseURL:  endpoint.BaseURL(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	if endpoint.Kind == resolve.EndpointSocket {
		c.httpClient.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", endpoint.Address)
			},
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs one HTTP request against the control API and drains the
// response. Transport failures become TransportError; error statuses are
// returned to the caller as-is, the daemon's answer is the answer.
func (c *Client) Do(ctx context.Context, method, uri string, payload []byte) (Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+uri, body)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, &TransportError{Endpoint: c.endpoint.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &TransportError{Endpoint: c.endpoint.String(), Err: err}
	}
	return Response{Status: resp.StatusCode, Body: data}, nil
}
