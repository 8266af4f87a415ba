// Package resolve determines the control-API endpoint and log file of a
// running vesseld instance from its runtime parameters.
package resolve

import "fmt"

// EndpointKind distinguishes how the control API is reached.
type EndpointKind string

// Endpoint kinds.
const (
	// EndpointTCP is a plain-HTTP network address (host:port).
	EndpointTCP EndpointKind = "tcp"
	// EndpointSocket is a local unix socket path.
	EndpointSocket EndpointKind = "unix"
)

// Endpoint is the location of the daemon's control API.
type Endpoint struct {
	Kind    EndpointKind `json:"kind"`
	Address string       `json:"address"` // host:port for tcp, filesystem path for unix
}

// BaseURL returns the URL prefix for control API requests. Unix-socket
// endpoints use a placeholder host; the transport dials the socket directly.
func (e Endpoint) BaseURL() string {
	if e.Kind == EndpointSocket {
		return "http://localhost"
	}
	return "http://" + e.Address
}

func (e Endpoint) String() string {
	if e.Kind == EndpointSocket {
		return "unix:" + e.Address
	}
	return e.Address
}

// Resolution is a daemon instance's control-plane coordinates. It is valid
// only for the PID it was computed from; once that process is gone the
// record is stale and must be discarded.
type Resolution struct {
	PID      int      `json:"pid"`
	Endpoint Endpoint `json:"endpoint"`
	// LogPath may be empty, in which case log correlation is disabled.
	LogPath string `json:"logPath,omitempty"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("pid %d at %s", r.PID, r.Endpoint)
}
