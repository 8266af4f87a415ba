//go:build !windows

package resolve

import "golang.org/x/sys/unix"

// socketReadable probes read access to the control socket path.
func socketReadable(path string) error {
	return unix.Access(path, unix.R_OK)
}
