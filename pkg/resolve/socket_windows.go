//go:build windows

package resolve

import "os"

// socketReadable probes read access to the control socket path.
func socketReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
