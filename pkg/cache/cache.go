// Package cache persists the resolved control-plane coordinates of the
// currently observed daemon instance across invocations.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vesselhq/vesselctl/pkg/resolve"
)

// Store is the on-disk resolution cache, one record per daemon PID.
//
// The cache tracks at most the currently running instance: Put keeps only
// the new PID's record, purging every other entry. Staleness is detected
// structurally (wrong or dead PID), never by age.
type Store struct {
	// Path is the cache file location. Defaults to DefaultPath().
	Path string
}

// DefaultPath returns the default cache file location (~/.vesselctl/resolve.json).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vesselctl/resolve.json"
	}
	return filepath.Join(home, ".vesselctl", "resolve.json")
}

func (s *Store) path() string {
	if s.Path != "" {
		return s.Path
	}
	return DefaultPath()
}

// Get returns the cached resolution for the given PID, if present.
// A missing or corrupt cache file reads as absent; the operator may delete
// the file at any time to force re-resolution.
func (s *Store) Get(pid int) (resolve.Resolution, bool, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return resolve.Resolution{}, false, nil
		}
		return resolve.Resolution{}, false, fmt.Errorf("read resolution cache: %w", err)
	}

	var records map[string]resolve.Resolution
	if err := json.Unmarshal(data, &records); err != nil {
		// Corrupt cache is recomputed, not reported.
		return resolve.Resolution{}, false, nil
	}

	res, ok := records[strconv.Itoa(pid)]
	if !ok || res.PID != pid {
		return resolve.Resolution{}, false, nil
	}
	return res, true, nil
}

// Put stores the resolution for its PID and purges entries for all other
// PIDs. The write is atomic (temp file + rename), so a race between two
// invocations can only cause redundant recomputation, never a torn record.
func (s *Store) Put(res resolve.Resolution) error {
	path := s.path()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	records := map[string]resolve.Resolution{
		strconv.Itoa(res.PID): res,
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode resolution cache: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write resolution cache: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename resolution cache: %w", err)
	}
	return nil
}

// Remove deletes the cache file. Missing file is not an error.
func (s *Store) Remove() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove resolution cache: %w", err)
	}
	return nil
}
