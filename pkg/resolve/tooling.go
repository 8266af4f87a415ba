package resolve

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Requirement defines an external collaborator vesselctl relies on.
type Requirement struct {
	Name        string
	Path        string // binary name or absolute path; empty means filesystem path check
	Description string
	Optional    bool
}

// ToolStatus reports the availability of one requirement.
type ToolStatus struct {
	Name        string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckTooling evaluates the provided requirements and reports availability.
func CheckTooling(requirements []Requirement) []ToolStatus {
	results := make([]ToolStatus, 0, len(requirements))
	for _, req := range requirements {
		path := strings.TrimSpace(req.Path)
		status := ToolStatus{
			Name:        req.Name,
			Path:        path,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if path == "" {
			status.Detail = "path not configured"
			results = append(results, status)
			continue
		}
		if strings.Contains(path, "/") {
			if _, err := os.Stat(path); err != nil {
				status.Detail = fmt.Sprintf("%q not found", path)
				results = append(results, status)
				continue
			}
		} else if _, err := exec.LookPath(path); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", path)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// VerifyTooling returns a MissingToolingError naming every required
// collaborator that is unavailable, or nil when all are present.
func VerifyTooling(requirements []Requirement) error {
	var missing []string
	for _, st := range CheckTooling(requirements) {
		if !st.Available && !st.Optional {
			missing = append(missing, st.Name)
		}
	}
	if len(missing) > 0 {
		return &MissingToolingError{Names: missing}
	}
	return nil
}

// ProcfsRequirement describes the process-table inspector dependency.
func ProcfsRequirement(root string) Requirement {
	if root == "" {
		root = "/proc"
	}
	return Requirement{
		Name:        "procfs",
		Path:        root,
		Description: "process table used to locate the daemon",
	}
}
