// Package deps reports availability of the external binaries retempo drives.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"retempo/internal/config"
)

// Requirement defines an external dependency retempo relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries needed for the configured pipeline.
func Requirements(cfg *config.Config) []Requirement {
	binary := "rubberband"
	if cfg != nil && cfg.Stretch.Binary != "" {
		binary = cfg.Stretch.Binary
	}
	return []Requirement{
		{
			Name:        "rubberband",
			Command:     binary,
			Description: "time-stretching engine used to change tempo without shifting pitch",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
