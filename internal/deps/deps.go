// Package deps checks the external binaries a configuration relies on.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"reelscribe/internal/config"
)

// Requirement defines an external dependency reelscribe relies on.
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

// ForConfig lists the binaries the configured transcription provider needs.
// Hosted providers need none.
func ForConfig(cfg *config.Config) []Requirement {
	if cfg == nil || cfg.Transcription.Provider != config.TranscriptionWhisperX {
		return nil
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Extracts post audio for WhisperX",
		},
		{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Runs WhisperX transcription",
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
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			resolved, err := exec.LookPath(cmd)
			if err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
				break
			}
			status.Available = true
			status.Command = resolved
		}
		results = append(results, status)
	}
	return results
}

// Satisfied reports whether every required dependency is available.
func Satisfied(statuses []Status) bool {
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			return false
		}
	}
	return true
}
