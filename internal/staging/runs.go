package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ListRuns returns the run directories laid out as <agent>/<run> under
// stagingDir. Name holds the relative "<agent>/<run>" path.
func ListRuns(stagingDir string) ([]DirInfo, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}
	agents, err := ListDirectories(stagingDir)
	if err != nil {
		return nil, err
	}
	var runs []DirInfo
	for _, agent := range agents {
		entries, err := ListDirectories(agent.Path)
		if err != nil {
			continue
		}
		for _, run := range entries {
			run.Name = agent.Name + "/" + run.Name
			runs = append(runs, run)
		}
	}
	return runs, nil
}

// CleanStaleRuns applies CleanStale to every run directory and then removes
// run and agent directories left empty.
func CleanStaleRuns(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	var result CleanStaleResult
	if maxAge <= 0 {
		return result
	}
	runs, err := ListRuns(stagingDir)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		return result
	}
	cutoff := time.Now().Add(-maxAge)
	for _, run := range runs {
		if ctx.Err() != nil {
			return result
		}
		sub := CleanStale(ctx, run.Path, maxAge, logger)
		result.Removed = append(result.Removed, sub.Removed...)
		result.Errors = append(result.Errors, sub.Errors...)
		if run.ModTime.Before(cutoff) && os.Remove(run.Path) == nil {
			result.Removed = append(result.Removed, run.Path)
			_ = os.Remove(filepath.Dir(run.Path))
		}
	}
	return result
}
