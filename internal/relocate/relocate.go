// Package relocate copies saved posts from staging into the permanent
// library layout:
//
//	<library>/agents/<agentID>/posts/post_<N>_thumbnail.jpg
//	<library>/agents/<agentID>/posts/post_<N>_video.mp4
//	<library>/agents/<agentID>/posts/post_<N>_<artifact>.txt
//	<library>/agents/<agentID>/profile/profile_picture.jpg
//
// Files are renamed to the post number the store assigned, which may differ
// from the provisional number used while staging.
package relocate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"reelscribe/internal/fileutil"
	"reelscribe/internal/logging"
	"reelscribe/internal/staging"
)

// ProfilePictureName is the file name used under the profile directory.
const ProfilePictureName = "profile_picture.jpg"

// Item is one saved post awaiting relocation.
type Item struct {
	AgentID    string
	PostNumber int
	StagingDir string
}

// ItemError records a failed file.
type ItemError struct {
	AgentID    string
	PostNumber int
	Path       string
	Err        error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("relocate %s post %d (%s): %v", e.AgentID, e.PostNumber, e.Path, e.Err)
}

// Report summarizes a relocation pass.
type Report struct {
	Files  int
	Posts  int
	Errors []ItemError
}

// Relocator copies or moves staging files into the library.
type Relocator struct {
	libraryDir string
	workers    int
	keep       bool
	logger     *slog.Logger
}

// New creates a relocator. When keepStaging is set files are copied instead
// of moved.
func New(libraryDir string, workers int, keepStaging bool, logger *slog.Logger) *Relocator {
	if workers <= 0 {
		workers = 1
	}
	return &Relocator{
		libraryDir: libraryDir,
		workers:    workers,
		keep:       keepStaging,
		logger:     logging.NewComponentLogger(logger, "relocate"),
	}
}

// PostsDir is the library directory holding an agent's posts.
func PostsDir(libraryDir, agentID string) string {
	return filepath.Join(libraryDir, "agents", agentID, "posts")
}

// ProfileDir is the library directory holding an agent's profile picture.
func ProfileDir(libraryDir, agentID string) string {
	return filepath.Join(libraryDir, "agents", agentID, "profile")
}

// Relocate processes items with a bounded worker pool. Per-file failures are
// collected in the report; they never stop other items.
func (r *Relocator) Relocate(ctx context.Context, items []Item) Report {
	var (
		mu     sync.Mutex
		report Report
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)
	for _, item := range items {
		group.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			files, errs := r.relocateItem(item)
			mu.Lock()
			report.Files += files
			if files > 0 {
				report.Posts++
			}
			report.Errors = append(report.Errors, errs...)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].PostNumber < report.Errors[j].PostNumber
	})
	r.logger.Info("relocation complete",
		logging.Int("posts", report.Posts),
		logging.Int("files", report.Files),
		logging.Int("errors", len(report.Errors)),
	)
	return report
}

func (r *Relocator) relocateItem(item Item) (int, []ItemError) {
	entries, err := os.ReadDir(item.StagingDir)
	if err != nil {
		return 0, []ItemError{{AgentID: item.AgentID, PostNumber: item.PostNumber, Path: item.StagingDir, Err: err}}
	}
	dest := PostsDir(r.libraryDir, item.AgentID)
	var (
		files int
		errs  []ItemError
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		target, ok := TargetName(entry.Name(), item.PostNumber)
		if !ok {
			continue
		}
		src := filepath.Join(item.StagingDir, entry.Name())
		if err := r.transfer(src, filepath.Join(dest, target)); err != nil {
			errs = append(errs, ItemError{AgentID: item.AgentID, PostNumber: item.PostNumber, Path: src, Err: err})
			continue
		}
		files++
	}
	return files, errs
}

// RelocateProfilePicture stores src as the agent's profile picture. A missing
// source is not an error.
func (r *Relocator) RelocateProfilePicture(agentID, src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return "", nil
	}
	dest := filepath.Join(ProfileDir(r.libraryDir, agentID), ProfilePictureName)
	if err := r.transfer(src, dest); err != nil {
		return "", fmt.Errorf("relocate profile picture: %w", err)
	}
	return dest, nil
}

func (r *Relocator) transfer(src, dst string) error {
	if r.keep {
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return fileutil.CopyFileVerified(src, dst)
	}
	return fileutil.MoveFile(src, dst)
}

// TargetName maps a staging file name to its library name for post number
// n. Files that are not post artifacts report false.
func TargetName(name string, n int) (string, bool) {
	switch {
	case strings.HasSuffix(name, staging.ThumbnailSuffix):
		return fmt.Sprintf("post_%d%s", n, staging.ThumbnailSuffix), true
	case strings.HasSuffix(name, staging.VideoSuffix):
		return fmt.Sprintf("post_%d%s", n, staging.VideoSuffix), true
	case strings.HasSuffix(name, ".txt"):
		return fmt.Sprintf("post_%d_%s", n, name), true
	default:
		return "", false
	}
}
