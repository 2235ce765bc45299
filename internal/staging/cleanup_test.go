package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelscribe/internal/logging"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldPostDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	oldTime := time.Now().Add(-2 * time.Hour)

	oldDir := filepath.Join(tmpDir, "post_3_20240101_120000_abc")
	otherDir := filepath.Join(tmpDir, "unrelated")
	recentDir := filepath.Join(tmpDir, "post_4_20240101_120500_def")
	for _, dir := range []string{oldDir, otherDir, recentDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for _, dir := range []string{oldDir, otherDir} {
		if err := os.Chtimes(dir, oldTime, oldTime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("expected only %s removed, got %v", oldDir, result.Removed)
	}
	if _, err := os.Stat(otherDir); err != nil {
		t.Error("non-post directory should be kept")
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Error("recent directory should still exist")
	}
}

func TestCleanStaleDisabledWithZeroAge(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, "post_1_x"), 0o755); err != nil {
		t.Fatal(err)
	}
	result := CleanStale(context.Background(), tmpDir, 0, nil)
	if len(result.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", result.Removed)
	}
}

func TestListDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "post_1_x")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "video.mp4"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dirs, err := ListDirectories(tmpDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Size != 100 {
		t.Fatalf("unexpected listing %+v", dirs)
	}
}

func TestCleanStaleRunsWalksAgentRuns(t *testing.T) {
	root := t.TempDir()
	oldTime := time.Now().Add(-3 * time.Hour)

	runDir := filepath.Join(root, "agent-1", "run-old")
	postDir := filepath.Join(runDir, "post_1_20240101_120000_abc")
	if err := os.MkdirAll(postDir, 0o755); err != nil {
		t.Fatal(err)
	}
	liveRun := filepath.Join(root, "agent-2", "run-live")
	if err := os.MkdirAll(filepath.Join(liveRun, "post_2_20240101_120000_def"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{postDir, runDir} {
		if err := os.Chtimes(dir, oldTime, oldTime); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := ListRuns(root)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %+v", runs)
	}

	result := CleanStaleRuns(context.Background(), root, time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if _, err := os.Stat(filepath.Join(root, "agent-1")); !os.IsNotExist(err) {
		t.Fatalf("stale run and empty agent dir should be removed, stat err %v", err)
	}
	if _, err := os.Stat(liveRun); err != nil {
		t.Fatalf("recent run should remain: %v", err)
	}
}
