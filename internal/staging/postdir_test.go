package staging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewPostDirLayout(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	dir, err := NewPostDir(root, 7, "Cx1/y", now)
	if err != nil {
		t.Fatalf("NewPostDir: %v", err)
	}
	if want := filepath.Join(root, "post_7_20240309_140507_Cx1-y"); dir.Path != want {
		t.Fatalf("path = %q, want %q", dir.Path, want)
	}
	if filepath.Base(dir.ThumbnailPath()) != "post_7_thumbnail.jpg" {
		t.Fatalf("unexpected thumbnail path %q", dir.ThumbnailPath())
	}
	if filepath.Base(dir.VideoPath()) != "post_7_video.mp4" {
		t.Fatalf("unexpected video path %q", dir.VideoPath())
	}
}

func TestPostDirWriteTextSkipsEmpty(t *testing.T) {
	dir, err := NewPostDir(t.TempDir(), 1, "abc", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := dir.WriteText(Caption, "  "); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir.Path, Caption)); !os.IsNotExist(err) {
		t.Fatalf("expected no caption file, err=%v", err)
	}
	if err := dir.WriteText(Transcript, "متن"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir.Path, Transcript)); err != nil {
		t.Fatalf("expected transcript file: %v", err)
	}
	if err := dir.Remove(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir.Path); !os.IsNotExist(err) {
		t.Fatal("expected dir removed")
	}
}
