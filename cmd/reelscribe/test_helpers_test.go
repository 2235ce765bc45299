package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"reelscribe/internal/config"
	"reelscribe/internal/feed"
	"reelscribe/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	exportDir  string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, mutate ...func(*config.Config)) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"ELEVENLABS_API_KEY", "MY_API_KEY", "GROQ_API_KEY", "OPENROUTER_API_KEY", "REELSCRIBE_DATABASE_URL", "DATABASE_URL", "REELSCRIBE_API_TOKEN"} {
		t.Setenv(key, "")
	}

	cfg.Feed.Source = config.FeedSourceExport
	cfg.Feed.ExportDir = filepath.Join(base, "exports")
	if err := os.MkdirAll(cfg.Feed.ExportDir, 0o755); err != nil {
		t.Fatalf("mkdir exports: %v", err)
	}
	for _, fn := range mutate {
		fn(cfg)
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		exportDir:  cfg.Feed.ExportDir,
		baseDir:    base,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

type exportPost struct {
	feed.Post
	withMedia bool
}

// writeExport lays out <exportDir>/<handle>/profile.json and posts/*.json.
// Posts are dated newest first in the order given.
func writeExport(t *testing.T, exportDir, handle string, posts ...exportPost) {
	t.Helper()
	root := filepath.Join(exportDir, handle)
	postsDir := filepath.Join(root, "posts")
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		t.Fatalf("mkdir export: %v", err)
	}
	writeJSONFile(t, filepath.Join(root, "profile.json"), feed.Profile{Handle: handle, FullName: "Test Agent"})

	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, p := range posts {
		p.TakenAt = start.Add(-time.Duration(i) * time.Hour)
		if p.withMedia {
			testsupport.WriteMP4(t, filepath.Join(postsDir, p.Shortcode+".mp4"), 2048)
			testsupport.WriteJPEG(t, filepath.Join(postsDir, p.Shortcode+".jpg"), 512)
			p.VideoURL = p.Shortcode + ".mp4"
			p.ThumbnailURL = p.Shortcode + ".jpg"
		}
		writeJSONFile(t, filepath.Join(postsDir, p.Shortcode+".json"), p.Post)
	}
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
