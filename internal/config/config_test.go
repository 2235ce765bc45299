package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelscribe/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "stt-key")
	t.Setenv("GROQ_API_KEY", "llm-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "reelscribe", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Store.Driver != config.DriverSQLite {
		t.Fatalf("unexpected store driver: %q", cfg.Store.Driver)
	}
	if cfg.Store.Path != filepath.Join(tempHome, ".local", "share", "reelscribe", "state", "reelscribe.db") {
		t.Fatalf("unexpected store path: %q", cfg.Store.Path)
	}
	if cfg.Transcription.ElevenLabsAPIKey != "stt-key" {
		t.Fatalf("expected elevenlabs key from env, got %q", cfg.Transcription.ElevenLabsAPIKey)
	}
	if cfg.LLM.APIKey != "llm-key" {
		t.Fatalf("expected llm key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Ingest.MinScriptChars != 50 {
		t.Fatalf("unexpected min script chars: %d", cfg.Ingest.MinScriptChars)
	}
	if cfg.Relocate.Workers != 4 {
		t.Fatalf("unexpected relocate workers: %d", cfg.Relocate.Workers)
	}
	if len(cfg.Enrichment.FallbackTitles) != 3 {
		t.Fatalf("expected three default fallback titles, got %d", len(cfg.Enrichment.FallbackTitles))
	}
	lo, hi := cfg.DelayRange()
	if lo >= hi {
		t.Fatalf("unexpected delay range %v..%v", lo, hi)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LibraryDir, cfg.Paths.LogDir, cfg.LockDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	configPath := filepath.Join(tempDir, "reelscribe.toml")

	type payload struct {
		Store struct {
			Driver string `toml:"driver"`
			DSN    string `toml:"dsn"`
		} `toml:"store"`
		Transcription struct {
			Provider string `toml:"provider"`
		} `toml:"transcription"`
		Ingest struct {
			TargetCount    int `toml:"target_count"`
			MinScriptChars int `toml:"min_script_chars"`
		} `toml:"ingest"`
	}
	custom := payload{}
	custom.Store.Driver = "postgresql"
	custom.Store.DSN = "postgres://u:p@localhost/db"
	custom.Transcription.Provider = "none"
	custom.Ingest.TargetCount = 12
	custom.Ingest.MinScriptChars = 10
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Store.Driver != config.DriverPostgres {
		t.Fatalf("expected driver alias to normalize to postgres, got %q", cfg.Store.Driver)
	}
	if cfg.Ingest.TargetCount != 12 {
		t.Fatalf("expected target count 12, got %d", cfg.Ingest.TargetCount)
	}
	if cfg.Ingest.MinScriptChars != 10 {
		t.Fatalf("expected min script chars 10, got %d", cfg.Ingest.MinScriptChars)
	}
}

func TestDotEnvFillsMissingKeys(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("ELEVENLABS_API_KEY", "")
	t.Chdir(tempDir)

	if err := os.WriteFile(filepath.Join(tempDir, ".env"), []byte("ELEVENLABS_API_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	os.Unsetenv("ELEVENLABS_API_KEY")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcription.ElevenLabsAPIKey != "from-dotenv" {
		t.Fatalf("expected key from .env, got %q", cfg.Transcription.ElevenLabsAPIKey)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "unknown driver",
			mutate: func(c *config.Config) { c.Store.Driver = "mysql" },
			want:   "store.driver",
		},
		{
			name: "postgres without dsn",
			mutate: func(c *config.Config) {
				c.Store.Driver = config.DriverPostgres
				c.Store.DSN = ""
			},
			want: "store.dsn",
		},
		{
			name:   "http feed without base url",
			mutate: func(c *config.Config) { c.Feed.Source = config.FeedSourceHTTP },
			want:   "feed.base_url",
		},
		{
			name:   "elevenlabs without key",
			mutate: func(c *config.Config) { c.Transcription.Provider = config.TranscriptionElevenLabs },
			want:   "elevenlabs_api_key",
		},
		{
			name:   "zero target",
			mutate: func(c *config.Config) { c.Ingest.TargetCount = 0 },
			want:   "ingest.target_count",
		},
		{
			name: "template without verb",
			mutate: func(c *config.Config) {
				c.Enrichment.FallbackTitles = []config.FallbackTitle{{Keyword: "x", Template: "no number"}}
			},
			want: "fallback_titles[0]",
		},
		{
			name:   "inverted title bounds",
			mutate: func(c *config.Config) { c.Enrichment.TitleMinWords = 30 },
			want:   "title_min_words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Transcription.Provider = config.TranscriptionNone
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("ELEVENLABS_API_KEY", "k")
	path := filepath.Join(tempDir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Enrichment.FallbackTitles[1].Keyword != "ویلا" {
		t.Fatalf("unexpected fallback title order: %+v", cfg.Enrichment.FallbackTitles)
	}
}
