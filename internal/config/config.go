package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
	StateDir   string `toml:"state_dir"`
}

// Store selects and configures the relational backend.
type Store struct {
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
}

// Feed configures where profile snapshots and posts come from.
type Feed struct {
	Source          string            `toml:"source"`
	ExportDir       string            `toml:"export_dir"`
	BaseURL         string            `toml:"base_url"`
	PagesPerSecond  float64           `toml:"pages_per_second"`
	TimeoutSeconds  int               `toml:"timeout_seconds"`
	Headers         map[string]string `toml:"headers"`
	CookieFile      string            `toml:"cookie_file"`
	PostURLTemplate string            `toml:"post_url_template"`
	EmptyCaption    string            `toml:"empty_caption"`
}

// Media configures downloads of thumbnails, videos, and profile pictures.
type Media struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	UserAgent      string `toml:"user_agent"`
}

// Transcription selects the speech-to-text provider.
type Transcription struct {
	Provider            string `toml:"provider"`
	Language            string `toml:"language"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	ElevenLabsAPIKey    string `toml:"elevenlabs_api_key"`
	ElevenLabsBaseURL   string `toml:"elevenlabs_base_url"`
	ElevenLabsModel     string `toml:"elevenlabs_model"`
	WhisperXModel       string `toml:"whisperx_model"`
	WhisperXCUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
	WhisperXVADMethod   string `toml:"whisperx_vad_method"`
	WhisperXHuggingFace string `toml:"whisperx_hf_token"`
}

// LLM contains the language model connection settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// FallbackTitle maps a body keyword to a deterministic title template.
// The template receives the post number through a single %d verb.
type FallbackTitle struct {
	Keyword  string `toml:"keyword"`
	Template string `toml:"template"`
}

// Enrichment tunes text cleaning and title generation.
type Enrichment struct {
	Enabled              bool            `toml:"enabled"`
	MinCleanLength       int             `toml:"min_clean_length"`
	MaxGrowthFactor      float64         `toml:"max_growth_factor"`
	TitleMinWords        int             `toml:"title_min_words"`
	TitleMaxWords        int             `toml:"title_max_words"`
	GenericTitleWords    []string        `toml:"generic_title_words"`
	GenericTitlePatterns []string        `toml:"generic_title_patterns"`
	FallbackTitles       []FallbackTitle `toml:"fallback_titles"`
	DefaultFallbackTitle string          `toml:"default_fallback_title"`
	CleanTemperature     float64         `toml:"clean_temperature"`
	CleanMaxTokens       int             `toml:"clean_max_tokens"`
	TitleTemperature     float64         `toml:"title_temperature"`
	TitleMaxTokens       int             `toml:"title_max_tokens"`
}

// Ingest tunes the per-run pipeline.
type Ingest struct {
	TargetCount     int     `toml:"target_count"`
	DelayMinSeconds float64 `toml:"delay_min_seconds"`
	DelayMaxSeconds float64 `toml:"delay_max_seconds"`
	MinScriptChars  int     `toml:"min_script_chars"`
	ScriptName      string  `toml:"script_name"`
	ScriptAlphabet  string  `toml:"script_alphabet"`
	KeepStaging     bool    `toml:"keep_staging"`
	StagingMaxAge   int     `toml:"staging_max_age_hours"`
}

// Relocate configures the permanent media layout copy step.
type Relocate struct {
	Enabled bool `toml:"enabled"`
	Workers int  `toml:"workers"`
}

// Agents supplies defaults for agent rows created from sparse profiles.
type Agents struct {
	DefaultBio      string `toml:"default_bio"`
	DefaultLocation string `toml:"default_location"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Metrics configures the Prometheus textfile written after each run.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// API configures the read-only HTTP server.
type API struct {
	Bind  string `toml:"bind"`
	Token string `toml:"token"`
}

// Config encapsulates all configuration values for reelscribe.
//
// Configuration sections by subsystem:
//   - Paths: staging, library, log, and state directories
//   - Store: sqlite or postgres backend
//   - Feed: profile/post source and request headers
//   - Media: download timeouts and retries
//   - Transcription: elevenlabs, whisperx, or none
//   - LLM: completion endpoint used by enrichment
//   - Enrichment: cleaning/title validation and fallback titles
//   - Ingest: target count, pacing, quality gate
//   - Relocate: permanent layout copy workers
//   - Agents: defaults for sparse profiles
//   - Logging, Metrics, API
type Config struct {
	Paths         Paths         `toml:"paths"`
	Store         Store         `toml:"store"`
	Feed          Feed          `toml:"feed"`
	Media         Media         `toml:"media"`
	Transcription Transcription `toml:"transcription"`
	LLM           LLM           `toml:"llm"`
	Enrichment    Enrichment    `toml:"enrichment"`
	Ingest        Ingest        `toml:"ingest"`
	Relocate      Relocate      `toml:"relocate"`
	Agents        Agents        `toml:"agents"`
	Logging       Logging       `toml:"logging"`
	Metrics       Metrics       `toml:"metrics"`
	API           API           `toml:"api"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelscribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv populates unset environment variables from ./.env. Variables that
// are already present in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat .env: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelscribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for an ingestion run.
// LibraryDir is created on a best-effort basis so runs can still stage and
// persist when external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.StateDir, c.LockDir()}
	if c.Store.Driver == DriverSQLite {
		dirs = append(dirs, filepath.Dir(c.Store.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// LockDir returns the directory holding per-agent run locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// FFmpegBinary returns the ffmpeg executable name used for audio extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// DelayRange returns the configured inter-post delay bounds.
func (c *Config) DelayRange() (time.Duration, time.Duration) {
	toDuration := func(seconds float64) time.Duration {
		return time.Duration(seconds * float64(time.Second))
	}
	return toDuration(c.Ingest.DelayMinSeconds), toDuration(c.Ingest.DelayMaxSeconds)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains LLM connection settings.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
