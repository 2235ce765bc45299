package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizeFeed(); err != nil {
		return err
	}
	c.normalizeMedia()
	c.normalizeTranscription()
	c.normalizeLLM()
	c.normalizeEnrichment()
	c.normalizeIngest()
	if c.Relocate.Workers <= 0 {
		c.Relocate.Workers = defaultRelocateWorkers
	}
	c.normalizeLogging()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		c.API.Token = lookupEnv("REELSCRIBE_API_TOKEN")
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case "", "sqlite3", DriverSQLite:
		c.Store.Driver = DriverSQLite
	case "postgresql", "pg", DriverPostgres:
		c.Store.Driver = DriverPostgres
	}
	c.Store.DSN = strings.TrimSpace(c.Store.DSN)
	if c.Store.DSN == "" {
		c.Store.DSN = lookupEnv("REELSCRIBE_DATABASE_URL", "DATABASE_URL")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultStorePath
	}
	var err error
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	if c.Store.MaxOpenConns <= 0 {
		c.Store.MaxOpenConns = defaultStoreMaxOpenConns
	}
	return nil
}

func (c *Config) normalizeFeed() error {
	c.Feed.Source = strings.ToLower(strings.TrimSpace(c.Feed.Source))
	if c.Feed.Source == "" {
		c.Feed.Source = defaultFeedSource
	}
	var err error
	if c.Feed.ExportDir, err = expandPath(c.Feed.ExportDir); err != nil {
		return fmt.Errorf("feed.export_dir: %w", err)
	}
	if c.Feed.CookieFile, err = expandPath(c.Feed.CookieFile); err != nil {
		return fmt.Errorf("feed.cookie_file: %w", err)
	}
	c.Feed.BaseURL = strings.TrimRight(strings.TrimSpace(c.Feed.BaseURL), "/")
	if c.Feed.PagesPerSecond <= 0 {
		c.Feed.PagesPerSecond = defaultFeedPagesPerSecond
	}
	if c.Feed.TimeoutSeconds <= 0 {
		c.Feed.TimeoutSeconds = defaultFeedTimeoutSeconds
	}
	c.Feed.PostURLTemplate = strings.TrimSpace(c.Feed.PostURLTemplate)
	if c.Feed.PostURLTemplate == "" {
		c.Feed.PostURLTemplate = defaultPostURLTemplate
	}
	if strings.TrimSpace(c.Feed.EmptyCaption) == "" {
		c.Feed.EmptyCaption = defaultEmptyCaption
	}
	return nil
}

func (c *Config) normalizeMedia() {
	if c.Media.TimeoutSeconds <= 0 {
		c.Media.TimeoutSeconds = defaultMediaTimeoutSeconds
	}
	if c.Media.MaxRetries < 0 {
		c.Media.MaxRetries = 0
	}
	c.Media.UserAgent = strings.TrimSpace(c.Media.UserAgent)
	if c.Media.UserAgent == "" {
		c.Media.UserAgent = defaultMediaUserAgent
	}
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Provider = strings.ToLower(strings.TrimSpace(t.Provider))
	if t.Provider == "" {
		t.Provider = defaultTranscriptionProvider
	}
	t.Language = strings.ToLower(strings.TrimSpace(t.Language))
	if t.Language == "" {
		t.Language = defaultTranscriptionLanguage
	}
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = defaultTranscriptionTimeout
	}
	t.ElevenLabsAPIKey = strings.TrimSpace(t.ElevenLabsAPIKey)
	if t.ElevenLabsAPIKey == "" {
		t.ElevenLabsAPIKey = lookupEnv("ELEVENLABS_API_KEY", "MY_API_KEY")
	}
	t.ElevenLabsBaseURL = strings.TrimSpace(t.ElevenLabsBaseURL)
	if t.ElevenLabsBaseURL == "" {
		t.ElevenLabsBaseURL = defaultElevenLabsBaseURL
	}
	t.ElevenLabsModel = strings.TrimSpace(t.ElevenLabsModel)
	if t.ElevenLabsModel == "" {
		t.ElevenLabsModel = defaultElevenLabsModel
	}
	t.WhisperXModel = strings.TrimSpace(t.WhisperXModel)
	if t.WhisperXModel == "" {
		t.WhisperXModel = defaultWhisperXModel
	}
	t.WhisperXVADMethod = strings.ToLower(strings.TrimSpace(t.WhisperXVADMethod))
	if t.WhisperXVADMethod == "" {
		t.WhisperXVADMethod = defaultWhisperXVADMethod
	}
	t.WhisperXHuggingFace = strings.TrimSpace(t.WhisperXHuggingFace)
	if t.WhisperXHuggingFace == "" {
		t.WhisperXHuggingFace = lookupEnv("HUGGING_FACE_HUB_TOKEN", "HF_TOKEN")
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = lookupEnv("GROQ_API_KEY", "OPENROUTER_API_KEY")
	}
}

func (c *Config) normalizeEnrichment() {
	e := &c.Enrichment
	if e.MinCleanLength <= 0 {
		e.MinCleanLength = defaultMinCleanLength
	}
	if e.MaxGrowthFactor <= 0 {
		e.MaxGrowthFactor = defaultMaxGrowthFactor
	}
	if e.TitleMinWords <= 0 {
		e.TitleMinWords = defaultTitleMinWords
	}
	if e.TitleMaxWords <= 0 {
		e.TitleMaxWords = defaultTitleMaxWords
	}
	e.GenericTitleWords = trimList(e.GenericTitleWords)
	if e.GenericTitlePatterns == nil {
		e.GenericTitlePatterns = defaultGenericTitlePatterns()
	}
	fallbacks := make([]FallbackTitle, 0, len(e.FallbackTitles))
	for _, fb := range e.FallbackTitles {
		fb.Keyword = strings.TrimSpace(fb.Keyword)
		fb.Template = strings.TrimSpace(fb.Template)
		if fb.Keyword == "" || fb.Template == "" {
			continue
		}
		fallbacks = append(fallbacks, fb)
	}
	e.FallbackTitles = fallbacks
	e.DefaultFallbackTitle = strings.TrimSpace(e.DefaultFallbackTitle)
	if e.DefaultFallbackTitle == "" {
		e.DefaultFallbackTitle = defaultDefaultFallbackTitle
	}
	if e.CleanMaxTokens <= 0 {
		e.CleanMaxTokens = defaultCleanMaxTokens
	}
	if e.TitleMaxTokens <= 0 {
		e.TitleMaxTokens = defaultTitleMaxTokens
	}
}

func (c *Config) normalizeIngest() {
	if c.Ingest.DelayMinSeconds < 0 {
		c.Ingest.DelayMinSeconds = 0
	}
	if c.Ingest.DelayMaxSeconds < c.Ingest.DelayMinSeconds {
		c.Ingest.DelayMaxSeconds = c.Ingest.DelayMinSeconds
	}
	c.Ingest.ScriptName = strings.ToLower(strings.TrimSpace(c.Ingest.ScriptName))
	if strings.TrimSpace(c.Ingest.ScriptAlphabet) == "" {
		c.Ingest.ScriptAlphabet = defaultScriptAlphabet
	}
	if c.Ingest.StagingMaxAge <= 0 {
		c.Ingest.StagingMaxAge = defaultStagingMaxAgeHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeMetrics() error {
	var err error
	if c.Metrics.TextfilePath, err = expandPath(strings.TrimSpace(c.Metrics.TextfilePath)); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

// lookupEnv returns the first non-empty value among keys.
func lookupEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
