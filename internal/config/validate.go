package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateEnrichment(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	return ensurePositiveMap(map[string]int{
		"media.timeout_seconds":         c.Media.TimeoutSeconds,
		"feed.timeout_seconds":          c.Feed.TimeoutSeconds,
		"transcription.timeout_seconds": c.Transcription.TimeoutSeconds,
		"llm.timeout_seconds":           c.LLM.TimeoutSeconds,
		"relocate.workers":              c.Relocate.Workers,
		"store.max_open_conns":          c.Store.MaxOpenConns,
	})
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return errors.New("store.path must be set when store.driver is sqlite")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn must be set when store.driver is postgres (or set REELSCRIBE_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("store.driver %q is not supported (use %q or %q)", c.Store.Driver, DriverSQLite, DriverPostgres)
	}
	return nil
}

func (c *Config) validateFeed() error {
	switch c.Feed.Source {
	case FeedSourceExport:
		if c.Feed.ExportDir == "" {
			return errors.New("feed.export_dir must be set when feed.source is export")
		}
	case FeedSourceHTTP:
		if c.Feed.BaseURL == "" {
			return errors.New("feed.base_url must be set when feed.source is http")
		}
	default:
		return fmt.Errorf("feed.source %q is not supported (use %q or %q)", c.Feed.Source, FeedSourceExport, FeedSourceHTTP)
	}
	if strings.Count(c.Feed.PostURLTemplate, "%s") != 1 {
		return errors.New("feed.post_url_template must contain exactly one %s")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Provider {
	case TranscriptionElevenLabs:
		if c.Transcription.ElevenLabsAPIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/reelscribe/config.toml"
			}
			return fmt.Errorf("transcription.elevenlabs_api_key is required. Set ELEVENLABS_API_KEY env var or edit %s (create with 'reelscribe config init')", defaultPath)
		}
	case TranscriptionWhisperX, TranscriptionNone:
	default:
		return fmt.Errorf("transcription.provider %q is not supported", c.Transcription.Provider)
	}
	return nil
}

func (c *Config) validateEnrichment() error {
	e := c.Enrichment
	if e.TitleMinWords > e.TitleMaxWords {
		return errors.New("enrichment.title_min_words must not exceed enrichment.title_max_words")
	}
	if e.CleanTemperature < 0 || e.CleanTemperature > 2 {
		return errors.New("enrichment.clean_temperature must be between 0 and 2")
	}
	if e.TitleTemperature < 0 || e.TitleTemperature > 2 {
		return errors.New("enrichment.title_temperature must be between 0 and 2")
	}
	if strings.Count(e.DefaultFallbackTitle, "%d") != 1 {
		return errors.New("enrichment.default_fallback_title must contain exactly one %d")
	}
	for i, fb := range e.FallbackTitles {
		if strings.Count(fb.Template, "%d") != 1 {
			return fmt.Errorf("enrichment.fallback_titles[%d].template must contain exactly one %%d", i)
		}
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.TargetCount <= 0 {
		return errors.New("ingest.target_count must be positive")
	}
	if c.Ingest.MinScriptChars < 0 {
		return errors.New("ingest.min_script_chars must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
