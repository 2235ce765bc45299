package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"reelscribe/internal/config"
	"reelscribe/internal/logging"
	"reelscribe/internal/services/llm"
	"reelscribe/internal/textutil"
)

// fallbackScanRunes bounds the body prefix searched for fallback keywords.
const fallbackScanRunes = 100

var errNoBackend = errors.New("enrich: completion backend not configured")

// Completer is the language model backend.
type Completer interface {
	Complete(ctx context.Context, prompt llm.Prompt) (string, error)
}

// Settings tunes validation and deterministic fallbacks.
type Settings struct {
	MinCleanLength       int
	MaxGrowthFactor      float64
	TitleMinWords        int
	TitleMaxWords        int
	GenericTitleWords    []string
	GenericTitlePatterns []string
	FallbackTitles       []config.FallbackTitle
	DefaultFallbackTitle string
	EmptyCaption         string
	CleanTemperature     float64
	CleanMaxTokens       int
	TitleTemperature     float64
	TitleMaxTokens       int
}

// SettingsFromConfig maps configuration onto Settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	e := cfg.Enrichment
	return Settings{
		MinCleanLength:       e.MinCleanLength,
		MaxGrowthFactor:      e.MaxGrowthFactor,
		TitleMinWords:        e.TitleMinWords,
		TitleMaxWords:        e.TitleMaxWords,
		GenericTitleWords:    append([]string(nil), e.GenericTitleWords...),
		GenericTitlePatterns: append([]string(nil), e.GenericTitlePatterns...),
		FallbackTitles:       append([]config.FallbackTitle(nil), e.FallbackTitles...),
		DefaultFallbackTitle: e.DefaultFallbackTitle,
		EmptyCaption:         cfg.Feed.EmptyCaption,
		CleanTemperature:     e.CleanTemperature,
		CleanMaxTokens:       e.CleanMaxTokens,
		TitleTemperature:     e.TitleTemperature,
		TitleMaxTokens:       e.TitleMaxTokens,
	}
}

// Enricher implements the enrichment operations. It holds no per-call state.
type Enricher struct {
	completer Completer
	settings  Settings
	logger    *slog.Logger
}

// New constructs an Enricher. A nil completer, or one reporting itself as
// unconfigured, disables model calls.
func New(completer Completer, settings Settings, logger *slog.Logger) *Enricher {
	if c, ok := completer.(interface{ Configured() bool }); ok && !c.Configured() {
		completer = nil
	}
	return &Enricher{
		completer: completer,
		settings:  settings,
		logger:    logging.NewComponentLogger(logger, "enrich"),
	}
}

// ModelEnabled reports whether a completion backend is wired.
func (e *Enricher) ModelEnabled() bool {
	return e != nil && e.completer != nil
}

func (e *Enricher) complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	if e.completer == nil {
		return "", errNoBackend
	}
	out, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		e.logger.Debug("completion failed", logging.Error(err))
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CleanText asks the model to edit a raw transcript. The output is accepted
// only when its rune length lies within [MinCleanLength, MaxGrowthFactor*len(raw)];
// otherwise raw is returned unchanged.
func (e *Enricher) CleanText(ctx context.Context, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	rawLen := utf8.RuneCountInString(raw)
	cleaned, used := WithFallback(ctx,
		func(ctx context.Context) (string, error) {
			return e.complete(ctx, llm.Prompt{
				User:        cleanPrompt(raw),
				Temperature: e.settings.CleanTemperature,
				MaxTokens:   e.settings.CleanMaxTokens,
			})
		},
		func(out string) bool {
			n := utf8.RuneCountInString(out)
			return n >= e.settings.MinCleanLength && float64(n) <= e.settings.MaxGrowthFactor*float64(rawLen)
		},
		func() string { return raw },
	)
	if !used && e.completer != nil {
		e.logger.Debug("cleaned text rejected; keeping original",
			logging.String(logging.FieldDecisionType, "clean_text"),
		)
	}
	return cleaned
}

// GenerateTitle asks the model for a title. The output is stripped of quotes,
// guillemets, and a leading "label:" prefix and must then hold between
// TitleMinWords and TitleMaxWords tokens and not be generic. The boolean is
// false when no acceptable title was produced.
func (e *Enricher) GenerateTitle(ctx context.Context, body, caption, agentName string) (string, bool) {
	if strings.TrimSpace(body) == "" {
		return "", false
	}
	return WithFallback(ctx,
		func(ctx context.Context) (string, error) {
			out, err := e.complete(ctx, llm.Prompt{
				User:        titlePrompt(body, caption, agentName, e.settings.EmptyCaption),
				Temperature: e.settings.TitleTemperature,
				MaxTokens:   e.settings.TitleMaxTokens,
			})
			if err != nil {
				return "", err
			}
			return CleanTitle(out), nil
		},
		e.validTitle,
		func() string { return "" },
	)
}

func (e *Enricher) validTitle(title string) bool {
	words := len(textutil.Words(title))
	if words < e.settings.TitleMinWords || words > e.settings.TitleMaxWords {
		return false
	}
	return !textutil.ContainsAllWords(title, e.settings.GenericTitleWords)
}

var titleQuoteStripper = strings.NewReplacer(`"`, "", "'", "", "«", "", "»", "")

// CleanTitle removes quotes and guillemets and drops everything up to and
// including the first ':'.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(titleQuoteStripper.Replace(raw))
	if _, after, found := strings.Cut(title, ":"); found {
		title = strings.TrimSpace(after)
	}
	return title
}

// FallbackTitle picks the template of the first keyword found in the first
// 100 runes of body, or the default template, and formats the post number
// into it.
func (e *Enricher) FallbackTitle(body string, postNumber int) string {
	head := textutil.Prefix(body, fallbackScanRunes)
	template := e.settings.DefaultFallbackTitle
	for _, candidate := range e.settings.FallbackTitles {
		if candidate.Keyword != "" && strings.Contains(head, candidate.Keyword) {
			template = candidate.Template
			break
		}
	}
	return fmt.Sprintf(template, postNumber)
}

// Title returns a generated title or, failing that, the fallback title.
func (e *Enricher) Title(ctx context.Context, body, caption, agentName string, postNumber int) (string, bool) {
	if title, ok := e.GenerateTitle(ctx, body, caption, agentName); ok {
		return title, true
	}
	return e.FallbackTitle(body, postNumber), false
}

// EnhanceCaption builds the stored caption block: the caption (or the empty
// caption placeholder), then a mentions line and a hashtags line when present.
func (e *Enricher) EnhanceCaption(caption string, mentions, hashtags []string) string {
	var b strings.Builder
	if strings.TrimSpace(caption) == "" {
		b.WriteString(e.settings.EmptyCaption)
	} else {
		b.WriteString(caption)
	}
	if len(mentions) > 0 {
		b.WriteString("\n\n👥 منشن‌ها: ")
		b.WriteString(joinPrefixed("@", mentions))
	}
	if len(hashtags) > 0 {
		b.WriteString("\n\n🏷️ هشتگ‌ها: ")
		b.WriteString(joinPrefixed("#", hashtags))
	}
	return b.String()
}

func joinPrefixed(prefix string, values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, prefix+strings.TrimPrefix(v, prefix))
	}
	return strings.Join(parts, ", ")
}

// IsGenericTitle reports whether a stored title should be regenerated: it is
// empty, contains one of GenericTitlePatterns, or contains every generic word.
func (e *Enricher) IsGenericTitle(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return true
	}
	for _, pattern := range e.settings.GenericTitlePatterns {
		if pattern != "" && strings.Contains(title, pattern) {
			return true
		}
	}
	return textutil.ContainsAllWords(title, e.settings.GenericTitleWords)
}
