package main

import (
	"log/slog"

	"reelscribe/internal/config"
	"reelscribe/internal/enrich"
	"reelscribe/internal/services/llm"
)

func newLLMClient(cfg *config.Config) *llm.Client {
	l := cfg.GetLLM()
	return llm.NewClient(llm.Config{
		APIKey:         l.APIKey,
		BaseURL:        l.BaseURL,
		Model:          l.Model,
		Referer:        l.Referer,
		Title:          l.Title,
		TimeoutSeconds: l.TimeoutSeconds,
	})
}

// newEnricher wires the completion client unless model calls are disabled.
func newEnricher(cfg *config.Config, logger *slog.Logger, useModel bool) *enrich.Enricher {
	var completer enrich.Completer
	if useModel && cfg.Enrichment.Enabled {
		completer = newLLMClient(cfg)
	}
	return enrich.New(completer, enrich.SettingsFromConfig(cfg), logger)
}
