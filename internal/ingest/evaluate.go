package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reelscribe/internal/enrich"
	"reelscribe/internal/feed"
	"reelscribe/internal/logging"
	"reelscribe/internal/media"
	"reelscribe/internal/services"
	"reelscribe/internal/staging"
	"reelscribe/internal/store"
	"reelscribe/internal/textutil"
	"reelscribe/internal/transcription"
)

// Filter reasons recorded in the ledger.
const (
	ReasonNoVideo             = "no_video"
	ReasonTranscriptionFailed = "transcription_failed"
)

// evaluate runs one post through the state machine.
func (p *Pipeline) evaluate(ctx context.Context, state *runState, post feed.Post) Outcome {
	logger := logging.WithContext(ctx, p.logger)
	code := post.Shortcode

	if state.existing.Has(code) {
		return p.skip(logger, SkipExists)
	}
	if state.filtered.Has(code) {
		return p.skip(logger, SkipFiltered)
	}

	dir, err := staging.NewPostDir(state.dir, state.next, code, p.deps.Now())
	if err != nil {
		return p.fail(logger, "stage", err)
	}
	outcome := p.process(ctx, state, post, dir)
	if _, ok := outcome.(Saved); ok {
		state.postDirs[code] = dir.Path
	} else if !p.settings.KeepStaging {
		_ = dir.Remove()
	}
	return outcome
}

func (p *Pipeline) process(ctx context.Context, state *runState, post feed.Post, dir staging.PostDir) Outcome {
	logger := logging.WithContext(ctx, p.logger)

	fetched, err := p.deps.Fetcher.Fetch(ctx, post, dir)
	if errors.Is(err, media.ErrNoVideo) {
		return p.filter(ctx, state, post.Shortcode, ReasonNoVideo)
	}
	if err != nil {
		return p.fail(logger, "fetch", err)
	}

	text, err := p.deps.Transcriber.Transcribe(ctx, fetched.VideoPath, p.settings.Language)
	if err != nil {
		if transcription.IsRetryable(err) {
			return p.fail(logger, "transcribe", err)
		}
		logger.Debug("transcription unusable", logging.String("provider", p.deps.Transcriber.Name()), logging.Error(err))
		return p.filter(ctx, state, post.Shortcode, ReasonTranscriptionFailed)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return p.filter(ctx, state, post.Shortcode, ReasonTranscriptionFailed)
	}

	if reason, ok := p.qualityGate(text); !ok {
		return p.filter(ctx, state, post.Shortcode, reason)
	}

	enriched := p.deps.Enricher.Enrich(ctx, enrich.Input{
		Transcript: text,
		Caption:    post.Caption,
		Mentions:   post.Mentions,
		Hashtags:   post.Hashtags,
		AgentName:  state.agent.Name,
		PostNumber: state.next,
	})
	p.writeArtifacts(logger, dir, enriched)

	result := p.deps.Store.SavePost(ctx, state.agent.ID, post.Shortcode, store.PostFields{
		Title:                enriched.Title,
		Content:              enriched.Cleaned,
		Caption:              enriched.Caption,
		RawCaption:           post.Caption,
		Transcription:        text,
		CleanedTranscription: enriched.Cleaned,
		SourceURL:            fmt.Sprintf(p.settings.PostURLTemplate, post.Shortcode),
		CapturedAt:           post.TakenAt,
		HasThumbnail:         fetched.HasThumbnail(),
	})
	switch result.Outcome {
	case store.Saved:
		logger.Info("post saved",
			logging.Args(logging.DecisionAttrs("persist", "saved", "new shortcode")...)...,
		)
		logger.Debug("post details",
			logging.String("post_id", result.PostID),
			logging.Int("post_number", result.PostNumber),
			logging.Bool("title_generated", enriched.TitleGenerated),
		)
		return Saved{PostID: result.PostID, Number: result.PostNumber}
	case store.Duplicate:
		state.existing.Add(post.Shortcode)
		return p.skip(logger, SkipDuplicate)
	default:
		return p.fail(logger, "persist", result.Err)
	}
}

// qualityGate checks the transcript has enough characters of the configured
// script.
func (p *Pipeline) qualityGate(text string) (string, bool) {
	n := textutil.CountScriptRunes(text, p.settings.ScriptAlphabet)
	if n >= p.settings.MinScriptChars {
		return "", true
	}
	if name := strings.TrimSpace(p.settings.ScriptName); name != "" {
		return fmt.Sprintf("insufficient_%s_chars_%d", name, n), false
	}
	return fmt.Sprintf("insufficient_chars_%d", n), false
}

func (p *Pipeline) writeArtifacts(logger *slog.Logger, dir staging.PostDir, r enrich.Result) {
	artifacts := []struct{ name, body string }{
		{staging.TranscriptOriginal, r.Original},
		{staging.TranscriptCleaned, r.Cleaned},
		{staging.Transcript, r.Cleaned},
		{staging.Caption, r.Caption},
	}
	for _, a := range artifacts {
		if err := dir.WriteText(a.name, a.body); err != nil {
			logging.WarnWithContext(logger, "staging artifact not written", "artifact_write_failed",
				logging.String("artifact", a.name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "artifact missing from the library copy"),
			)
		}
	}
}

func (p *Pipeline) filter(ctx context.Context, state *runState, shortcode, reason string) Outcome {
	logger := logging.WithContext(ctx, p.logger)
	recorded, err := p.deps.Store.RecordFiltered(ctx, state.agent.ID, shortcode, reason)
	if errors.Is(err, store.ErrAlreadyStored) {
		state.existing.Add(shortcode)
		return p.skip(logger, SkipDuplicate)
	}
	if err != nil {
		return p.fail(logger, "filter", err)
	}
	state.filtered.Add(shortcode)
	logger.Info("post filtered", logging.Args(logging.DecisionAttrs("quality", "filtered", reason)...)...)
	return Filtered{Reason: reason, Recorded: recorded}
}

func (p *Pipeline) skip(logger *slog.Logger, reason SkipReason) Outcome {
	logger.Debug("post skipped", logging.Args(logging.DecisionAttrs("dedupe", "skipped", string(reason))...)...)
	return Skipped{Reason: reason}
}

func (p *Pipeline) fail(logger *slog.Logger, stage string, err error) Outcome {
	if err == nil {
		err = errors.New("unknown failure")
	}
	logging.WarnWithContext(logger, "post failed", "post_failed",
		logging.String(logging.FieldStage, stage),
		logging.String("error_category", services.Category(err)),
		logging.Error(err),
		logging.String(logging.FieldImpact, "post left unrecorded and retried next run"),
	)
	return Failed{Stage: stage, Err: err}
}
