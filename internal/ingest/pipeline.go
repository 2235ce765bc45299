package ingest

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"reelscribe/internal/config"
	"reelscribe/internal/enrich"
	"reelscribe/internal/feed"
	"reelscribe/internal/logging"
	"reelscribe/internal/media"
	"reelscribe/internal/relocate"
	"reelscribe/internal/staging"
	"reelscribe/internal/store"
)

// Store is the persistence surface a run needs.
type Store interface {
	EnsureAgent(ctx context.Context, handle string, profile store.AgentProfile) (store.Agent, bool, error)
	ListShortcodes(ctx context.Context, agentID string) (store.Set, store.Set, error)
	NextPostNumber(ctx context.Context, agentID string) (int, error)
	RecordFiltered(ctx context.Context, agentID, shortcode, reason string) (bool, error)
	SavePost(ctx context.Context, agentID, shortcode string, fields store.PostFields) store.SaveResult
}

// Fetcher downloads post media into staging.
type Fetcher interface {
	Fetch(ctx context.Context, post feed.Post, dir staging.PostDir) (media.Result, error)
	Download(ctx context.Context, ref, dest string) error
}

// Transcriber turns a video into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, videoPath, language string) (string, error)
}

// Enricher cleans and titles transcripts.
type Enricher interface {
	Enrich(ctx context.Context, in enrich.Input) enrich.Result
}

// Relocator moves saved posts into the library.
type Relocator interface {
	Relocate(ctx context.Context, items []relocate.Item) relocate.Report
	RelocateProfilePicture(agentID, src string) (string, error)
}

// Deps are the collaborators of a Pipeline. Relocator may be nil to leave
// saved posts in staging.
type Deps struct {
	Store       Store
	Feed        feed.Source
	Fetcher     Fetcher
	Transcriber Transcriber
	Enricher    Enricher
	Relocator   Relocator
	Logger      *slog.Logger

	// OnResult, when set, is called after each evaluated post.
	OnResult func(PostResult)
	// Sleep waits between processed posts; it must return early when ctx ends.
	Sleep func(ctx context.Context, d time.Duration)
	// Rand returns a value in [0, 1) used to pick the delay.
	Rand func() float64
	Now  func() time.Time
}

// Settings are the tunables of a run.
type Settings struct {
	StagingDir      string
	LockDir         string
	Language        string
	MinScriptChars  int
	ScriptName      string
	ScriptAlphabet  string
	DelayMin        time.Duration
	DelayMax        time.Duration
	KeepStaging     bool
	DefaultBio      string
	DefaultLocation string
	PostURLTemplate string
	MetricsPath     string
}

// SettingsFromConfig maps configuration onto Settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	minDelay, maxDelay := cfg.DelayRange()
	return Settings{
		StagingDir:      cfg.Paths.StagingDir,
		LockDir:         cfg.LockDir(),
		Language:        cfg.Transcription.Language,
		MinScriptChars:  cfg.Ingest.MinScriptChars,
		ScriptName:      cfg.Ingest.ScriptName,
		ScriptAlphabet:  cfg.Ingest.ScriptAlphabet,
		DelayMin:        minDelay,
		DelayMax:        maxDelay,
		KeepStaging:     cfg.Ingest.KeepStaging,
		DefaultBio:      cfg.Agents.DefaultBio,
		DefaultLocation: cfg.Agents.DefaultLocation,
		PostURLTemplate: cfg.Feed.PostURLTemplate,
		MetricsPath:     cfg.Metrics.TextfilePath,
	}
}

// Pipeline evaluates a profile's posts. It is safe to reuse across runs but
// not to run concurrently for the same handle.
type Pipeline struct {
	deps     Deps
	settings Settings
	logger   *slog.Logger
}

// New validates deps and returns a Pipeline.
func New(deps Deps, settings Settings) (*Pipeline, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("ingest: store is required")
	case deps.Feed == nil:
		return nil, errors.New("ingest: feed source is required")
	case deps.Fetcher == nil:
		return nil, errors.New("ingest: media fetcher is required")
	case deps.Transcriber == nil:
		return nil, errors.New("ingest: transcriber is required")
	case deps.Enricher == nil:
		return nil, errors.New("ingest: enricher is required")
	}
	if settings.StagingDir == "" || settings.LockDir == "" {
		return nil, errors.New("ingest: staging and lock directories are required")
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	if deps.Rand == nil {
		deps.Rand = rand.Float64
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if settings.DelayMax < settings.DelayMin {
		settings.DelayMax = settings.DelayMin
	}
	if settings.PostURLTemplate == "" {
		settings.PostURLTemplate = "https://instagram.com/p/%s"
	}
	return &Pipeline{
		deps:     deps,
		settings: settings,
		logger:   logging.NewComponentLogger(deps.Logger, "ingest"),
	}, nil
}

func (p *Pipeline) delay() time.Duration {
	span := p.settings.DelayMax - p.settings.DelayMin
	if span <= 0 {
		return p.settings.DelayMin
	}
	return p.settings.DelayMin + time.Duration(p.deps.Rand()*float64(span))
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
