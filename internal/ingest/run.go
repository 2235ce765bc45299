package ingest

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"reelscribe/internal/feed"
	"reelscribe/internal/logging"
	"reelscribe/internal/metrics"
	"reelscribe/internal/relocate"
	"reelscribe/internal/runlock"
	"reelscribe/internal/services"
	"reelscribe/internal/store"
	"reelscribe/internal/textutil"
)

const profilePictureFile = "profile_picture.jpg"

// runState is the per-run mutable state threaded through evaluations.
type runState struct {
	agent    store.Agent
	existing store.Set
	filtered store.Set
	next     int
	dir      string
	// postDirs maps shortcode to its staging directory.
	postDirs map[string]string
}

// Run ingests up to target new posts for handle. A returned error means the
// run could not start; per-post failures are reported in Report.
func (p *Pipeline) Run(ctx context.Context, handle string, target int) (Report, error) {
	handle = textutil.NormalizeHandle(handle)
	if handle == "" {
		return Report{}, services.Wrap(services.ErrValidation, "ingest", "run", "handle required", nil)
	}
	if target <= 0 {
		return Report{}, services.Wrap(services.ErrValidation, "ingest", "run", fmt.Sprintf("target must be positive, got %d", target), nil)
	}

	lock, err := runlock.Acquire(p.settings.LockDir, handle)
	if err != nil {
		return Report{}, err
	}
	defer func() { _ = lock.Release() }()

	started := p.deps.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	report := Report{RunID: runID, Handle: handle, Target: target}

	state, posts, err := p.setup(ctx, handle, runID, &report)
	if err != nil {
		return report, err
	}
	ctx = services.WithAgentID(ctx, state.agent.ID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("handle", handle),
		logging.Int("target", target),
		logging.Int("stored", len(state.existing)),
		logging.Int("filtered", len(state.filtered)),
		logging.Int("next_number", state.next),
	)

	run := metrics.NewRun()
	var saved []relocate.Item
	postCtx := context.WithoutCancel(ctx)
	for post, err := range posts {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}
		if err != nil {
			report.Errors++
			run.Observe(state.agent.ID, metrics.OutcomeError)
			logging.WarnWithContext(logger, "feed entry unreadable", "feed_entry_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "entry skipped for this run"),
				logging.String(logging.FieldErrorHint, "inspect the feed source for malformed posts"),
			)
			continue
		}

		report.Checked++
		outcome := p.evaluate(services.WithShortcode(postCtx, post.Shortcode), state, post)
		report.record(post.Shortcode, outcome)
		p.observe(run, state.agent.ID, outcome)
		if p.deps.OnResult != nil {
			p.deps.OnResult(PostResult{Shortcode: post.Shortcode, Outcome: outcome})
		}

		if s, ok := outcome.(Saved); ok {
			state.existing.Add(post.Shortcode)
			state.next = s.Number + 1
			saved = append(saved, relocate.Item{
				AgentID:    state.agent.ID,
				PostNumber: s.Number,
				StagingDir: state.postDirs[post.Shortcode],
			})
		}
		if report.TargetReached() {
			break
		}
		if processed(outcome) {
			p.deps.Sleep(ctx, p.delay())
		}
	}

	p.finish(postCtx, state, saved, &report)
	report.Duration = p.deps.Now().Sub(started)
	run.Finish(state.agent.ID, report.Duration, p.deps.Now())
	if err := run.WriteTextfile(p.settings.MetricsPath); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run metrics unavailable to the textfile collector"),
			logging.String(logging.FieldErrorHint, "check metrics.textfile_path permissions"),
		)
	}

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("checked", report.Checked),
		logging.Int("skipped_existing", report.SkippedExisting),
		logging.Int("skipped_filtered", report.SkippedFiltered),
		logging.Int("newly_filtered", report.NewlyFiltered),
		logging.Int("duplicates", report.Duplicates),
		logging.Int("errors", report.Errors),
		logging.Int("succeeded", report.Succeeded),
		logging.Bool("interrupted", report.Interrupted),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

func (p *Pipeline) setup(ctx context.Context, handle, runID string, report *Report) (*runState, iter.Seq2[feed.Post, error], error) {
	profile, posts, err := p.deps.Feed.Open(ctx, handle)
	if err != nil {
		return nil, nil, fmt.Errorf("open feed for %s: %w", handle, err)
	}

	bio := strings.TrimSpace(profile.Biography)
	if bio == "" && p.settings.DefaultBio != "" {
		bio = strings.ReplaceAll(p.settings.DefaultBio, "%s", handle)
	}
	agent, created, err := p.deps.Store.EnsureAgent(ctx, handle, store.AgentProfile{
		Name:       profile.FullName,
		Bio:        bio,
		Location:   p.settings.DefaultLocation,
		HasPicture: profile.ProfilePicURL != "",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("ensure agent %s: %w", handle, err)
	}
	report.AgentID = agent.ID
	report.AgentCreated = created

	existing, filtered, err := p.deps.Store.ListShortcodes(ctx, agent.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load shortcodes: %w", err)
	}
	next, err := p.deps.Store.NextPostNumber(ctx, agent.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("next post number: %w", err)
	}

	dir := filepath.Join(p.settings.StagingDir, agent.ID, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "ingest", "setup", "create run staging dir", err)
	}
	report.StagingDir = dir

	if profile.ProfilePicURL != "" {
		dest := filepath.Join(dir, profilePictureFile)
		if err := p.deps.Fetcher.Download(ctx, profile.ProfilePicURL, dest); err != nil {
			logging.WarnWithContext(p.logger, "profile picture download failed", "profile_picture_failed",
				logging.String(logging.FieldAgentID, agent.ID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "agent keeps its previous profile picture"),
				logging.String(logging.FieldErrorHint, "check the feed's profile picture URL"),
			)
		}
	}

	return &runState{
		agent:    agent,
		existing: existing,
		filtered: filtered,
		next:     next,
		dir:      dir,
		postDirs: map[string]string{},
	}, posts, nil
}

// finish relocates saved posts and removes the run staging directory when
// nothing remains to keep.
func (p *Pipeline) finish(ctx context.Context, state *runState, saved []relocate.Item, report *Report) {
	logger := logging.WithContext(ctx, p.logger)
	if p.deps.Relocator == nil {
		logger.Info("relocation disabled; staging kept", logging.String("staging_dir", state.dir))
		return
	}

	if _, err := p.deps.Relocator.RelocateProfilePicture(state.agent.ID, filepath.Join(state.dir, profilePictureFile)); err != nil {
		logging.WarnWithContext(logger, "profile picture relocation failed", "relocate_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "profile picture left in staging"),
		)
	}
	if len(saved) > 0 {
		report.Relocation = p.deps.Relocator.Relocate(ctx, saved)
		for _, e := range report.Relocation.Errors {
			logging.WarnWithContext(logger, "post relocation failed", "relocate_failed",
				logging.Int("post_number", e.PostNumber),
				logging.String("path", e.Path),
				logging.Error(e.Err),
				logging.String(logging.FieldImpact, "artifact left in staging"),
				logging.String(logging.FieldErrorHint, "check paths.library_dir permissions and free space"),
			)
		}
	}

	if p.settings.KeepStaging || len(report.Relocation.Errors) > 0 {
		return
	}
	if err := os.RemoveAll(state.dir); err != nil {
		logger.Debug("remove run staging dir failed", logging.Error(err))
		return
	}
	_ = removeIfEmpty(filepath.Dir(state.dir))
	report.StagingDir = ""
}

func (p *Pipeline) observe(run *metrics.Run, agentID string, o Outcome) {
	switch v := o.(type) {
	case Skipped:
		switch v.Reason {
		case SkipExists:
			run.Observe(agentID, metrics.OutcomeSkippedExisting)
		case SkipFiltered:
			run.Observe(agentID, metrics.OutcomeSkippedFiltered)
		case SkipDuplicate:
			run.Observe(agentID, metrics.OutcomeDuplicate)
		}
	case Filtered:
		run.Observe(agentID, metrics.OutcomeFiltered)
		run.ObserveFiltered(agentID, store.ReasonKind(v.Reason))
	case Saved:
		run.Observe(agentID, metrics.OutcomeSaved)
	case Failed:
		run.Observe(agentID, metrics.OutcomeError)
	}
}

func removeIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return err
	}
	return os.Remove(dir)
}
