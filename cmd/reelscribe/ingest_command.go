package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelscribe/internal/feed"
	"reelscribe/internal/ingest"
	"reelscribe/internal/logging"
	"reelscribe/internal/media"
	"reelscribe/internal/relocate"
	"reelscribe/internal/staging"
	"reelscribe/internal/transcription"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var maxPosts int
	var noEnrich bool
	var noRelocate bool

	cmd := &cobra.Command{
		Use:   "ingest <handle>",
		Short: "Fetch, transcribe, and store new posts for a profile",
		Long: `Walk a profile's posts newest first and store up to --max new posts.

Posts already stored or previously filtered are skipped without any network
work. Posts without video or with too little transcript text are recorded as
filtered so later runs skip them. Errors leave the post eligible for the next
run. Saved posts are copied into the library unless --no-relocate is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			target := maxPosts
			if target <= 0 {
				target = cfg.Ingest.TargetCount
			}

			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			staging.CleanStaleRuns(cmd.Context(), cfg.Paths.StagingDir, time.Duration(cfg.Ingest.StagingMaxAge)*time.Hour, logger)

			source, err := feed.NewSource(cfg.Feed, nil)
			if err != nil {
				return err
			}
			transcriber, err := transcription.New(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			deps := ingest.Deps{
				Store:       st,
				Feed:        source,
				Fetcher:     media.NewFetcher(cfg.Media, logger),
				Transcriber: transcriber,
				Enricher:    newEnricher(cfg, logger, !noEnrich),
				Logger:      logger,
				OnResult: func(r ingest.PostResult) {
					fmt.Fprintln(out, renderStatusLine(r.Shortcode, outcomeKind(r.Outcome), r.Outcome.String(), colorize))
				},
			}
			if !noRelocate && cfg.Relocate.Enabled {
				deps.Relocator = relocate.New(cfg.Paths.LibraryDir, cfg.Relocate.Workers, cfg.Ingest.KeepStaging, logger)
			}

			pipeline, err := ingest.New(deps, ingest.SettingsFromConfig(cfg))
			if err != nil {
				return err
			}

			logger.Info("ingest starting",
				logging.String("handle", args[0]),
				logging.Int("target", target),
				logging.String("transcriber", transcriber.Name()),
				logging.Bool("relocate", deps.Relocator != nil),
				logging.String(logging.FieldEventType, "ingest_start"),
			)
			report, err := pipeline.Run(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			printIngestReport(out, report)
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxPosts, "max", "n", 0, "Number of new posts to store (default ingest.target_count)")
	cmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "Skip model cleaning and titling; use deterministic fallbacks")
	cmd.Flags().BoolVar(&noRelocate, "no-relocate", false, "Leave saved posts in staging instead of copying them to the library")
	return cmd
}

func outcomeKind(o ingest.Outcome) statusKind {
	switch o.(type) {
	case ingest.Saved:
		return statusOK
	case ingest.Filtered:
		return statusWarn
	case ingest.Failed:
		return statusError
	default:
		return statusInfo
	}
}

func printIngestReport(out io.Writer, report ingest.Report) {
	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Run "+report.RunID, false) {
		fmt.Fprintln(out, line)
	}
	agent := report.AgentID
	if report.AgentCreated {
		agent += " (new)"
	}
	rows := [][]string{
		{"Handle", report.Handle},
		{"Agent", agent},
		{"Checked", strconv.Itoa(report.Checked)},
		{"Saved", fmt.Sprintf("%d / %d", report.Succeeded, report.Target)},
		{"Skipped (stored)", strconv.Itoa(report.SkippedExisting)},
		{"Skipped (filtered)", strconv.Itoa(report.SkippedFiltered)},
		{"Newly filtered", strconv.Itoa(report.NewlyFiltered)},
		{"Duplicates", strconv.Itoa(report.Duplicates)},
		{"Errors", strconv.Itoa(report.Errors)},
		{"Relocated files", strconv.Itoa(report.Relocation.Files)},
		{"Duration", report.Duration.Round(time.Millisecond).String()},
	}
	fmt.Fprint(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	switch {
	case report.Interrupted:
		fmt.Fprintln(out, "Run interrupted; remaining posts will be picked up next run")
	case report.TargetReached():
		fmt.Fprintln(out, "Target reached")
	default:
		fmt.Fprintln(out, "Feed exhausted before reaching the target")
	}
	for _, e := range report.Relocation.Errors {
		fmt.Fprintf(out, "  Relocation error: %v\n", e)
	}
	if report.StagingDir != "" {
		size := int64(0)
		if dirs, err := staging.ListDirectories(report.StagingDir); err == nil {
			for _, d := range dirs {
				size += d.Size
			}
		}
		fmt.Fprintf(out, "Staging kept at %s (%s)\n", report.StagingDir, humanize.Bytes(uint64(size)))
	}
}
