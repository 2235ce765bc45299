package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelscribe/internal/staging"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var perAgent bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stored agents, posts, and filter counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}
			runs, err := staging.ListRuns(cfg.Paths.StagingDir)
			if err != nil {
				return fmt.Errorf("list staging runs: %w", err)
			}
			var stagingBytes int64
			for _, run := range runs {
				stagingBytes += run.Size
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"stats":               stats,
					"staging_runs":        len(runs),
					"staging_total_bytes": stagingBytes,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Store: %s\n\n", st.Driver())
			rows := [][]string{
				{"Agents", strconv.Itoa(stats.Agents)},
				{"Posts", strconv.Itoa(stats.Posts)},
				{"Filtered", strconv.Itoa(stats.Filtered)},
				{"Staging runs", fmt.Sprintf("%d (%s)", len(runs), humanize.Bytes(uint64(stagingBytes)))},
			}
			fmt.Fprint(out, renderTable([]string{"Metric", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

			if len(stats.FilterReasons) > 0 {
				reasons := make([]string, 0, len(stats.FilterReasons))
				for reason := range stats.FilterReasons {
					reasons = append(reasons, reason)
				}
				sort.Strings(reasons)
				reasonRows := make([][]string, 0, len(reasons))
				for _, reason := range reasons {
					reasonRows = append(reasonRows, []string{reason, strconv.Itoa(stats.FilterReasons[reason])})
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, renderTable([]string{"Filter reason", "Count"}, reasonRows, []columnAlignment{alignLeft, alignRight}))
			}

			if perAgent && len(stats.PerAgent) > 0 {
				agentRows := make([][]string, 0, len(stats.PerAgent))
				for _, a := range stats.PerAgent {
					agentRows = append(agentRows, []string{a.AgentID, a.Handle, a.Name, strconv.Itoa(a.Posts), strconv.Itoa(a.Filtered)})
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, renderTable(
					[]string{"Agent", "Handle", "Name", "Posts", "Filtered"},
					agentRows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
			}

			if len(runs) > 0 {
				oldest := runs[0].ModTime
				for _, run := range runs[1:] {
					if run.ModTime.Before(oldest) {
						oldest = run.ModTime
					}
				}
				fmt.Fprintf(out, "\nOldest staging run: %s\n", humanize.RelTime(oldest, time.Now(), "ago", "from now"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&perAgent, "agents", false, "Include one row per agent")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
