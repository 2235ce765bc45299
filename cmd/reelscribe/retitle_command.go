package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelscribe/internal/logging"
	"reelscribe/internal/store"
)

func newRetitleCommand(ctx *commandContext) *cobra.Command {
	var agentID string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "retitle",
		Short: "Regenerate empty or generic post titles",
		Long: `Select posts whose title is empty or matches enrichment.generic_title_patterns
and ask the model for a new title. Only valid titles replace the stored one;
post identity and numbering are never changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			enricher := newEnricher(cfg, logger, true)
			if !enricher.ModelEnabled() {
				return fmt.Errorf("retitle needs a completion backend: set llm.api_key (or OPENROUTER_API_KEY) and enrichment.enabled")
			}

			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			posts, err := st.PostsWithGenericTitles(cmd.Context(), cfg.Enrichment.GenericTitlePatterns, agentID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(posts) == 0 {
				fmt.Fprintln(out, "No posts with generic titles")
				return nil
			}

			names := make(map[string]string)
			var updated, failed int
			for _, post := range posts {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				name, ok := names[post.AgentID]
				if !ok {
					name = agentName(cmd, st, post.AgentID)
					names[post.AgentID] = name
				}
				title, ok := enricher.GenerateTitle(cmd.Context(), post.Content, post.Caption, name)
				if !ok {
					failed++
					fmt.Fprintf(out, "  %s #%d: no valid title\n", post.AgentID, post.Number)
					continue
				}
				if dryRun {
					updated++
					fmt.Fprintf(out, "  %s #%d: %q -> %q (dry run)\n", post.AgentID, post.Number, post.Title, title)
					continue
				}
				if err := st.UpdateTitle(cmd.Context(), post.ID, title); err != nil {
					failed++
					logging.WarnWithContext(logger, "title update failed", "retitle_failed",
						logging.String("post_id", post.ID),
						logging.Error(err),
						logging.String(logging.FieldImpact, "post keeps its generic title"),
					)
					continue
				}
				updated++
				fmt.Fprintf(out, "  %s #%d: %q -> %q\n", post.AgentID, post.Number, post.Title, title)
			}
			fmt.Fprintf(out, "Retitled %d of %d posts, %d failed\n", updated, len(posts), failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "Limit to one agent id")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show new titles without writing them")
	return cmd
}

func agentName(cmd *cobra.Command, st *store.Store, agentID string) string {
	agent, ok, err := st.GetAgent(cmd.Context(), agentID)
	if err != nil || !ok {
		return ""
	}
	if agent.Name != "" {
		return agent.Name
	}
	return agent.Handle
}
