package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reelscribe/internal/preflight"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the store, directories, feed, and external services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var results []preflight.Result
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				results = preflight.RunAll(cmd.Context(), cfg, nil)
				results = append(results, preflight.Result{Name: "Store (" + cfg.Store.Driver + ")", Detail: err.Error()})
			} else {
				defer st.Close()
				results = preflight.RunAll(cmd.Context(), cfg, st)
			}

			if jsonOut {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Health", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}
			if !preflight.AllPassed(results) {
				return errors.New("one or more health checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
