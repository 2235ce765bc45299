package main

import (
	"github.com/spf13/cobra"

	"reelscribe/internal/api"
	"reelscribe/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only JSON API and library media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if bind == "" {
				bind = cfg.API.Bind
			}
			srv, err := api.New(st, api.Options{
				Bind:       bind,
				Token:      cfg.API.Token,
				LibraryDir: cfg.Paths.LibraryDir,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			logger.Info("api server starting",
				logging.String("bind", bind),
				logging.Bool("auth", cfg.API.Token != ""),
				logging.String(logging.FieldEventType, "api_start"),
			)
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default api.bind)")
	return cmd
}
