package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/citrus-hotelmate/ibe-v2-sub001/config/server"
)

func newServeCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the IBE HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					app.Logger.Error("close app", slog.Any("err", err))
				}
			}()

			httpServer := server.SetupServer(app.Config, app)
			return runServer(cmd.Context(), httpServer, app.Config.Server.ShutdownTimeout)
		},
	}
}
