package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/streamhub-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		err := withApp(func(ctx context.Context, a *app.App) error {
			return a.Run(ctx)
		})
		if err != nil {
			fatal("Server stopped", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
