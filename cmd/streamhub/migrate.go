package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/streamhub-backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and exit",
	Run: func(cmd *cobra.Command, args []string) {
		err := withApp(func(ctx context.Context, a *app.App) error {
			if a.Cfg.Database.AutoMigrate {
				return nil
			}
			return a.Migrate()
		})
		if err != nil {
			fatal("Migration failed", err)
		}
		fmt.Println("Schema up to date")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
