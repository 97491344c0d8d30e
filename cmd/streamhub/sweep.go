package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/streamhub-backend/internal/app"
)

var sweepBatch int

var sweepCmd = &cobra.Command{
	Use:   "sweep-orphans",
	Short: "Remove likes and comments left behind by deleted content",
	Long: `sweep-orphans scans every liked target in batches and deletes likes whose
video, comment or post no longer exists, plus comments on deleted videos.
The report is printed as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := withApp(func(ctx context.Context, a *app.App) error {
			rep, err := a.SweepOrphans(ctx, sweepBatch)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		})
		if err != nil {
			fatal("Sweep failed", err)
		}
	},
}

func init() {
	sweepCmd.Flags().IntVar(&sweepBatch, "batch", 0, "targets per scan batch (0 uses config)")
	rootCmd.AddCommand(sweepCmd)
}
