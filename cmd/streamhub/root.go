package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/streamhub-backend/internal/app"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "streamhub",
	Short: "Video sharing backend",
	Long:  `streamhub serves the video, comment, post, like and subscription API and runs its maintenance tasks.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configFile != "" {
			_ = os.Setenv("APP_CONFIG_FILE", configFile)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (overrides APP_CONFIG_FILE)")
}

// withApp builds the app under a signal-aware context and always closes it.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
