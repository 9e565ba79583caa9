// Package main provides the ztechbot CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ztechbot/internal/app"
	"ztechbot/internal/config"
	"ztechbot/internal/logging"
	"ztechbot/internal/usecase"
)

var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the ztechbot CLI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ztechbot",
		Short:   "Aggregate tech content and publish it as social posts",
		Long:    "ztechbot pulls tech content from RSS, Reddit and NewsAPI, composes Spanish-language posts, and publishes them on a daily schedule.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; real deployments set the environment directly
			_ = godotenv.Load()
		},
	}

	rootCmd.SetVersionTemplate("ztechbot version {{.Version}}\n")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCleanupCmd())

	return rootCmd
}

func buildApp() (*app.Application, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger)
}

// newRunCmd creates the run subcommand: one publish cycle, then exit.
func newRunCmd() *cobra.Command {
	var curated bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one publish cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			var outcome usecase.Outcome
			if curated {
				outcome, err = application.RunCurated(ctx)
			} else {
				outcome, err = application.RunOnce(ctx)
			}
			if err != nil {
				return fmt.Errorf("publish cycle: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cycle finished: %s\n", outcome)
			return nil
		},
	}

	cmd.Flags().BoolVar(&curated, "curated", false, "Publish the multi-article digest instead of a single post")

	return cmd
}

// newServeCmd creates the serve subcommand: run the posting schedule until
// interrupted.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the posting schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return application.Serve(ctx)
		},
	}
}

// newStatsCmd creates the stats subcommand.
func newStatsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show daily posting statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			stats, err := application.Stats(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("load stats: %w", err)
			}
			if len(stats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no activity recorded")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %8s %10s %7s\n", "DATE", "POSTS", "PROCESSED", "ERRORS")
			for _, stat := range stats {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %8d %10d %7d\n",
					stat.Date, stat.PostsPublished, stat.ContentProcessed, stat.Errors)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Trailing window in days")

	return cmd
}

// newCleanupCmd creates the cleanup subcommand.
func newCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Drop dedup markers and stats past the retention window",
		Long:  "Removes processed-content markers and daily statistics older than the retention window. Published posts are kept forever.",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			marks, stats, err := application.Cleanup(cmd.Context(), days)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d markers and %d stat rows\n", marks, stats)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Retention window in days")

	return cmd
}
