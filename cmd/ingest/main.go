// Command ingest runs one news ingestion outside the API server, for cron
// jobs and backfills.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/app"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		date     string
		logLevel string
	)
	root := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch, summarise and store one day of market news",
		Long: `ingest pulls the day's NEWS_SENTIMENT feed, asks the configured LLM for a
digest and stores the articles and summary, exactly like POST /api/articles.

Example usage:
  ingest                   # today (UTC)
  ingest --date 20250923   # backfill a day
  ingest runs              # show recent runs`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var day *models.Day
			if date != "" {
				d, err := models.ParseDay(date)
				if err != nil {
					return fmt.Errorf("--date %q: use YYYYMMDD or YYYY-MM-DD", date)
				}
				day = &d
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if day == nil {
					today := a.Ingest.Today()
					day = &today
				}
				res, err := a.Ingest.Run(ctx, *day, "cli")
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	root.Flags().StringVar(&date, "date", "", "day to ingest (YYYYMMDD or YYYY-MM-DD); default today")
	root.PersistentFlags().StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "debug|info|warn|error")

	var limit int
	runs := &cobra.Command{
		Use:   "runs",
		Short: "List recent ingestion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				list, err := a.Ingest.Recent(ctx, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, list)
			})
		},
	}
	runs.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	root.AddCommand(runs)
	return root
}

func withApp(parent context.Context, fn func(context.Context, *app.App) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return fn(ctx, a)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
