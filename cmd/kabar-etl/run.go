package main

import (
	"fmt"
	"time"

	"github.com/kabar-api/kabar-api/internal/jobs"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/spf13/cobra"
)

var firesCmd = &cobra.Command{
	Use:   "fires",
	Short: "Fetch yesterday's VIIRS detections and append new ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.cfg.RequireFIRMSToken(); err != nil {
			return err
		}
		if err := connect(); err != nil {
			return err
		}
		return runOnce(cmd, jobs.Fires(app.cfg, app.db, app.idx))
	},
}

var airQualityCmd = &cobra.Command{
	Use:   "air-quality",
	Short: "Fetch SiPongi AQMS readings and append new ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		return runOnce(cmd, jobs.AirQuality(app.cfg, app.db))
	},
}

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Search news for the configured keywords and append new articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		return runOnce(cmd, jobs.Articles(app.cfg, app.db))
	},
}

var historyGlob string

var historyCmd = &cobra.Command{
	Use:     "import-fire-history",
	Short:   "Bulk-load yearly VIIRS summary CSV archives",
	Example: `  kabar-etl import-fire-history --glob './data/viirs-yearly-summary/*.csv'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		return runOnce(cmd, jobs.FireHistory(historyGlob, app.db, app.idx))
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyGlob, "glob", "./data/viirs-yearly-summary/*.csv", "glob of archive CSV files")
}

func runOnce(cmd *cobra.Command, job pipeline.Job) error {
	runner := pipeline.NewRunner(app.runs, job)
	run, err := runner.Run(cmd.Context(), job)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: fetched=%d cleaned=%d skipped=%d appended=%d (%s)\n",
		run.Job, run.Fetched, run.Cleaned, run.Skipped, run.Appended, run.Duration().Round(time.Millisecond))
	return nil
}
