package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/kabar-api/kabar-api/internal/db"
	"github.com/kabar-api/kabar-api/internal/jobs"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/kabar-api/kabar-api/internal/regions"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env is what every subcommand needs once config is loaded.
type env struct {
	cfg    *config.Config
	db     *gorm.DB
	idx    *regions.Index
	runs   *pipeline.GormRunStore
	runner *pipeline.Runner
}

var (
	configPath string
	logLevel   string
	app        env
)

var rootCmd = &cobra.Command{
	Use:   "kabar-etl",
	Short: "Run the fire, air-quality and news pipelines",
	Long: `kabar-etl fetches VIIRS fire detections, SiPongi air-quality readings
and news articles, deduplicates them against recent rows, and appends the
rest to PostgreSQL.

Configuration comes from config.yaml (or --config), .env files, and
KABAR_* environment variables. DATABASE_URL and FIRMS_TOKEN are read as
well, as are the older CONNECTION_URI and TOKEN names.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			os.Setenv("CONFIG_PATH", configPath)
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Caller: cfg.Logging.Caller})
		app.cfg = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		db.Close(app.db)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(firesCmd, airQualityCmd, articlesCmd, historyCmd, scheduleCmd, runsCmd)
}

// connect opens the database, migrates, and loads the boundary file.
func connect() error {
	if err := app.cfg.RequireDatabase(); err != nil {
		return err
	}
	d, err := db.Connect(app.cfg.Database)
	if err != nil {
		return err
	}
	app.db = d
	if err := jobs.Migrate(d); err != nil {
		return err
	}
	idx, err := jobs.LoadRegions(app.cfg.Regions)
	if err != nil {
		return err
	}
	app.idx = idx
	app.runs = pipeline.NewGormRunStore(d)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("kabar-etl failed")
		os.Exit(1)
	}
}
