package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kabar-api/kabar-api/internal/admin"
	"github.com/kabar-api/kabar-api/internal/airquality"
	"github.com/kabar-api/kabar-api/internal/articles"
	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/kabar-api/kabar-api/internal/dashboard"
	"github.com/kabar-api/kabar-api/internal/db"
	"github.com/kabar-api/kabar-api/internal/jobs"
	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/kabar-api/kabar-api/internal/metrics"
	"github.com/kabar-api/kabar-api/internal/middleware"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/kabar-api/kabar-api/internal/supervisor"
	"gorm.io/gorm"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Caller: cfg.Logging.Caller})

	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	d, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(d)

	if err := jobs.Migrate(d); err != nil {
		return err
	}

	idx, err := jobs.LoadRegions(cfg.Regions)
	if err != nil {
		return err
	}
	runs := pipeline.NewGormRunStore(d)
	list := jobs.Build(cfg, d, idx)
	runner := pipeline.NewRunner(runs, list...)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newRouter(cfg, d, runner, runs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	if cfg.Scheduler.Enabled {
		for _, s := range jobs.Schedules(cfg.Scheduler, runner, list) {
			tree.AddPipelineService(s)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	tree.WarnUnstopped()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func newRouter(cfg *config.Config, d *gorm.DB, runner *pipeline.Runner, runs pipeline.RunStore) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	r.Use(middleware.RateLimit(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow))

	r.Get("/", RootHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Mount("/articles", articles.SetupRoutes(articles.NewGormStore(d)))
	r.Mount("/dashboard", dashboard.SetupRoutes(&dashboard.Handler{
		Store:    dashboard.NewGormStore(d),
		Location: airquality.Location(cfg.AirQuality.Timezone),
	}))
	r.Mount("/admin", admin.SetupRoutes(&admin.Handler{Runner: runner, Runs: runs}, cfg.Admin.TokenHash))

	return r
}
