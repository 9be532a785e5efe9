package main

import (
	"errors"

	"github.com/kabar-api/kabar-api/internal/jobs"
	"github.com/kabar-api/kabar-api/internal/pipeline"
	"github.com/kabar-api/kabar-api/internal/supervisor"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run every pipeline on its interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connect(); err != nil {
			return err
		}
		list := jobs.Build(app.cfg, app.db, app.idx)
		if len(list) == 0 {
			return errors.New("no pipelines configured")
		}
		runner := pipeline.NewRunner(app.runs, list...)

		tree := supervisor.NewTree(supervisor.TreeConfig{})
		for _, s := range jobs.Schedules(app.cfg.Scheduler, runner, list) {
			tree.AddPipelineService(s)
		}

		err := tree.Serve(cmd.Context())
		tree.WarnUnstopped()
		if cmd.Context().Err() != nil {
			return nil
		}
		return err
	},
}
