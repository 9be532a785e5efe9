// Package supervisor runs the HTTP server and the pipeline schedules
// under a suture supervisor tree with graceful shutdown.
package supervisor

import (
	"context"
	"time"

	"github.com/kabar-api/kabar-api/internal/logging"
	"github.com/thejerf/suture/v4"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64
	// FailureDecay is the rate at which failures decay, in seconds.
	FailureDecay   float64
	FailureBackoff time.Duration
	// ShutdownTimeout bounds how long each service may take to stop.
	ShutdownTimeout time.Duration
}

func (c *TreeConfig) applyDefaults() {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = 30
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = 15 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Tree has two layers so a crashing schedule cannot take the API down.
type Tree struct {
	root      *suture.Supervisor
	api       *suture.Supervisor
	pipelines *suture.Supervisor
	config    TreeConfig
}

// EventHook logs supervisor events (restarts, backoff, stop timeouts).
func EventHook(e suture.Event) {
	logging.Warn().
		Str("component", "supervisor").
		Fields(e.Map()).
		Msg(e.String())
}

func NewTree(config TreeConfig) *Tree {
	config.applyDefaults()

	spec := suture.Spec{
		EventHook:        EventHook,
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	childSpec := spec
	childSpec.EventHook = nil

	root := suture.New("kabar-api", spec)
	api := suture.New("api-layer", childSpec)
	pipelines := suture.New("pipeline-layer", childSpec)
	root.Add(api)
	root.Add(pipelines)

	return &Tree{root: root, api: api, pipelines: pipelines, config: config}
}

func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

func (t *Tree) AddPipelineService(svc suture.Service) suture.ServiceToken {
	return t.pipelines.Add(svc)
}

// Serve blocks until ctx is cancelled and every service has stopped.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// WarnUnstopped logs services that outlived the shutdown timeout and
// returns how many there were. Call it after Serve returns.
func (t *Tree) WarnUnstopped() int {
	report, err := t.root.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("supervisor stop report unavailable")
		return 0
	}
	for _, svc := range report {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
	}
	return len(report)
}
