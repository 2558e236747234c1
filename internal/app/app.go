package app

import (
	"log/slog"

	"spotmerge.hitchmap.org/internal/appconf"
	"spotmerge.hitchmap.org/internal/clock"
	"spotmerge.hitchmap.org/internal/detection"
	"spotmerge.hitchmap.org/internal/executor"
	"spotmerge.hitchmap.org/internal/identity"
	"spotmerge.hitchmap.org/internal/metrics"
	"spotmerge.hitchmap.org/internal/spots"
	"spotmerge.hitchmap.org/internal/workflow"
)

// Application holds the shared dependencies of the API server.
type Application struct {
	Config     appconf.Config
	Logger     *slog.Logger
	Clock      clock.Clock
	SpotRepo   spots.Repository
	Detector   *detection.Detector
	Scanner    *detection.Scanner
	Workflow   *workflow.Workflow
	Executor   *executor.Executor
	Authorizer identity.Authorizer
	Metrics    *metrics.Metrics
}
