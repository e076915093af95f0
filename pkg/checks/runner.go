// pkg/checks/runner.go

package checks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
)

// Spec declares one validation check. Checks are mutually independent:
// order in the spec list is significant only for presentation.
type Spec struct {
	Name     string
	Category string
	Run      func(rc *pfio.RuntimeContext, p platform.Platform) Result
}

// Runner executes checks on a bounded worker pool. Checks are I/O-bound
// (stat calls, subprocess queries, HTTP probes, log reads) and mutate no
// shared state, so they run concurrently without locking.
type Runner struct {
	// Workers bounds the pool; values below 1 fall back to the default.
	Workers int
	// Timeout bounds each individual check.
	Timeout time.Duration
}

const (
	defaultWorkers      = 4
	defaultCheckTimeout = 10 * time.Second
)

// Run executes every spec and collects all results before producing the
// report. There is no short-circuit on first failure: every check must
// report, since partial reports hide unrelated problems. A panic or
// internal failure inside one check downgrades that check to ERROR and
// never aborts its siblings.
func (r *Runner) Run(rc *pfio.RuntimeContext, p platform.Platform, specs []Spec) Report {
	logger := otelzap.Ctx(rc.Ctx)

	workers := r.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}

	logger.Info("Running validation checklist",
		zap.Int("checks", len(specs)),
		zap.Int("workers", workers))

	results := make([]Result, len(specs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec Spec) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = r.runOne(rc, p, spec, timeout)
		}(i, spec)
	}
	wg.Wait()

	report := Report{Results: results}
	success, info, warning, errors := report.Counts()
	logger.Info("Validation checklist complete",
		zap.String("overall", report.Overall().String()),
		zap.Int("success", success),
		zap.Int("info", info),
		zap.Int("warning", warning),
		zap.Int("error", errors))

	return report
}

func (r *Runner) runOne(rc *pfio.RuntimeContext, p platform.Platform, spec Spec, timeout time.Duration) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			rc.Log.Error("Check panicked",
				zap.String("check", spec.Name),
				zap.Any("panic", rec))
			res = Result{
				Name:     spec.Name,
				Category: spec.Category,
				Status:   Error,
				Message:  fmt.Sprintf("check failed internally: %v", rec),
				Hint:     "re-run with POSTFLIGHT_LOG_LEVEL=DEBUG and report this as a bug",
			}
		}
	}()

	ctx, cancel := context.WithTimeout(rc.Ctx, timeout)
	defer cancel()

	scoped := *rc
	scoped.Ctx = ctx
	scoped.Log = rc.Log.With(zap.String("check", spec.Name))

	scoped.Log.Debug("Running check")
	res = spec.Run(&scoped, p)
	scoped.Log.Debug("Check finished", zap.String("status", res.Status.String()))
	return res
}
