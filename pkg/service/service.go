// pkg/service/service.go

// Package service controls the lifecycle of the managed systemd unit.
// State is always re-queried live before acting; nothing is cached beyond
// a single call.
package service

import (
	"fmt"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/execute"
	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
)

// State of the managed service.
type State int

const (
	Unknown State = iota
	Enabled
	Disabled
	Active
	Inactive
	Failed
)

func (s State) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// systemctl exit codes, per systemctl(1). is-active and is-enabled encode
// state in their exit codes rather than failing.
const (
	exitSuccess   = 0
	exitFail      = 1
	exitInactive  = 3
	exitUnknown   = 4
	exitNotLoaded = 5
)

// restartSettle is the fixed wait before the single post-restart state
// poll. No retry loop: a failed restart is reported, not retried.
const restartSettle = 2 * time.Second

// Controller manages one named service on one resolved platform.
type Controller struct {
	Platform platform.Platform
	Unit     string
}

func NewController(p platform.Platform, unit string) *Controller {
	return &Controller{Platform: p, Unit: unit}
}

// QueryState returns the live activity state via systemctl is-active.
func (c *Controller) QueryState(rc *pfio.RuntimeContext) State {
	if !c.Platform.IsPOSIX() {
		return Unknown
	}

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"is-active", c.Unit},
		Capture: true,
		Logger:  rc.Log,
	})
	return interpretIsActive(strings.TrimSpace(out), execute.ExitCode(err))
}

// QueryEnabled returns whether the unit is enabled at boot.
func (c *Controller) QueryEnabled(rc *pfio.RuntimeContext) State {
	if !c.Platform.IsPOSIX() {
		return Unknown
	}

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"is-enabled", c.Unit},
		Capture: true,
		Logger:  rc.Log,
	})
	return interpretIsEnabled(strings.TrimSpace(out), execute.ExitCode(err))
}

// Restart issues a restart and reports the resulting state. On platforms
// without a managed service daemon the restart is a manual, user-triggered
// action and the controller reports Unknown.
//
// A failed restart yields Failed plus a diagnostic error; the caller
// decides whether to treat it as fatal.
func (c *Controller) Restart(rc *pfio.RuntimeContext) (State, error) {
	logger := otelzap.Ctx(rc.Ctx)

	if !c.Platform.IsPOSIX() {
		logger.Info("No managed service daemon on this platform; restart the application manually",
			zap.String("unit", c.Unit))
		return Unknown, nil
	}

	logger.Info("Restarting service", zap.String("unit", c.Unit))

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"restart", c.Unit},
		Capture: true,
		Logger:  rc.Log,
	})
	if err != nil {
		diag := c.captureDiagnostics(rc)
		logger.Error("Service restart failed",
			zap.String("unit", c.Unit),
			zap.String("output", out),
			zap.String("status", diag.Status),
			zap.Error(err))
		return Failed, cerr.WithHint(
			cerr.Wrapf(err, "restart of %s failed: %s", c.Unit, execute.Summarize(out, 2)),
			fmt.Sprintf("run 'systemctl status %s' and 'journalctl -u %s -n 50' for details", c.Unit, c.Unit))
	}

	// Single bounded poll after a fixed settle delay.
	time.Sleep(restartSettle)
	state := c.QueryState(rc)

	if state != Active {
		diag := c.captureDiagnostics(rc)
		logger.Warn("Service did not reach active state after restart",
			zap.String("unit", c.Unit),
			zap.String("state", state.String()),
			zap.String("status", diag.Status),
			zap.String("journal", diag.Journal))
	} else {
		logger.Info("Service restarted", zap.String("unit", c.Unit))
	}
	return state, nil
}

// Diagnostics holds the status and recent journal output captured after a
// restart problem.
type Diagnostics struct {
	Status  string
	Journal string
}

func (c *Controller) captureDiagnostics(rc *pfio.RuntimeContext) Diagnostics {
	var diag Diagnostics

	// status exits non-zero for failed units; the output is still wanted.
	diag.Status, _ = execute.Run(rc.Ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"status", c.Unit, "-l", "--no-pager"},
		Capture: true,
		Logger:  rc.Log,
	})

	journal, err := execute.Run(rc.Ctx, execute.Options{
		Command: "journalctl",
		Args:    []string{"-u", c.Unit, "-n", "50", "--no-pager"},
		Capture: true,
		Logger:  rc.Log,
	})
	if err != nil {
		diag.Journal = fmt.Sprintf("(journalctl failed: %v)", err)
	} else {
		diag.Journal = journal
	}
	return diag
}

// interpretIsActive maps systemctl is-active output and exit code to a
// State. Output is authoritative when present; the exit code resolves
// ambiguity.
func interpretIsActive(output string, exitCode int) State {
	switch output {
	case "active":
		return Active
	case "inactive", "dead":
		return Inactive
	case "failed":
		return Failed
	}
	switch exitCode {
	case exitSuccess:
		return Active
	case exitInactive:
		return Inactive
	case exitUnknown, exitNotLoaded:
		return Unknown
	default:
		return Unknown
	}
}

// interpretIsEnabled maps systemctl is-enabled output and exit code.
func interpretIsEnabled(output string, exitCode int) State {
	switch output {
	case "enabled", "enabled-runtime", "static":
		return Enabled
	case "disabled":
		return Disabled
	}
	switch exitCode {
	case exitSuccess:
		return Enabled
	case exitFail:
		return Disabled
	default:
		return Unknown
	}
}
