// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/telemetry"
)

// Options controls a single subprocess invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string

	// Capture returns combined stdout+stderr instead of discarding it.
	Capture bool
	// Timeout bounds the invocation; zero means the 30s default.
	Timeout time.Duration
	// Retries > 1 re-runs the command on failure, sleeping Delay between
	// attempts.
	Retries int
	Delay   time.Duration

	Logger *zap.Logger
	DryRun bool
}

// DefaultDryRun short-circuits every Run call when set; used by --dry-run
// plumbing in commands that shell out.
var DefaultDryRun bool

// Run executes a command and returns its combined output. Output is
// captured to a buffer only, never echoed raw to stdout, so command output
// stays out of the structured log stream.
func Run(ctx context.Context, opts Options) (string, error) {
	log := opts.Logger
	if log == nil {
		log = zap.L()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cmdStr := opts.Command + " " + strings.Join(opts.Args, " ")

	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run",
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)
	defer span.End()

	if opts.DryRun || DefaultDryRun {
		log.Info("Dry run mode - command not executed", zap.String("command", cmdStr))
		return "", nil
	}

	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	var output string
	var err error
	for i := 1; i <= attempts; i++ {
		cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
		if opts.Dir != "" {
			cmd.Dir = opts.Dir
		}

		var buf bytes.Buffer
		cmd.Stdout = &buf
		cmd.Stderr = &buf

		err = cmd.Run()
		output = buf.String()

		if err == nil {
			log.Debug("Execution succeeded", zap.String("command", cmdStr))
			break
		}

		span.RecordError(err)
		log.Debug("Execution failed",
			zap.Int("attempt", i),
			zap.String("command", cmdStr),
			zap.String("output", Summarize(output, 2)),
			zap.Error(err))

		if i < attempts {
			time.Sleep(opts.Delay)
		}
	}

	if err != nil {
		return output, cerr.Wrapf(err, "command %q failed after %d attempt(s)", opts.Command, attempts)
	}

	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// ExitCode extracts the subprocess exit code from a Run error. Status-style
// commands (systemctl is-active and friends) encode state in non-zero
// exits, so callers need the code rather than the error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if cerr.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// Summarize returns the last n non-empty lines of command output for log
// fields.
func Summarize(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, strings.TrimSpace(l))
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, " | ")
}

func defaultTimeout(t time.Duration) time.Duration {
	if t > 0 {
		return t
	}
	return 30 * time.Second
}
