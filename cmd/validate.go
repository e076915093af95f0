// cmd/validate.go

package cmd

import (
	"encoding/json"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/checks"
	"github.com/monaylabs/postflight/pkg/pfcli"
	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
)

var (
	validateJSON    bool
	validateWorkers int
	validateTimeout time.Duration
)

// ValidateCmd runs the full post-deployment checklist and reports the
// aggregated outcome through the process exit code.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the post-deployment health checklist",
	Long: `validate runs every configured health check against the local
installation: directory layout, virtualenv interpreters, critical Python
imports, service state, HTTP health endpoints, recent log errors and
disk usage.

The process exits 0 when every check succeeds, 1 when any check reports
ERROR, and 2 when the worst finding is a WARNING.`,
	RunE: pfcli.Wrap(runValidate),
}

func init() {
	ValidateCmd.Flags().BoolVar(&validateJSON, "json", false,
		"emit the report as JSON")
	ValidateCmd.Flags().IntVar(&validateWorkers, "workers", 4,
		"number of checks to run concurrently")
	ValidateCmd.Flags().DurationVar(&validateTimeout, "check-timeout", 10*time.Second,
		"per-check timeout")
}

// checksConfig assembles the checklist configuration from settings.
func checksConfig() checks.Config {
	cfg := checks.DefaultConfig()
	cfg.Unit = serviceUnit()
	if v := viper.GetStringSlice("checks.venvs"); len(v) > 0 {
		cfg.Venvs = v
	}
	if v := viper.GetStringSlice("checks.config_files"); len(v) > 0 {
		cfg.ConfigFiles = v
	}
	if v := viper.GetStringSlice("checks.critical_imports"); len(v) > 0 {
		cfg.CriticalImports = v
	}
	if v := viper.GetStringMapString("checks.health_endpoints"); len(v) > 0 {
		cfg.HealthEndpoints = v
	}
	if v := viper.GetStringSlice("checks.log_markers"); len(v) > 0 {
		cfg.LogMarkers = v
	}
	return cfg
}

func runValidate(rc *pfio.RuntimeContext, cmd *cobra.Command, args []string) error {
	p, err := platform.Resolve()
	if err != nil {
		return err
	}

	cfg := checksConfig()
	specs := checks.DefaultSpecs(p, cfg)

	runner := checks.Runner{Workers: validateWorkers, Timeout: validateTimeout}
	report := runner.Run(rc, p, specs)

	if validateJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return cerr.Wrap(err, "encoding validation report")
		}
		cmd.Println(string(out))
	} else {
		printReport(cmd, report)
	}

	exitCode = report.ExitCode()
	rc.Log.Info("Exit code decided",
		zap.String("overall", report.Overall().String()),
		zap.Int("exit_code", exitCode))
	return nil
}

func printReport(cmd *cobra.Command, report checks.Report) {
	for _, r := range report.Results {
		cmd.Printf("[%s] %-12s %s: %s\n", r.Status, r.Category, r.Name, r.Message)
		if r.Hint != "" {
			cmd.Printf("          hint: %s\n", r.Hint)
		}
	}
	success, info, warning, errCount := report.Counts()
	cmd.Printf("\nOverall: %s (%d success, %d info, %d warning, %d error)\n",
		report.Overall(), success, info, warning, errCount)
}
