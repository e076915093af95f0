// cmd/root.go

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/monaylabs/postflight/pkg/pfcli"
	"github.com/monaylabs/postflight/pkg/pferr"
	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/telemetry"
)

// RootCmd is the base command for postflight.
var RootCmd = &cobra.Command{
	Use:   "postflight",
	Short: "Post-deployment configuration and health validation",
	Long: `postflight finalizes a monay deployment: it rewrites the runtime
configuration into a production profile, manages the restarted service,
and runs a structured checklist of health checks.

Exit codes: 0 on overall SUCCESS, 1 on ERROR, 2 on WARNING-only.`,
	RunE: pfcli.Wrap(func(rc *pfio.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}),
}

// exitCode is set by commands whose outcome is a report status rather
// than an error (WARNING-only runs exit 2 without an error).
var exitCode int

// Execute runs the CLI and applies the exit-code policy. os.Exit skips
// deferred cleanup, so buffered telemetry is flushed here first.
func Execute() {
	initSettings()

	err := RootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, pferr.UserMessage(err))
		exitCode = pferr.ExitCode(err)
	}

	telemetry.Shutdown(context.Background())
	os.Exit(exitCode)
}

// initSettings wires the tool settings: defaults in code, optional
// postflight.yaml, POSTFLIGHT_* environment overrides.
func initSettings() {
	viper.SetDefault("service.unit", "monay.service")
	viper.SetDefault("checks.venvs", []string{"venv", "ai_service_venv", "video_service_venv", "wan_venv"})
	viper.SetDefault("checks.config_files", []string{".env", "config.yaml", "requirements.txt"})
	viper.SetDefault("checks.critical_imports", []string{
		"torch", "transformers", "diffusers", "requests",
		"numpy", "fastapi", "uvicorn", "pydantic",
	})
	viper.SetDefault("checks.health_endpoints", map[string]string{
		"main api":      "http://localhost:8000/health",
		"ai service":    "http://localhost:8001/health",
		"video service": "http://localhost:8002/health",
	})
	viper.SetDefault("checks.log_markers", []string{"ERROR", "CRITICAL", "Traceback"})

	viper.SetConfigName("postflight")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/postflight")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.postflight")
	}
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("POSTFLIGHT")
	viper.AutomaticEnv()

	// a missing settings file is fine; defaults cover everything
	_ = viper.ReadInConfig()
}

// serviceUnit returns the configured service unit name.
func serviceUnit() string {
	return viper.GetString("service.unit")
}

func init() {
	RootCmd.AddCommand(UpdateConfigCmd)
	RootCmd.AddCommand(ValidateCmd)
	RootCmd.AddCommand(RestoreBackupCmd)
	RootCmd.AddCommand(RestartCmd)
	RootCmd.AddCommand(StatusCmd)
	RootCmd.AddCommand(PushConfigCmd)
}
