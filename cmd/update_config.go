// cmd/update_config.go

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/backup"
	"github.com/monaylabs/postflight/pkg/envfile"
	"github.com/monaylabs/postflight/pkg/pfcli"
	"github.com/monaylabs/postflight/pkg/pferr"
	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
	"github.com/monaylabs/postflight/pkg/profile"
)

var (
	updateConfigDryRun bool
	updateConfigPath   string
	updateConfigBase   string
)

// UpdateConfigCmd regenerates the production .env profile, backing up
// the current file into the single backup slot first.
var UpdateConfigCmd = &cobra.Command{
	Use:   "update-config",
	Short: "Rewrite the runtime configuration with the production profile",
	Long: `update-config resolves the install platform, generates the full
production configuration profile, and replaces the existing .env file.
The previous file is preserved in the .env.backup slot.

With --dry-run the generated profile is printed and nothing is written.`,
	RunE: pfcli.Wrap(runUpdateConfig),
}

func init() {
	UpdateConfigCmd.Flags().BoolVar(&updateConfigDryRun, "dry-run", false,
		"print the generated configuration without writing it")
	UpdateConfigCmd.Flags().StringVar(&updateConfigPath, "path", "",
		"configuration file path (default: <base>/.env)")
	UpdateConfigCmd.Flags().StringVar(&updateConfigBase, "base", "",
		"installation base path override")
}

func runUpdateConfig(rc *pfio.RuntimeContext, cmd *cobra.Command, args []string) error {
	p, err := platform.Resolve()
	if err != nil {
		return err
	}
	if updateConfigBase != "" {
		p.BasePath = updateConfigBase
	}
	rc.Log.Info("Resolved platform",
		zap.String("kind", p.Kind.String()),
		zap.String("base_path", p.BasePath))

	configPath := p.ConfigPath()
	if updateConfigPath != "" {
		configPath = updateConfigPath
	}

	current := envfile.New()
	raw, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		current, err = envfile.Parse(raw)
		if err != nil {
			return pferr.Generation(err,
				"fix or remove the malformed "+configPath+" and rerun update-config")
		}
	case os.IsNotExist(err):
		rc.Log.Info("No existing configuration, generating from scratch",
			zap.String("path", configPath))
	default:
		return pferr.Generation(err,
			"check read permissions on "+configPath)
	}

	doc, err := profile.Generate(p, current, rc.Log)
	if err != nil {
		return err
	}
	data := doc.Serialize()

	if updateConfigDryRun {
		rc.Log.Info("Dry run, configuration not written",
			zap.String("path", configPath), zap.Int("keys", doc.Len()))
		cmd.Print(string(data))
		return nil
	}

	mgr := backup.NewManager(configPath)
	if err := mgr.BackupThenReplace(rc, data); err != nil {
		return err
	}

	rc.Log.Info("Configuration updated",
		zap.String("path", configPath),
		zap.String("backup", mgr.SlotPath()),
		zap.Int("keys", doc.Len()))
	return nil
}
