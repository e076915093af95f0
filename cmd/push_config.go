// cmd/push_config.go

package cmd

import (
	"fmt"
	"os"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/backup"
	"github.com/monaylabs/postflight/pkg/pfcli"
	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
	"github.com/monaylabs/postflight/pkg/remote"
)

var (
	pushHost     string
	pushUser     string
	pushIdentity string
	pushTimeout  time.Duration
	pushRestart  bool
)

// PushConfigCmd copies the local configuration to a remote target over
// SSH. Remote checks are out of scope; this pushes and optionally
// restarts, nothing more.
var PushConfigCmd = &cobra.Command{
	Use:   "push-config",
	Short: "Copy the local configuration to a remote installation",
	Long: `push-config copies the local .env file to the same install path on a
remote host over SSH, after backing up the remote file into its backup
slot. With --restart the remote service is restarted afterwards.

Authentication is key-based and non-interactive; configure SSH keys
before use.`,
	RunE: pfcli.Wrap(runPushConfig),
}

func init() {
	PushConfigCmd.Flags().StringVar(&pushHost, "host", "", "remote host (required)")
	PushConfigCmd.Flags().StringVar(&pushUser, "user", "", "SSH user")
	PushConfigCmd.Flags().StringVar(&pushIdentity, "identity", "", "SSH identity file")
	PushConfigCmd.Flags().DurationVar(&pushTimeout, "timeout", 30*time.Second, "per-operation timeout")
	PushConfigCmd.Flags().BoolVar(&pushRestart, "restart", false, "restart the remote service after pushing")
	_ = PushConfigCmd.MarkFlagRequired("host")
}

// remoteBackupCommand builds the shell step that populates the remote
// backup slot before the overwrite. A missing remote file skips the
// copy without failing; the push still proceeds.
func remoteBackupCommand(path string) []string {
	slot := path + backup.SlotSuffix
	return []string{"sh", "-c",
		fmt.Sprintf("test -f %q && cp -p %q %q || true", path, path, slot)}
}

func runPushConfig(rc *pfio.RuntimeContext, cmd *cobra.Command, args []string) error {
	p, err := platform.Resolve()
	if err != nil {
		return err
	}

	configPath := p.ConfigPath()
	if _, err := os.Stat(configPath); err != nil {
		return cerr.WithHint(
			cerr.Wrapf(err, "local configuration %s is not readable", configPath),
			"run 'postflight update-config' to generate it before pushing")
	}

	exec := &remote.SSHExecutor{
		User:         pushUser,
		IdentityFile: pushIdentity,
		Timeout:      pushTimeout,
	}

	// Back up the remote file into its slot before overwriting it, same
	// contract as the local update-config path.
	remotePath := configPath
	if out, code, err := exec.RunCommand(rc, pushHost, remoteBackupCommand(remotePath)); err != nil {
		return err
	} else if code != 0 {
		rc.Log.Warn("Remote backup step exited non-zero",
			zap.Int("exit_code", code),
			zap.String("output", out))
	}

	if err := exec.CopyFile(rc, configPath, pushHost, remotePath); err != nil {
		return err
	}
	rc.Log.Info("Configuration pushed",
		zap.String("host", pushHost),
		zap.String("path", remotePath))
	cmd.Printf("pushed %s to %s:%s\n", configPath, pushHost, remotePath)

	if !pushRestart {
		return nil
	}

	unit := serviceUnit()
	out, code, err := exec.RunCommand(rc, pushHost, []string{"systemctl", "restart", unit})
	if err != nil {
		return err
	}
	if code != 0 {
		rc.Log.Error("Remote restart failed",
			zap.String("unit", unit),
			zap.Int("exit_code", code),
			zap.String("output", out))
		exitCode = 1
		return nil
	}
	cmd.Printf("restarted %s on %s\n", unit, pushHost)
	return nil
}
