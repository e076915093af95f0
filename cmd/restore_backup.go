// cmd/restore_backup.go

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/monaylabs/postflight/pkg/backup"
	"github.com/monaylabs/postflight/pkg/pfcli"
	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
)

// RestoreBackupCmd puts the previous configuration back in place from
// the single backup slot.
var RestoreBackupCmd = &cobra.Command{
	Use:   "restore-backup",
	Short: "Restore the previous configuration from the backup slot",
	Long: `restore-backup copies the .env.backup slot back onto the live .env
path, permissions included. The command fails if the slot is empty.`,
	RunE: pfcli.Wrap(runRestoreBackup),
}

func runRestoreBackup(rc *pfio.RuntimeContext, cmd *cobra.Command, args []string) error {
	p, err := platform.Resolve()
	if err != nil {
		return err
	}

	mgr := backup.NewManager(p.ConfigPath())
	if err := mgr.Restore(rc); err != nil {
		return err
	}

	cmd.Printf("restored %s from %s\n", mgr.Path, mgr.SlotPath())
	return nil
}
