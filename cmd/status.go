// cmd/status.go

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/monaylabs/postflight/pkg/pfcli"
	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
	"github.com/monaylabs/postflight/pkg/service"
)

// StatusCmd reports the live state of the managed service.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the managed service state",
	Long: `status queries the live enablement and activity state of the managed
service. State is always re-queried, never cached.`,
	RunE: pfcli.Wrap(runStatus),
}

func runStatus(rc *pfio.RuntimeContext, cmd *cobra.Command, args []string) error {
	p, err := platform.Resolve()
	if err != nil {
		return err
	}

	unit := serviceUnit()
	ctl := service.NewController(p, unit)

	if !p.IsPOSIX() {
		cmd.Printf("%s: no managed service daemon on this platform\n", unit)
		return nil
	}

	cmd.Printf("%s: %s (boot: %s)\n", unit, ctl.QueryState(rc), ctl.QueryEnabled(rc))
	return nil
}
