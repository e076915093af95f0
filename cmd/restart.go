// cmd/restart.go

package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/pfcli"
	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
	"github.com/monaylabs/postflight/pkg/service"
)

// RestartCmd restarts the managed service and reports the state it
// settles into.
var RestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the managed service",
	Long: `restart issues a service restart and polls the resulting state once
after a short settle delay. On platforms without a managed service
daemon it reports that a manual restart is required.`,
	RunE: pfcli.Wrap(runRestart),
}

func runRestart(rc *pfio.RuntimeContext, cmd *cobra.Command, args []string) error {
	p, err := platform.Resolve()
	if err != nil {
		return err
	}

	unit := serviceUnit()
	ctl := service.NewController(p, unit)

	state, err := ctl.Restart(rc)
	if err != nil {
		return err
	}

	cmd.Printf("%s: %s\n", unit, state)
	if state != service.Active && p.IsPOSIX() {
		rc.Log.Warn("Service is not active after restart",
			zap.String("unit", unit),
			zap.String("state", state.String()))
		exitCode = 2
	}
	return nil
}
