// pkg/pfcli/wrap.go

package pfcli

import (
	"context"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/logger"
	"github.com/monaylabs/postflight/pkg/pfio"
)

// Wrap adapts a postflight command handler to cobra's RunE signature,
// ensuring panic recovery, telemetry and outcome logging for every command.
func Wrap(fn func(rc *pfio.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		rc := pfio.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		// cobra would print usage for every returned error; these are
		// operational failures, not flag mistakes.
		cmd.SilenceUsage = true

		return fn(rc, cmd, args)
	}
}
