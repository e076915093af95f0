// main.go

package main

import (
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/cmd"
	"github.com/monaylabs/postflight/pkg/logger"
	"github.com/monaylabs/postflight/pkg/telemetry"
)

func main() {
	logger.InitializeWithFallback()
	defer logger.Sync()

	if err := telemetry.Init("postflight"); err != nil {
		logger.L().Warn("Telemetry disabled", zap.Error(err))
	}

	cmd.Execute()
}
