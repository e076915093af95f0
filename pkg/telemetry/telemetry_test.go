// pkg/telemetry/telemetry_test.go

package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The CLI ends in os.Exit, which skips deferred cleanup, so a short run
// only keeps its spans if Shutdown drains the batcher.
func TestShutdownFlushesBufferedSpans(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("POSTFLIGHT_TELEMETRY", "1")
	t.Setenv("POSTFLIGHT_TELEMETRY_DIR", dir)

	require.NoError(t, Init("postflight-test"))

	_, span := Start(context.Background(), "flush-sentinel")
	span.End()
	Shutdown(context.Background())

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.jsonl"))
	require.NoError(t, err, "telemetry file missing after shutdown")
	assert.Contains(t, string(data), "flush-sentinel")
}

func TestShutdownWithoutInit(t *testing.T) {
	assert.NotPanics(t, func() { Shutdown(context.Background()) })
}

func TestInitDisabledWritesNothing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("POSTFLIGHT_TELEMETRY", "")
	t.Setenv("POSTFLIGHT_TELEMETRY_DIR", dir)

	require.NoError(t, Init("postflight-test"))
	_, span := Start(context.Background(), "discarded")
	span.End()
	Shutdown(context.Background())

	_, err := os.Stat(filepath.Join(dir, "telemetry.jsonl"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunIDStable(t *testing.T) {
	assert.NotEmpty(t, RunID())
	assert.Equal(t, RunID(), RunID())
}
