package checks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
)

func testRC(t *testing.T) *pfio.RuntimeContext {
	t.Helper()
	return pfio.NewContext(context.Background(), "checks-test")
}

func stubSpec(name string, status Status) Spec {
	return Spec{
		Name:     name,
		Category: "stub",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			return Result{Name: name, Category: "stub", Status: status, Message: name}
		},
	}
}

func linuxPlatform(t *testing.T) platform.Platform {
	t.Helper()
	p, err := platform.ResolveFor("linux")
	require.NoError(t, err)
	return p
}

func TestAllSuccessYieldsOverallSuccess(t *testing.T) {
	specs := []Spec{
		stubSpec("a", Success),
		stubSpec("b", Success),
		stubSpec("c", Info),
	}

	r := &Runner{}
	report := r.Run(testRC(t), linuxPlatform(t), specs)

	assert.Equal(t, Success, report.Overall())
	assert.Equal(t, 0, report.ExitCode())
}

func TestSingleErrorDominatesOverall(t *testing.T) {
	specs := []Spec{
		stubSpec("a", Success),
		stubSpec("b", Error),
		stubSpec("c", Warning),
		stubSpec("d", Success),
	}

	r := &Runner{}
	report := r.Run(testRC(t), linuxPlatform(t), specs)

	assert.Equal(t, Error, report.Overall())
	assert.Equal(t, 1, report.ExitCode())
}

func TestWarningsOnlyYieldOverallWarning(t *testing.T) {
	specs := []Spec{
		stubSpec("a", Success),
		stubSpec("b", Warning),
		stubSpec("c", Warning),
	}

	r := &Runner{}
	report := r.Run(testRC(t), linuxPlatform(t), specs)

	assert.Equal(t, Warning, report.Overall())
	assert.Equal(t, 2, report.ExitCode())
}

func TestEveryCheckReportsNoShortCircuit(t *testing.T) {
	var executed int32
	counting := func(name string, status Status) Spec {
		return Spec{
			Name:     name,
			Category: "stub",
			Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
				atomic.AddInt32(&executed, 1)
				return Result{Name: name, Status: status}
			},
		}
	}

	specs := []Spec{
		counting("first-fails", Error),
		counting("second", Success),
		counting("third", Success),
	}

	r := &Runner{Workers: 1}
	report := r.Run(testRC(t), linuxPlatform(t), specs)

	assert.Equal(t, int32(3), atomic.LoadInt32(&executed))
	assert.Len(t, report.Results, 3)
}

func TestReportPreservesDeclarationOrder(t *testing.T) {
	specs := []Spec{
		stubSpec("first", Success),
		stubSpec("second", Warning),
		stubSpec("third", Success),
		stubSpec("fourth", Error),
	}

	r := &Runner{Workers: 3}
	report := r.Run(testRC(t), linuxPlatform(t), specs)

	require.Len(t, report.Results, 4)
	assert.Equal(t, "first", report.Results[0].Name)
	assert.Equal(t, "second", report.Results[1].Name)
	assert.Equal(t, "third", report.Results[2].Name)
	assert.Equal(t, "fourth", report.Results[3].Name)
}

func TestPanickingCheckDowngradesToErrorOnly(t *testing.T) {
	specs := []Spec{
		stubSpec("healthy", Success),
		{
			Name:     "explodes",
			Category: "stub",
			Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
				panic("boom")
			},
		},
		stubSpec("also healthy", Success),
	}

	r := &Runner{}
	report := r.Run(testRC(t), linuxPlatform(t), specs)

	require.Len(t, report.Results, 3)
	assert.Equal(t, Success, report.Results[0].Status)
	assert.Equal(t, Error, report.Results[1].Status)
	assert.Contains(t, report.Results[1].Message, "boom")
	assert.Equal(t, Success, report.Results[2].Status)
	assert.Equal(t, Error, report.Overall())
}

func TestSlowCheckIsBoundedByTimeout(t *testing.T) {
	specs := []Spec{
		{
			Name:     "slow",
			Category: "stub",
			Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
				select {
				case <-rc.Ctx.Done():
					return Result{Name: "slow", Status: Warning, Message: "timed out"}
				case <-time.After(5 * time.Second):
					return Result{Name: "slow", Status: Success}
				}
			},
		},
	}

	r := &Runner{Timeout: 50 * time.Millisecond}
	start := time.Now()
	report := r.Run(testRC(t), linuxPlatform(t), specs)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, Warning, report.Results[0].Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "SUCCESS", Success.String())
	assert.Equal(t, "INFO", Info.String())
	assert.Equal(t, "WARNING", Warning.String())
	assert.Equal(t, "ERROR", Error.String())
}
