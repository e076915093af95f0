package checks

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monaylabs/postflight/pkg/platform"
)

// tempPlatform builds a POSIX platform rooted in a temp dir so filesystem
// checks can run against real paths.
func tempPlatform(t *testing.T) platform.Platform {
	t.Helper()
	return platform.Platform{
		Kind:           platform.POSIX,
		BasePath:       t.TempDir(),
		Separator:      "/",
		ServiceManager: platform.ManagerSystemd,
	}
}

func TestClassifyDiskUsage(t *testing.T) {
	tests := []struct {
		pct  float64
		want Status
	}{
		{0, Success},
		{89, Success},
		{89.9, Success},
		{90, Warning},
		{92, Warning},
		{100, Warning},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f%%", tt.pct), func(t *testing.T) {
			res := ClassifyDiskUsage(tt.pct)
			assert.Equal(t, tt.want, res.Status)
			assert.Contains(t, res.Message, "90%", "threshold must be cited in the message")
		})
	}
}

func TestDiskUsagePercentOnRealFilesystem(t *testing.T) {
	pct, err := diskUsagePercent("/")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pct, 0.0)
	assert.LessOrEqual(t, pct, 100.0)
}

func TestBaseDirectoryCheck(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		p := tempPlatform(t)
		res := baseDirectorySpec().Run(testRC(t), p)
		assert.Equal(t, Success, res.Status)
	})

	t.Run("missing", func(t *testing.T) {
		p := tempPlatform(t)
		p.BasePath = filepath.Join(p.BasePath, "does-not-exist")
		res := baseDirectorySpec().Run(testRC(t), p)
		assert.Equal(t, Error, res.Status)
		assert.Contains(t, res.Message, p.BasePath)
		assert.NotEmpty(t, res.Hint)
	})
}

func TestInterpreterCheckMissingBinaryIsError(t *testing.T) {
	p := tempPlatform(t)

	res := interpreterSpec("wan_venv").Run(testRC(t), p)
	assert.Equal(t, Error, res.Status)
	assert.Contains(t, res.Message, p.VenvPython("wan_venv"),
		"the message must identify the missing interpreter path")
}

func TestConfigFilesCheck(t *testing.T) {
	t.Run("missing files warn", func(t *testing.T) {
		p := tempPlatform(t)
		res := configFilesSpec([]string{".env", "config.yaml"}, "monay.service").Run(testRC(t), p)
		assert.Equal(t, Warning, res.Status)
		assert.Contains(t, res.Message, ".env")
		assert.Contains(t, res.Message, "config.yaml")
	})
}

func TestHealthEndpointCheck(t *testing.T) {
	t.Run("healthy endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		res := healthEndpointSpec("main api", srv.URL+"/health").Run(testRC(t), tempPlatform(t))
		assert.Equal(t, Success, res.Status)
	})

	t.Run("unhealthy status warns", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		res := healthEndpointSpec("main api", srv.URL+"/health").Run(testRC(t), tempPlatform(t))
		assert.Equal(t, Warning, res.Status)
		assert.Contains(t, res.Message, "503")
	})

	t.Run("unreachable endpoint warns", func(t *testing.T) {
		res := healthEndpointSpec("main api", "http://127.0.0.1:1/health").Run(testRC(t), tempPlatform(t))
		assert.Equal(t, Warning, res.Status)
		assert.Contains(t, res.Message, "unreachable")
	})
}

func TestLogScanFallsBackToLogDirectory(t *testing.T) {
	p := platform.Platform{
		Kind:      platform.Windows, // journalctl path skipped
		BasePath:  t.TempDir(),
		Separator: "/",
	}
	require.NoError(t, os.MkdirAll(p.LogDir(), 0o755))
	logFile := filepath.Join(p.LogDir(), "monay.log")
	require.NoError(t, os.WriteFile(logFile,
		[]byte("INFO startup\nERROR generation failed\nTraceback (most recent call last):\n"), 0o644))

	res := logScanSpec("monay.service", []string{"ERROR", "CRITICAL", "Traceback"}).Run(testRC(t), p)
	assert.Equal(t, Warning, res.Status)
	assert.Contains(t, res.Message, "ERROR x1")
	assert.Contains(t, res.Message, "Traceback x1")
}

func TestLogScanCleanLogsSucceed(t *testing.T) {
	p := platform.Platform{
		Kind:      platform.Windows,
		BasePath:  t.TempDir(),
		Separator: "/",
	}
	require.NoError(t, os.MkdirAll(p.LogDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p.LogDir(), "monay.log"),
		[]byte("INFO startup\nINFO cycle complete\n"), 0o644))

	res := logScanSpec("monay.service", []string{"ERROR", "CRITICAL"}).Run(testRC(t), p)
	assert.Equal(t, Success, res.Status)
}

func TestLogScanWithoutLogsIsInfoOnly(t *testing.T) {
	p := platform.Platform{
		Kind:      platform.Windows,
		BasePath:  filepath.Join(t.TempDir(), "absent"),
		Separator: "/",
	}

	res := logScanSpec("monay.service", []string{"ERROR"}).Run(testRC(t), p)
	assert.Equal(t, Info, res.Status)
}

func TestDefaultSpecsComposition(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("posix includes service checks", func(t *testing.T) {
		p, err := platform.ResolveFor("linux")
		require.NoError(t, err)

		names := map[string]bool{}
		for _, s := range DefaultSpecs(p, cfg) {
			names[s.Name] = true
		}
		assert.True(t, names["base directory"])
		assert.True(t, names["service enabled"])
		assert.True(t, names["service active"])
		assert.True(t, names["disk usage"])
		assert.True(t, names["recent log errors"])
		assert.True(t, names["interpreter: wan_venv"])
		assert.True(t, names["dependency: torch"])
		assert.True(t, names["health endpoint: main api"])
	})

	t.Run("windows omits service checks", func(t *testing.T) {
		p, err := platform.ResolveFor("windows")
		require.NoError(t, err)

		for _, s := range DefaultSpecs(p, cfg) {
			assert.NotEqual(t, "service enabled", s.Name)
			assert.NotEqual(t, "service active", s.Name)
		}
	})

	t.Run("order is deterministic", func(t *testing.T) {
		p, err := platform.ResolveFor("linux")
		require.NoError(t, err)

		a := DefaultSpecs(p, cfg)
		b := DefaultSpecs(p, cfg)
		require.Equal(t, len(a), len(b))
		for i := range a {
			assert.Equal(t, a[i].Name, b[i].Name)
		}
	})
}
