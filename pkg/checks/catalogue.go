// pkg/checks/catalogue.go

package checks

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/monaylabs/postflight/pkg/execute"
	"github.com/monaylabs/postflight/pkg/httpclient"
	"github.com/monaylabs/postflight/pkg/pfio"
	"github.com/monaylabs/postflight/pkg/platform"
	"github.com/monaylabs/postflight/pkg/service"
)

// DiskHighWater is the usage percentage at which the disk check warns.
const DiskHighWater = 90.0

// Config selects what the default checklist inspects.
type Config struct {
	// Unit is the managed service, e.g. "monay.service".
	Unit string
	// Venvs are the virtual runtime directories under the base path whose
	// interpreters must exist.
	Venvs []string
	// ConfigFiles are base-relative files whose presence is expected.
	ConfigFiles []string
	// CriticalImports are modules the main interpreter must import.
	CriticalImports []string
	// HealthEndpoints maps a display name to a URL probed with GET.
	HealthEndpoints map[string]string
	// LogMarkers are substrings treated as error markers in recent logs.
	LogMarkers []string
}

// DefaultConfig returns the production checklist configuration.
func DefaultConfig() Config {
	return Config{
		Unit:  "monay.service",
		Venvs: []string{"venv", "ai_service_venv", "video_service_venv", "wan_venv"},
		ConfigFiles: []string{
			".env",
			"config.yaml",
			"requirements.txt",
		},
		CriticalImports: []string{
			"torch", "transformers", "diffusers", "requests",
			"numpy", "fastapi", "uvicorn", "pydantic",
		},
		HealthEndpoints: map[string]string{
			"main api":      "http://localhost:8000/health",
			"ai service":    "http://localhost:8001/health",
			"video service": "http://localhost:8002/health",
		},
		LogMarkers: []string{"ERROR", "CRITICAL", "Traceback"},
	}
}

// DefaultSpecs builds the ordered checklist for the platform. Order is
// presentational only; every check is independent.
func DefaultSpecs(p platform.Platform, cfg Config) []Spec {
	ctl := service.NewController(p, cfg.Unit)

	specs := []Spec{baseDirectorySpec()}

	for _, venv := range cfg.Venvs {
		specs = append(specs, interpreterSpec(venv))
	}

	files := append([]string{}, cfg.ConfigFiles...)
	specs = append(specs, configFilesSpec(files, cfg.Unit))

	if p.IsPOSIX() {
		specs = append(specs,
			serviceEnabledSpec(ctl),
			serviceActiveSpec(ctl),
		)
	}

	for _, mod := range cfg.CriticalImports {
		specs = append(specs, importSpec(mod))
	}

	names := make([]string, 0, len(cfg.HealthEndpoints))
	for name := range cfg.HealthEndpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		specs = append(specs, healthEndpointSpec(name, cfg.HealthEndpoints[name]))
	}

	specs = append(specs,
		logScanSpec(cfg.Unit, cfg.LogMarkers),
		diskUsageSpec(),
	)
	return specs
}

func baseDirectorySpec() Spec {
	return Spec{
		Name:     "base directory",
		Category: "filesystem",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			info, err := os.Stat(p.BasePath)
			if err != nil || !info.IsDir() {
				return Result{
					Name:     "base directory",
					Category: "filesystem",
					Status:   Error,
					Message:  fmt.Sprintf("base directory %s is missing", p.BasePath),
					Hint:     "run the provisioning step first; it creates the installation tree",
				}
			}
			return Result{
				Name:     "base directory",
				Category: "filesystem",
				Status:   Success,
				Message:  fmt.Sprintf("base directory %s exists", p.BasePath),
			}
		},
	}
}

func interpreterSpec(venv string) Spec {
	name := "interpreter: " + venv
	return Spec{
		Name:     name,
		Category: "runtime",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			python := p.VenvPython(venv)
			if _, err := os.Stat(python); err != nil {
				return Result{
					Name:     name,
					Category: "runtime",
					Status:   Error,
					Message:  fmt.Sprintf("interpreter not found at %s", python),
					Hint:     fmt.Sprintf("recreate the %s virtual runtime during provisioning", venv),
				}
			}

			out, err := execute.Run(rc.Ctx, execute.Options{
				Command: python,
				Args:    []string{"--version"},
				Capture: true,
				Logger:  rc.Log,
			})
			if err != nil {
				return Result{
					Name:     name,
					Category: "runtime",
					Status:   Error,
					Message:  fmt.Sprintf("interpreter %s is present but not runnable", python),
					Hint:     fmt.Sprintf("recreate the %s virtual runtime during provisioning", venv),
				}
			}
			return Result{
				Name:     name,
				Category: "runtime",
				Status:   Success,
				Message:  strings.TrimSpace(out),
			}
		},
	}
}

func configFilesSpec(files []string, unit string) Spec {
	return Spec{
		Name:     "config files",
		Category: "filesystem",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			var missing []string
			for _, f := range files {
				if _, err := os.Stat(p.Join(strings.Split(f, "/")...)); err != nil {
					missing = append(missing, f)
				}
			}
			if _, err := os.Stat(p.ServiceUnitPath(unit)); err != nil {
				missing = append(missing, p.ServiceUnitPath(unit))
			}

			if len(missing) > 0 {
				return Result{
					Name:     "config files",
					Category: "filesystem",
					Status:   Warning,
					Message:  "missing config files: " + strings.Join(missing, ", "),
					Hint:     "run 'postflight update-config' and re-run the deployment setup for missing unit files",
				}
			}
			return Result{
				Name:     "config files",
				Category: "filesystem",
				Status:   Success,
				Message:  fmt.Sprintf("all %d config files present", len(files)+1),
			}
		},
	}
}

func serviceEnabledSpec(ctl *service.Controller) Spec {
	return Spec{
		Name:     "service enabled",
		Category: "service",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			state := ctl.QueryEnabled(rc)
			if state != service.Enabled {
				return Result{
					Name:     "service enabled",
					Category: "service",
					Status:   Error,
					Message:  fmt.Sprintf("%s is not enabled (state: %s)", ctl.Unit, state),
					Hint:     fmt.Sprintf("enable it with 'sudo systemctl enable %s'", ctl.Unit),
				}
			}
			return Result{
				Name:     "service enabled",
				Category: "service",
				Status:   Success,
				Message:  ctl.Unit + " is enabled",
			}
		},
	}
}

func serviceActiveSpec(ctl *service.Controller) Spec {
	return Spec{
		Name:     "service active",
		Category: "service",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			state := ctl.QueryState(rc)
			if state != service.Active {
				return Result{
					Name:     "service active",
					Category: "service",
					Status:   Warning,
					Message:  fmt.Sprintf("%s is not active (state: %s)", ctl.Unit, state),
					Hint:     fmt.Sprintf("start it with 'sudo systemctl restart %s' or run 'postflight restart'", ctl.Unit),
				}
			}
			return Result{
				Name:     "service active",
				Category: "service",
				Status:   Success,
				Message:  ctl.Unit + " is active",
			}
		},
	}
}

func importSpec(module string) Spec {
	name := "dependency: " + module
	return Spec{
		Name:     name,
		Category: "dependencies",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			python := p.VenvPython("venv")
			_, err := execute.Run(rc.Ctx, execute.Options{
				Command: python,
				Args:    []string{"-c", "import " + module},
				Capture: true,
				Logger:  rc.Log,
			})
			if err != nil {
				return Result{
					Name:     name,
					Category: "dependencies",
					Status:   Error,
					Message:  fmt.Sprintf("module %s is not importable", module),
					Hint:     fmt.Sprintf("install it into the main runtime: %s -m pip install %s", python, module),
				}
			}
			return Result{
				Name:     name,
				Category: "dependencies",
				Status:   Success,
				Message:  module + " imports cleanly",
			}
		},
	}
}

func healthEndpointSpec(name, url string) Spec {
	checkName := "health endpoint: " + name
	return Spec{
		Name:     checkName,
		Category: "endpoints",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			req, err := http.NewRequestWithContext(rc.Ctx, http.MethodGet, url, nil)
			if err != nil {
				return Result{
					Name:     checkName,
					Category: "endpoints",
					Status:   Warning,
					Message:  fmt.Sprintf("invalid health URL %s: %v", url, err),
					Hint:     "fix the endpoint URL in the postflight settings",
				}
			}

			resp, err := httpclient.DefaultClient().Do(req)
			if err != nil {
				return Result{
					Name:     checkName,
					Category: "endpoints",
					Status:   Warning,
					Message:  fmt.Sprintf("%s unreachable at %s", name, url),
					Hint:     "the service may still be starting; check its logs if this persists",
				}
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return Result{
					Name:     checkName,
					Category: "endpoints",
					Status:   Warning,
					Message:  fmt.Sprintf("%s returned HTTP %d", name, resp.StatusCode),
					Hint:     "inspect the service logs for startup errors",
				}
			}
			return Result{
				Name:     checkName,
				Category: "endpoints",
				Status:   Success,
				Message:  fmt.Sprintf("%s healthy (HTTP %d)", name, resp.StatusCode),
			}
		},
	}
}

func logScanSpec(unit string, markers []string) Spec {
	return Spec{
		Name:     "recent log errors",
		Category: "logs",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			content, source, err := recentLogs(rc, p, unit)
			if err != nil {
				return Result{
					Name:     "recent log errors",
					Category: "logs",
					Status:   Info,
					Message:  "no recent logs available to scan",
				}
			}

			found := map[string]int{}
			for _, line := range strings.Split(content, "\n") {
				for _, m := range markers {
					if strings.Contains(line, m) {
						found[m]++
					}
				}
			}
			if len(found) > 0 {
				var parts []string
				for _, m := range markers {
					if n := found[m]; n > 0 {
						parts = append(parts, fmt.Sprintf("%s x%d", m, n))
					}
				}
				return Result{
					Name:     "recent log errors",
					Category: "logs",
					Status:   Warning,
					Message:  fmt.Sprintf("error markers in %s: %s", source, strings.Join(parts, ", ")),
					Hint:     fmt.Sprintf("review 'journalctl -u %s -n 200' for details", unit),
				}
			}
			return Result{
				Name:     "recent log errors",
				Category: "logs",
				Status:   Success,
				Message:  "no error markers in " + source,
			}
		},
	}
}

// recentLogs reads the journal for the unit, falling back to the newest
// file in the application log directory when journalctl is unavailable.
func recentLogs(rc *pfio.RuntimeContext, p platform.Platform, unit string) (content, source string, err error) {
	if p.IsPOSIX() {
		out, jerr := execute.Run(rc.Ctx, execute.Options{
			Command: "journalctl",
			Args:    []string{"-u", unit, "-n", "200", "--no-pager"},
			Capture: true,
			Logger:  rc.Log,
		})
		if jerr == nil {
			return out, "journal", nil
		}
	}

	entries, derr := os.ReadDir(p.LogDir())
	if derr != nil || len(entries) == 0 {
		return "", "", fmt.Errorf("no log source available")
	}
	newest := ""
	var newestMod int64
	for _, e := range entries {
		info, ierr := e.Info()
		if ierr != nil || e.IsDir() {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = e.Name()
			newestMod = mod
		}
	}
	if newest == "" {
		return "", "", fmt.Errorf("no log files found")
	}
	data, rerr := os.ReadFile(filepath.Join(p.LogDir(), newest))
	if rerr != nil {
		return "", "", rerr
	}
	return string(data), newest, nil
}

func diskUsageSpec() Spec {
	return Spec{
		Name:     "disk usage",
		Category: "filesystem",
		Run: func(rc *pfio.RuntimeContext, p platform.Platform) Result {
			pct, err := diskUsagePercent(p.BasePath)
			if err != nil {
				// fall back to the filesystem root when the base path is
				// absent; the disk evidence is still useful
				pct, err = diskUsagePercent(rootPath(p))
			}
			if err != nil {
				return Result{
					Name:     "disk usage",
					Category: "filesystem",
					Status:   Info,
					Message:  fmt.Sprintf("disk usage unavailable: %v", err),
				}
			}
			return ClassifyDiskUsage(pct)
		},
	}
}

// ClassifyDiskUsage maps a usage percentage to a check result against the
// high-water threshold.
func ClassifyDiskUsage(pct float64) Result {
	if pct >= DiskHighWater {
		return Result{
			Name:     "disk usage",
			Category: "filesystem",
			Status:   Warning,
			Message:  fmt.Sprintf("disk usage %.0f%% is at or above the %.0f%% high-water threshold", pct, DiskHighWater),
			Hint:     "free space: prune old videos and temp files under the data and temp directories",
		}
	}
	return Result{
		Name:     "disk usage",
		Category: "filesystem",
		Status:   Success,
		Message:  fmt.Sprintf("disk usage %.0f%% is below the %.0f%% high-water threshold", pct, DiskHighWater),
	}
}

func rootPath(p platform.Platform) string {
	if p.Kind == platform.Windows {
		return "C:/"
	}
	return "/"
}
