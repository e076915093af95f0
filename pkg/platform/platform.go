// pkg/platform/platform.go

package platform

import (
	"runtime"
	"strings"

	"github.com/monaylabs/postflight/pkg/pferr"
)

// Kind classifies the deployment platform.
type Kind int

const (
	POSIX Kind = iota
	Windows
)

func (k Kind) String() string {
	switch k {
	case POSIX:
		return "posix"
	case Windows:
		return "windows"
	default:
		return "unknown"
	}
}

// Service management mechanisms.
const (
	ManagerSystemd = "systemd"
	// ManagerManual means no managed service daemon exists and restarts
	// are a user-triggered action.
	ManagerManual = "manual"
)

// Platform carries every host-specific convention the rest of postflight
// needs: the canonical base installation path, path separator, executable
// suffix and service-management mechanism. Resolve it once per run and
// thread the value explicitly; never re-derive it mid-run.
type Platform struct {
	Kind           Kind
	BasePath       string
	Separator      string
	ExeSuffix      string
	ServiceManager string
}

// Resolve determines the platform from the host OS identifier.
func Resolve() (Platform, error) {
	return ResolveFor(runtime.GOOS)
}

// ResolveFor is the testable seam behind Resolve. It is a pure function of
// the OS identifier and fails only when no platform can be determined.
func ResolveFor(goos string) (Platform, error) {
	switch goos {
	case "linux", "darwin", "freebsd", "openbsd", "netbsd":
		return Platform{
			Kind:           POSIX,
			BasePath:       "/opt/monay",
			Separator:      "/",
			ExeSuffix:      "",
			ServiceManager: ManagerSystemd,
		}, nil
	case "windows":
		// The deployment layout uses forward slashes on Windows as well;
		// the Win32 API accepts both.
		return Platform{
			Kind:           Windows,
			BasePath:       "C:/opt/monay",
			Separator:      "/",
			ExeSuffix:      ".exe",
			ServiceManager: ManagerManual,
		}, nil
	default:
		return Platform{}, pferr.PlatformUnresolved(goos)
	}
}

// IsPOSIX reports whether the platform follows POSIX conventions.
func (p Platform) IsPOSIX() bool { return p.Kind == POSIX }

// Join builds an absolute path rooted at the base installation path.
func (p Platform) Join(parts ...string) string {
	if len(parts) == 0 {
		return p.BasePath
	}
	return p.BasePath + p.Separator + strings.Join(parts, p.Separator)
}

// VenvPython returns the interpreter path inside a virtual runtime
// directory under the base path.
func (p Platform) VenvPython(venv string) string {
	if p.Kind == Windows {
		return p.Join(venv, "Scripts", "python"+p.ExeSuffix)
	}
	return p.Join(venv, "bin", "python")
}

// ConfigPath returns the runtime configuration file location.
func (p Platform) ConfigPath() string {
	return p.Join(".env")
}

// LogDir returns the application log directory under the base path.
func (p Platform) LogDir() string {
	return p.Join("logs")
}

// ServiceUnitPath returns where the service definition is expected.
func (p Platform) ServiceUnitPath(unit string) string {
	if p.Kind == Windows {
		return p.Join(unit)
	}
	return "/etc/systemd/system/" + unit
}
