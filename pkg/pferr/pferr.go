// pkg/pferr/pferr.go

package pferr

import (
	cerr "github.com/cockroachdb/errors"
)

// Sentinel markers for the failure domains of postflight. Callers wrap a
// concrete cause with one of the constructors below; command code tests
// with the Is* helpers and maps to an exit code in one place.
var (
	// ErrPlatformUnresolved aborts the whole run. Nothing downstream can
	// operate without a resolved platform.
	ErrPlatformUnresolved = cerr.New("deployment platform could not be resolved")

	// ErrGeneration is fatal to update-config only.
	ErrGeneration = cerr.New("production profile generation failed")

	// ErrBackup is fatal to the backup/replace and restore commands.
	ErrBackup = cerr.New("configuration backup operation failed")

	// ErrNoBackup means the single backup slot is empty.
	ErrNoBackup = cerr.New("no configuration backup exists")

	// ErrTransport marks a failed remote operation. Surfaced per
	// operation, never retried here.
	ErrTransport = cerr.New("remote transport failure")

	// ErrCheckExecution marks an internal failure inside one validation
	// check. It downgrades that check to ERROR status and must never
	// propagate to sibling checks.
	ErrCheckExecution = cerr.New("validation check execution failed")
)

// Generation wraps err as a profile generation failure with a remediation hint.
func Generation(err error, hint string) error {
	return cerr.WithHint(cerr.Mark(err, ErrGeneration), hint)
}

// Generationf builds a new generation failure from a format string.
func Generationf(hint, format string, args ...interface{}) error {
	return cerr.WithHint(cerr.Mark(cerr.Newf(format, args...), ErrGeneration), hint)
}

// Backup wraps err as a backup/replace failure with a remediation hint.
func Backup(err error, hint string) error {
	return cerr.WithHint(cerr.Mark(err, ErrBackup), hint)
}

// NoBackup reports an empty backup slot for the given path.
func NoBackup(path string) error {
	return cerr.WithHint(
		cerr.Mark(cerr.Newf("no backup found at %s", path), ErrNoBackup),
		"run 'postflight update-config' first; it populates the backup slot before replacing the file")
}

// Transport wraps a failed remote operation.
func Transport(err error, operation string) error {
	return cerr.WithHint(
		cerr.Mark(cerr.Wrapf(err, "remote %s failed", operation), ErrTransport),
		"verify SSH connectivity to the target host and retry the operation")
}

// PlatformUnresolved reports an unrecognized host platform.
func PlatformUnresolved(goos string) error {
	return cerr.WithHint(
		cerr.Mark(cerr.Newf("unsupported platform %q", goos), ErrPlatformUnresolved),
		"postflight supports Linux, macOS and Windows targets only")
}

func IsGeneration(err error) bool         { return cerr.Is(err, ErrGeneration) }
func IsBackup(err error) bool             { return cerr.Is(err, ErrBackup) }
func IsNoBackup(err error) bool           { return cerr.Is(err, ErrNoBackup) }
func IsTransport(err error) bool          { return cerr.Is(err, ErrTransport) }
func IsPlatformUnresolved(err error) bool { return cerr.Is(err, ErrPlatformUnresolved) }

// ExitCode maps an error to the process exit code. The three-tier policy
// (0 success, 1 error, 2 warning-only) is owned by the checks report;
// every hard failure, regardless of domain, exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// UserMessage renders err for the terminal: the failure message plus all
// attached remediation hints, kept distinct from the raw cause chain.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, hint := range cerr.GetAllHints(err) {
		msg += "\nRemediation: " + hint
	}
	return msg
}
