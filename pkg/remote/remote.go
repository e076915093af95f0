// pkg/remote/remote.go

// Package remote provides the remote execution capability consumed by the
// deployment flow: run a command on a target host, copy files to it.
// Transport failures are surfaced per operation and never retried here.
package remote

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/execute"
	"github.com/monaylabs/postflight/pkg/pferr"
	"github.com/monaylabs/postflight/pkg/pfio"
)

// Executor runs commands and copies files on a target host.
type Executor interface {
	RunCommand(rc *pfio.RuntimeContext, host string, argv []string) (stdout string, exitCode int, err error)
	CopyFile(rc *pfio.RuntimeContext, localPath, host, remotePath string) error
	CopyDirectory(rc *pfio.RuntimeContext, localDir, host, remoteDir string) error
}

// SSHExecutor shells out to the system ssh/scp binaries.
type SSHExecutor struct {
	// User optionally overrides the login user.
	User string
	// IdentityFile optionally selects a private key.
	IdentityFile string
	// Timeout bounds each remote operation; zero means one minute.
	Timeout time.Duration
}

var _ Executor = (*SSHExecutor)(nil)

func (e *SSHExecutor) target(host string) string {
	if e.User != "" {
		return e.User + "@" + host
	}
	return host
}

func (e *SSHExecutor) baseArgs() []string {
	args := []string{"-o", "BatchMode=yes", "-o", "ConnectTimeout=10"}
	if e.IdentityFile != "" {
		args = append(args, "-i", e.IdentityFile)
	}
	return args
}

func (e *SSHExecutor) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return time.Minute
}

// sshTransportExit is reserved by ssh(1) for its own failures
// (unreachable host, auth failure, hung connection). A remote command
// can only report 0-254 through ssh.
const sshTransportExit = 255

// RunCommand executes argv on the host over SSH and returns combined
// output plus the remote exit code.
func (e *SSHExecutor) RunCommand(rc *pfio.RuntimeContext, host string, argv []string) (string, int, error) {
	args := append(e.baseArgs(), e.target(host), "--", remoteCommand(argv))

	rc.Log.Debug("Running remote command",
		zap.String("host", host),
		zap.String("command", strings.Join(argv, " ")))

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "ssh",
		Args:    args,
		Capture: true,
		Timeout: e.timeout(),
		Logger:  rc.Log,
	})
	return classifyRunError(out, err, host)
}

// classifyRunError separates transport failures from remote command
// exits. ssh's own exit 255 is a transport failure; 1-254 is the remote
// command's own status and is returned as data.
func classifyRunError(out string, err error, host string) (string, int, error) {
	if err == nil {
		return out, 0, nil
	}
	code := execute.ExitCode(err)
	switch {
	case code == sshTransportExit:
		return out, code, pferr.Transport(err, "connection to "+host)
	case code > 0:
		// remote command failed; the transport itself worked
		return out, code, nil
	default:
		return out, -1, pferr.Transport(err, "command execution on "+host)
	}
}

// remoteCommand flattens argv into a single pre-quoted string. ssh joins
// its trailing arguments with spaces and hands the result to the remote
// login shell for re-parsing, so each word must be quoted to survive the
// round trip as the argv it started out as.
func remoteCommand(argv []string) string {
	quoted := make([]string, len(argv))
	for i, w := range argv {
		quoted[i] = shellQuote(w)
	}
	return strings.Join(quoted, " ")
}

// shellQuote single-quotes a word for a POSIX shell unless it consists
// entirely of characters no shell interprets.
func shellQuote(w string) string {
	if w == "" {
		return "''"
	}
	for _, r := range w {
		safe := r >= 'a' && r <= 'z' ||
			r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' ||
			strings.ContainsRune("_@%+=:,./-", r)
		if !safe {
			return "'" + strings.ReplaceAll(w, "'", `'\''`) + "'"
		}
	}
	return w
}

// CopyFile copies a local file to the host via scp.
func (e *SSHExecutor) CopyFile(rc *pfio.RuntimeContext, localPath, host, remotePath string) error {
	args := append(e.baseArgs(), localPath, e.target(host)+":"+remotePath)

	rc.Log.Info("Copying file to host",
		zap.String("host", host),
		zap.String("local", localPath),
		zap.String("remote", remotePath))

	if _, err := execute.Run(rc.Ctx, execute.Options{
		Command: "scp",
		Args:    args,
		Capture: true,
		Timeout: e.timeout(),
		Logger:  rc.Log,
	}); err != nil {
		return pferr.Transport(err, "file copy to "+host)
	}
	return nil
}

// CopyDirectory copies a local directory tree to the host via scp -r.
func (e *SSHExecutor) CopyDirectory(rc *pfio.RuntimeContext, localDir, host, remoteDir string) error {
	args := append(e.baseArgs(), "-r", localDir, e.target(host)+":"+remoteDir)

	rc.Log.Info("Copying directory to host",
		zap.String("host", host),
		zap.String("local", localDir),
		zap.String("remote", remoteDir))

	if _, err := execute.Run(rc.Ctx, execute.Options{
		Command: "scp",
		Args:    args,
		Capture: true,
		Timeout: e.timeout(),
		Logger:  rc.Log,
	}); err != nil {
		return pferr.Transport(err, "directory copy to "+host)
	}
	return nil
}
