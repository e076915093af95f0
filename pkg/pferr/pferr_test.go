// pkg/pferr/pferr_test.go

package pferr

import (
	"os"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkersSurviveWrapping(t *testing.T) {
	base := Generation(os.ErrPermission, "check permissions")
	wrapped := cerr.Wrap(base, "while updating configuration")

	assert.True(t, IsGeneration(wrapped))
	assert.False(t, IsBackup(wrapped))
	assert.ErrorIs(t, wrapped, os.ErrPermission)
}

func TestNoBackupCarriesSlotPath(t *testing.T) {
	err := NoBackup("/opt/monay/.env.backup")
	require.Error(t, err)
	assert.True(t, IsNoBackup(err))
	assert.Contains(t, err.Error(), "/opt/monay/.env.backup")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(Generation(os.ErrNotExist, "hint")))
	assert.Equal(t, 1, ExitCode(Transport(os.ErrDeadlineExceeded, "copy")))
	assert.Equal(t, 1, ExitCode(cerr.New("any hard failure")))
}

func TestUserMessageIncludesEveryHint(t *testing.T) {
	err := Backup(os.ErrPermission, "check permissions on /opt/monay")
	err = cerr.WithHint(err, "rerun with elevated privileges")

	msg := UserMessage(err)
	assert.Contains(t, msg, "Remediation: check permissions on /opt/monay")
	assert.Contains(t, msg, "Remediation: rerun with elevated privileges")
}

func TestUserMessageNil(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
}

func TestPlatformUnresolvedNamesGOOS(t *testing.T) {
	err := PlatformUnresolved("plan9")
	assert.True(t, IsPlatformUnresolved(err))
	assert.Contains(t, err.Error(), "plan9")
}
