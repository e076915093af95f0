package backup

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monaylabs/postflight/pkg/pferr"
	"github.com/monaylabs/postflight/pkg/pfio"
)

func testRC(t *testing.T) *pfio.RuntimeContext {
	t.Helper()
	return pfio.NewContext(context.Background(), "backup-test")
}

func TestBackupThenReplaceAndRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	original := []byte("CPU_LIMIT=95%\nDEBUG=true\n")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	m := NewManager(path)
	rc := testRC(t)

	require.NoError(t, m.BackupThenReplace(rc, []byte("CPU_LIMIT=50%\nDEBUG=false\n")))

	replaced, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CPU_LIMIT=50%\nDEBUG=false\n", string(replaced))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, m.Restore(rc))

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, restored, "restore must return the pre-update bytes")
}

func TestBackupSlotIsSingleMostRecent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEN=1\n"), 0o644))

	m := NewManager(path)
	rc := testRC(t)

	require.NoError(t, m.BackupThenReplace(rc, []byte("GEN=2\n")))
	require.NoError(t, m.BackupThenReplace(rc, []byte("GEN=3\n")))

	slot, err := os.ReadFile(m.SlotPath())
	require.NoError(t, err)
	assert.Equal(t, "GEN=2\n", string(slot), "second backup must supersede the first")

	require.NoError(t, m.Restore(rc))
	now, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GEN=2\n", string(now))
}

func TestRestoreWithoutBackupFails(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, ".env"))

	err := m.Restore(testRC(t))
	require.Error(t, err)
	assert.True(t, pferr.IsNoBackup(err))
}

func TestFailedBackupLeavesOriginalUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	original := []byte("CPU_LIMIT=95%\n")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	m := NewManager(path)
	// A directory at the slot path makes the backup copy fail.
	require.NoError(t, os.Mkdir(m.SlotPath(), 0o755))

	err := m.BackupThenReplace(testRC(t), []byte("CPU_LIMIT=50%\n"))
	require.Error(t, err)
	assert.True(t, pferr.IsBackup(err))

	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, original, content, "replacement must not run when the backup copy fails")
}

func TestMissingOriginalStillReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	m := NewManager(path)
	require.NoError(t, m.BackupThenReplace(testRC(t), []byte("DEBUG=false\n")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG=false\n", string(content))

	_, err = os.Stat(m.SlotPath())
	assert.True(t, os.IsNotExist(err), "no slot should exist when there was nothing to back up")
}

func TestConcurrentInvocationIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("A=1\n"), 0o644))

	m := NewManager(path)
	require.NoError(t, os.WriteFile(path+".lock", nil, 0o600))

	err := m.BackupThenReplace(testRC(t), []byte("A=2\n"))
	require.Error(t, err)
	assert.True(t, pferr.IsBackup(err))
	assert.Contains(t, err.Error(), "lock")
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("A=1\n"), 0o644))

	m := NewManager(path)
	require.NoError(t, m.BackupThenReplace(testRC(t), []byte("A=2\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{".env", ".env.backup"}, names)
}
