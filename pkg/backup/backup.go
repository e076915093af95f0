// pkg/backup/backup.go

// Package backup performs scoped backup-before-overwrite and
// restore-on-demand for the runtime configuration file. A single backup
// slot is retained at a sibling path; each backup supersedes the previous
// one.
package backup

import (
	"io"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/monaylabs/postflight/pkg/pferr"
	"github.com/monaylabs/postflight/pkg/pfio"
)

// Suffixes for the sibling backup slot and the advisory lock.
const (
	SlotSuffix = ".backup"
	lockSuffix = ".lock"
)

// Manager owns the backup slot for one configuration path.
type Manager struct {
	Path string
}

func NewManager(path string) *Manager {
	return &Manager{Path: path}
}

// SlotPath returns the sibling backup location.
func (m *Manager) SlotPath() string { return m.Path + SlotSuffix }

func (m *Manager) lockPath() string { return m.Path + lockSuffix }

// BackupThenReplace copies the existing file into the backup slot, then
// atomically writes data to the path with owner-only permissions. The
// sequence is all-or-nothing: if the backup copy fails the replacement
// never runs, and a failed write leaves the slot available for Restore.
// Readers observe either the old document or the new one, never a partial
// write.
func (m *Manager) BackupThenReplace(rc *pfio.RuntimeContext, data []byte) error {
	unlock, err := m.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	info, statErr := os.Stat(m.Path)
	switch {
	case statErr == nil:
		if err := copyPreservingMode(m.Path, m.SlotPath(), info.Mode()); err != nil {
			return pferr.Backup(err,
				"check free space and permissions on "+filepath.Dir(m.Path))
		}
		rc.Log.Info("Backed up current configuration",
			zap.String("path", m.Path),
			zap.String("slot", m.SlotPath()))
	case os.IsNotExist(statErr):
		rc.Log.Warn("No existing configuration to back up",
			zap.String("path", m.Path))
	default:
		return pferr.Backup(statErr, "check permissions on "+m.Path)
	}

	if err := atomicWrite(m.Path, data, 0o600); err != nil {
		return pferr.Backup(err,
			"the previous configuration is preserved; run 'postflight restore-backup' if needed")
	}

	rc.Log.Info("Replaced configuration",
		zap.String("path", m.Path),
		zap.Int("bytes", len(data)))
	return nil
}

// Restore copies the backup slot back onto the path verbatim, including
// permissions.
func (m *Manager) Restore(rc *pfio.RuntimeContext) error {
	unlock, err := m.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	info, err := os.Stat(m.SlotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return pferr.NoBackup(m.SlotPath())
		}
		return pferr.Backup(err, "check permissions on "+m.SlotPath())
	}

	if err := copyPreservingMode(m.SlotPath(), m.Path, info.Mode()); err != nil {
		return pferr.Backup(err, "check free space and permissions on "+filepath.Dir(m.Path))
	}

	rc.Log.Info("Restored configuration from backup",
		zap.String("slot", m.SlotPath()),
		zap.String("path", m.Path))
	return nil
}

// acquireLock serializes backup/replace sequences against the same target
// path. Two concurrent sequences could corrupt the single backup slot.
func (m *Manager) acquireLock() (func(), error) {
	f, err := os.OpenFile(m.lockPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, pferr.Backup(
				cerr.Newf("lock file %s exists", m.lockPath()),
				"another postflight invocation may be running; remove the lock file if it is stale")
		}
		return nil, pferr.Backup(err, "check permissions on "+filepath.Dir(m.Path))
	}
	f.Close()
	return func() { _ = os.Remove(m.lockPath()) }, nil
}

// copyPreservingMode writes src's bytes to dst with the given mode, going
// through a temp file and rename so dst is never observed half-written.
func copyPreservingMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	return atomicWrite(dst, data, mode.Perm())
}

// atomicWrite writes data to a temp file in the target directory, sets the
// mode, then renames into place.
func atomicWrite(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
