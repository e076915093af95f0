// pkg/checks/disk_unix.go

//go:build !windows

package checks

import (
	cerr "github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// diskUsagePercent returns used space as a percentage of the filesystem
// containing path.
func diskUsagePercent(path string) (float64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, cerr.Wrapf(err, "statfs %s", path)
	}
	total := stat.Blocks * uint64(stat.Bsize)
	if total == 0 {
		return 0, cerr.Newf("statfs %s reported zero size", path)
	}
	free := stat.Bavail * uint64(stat.Bsize)
	used := total - free
	return float64(used) / float64(total) * 100, nil
}
