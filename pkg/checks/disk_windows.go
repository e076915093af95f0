// pkg/checks/disk_windows.go

//go:build windows

package checks

import (
	cerr "github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
)

func diskUsagePercent(path string) (float64, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, cerr.Wrapf(err, "encode path %s", path)
	}
	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(p, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0, cerr.Wrapf(err, "disk space query for %s", path)
	}
	if totalBytes == 0 {
		return 0, cerr.Newf("disk space query for %s reported zero size", path)
	}
	used := totalBytes - totalFreeBytes
	return float64(used) / float64(totalBytes) * 100, nil
}
