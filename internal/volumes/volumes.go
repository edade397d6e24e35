// Package volumes enumerates mounted filesystems to use as default scan
// roots when the caller supplies none. A thin OS query; no scan logic here.
package volumes

import (
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Filesystems that hold no user files worth scanning.
var pseudoFstypes = map[string]bool{
	"proc":        true,
	"sysfs":       true,
	"devfs":       true,
	"devtmpfs":    true,
	"devpts":      true,
	"cgroup":      true,
	"cgroup2":     true,
	"overlay":     true,
	"squashfs":    true,
	"autofs":      true,
	"tracefs":     true,
	"debugfs":     true,
	"securityfs":  true,
	"fusectl":     true,
	"mqueue":      true,
	"hugetlbfs":   true,
	"binfmt_misc": true,
}

// Roots returns the mount points of real, writable volumes.
func Roots() ([]string, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}

	var roots []string
	seen := make(map[string]bool)
	for _, p := range parts {
		if pseudoFstypes[strings.ToLower(p.Fstype)] {
			continue
		}
		if isReadOnly(p.Opts) {
			continue
		}
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true
		roots = append(roots, p.Mountpoint)
	}
	return roots, nil
}

// FreeBytes returns free space on the filesystem holding path.
func FreeBytes(path string) (int64, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return int64(u.Free), nil
}

func isReadOnly(opts []string) bool {
	for _, o := range opts {
		if o == "ro" {
			return true
		}
	}
	return false
}
