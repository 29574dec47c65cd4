//go:build linux

package sysinfo

import "golang.org/x/sys/unix"

// diskUsage returns the used share of the filesystem at path, in percent,
// computed like df: used / (used + available to unprivileged users).
func diskUsage(path string) (float64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}

	used := st.Blocks - st.Bfree
	denom := used + st.Bavail
	if denom == 0 {
		return 0, nil
	}
	return float64(used) / float64(denom) * 100, nil
}
