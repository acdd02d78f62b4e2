package artifact

import (
	"errors"
	"os"
	"strings"
)

// proxyFlag marks browser flag lines that force a proxy.
const proxyFlag = "--proxy-server"

// StripProxyFlags removes every line containing "--proxy-server" from the
// flag file at path and returns how many were removed. All other lines are
// kept byte for byte. The file is rewritten in place, so a symlink keeps
// pointing at its target and the target's inode, mode and owner survive. A
// missing file, or one without a matching line, is left untouched.
func StripProxyFlags(path string) (int, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return 0, err
	}

	lines := strings.SplitAfter(string(data), "\n")
	kept := lines[:0]
	removed := 0
	for _, line := range lines {
		if strings.Contains(line, proxyFlag) {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := os.WriteFile(path, []byte(strings.Join(kept, "")), info.Mode().Perm()); err != nil {
		return 0, err
	}
	return removed, nil
}

// CountProxyFlags reports whether the flag file exists and how many proxy
// lines it holds.
func CountProxyFlags(path string) (bool, int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, os.ErrNotExist) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, proxyFlag) {
			n++
		}
	}
	return true, n, nil
}
