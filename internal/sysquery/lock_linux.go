//go:build linux

package sysquery

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// lockHolders walks /proc/<pid>/fd once and matches every open file
// descriptor against the target set. This is one pass over the process table
// regardless of how many paths are being checked.
func lockHolders(ctx context.Context, paths []string) ([]LockRecord, error) {
	targets := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		targets[filepath.Clean(p)] = struct{}{}
	}

	procEntries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}

	var holders []LockRecord
	for _, entry := range procEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		fdDir := filepath.Join("/proc", entry.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			// Other users' processes are unreadable without elevation.
			continue
		}

		var name string
		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}
			if _, hit := targets[link]; !hit {
				continue
			}
			if name == "" {
				name = processComm(pid)
			}
			holders = append(holders, LockRecord{
				Path: link,
				PID:  int32(pid),
				Name: name,
			})
		}
	}
	return holders, nil
}

func processComm(pid int) string {
	comm, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "comm"))
	if err != nil {
		return "pid " + strconv.Itoa(pid)
	}
	return strings.TrimSpace(string(comm))
}
