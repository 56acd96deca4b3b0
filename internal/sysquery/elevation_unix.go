//go:build !windows

package sysquery

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// CallerElevated reports whether this process runs with root privileges.
func CallerElevated() bool {
	return os.Geteuid() == 0
}

// processElevated reports best-effort whether p runs as root (effective uid 0).
func processElevated(ctx context.Context, p *process.Process) bool {
	uids, err := p.UidsWithContext(ctx)
	if err != nil || len(uids) < 2 {
		return false
	}
	// uids: real, effective, saved.
	return uids[1] == 0
}
