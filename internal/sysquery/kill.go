package sysquery

import "context"

// KillProcess requests termination of pid. ErrPermissionDenied means the
// caller lacks elevation; ErrNotFound means the pid already exited, a benign
// race since the end state matches intent.
func KillProcess(ctx context.Context, pid int32) error {
	return killProcess(ctx, pid)
}
