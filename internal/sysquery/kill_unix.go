//go:build !windows

package sysquery

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func killProcess(_ context.Context, pid int32) error {
	err := unix.Kill(int(pid), unix.SIGKILL)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EPERM):
		return ErrPermissionDenied
	case errors.Is(err, unix.ESRCH):
		return ErrNotFound
	default:
		return fmt.Errorf("kill pid %d: %w", pid, err)
	}
}
