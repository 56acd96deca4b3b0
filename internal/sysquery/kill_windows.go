//go:build windows

package sysquery

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

func killProcess(_ context.Context, pid int32) error {
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		switch {
		case errors.Is(err, windows.ERROR_ACCESS_DENIED):
			return ErrPermissionDenied
		case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
			// OpenProcess reports an exited pid as an invalid parameter.
			return ErrNotFound
		default:
			return fmt.Errorf("open pid %d: %w", pid, err)
		}
	}
	defer windows.CloseHandle(handle)

	if err := windows.TerminateProcess(handle, 1); err != nil {
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("terminate pid %d: %w", pid, err)
	}
	return nil
}
