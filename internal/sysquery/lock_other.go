//go:build !linux && !windows

package sysquery

import (
	"context"
	"errors"
)

var errLocksUnsupported = errors.New("lock detection not supported on this platform")

func lockHolders(_ context.Context, _ []string) ([]LockRecord, error) {
	return nil, errLocksUnsupported
}
