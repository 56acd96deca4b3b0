//go:build !linux && !windows

package sysquery

import (
	"context"
	"errors"
)

var errServicesUnsupported = errors.New("service management not supported on this platform")

func enumerateServices(_ context.Context) ([]ServiceRecord, error) {
	return nil, errServicesUnsupported
}

func queryServiceStatus(_ context.Context, _ string) (ServiceStatus, error) {
	return StatusUnknown, errServicesUnsupported
}

func startService(_ context.Context, _ string) error { return errServicesUnsupported }

func stopService(_ context.Context, _ string) error { return errServicesUnsupported }
