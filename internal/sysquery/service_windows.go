//go:build windows

package sysquery

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

func enumerateServices(_ context.Context) ([]ServiceRecord, error) {
	m, err := mgr.Connect()
	if err != nil {
		return nil, classifyWinError(err)
	}
	defer m.Disconnect()

	names, err := m.ListServices()
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	records := make([]ServiceRecord, 0, len(names))
	for _, name := range names {
		rec, err := queryService(m, name)
		if err != nil {
			// A single unreadable service does not abort the sweep.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func queryService(m *mgr.Mgr, name string) (ServiceRecord, error) {
	s, err := m.OpenService(name)
	if err != nil {
		return ServiceRecord{}, err
	}
	defer s.Close()

	rec := ServiceRecord{
		Name:        name,
		DisplayName: name,
		Status:      StatusUnknown,
		StartType:   StartUnknown,
	}

	if status, err := s.Query(); err == nil {
		rec.Status = scmStatus(status.State)
		if rec.Status == StatusRunning {
			rec.PID = int32(status.ProcessId)
		}
	}
	if cfg, err := s.Config(); err == nil {
		if cfg.DisplayName != "" {
			rec.DisplayName = cfg.DisplayName
		}
		rec.StartType = scmStartType(cfg.StartType)
	}
	return rec, nil
}

func scmStatus(state svc.State) ServiceStatus {
	switch state {
	case svc.Running, svc.ContinuePending:
		return StatusRunning
	case svc.StartPending:
		return StatusStartPending
	case svc.StopPending:
		return StatusStopPending
	case svc.Paused, svc.PausePending:
		return StatusPaused
	case svc.Stopped:
		return StatusStopped
	default:
		return StatusUnknown
	}
}

func scmStartType(startType uint32) StartType {
	switch startType {
	case mgr.StartAutomatic:
		return StartAutomatic
	case mgr.StartManual:
		return StartManual
	case mgr.StartDisabled:
		return StartDisabled
	default:
		return StartUnknown
	}
}

func queryServiceStatus(_ context.Context, name string) (ServiceStatus, error) {
	m, err := mgr.Connect()
	if err != nil {
		return StatusUnknown, classifyWinError(err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if err != nil {
		return StatusUnknown, classifyWinError(err)
	}
	defer s.Close()

	status, err := s.Query()
	if err != nil {
		return StatusUnknown, classifyWinError(err)
	}
	return scmStatus(status.State), nil
}

func startService(_ context.Context, name string) error {
	return controlService(name, func(s *mgr.Service) error {
		return s.Start()
	})
}

func stopService(_ context.Context, name string) error {
	return controlService(name, func(s *mgr.Service) error {
		_, err := s.Control(svc.Stop)
		return err
	})
}

func controlService(name string, control func(*mgr.Service) error) error {
	m, err := mgr.Connect()
	if err != nil {
		return classifyWinError(err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if err != nil {
		return classifyWinError(err)
	}
	defer s.Close()

	if err := control(s); err != nil {
		return classifyWinError(err)
	}
	return nil
}

func classifyWinError(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return ErrPermissionDenied
	case errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST):
		return ErrNotFound
	default:
		return err
	}
}
