//go:build linux

package sysquery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Services are driven through systemctl rather than the D-Bus API: the tool
// is on every systemd host and one invocation enumerates everything we need.

func enumerateServices(ctx context.Context) ([]ServiceRecord, error) {
	out, err := exec.CommandContext(ctx, "systemctl", "show", "*.service",
		"--type=service",
		"--property=Id,Description,ActiveState,SubState,MainPID,UnitFileState").Output()
	if err != nil {
		return nil, fmt.Errorf("systemctl show: %w", err)
	}

	var records []ServiceRecord
	// Output is one property block per unit, blank-line separated.
	for _, block := range bytes.Split(out, []byte("\n\n")) {
		rec, ok := parseServiceBlock(string(block))
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func parseServiceBlock(block string) (ServiceRecord, bool) {
	props := make(map[string]string, 8)
	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, "=")
		if ok {
			props[key] = value
		}
	}

	name := strings.TrimSuffix(props["Id"], ".service")
	if name == "" {
		return ServiceRecord{}, false
	}

	rec := ServiceRecord{
		Name:        name,
		DisplayName: props["Description"],
		Status:      unitStatus(props["ActiveState"], props["SubState"]),
		StartType:   unitStartType(props["UnitFileState"]),
	}
	if rec.DisplayName == "" {
		rec.DisplayName = name
	}
	if rec.Status == StatusRunning {
		if pid, err := strconv.Atoi(props["MainPID"]); err == nil && pid > 0 {
			rec.PID = int32(pid)
		}
	}
	return rec, true
}

func unitStatus(active, sub string) ServiceStatus {
	switch active {
	case "active", "reloading":
		if sub == "exited" {
			return StatusStopped
		}
		return StatusRunning
	case "activating":
		return StatusStartPending
	case "deactivating":
		return StatusStopPending
	case "inactive", "failed":
		return StatusStopped
	default:
		return StatusUnknown
	}
}

func unitStartType(fileState string) StartType {
	switch fileState {
	case "enabled", "enabled-runtime", "generated", "alias":
		return StartAutomatic
	case "static", "disabled", "indirect", "linked", "linked-runtime":
		return StartManual
	case "masked", "masked-runtime":
		return StartDisabled
	default:
		return StartUnknown
	}
}

func queryServiceStatus(ctx context.Context, name string) (ServiceStatus, error) {
	out, err := exec.CommandContext(ctx, "systemctl", "is-active", name+".service").Output()
	state := strings.TrimSpace(string(out))
	// is-active exits non-zero for inactive units; the printed state still
	// tells us what we need.
	switch state {
	case "active":
		return StatusRunning, nil
	case "activating":
		return StatusStartPending, nil
	case "deactivating":
		return StatusStopPending, nil
	case "inactive", "failed":
		return StatusStopped, nil
	}
	if err != nil {
		return StatusUnknown, classifySystemctlError(err)
	}
	return StatusUnknown, nil
}

func startService(ctx context.Context, name string) error {
	return runSystemctl(ctx, "start", name)
}

func stopService(ctx context.Context, name string) error {
	return runSystemctl(ctx, "stop", name)
}

func runSystemctl(ctx context.Context, verb, name string) error {
	err := exec.CommandContext(ctx, "systemctl", verb, name+".service").Run()
	if err != nil {
		return classifySystemctlError(err)
	}
	return nil
}

func classifySystemctlError(err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	stderr := strings.ToLower(string(exitErr.Stderr))
	switch {
	case strings.Contains(stderr, "access denied"),
		strings.Contains(stderr, "permission denied"),
		strings.Contains(stderr, "authentication required"):
		return ErrPermissionDenied
	case strings.Contains(stderr, "not found"),
		strings.Contains(stderr, "not loaded"):
		return ErrNotFound
	default:
		return err
	}
}
