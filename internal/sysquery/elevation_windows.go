//go:build windows

package sysquery

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/windows"
)

// CallerElevated reports whether this process holds an elevated token.
func CallerElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// processElevated reports best-effort whether p runs under a privileged
// account. Opening another process's token usually needs elevation itself,
// so this falls back to the account name.
func processElevated(ctx context.Context, p *process.Process) bool {
	user, err := p.UsernameWithContext(ctx)
	if err != nil {
		return false
	}
	user = strings.ToUpper(user)
	return strings.HasSuffix(user, "\\SYSTEM") ||
		strings.HasSuffix(user, "\\LOCAL SERVICE") ||
		strings.HasSuffix(user, "\\NETWORK SERVICE") ||
		strings.Contains(user, "ADMINISTRATOR")
}
