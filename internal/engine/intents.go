package engine

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"sysconsole/internal/sysquery"
	"sysconsole/internal/view"
)

// The intent surface. Sort, filter, and modal edits apply synchronously on
// the calling loop; anything that touches the OS is handed to a worker and
// reported back through Events. Mutating intents return ErrPermissionDenied
// up front when the console runs without elevation, so nothing is attempted
// that cannot succeed.

// RefreshNow forces an immediate re-collection of one kind, bypassing the
// schedule and any debounce.
func (e *Engine) RefreshNow(kind sysquery.Kind) {
	e.enqueueCollect(kind)
}

// RefreshAll forces an immediate re-collection of every kind.
func (e *Engine) RefreshAll() {
	e.enqueueCollectAll()
}

// SetSort activates the given sort key on one tab.
func (e *Engine) SetSort(kind sysquery.Kind, key view.SortKey) bool {
	switch kind {
	case sysquery.KindProcess:
		return e.procs.SetSortKey(key)
	case sysquery.KindService:
		return e.svcs.SetSortKey(key)
	case sysquery.KindConnection:
		return e.conns.SetSortKey(key)
	}
	return false
}

// CycleSort advances one tab to its next sort key in the fixed cycle.
func (e *Engine) CycleSort(kind sysquery.Kind) view.SortKey {
	switch kind {
	case sysquery.KindService:
		return e.svcs.CycleSortKey()
	case sysquery.KindConnection:
		return e.conns.CycleSortKey()
	default:
		return e.procs.CycleSortKey()
	}
}

// ToggleOrder reverses one tab's sort direction.
func (e *Engine) ToggleOrder(kind sysquery.Kind) {
	switch kind {
	case sysquery.KindProcess:
		e.procs.ToggleOrder()
	case sysquery.KindService:
		e.svcs.ToggleOrder()
	case sysquery.KindConnection:
		e.conns.ToggleOrder()
	}
}

// SetFilter applies filter text immediately, on this loop iteration. Filter
// keystrokes never wait on the navigation quiet window.
func (e *Engine) SetFilter(kind sysquery.Kind, text string) {
	switch kind {
	case sysquery.KindProcess:
		e.procs.SetFilter(text)
	case sysquery.KindService:
		e.svcs.SetFilter(text)
	case sysquery.KindConnection:
		e.conns.SetFilter(text)
	}
}

// ClearFilter drops one tab's filter immediately.
func (e *Engine) ClearFilter(kind sysquery.Kind) {
	switch kind {
	case sysquery.KindProcess:
		e.procs.ClearFilter()
	case sysquery.KindService:
		e.svcs.ClearFilter()
	case sysquery.KindConnection:
		e.conns.ClearFilter()
	}
}

// Navigate queues a cursor movement for one tab. Bursts coalesce; the net
// position applies on the Tick after the quiet window elapses.
func (e *Engine) Navigate(kind sysquery.Kind, anchor view.Anchor, delta int) {
	if d, ok := e.navs[kind]; ok {
		d.Push(e.clock(), anchor, delta)
	}
}

// Tick settles any navigation bursts whose quiet window has elapsed and
// applies the net movement. Call it once per interactive loop iteration.
func (e *Engine) Tick(now time.Time) Notice {
	var n Notice
	for kind, d := range e.navs {
		batch, ok := d.Settle(now)
		if !ok {
			continue
		}
		switch kind {
		case sysquery.KindProcess:
			view.Apply(e.procs, batch)
		case sysquery.KindService:
			view.Apply(e.svcs, batch)
		case sysquery.KindConnection:
			view.Apply(e.conns, batch)
		}
		n.Refreshed = append(n.Refreshed, kind)
	}
	return n
}

func (e *Engine) requireElevation() error {
	if !e.opts.Elevated {
		return sysquery.ErrPermissionDenied
	}
	return nil
}

// KillProcess requests termination of pid. The elevation check happens here,
// synchronously, so a denied action leaves the view untouched; the kill
// itself runs on a worker.
func (e *Engine) KillProcess(pid int32) error {
	if err := e.requireElevation(); err != nil {
		return err
	}
	target := strconv.Itoa(int(pid))
	if snap, ok := e.cache.Processes(); ok {
		for _, r := range snap.Records {
			if r.PID == pid {
				target = r.Name
				break
			}
		}
	}
	enqueue(e.actionJobs, func(ctx context.Context) {
		err := e.opts.Kill(ctx, pid)
		e.emitSure(ctx, actionDone{action: ActionKillProcess, target: target, pid: pid, err: err})
	})
	return nil
}

// ToggleService starts a stopped service or stops a running one, bounded by
// TransitionTimeout. Runs on a worker since a toggle can take seconds.
func (e *Engine) ToggleService(name string) error {
	if err := e.requireElevation(); err != nil {
		return err
	}
	enqueue(e.actionJobs, func(ctx context.Context) {
		err := e.opts.Services.Toggle(ctx, name, TransitionTimeout)
		e.emitSure(ctx, actionDone{action: ActionToggleService, target: name, err: err})
	})
	return nil
}

// OpenLockModal enters the lock search workflow, pre-filling the last path
// searched this session.
func (e *Engine) OpenLockModal() *LockModal {
	e.modal = &LockModal{Phase: PhaseInput, Path: e.lastLockPath, Cursor: -1}
	return e.modal
}

// EditLockPath replaces the path buffer while the modal is in input phase.
func (e *Engine) EditLockPath(text string) {
	if e.modal != nil && e.modal.Phase == PhaseInput {
		e.modal.Path = text
	}
}

// SubmitLockSearch runs the lock collector against the entered path. A
// directory is scanned recursively with live progress; one or more file
// paths, newline separated, are checked directly. Results from a search
// superseded by a newer one or a closed modal are discarded on arrival.
func (e *Engine) SubmitLockSearch() {
	if e.modal == nil || e.modal.Phase != PhaseInput {
		return
	}
	paths := splitPaths(e.modal.Path)
	if len(paths) == 0 {
		return
	}
	e.lastLockPath = e.modal.Path
	e.modal.Phase = PhaseScanning
	e.modal.Scanned = 0
	e.modal.Found = 0
	e.scanGen++
	gen := e.scanGen

	enqueue(e.actionJobs, func(ctx context.Context) {
		if len(paths) == 1 {
			if info, err := os.Stat(paths[0]); err == nil && info.IsDir() {
				result, err := e.opts.Locks.ScanDirectory(ctx, paths[0], func(scanned, found int) {
					e.emit(scanProgress{gen: gen, scanned: scanned, found: found})
				})
				e.emitSure(ctx, scanDone{gen: gen, result: result, err: err})
				return
			}
		}
		holders, err := e.opts.Locks.FindHolders(ctx, paths)
		result := sysquery.ScanResult{
			Holders:      holders,
			FilesScanned: len(paths),
			LocksFound:   sysquery.CountLockedPaths(holders),
		}
		e.emitSure(ctx, scanDone{gen: gen, result: result, err: err})
	})
}

// NavigateLockResults moves the result selection. Modal navigation applies
// immediately; the list is small and repopulated per search.
func (e *Engine) NavigateLockResults(delta int) {
	if e.modal != nil && e.modal.Phase == PhaseResults {
		e.modal.move(delta)
	}
}

// KillLockProcess terminates one lock-holding process. On success the row
// disappears from the results and the lock count drops.
func (e *Engine) KillLockProcess(pid int32) error {
	if err := e.requireElevation(); err != nil {
		return err
	}
	if e.modal == nil || e.modal.Phase != PhaseResults {
		return nil
	}
	target := strconv.Itoa(int(pid))
	for _, r := range e.modal.Results {
		if r.PID == pid {
			target = r.Name
			break
		}
	}
	enqueue(e.actionJobs, func(ctx context.Context) {
		err := e.opts.Kill(ctx, pid)
		e.emitSure(ctx, actionDone{action: ActionKillLockHolder, target: target, pid: pid, err: err})
	})
	return nil
}

// CloseModal discards the whole workflow state, whatever phase it is in. Any
// in-flight scan result will be dropped when it arrives.
func (e *Engine) CloseModal() {
	e.modal = nil
}

func splitPaths(buffer string) []string {
	var paths []string
	for _, line := range strings.Split(buffer, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
