package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sysconsole/internal/sysquery"
)

// Event is an opaque message a worker hands back to the interactive loop.
// Receive from Events and pass each one to Apply; nothing else touches them.
type Event interface{ isEvent() }

type processesCollected struct {
	records []sysquery.ProcessRecord
	err     error
	taken   time.Time
}

type servicesCollected struct {
	records []sysquery.ServiceRecord
	err     error
	taken   time.Time
}

type connectionsCollected struct {
	records []sysquery.ConnectionRecord
	err     error
	taken   time.Time
}

// Action identifies one privileged mutation for status and audit reporting.
type Action int

const (
	ActionKillProcess Action = iota
	ActionToggleService
	ActionKillLockHolder
)

func (a Action) String() string {
	switch a {
	case ActionKillProcess:
		return "kill process"
	case ActionToggleService:
		return "toggle service"
	case ActionKillLockHolder:
		return "kill lock holder"
	default:
		return "action"
	}
}

type actionDone struct {
	action Action
	target string // display name of what was acted on
	pid    int32
	err    error
}

type scanProgress struct {
	gen     int
	scanned int
	found   int
}

type scanDone struct {
	gen    int
	result sysquery.ScanResult
	err    error
}

func (processesCollected) isEvent()   {}
func (servicesCollected) isEvent()    {}
func (connectionsCollected) isEvent() {}
func (actionDone) isEvent()           {}
func (scanProgress) isEvent()         {}
func (scanDone) isEvent()             {}

// Notice tells the caller what visibly changed after applying an event, so a
// renderer knows whether to redraw and what status line to show.
type Notice struct {
	Refreshed []sysquery.Kind
	Status    string
	IsError   bool
	Modal     bool
}

func (n Notice) Empty() bool {
	return len(n.Refreshed) == 0 && n.Status == "" && !n.Modal
}

// Apply folds one worker event into the cache, tables, and modal state. It
// must only be called from the interactive loop.
func (e *Engine) Apply(ev Event) Notice {
	switch ev := ev.(type) {
	case processesCollected:
		return e.applyCollected(sysquery.KindProcess, ev.err, func() bool {
			if !e.cache.SetProcesses(ev.records, ev.taken) {
				return false
			}
			snap, _ := e.cache.Processes()
			e.procs.SetRecords(snap.Records)
			return true
		})
	case servicesCollected:
		return e.applyCollected(sysquery.KindService, ev.err, func() bool {
			if !e.cache.SetServices(ev.records, ev.taken) {
				return false
			}
			e.svcs.SetRecords(ev.records)
			return true
		})
	case connectionsCollected:
		return e.applyCollected(sysquery.KindConnection, ev.err, func() bool {
			if !e.cache.SetConnections(ev.records, ev.taken) {
				return false
			}
			e.conns.SetRecords(ev.records)
			return true
		})
	case actionDone:
		return e.applyAction(ev)
	case scanProgress:
		if e.modal == nil || ev.gen != e.scanGen || e.modal.Phase != PhaseScanning {
			return Notice{}
		}
		e.modal.Scanned = ev.scanned
		e.modal.Found = ev.found
		return Notice{Modal: true}
	case scanDone:
		return e.applyScanDone(ev)
	default:
		return Notice{}
	}
}

// applyCollected installs a collection result or, on a whole-collector
// failure, marks the kind stale and keeps the last good snapshot published.
func (e *Engine) applyCollected(kind sysquery.Kind, err error, install func() bool) Notice {
	if err != nil {
		if e.cache.MarkStale(kind) {
			return Notice{Refreshed: []sysquery.Kind{kind}}
		}
		return Notice{}
	}
	if install() {
		return Notice{Refreshed: []sysquery.Kind{kind}}
	}
	return Notice{}
}

func (e *Engine) applyAction(ev actionDone) Notice {
	if e.opts.Journal != nil {
		e.opts.Journal.Record(context.Background(), ev.action.String(), ev.target, ev.err)
	}

	benign := errors.Is(ev.err, sysquery.ErrNotFound) || errors.Is(ev.err, sysquery.ErrAlreadyTransitioning)
	n := Notice{Status: actionStatus(ev), IsError: ev.err != nil && !benign}

	// Success and the benign vanished-target race both mean the OS state
	// moved; re-collect immediately instead of waiting for the tick.
	refresh := ev.err == nil || errors.Is(ev.err, sysquery.ErrNotFound)

	switch ev.action {
	case ActionKillProcess:
		if refresh {
			e.enqueueCollect(sysquery.KindProcess)
		}
	case ActionToggleService:
		if refresh {
			e.enqueueCollect(sysquery.KindService)
		}
	case ActionKillLockHolder:
		if refresh {
			e.enqueueCollect(sysquery.KindProcess)
		}
		if e.modal != nil && e.modal.Phase == PhaseResults && refresh {
			e.modal.removePID(ev.pid)
			n.Modal = true
		}
	}
	return n
}

func (e *Engine) applyScanDone(ev scanDone) Notice {
	if e.modal == nil || ev.gen != e.scanGen || e.modal.Phase != PhaseScanning {
		// The modal was closed or superseded; discard the result.
		return Notice{}
	}
	if ev.err != nil {
		e.modal.Phase = PhaseInput
		return Notice{Modal: true, Status: fmt.Sprintf("Lock search failed: %v", ev.err), IsError: true}
	}
	e.modal.showResults(ev.result)
	return Notice{Modal: true}
}

func actionStatus(ev actionDone) string {
	switch {
	case ev.err == nil:
		switch ev.action {
		case ActionToggleService:
			return fmt.Sprintf("Toggled service %s", ev.target)
		default:
			return fmt.Sprintf("Killed %s (pid %d)", ev.target, ev.pid)
		}
	case errors.Is(ev.err, sysquery.ErrNotFound):
		return fmt.Sprintf("%s: already gone", ev.target)
	case errors.Is(ev.err, sysquery.ErrAlreadyTransitioning):
		return fmt.Sprintf("Service %s is mid-transition; nothing requested", ev.target)
	case errors.Is(ev.err, sysquery.ErrPermissionDenied):
		return fmt.Sprintf("Cannot %s %s: permission denied", ev.action, ev.target)
	case errors.Is(ev.err, sysquery.ErrTransitionTimeout):
		return fmt.Sprintf("Service %s did not settle in time", ev.target)
	default:
		return fmt.Sprintf("Failed to %s %s: %v", ev.action, ev.target, ev.err)
	}
}
