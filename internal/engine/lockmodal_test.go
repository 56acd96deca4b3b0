package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"sysconsole/internal/sysquery"
)

func lockEngine(elevated bool, locks *fakeLocks, kill *fakeKill) *Engine {
	return New(Options{
		Processes: &fakeProcs{},
		Services:  &fakeSvcs{},
		Conns:     &fakeConns{},
		Locks:     locks,
		Kill:      kill.kill,
		Elevated:  elevated,
	})
}

func twoHolders() *fakeLocks {
	return &fakeLocks{holders: []sysquery.LockRecord{
		{Path: "/data/f.txt", PID: 10, Name: "note.exe"},
		{Path: "/data/f.txt", PID: 20, Name: "office.exe"},
	}}
}

func TestLockSearchFileWorkflow(t *testing.T) {
	kill := &fakeKill{}
	e := lockEngine(true, twoHolders(), kill)

	m := e.OpenLockModal()
	if m.Phase != PhaseInput {
		t.Fatalf("opening should enter input, got %v", m.Phase)
	}

	e.EditLockPath("/data/f.txt")
	e.SubmitLockSearch()
	if m.Phase != PhaseScanning {
		t.Fatalf("submit should enter scanning, got %v", m.Phase)
	}

	runPending(t, e)
	if m.Phase != PhaseResults {
		t.Fatalf("completed search should show results, got %v", m.Phase)
	}
	if len(m.Results) != 2 || m.Results[0].PID != 10 || m.Results[1].PID != 20 {
		t.Fatalf("results = %+v", m.Results)
	}
	if m.LocksFound != 1 {
		t.Errorf("two holders of one file count as one lock, got %d", m.LocksFound)
	}

	// Kill the first holder: its row disappears, the other stays.
	if err := e.KillLockProcess(10); err != nil {
		t.Fatalf("KillLockProcess: %v", err)
	}
	runPending(t, e)
	if len(m.Results) != 1 || m.Results[0].PID != 20 {
		t.Errorf("results after kill = %+v, want just pid 20", m.Results)
	}
	if kill.killed[0] != 10 {
		t.Errorf("killed = %v", kill.killed)
	}
}

func TestScanCompletionSurvivesFullEventQueue(t *testing.T) {
	kill := &fakeKill{}
	e := lockEngine(true, twoHolders(), kill)

	e.OpenLockModal()
	e.EditLockPath("/data/f.txt")
	e.SubmitLockSearch()

	// Saturate the event channel before the worker reports back; the stale
	// generation makes the filler events no-ops when applied.
	for i := 0; i < eventDepth; i++ {
		e.emit(scanProgress{gen: 0})
	}

	go func() {
		job := <-e.actionJobs
		job(context.Background())
	}()

	// The completion must wait for the queue to drain instead of being
	// dropped; draining here lets it through.
	deadline := time.After(2 * time.Second)
	for e.Modal().Phase != PhaseResults {
		select {
		case ev := <-e.events:
			e.Apply(ev)
		case <-deadline:
			t.Fatal("scan completion never arrived")
		}
	}
	if len(e.Modal().Results) != 2 {
		t.Errorf("results = %+v, want both holders", e.Modal().Results)
	}
}

func TestLockSearchRemembersLastPath(t *testing.T) {
	e := lockEngine(true, twoHolders(), &fakeKill{})

	e.OpenLockModal()
	e.EditLockPath("/var/lib/app")
	e.SubmitLockSearch()
	runPending(t, e)
	e.CloseModal()

	m := e.OpenLockModal()
	if m.Path != "/var/lib/app" {
		t.Errorf("reopened modal path = %q, want the last searched path", m.Path)
	}
}

func TestLockSearchResultAfterCloseIsDiscarded(t *testing.T) {
	e := lockEngine(true, twoHolders(), &fakeKill{})

	e.OpenLockModal()
	e.EditLockPath("/data/f.txt")
	e.SubmitLockSearch()
	e.CloseModal()

	for _, n := range runPending(t, e) {
		if !n.Empty() {
			t.Errorf("a result arriving after close must be discarded, got %+v", n)
		}
	}
	if e.Modal() != nil {
		t.Error("modal must stay closed")
	}
}

func TestLockSearchSupersededGeneration(t *testing.T) {
	locks := twoHolders()
	e := lockEngine(true, locks, &fakeKill{})

	e.OpenLockModal()
	e.EditLockPath("/data/f.txt")
	e.SubmitLockSearch()

	// A second search supersedes the first before its result lands.
	e.Modal().Phase = PhaseInput
	locks.holders = locks.holders[:1]
	e.EditLockPath("/data/other.txt")
	e.SubmitLockSearch()

	runPending(t, e)
	m := e.Modal()
	if m.Phase != PhaseResults {
		t.Fatalf("phase = %v", m.Phase)
	}
	if len(m.Results) != 1 {
		t.Errorf("only the newest search's results may land, got %d rows", len(m.Results))
	}
}

func TestLockSearchErrorReturnsToInput(t *testing.T) {
	locks := twoHolders()
	locks.err = errors.New("path walk failed")
	e := lockEngine(true, locks, &fakeKill{})

	e.OpenLockModal()
	e.EditLockPath("/data/f.txt")
	e.SubmitLockSearch()
	notices := runPending(t, e)

	if e.Modal().Phase != PhaseInput {
		t.Errorf("a failed search returns to input, got %v", e.Modal().Phase)
	}
	var sawError bool
	for _, n := range notices {
		if n.IsError {
			sawError = true
		}
	}
	if !sawError {
		t.Error("a failed search should surface a status message")
	}
}

func TestLockResultNavigationClamps(t *testing.T) {
	e := lockEngine(true, twoHolders(), &fakeKill{})
	e.OpenLockModal()
	e.EditLockPath("/data/f.txt")
	e.SubmitLockSearch()
	runPending(t, e)

	m := e.Modal()
	e.NavigateLockResults(5)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1 (clamped)", m.Cursor)
	}
	e.NavigateLockResults(-5)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0 (clamped)", m.Cursor)
	}

	sel, ok := m.Selected()
	if !ok || sel.PID != 10 {
		t.Errorf("selected = %+v ok=%v", sel, ok)
	}
}

func TestKillLockProcessWithoutElevation(t *testing.T) {
	kill := &fakeKill{}
	e := lockEngine(false, twoHolders(), kill)
	e.OpenLockModal()
	e.EditLockPath("/data/f.txt")
	e.SubmitLockSearch()
	runPending(t, e)

	if err := e.KillLockProcess(10); !errors.Is(err, sysquery.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(kill.killed) != 0 {
		t.Error("denied kill must not reach the OS")
	}
	if len(e.Modal().Results) != 2 {
		t.Error("results must be unchanged after a denied kill")
	}
}

func TestSubmitIgnoresEmptyPath(t *testing.T) {
	e := lockEngine(true, twoHolders(), &fakeKill{})
	m := e.OpenLockModal()
	e.EditLockPath("  \n  ")
	e.SubmitLockSearch()
	if m.Phase != PhaseInput {
		t.Errorf("an empty path must not start a scan, phase = %v", m.Phase)
	}
}

func TestSplitPaths(t *testing.T) {
	paths := splitPaths(" /a/one.txt \n\n/b/two.txt\n")
	if len(paths) != 2 || paths[0] != "/a/one.txt" || paths[1] != "/b/two.txt" {
		t.Errorf("splitPaths = %v", paths)
	}
}
