package engine

import "sysconsole/internal/sysquery"

// ModalPhase is where the lock search workflow currently stands. The modal
// itself existing at all is the "open" state; closing discards it entirely.
type ModalPhase int

const (
	PhaseInput ModalPhase = iota
	PhaseScanning
	PhaseResults
)

func (p ModalPhase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseScanning:
		return "scanning"
	case PhaseResults:
		return "results"
	default:
		return "phase"
	}
}

// LockModal is the state of one find-the-lock-holder interaction: a path
// being edited, a scan in flight, or a result list being navigated. It is
// owned by the engine and discarded wholesale on close.
type LockModal struct {
	Phase ModalPhase
	Path  string

	// Scan progress, live while Phase is Scanning.
	Scanned int
	Found   int

	// Populated once the scan completes.
	Results      []sysquery.LockRecord
	Cursor       int
	FilesScanned int
	LocksFound   int
}

func (m *LockModal) showResults(result sysquery.ScanResult) {
	m.Phase = PhaseResults
	m.Results = result.Holders
	m.FilesScanned = result.FilesScanned
	m.LocksFound = result.LocksFound
	m.Scanned = result.FilesScanned
	m.Found = result.LocksFound
	m.Cursor = 0
	if len(m.Results) == 0 {
		m.Cursor = -1
	}
}

// Selected returns the highlighted result, if any.
func (m *LockModal) Selected() (sysquery.LockRecord, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Results) {
		return sysquery.LockRecord{}, false
	}
	return m.Results[m.Cursor], true
}

func (m *LockModal) move(delta int) {
	if len(m.Results) == 0 {
		m.Cursor = -1
		return
	}
	next := m.Cursor + delta
	if next < 0 {
		next = 0
	}
	if next > len(m.Results)-1 {
		next = len(m.Results) - 1
	}
	m.Cursor = next
}

// removePID drops every result row held by pid and recounts the distinct
// locked paths, keeping the cursor on a valid row.
func (m *LockModal) removePID(pid int32) {
	kept := m.Results[:0]
	for _, r := range m.Results {
		if r.PID != pid {
			kept = append(kept, r)
		}
	}
	m.Results = kept
	m.LocksFound = sysquery.CountLockedPaths(m.Results)
	m.Found = m.LocksFound
	if m.Cursor >= len(m.Results) {
		m.Cursor = len(m.Results) - 1
	}
}
