// Package snapshot holds the most recent collected records per resource kind
// and decides whether an incoming collection actually changed anything. Reads
// always see a complete snapshot: updates swap the record slice wholesale and
// callers must not mutate what they are handed back.
package snapshot

import (
	"sync"
	"time"

	"sysconsole/internal/sysquery"
)

// Snapshot is one immutable collection result. Stale means the last refresh
// for this kind failed and Records are the previous good ones.
type Snapshot[T any] struct {
	Records     []T
	Taken       time.Time
	Fingerprint uint64
	Stale       bool
}

type slot[T any] struct {
	snap Snapshot[T]
	seen bool
}

// store installs a new collection into the slot. It reports whether the data
// visibly changed; a same-fingerprint refresh only bumps the timestamp.
func store[T any](s *slot[T], records []T, taken time.Time, fp uint64) bool {
	wasStale := s.snap.Stale
	if s.seen && s.snap.Fingerprint == fp {
		s.snap.Taken = taken
		s.snap.Stale = false
		return wasStale
	}
	s.snap = Snapshot[T]{Records: records, Taken: taken, Fingerprint: fp}
	s.seen = true
	return true
}

func markStale[T any](s *slot[T]) bool {
	if !s.seen || s.snap.Stale {
		return false
	}
	s.snap.Stale = true
	return true
}

// Cache is the single source of truth for the latest view of each kind.
// It is safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	procs slot[sysquery.ProcessRecord]
	svcs  slot[sysquery.ServiceRecord]
	conns slot[sysquery.ConnectionRecord]
}

func NewCache() *Cache {
	return &Cache{}
}

// SetProcesses installs a process collection. Records whose metrics could not
// be sampled this pass inherit the previous good values, marked stale, before
// fingerprinting. Returns true when the stored snapshot visibly changed.
func (c *Cache) SetProcesses(records []sysquery.ProcessRecord, taken time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	records = carryMetrics(c.procs.snap.Records, records)
	return store(&c.procs, records, taken, FingerprintProcesses(records))
}

func (c *Cache) SetServices(records []sysquery.ServiceRecord, taken time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return store(&c.svcs, records, taken, FingerprintServices(records))
}

func (c *Cache) SetConnections(records []sysquery.ConnectionRecord, taken time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return store(&c.conns, records, taken, FingerprintConnections(records))
}

// MarkStale flags a kind whose refresh failed. The last good records stay
// visible. Returns true the first time the flag flips.
func (c *Cache) MarkStale(kind sysquery.Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case sysquery.KindProcess:
		return markStale(&c.procs)
	case sysquery.KindService:
		return markStale(&c.svcs)
	case sysquery.KindConnection:
		return markStale(&c.conns)
	default:
		return false
	}
}

// Processes returns the latest process snapshot; ok is false before the first
// successful collection.
func (c *Cache) Processes() (Snapshot[sysquery.ProcessRecord], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.procs.snap, c.procs.seen
}

func (c *Cache) Services() (Snapshot[sysquery.ServiceRecord], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.svcs.snap, c.svcs.seen
}

func (c *Cache) Connections() (Snapshot[sysquery.ConnectionRecord], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conns.snap, c.conns.seen
}

// ProcessNames returns the pid-to-name join table the connection collector
// needs, built from the cached process snapshot.
func (c *Cache) ProcessNames() map[int32]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make(map[int32]string, len(c.procs.snap.Records))
	for _, r := range c.procs.snap.Records {
		names[r.PID] = r.Name
	}
	return names
}

// carryMetrics fills missed metric fields in next with the last good values
// seen for the same pid, marking the record stale instead of reporting zeros.
// Each field carries independently: a record whose memory sampled fine but
// whose CPU times were denied keeps the fresh memory and the previous CPU.
func carryMetrics(prev, next []sysquery.ProcessRecord) []sysquery.ProcessRecord {
	if len(prev) == 0 {
		return next
	}
	var byPid map[int32]sysquery.ProcessRecord
	for i, r := range next {
		missedCPU := r.CPUMissed || r.Degraded
		missedMem := r.MemoryMissed || r.Degraded
		if !missedCPU && !missedMem {
			continue
		}
		if byPid == nil {
			byPid = make(map[int32]sysquery.ProcessRecord, len(prev))
			for _, p := range prev {
				byPid[p.PID] = p
			}
		}
		p, ok := byPid[r.PID]
		if !ok {
			continue
		}
		if missedCPU {
			next[i].CPUPercent = p.CPUPercent
		}
		if missedMem {
			next[i].MemoryBytes = p.MemoryBytes
		}
		next[i].Stale = true
	}
	return next
}
