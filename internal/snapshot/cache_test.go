package snapshot

import (
	"testing"
	"time"

	"sysconsole/internal/sysquery"
)

func procs(recs ...sysquery.ProcessRecord) []sysquery.ProcessRecord { return recs }

func TestCacheSuppressesIdenticalCollections(t *testing.T) {
	c := NewCache()
	records := procs(
		sysquery.ProcessRecord{PID: 1, Name: "init", CPUPercent: 0.5, MemoryBytes: 4096},
		sysquery.ProcessRecord{PID: 2, Name: "kthreadd"},
	)

	if !c.SetProcesses(records, time.Unix(100, 0)) {
		t.Fatal("first collection must report a change")
	}

	// Same data, later timestamp: suppressed but timestamp advances.
	same := make([]sysquery.ProcessRecord, len(records))
	copy(same, records)
	if c.SetProcesses(same, time.Unix(102, 0)) {
		t.Error("identical collection should be suppressed")
	}
	snap, ok := c.Processes()
	if !ok {
		t.Fatal("snapshot should exist")
	}
	if !snap.Taken.Equal(time.Unix(102, 0)) {
		t.Errorf("suppressed refresh should still bump Taken, got %v", snap.Taken)
	}

	// A metric moved: that is a visible change.
	changed := make([]sysquery.ProcessRecord, len(records))
	copy(changed, records)
	changed[0].CPUPercent = 37.5
	if !c.SetProcesses(changed, time.Unix(104, 0)) {
		t.Error("metric change must not be suppressed")
	}
}

func TestCacheOrderMatters(t *testing.T) {
	c := NewCache()
	a := sysquery.ServiceRecord{Name: "a", Status: sysquery.StatusRunning}
	b := sysquery.ServiceRecord{Name: "b", Status: sysquery.StatusStopped}

	c.SetServices([]sysquery.ServiceRecord{a, b}, time.Unix(100, 0))
	if !c.SetServices([]sysquery.ServiceRecord{b, a}, time.Unix(101, 0)) {
		t.Error("reordered records are a different snapshot")
	}
}

func TestCacheMarkStaleKeepsLastGood(t *testing.T) {
	c := NewCache()
	c.SetConnections([]sysquery.ConnectionRecord{
		{Protocol: sysquery.ProtoTCP, LocalAddr: "127.0.0.1", LocalPort: 80},
	}, time.Unix(100, 0))

	if !c.MarkStale(sysquery.KindConnection) {
		t.Fatal("first stale transition must report a change")
	}
	if c.MarkStale(sysquery.KindConnection) {
		t.Error("repeated stale marking is not a change")
	}

	snap, ok := c.Connections()
	if !ok {
		t.Fatal("snapshot should survive a failed refresh")
	}
	if !snap.Stale {
		t.Error("snapshot should be flagged stale")
	}
	if len(snap.Records) != 1 {
		t.Errorf("last good records must stay visible, got %d", len(snap.Records))
	}

	// A successful refresh with identical data clears the flag, and that
	// recovery alone counts as a change.
	if !c.SetConnections([]sysquery.ConnectionRecord{
		{Protocol: sysquery.ProtoTCP, LocalAddr: "127.0.0.1", LocalPort: 80},
	}, time.Unix(105, 0)) {
		t.Error("recovering from stale must report a change")
	}
	snap, _ = c.Connections()
	if snap.Stale {
		t.Error("successful refresh should clear the stale flag")
	}
}

func TestCacheMarkStaleBeforeFirstCollection(t *testing.T) {
	c := NewCache()
	if c.MarkStale(sysquery.KindProcess) {
		t.Error("nothing to mark stale before the first collection")
	}
	if _, ok := c.Processes(); ok {
		t.Error("no snapshot should be reported before the first collection")
	}
}

func TestCacheCarriesMetricsForDegradedRecords(t *testing.T) {
	c := NewCache()
	c.SetProcesses(procs(
		sysquery.ProcessRecord{PID: 9, Name: "postgres", CPUPercent: 12.5, MemoryBytes: 1 << 20},
	), time.Unix(100, 0))

	c.SetProcesses(procs(
		sysquery.ProcessRecord{PID: 9, Name: "postgres", Degraded: true},
	), time.Unix(102, 0))

	snap, _ := c.Processes()
	got := snap.Records[0]
	if got.CPUPercent != 12.5 || got.MemoryBytes != 1<<20 {
		t.Errorf("degraded record should keep last good metrics, got cpu=%v mem=%d", got.CPUPercent, got.MemoryBytes)
	}
	if !got.Stale {
		t.Error("carried metrics must be flagged stale")
	}
}

func TestCacheCarriesSingleMissedField(t *testing.T) {
	c := NewCache()
	c.SetProcesses(procs(
		sysquery.ProcessRecord{PID: 9, Name: "postgres", CPUPercent: 12.5, MemoryBytes: 1 << 20},
	), time.Unix(100, 0))

	// CPU times were denied this pass but memory sampled fine: the fresh
	// memory value sticks, the CPU value carries, and the row is stale.
	c.SetProcesses(procs(
		sysquery.ProcessRecord{PID: 9, Name: "postgres", CPUMissed: true, MemoryBytes: 2 << 20},
	), time.Unix(102, 0))

	snap, _ := c.Processes()
	got := snap.Records[0]
	if got.CPUPercent != 12.5 {
		t.Errorf("missed CPU field should keep the last good value, got %v", got.CPUPercent)
	}
	if got.MemoryBytes != 2<<20 {
		t.Errorf("freshly sampled memory must not be overwritten, got %d", got.MemoryBytes)
	}
	if !got.Stale {
		t.Error("a record with any carried field must be flagged stale")
	}

	// The mirror case: memory denied, CPU fresh.
	c.SetProcesses(procs(
		sysquery.ProcessRecord{PID: 9, Name: "postgres", MemoryMissed: true, CPUPercent: 40},
	), time.Unix(104, 0))

	snap, _ = c.Processes()
	got = snap.Records[0]
	if got.CPUPercent != 40 {
		t.Errorf("freshly sampled CPU must not be overwritten, got %v", got.CPUPercent)
	}
	if got.MemoryBytes != 2<<20 {
		t.Errorf("missed memory field should keep the last good value, got %d", got.MemoryBytes)
	}
	if !got.Stale {
		t.Error("a record with any carried field must be flagged stale")
	}
}

func TestCacheCarriesNothingForNewPids(t *testing.T) {
	c := NewCache()
	c.SetProcesses(procs(
		sysquery.ProcessRecord{PID: 1, Name: "init", CPUPercent: 1},
	), time.Unix(100, 0))
	c.SetProcesses(procs(
		sysquery.ProcessRecord{PID: 50, Name: "fresh", Degraded: true},
	), time.Unix(101, 0))

	snap, _ := c.Processes()
	got := snap.Records[0]
	if got.CPUPercent != 0 || got.MemoryBytes != 0 || got.Stale {
		t.Errorf("a pid never seen before has no metrics to carry: %+v", got)
	}
}

func TestCacheProcessNames(t *testing.T) {
	c := NewCache()
	c.SetProcesses(procs(
		sysquery.ProcessRecord{PID: 1, Name: "init"},
		sysquery.ProcessRecord{PID: 2, Name: "sshd"},
	), time.Unix(100, 0))

	names := c.ProcessNames()
	if names[1] != "init" || names[2] != "sshd" {
		t.Errorf("unexpected join table: %v", names)
	}
}

func TestFingerprintSeesStaleMarkers(t *testing.T) {
	// A record flipping to stale is rendered differently, so it must not be
	// suppressed as a no-op refresh.
	a := procs(sysquery.ProcessRecord{PID: 1, Name: "init", CPUPercent: 3})
	b := procs(sysquery.ProcessRecord{PID: 1, Name: "init", CPUPercent: 3, Stale: true})
	if FingerprintProcesses(a) == FingerprintProcesses(b) {
		t.Error("a stale marker flip must change the fingerprint")
	}
}

func TestFingerprintFieldBoundaries(t *testing.T) {
	// "ab"+"c" vs "a"+"bc" across adjacent string fields must differ.
	a := []sysquery.ServiceRecord{{Name: "ab", DisplayName: "c"}}
	b := []sysquery.ServiceRecord{{Name: "a", DisplayName: "bc"}}
	if FingerprintServices(a) == FingerprintServices(b) {
		t.Error("field boundaries must be preserved in the fingerprint")
	}
}
