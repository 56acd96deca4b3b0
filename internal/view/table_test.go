package view

import (
	"testing"

	"sysconsole/internal/sysquery"
)

func sampleProcs() []sysquery.ProcessRecord {
	return []sysquery.ProcessRecord{
		{PID: 1, Name: "a.exe", CPUPercent: 10},
		{PID: 2, Name: "b.exe", CPUPercent: 50},
	}
}

func viewPids(t *Table[sysquery.ProcessRecord]) []int32 {
	pids := make([]int32, 0, t.Len())
	for _, r := range t.Rows() {
		pids = append(pids, r.PID)
	}
	return pids
}

func TestProcessTableSortAndFilter(t *testing.T) {
	tbl := ProcessTable()
	tbl.SetRecords(sampleProcs())

	if !tbl.SetSortKey(SortByCpu) {
		t.Fatal("Cpu must be a valid process sort key")
	}
	tbl.ToggleOrder() // descending

	if got := viewPids(tbl); len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("cpu descending order = %v, want [2 1]", got)
	}

	tbl.SetFilter("a")
	if got := viewPids(tbl); len(got) != 1 || got[0] != 1 {
		t.Errorf("filter \"a\" = %v, want [1]", got)
	}

	tbl.ClearFilter()
	if tbl.Len() != 2 {
		t.Errorf("clearing the filter should restore both rows, got %d", tbl.Len())
	}
}

func TestTableFilterMatchesPidAndPath(t *testing.T) {
	tbl := ProcessTable()
	tbl.SetRecords([]sysquery.ProcessRecord{
		{PID: 4321, Name: "svc", Path: "/opt/Widget/bin/svc"},
		{PID: 77, Name: "other"},
	})

	tbl.SetFilter("432")
	if got := viewPids(tbl); len(got) != 1 || got[0] != 4321 {
		t.Errorf("pid filter = %v", got)
	}

	tbl.SetFilter("widget")
	if got := viewPids(tbl); len(got) != 1 || got[0] != 4321 {
		t.Errorf("case-insensitive path filter = %v", got)
	}
}

func TestTableSelectionSurvivesResort(t *testing.T) {
	tbl := ProcessTable()
	tbl.SetRecords(sampleProcs())
	tbl.MoveBy(1) // select first row: a.exe under Name ascending
	tbl.MoveBy(1) // b.exe

	sel, ok := tbl.Selected()
	if !ok || sel.PID != 2 {
		t.Fatalf("selection setup failed: %+v ok=%v", sel, ok)
	}

	tbl.SetSortKey(SortByCpu)
	tbl.ToggleOrder()

	// The rows reordered but the logical selection is still pid 2.
	sel, ok = tbl.Selected()
	if !ok || sel.PID != 2 {
		t.Errorf("selection should follow the record across a resort, got %+v", sel)
	}
	if tbl.Cursor() != 0 {
		t.Errorf("pid 2 leads the cpu-descending view, cursor = %d", tbl.Cursor())
	}
}

func TestTableSelectionClearsWhenRowVanishes(t *testing.T) {
	tbl := ProcessTable()
	tbl.SetRecords(sampleProcs())
	tbl.MoveFirst() // a.exe

	// Next snapshot no longer contains pid 1.
	tbl.SetRecords([]sysquery.ProcessRecord{{PID: 2, Name: "b.exe", CPUPercent: 50}})

	if _, ok := tbl.Selected(); ok {
		t.Error("selection must clear when its row is gone, not snap to a neighbor")
	}
	if tbl.Cursor() != -1 {
		t.Errorf("cursor = %d, want -1", tbl.Cursor())
	}

	// A filter hiding the selection clears it too.
	tbl.MoveFirst()
	tbl.SetFilter("nomatch")
	if _, ok := tbl.Selected(); ok {
		t.Error("selection hidden by a filter must clear")
	}
	if tbl.Len() != 0 {
		t.Errorf("filtered view should be empty, got %d rows", tbl.Len())
	}
}

func TestTableNavigationClamps(t *testing.T) {
	tbl := ProcessTable()
	tbl.SetRecords(sampleProcs())

	tbl.MoveBy(100)
	if tbl.Cursor() != 1 {
		t.Errorf("overshoot should clamp to the last row, cursor = %d", tbl.Cursor())
	}
	tbl.MoveBy(-100)
	if tbl.Cursor() != 0 {
		t.Errorf("undershoot should clamp to the first row, cursor = %d", tbl.Cursor())
	}
	tbl.PageDown()
	if tbl.Cursor() != 1 {
		t.Errorf("page down past the end clamps, cursor = %d", tbl.Cursor())
	}

	empty := ProcessTable()
	empty.MoveBy(1)
	empty.MoveFirst()
	empty.MoveLast()
	if _, ok := empty.Selected(); ok {
		t.Error("an empty view can have no selection")
	}
}

func TestTableUnselectedEntryDirection(t *testing.T) {
	tbl := ProcessTable()
	tbl.SetRecords(sampleProcs())

	// Moving up with nothing selected enters from the bottom edge.
	tbl.MoveBy(-1)
	if tbl.Cursor() != tbl.Len()-1 {
		t.Errorf("cursor = %d, want the last row", tbl.Cursor())
	}

	// Moving down with nothing selected enters from the top edge.
	fresh := ProcessTable()
	fresh.SetRecords(sampleProcs())
	fresh.MoveBy(1)
	if fresh.Cursor() != 0 {
		t.Errorf("cursor = %d, want the first row", fresh.Cursor())
	}

	// A collapsed burst from none matches the single-row moves it replaces.
	burst := ProcessTable()
	burst.SetRecords(sampleProcs())
	burst.MoveBy(-2)
	if burst.Cursor() != burst.Len()-2 {
		t.Errorf("cursor = %d, want one above the last row", burst.Cursor())
	}
}

func TestTableCycleSortKeyWraps(t *testing.T) {
	tbl := ProcessTable()
	want := []SortKey{SortByPid, SortByCpu, SortByMemory, SortByName}
	for _, k := range want {
		if got := tbl.CycleSortKey(); got != k {
			t.Errorf("CycleSortKey = %q, want %q", got, k)
		}
	}
}

func TestServiceTableStatusSort(t *testing.T) {
	tbl := ServiceTable()
	tbl.SetRecords([]sysquery.ServiceRecord{
		{Name: "zebra", Status: sysquery.StatusRunning},
		{Name: "apple", Status: sysquery.StatusStopped},
		{Name: "mango", Status: sysquery.StatusStartPending},
	})
	tbl.SetSortKey(SortByStatus)

	rows := tbl.Rows()
	got := []string{rows[0].Name, rows[1].Name, rows[2].Name}
	// Running first, pending next, stopped last, regardless of name order.
	want := []string{"zebra", "mango", "apple"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("status order = %v, want %v", got, want)
		}
	}
}

func TestConnectionTableTieBreak(t *testing.T) {
	tbl := ConnectionTable()
	tbl.SetRecords([]sysquery.ConnectionRecord{
		{Protocol: sysquery.ProtoTCP, State: sysquery.StateListening, LocalAddr: "0.0.0.0", LocalPort: 8080},
		{Protocol: sysquery.ProtoTCP, State: sysquery.StateListening, LocalAddr: "0.0.0.0", LocalPort: 80},
	})

	rows := tbl.Rows()
	if rows[0].LocalPort != 80 || rows[1].LocalPort != 8080 {
		t.Errorf("equal states should tie-break on local port: %d, %d", rows[0].LocalPort, rows[1].LocalPort)
	}
}

func TestTableScrollOffsetFollowsCursor(t *testing.T) {
	tbl := ProcessTable()
	records := make([]sysquery.ProcessRecord, 30)
	for i := range records {
		records[i] = sysquery.ProcessRecord{PID: int32(i + 1), Name: "p"}
	}
	tbl.SetRecords(records)
	tbl.SetHeight(10)

	tbl.MoveLast()
	if tbl.Offset() != 20 {
		t.Errorf("offset = %d, want 20 with the cursor on row 29", tbl.Offset())
	}
	tbl.MoveFirst()
	if tbl.Offset() != 0 {
		t.Errorf("offset = %d, want 0 after jumping home", tbl.Offset())
	}
}
