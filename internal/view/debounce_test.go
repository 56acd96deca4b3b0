package view

import (
	"testing"
	"time"

	"sysconsole/internal/sysquery"
)

func TestDebouncerCollapsesBurst(t *testing.T) {
	d := NewDebouncer()
	start := time.Unix(1000, 0)

	// Ten rapid line-down intents, 2ms apart.
	now := start
	for i := 0; i < 10; i++ {
		d.Push(now, AnchorNone, 1)
		now = now.Add(2 * time.Millisecond)
	}

	// Still inside the quiet window: nothing settles.
	if _, ok := d.Settle(now.Add(10 * time.Millisecond)); ok {
		t.Fatal("batch settled before the quiet window elapsed")
	}

	batch, ok := d.Settle(now.Add(QuietWindow))
	if !ok {
		t.Fatal("batch should settle after the quiet window")
	}
	if batch.Anchor != AnchorNone || batch.Delta != 10 {
		t.Errorf("batch = %+v, want net delta 10", batch)
	}

	// Exactly one application.
	if _, ok := d.Settle(now.Add(time.Second)); ok {
		t.Error("a settled batch must not settle twice")
	}
}

func TestDebouncerOppositeMovesCancelOut(t *testing.T) {
	d := NewDebouncer()
	now := time.Unix(1000, 0)
	d.Push(now, AnchorNone, PageSize)
	d.Push(now, AnchorNone, -PageSize)

	batch, ok := d.Settle(now.Add(QuietWindow))
	if !ok {
		t.Fatal("expected a settled batch")
	}
	if batch.Delta != 0 {
		t.Errorf("net delta = %d, want 0", batch.Delta)
	}
}

func TestDebouncerAnchorResetsDelta(t *testing.T) {
	d := NewDebouncer()
	now := time.Unix(1000, 0)
	d.Push(now, AnchorNone, 5)
	d.Push(now, AnchorLast, 0)
	d.Push(now, AnchorNone, -2)

	batch, _ := d.Settle(now.Add(QuietWindow))
	if batch.Anchor != AnchorLast || batch.Delta != -2 {
		t.Errorf("batch = %+v, want jump-last then -2", batch)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer()
	now := time.Unix(1000, 0)
	d.Push(now, AnchorNone, 3)
	if !d.Pending() {
		t.Fatal("intents should be pending")
	}
	d.Cancel()
	if _, ok := d.Settle(now.Add(time.Second)); ok {
		t.Error("canceled intents must not settle")
	}
}

func TestApplyBatch(t *testing.T) {
	tbl := ProcessTable()
	records := make([]sysquery.ProcessRecord, 20)
	for i := range records {
		records[i] = sysquery.ProcessRecord{PID: int32(i + 1), Name: "p"}
	}
	tbl.SetRecords(records)

	Apply(tbl, NavBatch{Anchor: AnchorNone, Delta: 10})
	if tbl.Cursor() != 9 {
		t.Errorf("cursor = %d, want 9 after a net +10 from none", tbl.Cursor())
	}

	Apply(tbl, NavBatch{Anchor: AnchorLast, Delta: -3})
	if tbl.Cursor() != 16 {
		t.Errorf("cursor = %d, want 16 after jump-last then -3", tbl.Cursor())
	}

	Apply(tbl, NavBatch{Anchor: AnchorFirst})
	if tbl.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0 after jump-first", tbl.Cursor())
	}
}
