package sysquery

import (
	"context"
	"testing"
)

func TestLockRecordKey(t *testing.T) {
	a := LockRecord{Path: "/tmp/a.db", PID: 10, Name: "sqlited"}
	b := LockRecord{Path: "/tmp/a.db", PID: 11, Name: "sqlited"}
	if a.Key() == b.Key() {
		t.Error("two holders of one file must keep distinct keys")
	}
}

func TestCountLockedPaths(t *testing.T) {
	holders := []LockRecord{
		{Path: "/var/log/app.log", PID: 100},
		{Path: "/var/log/app.log", PID: 200}, // second holder, same file
		{Path: "/var/lib/app.db", PID: 100},
	}
	if got := CountLockedPaths(holders); got != 2 {
		t.Errorf("CountLockedPaths = %d, want 2", got)
	}
	if got := CountLockedPaths(nil); got != 0 {
		t.Errorf("CountLockedPaths(nil) = %d, want 0", got)
	}
}

func TestNormalizeHolders(t *testing.T) {
	holders := []LockRecord{
		{Path: "/f", PID: 30, Name: "zsh"},
		{Path: "/f", PID: 30, Name: "zsh"}, // duplicate
		{Path: "/f", PID: 20, Name: "bash"},
		{Path: "/f", PID: 10, Name: "bash"},
	}
	out := normalizeHolders(holders)
	if len(out) != 3 {
		t.Fatalf("expected 3 holders after dedup, got %d", len(out))
	}
	// Sorted by name, then pid.
	want := []int32{10, 20, 30}
	for i, h := range out {
		if h.PID != want[i] {
			t.Errorf("holder %d pid = %d, want %d", i, h.PID, want[i])
		}
	}
}

func TestFindHoldersSkipsEmptyPaths(t *testing.T) {
	c := NewLockCollector()
	holders, err := c.FindHolders(context.Background(), []string{"", ""})
	if err != nil {
		t.Fatalf("FindHolders: %v", err)
	}
	if holders != nil {
		t.Errorf("empty path list should yield no holders, got %d", len(holders))
	}
}
