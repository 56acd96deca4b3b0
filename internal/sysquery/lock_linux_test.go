//go:build linux

package sysquery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestScanDirectorySystem(t *testing.T) {
	// Resolve symlinks so the walked paths match what /proc fd links report.
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}

	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	// Hold an open handle on one file; this process is its lock holder.
	held := filepath.Join(dir, "one.txt")
	f, err := os.Open(held)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	c := NewLockCollector()
	var lastScanned int
	result, err := c.ScanDirectory(context.Background(), dir, func(scanned, found int) {
		lastScanned = scanned
	})
	if err != nil {
		t.Skipf("Skipping system test: %v (might be environment specific)", err)
	}

	if result.FilesScanned != 3 {
		t.Errorf("FilesScanned = %d, want 3", result.FilesScanned)
	}
	if lastScanned != result.FilesScanned {
		t.Errorf("final progress report %d != FilesScanned %d", lastScanned, result.FilesScanned)
	}
	if result.LocksFound > result.FilesScanned {
		t.Errorf("LocksFound %d exceeds FilesScanned %d", result.LocksFound, result.FilesScanned)
	}

	self := int32(os.Getpid())
	found := false
	for _, h := range result.Holders {
		if h.PID == self && h.Path == held {
			found = true
		}
	}
	if !found {
		t.Errorf("expected pid %d to be reported as a holder of %s, got %+v", self, held, result.Holders)
	}
}

func TestScanDirectoryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewLockCollector()
	if _, err := c.ScanDirectory(ctx, t.TempDir(), nil); err == nil {
		t.Error("expected an error for a canceled scan")
	}
}
