package sysquery

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// progressStride is how many scanned files pass between progress callbacks
// during a directory scan.
const progressStride = 64

// LockCollector finds the processes holding open handles on files.
type LockCollector struct{}

func NewLockCollector() *LockCollector {
	return &LockCollector{}
}

// Key returns the stable identity of a lock holder row.
func (r LockRecord) Key() string {
	return r.Path + ":" + strconv.Itoa(int(r.PID))
}

// FindHolders returns the processes currently holding a lock on any of the
// given file paths, deduplicated and sorted by process name.
func (c *LockCollector) FindHolders(ctx context.Context, paths []string) ([]LockRecord, error) {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		a, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		abs = append(abs, filepath.Clean(a))
	}
	if len(abs) == 0 {
		return nil, nil
	}

	holders, err := lockHolders(ctx, abs)
	if err != nil {
		return nil, err
	}
	return normalizeHolders(holders), nil
}

// ScanDirectory recursively scans every file under dir and reports which
// processes hold locks on them. A single inaccessible file does not abort the
// scan; it is skipped and still counted as scanned. progress, when non-nil,
// receives running (filesScanned, locksFound) counts.
func (c *LockCollector) ScanDirectory(ctx context.Context, dir string, progress func(scanned, found int)) (ScanResult, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return ScanResult{}, err
	}

	// fastwalk runs the callback from several goroutines.
	var mu sync.Mutex
	var files []string
	scanned := 0

	conf := &fastwalk.Config{}
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			// Unreadable entry: count it and move on.
			mu.Lock()
			scanned++
			mu.Unlock()
			return nil
		}
		if d.IsDir() {
			return nil
		}
		mu.Lock()
		scanned++
		files = append(files, path)
		n := scanned
		mu.Unlock()
		if progress != nil && n%progressStride == 0 {
			progress(n, 0)
		}
		return nil
	})
	if walkErr != nil && ctx.Err() != nil {
		return ScanResult{}, walkErr
	}

	result := ScanResult{FilesScanned: scanned}
	if len(files) == 0 {
		return result, nil
	}

	holders, err := lockHolders(ctx, files)
	if err != nil {
		return ScanResult{}, err
	}
	result.Holders = normalizeHolders(holders)
	result.LocksFound = CountLockedPaths(result.Holders)
	if progress != nil {
		progress(result.FilesScanned, result.LocksFound)
	}
	return result, nil
}

// CountLockedPaths counts the distinct files represented in holders, so the
// count never exceeds the number of files scanned.
func CountLockedPaths(holders []LockRecord) int {
	paths := make(map[string]struct{}, len(holders))
	for _, h := range holders {
		paths[h.Path] = struct{}{}
	}
	return len(paths)
}

func normalizeHolders(holders []LockRecord) []LockRecord {
	seen := make(map[string]struct{}, len(holders))
	out := holders[:0]
	for _, h := range holders {
		key := h.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].PID < out[j].PID
	})
	return out
}
