package sysquery

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

// cpuSample is one observation of a process's accumulated kernel+user time.
type cpuSample struct {
	totalSeconds float64
	at           time.Time
}

// ProcessCollector enumerates processes and samples their CPU and memory use.
// CPU percent needs two samples separated by wall-clock time, so the collector
// keeps the previous sample per pid; everything else is fetched fresh.
type ProcessCollector struct {
	mu    sync.Mutex
	prev  map[int32]cpuSample
	cores int
	clock func() time.Time
}

func NewProcessCollector() *ProcessCollector {
	cores, err := cpu.Counts(true)
	if err != nil || cores < 1 {
		cores = 1
	}
	return &ProcessCollector{
		prev:  make(map[int32]cpuSample),
		cores: cores,
		clock: time.Now,
	}
}

// cpuPercent computes utilization from a kernel+user time delta over elapsed
// wall time, normalized by logical core count and clamped to [0,100].
// No smoothing is applied.
func cpuPercent(deltaCPUSeconds, wallSeconds float64, cores int) float64 {
	if wallSeconds <= 0 || cores < 1 {
		return 0
	}
	pct := deltaCPUSeconds / (wallSeconds * float64(cores)) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// sample records the current CPU time for pid and returns the computed
// percent. The first sample for a pid yields 0 until a second one exists.
func (c *ProcessCollector) sample(pid int32, totalSeconds float64, now time.Time, next map[int32]cpuSample) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	next[pid] = cpuSample{totalSeconds: totalSeconds, at: now}
	prev, ok := c.prev[pid]
	if !ok {
		return 0
	}
	return cpuPercent(totalSeconds-prev.totalSeconds, now.Sub(prev.at).Seconds(), c.cores)
}

// swapSamples replaces the sample table wholesale so pids that exited since
// the last pass are forgotten.
func (c *ProcessCollector) swapSamples(next map[int32]cpuSample) {
	c.mu.Lock()
	c.prev = next
	c.mu.Unlock()
}

// Collect enumerates every process visible to the caller. A per-process
// access failure degrades that record to identity-only fields instead of
// failing the collection; only a failed enumeration returns an error.
func (c *ProcessCollector) Collect(ctx context.Context) ([]ProcessRecord, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, &CollectorError{Kind: KindProcess, Err: err}
	}

	now := c.clock()
	next := make(map[int32]cpuSample, len(procs))
	records := make([]ProcessRecord, 0, len(procs))

	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			// Without even a name there is nothing to display.
			continue
		}

		rec := ProcessRecord{PID: p.Pid, Name: name}

		if path, err := p.ExeWithContext(ctx); err == nil {
			rec.Path = path
		}
		rec.Elevated = processElevated(ctx, p)

		if times, terr := p.TimesWithContext(ctx); terr == nil {
			rec.CPUPercent = c.sample(p.Pid, times.User+times.System, now, next)
		} else {
			rec.CPUMissed = true
		}
		if mem, merr := p.MemoryInfoWithContext(ctx); merr == nil && mem != nil {
			rec.MemoryBytes = mem.RSS
		} else {
			rec.MemoryMissed = true
		}
		rec.Degraded = rec.CPUMissed && rec.MemoryMissed

		records = append(records, rec)
	}

	c.swapSamples(next)
	return records, nil
}

// CollectMetrics refreshes only the volatile CPU/memory fields for the pids in
// current. It is the light-weight fine-tick counterpart of Collect: identity
// fields are carried over untouched, and fields that cannot be sampled are
// flagged missed so the cache keeps the previous value marked stale.
func (c *ProcessCollector) CollectMetrics(ctx context.Context, current []ProcessRecord) ([]ProcessRecord, error) {
	now := c.clock()
	next := make(map[int32]cpuSample, len(current))
	records := make([]ProcessRecord, len(current))

	for i, rec := range current {
		rec.Stale = false
		rec.CPUMissed = false
		rec.MemoryMissed = false
		p, err := process.NewProcessWithContext(ctx, rec.PID)
		if err != nil {
			rec.CPUMissed = true
			rec.MemoryMissed = true
			records[i] = rec
			continue
		}

		times, terr := p.TimesWithContext(ctx)
		if terr == nil {
			rec.CPUPercent = c.sample(rec.PID, times.User+times.System, now, next)
		} else {
			rec.CPUMissed = true
		}

		mem, merr := p.MemoryInfoWithContext(ctx)
		if merr == nil && mem != nil {
			rec.MemoryBytes = mem.RSS
		} else {
			rec.MemoryMissed = true
		}

		records[i] = rec
	}

	c.swapSamples(next)
	return records, nil
}
