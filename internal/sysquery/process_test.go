package sysquery

import (
	"context"
	"testing"
	"time"
)

func TestCPUPercent(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
		wall  float64
		cores int
		want  float64
	}{
		{"half of one core", 0.5, 1.0, 1, 50},
		{"normalized by cores", 1.0, 1.0, 4, 25},
		{"zero wall time", 1.0, 0, 4, 0},
		{"negative wall time", 1.0, -1, 4, 0},
		{"negative delta clamps to zero", -0.5, 1.0, 2, 0},
		{"overshoot clamps to hundred", 10.0, 1.0, 2, 100},
		{"zero cores", 1.0, 1.0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cpuPercent(tt.delta, tt.wall, tt.cores)
			if got != tt.want {
				t.Errorf("cpuPercent(%v, %v, %d) = %v, want %v", tt.delta, tt.wall, tt.cores, got, tt.want)
			}
			if got < 0 {
				t.Errorf("cpuPercent must never be negative, got %v", got)
			}
		})
	}
}

func TestProcessCollectorFirstSampleYieldsZero(t *testing.T) {
	c := NewProcessCollector()
	now := time.Now()

	next := make(map[int32]cpuSample)
	if pct := c.sample(42, 3.0, now, next); pct != 0 {
		t.Errorf("first sample for a pid should yield 0%%, got %v", pct)
	}
	c.swapSamples(next)

	next = make(map[int32]cpuSample)
	pct := c.sample(42, 3.5, now.Add(time.Second), next)
	if pct <= 0 {
		t.Errorf("second sample with CPU time consumed should be positive, got %v", pct)
	}
}

func TestProcessCollectorForgetsDeadPids(t *testing.T) {
	c := NewProcessCollector()
	now := time.Now()

	next := make(map[int32]cpuSample)
	c.sample(1, 1.0, now, next)
	c.swapSamples(next)

	// A pass that no longer sees pid 1 drops its sample.
	c.swapSamples(make(map[int32]cpuSample))

	next = make(map[int32]cpuSample)
	if pct := c.sample(1, 9.0, now.Add(time.Second), next); pct != 0 {
		t.Errorf("a reappearing pid should start over at 0%%, got %v", pct)
	}
}

func TestProcessCollectorSystem(t *testing.T) {
	c := NewProcessCollector()
	records, err := c.Collect(context.Background())
	if err != nil {
		t.Skipf("Skipping system test: %v (might be environment specific)", err)
	}
	if len(records) == 0 {
		t.Fatal("expected at least one visible process")
	}

	seen := make(map[int32]bool, len(records))
	for _, r := range records {
		if r.PID <= 0 {
			t.Errorf("invalid pid %d", r.PID)
		}
		if seen[r.PID] {
			t.Errorf("pid %d appears twice in one snapshot", r.PID)
		}
		seen[r.PID] = true
		if r.CPUPercent < 0 || r.CPUPercent > 100 {
			t.Errorf("pid %d cpu out of bounds: %v", r.PID, r.CPUPercent)
		}
		if !r.Degraded && r.Name == "" {
			t.Errorf("pid %d has no name but is not degraded", r.PID)
		}
	}

	// A second pass through the fine-tick path keeps identities intact.
	refreshed, err := c.CollectMetrics(context.Background(), records)
	if err != nil {
		t.Fatalf("CollectMetrics: %v", err)
	}
	if len(refreshed) != len(records) {
		t.Fatalf("metrics refresh changed record count: %d != %d", len(refreshed), len(records))
	}
	for i, r := range refreshed {
		if r.PID != records[i].PID || r.Name != records[i].Name {
			t.Errorf("metrics refresh touched identity fields at %d", i)
		}
		if r.CPUPercent < 0 {
			t.Errorf("pid %d negative cpu after refresh: %v", r.PID, r.CPUPercent)
		}
	}
}
