// Package resources samples coarse process usage for the health endpoint.
package resources

import (
	"runtime"
	"runtime/metrics"
	"sync"
	"time"
)

const cpuSecondsMetric = "/sched/cpu:seconds"

// Usage is one sample of process resource usage.
type Usage struct {
	CPUPercent  float64   `json:"cpu_percent"`
	MemoryBytes uint64    `json:"memory_bytes"`
	Goroutines  int       `json:"goroutines"`
	Uptime      string    `json:"uptime"`
	SampledAt   time.Time `json:"sampled_at"`
}

// Tracker derives CPU percentage from the delta between consecutive samples,
// so the first Snapshot always reports zero CPU.
type Tracker struct {
	mu             sync.Mutex
	samples        []metrics.Sample
	lastCPUSeconds float64
	lastSample     time.Time
	numCPU         float64
	started        time.Time
}

// NewTracker starts the uptime clock.
func NewTracker() *Tracker {
	return &Tracker{
		samples: []metrics.Sample{{Name: cpuSecondsMetric}},
		numCPU:  float64(runtime.NumCPU()),
		started: time.Now(),
	}
}

// Snapshot reads the current usage. A nil tracker returns a zero Usage.
func (t *Tracker) Snapshot() Usage {
	if t == nil {
		return Usage{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.samples) == 0 {
		t.samples = []metrics.Sample{{Name: cpuSecondsMetric}}
	}
	if t.numCPU == 0 {
		t.numCPU = float64(runtime.NumCPU())
	}

	metrics.Read(t.samples)
	sample := t.samples[0]
	haveCPU := sample.Value.Kind() == metrics.KindFloat64
	var cpuSeconds float64
	if haveCPU {
		cpuSeconds = sample.Value.Float64()
	}
	now := time.Now()

	var cpuPercent float64
	if haveCPU && !t.lastSample.IsZero() {
		deltaCPU := cpuSeconds - t.lastCPUSeconds
		deltaWall := now.Sub(t.lastSample).Seconds()
		if deltaWall > 0 {
			cpuPercent = (deltaCPU / deltaWall) / t.numCPU * 100
		}
	}
	if haveCPU {
		t.lastCPUSeconds = cpuSeconds
	}
	t.lastSample = now

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	usage := Usage{
		CPUPercent:  cpuPercent,
		MemoryBytes: mem.Alloc,
		Goroutines:  runtime.NumGoroutine(),
		SampledAt:   now.UTC(),
	}
	if !t.started.IsZero() {
		usage.Uptime = now.Sub(t.started).Truncate(time.Second).String()
	}
	return usage
}
