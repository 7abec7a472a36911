package pipeline

import (
	"sync"
	"time"
)

// ModuleStats accumulates count/reject/error/latency data for one module.
// The framework owns these, not the module: a module only ever returns a
// Result, and the pipeline observes it to update stats, matching the
// "framework-owned telemetry, not self-reported" split used elsewhere in
// this gateway (compare the KMS audit log, which the manager writes, never
// the provider).
type ModuleStats struct {
	Count          uint64
	RejectCount    uint64
	ErrorCount     uint64
	AvgLatencyMs   float64
	TimeoutCount   uint64
}

type statsRegistry struct {
	mu    sync.RWMutex
	stats map[string]*ModuleStats
}

func newStatsRegistry() *statsRegistry {
	return &statsRegistry{stats: map[string]*ModuleStats{}}
}

func (r *statsRegistry) record(name string, elapsed time.Duration, res Result, timedOut bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[name]
	if !ok {
		s = &ModuleStats{}
		r.stats[name] = s
	}
	s.Count++
	if timedOut {
		s.TimeoutCount++
		s.ErrorCount++
	} else if res.IsTerminateErr() {
		s.ErrorCount++
	} else if res.IsTerminate() {
		s.RejectCount++
	}
	ms := float64(elapsed.Microseconds()) / 1000.0
	if s.Count == 1 {
		s.AvgLatencyMs = ms
	} else {
		s.AvgLatencyMs += (ms - s.AvgLatencyMs) / float64(s.Count)
	}
}

// Snapshot returns a copy of the stats recorded so far for name.
func (r *statsRegistry) Snapshot(name string) (ModuleStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stats[name]
	if !ok {
		return ModuleStats{}, false
	}
	return *s, true
}

// All returns a copy of every module's accumulated stats.
func (r *statsRegistry) All() map[string]ModuleStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]ModuleStats, len(r.stats))
	for k, v := range r.stats {
		out[k] = *v
	}
	return out
}
