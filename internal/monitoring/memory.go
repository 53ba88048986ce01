package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// MemoryStats is one runtime sample
type MemoryStats struct {
	HeapAlloc     uint64    `json:"heap_alloc_bytes"`
	HeapSys       uint64    `json:"heap_sys_bytes"`
	HeapInuse     uint64    `json:"heap_inuse_bytes"`
	NumGC         uint32    `json:"num_gc"`
	PauseTotalNs  uint64    `json:"gc_pause_total_ns"`
	GCCPUFraction float64   `json:"gc_cpu_fraction"`
	NumGoroutine  int       `json:"num_goroutine"`
	Timestamp     time.Time `json:"timestamp"`
}

// MemoryMonitor samples runtime memory stats into Metrics on an interval
type MemoryMonitor struct {
	interval time.Duration
	metrics  *Metrics
	logger   *Logger

	// a summary line is logged every logEvery samples
	logEvery int
	samples  int

	mutex sync.RWMutex
	last  MemoryStats
}

// NewMemoryMonitor creates a monitor; call Start to begin sampling
func NewMemoryMonitor(interval time.Duration, metrics *Metrics, logger *Logger) *MemoryMonitor {
	return &MemoryMonitor{
		interval: interval,
		metrics:  metrics,
		logger:   logger,
		logEvery: 12,
	}
}

// Start samples until ctx is cancelled
func (mm *MemoryMonitor) Start(ctx context.Context) {
	mm.Sample()

	go func() {
		ticker := time.NewTicker(mm.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				mm.Sample()
			case <-ctx.Done():
				mm.logger.Debug("Memory monitoring stopped")
				return
			}
		}
	}()
}

// Sample reads runtime stats once and publishes them
func (mm *MemoryMonitor) Sample() MemoryStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := MemoryStats{
		HeapAlloc:     memStats.HeapAlloc,
		HeapSys:       memStats.HeapSys,
		HeapInuse:     memStats.HeapInuse,
		NumGC:         memStats.NumGC,
		PauseTotalNs:  memStats.PauseTotalNs,
		GCCPUFraction: memStats.GCCPUFraction,
		NumGoroutine:  runtime.NumGoroutine(),
		Timestamp:     time.Now(),
	}

	mm.metrics.RecordGCMetrics(int64(stats.NumGC), int64(stats.PauseTotalNs), int64(stats.HeapAlloc), int64(stats.HeapSys))

	mm.mutex.Lock()
	mm.last = stats
	mm.samples++
	shouldLog := mm.samples%mm.logEvery == 1
	mm.mutex.Unlock()

	if shouldLog {
		mm.logger.SystemLogger("memory_stats", fmt.Sprintf(
			"heap:%dMB/%dMB gc:%d goroutines:%d",
			stats.HeapInuse/(1024*1024),
			stats.HeapSys/(1024*1024),
			stats.NumGC,
			stats.NumGoroutine,
		))
	}

	return stats
}

// Last returns the most recent sample
func (mm *MemoryMonitor) Last() MemoryStats {
	mm.mutex.RLock()
	defer mm.mutex.RUnlock()
	return mm.last
}
