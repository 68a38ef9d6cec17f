package logger

import (
	"runtime"
	"time"
)

// MemStats 进程内存快照，单位MB
type MemStats struct {
	AllocMB     uint64 `json:"allocMb"`
	SysMB       uint64 `json:"sysMb"`
	HeapAllocMB uint64 `json:"heapAllocMb"`
	NumGC       uint32 `json:"numGc"`
	Goroutines  int    `json:"goroutines"`
}

// ReadMemStats 读取当前内存使用情况
func ReadMemStats() MemStats {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	return MemStats{
		AllocMB:     stats.Alloc / 1024 / 1024,
		SysMB:       stats.Sys / 1024 / 1024,
		HeapAllocMB: stats.HeapAlloc / 1024 / 1024,
		NumGC:       stats.NumGC,
		Goroutines:  runtime.NumGoroutine(),
	}
}

// MemStatsMonitor 定期把内存使用写入日志
type MemStatsMonitor struct {
	interval time.Duration
	stopped  chan struct{}
}

// NewMemStatsMonitor 创建一个新的内存统计监控器
func NewMemStatsMonitor(interval time.Duration) *MemStatsMonitor {
	return &MemStatsMonitor{
		interval: interval,
		stopped:  make(chan struct{}),
	}
}

// Start 开始监控内存使用情况
func (m *MemStatsMonitor) Start() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				LogMemStats()
			case <-m.stopped:
				return
			}
		}
	}()
}

// Stop 停止监控
func (m *MemStatsMonitor) Stop() {
	close(m.stopped)
}

// LogMemStats 记录一次内存使用统计
func LogMemStats() {
	s := ReadMemStats()
	Info("内存使用统计",
		"alloc_mb", s.AllocMB,
		"sys_mb", s.SysMB,
		"heap_alloc_mb", s.HeapAllocMB,
		"num_gc", s.NumGC,
		"goroutines", s.Goroutines)
}
