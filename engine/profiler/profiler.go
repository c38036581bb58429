// Package profiler tracks frame rate and memory statistics for performance
// monitoring of the render loop.
package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Profiler tracks frame rate and memory statistics, emitting them to a
// structured logger at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler. The update interval defaults to 1
// second and output goes to slog's default logger.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// ProfilerOption is a functional option used to configure a Profiler during
// construction.
type ProfilerOption func(*Profiler)

// WithLogger routes profiler output to the given logger.
//
// Parameters:
//   - logger: the destination logger
//
// Returns:
//   - ProfilerOption: a function that sets the logger
func WithLogger(logger *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// WithUpdateInterval sets how often statistics are emitted.
//
// Parameters:
//   - interval: the emission interval
//
// Returns:
//   - ProfilerOption: a function that sets the interval
func WithUpdateInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}

// Tick should be called once per frame to track frame timing. Emits
// performance statistics when the update interval has elapsed: FPS, heap
// usage, allocation rate, GC count and pause times, total memory.
//
// Returns:
//   - bool: true if stats were emitted this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap; TotalAlloc is cumulative churn; Sys is the actual
	// process footprint obtained from the OS.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Info("frame stats",
		"fps", fps,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc_count", gcCount,
		"gc_last_pause_us", lastPauseUs,
		"gc_max_pause_us", maxPauseUs,
		"sys_mb", sysMB)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
