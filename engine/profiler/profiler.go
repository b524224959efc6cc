package profiler

import (
	"log"
	"runtime"
	"time"
)

// FrameSample is what one rendered frame reports to the profiler.
type FrameSample struct {
	Commands  int
	Instances int
	DrawCalls int
	Dropped   int
	Culled    int
	Failed    bool
}

// Summary is the aggregate of the samples recorded over one update interval.
type Summary struct {
	Frames        int
	FPS           float64
	AvgInstances  float64
	AvgDrawCalls  float64
	Dropped       int
	Culled        int
	Failed        int
	PeakInstances int
}

// Profiler tracks frame rate, render counters and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	logger         *log.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	instances     int
	drawCalls     int
	dropped       int
	culled        int
	failed        int
	peakInstances int
	last          Summary
}

// NewProfiler creates a new Profiler logging once per interval.
// A non-positive interval defaults to 1 second.
//
// Parameters:
//   - interval: how often stats are logged
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		logger:         log.Default(),
		lastTime:       time.Now(),
		updateInterval: interval,
	}
}

// SetLogger replaces the logger stats are written to.
func (p *Profiler) SetLogger(l *log.Logger) {
	if l != nil {
		p.logger = l
	}
}

// Record adds one frame's counters to the current interval.
//
// Parameters:
//   - s: the frame's counters
func (p *Profiler) Record(s FrameSample) {
	p.instances += s.Instances
	p.drawCalls += s.DrawCalls
	p.dropped += s.Dropped
	p.culled += s.Culled
	if s.Failed {
		p.failed++
	}
	p.peakInstances = max(p.peakInstances, s.Instances)
}

// Last returns the summary logged by the most recent interval.
func (p *Profiler) Last() Summary {
	return p.last
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed: FPS, instance and draw call
// averages, dropped and culled instances, heap usage, allocation rate and GC pauses.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	return p.tickAt(time.Now())
}

func (p *Profiler) tickAt(currentTime time.Time) bool {
	p.frameCount++
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	frames := float64(p.frameCount)
	p.last = Summary{
		Frames:        p.frameCount,
		FPS:           frames / elapsed.Seconds(),
		AvgInstances:  float64(p.instances) / frames,
		AvgDrawCalls:  float64(p.drawCalls) / frames,
		Dropped:       p.dropped,
		Culled:        p.culled,
		Failed:        p.failed,
		PeakInstances: p.peakInstances,
	}

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Printf("[Profiler] FPS: %.2f | Instances: %.0f (peak %d) | Draws: %.1f | Dropped: %d | Culled: %d | Failed: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs)",
		p.last.FPS, p.last.AvgInstances, p.last.PeakInstances, p.last.AvgDrawCalls, p.last.Dropped, p.last.Culled, p.last.Failed,
		allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.instances, p.drawCalls, p.dropped, p.culled, p.failed, p.peakInstances = 0, 0, 0, 0, 0, 0
	return true
}
