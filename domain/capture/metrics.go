package capture

import (
	"image"
	"sync/atomic"
	"time"
)

// CaptureStats summarises source behaviour for instrumentation.
type CaptureStats struct {
	Captures         uint64
	Skipped          uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
	Sequence         uint64
}

// counters tracks captures for a Source. Safe for concurrent reads of Stats
// while Next runs.
type counters struct {
	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
	lastNanos    atomic.Int64
}

// record counts a successful capture started at start and builds its snapshot.
func (c *counters) record(img image.Image, id string, start time.Time) FrameSnapshot {
	now := time.Now()
	c.captureNanos.Add(uint64(now.Sub(start).Nanoseconds()))
	c.captures.Add(1)
	c.lastNanos.Store(now.UnixNano())
	return FrameSnapshot{Image: img, CapturedAt: now, Sequence: c.sequence.Add(1), ID: id}
}

// fail counts a frame that could not be acquired and builds its snapshot.
func (c *counters) fail(id string, err error) FrameSnapshot {
	c.skipped.Add(1)
	return FrameSnapshot{CapturedAt: time.Now(), Sequence: c.sequence.Add(1), ID: id, Err: err}
}

func (c *counters) Stats() CaptureStats {
	captures := c.captures.Load()
	total := c.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	var last time.Time
	if n := c.lastNanos.Load(); n != 0 {
		last = time.Unix(0, n)
	}
	return CaptureStats{
		Captures:         captures,
		Skipped:          c.skipped.Load(),
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      last,
		Sequence:         c.sequence.Load(),
	}
}
