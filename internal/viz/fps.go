package viz

import (
	"time"
)

// FPSTracker counts rendered frames per wall-clock second and remembers the
// duration of the most recent frame. It is a composed utility: the manager
// owns one and feeds it from Render, effects never touch it.
type FPSTracker struct {
	windowStart time.Time
	frames      int
	fps         float64
	lastFrame   time.Duration
}

// NewFPSTracker creates a tracker.
func NewFPSTracker() *FPSTracker {
	return &FPSTracker{windowStart: time.Now()}
}

// Record registers one rendered frame and its duration.
func (t *FPSTracker) Record(frameTime time.Duration) {
	t.frames++
	t.lastFrame = frameTime

	elapsed := time.Since(t.windowStart)
	if elapsed >= time.Second {
		t.fps = float64(t.frames) / elapsed.Seconds()
		t.frames = 0
		t.windowStart = time.Now()
	}
}

// FPS returns the frame rate measured over the last completed window.
func (t *FPSTracker) FPS() float64 {
	return t.fps
}

// FrameTime returns the duration of the most recent frame.
func (t *FPSTracker) FrameTime() time.Duration {
	return t.lastFrame
}

// Reset clears all counters.
func (t *FPSTracker) Reset() {
	t.windowStart = time.Now()
	t.frames = 0
	t.fps = 0
	t.lastFrame = 0
}
