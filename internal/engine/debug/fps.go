// Package debug provides frame statistics and screenshot capture for the
// viewer.
package debug

import "time"

// FPSCounter averages frames over a fixed window.
type FPSCounter struct {
	window  time.Duration
	frames  int
	elapsed time.Duration
	fps     float64
}

// NewFPSCounter reports once per window.
func NewFPSCounter(window time.Duration) *FPSCounter {
	return &FPSCounter{window: window}
}

// Tick records one frame of length dt. When a full window has elapsed it
// returns the average frame rate over it and true.
func (c *FPSCounter) Tick(dt time.Duration) (float64, bool) {
	c.frames++
	c.elapsed += dt
	if c.elapsed < c.window {
		return c.fps, false
	}
	c.fps = float64(c.frames) / c.elapsed.Seconds()
	c.frames = 0
	c.elapsed = 0
	return c.fps, true
}

// FPS returns the last reported rate.
func (c *FPSCounter) FPS() float64 {
	return c.fps
}
