//go:build !tinygo

package hal

import (
	"sync"
	"time"
)

// hostClock reports time since boot, either from the wall clock or from a
// frame counter advanced by the headless runner.
type hostClock struct {
	mu    sync.Mutex
	start time.Time
	frame time.Duration
	ticks uint64
}

func newWallClock() *hostClock {
	return &hostClock{start: time.Now()}
}

func newFrameClock(hz int) *hostClock {
	if hz <= 0 {
		hz = 60
	}
	return &hostClock{frame: time.Second / time.Duration(hz)}
}

func (c *hostClock) now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame > 0 {
		return time.Duration(c.ticks) * c.frame
	}
	return time.Since(c.start)
}

// step advances a frame clock by n frames. It is a no-op on a wall clock.
func (c *hostClock) step(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks += n
}
