// Package clock provides the monotonic millisecond time source the watchdog
// registry runs against. Samples are uint32 and free-running: they wrap
// around at 2^32 ms (about 49.7 days), which the registry's elapsed-time
// arithmetic is built to tolerate.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond source, monotonic modulo 2^32.
type Clock interface {
	NowMS() uint32
}

// Wall reads the process monotonic clock, truncated to the uint32 domain.
type Wall struct {
	start time.Time
}

// NewWall returns a Wall clock anchored at the moment of the call.
func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

// NowMS returns milliseconds elapsed since the clock was created. The
// subtraction uses Go's monotonic clock reading, so wall-clock adjustments
// do not affect it.
func (w *Wall) NowMS() uint32 {
	return uint32(time.Since(w.start).Milliseconds())
}

// Manual is a settable clock for tests and simulations.
// It is safe for concurrent use.
type Manual struct {
	now atomic.Uint32
}

// NewManual returns a Manual clock starting at now.
func NewManual(now uint32) *Manual {
	m := &Manual{}
	m.now.Store(now)
	return m
}

// NowMS returns the current manual time.
func (m *Manual) NowMS() uint32 {
	return m.now.Load()
}

// Set moves the clock to now.
func (m *Manual) Set(now uint32) {
	m.now.Store(now)
}

// Advance moves the clock forward by d milliseconds, wrapping at 2^32.
func (m *Manual) Advance(d uint32) {
	m.now.Add(d)
}
