package audio

import "sync/atomic"

// Cursor is the playback position in samples from the start of the
// buffer. The output callback is its only writer; the render loop and
// anything else may read it concurrently. The position is monotonic
// within a session and never exceeds the buffer length.
type Cursor struct {
	pos atomic.Int64
}

// Load returns the current position.
func (c *Cursor) Load() int {
	return int(c.pos.Load())
}

// Reset rewinds to the start. Only valid before playback begins.
func (c *Cursor) Reset() {
	c.pos.Store(0)
}

// advance moves the cursor forward by n samples. Callback-only.
func (c *Cursor) advance(n int) {
	c.pos.Add(int64(n))
}
