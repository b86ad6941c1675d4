// SPDX-License-Identifier: MIT

// Package clock schedules render frames at absolute wall-clock
// deadlines. Sleeping toward a fixed target per frame, instead of a
// fixed duration, keeps per-frame jitter from accumulating into drift.
package clock

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Clock drives a render loop at a fixed frame rate. Frame n never fires
// before start + n/fps; oversleeping one frame does not push later
// deadlines back.
type Clock struct {
	fps float64

	// Injectable time sources so tests can run on a fake timeline.
	now   func() time.Time
	sleep func(context.Context, time.Duration)
}

// New returns a clock ticking at fps frames per second.
func New(fps float64) (*Clock, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %f", fps)
	}
	return &Clock{fps: fps, now: time.Now, sleep: sleepCtx}, nil
}

// Run invokes tick with the elapsed time since start once per frame,
// first frame immediately, until tick returns false or the context is
// canceled. A canceled context is returned as its error; a tick that
// returns false ends the run cleanly.
func (c *Clock) Run(ctx context.Context, tick func(elapsed time.Duration) bool) error {
	start := c.now()
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !tick(c.now().Sub(start)) {
			return nil
		}

		// Ceil keeps the deadline at or after the exact rational
		// instant, so truncation can never fire a frame early.
		ns := math.Ceil(float64(n+1) / c.fps * float64(time.Second))
		deadline := start.Add(time.Duration(ns))
		if d := deadline.Sub(c.now()); d > 0 {
			c.sleep(ctx, d)
		}
	}
}

// sleepCtx waits for d or until the context is canceled, whichever
// comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
