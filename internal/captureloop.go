package internal

import (
	"context"
	"time"
)

// Capture cadence is a fixed 1 Hz constant, deliberately decoupled from the
// configurable summarization interval.
const captureInterval = 1 * time.Second

// captureLoop drives the capturer at a fixed cadence while the session is
// active. A failed capture is logged and the loop moves on to the next tick;
// only exit conditions are the cleared recording flag and context
// cancellation.
func (c *Controller) captureLoop(ctx context.Context) {
	if err := EnsureDir(c.session.StoragePath()); err != nil {
		LogError("Failed to create storage directory: %v", err)
		return
	}

	ticker := time.NewTicker(c.captureEvery)
	defer ticker.Stop()

	var index uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !c.session.Recording() {
			return
		}

		rec, err := c.captureOnce(index)
		if err != nil {
			LogWarn("Capture failed: %v", err)
			continue
		}
		index++
		c.session.IncrementCaptures()
		LogDebug("Captured %s (%dx%d, %d bytes)", rec.FilePath, rec.Width, rec.Height, rec.FileSize)
	}
}
