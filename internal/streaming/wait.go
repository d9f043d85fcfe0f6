package streaming

import (
	"context"
	"os"
	"time"
)

// DefaultSegmentWait bounds how long a segment request may block for the
// encoder to flush the file. The published VOD playlist deliberately
// references segments that do not exist yet.
const DefaultSegmentWait = 60 * time.Second

// DefaultPollInterval is the existence poll period.
const DefaultPollInterval = 50 * time.Millisecond

// WaitForFile polls for path to exist, up to the given bound. It returns
// true as soon as the file is present and false when the bound elapses or
// the context is canceled. A non-positive interval uses the default.
func WaitForFile(ctx context.Context, path string, bound, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	deadline := time.Now().Add(bound)
	for {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}
