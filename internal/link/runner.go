// internal/link/runner.go
package link

import (
	"context"
	"time"
)

// Run repeats CycleOnce, sleeping Interval after each cycle.
// One goroutine per link. No overlap. Returns when ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.log.WithField("role", w.cfg.Role.String()).Info("worker started")
	defer w.log.Info("worker stopped")

	for ctx.Err() == nil {
		w.CycleOnce()

		if !sleep(ctx, w.cfg.Interval) {
			return
		}
	}
}

// sleep waits d or until ctx is done. It reports false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
