package service

import (
	"context"
	"time"

	"github.com/piyushzingade/exchange/snapshot"
)

// StartSnapshotJob periodically captures engine state and writes it
// through the snapshot writer, fully decoupled from command handling.
// On shutdown it writes one final snapshot, then closes the returned
// channel.
func (e *Engine) StartSnapshotJob(ctx context.Context, w *snapshot.Writer, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				e.writeSnapshot(w)
				return
			case <-t.C:
				e.writeSnapshot(w)
			}
		}
	}()
	return done
}

func (e *Engine) writeSnapshot(w *snapshot.Writer) {
	// Capture copies under the lock; the file write happens outside it.
	if err := w.Write(e.Capture()); err != nil {
		e.log.WithError(err).Warn("snapshot write failed")
	}
}
