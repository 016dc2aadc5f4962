package worker

import (
	"context"
	"log/slog"
	"time"
)

// sweepLoop periodically removes terminal jobs past the retention window.
func (w *Worker) sweepLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	w.logger.Info("Retention sweeper started",
		slog.Duration("interval", w.cleanupInterval),
		slog.Duration("retention", w.retention),
	)

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SweepOnce()
		}
	}
}

// SweepOnce removes terminal jobs whose terminal timestamp is older than the
// retention window, along with their artifact files, and returns the number
// of jobs removed. Artifact removal is best-effort: a failure is logged and
// does not keep the record around.
func (w *Worker) SweepOnce() int {
	removed := w.registry.Sweep(time.Now(), w.retention)
	for _, job := range removed {
		if err := w.artifacts.Remove(job.ArtifactPath); err != nil {
			w.logger.Warn("Failed to remove swept artifact",
				slog.String("job_id", job.ID),
				slog.String("artifact", job.ArtifactPath),
				slog.String("error", err.Error()),
			)
		}
	}

	if len(removed) > 0 {
		w.logger.Info("Retention sweep removed jobs",
			slog.Int("count", len(removed)),
		)
	}
	return len(removed)
}
