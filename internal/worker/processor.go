package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aiedgeeliza/videogen/internal/domain"
	"github.com/aiedgeeliza/videogen/internal/registry"
)

// processJob drives one job through the fixed stage sequence. Every stage
// boundary goes through a registry transition; a transition rejected with
// ErrInvalidTransition means the job turned terminal (cancelled) in the
// meantime, so the result in hand is discarded and no further adapter call is
// made. Adapter failures become failed transitions and never propagate out.
func (w *Worker) processJob(ctx context.Context, jobID string) {
	job, err := w.registry.Transition(jobID, domain.StatusGeneratingScript, registry.Fields{
		Message: "Generating Manim script...",
	})
	if err != nil {
		w.logSkip(jobID, "pickup", err)
		return
	}

	script, err := w.synthesizer.GenerateScript(ctx, job.Prompt, job.Params.DurationLimit)
	if err != nil {
		w.failJob(jobID, err)
		return
	}

	if _, err := w.registry.Transition(jobID, domain.StatusValidatingScript, registry.Fields{
		Message: "Validating script...",
		Script:  script,
	}); err != nil {
		w.logSkip(jobID, "validation", err)
		return
	}

	validated, err := w.synthesizer.RefineScript(ctx, script)
	if err != nil {
		w.failJob(jobID, err)
		return
	}

	if _, err := w.registry.Transition(jobID, domain.StatusRendering, registry.Fields{
		Message: "Rendering video...",
		Script:  validated,
	}); err != nil {
		w.logSkip(jobID, "rendering", err)
		return
	}

	artifactPath, err := w.renderer.Render(ctx, validated, jobID, job.Params)
	if err != nil {
		w.failJob(jobID, err)
		return
	}

	if _, err := w.registry.Transition(jobID, domain.StatusCompleted, registry.Fields{
		Message:      "Video generated successfully",
		ArtifactPath: artifactPath,
	}); err != nil {
		// The job turned terminal while rendering; the artifact has no owner
		// anymore, so remove it best-effort.
		w.logSkip(jobID, "completion", err)
		if rmErr := w.artifacts.Remove(artifactPath); rmErr != nil {
			w.logger.Warn("Failed to remove orphaned artifact",
				slog.String("job_id", jobID),
				slog.String("error", rmErr.Error()),
			)
		}
		return
	}

	w.logger.Info("Job completed successfully",
		slog.String("job_id", jobID),
		slog.String("artifact", artifactPath),
	)
}

// failJob records an adapter failure on the job. A rejected transition means
// the job is already terminal and the failure is dropped.
func (w *Worker) failJob(jobID string, cause error) {
	w.logger.Error("Job stage failed",
		slog.String("job_id", jobID),
		slog.String("error", cause.Error()),
	)

	if _, err := w.registry.Transition(jobID, domain.StatusFailed, registry.Fields{
		Message: "Video generation failed",
		Error:   cause.Error(),
	}); err != nil {
		w.logSkip(jobID, "failure", err)
	}
}

func (w *Worker) logSkip(jobID, stage string, err error) {
	if errors.Is(err, domain.ErrInvalidTransition) {
		w.logger.Info("Job terminal before stage, discarding",
			slog.String("job_id", jobID),
			slog.String("stage", stage),
		)
		return
	}
	w.logger.Warn("Job unavailable at stage boundary",
		slog.String("job_id", jobID),
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}
