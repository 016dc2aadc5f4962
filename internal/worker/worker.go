// Package worker drives the background execution of video generation jobs: a
// goroutine pool sized to the admission ceiling, a per-job stage processor,
// and the retention sweeper.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aiedgeeliza/videogen/internal/artifacts"
	"github.com/aiedgeeliza/videogen/internal/domain"
	"github.com/aiedgeeliza/videogen/internal/registry"
)

// Synthesizer produces and refines animation scripts. Implemented by
// synthesis.Generator.
type Synthesizer interface {
	GenerateScript(ctx context.Context, prompt string, durationLimit int) (string, error)
	RefineScript(ctx context.Context, script string) (string, error)
}

// Renderer turns a script into a video artifact. Implemented by
// render.Engine.
type Renderer interface {
	Render(ctx context.Context, script, jobID string, params domain.RenderParams) (string, error)
}

// Config holds worker configuration
type Config struct {
	Logger          *slog.Logger
	Registry        *registry.Registry
	Synthesizer     Synthesizer
	Renderer        Renderer
	Artifacts       *artifacts.Store
	Concurrency     int
	Retention       time.Duration
	CleanupInterval time.Duration
}

// Worker owns the full lifecycle of submitted jobs. Submission returns
// immediately; each admitted job is processed by exactly one pool goroutine.
type Worker struct {
	logger          *slog.Logger
	registry        *registry.Registry
	synthesizer     Synthesizer
	renderer        Renderer
	artifacts       *artifacts.Store
	concurrency     int
	retention       time.Duration
	cleanupInterval time.Duration

	// buffer equals the admission ceiling: the registry never admits more
	// queued jobs than fit here, so enqueue cannot block
	jobsChan chan string
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:          cfg.Logger,
		registry:        cfg.Registry,
		synthesizer:     cfg.Synthesizer,
		renderer:        cfg.Renderer,
		artifacts:       cfg.Artifacts,
		concurrency:     cfg.Concurrency,
		retention:       cfg.Retention,
		cleanupInterval: cfg.CleanupInterval,
		jobsChan:        make(chan string, cfg.Concurrency),
		stopChan:        make(chan struct{}),
	}
}

// Start spawns the worker pool and the retention sweeper.
func (w *Worker) Start(ctx context.Context) {
	w.spawnWorkerPool(ctx)

	w.wg.Add(1)
	go w.sweepLoop(ctx)
}

// Stop gracefully stops the worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// Submit admits a new job and schedules its background execution. The
// admission check and record creation are atomic inside the registry; on
// rejection nothing is scheduled.
func (w *Worker) Submit(prompt string, params domain.RenderParams) (*domain.Job, error) {
	job, err := w.registry.Create(prompt, params)
	if err != nil {
		return nil, err
	}
	w.jobsChan <- job.ID
	return job, nil
}

// Cancel flips a non-terminal job to cancelled. The processing goroutine
// observes the terminal state at its next stage boundary and stops issuing
// adapter calls for the job.
func (w *Worker) Cancel(id string) (*domain.Job, error) {
	return w.registry.Transition(id, domain.StatusCancelled, registry.Fields{
		Message: "Video generation cancelled",
	})
}
