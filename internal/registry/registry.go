package registry

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aiedgeeliza/videogen/internal/domain"
	"github.com/google/uuid"
)

// Registry is the single process-wide store of job records. All mutation goes
// through it; one mutex serializes transitions so readers never observe a
// half-applied update. Construct it once in main and pass it by reference.
type Registry struct {
	logger    *slog.Logger
	maxActive int

	mu   sync.Mutex
	jobs map[string]*domain.Job
	now  func() time.Time
}

// New creates an empty registry with the given admission ceiling.
func New(maxActive int, logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		maxActive: maxActive,
		jobs:      make(map[string]*domain.Job),
		now:       time.Now,
	}
}

// Fields carries the record updates applied together with a status change.
// Zero values mean "leave unchanged".
type Fields struct {
	Message      string
	Script       string
	ArtifactPath string
	Error        string
}

// Create admits and inserts a new queued job. The admission check and the
// insert share one critical section, so two racing submissions cannot both
// take the last slot below the ceiling. Rejection has no side effect.
func (r *Registry) Create(prompt string, params domain.RenderParams) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := r.activeCountLocked()
	if active >= r.maxActive {
		r.logger.Warn("Admission rejected",
			slog.Int("active_jobs", active),
			slog.Int("max_active", r.maxActive),
		)
		return nil, domain.ErrCapacityExceeded
	}

	now := r.now()
	job := &domain.Job{
		ID:        uuid.New().String(),
		Prompt:    prompt,
		Params:    params,
		Status:    domain.StatusQueued,
		Progress:  0,
		Message:   "Video generation queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.jobs[job.ID] = job

	r.logger.Info("Admission accepted",
		slog.String("job_id", job.ID),
		slog.Int("active_jobs", active+1),
		slog.Int("max_active", r.maxActive),
	)

	copied := *job
	return &copied, nil
}

// Get returns a copy of the job record.
func (r *Registry) Get(id string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

// List returns copies of all jobs, newest first, optionally filtered by
// status (empty filter means all).
func (r *Registry) List(status domain.Status) []*domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		if status != "" && job.Status != status {
			continue
		}
		copied := *job
		jobs = append(jobs, &copied)
	}

	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
		}
		return jobs[i].ID > jobs[j].ID
	})

	return jobs
}

// Transition applies one step of the state machine together with the given
// field updates. Terminal jobs absorb every attempt with
// domain.ErrInvalidTransition and stay unchanged. Progress never decreases.
func (r *Registry) Transition(id string, to domain.Status, fields Fields) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	if !job.Status.CanTransition(to) {
		r.logger.Warn("Rejected status transition",
			slog.String("job_id", id),
			slog.String("from", string(job.Status)),
			slog.String("to", string(to)),
		)
		return nil, domain.ErrInvalidTransition
	}

	from := job.Status
	job.Status = to
	if p := domain.StageProgress(to); p > job.Progress {
		job.Progress = p
	}
	if fields.Message != "" {
		job.Message = fields.Message
	}
	if fields.Script != "" {
		job.Script = fields.Script
	}
	if fields.ArtifactPath != "" {
		job.ArtifactPath = fields.ArtifactPath
	}
	if to == domain.StatusFailed {
		job.Error = fields.Error
	}
	job.UpdatedAt = r.now()
	if to.IsTerminal() {
		done := job.UpdatedAt
		job.CompletedAt = &done
	}

	r.logger.Info("Job status transition",
		slog.String("job_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.Int("progress", job.Progress),
		slog.String("error", job.Error),
	)

	copied := *job
	return &copied, nil
}

// Delete removes the record and returns a copy of it so the caller can
// best-effort remove the artifact file afterwards.
func (r *Registry) Delete(id string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	delete(r.jobs, id)

	r.logger.Info("Job deleted",
		slog.String("job_id", id),
		slog.String("status", string(job.Status)),
	)

	copied := *job
	return &copied, nil
}

// ActiveCount returns the number of jobs in non-terminal states.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeCountLocked()
}

func (r *Registry) activeCountLocked() int {
	count := 0
	for _, job := range r.jobs {
		if !job.Status.IsTerminal() {
			count++
		}
	}
	return count
}

// Stats summarizes the registry contents.
type Stats struct {
	TotalJobs       int                   `json:"total_videos"`
	ActiveJobs      int                   `json:"active_videos"`
	StatusBreakdown map[domain.Status]int `json:"status_breakdown"`
}

// GetStats returns counts per status plus totals.
func (r *Registry) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	breakdown := map[domain.Status]int{
		domain.StatusQueued:           0,
		domain.StatusGeneratingScript: 0,
		domain.StatusValidatingScript: 0,
		domain.StatusRendering:        0,
		domain.StatusCompleted:        0,
		domain.StatusFailed:           0,
		domain.StatusCancelled:        0,
	}
	for _, job := range r.jobs {
		breakdown[job.Status]++
	}

	return Stats{
		TotalJobs:       len(r.jobs),
		ActiveJobs:      r.activeCountLocked(),
		StatusBreakdown: breakdown,
	}
}

// Sweep removes terminal jobs whose terminal timestamp is strictly older than
// now minus retention and returns copies of the removed records so the caller
// can remove their artifact files. Running it again immediately removes
// nothing further.
func (r *Registry) Sweep(now time.Time, retention time.Duration) []*domain.Job {
	cutoff := now.Add(-retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*domain.Job
	for id, job := range r.jobs {
		if !job.Status.IsTerminal() || job.CompletedAt == nil {
			continue
		}
		if !job.CompletedAt.Before(cutoff) {
			continue
		}
		copied := *job
		removed = append(removed, &copied)
		delete(r.jobs, id)

		r.logger.Info("Swept expired job",
			slog.String("job_id", id),
			slog.String("status", string(job.Status)),
			slog.Time("completed_at", *job.CompletedAt),
		)
	}

	return removed
}
