package domain

import "time"

// JobView is the outward projection of a job. It deliberately excludes the
// script text and any adapter internals.
type JobView struct {
	ID                string     `json:"video_id"`
	Status            Status     `json:"status"`
	Message           string     `json:"message"`
	Progress          int        `json:"progress"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	Error             string     `json:"error,omitempty"`
	ArtifactAvailable bool       `json:"artifact_available"`
}

// View builds the external projection of the job.
func (j *Job) View() JobView {
	return JobView{
		ID:                j.ID,
		Status:            j.Status,
		Message:           j.Message,
		Progress:          j.Progress,
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
		CompletedAt:       j.CompletedAt,
		Error:             j.Error,
		ArtifactAvailable: j.Status == StatusCompleted && j.ArtifactPath != "",
	}
}
