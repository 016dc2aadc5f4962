package domain

import "time"

// Status is the lifecycle state of a video generation job.
type Status string

const (
	StatusQueued           Status = "queued"
	StatusGeneratingScript Status = "generating_script"
	StatusValidatingScript Status = "validating_script"
	StatusRendering        Status = "rendering"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
	StatusCancelled        Status = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusQueued, StatusGeneratingScript, StatusValidatingScript,
		StatusRendering, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the edge s -> to is part of the state machine.
// Terminal states are absorbing. Cancellation is reachable from any
// non-terminal state, failure from any in-flight stage.
func (s Status) CanTransition(to Status) bool {
	if s.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	switch s {
	case StatusQueued:
		return to == StatusGeneratingScript
	case StatusGeneratingScript:
		return to == StatusValidatingScript || to == StatusFailed
	case StatusValidatingScript:
		return to == StatusValidatingScript || to == StatusRendering || to == StatusFailed
	case StatusRendering:
		return to == StatusCompleted || to == StatusFailed
	}
	return false
}

// StageProgress returns the coarse progress anchor for a status. Terminal
// failure states carry no anchor of their own; the job keeps whatever
// progress it had reached.
func StageProgress(s Status) int {
	switch s {
	case StatusQueued:
		return 0
	case StatusGeneratingScript:
		return 25
	case StatusValidatingScript:
		return 40
	case StatusRendering:
		return 60
	case StatusCompleted:
		return 100
	}
	return -1
}

// RenderParams are caller-supplied rendering bounds. They are validated at the
// API boundary and passed through opaquely.
type RenderParams struct {
	DurationLimit int // seconds
	FrameRate     int // 0 means engine default
}

// Job is the canonical record for one video generation request. The registry
// exclusively owns it; everything else works on copies.
type Job struct {
	ID           string
	Prompt       string
	Params       RenderParams
	Status       Status
	Progress     int
	Message      string
	Script       string
	ArtifactPath string
	Error        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}
