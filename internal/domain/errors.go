package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when a job id is not present in the registry
	ErrJobNotFound = errors.New("job not found")

	// ErrCapacityExceeded is returned when admission would push the number of
	// active jobs past the configured ceiling
	ErrCapacityExceeded = errors.New("maximum concurrent video generation limit reached")

	// ErrInvalidTransition is returned when a status change violates the
	// state machine, including any mutation of a terminal job
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrScriptNotReady is returned when a script is requested before
	// synthesis has produced one
	ErrScriptNotReady = errors.New("script not available for this video")

	// ErrArtifactNotReady is returned when a download is requested before the
	// job has completed
	ErrArtifactNotReady = errors.New("video is not ready for download")
)

// SynthesisError reports a script generation failure: a provider call error,
// an empty response, or an exhausted repair budget.
type SynthesisError struct {
	Reason string
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("script synthesis failed: %s: %v", e.Reason, e.Err)
	}
	return "script synthesis failed: " + e.Reason
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// RenderErrorKind distinguishes render faults that may warrant another
// synthesis attempt from ones that are fatal for the job.
type RenderErrorKind string

const (
	RenderErrScript      RenderErrorKind = "script_error"
	RenderErrEnvironment RenderErrorKind = "environment_error"
	RenderErrTimeout     RenderErrorKind = "timeout"
)

// RenderError reports a rendering failure with its diagnostic kind.
type RenderError struct {
	Kind   RenderErrorKind
	Detail string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render failed (%s): %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("render failed (%s): %s", e.Kind, e.Detail)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
