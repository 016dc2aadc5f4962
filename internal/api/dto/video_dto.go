package dto

import (
	"time"

	"github.com/aiedgeeliza/videogen/internal/domain"
)

// CreateVideoRequest is the submission payload. Prompt length bounds are fixed
// in the API contract; duration bounds are configurable and enforced in the
// handler.
type CreateVideoRequest struct {
	Prompt        string `json:"prompt" binding:"required,min=10,max=10000"`
	DurationLimit int    `json:"duration_limit"`
	FrameRate     int    `json:"frame_rate"`
}

// CreateVideoResponse acknowledges an admitted job.
type CreateVideoResponse struct {
	VideoID   string        `json:"video_id"`
	Status    domain.Status `json:"status"`
	Message   string        `json:"message"`
	StatusURL string        `json:"status_url"`
	CreatedAt time.Time     `json:"created_at"`
	Progress  int           `json:"progress"`
}

// StatusResponse is the poll answer for one job.
type StatusResponse struct {
	domain.JobView
	DownloadURL string `json:"download_url,omitempty"`
}

// ScriptResponse returns the generated script once synthesis has produced one.
type ScriptResponse struct {
	VideoID       string        `json:"video_id"`
	ScriptContent string        `json:"script_content"`
	Status        domain.Status `json:"status"`
}

// ListVideosResponse wraps a filtered listing.
type ListVideosResponse struct {
	Videos []StatusResponse `json:"videos"`
	Total  int              `json:"total"`
}

// CleanupResponse reports a manual retention sweep.
type CleanupResponse struct {
	Removed int    `json:"removed"`
	Message string `json:"message"`
}
