package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"

	"github.com/aiedgeeliza/videogen/internal/api/dto"
	"github.com/aiedgeeliza/videogen/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateVideo handles POST /api/v1/videos
// Admits and schedules a new video generation job.
func (h *VideoHandler) CreateVideo(c *gin.Context) {
	var req dto.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.DurationLimit == 0 {
		req.DurationLimit = defaultDurationLimit
	}
	if req.DurationLimit < h.minDuration || req.DurationLimit > h.maxDuration {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("duration_limit must be between %d and %d seconds", h.minDuration, h.maxDuration),
		})
		return
	}
	if req.FrameRate < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "frame_rate must not be negative"})
		return
	}

	job, err := h.worker.Submit(req.Prompt, domain.RenderParams{
		DurationLimit: req.DurationLimit,
		FrameRate:     req.FrameRate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Maximum concurrent video generation limit reached. Please try again later.",
			})
			return
		}
		h.logger.Error("Failed to submit job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
		return
	}

	c.JSON(http.StatusAccepted, dto.CreateVideoResponse{
		VideoID:   job.ID,
		Status:    job.Status,
		Message:   job.Message,
		StatusURL: fmt.Sprintf("/api/v1/videos/%s/status", job.ID),
		CreatedAt: job.CreatedAt,
		Progress:  job.Progress,
	})
}

// GetStatus handles GET /api/v1/videos/:video_id/status
func (h *VideoHandler) GetStatus(c *gin.Context) {
	job, ok := h.lookupJob(c)
	if !ok {
		return
	}

	resp := dto.StatusResponse{JobView: job.View()}
	if resp.ArtifactAvailable {
		resp.DownloadURL = fmt.Sprintf("/api/v1/videos/%s/download", job.ID)
	}
	c.JSON(http.StatusOK, resp)
}

// GetScript handles GET /api/v1/videos/:video_id/script
// Returns the generated script once synthesis has produced one.
func (h *VideoHandler) GetScript(c *gin.Context) {
	job, ok := h.lookupJob(c)
	if !ok {
		return
	}

	if job.Script == "" {
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrScriptNotReady.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ScriptResponse{
		VideoID:       job.ID,
		ScriptContent: job.Script,
		Status:        job.Status,
	})
}

// DownloadVideo handles GET /api/v1/videos/:video_id/download
func (h *VideoHandler) DownloadVideo(c *gin.Context) {
	job, ok := h.lookupJob(c)
	if !ok {
		return
	}

	if job.Status != domain.StatusCompleted || job.ArtifactPath == "" {
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrArtifactNotReady.Error()})
		return
	}

	if _, err := os.Stat(job.ArtifactPath); err != nil {
		h.logger.Error("Artifact file missing",
			slog.String("job_id", job.ID),
			slog.String("artifact", job.ArtifactPath),
		)
		c.JSON(http.StatusNotFound, gin.H{"error": "Video file not found"})
		return
	}

	c.FileAttachment(job.ArtifactPath, fmt.Sprintf("educational_video_%s.mp4", job.ID))
}

// CancelVideo handles POST /api/v1/videos/:video_id/cancel
// Requests cooperative cancellation of a non-terminal job.
func (h *VideoHandler) CancelVideo(c *gin.Context) {
	videoID, ok := h.videoID(c)
	if !ok {
		return
	}

	job, err := h.worker.Cancel(videoID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		case errors.Is(err, domain.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "Video is already in a terminal state"})
		default:
			h.logger.Error("Failed to cancel job", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel video"})
		}
		return
	}

	c.JSON(http.StatusOK, job.View())
}

// DeleteVideo handles DELETE /api/v1/videos/:video_id
// Removes the record and, best-effort, the artifact file.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID, ok := h.videoID(c)
	if !ok {
		return
	}

	job, err := h.registry.Delete(videoID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}

	if err := h.artifacts.Remove(job.ArtifactPath); err != nil {
		// record is gone either way, file cleanup is best-effort
		h.logger.Warn("Failed to remove artifact on delete",
			slog.String("job_id", job.ID),
			slog.String("artifact", job.ArtifactPath),
			slog.String("error", err.Error()),
		)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

// ListVideos handles GET /api/v1/videos
// Lists jobs, newest first, optionally filtered by status.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	filter := domain.Status(c.Query("status"))
	if filter != "" && !filter.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	jobs := h.registry.List(filter)
	videos := make([]dto.StatusResponse, len(jobs))
	for i, job := range jobs {
		videos[i] = dto.StatusResponse{JobView: job.View()}
		if videos[i].ArtifactAvailable {
			videos[i].DownloadURL = fmt.Sprintf("/api/v1/videos/%s/download", job.ID)
		}
	}

	c.JSON(http.StatusOK, dto.ListVideosResponse{
		Videos: videos,
		Total:  len(videos),
	})
}

// Cleanup handles POST /api/v1/cleanup
// Manually triggers a retention sweep.
func (h *VideoHandler) Cleanup(c *gin.Context) {
	removed := h.worker.SweepOnce()
	c.JSON(http.StatusOK, dto.CleanupResponse{
		Removed: removed,
		Message: "Cleanup completed",
	})
}

// Stats handles GET /api/v1/stats
func (h *VideoHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.GetStats())
}

// Health handles GET /health
// Reports engine availability and registry load.
func (h *VideoHandler) Health(c *gin.Context) {
	manimVersion := "not installed"
	if path, err := exec.LookPath(h.manimPath); err == nil {
		manimVersion = path
	}
	_, ffmpegErr := exec.LookPath("ffmpeg")

	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"manim":            manimVersion,
		"ffmpeg_available": ffmpegErr == nil,
		"active_videos":    h.registry.ActiveCount(),
		"videos_dir":       h.videosDir,
		"temp_dir":         h.tempDir,
	})
}

// videoID validates the path parameter as a UUID.
func (h *VideoHandler) videoID(c *gin.Context) (string, bool) {
	videoID := c.Param("video_id")
	if _, err := uuid.Parse(videoID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video_id must be a valid UUID"})
		return "", false
	}
	return videoID, true
}

func (h *VideoHandler) lookupJob(c *gin.Context) (*domain.Job, bool) {
	videoID, ok := h.videoID(c)
	if !ok {
		return nil, false
	}

	job, err := h.registry.Get(videoID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return nil, false
	}
	return job, true
}
