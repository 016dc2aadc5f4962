package handler

import (
	"log/slog"

	"github.com/aiedgeeliza/videogen/internal/artifacts"
	"github.com/aiedgeeliza/videogen/internal/registry"
	"github.com/aiedgeeliza/videogen/internal/worker"
)

// defaultDurationLimit is applied when a submission omits duration_limit.
const defaultDurationLimit = 30

// Dependencies holds everything the handlers need
type Dependencies struct {
	Logger      *slog.Logger
	Worker      *worker.Worker
	Registry    *registry.Registry
	Artifacts   *artifacts.Store
	MinDuration int
	MaxDuration int
	ManimPath   string
	VideosDir   string
	TempDir     string
}

// VideoHandler handles video generation HTTP requests
type VideoHandler struct {
	logger      *slog.Logger
	worker      *worker.Worker
	registry    *registry.Registry
	artifacts   *artifacts.Store
	minDuration int
	maxDuration int
	manimPath   string
	videosDir   string
	tempDir     string
}

// NewVideoHandler creates a new VideoHandler instance
func NewVideoHandler(deps *Dependencies) *VideoHandler {
	return &VideoHandler{
		logger:      deps.Logger,
		worker:      deps.Worker,
		registry:    deps.Registry,
		artifacts:   deps.Artifacts,
		minDuration: deps.MinDuration,
		maxDuration: deps.MaxDuration,
		manimPath:   deps.ManimPath,
		videosDir:   deps.VideosDir,
		tempDir:     deps.TempDir,
	}
}
