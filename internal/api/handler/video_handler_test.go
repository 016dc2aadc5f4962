package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aiedgeeliza/videogen/internal/api/handler"
	"github.com/aiedgeeliza/videogen/internal/api/router"
	"github.com/aiedgeeliza/videogen/internal/artifacts"
	"github.com/aiedgeeliza/videogen/internal/domain"
	"github.com/aiedgeeliza/videogen/internal/registry"
	"github.com/aiedgeeliza/videogen/internal/worker"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type noopSynthesizer struct{}

func (noopSynthesizer) GenerateScript(ctx context.Context, prompt string, durationLimit int) (string, error) {
	return "from manim import *\n\nclass LessonScene(Scene):\n    def construct(self):\n        pass\n", nil
}

func (noopSynthesizer) RefineScript(ctx context.Context, script string) (string, error) {
	return script, nil
}

type noopRenderer struct{}

func (noopRenderer) Render(ctx context.Context, script, jobID string, params domain.RenderParams) (string, error) {
	return "/videos/" + jobID + ".mp4", nil
}

type apiFixture struct {
	router    *gin.Engine
	registry  *registry.Registry
	worker    *worker.Worker
	store     *artifacts.Store
	videosDir string
}

// newAPIFixture wires the full HTTP surface against a real registry and an
// unstarted worker, so submissions stay queued and tests stay deterministic.
func newAPIFixture(t *testing.T, maxConcurrent int) *apiFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.New(maxConcurrent, logger)
	videosDir := t.TempDir()
	store := artifacts.New(videosDir, t.TempDir())

	w := worker.NewWorker(&worker.Config{
		Logger:          logger,
		Registry:        reg,
		Synthesizer:     noopSynthesizer{},
		Renderer:        noopRenderer{},
		Artifacts:       store,
		Concurrency:     maxConcurrent,
		Retention:       time.Hour,
		CleanupInterval: time.Hour,
	})

	r := router.SetupRouter(&handler.Dependencies{
		Logger:      logger,
		Worker:      w,
		Registry:    reg,
		Artifacts:   store,
		MinDuration: 5,
		MaxDuration: 1200,
		ManimPath:   "manim",
		VideosDir:   videosDir,
		TempDir:     "/tmp/manim_videos",
	})

	return &apiFixture{
		router:    r,
		registry:  reg,
		worker:    w,
		store:     store,
		videosDir: videosDir,
	}
}

func (f *apiFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// advance walks a job through registry transitions so handlers can be tested
// against every lifecycle stage.
func advance(t *testing.T, reg *registry.Registry, id string, fields registry.Fields, statuses ...domain.Status) {
	t.Helper()
	for _, status := range statuses {
		_, err := reg.Transition(id, status, fields)
		require.NoError(t, err)
	}
}

func TestCreateVideo(t *testing.T) {
	f := newAPIFixture(t, 2)

	rec := f.do(http.MethodPost, "/api/v1/videos", gin.H{
		"prompt": "explain the pythagorean theorem with animated squares",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode(t, rec)

	id, ok := body["video_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusQueued), body["status"])
	assert.Equal(t, "/api/v1/videos/"+id+"/status", body["status_url"])
	assert.EqualValues(t, 0, body["progress"])

	job, err := f.registry.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 30, job.Params.DurationLimit) // default applied
}

func TestCreateVideo_Validation(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{
			name: "missing prompt",
			body: gin.H{},
		},
		{
			name: "prompt too short",
			body: gin.H{"prompt": "short"},
		},
		{
			name: "duration below minimum",
			body: gin.H{"prompt": "explain the pythagorean theorem", "duration_limit": 2},
		},
		{
			name: "duration above maximum",
			body: gin.H{"prompt": "explain the pythagorean theorem", "duration_limit": 5000},
		},
		{
			name: "negative frame rate",
			body: gin.H{"prompt": "explain the pythagorean theorem", "frame_rate": -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t, 2)
			rec := f.do(http.MethodPost, "/api/v1/videos", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, f.registry.List(""))
		})
	}
}

func TestCreateVideo_CapacityExceeded(t *testing.T) {
	f := newAPIFixture(t, 1)

	rec := f.do(http.MethodPost, "/api/v1/videos", gin.H{
		"prompt": "explain the pythagorean theorem",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/videos", gin.H{
		"prompt": "explain newtonian gravity instead",
	})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "limit reached")

	// the rejected submission left no record behind
	assert.Len(t, f.registry.List(""), 1)
}

func TestGetStatus(t *testing.T) {
	f := newAPIFixture(t, 2)
	job, err := f.registry.Create("explain the pythagorean theorem", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/v1/videos/"+job.ID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, job.ID, body["video_id"])
	assert.Equal(t, string(domain.StatusQueued), body["status"])
	assert.Equal(t, false, body["artifact_available"])
	assert.NotContains(t, body, "download_url")
	assert.NotContains(t, body, "script") // script never leaks through status
}

func TestGetStatus_CompletedIncludesDownloadURL(t *testing.T) {
	f := newAPIFixture(t, 2)
	job, err := f.registry.Create("explain the pythagorean theorem", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)
	advance(t, f.registry, job.ID, registry.Fields{ArtifactPath: "/videos/" + job.ID + ".mp4"},
		domain.StatusGeneratingScript,
		domain.StatusValidatingScript,
		domain.StatusRendering,
		domain.StatusCompleted,
	)

	rec := f.do(http.MethodGet, "/api/v1/videos/"+job.ID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["artifact_available"])
	assert.Equal(t, "/api/v1/videos/"+job.ID+"/download", body["download_url"])
	assert.EqualValues(t, 100, body["progress"])
}

func TestGetStatus_Errors(t *testing.T) {
	f := newAPIFixture(t, 2)

	rec := f.do(http.MethodGet, "/api/v1/videos/not-a-uuid/status", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/videos/"+uuid.New().String()+"/status", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetScript(t *testing.T) {
	f := newAPIFixture(t, 2)
	job, err := f.registry.Create("explain the pythagorean theorem", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)

	// no script yet
	rec := f.do(http.MethodGet, "/api/v1/videos/"+job.ID+"/script", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	advance(t, f.registry, job.ID, registry.Fields{Script: "from manim import *"},
		domain.StatusGeneratingScript,
		domain.StatusValidatingScript,
	)

	rec = f.do(http.MethodGet, "/api/v1/videos/"+job.ID+"/script", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "from manim import *", body["script_content"])
	assert.Equal(t, string(domain.StatusValidatingScript), body["status"])
}

func TestDownloadVideo(t *testing.T) {
	f := newAPIFixture(t, 2)
	job, err := f.registry.Create("explain the pythagorean theorem", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)

	// not completed yet
	rec := f.do(http.MethodGet, "/api/v1/videos/"+job.ID+"/download", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	artifactPath := filepath.Join(f.videosDir, job.ID+".mp4")
	advance(t, f.registry, job.ID, registry.Fields{ArtifactPath: artifactPath},
		domain.StatusGeneratingScript,
		domain.StatusValidatingScript,
		domain.StatusRendering,
		domain.StatusCompleted,
	)

	// record says completed but the file is gone
	rec = f.do(http.MethodGet, "/api/v1/videos/"+job.ID+"/download", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, os.WriteFile(artifactPath, []byte("fake video bytes"), 0o644))
	rec = f.do(http.MethodGet, "/api/v1/videos/"+job.ID+"/download", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "educational_video_"+job.ID+".mp4")
	assert.Equal(t, "fake video bytes", rec.Body.String())
}

func TestCancelVideo(t *testing.T) {
	f := newAPIFixture(t, 2)
	job, err := f.registry.Create("explain the pythagorean theorem", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/api/v1/videos/"+job.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(domain.StatusCancelled), decode(t, rec)["status"])

	// cancelling a terminal job conflicts
	rec = f.do(http.MethodPost, "/api/v1/videos/"+job.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/videos/"+uuid.New().String()+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteVideo(t *testing.T) {
	f := newAPIFixture(t, 2)
	job, err := f.registry.Create("explain the pythagorean theorem", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)

	artifactPath := filepath.Join(f.videosDir, job.ID+".mp4")
	require.NoError(t, os.WriteFile(artifactPath, []byte("fake video bytes"), 0o644))
	advance(t, f.registry, job.ID, registry.Fields{ArtifactPath: artifactPath},
		domain.StatusGeneratingScript,
		domain.StatusValidatingScript,
		domain.StatusRendering,
		domain.StatusCompleted,
	)

	rec := f.do(http.MethodDelete, "/api/v1/videos/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = f.registry.Get(job.ID)
	require.ErrorIs(t, err, domain.ErrJobNotFound)
	_, err = os.Stat(artifactPath)
	assert.True(t, os.IsNotExist(err))

	rec = f.do(http.MethodDelete, "/api/v1/videos/"+job.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListVideos(t *testing.T) {
	f := newAPIFixture(t, 10)

	first, err := f.registry.Create("explain the pythagorean theorem", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)
	_, err = f.registry.Create("explain newtonian gravity", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)
	advance(t, f.registry, first.ID, registry.Fields{}, domain.StatusCancelled)

	rec := f.do(http.MethodGet, "/api/v1/videos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 2, body["total"])

	rec = f.do(http.MethodGet, "/api/v1/videos?status=cancelled", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.EqualValues(t, 1, body["total"])

	rec = f.do(http.MethodGet, "/api/v1/videos?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCleanup(t *testing.T) {
	f := newAPIFixture(t, 2)
	job, err := f.registry.Create("explain the pythagorean theorem", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)
	advance(t, f.registry, job.ID, registry.Fields{}, domain.StatusCancelled)

	// inside the retention window, nothing to remove
	rec := f.do(http.MethodPost, "/api/v1/cleanup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["removed"])
}

func TestStats(t *testing.T) {
	f := newAPIFixture(t, 2)
	_, err := f.registry.Create("explain the pythagorean theorem", domain.RenderParams{DurationLimit: 30})
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["total_videos"])
	assert.EqualValues(t, 1, body["active_videos"])
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t, 2)

	rec := f.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "manim")
	assert.Contains(t, body, "ffmpeg_available")
	assert.EqualValues(t, 0, body["active_videos"])
}
