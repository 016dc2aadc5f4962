// Package render invokes the external Manim engine against a generated
// script inside an isolated working directory, enforcing a wall-clock
// timeout, and publishes the resulting video through the artifacts store.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aiedgeeliza/videogen/internal/artifacts"
	"github.com/aiedgeeliza/videogen/internal/domain"
)

// minArtifactSize guards against empty or truncated engine output.
const minArtifactSize = 1000

// Options configures the engine invocation.
type Options struct {
	ManimPath string
	Quality   string
	Timeout   time.Duration
}

// Engine is the render adapter. One Render call owns its temp directory
// exclusively and removes it on both success and failure.
type Engine struct {
	logger    *slog.Logger
	store     *artifacts.Store
	manimPath string
	quality   string
	timeout   time.Duration
}

// New creates an engine from options, filling in defaults.
func New(opts Options, store *artifacts.Store, logger *slog.Logger) *Engine {
	manimPath := opts.ManimPath
	if manimPath == "" {
		manimPath = "manim"
	}
	quality := opts.Quality
	if quality == "" {
		quality = "-ql"
	}
	return &Engine{
		logger:    logger,
		store:     store,
		manimPath: manimPath,
		quality:   quality,
		timeout:   opts.Timeout,
	}
}

// Render executes the engine against the script and returns the permanent
// artifact location. Failures carry a domain.RenderError distinguishing
// script errors from environment errors and timeouts.
func (e *Engine) Render(ctx context.Context, script, jobID string, params domain.RenderParams) (string, error) {
	tempDir, err := e.store.MkTemp(jobID)
	if err != nil {
		return "", &domain.RenderError{Kind: domain.RenderErrEnvironment, Detail: "failed to create working directory", Err: err}
	}
	defer func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			e.logger.Warn("Failed to remove render temp dir",
				slog.String("job_id", jobID),
				slog.String("temp_dir", tempDir),
				slog.String("error", rmErr.Error()),
			)
		}
	}()

	scriptPath := filepath.Join(tempDir, "scene.py")
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		return "", &domain.RenderError{Kind: domain.RenderErrEnvironment, Detail: "failed to write scene file", Err: err}
	}

	sceneClass := extractSceneClass(script)
	mediaDir := filepath.Join(tempDir, "media")

	args := []string{scriptPath, sceneClass, e.quality, "--disable_caching", "--media_dir=" + mediaDir}
	if params.FrameRate > 0 {
		args = append(args, fmt.Sprintf("--fps=%d", params.FrameRate))
	}

	e.logger.Info("Starting Manim render",
		slog.String("job_id", jobID),
		slog.String("scene_class", sceneClass),
		slog.Duration("timeout", e.timeout),
	)

	renderCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(renderCtx, e.manimPath, args...)
	cmd.Dir = tempDir
	start := time.Now()
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	if err != nil {
		if renderCtx.Err() == context.DeadlineExceeded {
			e.logger.Error("Manim render timed out",
				slog.String("job_id", jobID),
				slog.Duration("elapsed", elapsed),
			)
			return "", &domain.RenderError{
				Kind:   domain.RenderErrTimeout,
				Detail: fmt.Sprintf("render exceeded %s", e.timeout),
			}
		}

		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", &domain.RenderError{
				Kind:   domain.RenderErrEnvironment,
				Detail: "manim executable not available",
				Err:    err,
			}
		}

		e.logger.Error("Manim render failed",
			slog.String("job_id", jobID),
			slog.Duration("elapsed", elapsed),
			slog.String("output", tail(string(output), 2000)),
		)
		return "", &domain.RenderError{
			Kind:   domain.RenderErrScript,
			Detail: tail(string(output), 500),
			Err:    err,
		}
	}

	e.logger.Info("Manim render finished",
		slog.String("job_id", jobID),
		slog.Duration("elapsed", elapsed),
	)

	videoPath, err := findGeneratedVideo(tempDir)
	if err != nil {
		return "", &domain.RenderError{Kind: domain.RenderErrEnvironment, Detail: "no video file produced", Err: err}
	}

	finalPath, err := e.store.Publish(videoPath, jobID)
	if err != nil {
		return "", &domain.RenderError{Kind: domain.RenderErrEnvironment, Detail: "failed to publish artifact", Err: err}
	}

	return finalPath, nil
}

var sceneClassPatterns = []*regexp.Regexp{
	regexp.MustCompile(`class\s+(\w+)\s*\([^)]*VoiceoverScene[^)]*\):`),
	regexp.MustCompile(`class\s+(\w+)\s*\([^)]*Scene[^)]*\):`),
	regexp.MustCompile(`class\s+(\w*Scene\w*)\s*\([^)]*\):`),
}

// extractSceneClass finds the scene class name to render. Falls back to
// "Scene" when the script has no recognizable class.
func extractSceneClass(script string) string {
	for _, re := range sceneClassPatterns {
		if m := re.FindStringSubmatch(script); m != nil {
			return m[1]
		}
	}
	return "Scene"
}

// findGeneratedVideo locates the engine's mp4 output under the working
// directory, skipping files too small to be a real render.
func findGeneratedVideo(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || found != "" {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".mp4") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() >= minArtifactSize {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan render output: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("no video file found under %s", dir)
	}
	return found, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
