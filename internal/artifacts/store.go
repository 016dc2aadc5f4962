package artifacts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store manages the video artifact directories: a permanent videos dir and a
// scratch root for per-render temp dirs.
type Store struct {
	videosDir string
	tempDir   string
}

// New creates a store rooted at the configured directories.
func New(videosDir, tempDir string) *Store {
	return &Store{videosDir: videosDir, tempDir: tempDir}
}

// EnsureDirs creates both roots if missing.
func (s *Store) EnsureDirs() error {
	if err := os.MkdirAll(s.videosDir, 0o755); err != nil {
		return fmt.Errorf("failed to create videos dir: %w", err)
	}
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	return nil
}

// MkTemp creates a fresh working directory for one render call. The caller
// exclusively owns it and must remove it when done.
func (s *Store) MkTemp(jobID string) (string, error) {
	dir, err := os.MkdirTemp(s.tempDir, "manim_"+jobID+"_")
	if err != nil {
		return "", fmt.Errorf("failed to create render temp dir: %w", err)
	}
	return dir, nil
}

// ArtifactPath returns the permanent location for a job's video.
func (s *Store) ArtifactPath(jobID string) string {
	return filepath.Join(s.videosDir, jobID+".mp4")
}

// Publish copies a rendered video from its temp location into the permanent
// videos dir and returns the final path.
func (s *Store) Publish(srcPath, jobID string) (string, error) {
	if err := os.MkdirAll(s.videosDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create videos dir: %w", err)
	}

	finalPath := s.ArtifactPath(jobID)

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open rendered video: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(finalPath)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(finalPath)
		return "", fmt.Errorf("failed to copy artifact: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(finalPath)
		return "", fmt.Errorf("failed to finalize artifact: %w", err)
	}

	return finalPath, nil
}

// Remove deletes an artifact file. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove artifact: %w", err)
	}
	return nil
}
